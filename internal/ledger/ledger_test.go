package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/grupo123/gameday-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Sport{},
		&models.Game{},
		&models.Confirmation{},
		&models.Guest{},
		&models.WaitingListEntry{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{FullName: name, Email: name + "@example.com", Role: models.RolePlayer}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createGame(t *testing.T, db *gorm.DB, maxPlayers int) models.Game {
	t.Helper()
	sport := models.Sport{Name: fmt.Sprintf("Sport-%d", time.Now().UnixNano()), Visible: true}
	require.NoError(t, db.Create(&sport).Error)
	game := models.Game{
		SportID:    sport.ID,
		Date:       time.Now().Add(48 * time.Hour),
		Time:       "19:00",
		Location:   "Club court",
		MaxPlayers: maxPlayers,
		Visible:    true,
	}
	require.NoError(t, db.Create(&game).Error)
	return game
}

func confirmationCount(t *testing.T, db *gorm.DB, gameID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Confirmation{}).Where("game_id = ?", gameID).Count(&count).Error)
	return count
}

func isConfirmed(t *testing.T, db *gorm.DB, gameID, userID uint) bool {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Confirmation{}).Where("game_id = ? AND user_id = ?", gameID, userID).Count(&count).Error)
	return count > 0
}

func isWaiting(t *testing.T, db *gorm.DB, gameID, userID uint) bool {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.WaitingListEntry{}).Where("game_id = ? AND user_id = ?", gameID, userID).Count(&count).Error)
	return count > 0
}

func TestConfirmRejectsWhenFull(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	u1 := createUser(t, db, "alice")
	u2 := createUser(t, db, "bob")
	u3 := createUser(t, db, "carol")

	require.NoError(t, l.Confirm(game.ID, u1.ID))
	require.NoError(t, l.Confirm(game.ID, u2.ID))

	err := l.Confirm(game.ID, u3.ID)
	assert.ErrorIs(t, err, ErrGameFull)
	assert.EqualValues(t, 2, confirmationCount(t, db, game.ID))
}

func TestConfirmRejectsDuplicatesAndWaiters(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	u1 := createUser(t, db, "alice")
	u2 := createUser(t, db, "bob")
	u3 := createUser(t, db, "carol")

	require.NoError(t, l.Confirm(game.ID, u1.ID))
	assert.ErrorIs(t, l.Confirm(game.ID, u1.ID), ErrAlreadyConfirmed)

	require.NoError(t, l.Confirm(game.ID, u2.ID))
	require.NoError(t, l.JoinWaitingList(game.ID, u3.ID))
	assert.ErrorIs(t, l.Confirm(game.ID, u3.ID), ErrAlreadyWaiting)
}

func TestConfirmUnknownGame(t *testing.T) {
	db := openDB(t)
	l := New(db)
	u := createUser(t, db, "alice")

	assert.ErrorIs(t, l.Confirm(9999, u.ID), ErrGameNotFound)
}

func TestJoinWaitingListRequiresFullGame(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 1)
	u1 := createUser(t, db, "alice")
	u2 := createUser(t, db, "bob")

	assert.ErrorIs(t, l.JoinWaitingList(game.ID, u1.ID), ErrGameNotFull)

	require.NoError(t, l.Confirm(game.ID, u1.ID))
	assert.ErrorIs(t, l.JoinWaitingList(game.ID, u1.ID), ErrAlreadyConfirmed)

	require.NoError(t, l.JoinWaitingList(game.ID, u2.ID))
	assert.ErrorIs(t, l.JoinWaitingList(game.ID, u2.ID), ErrAlreadyWaiting)
}

func TestCancelPromotesOldestEntry(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")
	c := createUser(t, db, "carol")
	d := createUser(t, db, "dave")

	require.NoError(t, l.Confirm(game.ID, a.ID))
	require.NoError(t, l.Confirm(game.ID, b.ID))

	base := time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&models.WaitingListEntry{
		GameID: game.ID, UserID: c.ID, Model: gorm.Model{CreatedAt: base},
	}).Error)
	require.NoError(t, db.Create(&models.WaitingListEntry{
		GameID: game.ID, UserID: d.ID, Model: gorm.Model{CreatedAt: base.Add(5 * time.Minute)},
	}).Error)

	promoted, err := l.Cancel(game.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, promoted, 1)
	assert.Equal(t, c.ID, promoted[0].UserID)

	assert.False(t, isConfirmed(t, db, game.ID, a.ID))
	assert.True(t, isConfirmed(t, db, game.ID, c.ID))
	assert.False(t, isWaiting(t, db, game.ID, c.ID))
	assert.True(t, isWaiting(t, db, game.ID, d.ID))
	assert.EqualValues(t, 2, confirmationCount(t, db, game.ID))
}

func TestCancelWithEmptyWaitingListLeavesSlotVacant(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")

	require.NoError(t, l.Confirm(game.ID, a.ID))
	require.NoError(t, l.Confirm(game.ID, b.ID))

	promoted, err := l.Cancel(game.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, promoted)
	assert.EqualValues(t, 1, confirmationCount(t, db, game.ID))
}

func TestCancelWithoutConfirmation(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	a := createUser(t, db, "alice")

	_, err := l.Cancel(game.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestCancelRemovesHostGuestsAndPromotesIntoBothSlots(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	a := createUser(t, db, "alice")
	c := createUser(t, db, "carol")
	d := createUser(t, db, "dave")

	require.NoError(t, l.Confirm(game.ID, a.ID))
	_, err := l.AddGuest(game.ID, a.ID, "Guest One", "52998224725")
	require.NoError(t, err)

	// Game is full: 1 confirmation + 1 guest against max 2.
	require.NoError(t, l.JoinWaitingList(game.ID, c.ID))
	base := time.Now().Add(time.Minute)
	require.NoError(t, db.Create(&models.WaitingListEntry{
		GameID: game.ID, UserID: d.ID, Model: gorm.Model{CreatedAt: base},
	}).Error)

	promoted, err := l.Cancel(game.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, promoted, 2)
	assert.Equal(t, c.ID, promoted[0].UserID)
	assert.Equal(t, d.ID, promoted[1].UserID)

	var guests int64
	require.NoError(t, db.Model(&models.Guest{}).Where("game_id = ?", game.ID).Count(&guests).Error)
	assert.EqualValues(t, 0, guests)
}

func TestFullFlowScenario(t *testing.T) {
	// Session with max_players=2: A confirms, B confirms, C is redirected
	// to the waiting list, A cancels, C takes the slot.
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")
	c := createUser(t, db, "carol")

	require.NoError(t, l.Confirm(game.ID, a.ID))
	require.NoError(t, l.Confirm(game.ID, b.ID))

	require.ErrorIs(t, l.Confirm(game.ID, c.ID), ErrGameFull)
	require.NoError(t, l.JoinWaitingList(game.ID, c.ID))

	promoted, err := l.Cancel(game.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, promoted, 1)

	assert.True(t, isConfirmed(t, db, game.ID, b.ID))
	assert.True(t, isConfirmed(t, db, game.ID, c.ID))
	assert.False(t, isWaiting(t, db, game.ID, c.ID))

	var waiting int64
	require.NoError(t, db.Model(&models.WaitingListEntry{}).Where("game_id = ?", game.ID).Count(&waiting).Error)
	assert.EqualValues(t, 0, waiting)
}

func TestGuestsCountAgainstCapacity(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")

	require.NoError(t, l.Confirm(game.ID, a.ID))
	_, err := l.AddGuest(game.ID, a.ID, "Guest One", "52998224725")
	require.NoError(t, err)

	assert.ErrorIs(t, l.Confirm(game.ID, b.ID), ErrGameFull)
}

func TestAddGuestRules(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 4)
	a := createUser(t, db, "alice")

	_, err := l.AddGuest(game.ID, a.ID, "Guest One", "52998224725")
	assert.ErrorIs(t, err, ErrNotConfirmed)

	require.NoError(t, l.Confirm(game.ID, a.ID))
	_, err = l.AddGuest(game.ID, a.ID, "Guest One", "52998224725")
	require.NoError(t, err)

	_, err = l.AddGuest(game.ID, a.ID, "Guest Two", "15350946056")
	assert.ErrorIs(t, err, ErrGuestExists)
}

func TestAddGuestRejectedWhenFull(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")

	require.NoError(t, l.Confirm(game.ID, a.ID))
	require.NoError(t, l.Confirm(game.ID, b.ID))

	_, err := l.AddGuest(game.ID, a.ID, "Guest One", "52998224725")
	assert.ErrorIs(t, err, ErrGameFull)
}

func TestGuestLimitPerGame(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 40)

	for i := 0; i < MaxGuestsPerGame; i++ {
		host := createUser(t, db, fmt.Sprintf("host%d", i))
		require.NoError(t, l.Confirm(game.ID, host.ID))
		_, err := l.AddGuest(game.ID, host.ID, fmt.Sprintf("Guest %d", i), "52998224725")
		require.NoError(t, err)
	}

	extra := createUser(t, db, "extra")
	require.NoError(t, l.Confirm(game.ID, extra.ID))
	_, err := l.AddGuest(game.ID, extra.ID, "One Too Many", "52998224725")
	assert.ErrorIs(t, err, ErrGuestLimit)
}

func TestRemoveGuestPromotesFromWaitingList(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")

	require.NoError(t, l.Confirm(game.ID, a.ID))
	guest, err := l.AddGuest(game.ID, a.ID, "Guest One", "52998224725")
	require.NoError(t, err)
	require.NoError(t, l.JoinWaitingList(game.ID, b.ID))

	promoted, err := l.RemoveGuest(guest.ID)
	require.NoError(t, err)
	require.Len(t, promoted, 1)
	assert.Equal(t, b.ID, promoted[0].UserID)
	assert.True(t, isConfirmed(t, db, game.ID, b.ID))
}

func TestLeaveWaitingListIsIdempotent(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 1)
	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")

	require.NoError(t, l.Confirm(game.ID, a.ID))
	require.NoError(t, l.JoinWaitingList(game.ID, b.ID))

	removed, err := l.LeaveWaitingList(game.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = l.LeaveWaitingList(game.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestProcessWaitingListFillsOpenSlots(t *testing.T) {
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 3)
	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")
	c := createUser(t, db, "carol")
	d := createUser(t, db, "dave")

	require.NoError(t, l.Confirm(game.ID, a.ID))

	base := time.Now().Add(-time.Hour)
	for i, u := range []models.User{b, c, d} {
		require.NoError(t, db.Create(&models.WaitingListEntry{
			GameID: game.ID, UserID: u.ID, Model: gorm.Model{CreatedAt: base.Add(time.Duration(i) * time.Minute)},
		}).Error)
	}

	promoted, err := l.ProcessWaitingList(game.ID)
	require.NoError(t, err)
	require.Len(t, promoted, 2)
	assert.Equal(t, b.ID, promoted[0].UserID)
	assert.Equal(t, c.ID, promoted[1].UserID)
	assert.True(t, isWaiting(t, db, game.ID, d.ID))
	assert.EqualValues(t, 3, confirmationCount(t, db, game.ID))
}

func TestReconfirmAfterCancel(t *testing.T) {
	// A cancelled confirmation must not block a later re-confirmation.
	db := openDB(t)
	l := New(db)
	game := createGame(t, db, 2)
	a := createUser(t, db, "alice")

	require.NoError(t, l.Confirm(game.ID, a.ID))
	_, err := l.Cancel(game.ID, a.ID)
	require.NoError(t, err)
	require.NoError(t, l.Confirm(game.ID, a.ID))
}
