package ledger

import (
	"errors"

	"github.com/grupo123/gameday-api/internal/models"
	"gorm.io/gorm"
)

// MaxGuestsPerGame caps the total number of guests a single game accepts,
// independently of the player capacity.
const MaxGuestsPerGame = 10

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameFull         = errors.New("game is full")
	ErrGameNotFull      = errors.New("game still has open slots")
	ErrAlreadyConfirmed = errors.New("user already confirmed for this game")
	ErrAlreadyWaiting   = errors.New("user already on the waiting list")
	ErrNotConfirmed     = errors.New("user has no confirmation for this game")
	ErrGuestExists      = errors.New("user already has a guest for this game")
	ErrGuestLimit       = errors.New("guest limit reached for this game")
)

// Ledger owns the attendance bookkeeping: who occupies a capacity slot,
// who is queued, and how cancellations cascade into promotions. Every
// mutation runs in a single transaction so the capacity check, the write
// and any follow-up promotion cannot interleave with another caller.
type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Occupied counts the slots taken in a game: confirmations plus guests.
func (l *Ledger) Occupied(gameID uint) (int, error) {
	return occupied(l.db, gameID)
}

func occupied(tx *gorm.DB, gameID uint) (int, error) {
	var confirmations, guests int64
	if err := tx.Model(&models.Confirmation{}).Where("game_id = ?", gameID).Count(&confirmations).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.Guest{}).Where("game_id = ?", gameID).Count(&guests).Error; err != nil {
		return 0, err
	}
	return int(confirmations + guests), nil
}

func loadGame(tx *gorm.DB, gameID uint) (*models.Game, error) {
	var game models.Game
	if err := tx.First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

// Confirm inserts a confirmation for the user if the game has a free slot.
// The occupancy check and the insert share one transaction, so two users
// racing for the last slot cannot both get it.
func (l *Ledger) Confirm(gameID, userID uint) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		game, err := loadGame(tx, gameID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Confirmation{}).Where("game_id = ? AND user_id = ?", gameID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyConfirmed
		}
		if err := tx.Model(&models.WaitingListEntry{}).Where("game_id = ? AND user_id = ?", gameID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyWaiting
		}

		taken, err := occupied(tx, gameID)
		if err != nil {
			return err
		}
		if taken >= game.MaxPlayers {
			return ErrGameFull
		}

		return tx.Create(&models.Confirmation{GameID: gameID, UserID: userID}).Error
	})
}

// JoinWaitingList queues the user for a full game. Joining an open game is
// rejected; the caller should confirm instead.
func (l *Ledger) JoinWaitingList(gameID, userID uint) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		game, err := loadGame(tx, gameID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Confirmation{}).Where("game_id = ? AND user_id = ?", gameID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyConfirmed
		}
		if err := tx.Model(&models.WaitingListEntry{}).Where("game_id = ? AND user_id = ?", gameID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyWaiting
		}

		taken, err := occupied(tx, gameID)
		if err != nil {
			return err
		}
		if taken < game.MaxPlayers {
			return ErrGameNotFull
		}

		return tx.Create(&models.WaitingListEntry{GameID: gameID, UserID: userID}).Error
	})
}

// Cancel removes the user's confirmation and any guest they brought, then
// promotes from the waiting list into the freed slots. Everything happens
// in one transaction; a promotion can never be lost or doubled.
// It returns the confirmations created by promotion, oldest entry first.
func (l *Ledger) Cancel(gameID, userID uint) ([]models.Confirmation, error) {
	var promoted []models.Confirmation
	err := l.db.Transaction(func(tx *gorm.DB) error {
		game, err := loadGame(tx, gameID)
		if err != nil {
			return err
		}

		res := tx.Unscoped().Where("game_id = ? AND user_id = ?", gameID, userID).Delete(&models.Confirmation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotConfirmed
		}

		// The host is gone, so their guests leave with them.
		if err := tx.Unscoped().Where("game_id = ? AND user_id = ?", gameID, userID).Delete(&models.Guest{}).Error; err != nil {
			return err
		}

		promoted, err = promote(tx, game)
		return err
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// promote moves waiting-list entries into confirmations, oldest first,
// while the game has free capacity.
func promote(tx *gorm.DB, game *models.Game) ([]models.Confirmation, error) {
	var promoted []models.Confirmation
	for {
		taken, err := occupied(tx, game.ID)
		if err != nil {
			return nil, err
		}
		if taken >= game.MaxPlayers {
			return promoted, nil
		}

		var entry models.WaitingListEntry
		err = tx.Where("game_id = ?", game.ID).Order("created_at asc, id asc").First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return promoted, nil
		}
		if err != nil {
			return nil, err
		}

		conf := models.Confirmation{GameID: game.ID, UserID: entry.UserID}
		if err := tx.Create(&conf).Error; err != nil {
			return nil, err
		}
		if err := tx.Unscoped().Delete(&entry).Error; err != nil {
			return nil, err
		}
		promoted = append(promoted, conf)
	}
}

// LeaveWaitingList removes the user's entry. Leaving a list the user is not
// on is a no-op; the returned flag reports whether an entry was removed.
func (l *Ledger) LeaveWaitingList(gameID, userID uint) (bool, error) {
	res := l.db.Unscoped().Where("game_id = ? AND user_id = ?", gameID, userID).Delete(&models.WaitingListEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddGuest registers a named guest under a confirmed host. Guests occupy
// capacity slots, so a full game accepts no more of them.
func (l *Ledger) AddGuest(gameID, userID uint, name, document string) (*models.Guest, error) {
	guest := models.Guest{GameID: gameID, UserID: userID, Name: name, Document: document}
	err := l.db.Transaction(func(tx *gorm.DB) error {
		game, err := loadGame(tx, gameID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Confirmation{}).Where("game_id = ? AND user_id = ?", gameID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotConfirmed
		}
		if err := tx.Model(&models.Guest{}).Where("game_id = ? AND user_id = ?", gameID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrGuestExists
		}
		if err := tx.Model(&models.Guest{}).Where("game_id = ?", gameID).Count(&count).Error; err != nil {
			return err
		}
		if count >= MaxGuestsPerGame {
			return ErrGuestLimit
		}

		taken, err := occupied(tx, gameID)
		if err != nil {
			return err
		}
		if taken >= game.MaxPlayers {
			return ErrGameFull
		}

		return tx.Create(&guest).Error
	})
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

// RemoveGuest deletes a guest and fills the freed slot from the waiting
// list. Permission checks belong to the caller.
func (l *Ledger) RemoveGuest(guestID uint) ([]models.Confirmation, error) {
	var promoted []models.Confirmation
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.First(&guest, guestID).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&guest).Error; err != nil {
			return err
		}

		game, err := loadGame(tx, guest.GameID)
		if err != nil {
			return err
		}
		promoted, err = promote(tx, game)
		return err
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// RemoveWaitingEntry is the moderator-side removal: a plain delete with no
// promotion. It reports whether an entry existed.
func (l *Ledger) RemoveWaitingEntry(gameID, userID uint) (bool, error) {
	return l.LeaveWaitingList(gameID, userID)
}

// ProcessWaitingList promotes queued users into every open slot of the
// game, oldest first, in one transaction. Moderators run it after raising
// capacity or clearing confirmations out of band.
func (l *Ledger) ProcessWaitingList(gameID uint) ([]models.Confirmation, error) {
	var promoted []models.Confirmation
	err := l.db.Transaction(func(tx *gorm.DB) error {
		game, err := loadGame(tx, gameID)
		if err != nil {
			return err
		}
		promoted, err = promote(tx, game)
		return err
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}
