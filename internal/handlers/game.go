package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grupo123/gameday-api/internal/auth"
	"github.com/grupo123/gameday-api/internal/models"
	"github.com/grupo123/gameday-api/internal/notifier"
	"gorm.io/gorm"
)

type GameHandler struct {
	db          *gorm.DB
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewGameHandler(db *gorm.DB, n notifier.Notifier, authHandler *auth.AuthHandler) *GameHandler {
	return &GameHandler{db: db, notifier: n, authHandler: authHandler}
}

func (h *GameHandler) requireAdmin(ctx context.Context, cookie string) (*models.User, error) {
	user, err := h.authHandler.CurrentUser(ctx, cookie)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Access denied: admin only")
	}
	return user, nil
}

type CreateGameRequest struct {
	auth.AuthInput
	Body struct {
		SportID    uint   `json:"sport_id" required:"true"`
		Date       string `json:"date" doc:"Game date, YYYY-MM-DD" required:"true"`
		Time       string `json:"time" doc:"Start time, HH:MM" required:"true"`
		Location   string `json:"location" required:"true"`
		MapsLink   string `json:"maps_link"`
		MaxPlayers int    `json:"max_players" doc:"Defaults to 20"`
	}
}

type GameResponse struct {
	ID         uint   `json:"id"`
	SportID    uint   `json:"sport_id"`
	SportName  string `json:"sport_name,omitempty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Location   string `json:"location"`
	MapsLink   string `json:"maps_link,omitempty"`
	MaxPlayers int    `json:"max_players"`
}

type CreateGameResponse struct {
	Body GameResponse
}

// HandleCreateGame creates the next game for a sport. Any other visible
// game of the same sport is hidden in the same transaction, so a sport
// never has two active games.
func (h *GameHandler) HandleCreateGame(ctx context.Context, input *CreateGameRequest) (*CreateGameResponse, error) {
	user, err := h.requireAdmin(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation("2006-01-02", input.Body.Date, time.UTC)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid date, expected YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", input.Body.Time); err != nil {
		return nil, huma.Error400BadRequest("Invalid time, expected HH:MM")
	}
	if input.Body.Location == "" {
		return nil, huma.Error400BadRequest("Location is required")
	}
	maxPlayers := input.Body.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = 20
	}
	if maxPlayers < 1 {
		return nil, huma.Error400BadRequest("max_players must be at least 1")
	}

	var sport models.Sport
	if err := h.db.First(&sport, input.Body.SportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Sport not found")
		}
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	game := models.Game{
		SportID:     sport.ID,
		Date:        date,
		Time:        input.Body.Time,
		Location:    input.Body.Location,
		MapsLink:    input.Body.MapsLink,
		MaxPlayers:  maxPlayers,
		Visible:     true,
		CreatedByID: user.ID,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		// Retire the previous active game before the new one shows up.
		if err := tx.Model(&models.Game{}).Where("sport_id = ? AND visible = ?", sport.ID, true).Update("visible", false).Error; err != nil {
			return err
		}
		return tx.Create(&game).Error
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to create game: " + err.Error())
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyGameCreated(sport, game); err != nil {
			log.Printf("Failed to send game notification: %v", err)
		}
	}

	return &CreateGameResponse{Body: GameResponse{
		ID:         game.ID,
		SportID:    game.SportID,
		SportName:  sport.Name,
		Date:       game.Date.Format("2006-01-02"),
		Time:       game.Time,
		Location:   game.Location,
		MapsLink:   game.MapsLink,
		MaxPlayers: game.MaxPlayers,
	}}, nil
}

type ListActiveGamesRequest struct {
	auth.AuthInput
}

type ListActiveGamesResponse struct {
	Body []GameResponse
}

// HandleListActiveGames lists the upcoming visible game of each sport.
func (h *GameHandler) HandleListActiveGames(ctx context.Context, input *ListActiveGamesRequest) (*ListActiveGamesResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var games []models.Game
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if err := h.db.Preload("Sport").Where("visible = ? AND date >= ?", true, today).Order("date asc").Find(&games).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	seen := make(map[uint]bool)
	response := make([]GameResponse, 0, len(games))
	for _, g := range games {
		if seen[g.SportID] {
			continue
		}
		seen[g.SportID] = true
		response = append(response, GameResponse{
			ID:         g.ID,
			SportID:    g.SportID,
			SportName:  g.Sport.Name,
			Date:       g.Date.Format("2006-01-02"),
			Time:       g.Time,
			Location:   g.Location,
			MapsLink:   g.MapsLink,
			MaxPlayers: g.MaxPlayers,
		})
	}

	return &ListActiveGamesResponse{Body: response}, nil
}

type DeleteGameRequest struct {
	auth.AuthInput
	GameID uint `path:"gameID"`
}

// HandleDeleteGame removes a game together with its confirmations, guests
// and waiting list, in one transaction.
func (h *GameHandler) HandleDeleteGame(ctx context.Context, input *DeleteGameRequest) (*MessageResponse, error) {
	if _, err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var game models.Game
	if err := h.db.First(&game, input.GameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Game not found")
		}
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("game_id = ?", game.ID).Delete(&models.Confirmation{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("game_id = ?", game.ID).Delete(&models.Guest{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("game_id = ?", game.ID).Delete(&models.WaitingListEntry{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&game).Error
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete game: " + err.Error())
	}

	return message("Game deleted"), nil
}
