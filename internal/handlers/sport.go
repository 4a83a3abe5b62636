package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grupo123/gameday-api/internal/auth"
	"github.com/grupo123/gameday-api/internal/models"
	"gorm.io/gorm"
)

type SportHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewSportHandler(db *gorm.DB, authHandler *auth.AuthHandler) *SportHandler {
	return &SportHandler{db: db, authHandler: authHandler}
}

// Caller-facing status values for a sport card, mirroring the selection
// screen: no-game, available, full, confirmed, waiting.
const (
	StatusNoGame    = "no-game"
	StatusAvailable = "available"
	StatusFull      = "full"
	StatusConfirmed = "confirmed"
	StatusWaiting   = "waiting"
)

func (h *SportHandler) activeGame(sportID uint) (*models.Game, error) {
	var games []models.Game
	today := time.Now().UTC().Truncate(24 * time.Hour)
	err := h.db.Where("sport_id = ? AND visible = ? AND date >= ?", sportID, true, today).Order("date asc").Limit(1).Find(&games).Error
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, nil
	}
	return &games[0], nil
}

type ListSportsRequest struct {
	auth.AuthInput
}

type SportOverview struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Icon           string `json:"icon"`
	DayOfWeek      int    `json:"day_of_week"`
	Time           string `json:"time"`
	Status         string `json:"status"`
	GameID         uint   `json:"game_id,omitempty"`
	GameDate       string `json:"game_date,omitempty"`
	AvailableSpots int    `json:"available_spots"`
	TotalSpots     int    `json:"total_spots"`
}

type ListSportsResponse struct {
	Body []SportOverview
}

// HandleListSports returns every visible sport with the caller's status on
// its active game.
func (h *SportHandler) HandleListSports(ctx context.Context, input *ListSportsRequest) (*ListSportsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var sports []models.Sport
	if err := h.db.Where("visible = ?", true).Order("name asc").Find(&sports).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	response := make([]SportOverview, 0, len(sports))
	for _, sport := range sports {
		overview := SportOverview{
			ID:        sport.ID,
			Name:      sport.Name,
			Icon:      sport.Icon,
			DayOfWeek: sport.DayOfWeek,
			Time:      sport.Time,
			Status:    StatusNoGame,
		}

		game, err := h.activeGame(sport.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Database error: " + err.Error())
		}
		if game != nil {
			var confirmations, guests, mine, waitingMine int64
			if err := h.db.Model(&models.Confirmation{}).Where("game_id = ?", game.ID).Count(&confirmations).Error; err != nil {
				return nil, huma.Error500InternalServerError("Database error: " + err.Error())
			}
			if err := h.db.Model(&models.Guest{}).Where("game_id = ?", game.ID).Count(&guests).Error; err != nil {
				return nil, huma.Error500InternalServerError("Database error: " + err.Error())
			}
			if err := h.db.Model(&models.Confirmation{}).Where("game_id = ? AND user_id = ?", game.ID, userID).Count(&mine).Error; err != nil {
				return nil, huma.Error500InternalServerError("Database error: " + err.Error())
			}
			if err := h.db.Model(&models.WaitingListEntry{}).Where("game_id = ? AND user_id = ?", game.ID, userID).Count(&waitingMine).Error; err != nil {
				return nil, huma.Error500InternalServerError("Database error: " + err.Error())
			}

			occupied := int(confirmations + guests)
			overview.GameID = game.ID
			overview.GameDate = game.Date.Format("2006-01-02")
			overview.TotalSpots = game.MaxPlayers
			overview.AvailableSpots = game.MaxPlayers - occupied

			switch {
			case mine > 0:
				overview.Status = StatusConfirmed
			case waitingMine > 0:
				overview.Status = StatusWaiting
			case occupied >= game.MaxPlayers:
				overview.Status = StatusFull
			default:
				overview.Status = StatusAvailable
			}
		}

		response = append(response, overview)
	}

	return &ListSportsResponse{Body: response}, nil
}

type SportDetailRequest struct {
	auth.AuthInput
	SportID uint `path:"sportID"`
}

type ConfirmationView struct {
	ID          uint   `json:"id"`
	UserID      uint   `json:"user_id"`
	Name        string `json:"name"`
	ConfirmedAt string `json:"confirmed_at"`
}

type GuestView struct {
	ID       uint   `json:"id"`
	UserID   uint   `json:"user_id"`
	Name     string `json:"name"`
	Document string `json:"document"`
}

type WaitingView struct {
	ID       uint   `json:"id"`
	UserID   uint   `json:"user_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type SportDetailResponse struct {
	Body struct {
		Sport          SportOverview      `json:"sport"`
		Game           *GameResponse      `json:"game,omitempty"`
		Confirmations  []ConfirmationView `json:"confirmations"`
		Guests         []GuestView        `json:"guests"`
		WaitingList    []WaitingView      `json:"waiting_list"`
		Occupied       int                `json:"occupied"`
		AvailableSpots int                `json:"available_spots"`
		IsFull         bool               `json:"is_full"`
		IsConfirmed    bool               `json:"is_confirmed"`
		IsWaiting      bool               `json:"is_waiting"`
		MyGuestID      uint               `json:"my_guest_id,omitempty"`
	}
}

// HandleSportDetail returns the sport's active game with its three lists,
// each FIFO-ordered, plus the caller's own standing.
func (h *SportHandler) HandleSportDetail(ctx context.Context, input *SportDetailRequest) (*SportDetailResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var sport models.Sport
	if err := h.db.First(&sport, input.SportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Sport not found")
		}
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	res := &SportDetailResponse{}
	res.Body.Sport = SportOverview{
		ID:        sport.ID,
		Name:      sport.Name,
		Icon:      sport.Icon,
		DayOfWeek: sport.DayOfWeek,
		Time:      sport.Time,
		Status:    StatusNoGame,
	}
	res.Body.Confirmations = []ConfirmationView{}
	res.Body.Guests = []GuestView{}
	res.Body.WaitingList = []WaitingView{}

	game, err := h.activeGame(sport.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}
	if game == nil {
		return res, nil
	}

	res.Body.Game = &GameResponse{
		ID:         game.ID,
		SportID:    game.SportID,
		SportName:  sport.Name,
		Date:       game.Date.Format("2006-01-02"),
		Time:       game.Time,
		Location:   game.Location,
		MapsLink:   game.MapsLink,
		MaxPlayers: game.MaxPlayers,
	}

	var confirmations []models.Confirmation
	if err := h.db.Preload("User").Where("game_id = ?", game.ID).Order("created_at asc, id asc").Find(&confirmations).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}
	for _, c := range confirmations {
		name := c.User.FullName
		if name == "" {
			name = c.User.Email
		}
		res.Body.Confirmations = append(res.Body.Confirmations, ConfirmationView{
			ID:          c.ID,
			UserID:      c.UserID,
			Name:        name,
			ConfirmedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		})
		if c.UserID == userID {
			res.Body.IsConfirmed = true
		}
	}

	var guests []models.Guest
	if err := h.db.Where("game_id = ?", game.ID).Order("created_at asc, id asc").Find(&guests).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}
	for _, g := range guests {
		res.Body.Guests = append(res.Body.Guests, GuestView{
			ID:       g.ID,
			UserID:   g.UserID,
			Name:     g.Name,
			Document: g.Document,
		})
		if g.UserID == userID {
			res.Body.MyGuestID = g.ID
		}
	}

	var waiting []models.WaitingListEntry
	if err := h.db.Preload("User").Where("game_id = ?", game.ID).Order("created_at asc, id asc").Find(&waiting).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}
	for i, w := range waiting {
		name := w.User.FullName
		if name == "" {
			name = w.User.Email
		}
		res.Body.WaitingList = append(res.Body.WaitingList, WaitingView{
			ID:       w.ID,
			UserID:   w.UserID,
			Name:     name,
			Position: i + 1,
		})
		if w.UserID == userID {
			res.Body.IsWaiting = true
		}
	}

	res.Body.Occupied = len(confirmations) + len(guests)
	res.Body.AvailableSpots = game.MaxPlayers - res.Body.Occupied
	res.Body.IsFull = res.Body.AvailableSpots <= 0

	return res, nil
}
