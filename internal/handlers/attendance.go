package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grupo123/gameday-api/internal/auth"
	"github.com/grupo123/gameday-api/internal/ledger"
	"github.com/grupo123/gameday-api/internal/models"
	"github.com/grupo123/gameday-api/internal/notifier"
	"gorm.io/gorm"
)

type AttendanceHandler struct {
	db          *gorm.DB
	ledger      *ledger.Ledger
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewAttendanceHandler(db *gorm.DB, n notifier.Notifier, authHandler *auth.AuthHandler) *AttendanceHandler {
	return &AttendanceHandler{db: db, ledger: ledger.New(db), notifier: n, authHandler: authHandler}
}

// ledgerError maps ledger sentinels onto the HTTP error taxonomy.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrGameNotFound):
		return huma.Error404NotFound("Game not found")
	case errors.Is(err, ledger.ErrGameFull):
		return huma.Error409Conflict("Game is full, join the waiting list instead")
	case errors.Is(err, ledger.ErrGameNotFull):
		return huma.Error409Conflict("Game still has open slots, confirm instead")
	case errors.Is(err, ledger.ErrAlreadyConfirmed):
		return huma.Error409Conflict("You are already confirmed for this game")
	case errors.Is(err, ledger.ErrAlreadyWaiting):
		return huma.Error409Conflict("You are already on the waiting list")
	case errors.Is(err, ledger.ErrNotConfirmed):
		return huma.Error404NotFound("No confirmation found for this game")
	case errors.Is(err, ledger.ErrGuestExists):
		return huma.Error409Conflict("You already brought a guest to this game")
	case errors.Is(err, ledger.ErrGuestLimit):
		return huma.Error409Conflict("This game reached its guest limit")
	default:
		return huma.Error500InternalServerError("Attendance update failed: " + err.Error())
	}
}

// moderatorForGame loads the game (sport included) and verifies that the
// caller may moderate it.
func (h *AttendanceHandler) moderatorForGame(ctx context.Context, cookie string, gameID uint) (*models.User, *models.Game, error) {
	user, err := h.authHandler.CurrentUser(ctx, cookie)
	if err != nil {
		return nil, nil, err
	}

	var game models.Game
	if err := h.db.Preload("Sport").First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, huma.Error404NotFound("Game not found")
		}
		return nil, nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	if !user.Role.CanModerate(game.Sport.Name) {
		return nil, nil, huma.Error403Forbidden("Access denied: you cannot moderate this sport")
	}
	return user, &game, nil
}

// announcePromotions tells the notification channel about every waiting
// list entry that just became a confirmation. Failures are logged, never
// returned: the promotion is already committed.
func (h *AttendanceHandler) announcePromotions(gameID uint, promoted []models.Confirmation) {
	if h.notifier == nil || len(promoted) == 0 {
		return
	}
	var game models.Game
	if err := h.db.Preload("Sport").First(&game, gameID).Error; err != nil {
		log.Printf("Failed to load game %d for promotion notice: %v", gameID, err)
		return
	}
	for _, conf := range promoted {
		var user models.User
		if err := h.db.First(&user, conf.UserID).Error; err != nil {
			log.Printf("Failed to load promoted user %d: %v", conf.UserID, err)
			continue
		}
		if err := h.notifier.NotifyPromotion(user, game.Sport, game); err != nil {
			log.Printf("Failed to send promotion notification: %v", err)
		}
	}
}

type GameActionRequest struct {
	auth.AuthInput
	GameID uint `path:"gameID"`
}

type MessageResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func message(msg string) *MessageResponse {
	res := &MessageResponse{}
	res.Body.Message = msg
	return res
}

func (h *AttendanceHandler) HandleConfirm(ctx context.Context, input *GameActionRequest) (*MessageResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := h.ledger.Confirm(input.GameID, userID); err != nil {
		return nil, ledgerError(err)
	}
	return message("Presence confirmed"), nil
}

func (h *AttendanceHandler) HandleCancel(ctx context.Context, input *GameActionRequest) (*MessageResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	promoted, err := h.ledger.Cancel(input.GameID, userID)
	if err != nil {
		return nil, ledgerError(err)
	}
	h.announcePromotions(input.GameID, promoted)
	return message("Presence cancelled"), nil
}

func (h *AttendanceHandler) HandleJoinWaitingList(ctx context.Context, input *GameActionRequest) (*MessageResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := h.ledger.JoinWaitingList(input.GameID, userID); err != nil {
		return nil, ledgerError(err)
	}
	return message("Added to the waiting list"), nil
}

func (h *AttendanceHandler) HandleLeaveWaitingList(ctx context.Context, input *GameActionRequest) (*MessageResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	// Leaving twice is a no-op, not an error.
	if _, err := h.ledger.LeaveWaitingList(input.GameID, userID); err != nil {
		return nil, ledgerError(err)
	}
	return message("Removed from the waiting list"), nil
}

type ModerationTargetRequest struct {
	auth.AuthInput
	GameID uint `path:"gameID"`
	UserID uint `path:"userID"`
}

func (h *AttendanceHandler) HandleRemoveConfirmation(ctx context.Context, input *ModerationTargetRequest) (*MessageResponse, error) {
	if _, _, err := h.moderatorForGame(ctx, input.Cookie, input.GameID); err != nil {
		return nil, err
	}

	promoted, err := h.ledger.Cancel(input.GameID, input.UserID)
	if err != nil {
		return nil, ledgerError(err)
	}
	h.announcePromotions(input.GameID, promoted)
	return message("Confirmation removed"), nil
}

func (h *AttendanceHandler) HandleRemoveWaitingEntry(ctx context.Context, input *ModerationTargetRequest) (*MessageResponse, error) {
	if _, _, err := h.moderatorForGame(ctx, input.Cookie, input.GameID); err != nil {
		return nil, err
	}

	removed, err := h.ledger.RemoveWaitingEntry(input.GameID, input.UserID)
	if err != nil {
		return nil, ledgerError(err)
	}
	if !removed {
		return nil, huma.Error404NotFound("No waiting list entry found for this user")
	}
	return message("Waiting list entry removed"), nil
}

type ProcessWaitingListResponse struct {
	Body struct {
		Promoted int `json:"promoted"`
	}
}

func (h *AttendanceHandler) HandleProcessWaitingList(ctx context.Context, input *GameActionRequest) (*ProcessWaitingListResponse, error) {
	_, game, err := h.moderatorForGame(ctx, input.Cookie, input.GameID)
	if err != nil {
		return nil, err
	}

	promoted, err := h.ledger.ProcessWaitingList(input.GameID)
	if err != nil {
		return nil, ledgerError(err)
	}
	h.announcePromotions(input.GameID, promoted)

	if h.notifier != nil && len(promoted) > 0 {
		if err := h.notifier.NotifyWaitingListProcessed(game.Sport, *game, len(promoted)); err != nil {
			log.Printf("Failed to send waiting list notification: %v", err)
		}
	}

	res := &ProcessWaitingListResponse{}
	res.Body.Promoted = len(promoted)
	return res, nil
}

type RosterResponse struct {
	Body ledger.Roster
}

// HandleRoster returns the copy-paste-ready projection of who plays:
// confirmations first, then waiting list, then guests, capped at
// max_players. It writes nothing back.
func (h *AttendanceHandler) HandleRoster(ctx context.Context, input *GameActionRequest) (*RosterResponse, error) {
	_, game, err := h.moderatorForGame(ctx, input.Cookie, input.GameID)
	if err != nil {
		return nil, err
	}

	var confirmations []models.Confirmation
	if err := h.db.Preload("User").Where("game_id = ?", game.ID).Order("created_at asc, id asc").Find(&confirmations).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}
	var waiting []models.WaitingListEntry
	if err := h.db.Preload("User").Where("game_id = ?", game.ID).Order("created_at asc, id asc").Find(&waiting).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}
	var guests []models.Guest
	if err := h.db.Where("game_id = ?", game.ID).Order("created_at asc, id asc").Find(&guests).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	return &RosterResponse{Body: ledger.BuildRoster(game.MaxPlayers, confirmations, waiting, guests)}, nil
}
