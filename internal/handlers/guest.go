package handlers

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grupo123/gameday-api/internal/auth"
	"github.com/grupo123/gameday-api/internal/models"
	"gorm.io/gorm"
)

var nonDigits = regexp.MustCompile(`\D`)

type AddGuestRequest struct {
	auth.AuthInput
	GameID uint `path:"gameID"`
	Body   struct {
		Name     string `json:"name" doc:"Guest full name" required:"true"`
		Document string `json:"document" doc:"Guest document number (11 digits, punctuation allowed)" required:"true"`
	}
}

type AddGuestResponse struct {
	Body struct {
		ID       uint   `json:"id"`
		Name     string `json:"name"`
		Document string `json:"document"`
	}
}

func (h *AttendanceHandler) HandleAddGuest(ctx context.Context, input *AddGuestRequest) (*AddGuestResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Body.Name)
	if len(name) < 2 {
		return nil, huma.Error400BadRequest("Guest name must have at least 2 characters")
	}
	document := nonDigits.ReplaceAllString(input.Body.Document, "")
	if len(document) != 11 {
		return nil, huma.Error400BadRequest("Guest document must have 11 digits")
	}

	guest, err := h.ledger.AddGuest(input.GameID, userID, name, document)
	if err != nil {
		return nil, ledgerError(err)
	}

	res := &AddGuestResponse{}
	res.Body.ID = guest.ID
	res.Body.Name = guest.Name
	res.Body.Document = guest.Document
	return res, nil
}

type RemoveGuestRequest struct {
	auth.AuthInput
	GuestID uint `path:"guestID"`
}

// HandleRemoveGuest deletes a guest. The owning user may always remove
// their own guest; anyone else needs moderator rights over the game's
// sport.
func (h *AttendanceHandler) HandleRemoveGuest(ctx context.Context, input *RemoveGuestRequest) (*MessageResponse, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var guest models.Guest
	if err := h.db.First(&guest, input.GuestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Guest not found")
		}
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	if guest.UserID != user.ID {
		var game models.Game
		if err := h.db.Preload("Sport").First(&game, guest.GameID).Error; err != nil {
			return nil, huma.Error500InternalServerError("Database error: " + err.Error())
		}
		if !user.Role.CanModerate(game.Sport.Name) {
			return nil, huma.Error403Forbidden("Access denied: you cannot remove this guest")
		}
	}

	promoted, err := h.ledger.RemoveGuest(guest.ID)
	if err != nil {
		return nil, ledgerError(err)
	}
	h.announcePromotions(guest.GameID, promoted)
	return message("Guest removed"), nil
}
