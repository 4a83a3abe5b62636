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

type UserHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewUserHandler(db *gorm.DB, authHandler *auth.AuthHandler) *UserHandler {
	return &UserHandler{db: db, authHandler: authHandler}
}

func (h *UserHandler) requireAdmin(ctx context.Context, cookie string) (*models.User, error) {
	user, err := h.authHandler.CurrentUser(ctx, cookie)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Access denied: admin only")
	}
	return user, nil
}

type ListUsersRequest struct {
	auth.AuthInput
}

type UserView struct {
	ID        uint        `json:"id"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt string      `json:"created_at"`
}

type ListUsersResponse struct {
	Body []UserView
}

func (h *UserHandler) HandleListUsers(ctx context.Context, input *ListUsersRequest) (*ListUsersResponse, error) {
	if _, err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var users []models.User
	if err := h.db.Order("created_at desc").Find(&users).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	response := make([]UserView, 0, len(users))
	for _, u := range users {
		response = append(response, UserView{
			ID:        u.ID,
			FullName:  u.FullName,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return &ListUsersResponse{Body: response}, nil
}

type UpdateUserRoleRequest struct {
	auth.AuthInput
	UserID uint `path:"userID"`
	Body   struct {
		Role string `json:"role" doc:"One of: admin, player, moderator_soccer, moderator_volleyball" required:"true"`
	}
}

func (h *UserHandler) HandleUpdateUserRole(ctx context.Context, input *UpdateUserRoleRequest) (*MessageResponse, error) {
	if _, err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	role, err := models.ParseRole(input.Body.Role)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	var user models.User
	if err := h.db.First(&user, input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("User not found")
		}
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	if err := h.db.Model(&user).Update("role", role).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update role: " + err.Error())
	}

	return message("Role updated"), nil
}
