package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/grupo123/gameday-api/internal/config"
	"github.com/grupo123/gameday-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TokenDuration  = 24 * time.Hour
	ResetTokenTTL  = 1 * time.Hour
	AuthCookieName = "auth_token"
	minPasswordLen = 6
	minFullNameLen = 2
)

type AuthHandler struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{cfg: cfg, db: db}
}

// AuthInput carries the raw Cookie header into huma operations that need
// an authenticated caller.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie" required:"false"`
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// Authorize validates the auth_token cookie and returns the caller's user
// ID. All failures collapse into a 401.
func (h *AuthHandler) Authorize(ctx context.Context, cookieHeader string) (uint, error) {
	if cookieHeader == "" {
		return 0, huma.Error401Unauthorized("Unauthorized: no token found")
	}

	req := http.Request{Header: http.Header{"Cookie": {cookieHeader}}}
	cookie, err := req.Cookie(AuthCookieName)
	if err != nil {
		return 0, huma.Error401Unauthorized("Unauthorized: no token found")
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, huma.Error401Unauthorized("Unauthorized: invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, huma.Error401Unauthorized("Unauthorized: invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat == 0 {
		return 0, huma.Error401Unauthorized("Unauthorized: invalid token claims")
	}

	return uint(userIDFloat), nil
}

// CurrentUser resolves the calling user's full record, role included.
func (h *AuthHandler) CurrentUser(ctx context.Context, cookieHeader string) (*models.User, error) {
	userID, err := h.Authorize(ctx, cookieHeader)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized: unknown user")
	}
	return &user, nil
}

type SignUpRequest struct {
	Body struct {
		FullName string `json:"full_name" doc:"Display name" required:"true"`
		Email    string `json:"email" doc:"Email on an allowed domain" required:"true"`
		Password string `json:"password" doc:"At least 6 characters" required:"true"`
	}
}

type SignUpResponse struct {
	Body struct {
		ID       uint   `json:"id"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
}

func (h *AuthHandler) HandleSignUp(ctx context.Context, input *SignUpRequest) (*SignUpResponse, error) {
	fullName := strings.TrimSpace(input.Body.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Body.Email))

	if len(fullName) < minFullNameLen {
		return nil, huma.Error400BadRequest("Full name must have at least 2 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, huma.Error400BadRequest("Invalid email address")
	}
	if len(input.Body.Password) < minPasswordLen {
		return nil, huma.Error400BadRequest("Password must have at least 6 characters")
	}

	domain := email[strings.LastIndex(email, "@")+1:]
	var allowed models.AllowedDomain
	if err := h.db.Where("domain = ?", domain).First(&allowed).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error403Forbidden("Sign-up is restricted to allowed email domains")
		}
		return nil, huma.Error500InternalServerError("Failed to check email domain: " + err.Error())
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}
	if count > 0 {
		return nil, huma.Error409Conflict("An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Body.Password), h.cfg.BcryptCost)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	user := models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RolePlayer,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create account: " + err.Error())
	}

	res := &SignUpResponse{}
	res.Body.ID = user.ID
	res.Body.FullName = user.FullName
	res.Body.Email = user.Email
	return res, nil
}

type LoginRequest struct {
	Body struct {
		Email    string `json:"email" required:"true"`
		Password string `json:"password" required:"true"`
	}
}

type LoginResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		ID       uint        `json:"id"`
		FullName string      `json:"full_name"`
		Email    string      `json:"email"`
		Role     models.Role `json:"role"`
	}
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Body.Email))

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, huma.Error401Unauthorized("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Body.Password)); err != nil {
		return nil, huma.Error401Unauthorized("Invalid email or password")
	}

	token, err := h.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	cookie := http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	}

	res := &LoginResponse{SetCookie: cookie.String()}
	res.Body.ID = user.ID
	res.Body.FullName = user.FullName
	res.Body.Email = user.Email
	res.Body.Role = user.Role
	return res, nil
}

type LogoutResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		Message string `json:"message"`
	}
}

func (h *AuthHandler) HandleLogout(ctx context.Context, input *struct{}) (*LogoutResponse, error) {
	cookie := http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Path:     "/",
	}
	res := &LogoutResponse{SetCookie: cookie.String()}
	res.Body.Message = "Logged out"
	return res, nil
}

type MeResponse struct {
	Body struct {
		ID       uint        `json:"id"`
		FullName string      `json:"full_name"`
		Email    string      `json:"email"`
		Role     models.Role `json:"role"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeResponse, error) {
	user, err := h.CurrentUser(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	res := &MeResponse{}
	res.Body.ID = user.ID
	res.Body.FullName = user.FullName
	res.Body.Email = user.Email
	res.Body.Role = user.Role
	return res, nil
}

type RequestPasswordResetRequest struct {
	Body struct {
		Email string `json:"email" required:"true"`
	}
}

type RequestPasswordResetResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// HandleRequestPasswordReset issues a one-time reset token. The response is
// the same whether or not the email exists, so the endpoint cannot be used
// to probe for accounts. Delivery is just a logged link; there is no mailer.
func (h *AuthHandler) HandleRequestPasswordReset(ctx context.Context, input *RequestPasswordResetRequest) (*RequestPasswordResetResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Body.Email))

	res := &RequestPasswordResetResponse{}
	res.Body.Message = "If the account exists, a reset link has been sent"

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		return res, nil
	}

	reset := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(ResetTokenTTL),
	}
	if err := h.db.Create(&reset).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create reset token: " + err.Error())
	}

	log.Printf("password reset link for %s: %s/reset-password?token=%s", user.Email, h.cfg.FrontendURL, reset.Token)
	return res, nil
}

type ResetPasswordRequest struct {
	Body struct {
		Token    string `json:"token" required:"true"`
		Password string `json:"password" required:"true"`
	}
}

type ResetPasswordResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *AuthHandler) HandleResetPassword(ctx context.Context, input *ResetPasswordRequest) (*ResetPasswordResponse, error) {
	if len(input.Body.Password) < minPasswordLen {
		return nil, huma.Error400BadRequest("Password must have at least 6 characters")
	}

	var reset models.PasswordResetToken
	if err := h.db.Where("token = ?", input.Body.Token).First(&reset).Error; err != nil {
		return nil, huma.Error400BadRequest("Invalid or expired reset token")
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		return nil, huma.Error400BadRequest("Invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Body.Password), h.cfg.BcryptCost)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).Update("password_hash", string(hash)).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&reset).Update("used_at", &now).Error
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to reset password: " + err.Error())
	}

	res := &ResetPasswordResponse{}
	res.Body.Message = "Password updated"
	return res, nil
}
