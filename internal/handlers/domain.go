package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grupo123/gameday-api/internal/auth"
	"github.com/grupo123/gameday-api/internal/models"
	"gorm.io/gorm"
)

// DomainHandler manages the email domains accepted at sign-up.
type DomainHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewDomainHandler(db *gorm.DB, authHandler *auth.AuthHandler) *DomainHandler {
	return &DomainHandler{db: db, authHandler: authHandler}
}

func (h *DomainHandler) requireAdmin(ctx context.Context, cookie string) error {
	user, err := h.authHandler.CurrentUser(ctx, cookie)
	if err != nil {
		return err
	}
	if !user.Role.IsAdmin() {
		return huma.Error403Forbidden("Access denied: admin only")
	}
	return nil
}

func normalizeDomain(domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "@")
	if domain == "" || !strings.Contains(domain, ".") || strings.ContainsAny(domain, " @/") {
		return "", errors.New("invalid domain")
	}
	return domain, nil
}

type ListDomainsRequest struct {
	auth.AuthInput
}

type DomainView struct {
	ID     uint   `json:"id"`
	Domain string `json:"domain"`
}

type ListDomainsResponse struct {
	Body []DomainView
}

func (h *DomainHandler) HandleListDomains(ctx context.Context, input *ListDomainsRequest) (*ListDomainsResponse, error) {
	if err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var domains []models.AllowedDomain
	if err := h.db.Order("domain asc").Find(&domains).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	response := make([]DomainView, 0, len(domains))
	for _, d := range domains {
		response = append(response, DomainView{ID: d.ID, Domain: d.Domain})
	}
	return &ListDomainsResponse{Body: response}, nil
}

type AddDomainRequest struct {
	auth.AuthInput
	Body struct {
		Domain string `json:"domain" required:"true"`
	}
}

type AddDomainResponse struct {
	Body DomainView
}

func (h *DomainHandler) HandleAddDomain(ctx context.Context, input *AddDomainRequest) (*AddDomainResponse, error) {
	if err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	domain, err := normalizeDomain(input.Body.Domain)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid domain")
	}

	var count int64
	if err := h.db.Model(&models.AllowedDomain{}).Where("domain = ?", domain).Count(&count).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}
	if count > 0 {
		return nil, huma.Error409Conflict("Domain already allowed")
	}

	record := models.AllowedDomain{Domain: domain}
	if err := h.db.Create(&record).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to add domain: " + err.Error())
	}

	return &AddDomainResponse{Body: DomainView{ID: record.ID, Domain: record.Domain}}, nil
}

type UpdateDomainRequest struct {
	auth.AuthInput
	DomainID uint `path:"domainID"`
	Body     struct {
		Domain string `json:"domain" required:"true"`
	}
}

func (h *DomainHandler) HandleUpdateDomain(ctx context.Context, input *UpdateDomainRequest) (*MessageResponse, error) {
	if err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	domain, err := normalizeDomain(input.Body.Domain)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid domain")
	}

	var record models.AllowedDomain
	if err := h.db.First(&record, input.DomainID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Domain not found")
		}
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	if err := h.db.Model(&record).Update("domain", domain).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update domain: " + err.Error())
	}

	return message("Domain updated"), nil
}

type DeleteDomainRequest struct {
	auth.AuthInput
	DomainID uint `path:"domainID"`
}

func (h *DomainHandler) HandleDeleteDomain(ctx context.Context, input *DeleteDomainRequest) (*MessageResponse, error) {
	if err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	res := h.db.Unscoped().Delete(&models.AllowedDomain{}, input.DomainID)
	if res.Error != nil {
		return nil, huma.Error500InternalServerError("Failed to delete domain: " + res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return nil, huma.Error404NotFound("Domain not found")
	}

	return message("Domain removed"), nil
}
