package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/grupo123/gameday-api/internal/auth"
)

func RegisterRoutes(
	r *chi.Mux,
	authHandler *auth.AuthHandler,
	sportHandler *SportHandler,
	gameHandler *GameHandler,
	attendanceHandler *AttendanceHandler,
	userHandler *UserHandler,
	domainHandler *DomainHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Game Day API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.AuthCookieName,
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	huma.Post(api, "/auth/signup", authHandler.HandleSignUp)
	huma.Post(api, "/auth/login", authHandler.HandleLogin)
	huma.Post(api, "/auth/logout", authHandler.HandleLogout)
	huma.Post(api, "/auth/password-reset/request", authHandler.HandleRequestPasswordReset)
	huma.Post(api, "/auth/password-reset", authHandler.HandleResetPassword)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authHandler.AuthMiddleware)

		withAuth := func(o *huma.Operation) {
			o.Security = []map[string][]string{{"cookieAuth": {}}}
		}

		huma.Get(api, "/me", authHandler.HandleMe, withAuth)

		huma.Get(api, "/sports", sportHandler.HandleListSports, withAuth)
		huma.Get(api, "/sports/{sportID}", sportHandler.HandleSportDetail, withAuth)

		huma.Get(api, "/games/active", gameHandler.HandleListActiveGames, withAuth)
		huma.Post(api, "/games", gameHandler.HandleCreateGame, withAuth)
		huma.Delete(api, "/games/{gameID}", gameHandler.HandleDeleteGame, withAuth)

		huma.Post(api, "/games/{gameID}/confirm", attendanceHandler.HandleConfirm, withAuth)
		huma.Delete(api, "/games/{gameID}/confirm", attendanceHandler.HandleCancel, withAuth)
		huma.Post(api, "/games/{gameID}/waiting-list", attendanceHandler.HandleJoinWaitingList, withAuth)
		huma.Delete(api, "/games/{gameID}/waiting-list", attendanceHandler.HandleLeaveWaitingList, withAuth)
		huma.Post(api, "/games/{gameID}/guests", attendanceHandler.HandleAddGuest, withAuth)
		huma.Delete(api, "/guests/{guestID}", attendanceHandler.HandleRemoveGuest, withAuth)

		// Moderation
		huma.Delete(api, "/games/{gameID}/confirmations/{userID}", attendanceHandler.HandleRemoveConfirmation, withAuth)
		huma.Delete(api, "/games/{gameID}/waiting-list/{userID}", attendanceHandler.HandleRemoveWaitingEntry, withAuth)
		huma.Post(api, "/games/{gameID}/waiting-list/process", attendanceHandler.HandleProcessWaitingList, withAuth)
		huma.Get(api, "/games/{gameID}/roster", attendanceHandler.HandleRoster, withAuth)

		// Admin
		huma.Get(api, "/users", userHandler.HandleListUsers, withAuth)
		huma.Put(api, "/users/{userID}/role", userHandler.HandleUpdateUserRole, withAuth)
		huma.Get(api, "/domains", domainHandler.HandleListDomains, withAuth)
		huma.Post(api, "/domains", domainHandler.HandleAddDomain, withAuth)
		huma.Put(api, "/domains/{domainID}", domainHandler.HandleUpdateDomain, withAuth)
		huma.Delete(api, "/domains/{domainID}", domainHandler.HandleDeleteDomain, withAuth)
	})
}
