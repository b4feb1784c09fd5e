package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventcatalog/internal/delivery/http/controllers"
	"eventcatalog/internal/delivery/http/middleware"
	"eventcatalog/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Events      *controllers.EventController
	RSVPs       *controllers.RSVPController
	Invitations *controllers.InvitationController
	Health      *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	optionalAuth := middleware.OptionalAuth(verifier, logger)

	// Events
	mux.HandleFunc("POST /events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events", c.Events.ListEvents)
	mux.HandleFunc("GET /events/my-events", auth(c.Events.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", optionalAuth(c.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Events.DeleteEvent))

	// RSVPs
	mux.HandleFunc("GET /rsvps/my-rsvps", auth(c.RSVPs.ListMyRSVPs))
	mux.HandleFunc("PUT /events/{eventID}/rsvp", auth(c.RSVPs.Respond))
	mux.HandleFunc("DELETE /events/{eventID}/rsvp", auth(c.RSVPs.Cancel))

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(c.Invitations.SendInvitations))
	mux.HandleFunc("GET /events/{eventID}/invitations", auth(c.Invitations.ListInvitations))

	mux.HandleFunc("GET /healthz", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with request IDs, access logging and CORS.
func NewHandler(mux http.Handler, allowedOrigins []string, logger *slog.Logger) http.Handler {
	return middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, mux)))
}
