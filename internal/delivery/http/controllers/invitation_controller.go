package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"eventcatalog/internal/delivery/http/helpers"
	"eventcatalog/internal/domain"
)

// maxInvitationsPerRequest bounds the emails list of one POST.
const maxInvitationsPerRequest = 100

// SendInvitationsRequest is the request body for POST /events/{eventID}/invitations.
type SendInvitationsRequest struct {
	Emails []string `json:"emails"`
}

// Validate implements Validator.
func (s SendInvitationsRequest) Validate() []string {
	if len(s.Emails) == 0 {
		return []string{"emails is required"}
	}
	if len(s.Emails) > maxInvitationsPerRequest {
		return []string{fmt.Sprintf("at most %d emails per request", maxInvitationsPerRequest)}
	}
	return nil
}

// SendInvitationsResponse is the response body for POST /events/{eventID}/invitations.
// failed lists addresses that were malformed or could not be delivered.
type SendInvitationsResponse struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// ListInvitationsResponse is the response body for GET /events/{eventID}/invitations.
type ListInvitationsResponse struct {
	Invitations []*domain.EventInvitation `json:"invitations"`
	Pagination  helpers.PaginationMeta    `json:"pagination"`
}

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{Logger: logger, Service: svc}
}

// SendInvitations godoc
// @Summary Invite e-mail addresses to an event
// @Description Owner only. Addresses are lower-cased and deduplicated; already invited addresses are skipped.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body SendInvitationsRequest true "Addresses to invite"
// @Success 200 {object} controllers.SendInvitationsResponse
// @Failure 400 {object} helpers.MessageResponse "validation failure"
// @Failure 401 {object} helpers.MessageResponse "Unauthorized"
// @Failure 403 {object} helpers.MessageResponse "Forbidden"
// @Failure 404 {object} helpers.MessageResponse "Event not found"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /events/{eventID}/invitations [post]
func (c *InvitationController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req SendInvitationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sent, failed, err := c.Service.SendEventInvitations(r.Context(), eventID, caller.UserID, req.Emails)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	if failed == nil {
		failed = []string{}
	}
	helpers.WriteJSON(w, http.StatusOK, SendInvitationsResponse{Sent: sent, Failed: failed})
}

// ListInvitations godoc
// @Summary List event invitations
// @Description Owner only. Most recent first; search matches the e-mail (case-insensitive).
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param search query string false "E-mail substring"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 12, max 100)"
// @Success 200 {object} controllers.ListInvitationsResponse
// @Failure 400 {object} helpers.MessageResponse "Invalid event ID"
// @Failure 401 {object} helpers.MessageResponse "Unauthorized"
// @Failure 403 {object} helpers.MessageResponse "Forbidden"
// @Failure 404 {object} helpers.MessageResponse "Event not found"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /events/{eventID}/invitations [get]
func (c *InvitationController) ListInvitations(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	invs, total, err := c.Service.ListEventInvitations(r.Context(), eventID, caller.UserID, search, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ListInvitationsResponse{
		Invitations: invs,
		Pagination:  helpers.NewPaginationMeta(params, total),
	})
}
