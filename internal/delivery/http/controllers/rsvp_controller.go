package controllers

import (
	"log/slog"
	"net/http"

	"eventcatalog/internal/delivery/http/helpers"
	"eventcatalog/internal/domain"
)

// RespondRequest is the request body for PUT /events/{eventID}/rsvp.
type RespondRequest struct {
	Status string `json:"status" example:"GOING"`
}

// RSVPResponse is the response body for PUT /events/{eventID}/rsvp.
type RSVPResponse struct {
	Message string       `json:"message"`
	RSVP    *domain.RSVP `json:"rsvp"`
}

// RSVPsResponse is the response body for GET /rsvps/my-rsvps.
type RSVPsResponse struct {
	RSVPs []*domain.RSVPDetail `json:"rsvps"`
}

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{Logger: logger, Service: svc}
}

// ListMyRSVPs godoc
// @Summary List my RSVPs
// @Description Every RSVP of the caller with its event (creator and RSVP count) and the caller's summary, ordered by event start date.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.RSVPsResponse
// @Failure 401 {object} helpers.MessageResponse "Unauthorized"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /rsvps/my-rsvps [get]
func (c *RSVPController) ListMyRSVPs(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	rsvps, err := c.Service.ListMyRSVPs(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgRSVPNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, RSVPsResponse{RSVPs: rsvps})
}

// Respond godoc
// @Summary RSVP to an event
// @Description Creates or updates the caller's RSVP. Private events require an invitation for the caller's e-mail. GOING is refused when the event is at capacity.
// @Tags rsvps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param rsvp body RespondRequest true "GOING, MAYBE or NOT_GOING"
// @Success 200 {object} controllers.RSVPResponse "RSVP updated"
// @Success 201 {object} controllers.RSVPResponse "RSVP created"
// @Failure 400 {object} helpers.MessageResponse "Invalid RSVP status"
// @Failure 401 {object} helpers.MessageResponse "Unauthorized"
// @Failure 403 {object} helpers.MessageResponse "Invitation required"
// @Failure 404 {object} helpers.MessageResponse "Event not found"
// @Failure 409 {object} helpers.MessageResponse "Event is full"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /events/{eventID}/rsvp [put]
func (c *RSVPController) Respond(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req RespondRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	status, err := domain.ParseRSVPStatus(req.Status)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	rsvp, created, err := c.Service.Respond(r.Context(), eventID, caller, status)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	if created {
		helpers.WriteJSON(w, http.StatusCreated, RSVPResponse{Message: "RSVP created successfully", RSVP: rsvp})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, RSVPResponse{Message: "RSVP updated successfully", RSVP: rsvp})
}

// Cancel godoc
// @Summary Cancel my RSVP
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.MessageResponse "RSVP cancelled successfully"
// @Failure 400 {object} helpers.MessageResponse "Invalid event ID"
// @Failure 401 {object} helpers.MessageResponse "Unauthorized"
// @Failure 404 {object} helpers.MessageResponse "RSVP not found"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /events/{eventID}/rsvp [delete]
func (c *RSVPController) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	if err := c.Service.Cancel(r.Context(), eventID, caller.UserID); err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgRSVPNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.MessageResponse{Message: "RSVP cancelled successfully"})
}
