package helpers

import (
	"encoding/json"
	"net/http"
)

// Client-facing error messages.
const (
	MsgUnauthorized       = "Unauthorized"
	MsgForbidden          = "Forbidden"
	MsgInternalError      = "Internal server error"
	MsgInvalidBody        = "Invalid request body"
	MsgInvalidEventID     = "Invalid event ID"
	MsgEventNotFound      = "Event not found"
	MsgRSVPNotFound       = "RSVP not found"
	MsgInvitationRequired = "Invitation required"
	MsgEventFull          = "Event is full"
)

// MessageResponse is the body of every error response and of success
// responses that carry only a message.
// swagger:model MessageResponse
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON sets Content-Type to application/json, writes statusCode and encodes body.
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSONError writes {"message": message} with statusCode.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, MessageResponse{Message: message})
}
