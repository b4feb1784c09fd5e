package services

import "strings"

// EventLinks builds the client-facing URLs placed in e-mails.
type EventLinks struct {
	BaseURL string
}

// EventURL returns the public page of the event.
func (l EventLinks) EventURL(eventID string) string {
	return strings.TrimRight(l.BaseURL, "/") + "/events/" + eventID
}
