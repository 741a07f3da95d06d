package domain

import "github.com/google/uuid"

// generateID creates a new unique session identifier.
func generateID() string {
	return uuid.New().String()
}

// NewEventID creates an identifier for a journal entry.
func NewEventID() string {
	return uuid.NewString()
}
