package notifiers

import (
	"time"

	"github.com/vidya-hq/vidya-tutor-client/internal/domain"
)

// Event types emitted by the client.
const (
	EventSessionCreated      = "session_created"
	EventSessionDeleted      = "session_deleted"
	EventAssessmentCompleted = "assessment_completed"
	EventTextbookUploaded    = "textbook_uploaded"
)

// Event represents the payload sent downstream.
type Event struct {
	Type        string             `json:"type"`
	UserID      string             `json:"user_id"`
	SessionID   string             `json:"session_id,omitempty"`
	Subject     string             `json:"subject,omitempty"`
	LearnerType domain.LearnerType `json:"learner_type,omitempty"`
	Detail      map[string]string  `json:"detail,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// NewEvent constructs an Event of the given type for a user.
func NewEvent(typ, userID string) Event {
	return Event{
		Type:       typ,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}
