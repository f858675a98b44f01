package domain

import "time"

// Domain contains core models shared across the client packages.

// LearnerType is the pacing profile attached to chat and recommendation calls.
type LearnerType string

const (
	LearnerSlow   LearnerType = "slow"
	LearnerMedium LearnerType = "medium"
	LearnerFast   LearnerType = "fast"
)

// DefaultLearnerType is used when a caller does not supply a profile.
const DefaultLearnerType = LearnerMedium

// Normalize returns the learner type, defaulting the zero value.
func (lt LearnerType) Normalize() LearnerType {
	if lt == "" {
		return DefaultLearnerType
	}
	return lt
}

// Session is a remote tutoring session.
type Session struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatReply is the tutor's answer to one message.
type ChatReply struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	Subject   string `json:"subject"`
}

// Recommendation is a suggested study resource.
type Recommendation struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Subject string `json:"subject"`
}

// Suggestion is an autocomplete candidate for a partial query.
type Suggestion struct {
	Text string `json:"text"`
}

// UploadReceipt acknowledges a stored textbook.
type UploadReceipt struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
}

// Question is a stored assessment question.
type Question struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	Question      string    `json:"question"`
	CorrectAnswer string    `json:"correct_answer"`
	VideoID       string    `json:"video_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AssessmentResult records one completed assessment for a user.
type AssessmentResult struct {
	ID            int64       `json:"id"`
	UserID        string      `json:"user_id"`
	VideoScore    int         `json:"video_score"`
	AptitudeScore int         `json:"aptitude_score"`
	LearnerType   LearnerType `json:"learner_type"`
	Date          time.Time   `json:"assessment_date"`
}
