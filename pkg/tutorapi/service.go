// Package tutorapi is a thin facade over the remote tutoring API. Each method
// maps its arguments onto one HTTP call against the injected transport and
// returns whatever the transport resolves; failures propagate unchanged.
package tutorapi

import (
	"context"
	"io"
	"strings"

	"github.com/vidya-hq/vidya-tutor-client/internal/domain"
	"github.com/vidya-hq/vidya-tutor-client/pkg/httpclient"
)

const (
	pathChat            = "/services/chat"
	pathSessions        = "/services/sessions"
	pathSessionCreate   = "/services/session/create"
	pathSessionDelete   = "/services/session/delete"
	pathRecommendations = "/services/recommendations"
	pathAutocomplete    = "/services/autocomplete"
	pathUpload          = "/services/upload"
)

// uploadFieldName is the multipart field the server reads the textbook from.
const uploadFieldName = "file"

// Service forwards tutoring operations to the remote API.
type Service struct {
	baseURL string
	client  httpclient.Client
}

// New builds a Service against baseURL using the given transport.
func New(baseURL string, client httpclient.Client) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (s *Service) url(path string) string { return s.baseURL + path }

// SendMessage posts one chat message to the active session. An empty
// learnerType defaults to domain.LearnerMedium.
func (s *Service) SendMessage(ctx context.Context, sessionID, userQuery, subject string, learnerType domain.LearnerType) (*domain.ChatReply, error) {
	var out domain.ChatReply
	_, err := s.client.Post(ctx, s.url(pathChat), nil, &httpclient.RequestOptions{
		Query: map[string]string{
			"session_id":   sessionID,
			"user_query":   userQuery,
			"subject":      subject,
			"learner_type": string(learnerType.Normalize()),
		},
		Result: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Sessions lists the caller's sessions.
func (s *Service) Sessions(ctx context.Context) ([]domain.Session, error) {
	var out []domain.Session
	_, err := s.client.Get(ctx, s.url(pathSessions), &httpclient.RequestOptions{
		Result: &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSession opens a new session for the user.
func (s *Service) CreateSession(ctx context.Context, userID string) (*domain.Session, error) {
	var out domain.Session
	_, err := s.client.Post(ctx, s.url(pathSessionCreate), nil, &httpclient.RequestOptions{
		Query:  map[string]string{"user_id": userID},
		Result: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession removes a session belonging to the user.
func (s *Service) DeleteSession(ctx context.Context, userID, sessionID string) error {
	_, err := s.client.Delete(ctx, s.url(pathSessionDelete), &httpclient.RequestOptions{
		Query: map[string]string{
			"user_id":    userID,
			"session_id": sessionID,
		},
	})
	return err
}

// Recommendations fetches study resources for a subject. An empty learnerType
// defaults to domain.LearnerMedium.
func (s *Service) Recommendations(ctx context.Context, subject string, learnerType domain.LearnerType) ([]domain.Recommendation, error) {
	var out []domain.Recommendation
	_, err := s.client.Post(ctx, s.url(pathRecommendations), nil, &httpclient.RequestOptions{
		Query: map[string]string{
			"subject":      subject,
			"learner_type": string(learnerType.Normalize()),
		},
		Result: &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AutocompleteSuggestions completes a partial query within a subject.
func (s *Service) AutocompleteSuggestions(ctx context.Context, userQueryPartial, subject string) ([]domain.Suggestion, error) {
	var out []domain.Suggestion
	_, err := s.client.Post(ctx, s.url(pathAutocomplete), nil, &httpclient.RequestOptions{
		Query: map[string]string{
			"user_query_partial": userQueryPartial,
			"subject":            subject,
		},
		Result: &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UploadTextbook streams a textbook to the server as a multipart form with
// the content under the "file" field.
func (s *Service) UploadTextbook(ctx context.Context, fileName string, r io.Reader) (*domain.UploadReceipt, error) {
	var out domain.UploadReceipt
	_, err := s.client.Post(ctx, s.url(pathUpload), &httpclient.File{
		FieldName: uploadFieldName,
		FileName:  fileName,
		Reader:    r,
	}, &httpclient.RequestOptions{
		Result: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
