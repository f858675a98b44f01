package tutorapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vidya-hq/vidya-tutor-client/internal/domain"
	"github.com/vidya-hq/vidya-tutor-client/pkg/httpclient"
)

// recordingClient captures the descriptor of the last call.
type recordingClient struct {
	method string
	url    string
	body   any
	opts   *httpclient.RequestOptions
	err    error
}

type stubResponse struct{}

func (stubResponse) Body() []byte    { return nil }
func (stubResponse) StatusCode() int { return http.StatusOK }

func (r *recordingClient) record(method, url string, body any, opts *httpclient.RequestOptions) (httpclient.Response, error) {
	r.method, r.url, r.body, r.opts = method, url, body, opts
	if r.err != nil {
		return nil, r.err
	}
	return stubResponse{}, nil
}

func (r *recordingClient) Get(_ context.Context, url string, opts *httpclient.RequestOptions) (httpclient.Response, error) {
	return r.record(http.MethodGet, url, nil, opts)
}

func (r *recordingClient) Post(_ context.Context, url string, body any, opts *httpclient.RequestOptions) (httpclient.Response, error) {
	return r.record(http.MethodPost, url, body, opts)
}

func (r *recordingClient) Delete(_ context.Context, url string, opts *httpclient.RequestOptions) (httpclient.Response, error) {
	return r.record(http.MethodDelete, url, nil, opts)
}

func (r *recordingClient) query() map[string]string {
	if r.opts == nil {
		return nil
	}
	return r.opts.Query
}

func assertQuery(t *testing.T, got map[string]string, want map[string]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("query params = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("query %s = %q, want %q", k, got[k], v)
		}
	}
}

func TestSendMessageDescriptor(t *testing.T) {
	client := &recordingClient{}
	svc := New("http://api.test", client)

	_, err := svc.SendMessage(context.Background(), "s1", "what is torque", "physics", domain.LearnerFast)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if client.method != http.MethodPost || client.url != "http://api.test/services/chat" {
		t.Fatalf("call = %s %s", client.method, client.url)
	}
	assertQuery(t, client.query(), map[string]string{
		"session_id":   "s1",
		"user_query":   "what is torque",
		"subject":      "physics",
		"learner_type": "fast",
	})
	if client.body != nil {
		t.Fatalf("chat must carry no request body, got %v", client.body)
	}
}

func TestSendMessageDefaultsLearnerType(t *testing.T) {
	client := &recordingClient{}
	svc := New("http://api.test", client)

	if _, err := svc.SendMessage(context.Background(), "s1", "q", "math", ""); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got := client.query()["learner_type"]; got != "medium" {
		t.Fatalf("learner_type = %q, want medium", got)
	}
}

func TestSessionsDescriptor(t *testing.T) {
	client := &recordingClient{}
	svc := New("http://api.test/", client)

	if _, err := svc.Sessions(context.Background()); err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if client.method != http.MethodGet || client.url != "http://api.test/services/sessions" {
		t.Fatalf("call = %s %s", client.method, client.url)
	}
	if len(client.query()) != 0 {
		t.Fatalf("sessions listing takes no parameters, got %v", client.query())
	}
}

func TestCreateSessionDescriptor(t *testing.T) {
	client := &recordingClient{}
	svc := New("http://api.test", client)

	if _, err := svc.CreateSession(context.Background(), "u1"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if client.method != http.MethodPost || client.url != "http://api.test/services/session/create" {
		t.Fatalf("call = %s %s", client.method, client.url)
	}
	assertQuery(t, client.query(), map[string]string{"user_id": "u1"})
}

func TestDeleteSessionDescriptor(t *testing.T) {
	client := &recordingClient{}
	svc := New("http://api.test", client)

	if err := svc.DeleteSession(context.Background(), "u1", "s9"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if client.method != http.MethodDelete || client.url != "http://api.test/services/session/delete" {
		t.Fatalf("call = %s %s", client.method, client.url)
	}
	assertQuery(t, client.query(), map[string]string{"user_id": "u1", "session_id": "s9"})
}

func TestRecommendationsDescriptor(t *testing.T) {
	client := &recordingClient{}
	svc := New("http://api.test", client)

	if _, err := svc.Recommendations(context.Background(), "chemistry", ""); err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	if client.method != http.MethodPost || client.url != "http://api.test/services/recommendations" {
		t.Fatalf("call = %s %s", client.method, client.url)
	}
	assertQuery(t, client.query(), map[string]string{
		"subject":      "chemistry",
		"learner_type": "medium",
	})
}

func TestAutocompleteDescriptor(t *testing.T) {
	client := &recordingClient{}
	svc := New("http://api.test", client)

	if _, err := svc.AutocompleteSuggestions(context.Background(), "newto", "physics"); err != nil {
		t.Fatalf("AutocompleteSuggestions: %v", err)
	}
	if client.method != http.MethodPost || client.url != "http://api.test/services/autocomplete" {
		t.Fatalf("call = %s %s", client.method, client.url)
	}
	assertQuery(t, client.query(), map[string]string{
		"user_query_partial": "newto",
		"subject":            "physics",
	})
}

func TestUploadTextbookDescriptor(t *testing.T) {
	client := &recordingClient{}
	svc := New("http://api.test", client)

	if _, err := svc.UploadTextbook(context.Background(), "algebra.html", strings.NewReader("x")); err != nil {
		t.Fatalf("UploadTextbook: %v", err)
	}
	file, ok := client.body.(*httpclient.File)
	if !ok {
		t.Fatalf("upload body = %T, want *httpclient.File", client.body)
	}
	if file.FieldName != "file" || file.FileName != "algebra.html" {
		t.Fatalf("upload file = %q under field %q", file.FileName, file.FieldName)
	}
}

func TestTransportErrorsPropagateUnchanged(t *testing.T) {
	sentinel := errors.New("connection refused")
	client := &recordingClient{err: sentinel}
	svc := New("http://api.test", client)
	ctx := context.Background()

	calls := map[string]func() error{
		"SendMessage": func() error {
			_, err := svc.SendMessage(ctx, "s", "q", "math", "")
			return err
		},
		"Sessions": func() error {
			_, err := svc.Sessions(ctx)
			return err
		},
		"CreateSession": func() error {
			_, err := svc.CreateSession(ctx, "u")
			return err
		},
		"DeleteSession": func() error {
			return svc.DeleteSession(ctx, "u", "s")
		},
		"Recommendations": func() error {
			_, err := svc.Recommendations(ctx, "math", "")
			return err
		},
		"AutocompleteSuggestions": func() error {
			_, err := svc.AutocompleteSuggestions(ctx, "p", "math")
			return err
		},
		"UploadTextbook": func() error {
			_, err := svc.UploadTextbook(ctx, "f", strings.NewReader("x"))
			return err
		},
	}

	for name, call := range calls {
		if err := call(); !errors.Is(err, sentinel) {
			t.Fatalf("%s: error = %v, want the transport's error identity", name, err)
		}
	}
}

// End-to-end through the real resty transport: multipart body shape and the
// JSON receipt decode.
func TestUploadTextbookMultipartOverHTTP(t *testing.T) {
	const content = "<html><head><title>Algebra</title></head></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/upload" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Fatalf("content type = %s", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		got, _ := io.ReadAll(f)
		if string(got) != content {
			t.Fatalf("file content = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"file_id":"tb-1","file_name":"` + hdr.Filename + `","size":48}`))
	}))
	defer srv.Close()

	svc := New(srv.URL, httpclient.NewRestyClient(2*time.Second))
	receipt, err := svc.UploadTextbook(context.Background(), "algebra.html", strings.NewReader(content))
	if err != nil {
		t.Fatalf("UploadTextbook: %v", err)
	}
	if receipt.FileID != "tb-1" || receipt.FileName != "algebra.html" {
		t.Fatalf("receipt = %+v", receipt)
	}
}

func TestConcurrentCallsAreIndependent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/services/sessions":
			w.Write([]byte(`[{"session_id":"s1"}]`))
		case "/services/recommendations":
			w.Write([]byte(`[{"title":"Mechanics"}]`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	svc := New(srv.URL, httpclient.NewRestyClient(2*time.Second))
	done := make(chan error, 2)
	go func() {
		sessions, err := svc.Sessions(context.Background())
		if err == nil && (len(sessions) != 1 || sessions[0].ID != "s1") {
			err = errors.New("unexpected sessions payload")
		}
		done <- err
	}()
	go func() {
		recs, err := svc.Recommendations(context.Background(), "physics", "")
		if err == nil && (len(recs) != 1 || recs[0].Title != "Mechanics") {
			err = errors.New("unexpected recommendations payload")
		}
		done <- err
	}()
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent call: %v", err)
		}
	}
}
