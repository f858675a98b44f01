package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vidya-hq/vidya-tutor-client/internal/assessdb"
	"github.com/vidya-hq/vidya-tutor-client/internal/config"
	"github.com/vidya-hq/vidya-tutor-client/internal/domain"
	"github.com/vidya-hq/vidya-tutor-client/internal/history"
	"github.com/vidya-hq/vidya-tutor-client/internal/logger"
	"github.com/vidya-hq/vidya-tutor-client/internal/textbook"
	"github.com/vidya-hq/vidya-tutor-client/pkg/httpclient"
	"github.com/vidya-hq/vidya-tutor-client/pkg/notifiers"
	"github.com/vidya-hq/vidya-tutor-client/pkg/tutorapi"
)

// Tutor is the interactive chat runtime. It wires the remote facade, the
// local transcript store, the assessment store (for the learner profile), and
// the event fanout, then runs a line-oriented loop over stdin.
type Tutor struct {
	cfg     *config.Config
	svc     *tutorapi.Service
	store   history.Store
	assess  *assessdb.DB
	fanout  *notifiers.Fanout
	log     logger.Logger
	in      io.Reader
	out     io.Writer
	userID  string
	subject string
	learner domain.LearnerType

	sessionID string
}

// NewTutor builds the chat runtime from config.
func NewTutor(ctx context.Context, cfg *config.Config, log logger.Logger) (*Tutor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := httpclient.NewAuthenticatedRestyClient(cfg.APITimeout, cfg.APIToken)
	svc := tutorapi.New(cfg.APIBaseURL, client)

	store, err := history.NewStore(cfg.HistoryType, cfg.HistoryPath, history.Options{
		EntryTTL:        cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init history store: %w", err)
	}

	assess, err := assessdb.Open(cfg.AssessDBPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open assessment db: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.NotifiersFile, log)
	if err != nil {
		store.Close()
		assess.Close()
		return nil, err
	}

	userID := strings.TrimSpace(cfg.UserID)
	if userID == "" {
		userID = uuid.NewString()
		log.InfoObj("no user_id configured, generated one", "user_id", userID)
	}

	learner := domain.DefaultLearnerType
	if lt, ok, err := assess.LatestLearnerType(ctx, userID); err != nil {
		log.WarnObj("latest learner type lookup failed", "error", err.Error())
	} else if ok {
		learner = lt
	}

	return &Tutor{
		cfg:     cfg,
		svc:     svc,
		store:   store,
		assess:  assess,
		fanout:  fanout,
		log:     log,
		in:      os.Stdin,
		out:     os.Stdout,
		userID:  userID,
		subject: cfg.DefaultSubject,
		learner: learner,
	}, nil
}

// buildFanout loads the notifier registry. Notifier sinks are optional for
// the CLI: a missing file yields an empty fanout.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*notifiers.Fanout, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.WarnObj("notifiers file not found, events disabled", "path", path)
		return notifiers.NewFanout(nil), nil
	}

	reg, err := notifiers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}
	clients, err := notifiers.BuildAll(ctx, notifiers.DefaultRegistry(), reg.Enabled(), log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}
	fanout := notifiers.NewFanout(clients)
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count": fanout.Size(),
	})
	return fanout, nil
}

// Close releases the local stores.
func (t *Tutor) Close() error {
	var first error
	if err := t.store.Close(); err != nil {
		first = err
	}
	if err := t.assess.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Run opens a session and processes stdin lines until EOF, /quit, or
// context cancellation.
func (t *Tutor) Run(ctx context.Context) error {
	session, err := t.svc.CreateSession(ctx, t.userID)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	t.sessionID = session.ID
	t.emit(ctx, notifiers.EventSessionCreated, nil)
	t.log.InfoObj("session opened", "session_meta", map[string]any{
		"session_id":   t.sessionID,
		"subject":      t.subject,
		"learner_type": string(t.learner),
	})

	fmt.Fprintf(t.out, "session %s opened (subject %s, pace %s). /help for commands.\n",
		t.sessionID, t.subject, t.learner)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "/quit" {
				return nil
			}
			if err := t.handle(ctx, line); err != nil {
				fmt.Fprintf(t.out, "error: %v\n", err)
				t.log.WarnObj("command failed", "command_error", map[string]any{
					"input": line,
					"error": err.Error(),
				})
			}
		}
	}
}

func (t *Tutor) handle(ctx context.Context, line string) error {
	if !strings.HasPrefix(line, "/") {
		return t.chat(ctx, line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/help":
		fmt.Fprintln(t.out, "commands: /sessions /new /delete [id] /subject <name> /recommend /suggest <prefix> /upload <path> /history /quit")
		return nil
	case "/sessions":
		return t.listSessions(ctx)
	case "/new":
		return t.newSession(ctx)
	case "/delete":
		return t.deleteSession(ctx, arg)
	case "/subject":
		if arg == "" {
			return fmt.Errorf("usage: /subject <name>")
		}
		t.subject = arg
		fmt.Fprintf(t.out, "subject set to %s\n", t.subject)
		return nil
	case "/recommend":
		return t.recommend(ctx)
	case "/suggest":
		if arg == "" {
			return fmt.Errorf("usage: /suggest <prefix>")
		}
		return t.suggest(ctx, arg)
	case "/upload":
		if arg == "" {
			return fmt.Errorf("usage: /upload <path>")
		}
		return t.upload(ctx, arg)
	case "/history":
		return t.showHistory()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (t *Tutor) chat(ctx context.Context, query string) error {
	reply, err := t.svc.SendMessage(ctx, t.sessionID, query, t.subject, t.learner)
	if err != nil {
		return err
	}

	if err := t.store.Append(t.sessionID, history.Entry{Role: "user", Text: query}); err != nil {
		t.log.WarnObj("transcript append failed", "error", err.Error())
	}
	if err := t.store.Append(t.sessionID, history.Entry{Role: "tutor", Text: reply.Answer}); err != nil {
		t.log.WarnObj("transcript append failed", "error", err.Error())
	}

	fmt.Fprintln(t.out, reply.Answer)
	return nil
}

func (t *Tutor) listSessions(ctx context.Context) error {
	sessions, err := t.svc.Sessions(ctx)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		marker := " "
		if s.ID == t.sessionID {
			marker = "*"
		}
		fmt.Fprintf(t.out, "%s %s  %s\n", marker, s.ID, s.Title)
	}
	return nil
}

func (t *Tutor) newSession(ctx context.Context) error {
	session, err := t.svc.CreateSession(ctx, t.userID)
	if err != nil {
		return err
	}
	t.sessionID = session.ID
	t.emit(ctx, notifiers.EventSessionCreated, nil)
	fmt.Fprintf(t.out, "switched to new session %s\n", t.sessionID)
	return nil
}

func (t *Tutor) deleteSession(ctx context.Context, id string) error {
	if id == "" {
		id = t.sessionID
	}
	if err := t.svc.DeleteSession(ctx, t.userID, id); err != nil {
		return err
	}
	t.emit(ctx, notifiers.EventSessionDeleted, map[string]string{"deleted_session_id": id})
	fmt.Fprintf(t.out, "session %s deleted\n", id)
	if id == t.sessionID {
		return t.newSession(ctx)
	}
	return nil
}

func (t *Tutor) recommend(ctx context.Context) error {
	recs, err := t.svc.Recommendations(ctx, t.subject, t.learner)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(t.out, "no recommendations yet")
		return nil
	}
	for _, r := range recs {
		fmt.Fprintf(t.out, "- %s (%s)\n", r.Title, r.URL)
	}
	return nil
}

func (t *Tutor) suggest(ctx context.Context, prefix string) error {
	suggestions, err := t.svc.AutocompleteSuggestions(ctx, prefix, t.subject)
	if err != nil {
		return err
	}
	for _, s := range suggestions {
		fmt.Fprintf(t.out, "- %s\n", s.Text)
	}
	return nil
}

func (t *Tutor) upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open textbook: %w", err)
	}
	defer f.Close()

	fileName := filepath.Base(path)
	detail := map[string]string{"file_name": fileName}
	if strings.HasSuffix(strings.ToLower(path), ".html") || strings.HasSuffix(strings.ToLower(path), ".htm") {
		if meta, err := textbook.Inspect(f); err == nil && meta.Title != "" {
			detail["title"] = meta.Title
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind textbook: %w", err)
		}
	}

	receipt, err := t.svc.UploadTextbook(ctx, fileName, f)
	if err != nil {
		return err
	}
	detail["file_id"] = receipt.FileID
	t.emit(ctx, notifiers.EventTextbookUploaded, detail)
	fmt.Fprintf(t.out, "uploaded %s as %s\n", receipt.FileName, receipt.FileID)
	return nil
}

func (t *Tutor) showHistory() error {
	entries, err := t.store.Recent(t.sessionID, 20)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(t.out, "[%s] %s\n", e.Role, e.Text)
	}
	return nil
}

// emit fans the event out to configured sinks; delivery failures are logged,
// not surfaced to the chat loop.
func (t *Tutor) emit(ctx context.Context, typ string, detail map[string]string) {
	evt := notifiers.NewEvent(typ, t.userID)
	evt.SessionID = t.sessionID
	evt.Subject = t.subject
	evt.LearnerType = t.learner
	evt.Detail = detail

	if _, err := t.fanout.Notify(ctx, evt); err != nil {
		t.log.WarnObj("event delivery incomplete", "notify_error", map[string]any{
			"event_type": typ,
			"error":      err.Error(),
		})
	}
}
