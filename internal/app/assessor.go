package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/vidya-hq/vidya-tutor-client/internal/assessdb"
	"github.com/vidya-hq/vidya-tutor-client/internal/config"
	"github.com/vidya-hq/vidya-tutor-client/internal/domain"
	"github.com/vidya-hq/vidya-tutor-client/internal/logger"
	"github.com/vidya-hq/vidya-tutor-client/pkg/notifiers"
)

// Assessor runs one assessment round over the user's stored questions and
// records the resulting learner type.
type Assessor struct {
	cfg    *config.Config
	db     *assessdb.DB
	fanout *notifiers.Fanout
	log    logger.Logger
	in     io.Reader
	out    io.Writer
	userID string
}

// NewAssessor builds the assessment runtime from config.
func NewAssessor(ctx context.Context, cfg *config.Config, log logger.Logger) (*Assessor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	db, err := assessdb.Open(cfg.AssessDBPath)
	if err != nil {
		return nil, fmt.Errorf("open assessment db: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.NotifiersFile, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	userID := strings.TrimSpace(cfg.UserID)
	if userID == "" {
		userID = uuid.NewString()
		log.InfoObj("no user_id configured, generated one", "user_id", userID)
	}

	return &Assessor{
		cfg:    cfg,
		db:     db,
		fanout: fanout,
		log:    log,
		in:     os.Stdin,
		out:    os.Stdout,
		userID: userID,
	}, nil
}

// Close releases the assessment store.
func (a *Assessor) Close() error { return a.db.Close() }

// Run asks each stored question, scores the answers, classifies the learner
// type, and persists the result.
func (a *Assessor) Run(ctx context.Context) error {
	video, err := a.db.VideoQuestions(ctx, a.userID)
	if err != nil {
		return fmt.Errorf("load video questions: %w", err)
	}
	aptitude, err := a.db.AptitudeQuestions(ctx, a.userID)
	if err != nil {
		return fmt.Errorf("load aptitude questions: %w", err)
	}
	if len(video) == 0 && len(aptitude) == 0 {
		return fmt.Errorf("no assessment questions stored for user %s", a.userID)
	}

	reader := bufio.NewReader(a.in)

	fmt.Fprintln(a.out, "video comprehension:")
	videoScore, err := a.ask(ctx, reader, video)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "aptitude:")
	aptitudeScore, err := a.ask(ctx, reader, aptitude)
	if err != nil {
		return err
	}

	learner := assessdb.Classify(videoScore, aptitudeScore)
	if _, err := a.db.SaveAssessment(ctx, a.userID, videoScore, aptitudeScore, learner); err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}

	evt := notifiers.NewEvent(notifiers.EventAssessmentCompleted, a.userID)
	evt.LearnerType = learner
	evt.Detail = map[string]string{
		"video_score":    fmt.Sprintf("%d", videoScore),
		"aptitude_score": fmt.Sprintf("%d", aptitudeScore),
	}
	if _, err := a.fanout.Notify(ctx, evt); err != nil {
		a.log.WarnObj("event delivery incomplete", "notify_error", err.Error())
	}

	a.log.InfoObj("assessment recorded", "assessment_meta", map[string]any{
		"user_id":        a.userID,
		"video_score":    videoScore,
		"aptitude_score": aptitudeScore,
		"learner_type":   string(learner),
	})
	fmt.Fprintf(a.out, "scores: video %d, aptitude %d — learner type %s\n", videoScore, aptitudeScore, learner)
	return nil
}

// ask prompts each question and counts correct answers.
func (a *Assessor) ask(ctx context.Context, reader *bufio.Reader, questions []domain.Question) (int, error) {
	score := 0
	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return score, err
		}
		fmt.Fprintf(a.out, "%d) %s\n> ", i+1, q.Question)
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return score, fmt.Errorf("read answer: %w", err)
		}
		if answerMatches(answer, q.CorrectAnswer) {
			score++
		}
		if err == io.EOF {
			break
		}
	}
	return score, nil
}

// answerMatches compares answers ignoring case and surrounding whitespace.
func answerMatches(answer, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(correct))
}
