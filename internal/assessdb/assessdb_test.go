package assessdb

import (
	"context"
	"testing"

	"github.com/vidya-hq/vidya-tutor-client/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir() + "/assessment.db")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBulkSaveVideoQuestionsReplacesPrevious(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.SaveVideoQuestion(ctx, "u1", "old q", "old a", "vid-0"); err != nil {
		t.Fatalf("SaveVideoQuestion: %v", err)
	}

	ids, err := db.BulkSaveVideoQuestions(ctx, "u1", []domain.Question{
		{Question: "q1", CorrectAnswer: "a1"},
		{Question: "q2", CorrectAnswer: "a2"},
	}, "vid-1")
	if err != nil {
		t.Fatalf("BulkSaveVideoQuestions: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}

	got, err := db.VideoQuestions(ctx, "u1")
	if err != nil {
		t.Fatalf("VideoQuestions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("previous questions should be replaced, got %d rows", len(got))
	}
	if got[0].Question != "q1" || got[1].Question != "q2" {
		t.Fatalf("unexpected order: %q, %q", got[0].Question, got[1].Question)
	}
	if got[0].VideoID != "vid-1" {
		t.Fatalf("video id = %q", got[0].VideoID)
	}
}

func TestBulkSaveScopedPerUser(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.BulkSaveAptitudeQuestions(ctx, "u1", []domain.Question{{Question: "q", CorrectAnswer: "a"}}); err != nil {
		t.Fatalf("BulkSaveAptitudeQuestions u1: %v", err)
	}
	if _, err := db.BulkSaveAptitudeQuestions(ctx, "u2", []domain.Question{{Question: "q", CorrectAnswer: "a"}}); err != nil {
		t.Fatalf("BulkSaveAptitudeQuestions u2: %v", err)
	}

	got, err := db.AptitudeQuestions(ctx, "u1")
	if err != nil {
		t.Fatalf("AptitudeQuestions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("replacing u2's questions must not touch u1's, got %d rows", len(got))
	}
}

func TestQuestionsCappedAtRoundSize(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	questions := make([]domain.Question, 7)
	for i := range questions {
		questions[i] = domain.Question{Question: "q", CorrectAnswer: "a"}
	}
	if _, err := db.BulkSaveVideoQuestions(ctx, "u1", questions, ""); err != nil {
		t.Fatalf("BulkSaveVideoQuestions: %v", err)
	}

	got, err := db.VideoQuestions(ctx, "u1")
	if err != nil {
		t.Fatalf("VideoQuestions: %v", err)
	}
	if len(got) != questionLimit {
		t.Fatalf("expected %d questions, got %d", questionLimit, len(got))
	}
}

func TestAssessmentHistoryAndLatestLearnerType(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, _, err := db.LatestLearnerType(ctx, "u1"); err != nil {
		t.Fatalf("LatestLearnerType empty: %v", err)
	}
	if _, ok, _ := db.LatestLearnerType(ctx, "u1"); ok {
		t.Fatalf("expected no learner type before any assessment")
	}

	if _, err := db.SaveAssessment(ctx, "u1", 2, 2, domain.LearnerSlow); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	if _, err := db.SaveAssessment(ctx, "u1", 4, 5, domain.LearnerFast); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}

	lt, ok, err := db.LatestLearnerType(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("LatestLearnerType: ok=%v err=%v", ok, err)
	}
	if lt != domain.LearnerFast {
		t.Fatalf("latest learner type = %q, want fast", lt)
	}

	hist, err := db.AssessmentHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("AssessmentHistory: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(hist))
	}
	if hist[0].LearnerType != domain.LearnerFast {
		t.Fatalf("history not newest first: %+v", hist[0])
	}
}

func TestSaveRejectsEmptyUserID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.SaveAptitudeQuestion(ctx, "", "q", "a"); err != ErrUserIDEmpty {
		t.Fatalf("expected ErrUserIDEmpty, got %v", err)
	}
	if _, err := db.SaveAssessment(ctx, "", 1, 1, domain.LearnerSlow); err != ErrUserIDEmpty {
		t.Fatalf("expected ErrUserIDEmpty, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		video, aptitude int
		want            domain.LearnerType
	}{
		{5, 5, domain.LearnerFast},
		{4, 4, domain.LearnerFast},
		{3, 4, domain.LearnerMedium},
		{2, 3, domain.LearnerMedium},
		{2, 2, domain.LearnerSlow},
		{0, 0, domain.LearnerSlow},
	}
	for _, tc := range cases {
		if got := Classify(tc.video, tc.aptitude); got != tc.want {
			t.Fatalf("Classify(%d, %d) = %q, want %q", tc.video, tc.aptitude, got, tc.want)
		}
	}
}
