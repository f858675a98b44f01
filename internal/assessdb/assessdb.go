// Package assessdb stores assessment questions and results locally so the
// client can derive a learner profile without a round trip.
package assessdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vidya-hq/vidya-tutor-client/internal/domain"
	_ "modernc.org/sqlite" // SQLite driver
)

var ErrUserIDEmpty = errors.New("user id is empty")

// questionLimit caps how many questions one assessment round uses.
const questionLimit = 5

// DB is the SQLite-backed assessment store.
type DB struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed and applies
// the schema.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create assessdb directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open assessment db: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{db: db}, nil
}

func applySchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS video_questions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	question TEXT NOT NULL,
	correct_answer TEXT NOT NULL,
	video_id TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS aptitude_questions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	question TEXT NOT NULL,
	correct_answer TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS user_assessments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	video_score INTEGER NOT NULL,
	aptitude_score INTEGER NOT NULL,
	learner_type TEXT NOT NULL,
	assessment_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SaveVideoQuestion stores one video question and returns its id.
func (d *DB) SaveVideoQuestion(ctx context.Context, userID, question, correctAnswer, videoID string) (int64, error) {
	if userID == "" {
		return 0, ErrUserIDEmpty
	}
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO video_questions (user_id, question, correct_answer, video_id) VALUES (?, ?, ?, ?)`,
		userID, question, correctAnswer, videoID)
	if err != nil {
		return 0, fmt.Errorf("insert video question: %w", err)
	}
	return res.LastInsertId()
}

// SaveAptitudeQuestion stores one aptitude question and returns its id.
func (d *DB) SaveAptitudeQuestion(ctx context.Context, userID, question, correctAnswer string) (int64, error) {
	if userID == "" {
		return 0, ErrUserIDEmpty
	}
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO aptitude_questions (user_id, question, correct_answer) VALUES (?, ?, ?)`,
		userID, question, correctAnswer)
	if err != nil {
		return 0, fmt.Errorf("insert aptitude question: %w", err)
	}
	return res.LastInsertId()
}

// BulkSaveVideoQuestions replaces the user's video questions with the given
// set in a single transaction and returns the inserted ids.
func (d *DB) BulkSaveVideoQuestions(ctx context.Context, userID string, questions []domain.Question, videoID string) ([]int64, error) {
	if userID == "" {
		return nil, ErrUserIDEmpty
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM video_questions WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("clear previous video questions: %w", err)
	}

	ids := make([]int64, 0, len(questions))
	for _, q := range questions {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO video_questions (user_id, question, correct_answer, video_id) VALUES (?, ?, ?, ?)`,
			userID, q.Question, q.CorrectAnswer, videoID)
		if err != nil {
			return nil, fmt.Errorf("insert video question: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}

// BulkSaveAptitudeQuestions replaces the user's aptitude questions with the
// given set in a single transaction and returns the inserted ids.
func (d *DB) BulkSaveAptitudeQuestions(ctx context.Context, userID string, questions []domain.Question) ([]int64, error) {
	if userID == "" {
		return nil, ErrUserIDEmpty
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM aptitude_questions WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("clear previous aptitude questions: %w", err)
	}

	ids := make([]int64, 0, len(questions))
	for _, q := range questions {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO aptitude_questions (user_id, question, correct_answer) VALUES (?, ?, ?)`,
			userID, q.Question, q.CorrectAnswer)
		if err != nil {
			return nil, fmt.Errorf("insert aptitude question: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}

// VideoQuestions returns the user's video questions, oldest first, capped at
// one assessment round.
func (d *DB) VideoQuestions(ctx context.Context, userID string) ([]domain.Question, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, question, correct_answer, COALESCE(video_id, '') FROM video_questions
		 WHERE user_id = ? ORDER BY id LIMIT ?`, userID, questionLimit)
	if err != nil {
		return nil, fmt.Errorf("query video questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q := domain.Question{UserID: userID}
		if err := rows.Scan(&q.ID, &q.Question, &q.CorrectAnswer, &q.VideoID); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// AptitudeQuestions returns the user's aptitude questions, oldest first,
// capped at one assessment round.
func (d *DB) AptitudeQuestions(ctx context.Context, userID string) ([]domain.Question, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, question, correct_answer FROM aptitude_questions
		 WHERE user_id = ? ORDER BY id LIMIT ?`, userID, questionLimit)
	if err != nil {
		return nil, fmt.Errorf("query aptitude questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q := domain.Question{UserID: userID}
		if err := rows.Scan(&q.ID, &q.Question, &q.CorrectAnswer); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// SaveAssessment records one completed assessment and returns its id.
func (d *DB) SaveAssessment(ctx context.Context, userID string, videoScore, aptitudeScore int, learnerType domain.LearnerType) (int64, error) {
	if userID == "" {
		return 0, ErrUserIDEmpty
	}
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO user_assessments (user_id, video_score, aptitude_score, learner_type) VALUES (?, ?, ?, ?)`,
		userID, videoScore, aptitudeScore, string(learnerType))
	if err != nil {
		return 0, fmt.Errorf("insert assessment: %w", err)
	}
	return res.LastInsertId()
}

// AssessmentHistory returns all assessments for a user, newest first.
func (d *DB) AssessmentHistory(ctx context.Context, userID string) ([]domain.AssessmentResult, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, video_score, aptitude_score, learner_type, assessment_date FROM user_assessments
		 WHERE user_id = ? ORDER BY assessment_date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []domain.AssessmentResult
	for rows.Next() {
		r := domain.AssessmentResult{UserID: userID}
		var lt string
		if err := rows.Scan(&r.ID, &r.VideoScore, &r.AptitudeScore, &lt, &r.Date); err != nil {
			return nil, err
		}
		r.LearnerType = domain.LearnerType(lt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestLearnerType returns the most recently determined learner type for a
// user. The second return is false when the user has no assessments yet.
func (d *DB) LatestLearnerType(ctx context.Context, userID string) (domain.LearnerType, bool, error) {
	var lt string
	err := d.db.QueryRowContext(ctx,
		`SELECT learner_type FROM user_assessments
		 WHERE user_id = ? ORDER BY assessment_date DESC, id DESC LIMIT 1`, userID).Scan(&lt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query latest learner type: %w", err)
	}
	return domain.LearnerType(lt), true, nil
}

// Classify maps combined scores (out of 2*questionLimit) to a learner type.
func Classify(videoScore, aptitudeScore int) domain.LearnerType {
	switch total := videoScore + aptitudeScore; {
	case total >= 8:
		return domain.LearnerFast
	case total >= 5:
		return domain.LearnerMedium
	default:
		return domain.LearnerSlow
	}
}
