// Package store persists exams and submissions in SQLite. Records are
// written once at creation and never updated.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rgfreitas/certtrainer/internal/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an exam or submission does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exams (
		exam_id TEXT PRIMARY KEY,
		track TEXT NOT NULL,
		language TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		questions TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS submissions (
		submission_id TEXT PRIMARY KEY,
		exam_id TEXT NOT NULL,
		received_at DATETIME NOT NULL,
		answers TEXT NOT NULL,
		FOREIGN KEY (exam_id) REFERENCES exams(exam_id)
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_exam ON submissions(exam_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveExam stores an exam. The question list is serialized as JSON.
func (s *Store) SaveExam(exam *model.Exam) error {
	questions, err := json.Marshal(exam.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO exams (exam_id, track, language, created_at, questions) VALUES (?, ?, ?, ?, ?)`,
		exam.ExamID, exam.Track, exam.Language, exam.CreatedAt, string(questions),
	)
	return err
}

// GetExam returns an exam by ID, or ErrNotFound.
func (s *Store) GetExam(examID string) (*model.Exam, error) {
	var exam model.Exam
	var questions string
	err := s.db.QueryRow(
		`SELECT exam_id, track, language, created_at, questions FROM exams WHERE exam_id = ?`, examID,
	).Scan(&exam.ExamID, &exam.Track, &exam.Language, &exam.CreatedAt, &questions)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(questions), &exam.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return &exam, nil
}

// SaveSubmission stores a submission.
func (s *Store) SaveSubmission(sub *model.Submission) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO submissions (submission_id, exam_id, received_at, answers) VALUES (?, ?, ?, ?)`,
		sub.SubmissionID, sub.ExamID, sub.ReceivedAt, string(answers),
	)
	return err
}

// GetSubmission returns a submission by ID, or ErrNotFound.
func (s *Store) GetSubmission(submissionID string) (*model.Submission, error) {
	return s.scanSubmission(s.db.QueryRow(
		`SELECT submission_id, exam_id, received_at, answers FROM submissions WHERE submission_id = ?`,
		submissionID,
	))
}

// LatestSubmission returns the most recent submission for an exam, or
// ErrNotFound when the exam has none.
func (s *Store) LatestSubmission(examID string) (*model.Submission, error) {
	return s.scanSubmission(s.db.QueryRow(
		`SELECT submission_id, exam_id, received_at, answers FROM submissions
		 WHERE exam_id = ? ORDER BY received_at DESC, rowid DESC LIMIT 1`,
		examID,
	))
}

func (s *Store) scanSubmission(row *sql.Row) (*model.Submission, error) {
	var sub model.Submission
	var answers string
	err := row.Scan(&sub.SubmissionID, &sub.ExamID, &sub.ReceivedAt, &answers)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(answers), &sub.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return &sub, nil
}
