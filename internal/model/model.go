package model

import (
	"strings"
	"time"
)

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes a difficulty tag. Absent or unknown values
// default to medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Question is a multiple-choice question with exactly four options keyed A-D.
type Question struct {
	ID            string            `json:"id"`
	Stem          string            `json:"stem"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correctOption"`
	Difficulty    Difficulty        `json:"difficulty"`
	ObjectiveRefs []string          `json:"objectiveRefs"`
}

// Clone returns a deep copy so bank entries and exam questions never alias.
func (q Question) Clone() Question {
	c := q
	c.Options = make(map[string]string, len(q.Options))
	for k, v := range q.Options {
		c.Options[k] = v
	}
	c.ObjectiveRefs = append([]string(nil), q.ObjectiveRefs...)
	return c
}

// Exam is an assembled set of questions for one track and language.
// Immutable once created.
type Exam struct {
	ExamID    string     `json:"examId"`
	Track     string     `json:"track"`
	Language  string     `json:"language"`
	CreatedAt time.Time  `json:"createdAt"`
	Questions []Question `json:"questions"`
}

// SubmissionAnswer is a single selected option for a question.
type SubmissionAnswer struct {
	QuestionID string `json:"questionId"`
	Selected   string `json:"selected"`
}

// Submission records a learner's answers to an exam.
type Submission struct {
	SubmissionID string             `json:"submissionId"`
	ExamID       string             `json:"examId"`
	ReceivedAt   time.Time          `json:"receivedAt"`
	Answers      []SubmissionAnswer `json:"answers"`
}

// PerQuestionAnalysis is the graded outcome for one question.
type PerQuestionAnalysis struct {
	QuestionID    string   `json:"questionId"`
	IsCorrect     bool     `json:"isCorrect"`
	Explanation   string   `json:"explanation"`
	ObjectiveRefs []string `json:"objectiveRefs,omitempty"`
}

// ResourceLink points at external study material.
type ResourceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// StudyPlanItem is one recommended study topic.
type StudyPlanItem struct {
	Topic     string         `json:"topic"`
	Why       string         `json:"why"`
	Resources []ResourceLink `json:"resources"`
}

// AnalysisResult is the score and feedback report for a submission.
type AnalysisResult struct {
	Score       int                   `json:"score"`
	PerQuestion []PerQuestionAnalysis `json:"perQuestion"`
	Strengths   []string              `json:"strengths"`
	Gaps        []string              `json:"gaps"`
	StudyPlan   []StudyPlanItem       `json:"studyPlan"`
}
