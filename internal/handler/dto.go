package handler

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rgfreitas/certtrainer/internal/model"
)

const (
	defaultCount    = 10
	defaultLanguage = "pt-BR"
	defaultMode     = "light"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type createExamRequest struct {
	Track         string         `json:"track" validate:"required"`
	Count         int            `json:"count" validate:"min=1,max=50"`
	Language      string         `json:"language" validate:"required"`
	DifficultyMix map[string]int `json:"difficultyMix"`
}

type createExamResponse struct {
	ExamID    string           `json:"examId"`
	Track     string           `json:"track"`
	CreatedAt time.Time        `json:"createdAt"`
	Questions []model.Question `json:"questions"`
}

// publicQuestion is a question without its correct option, for learners.
type publicQuestion struct {
	ID            string            `json:"id"`
	Stem          string            `json:"stem"`
	Options       map[string]string `json:"options"`
	Difficulty    model.Difficulty  `json:"difficulty"`
	ObjectiveRefs []string          `json:"objectiveRefs"`
}

type getExamResponse struct {
	ExamID    string           `json:"examId"`
	Track     string           `json:"track"`
	CreatedAt time.Time        `json:"createdAt"`
	Questions []publicQuestion `json:"questions"`
}

type submitAnswersRequest struct {
	Answers []submittedAnswer `json:"answers" validate:"required,min=1,dive"`
}

type submittedAnswer struct {
	QuestionID string `json:"questionId" validate:"required"`
	Selected   string `json:"selected" validate:"required,oneof=A B C D"`
}

type submitAnswersResponse struct {
	SubmissionID string    `json:"submissionId"`
	ReceivedAt   time.Time `json:"receivedAt"`
}

type analysisRequest struct {
	AnalysisMode string `json:"analysisMode" validate:"required,oneof=light deep"`
	Language     string `json:"language" validate:"required"`
}

type analysisEnvelopeResponse struct {
	Result       *model.AnalysisResult `json:"result"`
	SubmissionID string                `json:"submissionId"`
	ExamID       string                `json:"examId"`
}

// validationErrors flattens validator output into a field->message map for
// the structured 400 body.
func validationErrors(err error) map[string]string {
	out := make(map[string]string)
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range errs {
			out[fe.Field()] = "failed validation on '" + fe.Tag() + "'"
		}
		return out
	}
	out["request"] = err.Error()
	return out
}
