// Package handler exposes the trainer's JSON API over chi.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rgfreitas/certtrainer/internal/bank"
	"github.com/rgfreitas/certtrainer/internal/exam"
	"github.com/rgfreitas/certtrainer/internal/feedback"
	"github.com/rgfreitas/certtrainer/internal/llm"
	"github.com/rgfreitas/certtrainer/internal/model"
	"github.com/rgfreitas/certtrainer/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	exams    *exam.Service
	feedback *feedback.Engine
	repo     *store.Store
	banks    *bank.Store
	llm      *llm.Client
}

// New creates a new Handler.
func New(exams *exam.Service, fb *feedback.Engine, repo *store.Store, banks *bank.Store, client *llm.Client) *Handler {
	return &Handler{exams: exams, feedback: fb, repo: repo, banks: banks, llm: client}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/exams", h.handleCreateExam)
	r.Get("/exams/{examID}", h.handleGetExam)
	r.Post("/exams/{examID}/submissions", h.handleSubmitAnswers)
	r.Get("/exams/{examID}/submissions/latest", h.handleLatestSubmission)
	r.Post("/submissions/{submissionID}/analysis", h.handleAnalysis)
	r.Get("/ai/ping", h.handleAIPing)
	r.Get("/seed/status", h.handleSeedStatus)
}

func (h *Handler) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	var req createExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Count == 0 {
		req.Count = defaultCount
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, validationErrors(err))
		return
	}
	if req.DifficultyMix != nil {
		sum := 0
		for _, n := range req.DifficultyMix {
			sum += n
		}
		if sum <= 0 {
			writeValidationErrors(w, map[string]string{"difficultyMix": "mix counts must sum to more than zero"})
			return
		}
	}

	created, err := h.exams.Create(r.Context(), req.Track, req.Language, req.Count, req.DifficultyMix)
	if err != nil {
		slog.Error("create exam failed", "track", req.Track, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create exam")
		return
	}

	// Correct options included: this response is for validation/authoring.
	writeJSON(w, http.StatusOK, createExamResponse{
		ExamID:    created.ExamID,
		Track:     created.Track,
		CreatedAt: created.CreatedAt,
		Questions: created.Questions,
	})
}

func (h *Handler) handleGetExam(w http.ResponseWriter, r *http.Request) {
	examID := chi.URLParam(r, "examID")
	found, err := h.repo.GetExam(examID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "exam not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	questions := make([]publicQuestion, len(found.Questions))
	for i, q := range found.Questions {
		questions[i] = publicQuestion{
			ID:            q.ID,
			Stem:          q.Stem,
			Options:       q.Options,
			Difficulty:    q.Difficulty,
			ObjectiveRefs: q.ObjectiveRefs,
		}
	}
	writeJSON(w, http.StatusOK, getExamResponse{
		ExamID:    found.ExamID,
		Track:     found.Track,
		CreatedAt: found.CreatedAt,
		Questions: questions,
	})
}

func (h *Handler) handleSubmitAnswers(w http.ResponseWriter, r *http.Request) {
	examID := chi.URLParam(r, "examID")

	var req submitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, validationErrors(err))
		return
	}

	if _, err := h.repo.GetExam(examID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "exam not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	answers := make([]model.SubmissionAnswer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = model.SubmissionAnswer{QuestionID: a.QuestionID, Selected: a.Selected}
	}
	sub := &model.Submission{
		SubmissionID: uuid.NewString(),
		ExamID:       examID,
		ReceivedAt:   time.Now().UTC(),
		Answers:      answers,
	}
	if err := h.repo.SaveSubmission(sub); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, submitAnswersResponse{
		SubmissionID: sub.SubmissionID,
		ReceivedAt:   sub.ReceivedAt,
	})
}

func (h *Handler) handleLatestSubmission(w http.ResponseWriter, r *http.Request) {
	examID := chi.URLParam(r, "examID")

	if _, err := h.repo.GetExam(examID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "exam not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sub, err := h.repo.LatestSubmission(examID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "exam has no submissions")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submissionID")

	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AnalysisMode == "" {
		req.AnalysisMode = defaultMode
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, validationErrors(err))
		return
	}

	sub, err := h.repo.GetSubmission(submissionID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	owning, err := h.repo.GetExam(sub.ExamID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "exam for submission not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.feedback.Generate(r.Context(), owning, sub, req.AnalysisMode, req.Language)
	if err != nil {
		slog.Error("analysis failed", "submission_id", submissionID, "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analysisEnvelopeResponse{
		Result:       result,
		SubmissionID: sub.SubmissionID,
		ExamID:       owning.ExamID,
	})
}

func (h *Handler) handleAIPing(w http.ResponseWriter, r *http.Request) {
	content, tokIn, tokOut, err := h.llm.ChatJSON(r.Context(),
		"Você é um serviço de verificação. Responda somente JSON.",
		`Retorne {"status":"ok"}`,
		llm.FormatJSONObject,
	)
	model.AddUsage(r.Context(), tokIn, tokOut)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"tokensIn":  tokIn,
		"tokensOut": tokOut,
		"raw":       content,
	})
}

func (h *Handler) handleSeedStatus(w http.ResponseWriter, _ *http.Request) {
	type trackStatus struct {
		Track        string         `json:"track"`
		Language     string         `json:"language"`
		Total        int            `json:"total"`
		ByDifficulty map[string]int `json:"byDifficulty"`
	}

	keys := h.banks.Keys()
	status := make([]trackStatus, 0, len(keys))
	for _, k := range keys {
		questions := h.banks.Get(k.Track, k.Language)
		counts := make(map[string]int)
		for _, q := range questions {
			counts[string(q.Difficulty)]++
		}
		status = append(status, trackStatus{
			Track:        k.Track,
			Language:     k.Language,
			Total:        len(questions),
			ByDifficulty: counts,
		})
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeValidationErrors(w http.ResponseWriter, errs map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}
