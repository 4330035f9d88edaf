// Package exam assembles exams from the question bank, topping the bank
// up through the LLM when sampling comes back short.
package exam

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rgfreitas/certtrainer/internal/bank"
	"github.com/rgfreitas/certtrainer/internal/model"
	"github.com/rgfreitas/certtrainer/internal/store"
)

// questionGenerator is the slice of the LLM client the assembler needs.
type questionGenerator interface {
	GenerateQuestions(ctx context.Context, track string, count int) ([]model.Question, int, int, error)
}

// Service builds and persists exams.
type Service struct {
	banks *bank.Store
	repo  *store.Store
	gen   questionGenerator
}

// New creates an exam service.
func New(banks *bank.Store, repo *store.Store, gen questionGenerator) *Service {
	return &Service{banks: banks, repo: repo, gen: gen}
}

// Create assembles an exam of count questions for a track and language.
// The bank is deduplicated and sampled first; if the sample is short the
// missing remainder is requested from the model, merged into the bank and
// resampled, and the enlarged bank is written back. A model failure
// degrades to cyclic repetition of bank items, or a single placeholder
// question when the bank is empty — exam creation never fails because the
// model is unavailable. The final selection is renumbered Q1..Qn and
// persisted.
func (s *Service) Create(ctx context.Context, track, language string, count int, mix map[string]int) (*model.Exam, error) {
	pool := cloneAll(bank.EnsureUnique(s.banks.Get(track, language)))

	selected := bank.SampleBalanced(pool, count, mix)

	if len(selected) < count {
		missing := count - len(selected)
		generated, tokIn, tokOut, err := s.gen.GenerateQuestions(ctx, track, missing)
		model.AddUsage(ctx, tokIn, tokOut)
		if err != nil {
			slog.Warn("question generation failed, using bank fallback", "track", track, "missing", missing, "error", err)
			selected = padFromBank(selected, pool, count)
			if len(selected) == 0 {
				slog.Warn("bank empty after generation failure, issuing placeholder question", "track", track)
				selected = []model.Question{placeholderQuestion()}
			}
		} else {
			for _, q := range generated {
				if !bank.HasStandardOptions(q.Options) {
					continue
				}
				pool = append(pool, q)
			}
			pool = bank.EnsureUnique(pool)
			selected = bank.SampleBalanced(pool, count, mix)
			s.banks.Set(track, language, cloneAll(pool))
		}
	}

	questions := make([]model.Question, len(selected))
	for i, q := range selected {
		c := q.Clone()
		c.ID = fmt.Sprintf("Q%d", i+1)
		questions[i] = c
	}

	exam := &model.Exam{
		ExamID:    uuid.NewString(),
		Track:     track,
		Language:  language,
		CreatedAt: time.Now().UTC(),
		Questions: questions,
	}
	if err := s.repo.SaveExam(exam); err != nil {
		return nil, fmt.Errorf("save exam: %w", err)
	}
	return exam, nil
}

// padFromBank repeats bank items cyclically (index modulo bank size) until
// the selection reaches count.
func padFromBank(selected, pool []model.Question, count int) []model.Question {
	for len(selected) < count && len(pool) > 0 {
		selected = append(selected, pool[len(selected)%len(pool)])
	}
	return selected
}

func placeholderQuestion() model.Question {
	return model.Question{
		ID:   "Q1",
		Stem: "Placeholder: nenhuma questão disponível (verifique seeds ou configuração da IA).",
		Options: map[string]string{
			"A": "Opção A",
			"B": "Opção B",
			"C": "Opção C",
			"D": "Opção D",
		},
		CorrectOption: "A",
		Difficulty:    model.DifficultyEasy,
		ObjectiveRefs: []string{"Placeholder"},
	}
}

func cloneAll(questions []model.Question) []model.Question {
	out := make([]model.Question, len(questions))
	for i, q := range questions {
		out[i] = q.Clone()
	}
	return out
}
