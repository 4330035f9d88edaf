// Package feedback grades submissions and produces analysis reports,
// calling the LLM only when the score and mode warrant it and falling back
// to locally synthesized feedback when the model's reply cannot be
// decoded.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/rgfreitas/certtrainer/internal/i18n"
	"github.com/rgfreitas/certtrainer/internal/llm"
	"github.com/rgfreitas/certtrainer/internal/llm/prompts"
	"github.com/rgfreitas/certtrainer/internal/model"
)

const (
	// tokenBudget bounds the estimated size of the analysis prompt.
	tokenBudget = 8000
	// lightWrongCap and deepWrongCap bound how many missed questions are
	// sent to the model per mode.
	lightWrongCap = 6
	deepWrongCap  = 10
	// shortCircuitScore skips the model call entirely in light mode.
	shortCircuitScore = 90
)

// chatClient is the slice of the LLM client the engine needs.
type chatClient interface {
	ChatJSON(ctx context.Context, systemPrompt, userPrompt string, format llm.ResponseFormat) (string, int, int, error)
}

// Engine generates analysis reports for submissions.
type Engine struct {
	llm chatClient
}

// New creates a feedback engine.
func New(c chatClient) *Engine {
	return &Engine{llm: c}
}

// graded is the local ground truth for one exam question.
type graded struct {
	question model.Question
	selected string
	answered bool
	correct  bool
}

// Generate grades the submission locally, short-circuits on high scores in
// light mode, and otherwise asks the model to explain the missed
// questions. The model is never trusted for correctness: its reply is
// reconciled against local grading, and an undecodable reply degrades to a
// fully synthesized local report. A transport failure propagates to the
// caller.
func (e *Engine) Generate(ctx context.Context, exam *model.Exam, sub *model.Submission, mode, language string) (*model.AnalysisResult, error) {
	loc := i18n.NewLocalizer(language)

	answers := make(map[string]string, len(sub.Answers))
	for _, a := range sub.Answers {
		if _, ok := answers[a.QuestionID]; !ok {
			answers[a.QuestionID] = a.Selected
		}
	}

	items := make([]graded, 0, len(exam.Questions))
	correctCount := 0
	for _, q := range exam.Questions {
		sel, ok := answers[q.ID]
		g := graded{question: q, selected: sel, answered: ok}
		if ok && strings.EqualFold(q.CorrectOption, sel) {
			g.correct = true
			correctCount++
		}
		items = append(items, g)
	}

	total := len(exam.Questions)
	score := int(math.Round(100 * float64(correctCount) / float64(max(1, total))))

	// Economic path: high score and the caller did not ask for deep analysis.
	if mode != prompts.ModeDeep && score >= shortCircuitScore {
		return lightResult(loc, items, score), nil
	}

	wrong := make([]graded, 0, len(items))
	for _, g := range items {
		if !g.correct {
			wrong = append(wrong, g)
		}
	}
	limit := lightWrongCap
	if mode == prompts.ModeDeep {
		limit = deepWrongCap
	}
	if len(wrong) > limit {
		wrong = wrong[:limit]
	}

	if len(wrong) == 0 {
		return cleanResult(loc, items, score), nil
	}

	sys := prompts.AnalysisSystem(mode)
	user := prompts.AnalysisUser(wrongQuestions(wrong), wrongAnswers(wrong), language, mode)
	for llm.EstimateTokens(sys+user) > tokenBudget && len(wrong) > 1 {
		wrong = wrong[:len(wrong)-1]
		user = prompts.AnalysisUser(wrongQuestions(wrong), wrongAnswers(wrong), language, mode)
	}

	content, tokIn, tokOut, err := e.llm.ChatJSON(ctx, sys, user, llm.FormatJSONObject)
	model.AddUsage(ctx, tokIn, tokOut)
	if err != nil {
		return nil, fmt.Errorf("analysis call: %w", err)
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		slog.Error("undecodable analysis response, synthesizing local fallback", "error", err)
		return fallbackResult(loc, items, wrong, score, correctCount, total), nil
	}

	reconcile(loc, &result, items, score)
	return &result, nil
}

// lightResult covers the high-score short circuit: generic explanations,
// one generic strength, no gaps or study plan, zero model tokens.
func lightResult(loc *goi18n.Localizer, items []graded, score int) *model.AnalysisResult {
	per := make([]model.PerQuestionAnalysis, len(items))
	for i, g := range items {
		expl := i18n.T(loc, "analysis.review")
		if g.correct {
			expl = i18n.T(loc, "analysis.correct")
		}
		per[i] = model.PerQuestionAnalysis{
			QuestionID:    g.question.ID,
			IsCorrect:     g.correct,
			Explanation:   expl,
			ObjectiveRefs: g.question.ObjectiveRefs,
		}
	}
	return &model.AnalysisResult{
		Score:       score,
		PerQuestion: per,
		Strengths:   []string{i18n.T(loc, "analysis.strength_overall")},
		Gaps:        []string{},
		StudyPlan:   []model.StudyPlanItem{},
	}
}

// cleanResult covers a worklist that is empty after capping: nothing
// material was missed, so no model call is made.
func cleanResult(loc *goi18n.Localizer, items []graded, score int) *model.AnalysisResult {
	per := make([]model.PerQuestionAnalysis, len(items))
	for i, g := range items {
		per[i] = model.PerQuestionAnalysis{
			QuestionID:    g.question.ID,
			IsCorrect:     g.correct,
			Explanation:   i18n.T(loc, "analysis.correct"),
			ObjectiveRefs: g.question.ObjectiveRefs,
		}
	}
	return &model.AnalysisResult{
		Score:       score,
		PerQuestion: per,
		Strengths:   []string{i18n.T(loc, "analysis.no_critical")},
		Gaps:        []string{},
		StudyPlan:   []model.StudyPlanItem{},
	}
}

// fallbackResult synthesizes a full report from local grading alone, used
// when the model's reply cannot be decoded.
func fallbackResult(loc *goi18n.Localizer, items, wrong []graded, score, correctCount, total int) *model.AnalysisResult {
	per := make([]model.PerQuestionAnalysis, len(items))
	for i, g := range items {
		var expl string
		switch {
		case g.correct:
			expl = i18n.T(loc, "analysis.correct")
		case !g.answered:
			expl = i18n.T(loc, "analysis.not_answered")
		default:
			expl = i18n.T(loc, "analysis.fallback_wrong")
		}
		per[i] = model.PerQuestionAnalysis{
			QuestionID:    g.question.ID,
			IsCorrect:     g.correct,
			Explanation:   expl,
			ObjectiveRefs: g.question.ObjectiveRefs,
		}
	}

	strengths := []string{}
	if correctCount >= total/2 {
		strengths = append(strengths, i18n.T(loc, "analysis.basic_knowledge"))
	}

	gaps := make([]string, 0, len(wrong))
	seenGaps := make(map[string]struct{}, len(wrong))
	plan := make([]model.StudyPlanItem, 0, len(wrong))
	for _, g := range wrong {
		topic := strings.Join(g.question.ObjectiveRefs, "; ")
		if _, dup := seenGaps[topic]; !dup {
			seenGaps[topic] = struct{}{}
			gaps = append(gaps, topic)
		}
		plan = append(plan, model.StudyPlanItem{
			Topic: topic,
			Why:   i18n.Td(loc, "analysis.error_in_question", map[string]any{"QuestionID": g.question.ID}),
			Resources: []model.ResourceLink{{
				Title: i18n.T(loc, "analysis.resource_title"),
				URL:   i18n.T(loc, "analysis.resource_url"),
			}},
		})
	}

	return &model.AnalysisResult{
		Score:       score,
		PerQuestion: per,
		Strengths:   strengths,
		Gaps:        gaps,
		StudyPlan:   plan,
	}
}

// reconcile merges the model's report with local ground truth. Local
// correctness and score always win, objective refs are backfilled, blank
// explanations get templated texts, entries for unknown questions are
// dropped, duplicates collapse first-wins, and every graded question ends
// up in the list exactly once.
func reconcile(loc *goi18n.Localizer, result *model.AnalysisResult, items []graded, score int) {
	byID := make(map[string]graded, len(items))
	for _, g := range items {
		byID[g.question.ID] = g
	}

	result.Score = score

	merged := make([]model.PerQuestionAnalysis, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range result.PerQuestion {
		g, known := byID[item.QuestionID]
		if !known || seen[item.QuestionID] {
			continue
		}
		seen[item.QuestionID] = true

		item.IsCorrect = g.correct
		if len(item.ObjectiveRefs) == 0 {
			item.ObjectiveRefs = g.question.ObjectiveRefs
		}
		if blank(item.Explanation) {
			if g.correct {
				item.Explanation = i18n.T(loc, "analysis.keep_going")
			} else {
				item.Explanation = i18n.Td(loc, "analysis.reconcile_wrong", map[string]any{
					"Correct":    g.question.CorrectOption,
					"Objectives": strings.Join(g.question.ObjectiveRefs, ", "),
				})
			}
		}
		merged = append(merged, item)
	}

	for _, g := range items {
		if seen[g.question.ID] {
			continue
		}
		expl := i18n.T(loc, "analysis.correct_short")
		if !g.correct {
			expl = i18n.Td(loc, "analysis.missing_from_model", map[string]any{
				"Correct":    g.question.CorrectOption,
				"Objectives": strings.Join(g.question.ObjectiveRefs, ", "),
			})
		}
		merged = append(merged, model.PerQuestionAnalysis{
			QuestionID:    g.question.ID,
			IsCorrect:     g.correct,
			Explanation:   expl,
			ObjectiveRefs: g.question.ObjectiveRefs,
		})
	}
	result.PerQuestion = merged

	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.Gaps == nil {
		result.Gaps = []string{}
	}
	if result.StudyPlan == nil {
		result.StudyPlan = []model.StudyPlanItem{}
	}
}

func wrongQuestions(wrong []graded) []model.Question {
	qs := make([]model.Question, len(wrong))
	for i, g := range wrong {
		qs[i] = g.question
	}
	return qs
}

func wrongAnswers(wrong []graded) []prompts.WrongAnswer {
	was := make([]prompts.WrongAnswer, len(wrong))
	for i, g := range wrong {
		was[i] = prompts.WrongAnswer{QuestionID: g.question.ID, Selected: g.selected}
	}
	return was
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
