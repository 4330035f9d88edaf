package bank

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rgfreitas/certtrainer/internal/model"
)

func tieredBank(t *testing.T, easy, medium, hard int) []model.Question {
	t.Helper()
	var questions []model.Question
	add := func(difficulty model.Difficulty, n int) {
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("%s%d", strings.ToUpper(string(difficulty[:1])), i+1)
			q := testQuestion(t, id, "pergunta "+id, "AZ-900: Conceitos")
			q.Difficulty = difficulty
			questions = append(questions, q)
		}
	}
	add(model.DifficultyEasy, easy)
	add(model.DifficultyMedium, medium)
	add(model.DifficultyHard, hard)
	return questions
}

func countByDifficulty(questions []model.Question) map[model.Difficulty]int {
	counts := make(map[model.Difficulty]int)
	for _, q := range questions {
		counts[q.Difficulty]++
	}
	return counts
}

func TestSampleBalancedFollowsMix(t *testing.T) {
	bank := tieredBank(t, 10, 10, 10)

	got := SampleBalanced(bank, 10, DefaultMix())
	if len(got) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(got))
	}

	counts := countByDifficulty(got)
	if counts[model.DifficultyEasy] != 4 {
		t.Errorf("easy count = %d, want 4", counts[model.DifficultyEasy])
	}
	if counts[model.DifficultyMedium] != 4 {
		t.Errorf("medium count = %d, want 4", counts[model.DifficultyMedium])
	}
	if counts[model.DifficultyHard] != 2 {
		t.Errorf("hard count = %d, want 2", counts[model.DifficultyHard])
	}

	// No repeats.
	seen := make(map[string]bool)
	for _, q := range got {
		if seen[q.ID] {
			t.Errorf("question %s sampled twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSampleBalancedTopsUpOnShortfall(t *testing.T) {
	// Only one hard question: the mix asks for 2, the second slot must be
	// filled from other tiers.
	bank := tieredBank(t, 10, 10, 1)

	got := SampleBalanced(bank, 10, DefaultMix())
	if len(got) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(got))
	}

	counts := countByDifficulty(got)
	if counts[model.DifficultyHard] != 1 {
		t.Errorf("hard count = %d, want 1", counts[model.DifficultyHard])
	}
	if counts[model.DifficultyEasy]+counts[model.DifficultyMedium] != 9 {
		t.Errorf("easy+medium = %d, want 9", counts[model.DifficultyEasy]+counts[model.DifficultyMedium])
	}
}

func TestSampleBalancedSmallBank(t *testing.T) {
	bank := tieredBank(t, 2, 1, 0)

	got := SampleBalanced(bank, 10, DefaultMix())
	if len(got) != 3 {
		t.Fatalf("expected all 3 bank questions, got %d", len(got))
	}
}

func TestSampleBalancedEdgeCases(t *testing.T) {
	bank := tieredBank(t, 3, 3, 3)

	if got := SampleBalanced(nil, 10, DefaultMix()); got != nil {
		t.Errorf("empty bank: expected nil, got %d questions", len(got))
	}
	if got := SampleBalanced(bank, 0, DefaultMix()); got != nil {
		t.Errorf("count 0: expected nil, got %d questions", len(got))
	}

	// Nil mix falls back to the default mix.
	got := SampleBalanced(bank, 5, nil)
	if len(got) != 5 {
		t.Errorf("nil mix: expected 5 questions, got %d", len(got))
	}
}

func TestSampleBalancedTruncatesOversizedMix(t *testing.T) {
	bank := tieredBank(t, 10, 10, 10)

	// Mix asks for more than count; result must still be capped.
	got := SampleBalanced(bank, 5, map[string]int{"easy": 10, "medium": 10, "hard": 10})
	if len(got) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(got))
	}
}

func TestSampleBalancedCustomTier(t *testing.T) {
	bank := tieredBank(t, 5, 5, 0)
	// Unknown tier keys contribute nothing but must not break sampling.
	got := SampleBalanced(bank, 4, map[string]int{"easy": 2, "medium": 2, "expert": 3})
	if len(got) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(got))
	}
}
