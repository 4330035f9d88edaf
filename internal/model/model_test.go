package model

import (
	"context"
	"sync"
	"testing"
)

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
	}{
		{"easy", DifficultyEasy},
		{"EASY", DifficultyEasy},
		{" hard ", DifficultyHard},
		{"medium", DifficultyMedium},
		{"", DifficultyMedium},
		{"expert", DifficultyMedium},
	}
	for _, tt := range tests {
		if got := ParseDifficulty(tt.in); got != tt.want {
			t.Errorf("ParseDifficulty(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuestionClone(t *testing.T) {
	q := Question{
		ID:            "Q1",
		Stem:          "pergunta",
		Options:       map[string]string{"A": "um", "B": "dois", "C": "três", "D": "quatro"},
		CorrectOption: "A",
		Difficulty:    DifficultyEasy,
		ObjectiveRefs: []string{"AZ-900: Conceitos"},
	}

	c := q.Clone()
	c.Options["A"] = "mudado"
	c.ObjectiveRefs[0] = "mudado"

	if q.Options["A"] != "um" {
		t.Error("Clone shares the options map")
	}
	if q.ObjectiveRefs[0] != "AZ-900: Conceitos" {
		t.Error("Clone shares the refs slice")
	}
}

func TestTokenUsage(t *testing.T) {
	u := &TokenUsage{}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u.Add(3, 7)
		}()
	}
	wg.Wait()

	in, out := u.Totals()
	if in != 30 || out != 70 {
		t.Errorf("Totals = (%d, %d), want (30, 70)", in, out)
	}
}

func TestUsageContext(t *testing.T) {
	// Without an accumulator AddUsage is a no-op.
	AddUsage(context.Background(), 5, 5)

	u := &TokenUsage{}
	ctx := ContextWithUsage(context.Background(), u)
	AddUsage(ctx, 5, 7)
	AddUsage(ctx, 1, 2)

	if got := UsageFromContext(ctx); got != u {
		t.Fatal("UsageFromContext returned a different accumulator")
	}
	in, out := u.Totals()
	if in != 6 || out != 9 {
		t.Errorf("Totals = (%d, %d), want (6, 9)", in, out)
	}
}
