package bank

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rgfreitas/certtrainer/internal/model"
)

func TestStoreGetSet(t *testing.T) {
	s := NewStore()

	if got := s.Get("AZ-900", "pt-BR"); len(got) != 0 {
		t.Fatalf("empty store returned %d questions", len(got))
	}

	s.Set("AZ-900", "pt-BR", []model.Question{
		testQuestion(t, "Q1", "primeira", "AZ-900: Conceitos"),
		testQuestion(t, "Q2", "segunda", "AZ-900: Conceitos"),
	})

	got := s.Get("AZ-900", "pt-BR")
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}

	// The returned slice is a copy: reordering it must not affect the store.
	got[0], got[1] = got[1], got[0]
	again := s.Get("AZ-900", "pt-BR")
	if again[0].ID != "Q1" {
		t.Errorf("store slice was mutated through a Get copy")
	}

	// Different language is a different bank.
	if en := s.Get("AZ-900", "en"); len(en) != 0 {
		t.Errorf("expected empty en bank, got %d questions", len(en))
	}

	// Set replaces the whole bank.
	s.Set("AZ-900", "pt-BR", []model.Question{testQuestion(t, "Q3", "terceira", "AZ-900: Conceitos")})
	if got := s.Get("AZ-900", "pt-BR"); len(got) != 1 || got[0].ID != "Q3" {
		t.Errorf("Set did not replace the bank: %v", got)
	}
}

func TestStoreKeys(t *testing.T) {
	s := NewStore()
	s.Set("DP-900", "pt-BR", nil)
	s.Set("AZ-900", "pt-BR", nil)
	s.Set("AZ-900", "en", nil)

	keys := s.Keys()
	want := []Key{
		{"AZ-900", "en"},
		{"AZ-900", "pt-BR"},
		{"DP-900", "pt-BR"},
	}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %v, want %v", i, keys[i], want[i])
		}
	}
}

func TestSeedFileName(t *testing.T) {
	tests := []struct {
		track string
		want  string
	}{
		{"AZ-900", "questions.az900.json"},
		{"AI-900", "questions.ai900.json"},
		{"DP-900", "questions.dp900.json"},
		{"custom", "questions.custom.json"},
	}
	for _, tt := range tests {
		if got := SeedFileName(tt.track); got != tt.want {
			t.Errorf("SeedFileName(%q) = %q, want %q", tt.track, got, tt.want)
		}
	}
}

func writeSeedFile(t *testing.T, dir, track string, questions []model.Question) {
	t.Helper()
	data, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SeedFileName(track)), data, 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
}

func TestLoadSeeds(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "AZ-900", []model.Question{
		testQuestion(t, "Q1", "primeira pergunta", "AZ-900: Conceitos"),
		testQuestion(t, "Q2", "segunda pergunta", "AZ-900: Conceitos"),
	})
	// Malformed file for AI-900.
	if err := os.WriteFile(filepath.Join(dir, SeedFileName("AI-900")), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write malformed seed: %v", err)
	}
	// No file at all for DP-900.

	s := NewStore()
	LoadSeeds(dir, []string{"AZ-900", "AI-900", "DP-900"}, "pt-BR", s)

	if got := s.Get("AZ-900", "pt-BR"); len(got) != 2 {
		t.Errorf("AZ-900: expected 2 questions, got %d", len(got))
	}
	if got := s.Get("AI-900", "pt-BR"); len(got) != 0 {
		t.Errorf("AI-900: malformed seed should leave bank empty, got %d", len(got))
	}
	if got := s.Get("DP-900", "pt-BR"); len(got) != 0 {
		t.Errorf("DP-900: missing seed should leave bank empty, got %d", len(got))
	}
}

func TestLoadSeedsSanitizes(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "AZ-900", []model.Question{
		testQuestion(t, "Q1", "pergunta boa", "AZ-900: Conceitos"),
		{Stem: "", CorrectOption: "A"}, // rejected
	})

	s := NewStore()
	LoadSeeds(dir, []string{"AZ-900"}, "pt-BR", s)

	if got := s.Get("AZ-900", "pt-BR"); len(got) != 1 {
		t.Errorf("expected invalid question to be dropped, got %d", len(got))
	}
}
