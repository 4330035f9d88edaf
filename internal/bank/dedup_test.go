package bank

import (
	"testing"

	"github.com/rgfreitas/certtrainer/internal/model"
)

func testQuestion(t *testing.T, id, stem, ref string) model.Question {
	t.Helper()
	return model.Question{
		ID:   id,
		Stem: stem,
		Options: map[string]string{
			"A": "opção a", "B": "opção b", "C": "opção c", "D": "opção d",
		},
		CorrectOption: "A",
		Difficulty:    model.DifficultyMedium,
		ObjectiveRefs: []string{ref},
	}
}

func TestNormalizeStem(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "What is Azure?", "what is azure"},
		{"accents folded", "O que é computação em nuvem?", "o que e computacao em nuvem"},
		{"punctuation stripped", "VMs: IaaS, PaaS (or SaaS)?", "vms iaas paas or saas"},
		{"whitespace collapsed", "  muitos \t  espaços \n aqui ", "muitos espacos aqui"},
		{"case folded", "AZURE Policy", "azure policy"},
		{"digits kept", "Porta 443 ou 80?", "porta 443 ou 80"},
		{"only punctuation", "?!...", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStem(tt.in); got != tt.want {
				t.Errorf("NormalizeStem(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDedupKey(t *testing.T) {
	q := testQuestion(t, "Q1", "O que é IaaS?", "az-900: conceitos de nuvem")
	want := "AZ-900: CONCEITOS DE NUVEM::o que e iaas"
	if got := DedupKey(q); got != want {
		t.Errorf("DedupKey = %q, want %q", got, want)
	}

	q.ObjectiveRefs = nil
	if got := DedupKey(q); got != "::o que e iaas" {
		t.Errorf("DedupKey without refs = %q", got)
	}
}

func TestEnsureUnique(t *testing.T) {
	questions := []model.Question{
		testQuestion(t, "Q1", "O que é computação em nuvem?", "AZ-900: Conceitos"),
		// Same stem modulo accents and case under the same objective.
		testQuestion(t, "Q2", "o que e COMPUTACAO em nuvem", "az-900: conceitos"),
		// Same stem but different primary objective survives.
		testQuestion(t, "Q3", "O que é computação em nuvem?", "AI-900: Fundamentos"),
		testQuestion(t, "Q4", "Outra pergunta", "AZ-900: Conceitos"),
	}

	got := EnsureUnique(questions)
	if len(got) != 3 {
		t.Fatalf("expected 3 unique questions, got %d", len(got))
	}
	// First occurrence wins and order is preserved.
	if got[0].ID != "Q1" || got[1].ID != "Q3" || got[2].ID != "Q4" {
		t.Errorf("unexpected survivors: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestSanitize(t *testing.T) {
	raw := []model.Question{
		{
			Stem:          "  Pergunta válida?  ",
			Options:       map[string]string{"a": " Um ", "b": "Dois", "C": "Três", "d": "Quatro"},
			CorrectOption: " b ",
			Difficulty:    "hard",
		},
		{
			// Empty stem.
			Stem:          "???",
			Options:       map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"},
			CorrectOption: "A",
		},
		{
			// Missing one option.
			Stem:          "Faltando opção",
			Options:       map[string]string{"A": "1", "B": "2", "C": "3"},
			CorrectOption: "A",
		},
		{
			// Correct option outside the set.
			Stem:          "Resposta inválida",
			Options:       map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"},
			CorrectOption: "E",
		},
		{
			// Duplicate of the first question.
			Stem:          "Pergunta valida",
			Options:       map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"},
			CorrectOption: "A",
		},
	}

	got := Sanitize("AZ-900", raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 sanitized question, got %d", len(got))
	}

	q := got[0]
	if q.Stem != "Pergunta válida?" {
		t.Errorf("stem not trimmed: %q", q.Stem)
	}
	if q.CorrectOption != "B" {
		t.Errorf("correct option = %q, want B", q.CorrectOption)
	}
	if q.Options["A"] != "Um" {
		t.Errorf("option keys/values not normalized: %v", q.Options)
	}
	if q.Difficulty != model.DifficultyHard {
		t.Errorf("difficulty = %q, want hard", q.Difficulty)
	}
	if q.ID != "S1" {
		t.Errorf("blank ID not assigned: %q", q.ID)
	}
	if len(q.ObjectiveRefs) != 1 || q.ObjectiveRefs[0] != "AZ-900: Objetivo não informado" {
		t.Errorf("missing objective default not applied: %v", q.ObjectiveRefs)
	}
}

func TestSanitizeDefaultsDifficulty(t *testing.T) {
	raw := []model.Question{{
		ID:            "X1",
		Stem:          "Sem dificuldade",
		Options:       map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"},
		CorrectOption: "C",
		Difficulty:    "impossible",
	}}

	got := Sanitize("DP-900", raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	if got[0].Difficulty != model.DifficultyMedium {
		t.Errorf("unknown difficulty = %q, want medium default", got[0].Difficulty)
	}
}

func TestHasStandardOptions(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]string
		want    bool
	}{
		{"exact set", map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"}, true},
		{"missing D", map[string]string{"A": "1", "B": "2", "C": "3"}, false},
		{"extra E", map[string]string{"A": "1", "B": "2", "C": "3", "D": "4", "E": "5"}, false},
		{"wrong keys", map[string]string{"A": "1", "B": "2", "C": "3", "E": "5"}, false},
		{"empty", map[string]string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasStandardOptions(tt.options); got != tt.want {
				t.Errorf("HasStandardOptions = %v, want %v", got, tt.want)
			}
		})
	}
}
