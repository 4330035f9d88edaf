// Package bank manages the per-track question pool: sanitizing raw
// questions, deduplicating near-identical stems, balanced sampling, and
// the in-memory keyed cache seeded at startup.
package bank

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rgfreitas/certtrainer/internal/model"
)

var optionKeys = [4]string{"A", "B", "C", "D"}

// stemFolder decomposes to NFD and strips combining marks so accented and
// unaccented spellings of the same stem collide.
var stemFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeStem folds a question stem into its canonical dedup form:
// lowercase, diacritics removed, only letters and digits kept, whitespace
// runs collapsed to single spaces.
func NormalizeStem(stem string) string {
	folded, _, err := transform.String(stemFolder, strings.ToLower(stem))
	if err != nil {
		folded = strings.ToLower(stem)
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// DedupKey builds the dedup identity of a question from its primary
// objective reference and normalized stem.
func DedupKey(q model.Question) string {
	ref := ""
	if len(q.ObjectiveRefs) > 0 {
		ref = q.ObjectiveRefs[0]
	}
	return strings.ToUpper(ref) + "::" + NormalizeStem(q.Stem)
}

// EnsureUnique drops questions whose dedup key was already seen, keeping
// the first occurrence and preserving input order. Callers must feed
// questions in preference order (seed bank before generated additions).
func EnsureUnique(questions []model.Question) []model.Question {
	seen := make(map[string]struct{}, len(questions))
	result := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		key := DedupKey(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, q)
	}
	return result
}

// Sanitize validates raw questions for a track before they enter the bank.
// Rejections are logged and skipped: empty stems, option sets other than
// exactly A-D, and correct options outside the set. Difficulty defaults to
// medium, empty objective lists get a per-track placeholder, and blank IDs
// are assigned sequentially. Duplicates by stem and primary objective are
// removed, first occurrence wins.
func Sanitize(track string, raw []model.Question) []model.Question {
	result := make([]model.Question, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, q := range raw {
		stemKey := NormalizeStem(q.Stem)
		if stemKey == "" {
			slog.Warn("question rejected: empty or invalid stem", "track", track)
			continue
		}

		options := make(map[string]string, len(q.Options))
		for k, v := range q.Options {
			options[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
		if !HasStandardOptions(options) {
			slog.Warn("question rejected: options must be exactly A, B, C and D", "track", track)
			continue
		}

		correct := strings.ToUpper(strings.TrimSpace(q.CorrectOption))
		if _, ok := options[correct]; !ok {
			slog.Warn("question rejected: correct option missing or not in option set", "track", track)
			continue
		}

		refs := make([]string, 0, len(q.ObjectiveRefs))
		for _, r := range q.ObjectiveRefs {
			if r = strings.TrimSpace(r); r != "" {
				refs = append(refs, r)
			}
		}
		if len(refs) == 0 {
			refs = []string{track + ": Objetivo não informado"}
		}

		key := strings.ToUpper(refs[0]) + "::" + stemKey
		if _, dup := seen[key]; dup {
			slog.Warn("duplicate question removed", "track", track, "objective", refs[0])
			continue
		}
		seen[key] = struct{}{}

		id := strings.TrimSpace(q.ID)
		if id == "" {
			id = fmt.Sprintf("S%d", len(result)+1)
		}

		result = append(result, model.Question{
			ID:            id,
			Stem:          strings.TrimSpace(q.Stem),
			Options:       options,
			CorrectOption: correct,
			Difficulty:    model.ParseDifficulty(string(q.Difficulty)),
			ObjectiveRefs: refs,
		})
	}
	return result
}

// HasStandardOptions reports whether the option set is exactly {A,B,C,D}.
func HasStandardOptions(options map[string]string) bool {
	if len(options) != len(optionKeys) {
		return false
	}
	for _, k := range optionKeys {
		if _, ok := options[k]; !ok {
			return false
		}
	}
	return true
}
