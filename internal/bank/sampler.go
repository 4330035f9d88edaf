package bank

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/rgfreitas/certtrainer/internal/model"
)

// DefaultMix is the difficulty mix used when a request does not supply one.
func DefaultMix() map[string]int {
	return map[string]int{"easy": 4, "medium": 4, "hard": 2}
}

// SampleBalanced draws up to count questions from the bank following the
// difficulty mix: each tier gets a uniform random draw without replacement
// from the matching questions, then any shortfall is topped up from the
// rest of the bank ignoring difficulty. The result is truncated to count.
// An empty bank yields an empty result. A result shorter than count means
// the bank itself cannot supply count distinct questions.
func SampleBalanced(questions []model.Question, count int, mix map[string]int) []model.Question {
	if len(questions) == 0 || count <= 0 {
		return nil
	}
	if len(mix) == 0 {
		mix = DefaultMix()
	}

	selected := make([]model.Question, 0, count)
	used := make(map[int]bool, count)

	for _, tier := range mixOrder(mix) {
		want := mix[tier]
		if want <= 0 {
			continue
		}
		var pool []int
		for i, q := range questions {
			if !used[i] && strings.EqualFold(string(q.Difficulty), tier) {
				pool = append(pool, i)
			}
		}
		rand.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		if len(pool) > want {
			pool = pool[:want]
		}
		for _, i := range pool {
			used[i] = true
			selected = append(selected, questions[i])
		}
	}

	if len(selected) < count {
		var rest []int
		for i := range questions {
			if !used[i] {
				rest = append(rest, i)
			}
		}
		rand.Shuffle(len(rest), func(i, j int) {
			rest[i], rest[j] = rest[j], rest[i]
		})
		for _, i := range rest {
			if len(selected) >= count {
				break
			}
			used[i] = true
			selected = append(selected, questions[i])
		}
	}

	if len(selected) > count {
		selected = selected[:count]
	}
	return selected
}

// mixOrder returns the mix tiers in a deterministic order: the known
// difficulty tiers first, then any extra keys sorted. Go maps carry no
// iteration order, so the bucket order must be fixed here.
func mixOrder(mix map[string]int) []string {
	known := []string{
		string(model.DifficultyEasy),
		string(model.DifficultyMedium),
		string(model.DifficultyHard),
	}
	order := make([]string, 0, len(mix))
	for _, tier := range known {
		if _, ok := mix[tier]; ok {
			order = append(order, tier)
		}
	}
	var extra []string
	for k := range mix {
		switch k {
		case known[0], known[1], known[2]:
		default:
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}
