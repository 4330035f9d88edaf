package llm

import (
	"encoding/json"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rgfreitas/certtrainer/internal/model"
)

// compactQuestionSchema constrains question generation to single-letter
// keys: s (stem), o (options a-d), c (correct), d (difficulty), r
// (objective refs). Short keys keep completion token counts down.
var compactQuestionSchema = &openai.ChatCompletionResponseFormatJSONSchema{
	Name:   "questions_compact",
	Strict: true,
	Schema: json.RawMessage(`{
		"type": "array",
		"items": {
			"type": "object",
			"properties": {
				"s": {"type": "string"},
				"o": {
					"type": "object",
					"properties": {
						"a": {"type": "string"},
						"b": {"type": "string"},
						"c": {"type": "string"},
						"d": {"type": "string"}
					},
					"required": ["a", "b", "c", "d"]
				},
				"c": {"type": "string", "enum": ["A", "B", "C", "D"]},
				"d": {"type": "string", "enum": ["easy", "medium", "hard"]},
				"r": {"type": "array", "items": {"type": "string"}, "minItems": 1}
			},
			"required": ["s", "o", "c", "r"]
		}
	}`),
}

type compactQuestion struct {
	Stem       string            `json:"s"`
	Options    map[string]string `json:"o"`
	Correct    string            `json:"c"`
	Difficulty string            `json:"d"`
	Refs       []string          `json:"r"`
}

// ParseCompactQuestions expands a compact-format response into full
// Question values. Items missing stem, options or correct option are
// dropped, as are option sets that are not exactly a-d. Difficulty
// defaults to medium and an empty ref list becomes ["General"]. A payload
// that is not a compact question array at all is a decode error.
func ParseCompactQuestions(content string) ([]model.Question, error) {
	var items []compactQuestion
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Stem) == "" || strings.TrimSpace(item.Correct) == "" || len(item.Options) == 0 {
			continue
		}

		options := make(map[string]string, 4)
		for _, k := range [4]string{"a", "b", "c", "d"} {
			if v, ok := item.Options[k]; ok {
				options[strings.ToUpper(k)] = v
			}
		}
		if len(options) != 4 {
			continue
		}

		refs := make([]string, 0, len(item.Refs))
		for _, r := range item.Refs {
			if r = strings.TrimSpace(r); r != "" {
				refs = append(refs, r)
			}
		}
		if len(refs) == 0 {
			refs = []string{"General"}
		}

		questions = append(questions, model.Question{
			Stem:          item.Stem,
			Options:       options,
			CorrectOption: strings.ToUpper(strings.TrimSpace(item.Correct)),
			Difficulty:    model.ParseDifficulty(item.Difficulty),
			ObjectiveRefs: refs,
		})
	}
	return questions, nil
}
