package llm

// EstimateTokens approximates the token count of text at roughly four
// characters per token. It is a sizing heuristic for prompt budgeting,
// not a tokenizer.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}
