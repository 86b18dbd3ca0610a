package domain

import (
	"math"
	"strings"
)

// EstimateTokens approximates the token count of text assuming ~1.2 words
// per token. Coarse on purpose: it enforces budgets without a model-specific
// tokenizer.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	n := int(math.Round(float64(words) / 1.2))
	if n < 0 {
		return 0
	}
	return n
}
