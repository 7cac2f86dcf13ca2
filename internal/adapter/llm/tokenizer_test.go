package llm

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		minTokens int
		maxTokens int
	}{
		{
			name:      "empty string",
			text:      "",
			minTokens: 0,
			maxTokens: 0,
		},
		{
			name:      "simple sentence",
			text:      "The quick brown fox jumps over the lazy dog.",
			minTokens: 8,
			maxTokens: 12,
		},
		{
			name:      "diff-like input",
			text:      strings.Repeat("+ func foo() error {\n+     return nil\n+ }\n", 100),
			minTokens: 1000,
			maxTokens: 2500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateTokens(tt.text)
			if got < tt.minTokens || got > tt.maxTokens {
				t.Errorf("EstimateTokens() = %d, want between %d and %d",
					got, tt.minTokens, tt.maxTokens)
			}
		})
	}
}

func TestEstimateTokens_Consistency(t *testing.T) {
	text := "func EstimateTokens(text string) int { return len(text) / 4 }"

	first := EstimateTokens(text)
	for i := 0; i < 10; i++ {
		if got := EstimateTokens(text); got != first {
			t.Errorf("EstimateTokens() inconsistent: got %d, want %d", got, first)
		}
	}
}
