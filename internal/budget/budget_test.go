package budget

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func Test_Estimate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"a", 1},        // < 4 chars → 1
		{"abcd", 1},     // exactly 4 chars → 1
		{"abcde", 1},    // 5 chars → 1
		{"abcdefgh", 2}, // 8 chars → 2
		{strings.Repeat("x", 400), 100},
	}
	for _, tc := range cases {
		got := Estimate(tc.input)
		if got != tc.want {
			t.Errorf("Estimate(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func Test_EstimateMessages(t *testing.T) {
	t.Parallel()
	msgs := []*schema.Message{
		schema.UserMessage("hello world"),
		schema.UserMessage("hello world"),
	}
	// Each message: 4 overhead + Estimate("user")=1 + Estimate("hello world")=2 = 7
	if got := EstimateMessages(msgs); got != 14 {
		t.Errorf("EstimateMessages = %d, want 14", got)
	}
}

func Test_FitChunks(t *testing.T) {
	t.Parallel()

	c100 := strings.Repeat("x", 400) // 100 tokens
	cases := []struct {
		name   string
		chunks []string
		max    int
		want   int
	}{
		{"all fit", []string{c100, c100, c100}, 300, 3},
		{"drops lowest ranked", []string{c100, c100, c100}, 250, 2},
		{"first always kept", []string{c100, c100}, 10, 1},
		{"disabled", []string{c100, c100, c100}, 0, 3},
		{"empty", nil, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := FitChunks(tc.chunks, tc.max); len(got) != tc.want {
				t.Errorf("FitChunks kept %d chunks, want %d", len(got), tc.want)
			}
		})
	}
}
