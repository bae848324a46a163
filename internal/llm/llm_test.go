package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKeyPointsPrompt(t *testing.T) {
	system, user := buildKeyPointsPrompt("Battery lasts two days, screen is dim.")

	assert.Contains(t, system, "3-5 key points")
	assert.Contains(t, system, `"- "`)
	assert.Contains(t, user, "Battery lasts two days, screen is dim.")
	assert.True(t, strings.HasPrefix(user, "Extract 3-5 key points"))
}

func TestBuildKeyPointsPromptContent(t *testing.T) {
	content := strings.Repeat("x", 10000)
	_, user := buildKeyPointsPrompt(content)
	assert.Contains(t, user, content)
}

func TestCleanKeyPoints(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "- Fast\n- Cheap", "- Fast\n- Cheap"},
		{"blank lines", "\n- Fast\n\n\n- Cheap\n", "- Fast\n- Cheap"},
		{"fenced", "```markdown\n- Fast\n- Cheap\n```", "- Fast\n- Cheap"},
		{"crlf", "- Fast\r\n- Cheap\r\n", "- Fast\n- Cheap"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanKeyPoints(tt.in))
		})
	}
}

func TestNewGeminiExtractor_RequiresKey(t *testing.T) {
	_, err := NewGeminiExtractor(context.Background(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewAnthropicExtractor_DefaultModel(t *testing.T) {
	e := NewAnthropicExtractor("sk-test", "")
	assert.Equal(t, DefaultAnthropicModel, string(e.model))
}
