package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/gherkin-ai/pkg/model"
)

func TestParseTitleResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.TitleSuggestions
	}{
		{"three titles", `{"titles": ["Password Reset", "Account Recovery", "Reset Via Email"]}`, model.TitleSuggestions{"Password Reset", "Account Recovery", "Reset Via Email"}},
		{"more than three kept", `{"titles": ["a", "b", "c", "d"]}`, model.TitleSuggestions{"a", "b", "c", "d"}},
		{"missing field", `{}`, model.TitleSuggestions{}},
		{"wrong type", `{"titles": "Password Reset"}`, model.TitleSuggestions{}},
		{"fenced", "```json\n{\"titles\": [\"x\"]}\n```", model.TitleSuggestions{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTitleResponse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTitleResponse_Malformed(t *testing.T) {
	_, err := ParseTitleResponse("1. Password Reset\n2. Account Recovery")
	assert.Error(t, err)
}
