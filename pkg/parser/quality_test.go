package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQualityResponse(t *testing.T) {
	got, err := ParseQualityResponse(`{"quality_score": 82, "suggestions": ["Add an error scenario", 7], "improved_title": "Self-Service Password Reset"}`)
	require.NoError(t, err)

	assert.Equal(t, 82, got.QualityScore)
	assert.Equal(t, []string{"Add an error scenario"}, got.Suggestions)
	require.NotNil(t, got.ImprovedTitle)
	assert.Equal(t, "Self-Service Password Reset", *got.ImprovedTitle)
}

func TestNormalizeQuality_Clamp(t *testing.T) {
	tests := []struct {
		name  string
		score any
		want  int
	}{
		{"negative", -5.0, 0},
		{"above range", 120.0, 100},
		{"upper bound", 100.0, 100},
		{"lower bound", 0.0, 0},
		{"fractional", 74.6, 75},
		{"huge", 1e20, 100},
		{"huge negative", -1e20, 0},
		{"huge numeric string", "1e30", 100},
		{"non numeric", "great", 0},
		{"absent", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := map[string]any{}
			if tt.score != nil {
				obj["quality_score"] = tt.score
			}
			assert.Equal(t, tt.want, NormalizeQuality(obj).QualityScore)
		})
	}
}

func TestNormalizeQuality_Defaults(t *testing.T) {
	got := NormalizeQuality(map[string]any{"quality_score": 50.0})

	assert.NotNil(t, got.Suggestions)
	assert.Empty(t, got.Suggestions)
	assert.Nil(t, got.ImprovedTitle)
}

func TestNormalizeQuality_ImprovedTitleUnmodified(t *testing.T) {
	got := NormalizeQuality(map[string]any{"improved_title": "  odd   spacing "})
	require.NotNil(t, got.ImprovedTitle)
	assert.Equal(t, "  odd   spacing ", *got.ImprovedTitle)
}

func TestParseQualityResponse_Malformed(t *testing.T) {
	_, err := ParseQualityResponse("Quality: 80/100")
	assert.Error(t, err)
}
