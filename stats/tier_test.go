package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		score    float64
		level    int
		expected string
	}{
		{0, 1, "Low Engagement"},
		{9.99, 1, "Low Engagement"},
		{10, 2, "Moderate Engagement"},
		{49.99, 2, "Moderate Engagement"},
		{50, 3, "High Engagement"},
		{199.99, 3, "High Engagement"},
		{200, 4, "High Viral Potential"},
		{499.99, 4, "High Viral Potential"},
		{500, 5, "Viral"},
		{12000, 5, "Viral"},
		{-3, 1, "Low Engagement"},
	}

	for _, tc := range tests {
		tier := ClassifyTier(tc.score)
		assert.Equal(t, tc.level, tier.TierLevel, "score %v", tc.score)
		assert.Equal(t, tc.expected, tier.Tier, "score %v", tc.score)
		assert.NotEmpty(t, tier.Description)
	}
}
