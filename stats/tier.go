package stats

import "github.com/brettboylen/reddit-insights/models"

// tierThresholds are checked top-down; the first threshold the score reaches wins
var tierThresholds = []struct {
	minScore float64
	tier     models.Tier
}{
	{500, models.Tier{Tier: "Viral", TierLevel: 5, Description: "Highly viral/controversial content with massive engagement"}},
	{200, models.Tier{Tier: "High Viral Potential", TierLevel: 4, Description: "Strong engagement indicating viral potential"}},
	{50, models.Tier{Tier: "High Engagement", TierLevel: 3, Description: "Above average engagement with good discussion"}},
	{10, models.Tier{Tier: "Moderate Engagement", TierLevel: 2, Description: "Moderate community interest and interaction"}},
}

var lowEngagementTier = models.Tier{
	Tier:        "Low Engagement",
	TierLevel:   1,
	Description: "Limited community engagement",
}

// ClassifyTier maps an attractiveness score to its tier
func ClassifyTier(score float64) models.Tier {
	for _, threshold := range tierThresholds {
		if score >= threshold.minScore {
			return threshold.tier
		}
	}
	return lowEngagementTier
}
