package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brettboylen/reddit-insights/models"
)

func fixedScorer(now time.Time) *Scorer {
	return &Scorer{Now: func() time.Time { return now }}
}

func TestScoreWithoutComments(t *testing.T) {
	post := models.Post{NumComments: 10, TotalVotes: 100, TotalAwardsReceived: 2, Score: 80}

	result := CalculateAttractiveness(post, nil, false)

	// 10*5 + 100*2 + 2*20
	assert.Equal(t, 290.0, result.AttractivenessScore)
	assert.Equal(t, models.ScoreBreakdown{
		CommentsContribution: 50,
		VotesContribution:    200,
		AwardsContribution:   40,
	}, result.ScoreBreakdown)
	assert.Equal(t, 80, result.EngagementMetrics.PostScore)
	assert.Equal(t, 10, result.EngagementMetrics.TotalComments)
	assert.Equal(t, Weights(), result.ScoringWeights)
}

func TestScoreWithComments(t *testing.T) {
	body := make([]byte, 250)
	for i := range body {
		body[i] = 'a'
	}
	comments := []models.Comment{
		comment("a", "alice", string(body), 4,
			comment("b", "bob", "", 6),
		),
	}
	// reddit reports fewer comments than were fetched
	post := models.Post{NumComments: 1}

	result := CalculateAttractiveness(post, comments, false)

	assert.Equal(t, 2, result.EngagementMetrics.TotalComments)
	assert.Equal(t, 10, result.ScoreBreakdown.CommentsContribution)
	assert.Equal(t, 10, result.ScoreBreakdown.CommentUpvotesContribution)
	assert.Equal(t, 2.5, result.ScoreBreakdown.LengthBonus)
	assert.Equal(t, 22.5, result.AttractivenessScore)
	assert.Equal(t, 1, result.EngagementMetrics.MaxCommentDepth)
	assert.Equal(t, 2, result.EngagementMetrics.UniqueCommenters)
}

func TestLengthBonusIsCapped(t *testing.T) {
	body := make([]byte, 10000)
	for i := range body {
		body[i] = 'z'
	}

	result := CalculateAttractiveness(models.Post{}, []models.Comment{comment("a", "u", string(body), 0)}, false)
	assert.Equal(t, 50.0, result.ScoreBreakdown.LengthBonus)
}

func TestScoreMonotonicity(t *testing.T) {
	base := models.Post{NumComments: 3, TotalVotes: 10, TotalAwardsReceived: 1}
	baseScore := CalculateAttractiveness(base, nil, false).AttractivenessScore

	moreComments := base
	moreComments.NumComments++
	assert.Greater(t, CalculateAttractiveness(moreComments, nil, false).AttractivenessScore, baseScore)

	oneMoreAward := base
	oneMoreAward.TotalAwardsReceived++
	assert.Equal(t, baseScore+20, CalculateAttractiveness(oneMoreAward, nil, false).AttractivenessScore)
}

func TestTimeVelocityBonus(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	post := models.Post{NumComments: 4, TotalVotes: 10, TotalAwardsReceived: 1, CreatedUTC: float64(created.Unix())}

	tests := []struct {
		name     string
		age      time.Duration
		expected float64
	}{
		// (4 + 10 + 1*5) / 2h * 2
		{"Two hours old", 2 * time.Hour, 19},
		// young posts are treated as at least six minutes old, then capped
		{"One minute old", time.Minute, 100},
		{"A week old", 7 * 24 * time.Hour, 0.23},
		{"Created in the future", -time.Hour, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := fixedScorer(created.Add(tc.age)).Score(post, nil, true)
			assert.Equal(t, tc.expected, result.ScoreBreakdown.TimeVelocityBonus)
		})
	}

	withoutFactor := fixedScorer(created.Add(2*time.Hour)).Score(post, nil, false)
	assert.Equal(t, 0.0, withoutFactor.ScoreBreakdown.TimeVelocityBonus)

	noTimestamp := post
	noTimestamp.CreatedUTC = 0
	assert.Equal(t, 0.0, fixedScorer(created).Score(noTimestamp, nil, true).ScoreBreakdown.TimeVelocityBonus)
}

func TestScoreIsRoundedToCents(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	post := models.Post{NumComments: 1, CreatedUTC: float64(created.Unix())}

	// 1 / 3h * 2 = 0.6666...
	result := fixedScorer(created.Add(3*time.Hour)).Score(post, nil, true)
	assert.Equal(t, 0.67, result.ScoreBreakdown.TimeVelocityBonus)
	assert.Equal(t, 5.67, result.AttractivenessScore)
}
