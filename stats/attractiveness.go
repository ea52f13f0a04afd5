package stats

import (
	"math"
	"time"

	"github.com/brettboylen/reddit-insights/models"
)

// scoring weights; these are tuned values and part of the response contract
const (
	commentsMultiplier       = 5
	votesMultiplier          = 2
	awardsMultiplier         = 20
	commentUpvotesMultiplier = 1
	lengthDivisor            = 100
	timeVelocityMultiplier   = 2

	lengthBonusCap       = 50.0
	timeVelocityBonusCap = 100.0
	awardEngagement      = 5 // an award counts as this many interactions for velocity
	minAgeHours          = 0.1
)

// Weights returns the fixed scoring weights
func Weights() models.ScoringWeights {
	return models.ScoringWeights{
		CommentsMultiplier:       commentsMultiplier,
		VotesMultiplier:          votesMultiplier,
		AwardsMultiplier:         awardsMultiplier,
		CommentUpvotesMultiplier: commentUpvotesMultiplier,
		LengthDivisor:            lengthDivisor,
		TimeVelocityMultiplier:   timeVelocityMultiplier,
	}
}

// Scorer computes attractiveness scores
type Scorer struct {
	// Now is the clock used for the time velocity term
	Now func() time.Time
}

// NewScorer creates a scorer using the wall clock
func NewScorer() *Scorer {
	return &Scorer{Now: time.Now}
}

// CalculateAttractiveness scores a post with the wall clock
func CalculateAttractiveness(post models.Post, comments []models.Comment, includeTimeFactor bool) models.AttractivenessResult {
	return NewScorer().Score(post, comments, includeTimeFactor)
}

// Score combines post and comment engagement into a single attractiveness score.
// An empty comment slice means no comment data, and post.NumComments is used alone.
// The time velocity term needs includeTimeFactor and a creation time.
func (s *Scorer) Score(post models.Post, comments []models.Comment, includeTimeFactor bool) models.AttractivenessResult {
	numComments := post.NumComments
	totalVotes := post.TotalVotes
	awards := post.TotalAwardsReceived

	var commentMetrics models.CommentMetrics
	if len(comments) > 0 {
		commentMetrics = AggregateComments(comments)
		numComments = max(numComments, commentMetrics.TotalCommentsCount)
	}

	commentsScore := numComments * commentsMultiplier
	votesScore := totalVotes * votesMultiplier
	awardsScore := awards * awardsMultiplier
	commentUpvotesScore := commentMetrics.TotalCommentScore * commentUpvotesMultiplier
	lengthBonus := math.Min(float64(commentMetrics.TotalCommentLength)/lengthDivisor, lengthBonusCap)

	timeVelocityBonus := 0.0
	if includeTimeFactor && post.CreatedUTC > 0 {
		timeVelocityBonus = s.velocityBonus(post.CreatedUTC, numComments, totalVotes, awards)
	}

	total := float64(commentsScore+votesScore+awardsScore+commentUpvotesScore) + lengthBonus + timeVelocityBonus

	return models.AttractivenessResult{
		AttractivenessScore: round2(total),
		ScoreBreakdown: models.ScoreBreakdown{
			CommentsContribution:       commentsScore,
			VotesContribution:          votesScore,
			AwardsContribution:         awardsScore,
			CommentUpvotesContribution: commentUpvotesScore,
			LengthBonus:                round2(lengthBonus),
			TimeVelocityBonus:          round2(timeVelocityBonus),
		},
		EngagementMetrics: models.EngagementMetrics{
			TotalComments:      numComments,
			TotalVotes:         totalVotes,
			TotalAwards:        awards,
			PostScore:          post.Score,
			TotalCommentScore:  commentMetrics.TotalCommentScore,
			TotalCommentLength: commentMetrics.TotalCommentLength,
			TotalCommentsCount: commentMetrics.TotalCommentsCount,
			MaxCommentDepth:    commentMetrics.MaxCommentDepth,
			UniqueCommenters:   commentMetrics.UniqueCommenters,
		},
		ScoringWeights: Weights(),
	}
}

// velocityBonus rewards engagement per hour since creation, capped at 100 points
func (s *Scorer) velocityBonus(createdUTC float64, numComments, totalVotes, awards int) float64 {
	now := s.now()
	ageHours := (float64(now.UnixNano())/float64(time.Second) - createdUTC) / 3600
	if ageHours <= 0 {
		return 0
	}

	engagement := float64(numComments + totalVotes + awards*awardEngagement)
	velocity := engagement / math.Max(ageHours, minAgeHours)
	return math.Min(velocity*timeVelocityMultiplier, timeVelocityBonusCap)
}

func (s *Scorer) now() time.Time {
	if s == nil || s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
