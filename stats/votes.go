package stats

import (
	"math"

	"github.com/brettboylen/reddit-insights/models"
)

// defaultUpvoteRatio is assumed for posts that come back without a ratio
const defaultUpvoteRatio = 0.5

// maxEstimatedVotes bounds the ratio estimate; beyond it the float math is noise
const maxEstimatedVotes = 1 << 40

// EstimateVotes reconstructs upvotes and downvotes from a score and an upvote ratio.
//
// When the ratio is strictly between 0 and 1 the total is solved from
// score = total*(2*ratio - 1). Otherwise, or when the ratio disagrees with the
// sign of the score, the estimate falls back to the sign of the score.
func EstimateVotes(score int, upvoteRatio float64) models.VoteBreakdown {
	if upvoteRatio > 0 && upvoteRatio < 1 {
		denominator := 2*upvoteRatio - 1
		total := 0.0
		if denominator != 0 {
			total = math.RoundToEven(float64(score) / denominator)
		}

		if total >= 0 && total <= maxEstimatedVotes {
			totalVotes := int(total)
			upvotes := int(math.RoundToEven(total * upvoteRatio))
			return models.VoteBreakdown{
				Upvotes:    upvotes,
				Downvotes:  totalVotes - upvotes,
				TotalVotes: totalVotes,
			}
		}

		// ratio and score disagree on direction; trust the score
		return signVotes(score)
	}

	var upvotes, downvotes int
	if upvoteRatio >= defaultUpvoteRatio {
		upvotes = max(0, score)
	}
	if upvoteRatio < defaultUpvoteRatio {
		downvotes = max(0, -score)
	}

	return models.VoteBreakdown{
		Upvotes:    upvotes,
		Downvotes:  downvotes,
		TotalVotes: upvotes + downvotes,
	}
}

// EstimatePostVotes estimates votes for a post; a missing ratio counts as 0.5
func EstimatePostVotes(score int, upvoteRatio *float64) models.VoteBreakdown {
	ratio := defaultUpvoteRatio
	if upvoteRatio != nil {
		ratio = *upvoteRatio
	}
	return EstimateVotes(score, ratio)
}

// EstimateCommentVotes estimates votes for a comment.
// Reddit rarely sends a ratio for comments, and without one only the sign of the score is used.
func EstimateCommentVotes(score int, upvoteRatio *float64) models.VoteBreakdown {
	if upvoteRatio == nil {
		return signVotes(score)
	}
	return EstimateVotes(score, *upvoteRatio)
}

func signVotes(score int) models.VoteBreakdown {
	upvotes := max(0, score)
	downvotes := max(0, -score)
	return models.VoteBreakdown{
		Upvotes:    upvotes,
		Downvotes:  downvotes,
		TotalVotes: upvotes + downvotes,
	}
}
