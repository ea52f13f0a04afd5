package stats

import (
	"sort"

	"github.com/brettboylen/reddit-insights/models"
)

// RankEntry pairs a post with the comments fetched for it
type RankEntry struct {
	Post     models.Post
	Comments []models.Comment
}

// RankPosts scores every entry with the time factor enabled and orders them by
// attractiveness, highest first. Entries with equal scores keep their input order.
func RankPosts(entries []RankEntry) []models.RankedPost {
	return NewScorer().Rank(entries)
}

// Rank is RankPosts using this scorer's clock
func (s *Scorer) Rank(entries []RankEntry) []models.RankedPost {
	return s.RankWith(entries, true)
}

// RankWith ranks entries, leaving out the time velocity term unless includeTimeFactor is set
func (s *Scorer) RankWith(entries []RankEntry, includeTimeFactor bool) []models.RankedPost {
	ranked := make([]models.RankedPost, 0, len(entries))
	for _, entry := range entries {
		comments := entry.Comments
		if comments == nil {
			comments = []models.Comment{}
		}

		analysis := s.Score(entry.Post, comments, includeTimeFactor)
		ranked = append(ranked, models.RankedPost{
			Post:                   entry.Post,
			Comments:               comments,
			AttractivenessAnalysis: analysis,
			Tier:                   ClassifyTier(analysis.AttractivenessScore),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AttractivenessAnalysis.AttractivenessScore > ranked[j].AttractivenessAnalysis.AttractivenessScore
	})

	return ranked
}
