package models

// Sentinel author values reddit uses when the original account is gone
const (
	AuthorDeleted = "[deleted]"
	AuthorRemoved = "[removed]"
)

// IsSentinelAuthor reports whether author is a placeholder rather than a real account
func IsSentinelAuthor(author string) bool {
	return author == AuthorDeleted || author == AuthorRemoved
}

// Post represents a Reddit post, normalized from the API response
type Post struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Author              string   `json:"author"`
	Subreddit           string   `json:"subreddit"`
	Score               int      `json:"score"`
	UpvoteRatio         *float64 `json:"upvote_ratio"`
	NumComments         int      `json:"num_comments"`
	CreatedUTC          float64  `json:"created_utc"`
	URL                 string   `json:"url"`
	Permalink           string   `json:"permalink"`
	IsSelf              bool     `json:"is_self"`
	SelfText            string   `json:"selftext"`
	Domain              string   `json:"domain"`
	Locked              bool     `json:"locked"`
	Stickied            bool     `json:"stickied"`
	Over18              bool     `json:"over_18"`
	Gilded              int      `json:"gilded"`
	TotalAwardsReceived int      `json:"total_awards_received"`
	Media               *Media   `json:"media,omitempty"`
	Preview             *Preview `json:"preview,omitempty"`

	// estimated from score and upvote ratio when the post is decoded
	Upvotes    int `json:"upvotes"`
	Downvotes  int `json:"downvotes"`
	TotalVotes int `json:"total_votes"`
}

// Media holds the subset of reddit's media descriptor we care about
type Media struct {
	RedditVideo *RedditVideo `json:"reddit_video,omitempty"`
}

// RedditVideo is a reddit-hosted video
type RedditVideo struct {
	FallbackURL string `json:"fallback_url"`
}

// Preview holds reddit-generated preview images
type Preview struct {
	Images []PreviewImage `json:"images"`
}

// PreviewImage is one preview image with its full-size source
type PreviewImage struct {
	Source ImageSource `json:"source"`
}

// ImageSource is the full-size preview image
type ImageSource struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Comment represents a Reddit comment and its replies.
// Replies is never nil once decoded, but consumers treat nil as empty.
type Comment struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Body        string    `json:"body"`
	Score       int       `json:"score"`
	UpvoteRatio *float64  `json:"upvote_ratio,omitempty"`
	CreatedUTC  float64   `json:"created_utc"`
	IsSubmitter bool      `json:"is_submitter"`
	Replies     []Comment `json:"replies"`

	Upvotes    int `json:"upvotes"`
	Downvotes  int `json:"downvotes"`
	TotalVotes int `json:"total_votes"`
}

// VoteBreakdown is an estimate of the votes behind a score
type VoteBreakdown struct {
	Upvotes    int `json:"upvotes"`
	Downvotes  int `json:"downvotes"`
	TotalVotes int `json:"total_votes"`
}

// CommentMetrics aggregates a whole comment forest
type CommentMetrics struct {
	TotalCommentScore  int `json:"total_comment_score"`
	TotalCommentLength int `json:"total_comment_length"`
	TotalCommentsCount int `json:"total_comments_count"`
	MaxCommentDepth    int `json:"max_comment_depth"`
	UniqueCommenters   int `json:"unique_commenters"`
}

// ScoreBreakdown lists the six additive terms of an attractiveness score
type ScoreBreakdown struct {
	CommentsContribution       int     `json:"comments_contribution"`
	VotesContribution          int     `json:"votes_contribution"`
	AwardsContribution         int     `json:"awards_contribution"`
	CommentUpvotesContribution int     `json:"comment_upvotes_contribution"`
	LengthBonus                float64 `json:"length_bonus"`
	TimeVelocityBonus          float64 `json:"time_velocity_bonus"`
}

// EngagementMetrics are the inputs the score was computed from
type EngagementMetrics struct {
	TotalComments int `json:"total_comments"`
	TotalVotes    int `json:"total_votes"`
	TotalAwards   int `json:"total_awards"`
	PostScore     int `json:"post_score"`

	TotalCommentScore  int `json:"total_comment_score"`
	TotalCommentLength int `json:"total_comment_length"`
	TotalCommentsCount int `json:"total_comments_count"`
	MaxCommentDepth    int `json:"max_comment_depth"`
	UniqueCommenters   int `json:"unique_commenters"`
}

// ScoringWeights are the fixed multipliers used by the scorer
type ScoringWeights struct {
	CommentsMultiplier       int `json:"comments_multiplier"`
	VotesMultiplier          int `json:"votes_multiplier"`
	AwardsMultiplier         int `json:"awards_multiplier"`
	CommentUpvotesMultiplier int `json:"comment_upvotes_multiplier"`
	LengthDivisor            int `json:"length_divisor"`
	TimeVelocityMultiplier   int `json:"time_velocity_multiplier"`
}

// AttractivenessResult is the outcome of scoring one post
type AttractivenessResult struct {
	AttractivenessScore float64           `json:"attractiveness_score"`
	ScoreBreakdown      ScoreBreakdown    `json:"score_breakdown"`
	EngagementMetrics   EngagementMetrics `json:"engagement_metrics"`
	ScoringWeights      ScoringWeights    `json:"scoring_weights"`
}

// Tier is a discrete bucket for an attractiveness score
type Tier struct {
	Tier        string `json:"tier"`
	TierLevel   int    `json:"tier_level"`
	Description string `json:"description"`
}

// RankedPost is a post with its comments and scoring attached
type RankedPost struct {
	Post                   Post                 `json:"post_info"`
	Comments               []Comment            `json:"comments"`
	AttractivenessAnalysis AttractivenessResult `json:"attractiveness_analysis"`
	Tier                   Tier                 `json:"tier"`
}

// PostListing is one page of subreddit posts
type PostListing struct {
	Subreddit string `json:"subreddit"`
	Sort      string `json:"sort"`
	Posts     []Post `json:"posts"`
	After     string `json:"after"`
	Before    string `json:"before"`
}

// UserSubreddit is the profile subreddit attached to a user
type UserSubreddit struct {
	Subscribers       *int    `json:"subscribers"`
	Title             *string `json:"title"`
	PublicDescription *string `json:"public_description"`
}

// User represents a Reddit account
type User struct {
	Name                *string        `json:"name"`
	ID                  *string        `json:"id"`
	CreatedUTC          *float64       `json:"created_utc"`
	LinkKarma           *int           `json:"link_karma"`
	CommentKarma        *int           `json:"comment_karma"`
	TotalKarma          *int           `json:"total_karma"`
	AwardeeKarma        *int           `json:"awardee_karma"`
	AwarderKarma        *int           `json:"awarder_karma"`
	IsGold              *bool          `json:"is_gold"`
	IsMod               *bool          `json:"is_mod"`
	HasVerifiedEmail    *bool          `json:"has_verified_email"`
	IconImg             *string        `json:"icon_img"`
	SnoovatarImg        *string        `json:"snoovatar_img"`
	Subreddit           *UserSubreddit `json:"subreddit"`
	AcceptFollowers     *bool          `json:"accept_followers"`
	AccountCreationDate *float64       `json:"account_creation_date"`
}

// Subreddit represents a subreddit's about page
type Subreddit struct {
	Name              *string  `json:"name"`
	ID                *string  `json:"id"`
	Title             *string  `json:"title"`
	PublicDescription *string  `json:"public_description"`
	Description       *string  `json:"description"`
	Subscribers       *int     `json:"subscribers"`
	AccountsActive    *int     `json:"accounts_active"`
	CreatedUTC        *float64 `json:"created_utc"`
	Over18            *bool    `json:"over18"`
	Lang              *string  `json:"lang"`
	URL               *string  `json:"url"`
	CommunityIcon     *string  `json:"community_icon"`
	BannerImg         *string  `json:"banner_img"`
	HeaderImg         *string  `json:"header_img"`
	IconImg           *string  `json:"icon_img"`
	SubmissionType    *string  `json:"submission_type"`
	AllowImages       *bool    `json:"allow_images"`
	AllowVideos       *bool    `json:"allow_videos"`
	WikiEnabled       *bool    `json:"wiki_enabled"`
	SubredditType     *string  `json:"subreddit_type"`
	UserIsSubscriber  *bool    `json:"user_is_subscriber"`
	Quarantine        *bool    `json:"quarantine"`
}
