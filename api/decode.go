package api

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/brettboylen/reddit-insights/models"
	"github.com/brettboylen/reddit-insights/stats"
)

const (
	kindComment = "t1"
	kindPost    = "t3"
)

func errUnexpectedFormat(detail string) *RedditAPIError {
	return &RedditAPIError{Message: "unexpected response format from Reddit API: " + detail}
}

// decodePostWithComments reads the two-listing array returned by /comments/{id}
func decodePostWithComments(body []byte) (*models.Post, []models.Comment, error) {
	if !gjson.ValidBytes(body) {
		return nil, nil, errUnexpectedFormat("invalid JSON")
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return nil, nil, errUnexpectedFormat("expected an array of listings")
	}

	postData := doc.Get("0.data.children.0.data")
	if !postData.IsObject() {
		return nil, nil, errUnexpectedFormat("post listing is empty")
	}

	post, err := decodePost(postData)
	if err != nil {
		return nil, nil, err
	}

	comments, err := decodeCommentForest(doc.Get("1.data.children"))
	if err != nil {
		return nil, nil, err
	}

	return post, comments, nil
}

func decodePost(data gjson.Result) (*models.Post, error) {
	var post models.Post
	if err := json.Unmarshal([]byte(data.Raw), &post); err != nil {
		return nil, &RedditAPIError{Message: "failed to decode post", Err: err}
	}

	votes := stats.EstimatePostVotes(post.Score, post.UpvoteRatio)
	post.Upvotes = votes.Upvotes
	post.Downvotes = votes.Downvotes
	post.TotalVotes = votes.TotalVotes

	return &post, nil
}

// decodeCommentForest builds the comment tree with an explicit work list rather than
// recursion. Each level's slice is allocated at its final length before any of its
// elements are handed out, so the pointers held in the work list stay valid.
// "more" placeholders are skipped.
func decodeCommentForest(children gjson.Result) ([]models.Comment, error) {
	type pending struct {
		children gjson.Result
		target   *[]models.Comment
	}

	roots := []models.Comment{}
	work := []pending{{children: children, target: &roots}}

	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]

		var things []gjson.Result
		for _, child := range item.children.Array() {
			if child.Get("kind").String() == kindComment {
				things = append(things, child.Get("data"))
			}
		}

		level := make([]models.Comment, len(things))
		for i, data := range things {
			var fields commentFields
			if err := json.Unmarshal([]byte(data.Raw), &fields); err != nil {
				return nil, &RedditAPIError{Message: "failed to decode comment", Err: err}
			}

			votes := stats.EstimateCommentVotes(fields.Score, fields.UpvoteRatio)
			level[i] = models.Comment{
				ID:          fields.ID,
				Author:      fields.Author,
				Body:        fields.Body,
				Score:       fields.Score,
				UpvoteRatio: fields.UpvoteRatio,
				CreatedUTC:  fields.CreatedUTC,
				IsSubmitter: fields.IsSubmitter,
				Replies:     []models.Comment{},
				Upvotes:     votes.Upvotes,
				Downvotes:   votes.Downvotes,
				TotalVotes:  votes.TotalVotes,
			}

			// reddit sends "" when there are no replies, and a listing otherwise
			if replies := data.Get("replies.data.children"); replies.IsArray() {
				work = append(work, pending{children: replies, target: &level[i].Replies})
			}
		}

		*item.target = level
	}

	return roots, nil
}

// commentFields lists the keys taken from a comment; replies is handled separately
type commentFields struct {
	ID          string   `json:"id"`
	Author      string   `json:"author"`
	Body        string   `json:"body"`
	Score       int      `json:"score"`
	UpvoteRatio *float64 `json:"upvote_ratio"`
	CreatedUTC  float64  `json:"created_utc"`
	IsSubmitter bool     `json:"is_submitter"`
}

func decodeListing(body []byte) (*models.PostListing, error) {
	if !gjson.ValidBytes(body) {
		return nil, errUnexpectedFormat("invalid JSON")
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return nil, errUnexpectedFormat("missing listing data")
	}

	listing := &models.PostListing{
		Posts:  []models.Post{},
		After:  data.Get("after").String(),
		Before: data.Get("before").String(),
	}

	for _, child := range data.Get("children").Array() {
		if child.Get("kind").String() != kindPost {
			continue
		}
		post, err := decodePost(child.Get("data"))
		if err != nil {
			return nil, err
		}
		listing.Posts = append(listing.Posts, *post)
	}

	return listing, nil
}

func decodeUser(body []byte) (*models.User, error) {
	data, err := aboutData(body)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(data.Raw), &user); err != nil {
		return nil, &RedditAPIError{Message: "failed to decode user", Err: err}
	}
	user.AccountCreationDate = user.CreatedUTC

	return &user, nil
}

func decodeSubreddit(body []byte) (*models.Subreddit, error) {
	data, err := aboutData(body)
	if err != nil {
		return nil, err
	}

	var subreddit models.Subreddit
	if err := json.Unmarshal([]byte(data.Raw), &subreddit); err != nil {
		return nil, &RedditAPIError{Message: "failed to decode subreddit", Err: err}
	}

	// "name" on a subreddit is its fullname (t5_...), the readable name is display_name
	subreddit.Name = nil
	if displayName := data.Get("display_name"); displayName.Exists() && displayName.Type == gjson.String {
		name := displayName.String()
		subreddit.Name = &name
	}

	return &subreddit, nil
}

func aboutData(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errUnexpectedFormat("invalid JSON")
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return gjson.Result{}, errUnexpectedFormat("missing data object")
	}
	return data, nil
}
