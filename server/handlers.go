package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/brettboylen/reddit-insights/api"
	"github.com/brettboylen/reddit-insights/models"
	"github.com/brettboylen/reddit-insights/stats"
)

const maxRankedPosts = 25

// CredentialsRequest carries the caller's Reddit app credentials
type CredentialsRequest struct {
	Credentials api.Credentials `json:"credentials"`
}

// UserRequest asks for a user's statistics
type UserRequest struct {
	Username string `json:"username"`
	CredentialsRequest
}

// PostRequest asks for a single post
type PostRequest struct {
	PostURL string `json:"post_url"`
	CredentialsRequest
}

// SubredditRequest asks for a subreddit's about page
type SubredditRequest struct {
	SubredditName string `json:"subreddit_name"`
	CredentialsRequest
}

// SubredditPostsRequest asks for one page of a subreddit listing
type SubredditPostsRequest struct {
	SubredditName string `json:"subreddit_name"`
	Sort          string `json:"sort"`
	Limit         int    `json:"limit"`
	After         string `json:"after"`
	Before        string `json:"before"`
	TimeFilter    string `json:"time_filter"`
	CredentialsRequest
}

// AnalyzeOptions control comment fetching and scoring
type AnalyzeOptions struct {
	IncludeTimeFactor *bool  `json:"include_time_factor"` // defaults to true
	CommentLimit      int    `json:"comment_limit"`
	CommentDepth      int    `json:"comment_depth"`
	CommentSort       string `json:"comment_sort"`
}

func (o AnalyzeOptions) includeTimeFactor() bool {
	return o.IncludeTimeFactor == nil || *o.IncludeTimeFactor
}

func (o AnalyzeOptions) commentOptions() api.CommentOptions {
	return api.CommentOptions{Limit: o.CommentLimit, Depth: o.CommentDepth, Sort: o.CommentSort}
}

// AnalyzeRequest asks for a full analysis of one post
type AnalyzeRequest struct {
	PostURL string `json:"post_url"`
	AnalyzeOptions
	CredentialsRequest
}

// RankRequest asks for several posts ranked by attractiveness
type RankRequest struct {
	PostURLs []string `json:"post_urls"`
	AnalyzeOptions
	CredentialsRequest
}

// AnalyzeResponse is the full analysis of one post
type AnalyzeResponse struct {
	Post                   models.Post                 `json:"post_info"`
	Comments               []models.Comment            `json:"comments"`
	CommentMetrics         models.CommentMetrics       `json:"comment_metrics"`
	AttractivenessAnalysis models.AttractivenessResult `json:"attractiveness_analysis"`
	Tier                   models.Tier                 `json:"tier"`
	FormattedPost          string                      `json:"formatted_post"`
}

// RankResponse lists posts from most to least attractive
type RankResponse struct {
	Count       int                 `json:"count"`
	RankedPosts []models.RankedPost `json:"ranked_posts"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": s.config.App.Name,
		"version": s.config.App.Version,
		"authentication": map[string]string{
			"type":   "HTTP Basic",
			"header": "Authorization: Basic {base64(api_key:)}",
			"note":   "API key goes in username field, password can be empty",
		},
		"endpoints": map[string]string{
			"get_user":            "/get-user",
			"get_post":            "/get-post",
			"get_subreddit":       "/get-subreddit",
			"get_subreddit_posts": "/get-subreddit-posts",
			"analyze_post":        "/analyze-post",
			"rank_posts":          "/rank-posts",
			"format_post":         "/format-post",
		},
		"metrics": "/metrics",
		"docs":    "/docs",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "reddit-api-wrapper",
	})
}

func (s *Server) handleGetUser(c echo.Context) error {
	var req UserRequest
	if err := s.bind(c, &req, &req.CredentialsRequest); err != nil {
		return err
	}
	if strings.TrimSpace(req.Username) == "" {
		return validationError("username is required")
	}

	user, err := s.client(req.CredentialsRequest).GetUserStatistics(c.Request().Context(), req.Username)
	if err != nil {
		return s.upstreamError("get_user", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleGetPost(c echo.Context) error {
	var req PostRequest
	if err := s.bind(c, &req, &req.CredentialsRequest); err != nil {
		return err
	}
	if strings.TrimSpace(req.PostURL) == "" {
		return validationError("post_url is required")
	}

	post, err := s.client(req.CredentialsRequest).GetPostStatistics(c.Request().Context(), req.PostURL)
	if err != nil {
		return s.upstreamError("get_post", err)
	}
	return c.JSON(http.StatusOK, post)
}

func (s *Server) handleGetSubreddit(c echo.Context) error {
	var req SubredditRequest
	if err := s.bind(c, &req, &req.CredentialsRequest); err != nil {
		return err
	}
	if strings.TrimSpace(req.SubredditName) == "" {
		return validationError("subreddit_name is required")
	}

	subreddit, err := s.client(req.CredentialsRequest).GetSubredditInfo(c.Request().Context(), req.SubredditName)
	if err != nil {
		return s.upstreamError("get_subreddit", err)
	}
	return c.JSON(http.StatusOK, subreddit)
}

func (s *Server) handleGetSubredditPosts(c echo.Context) error {
	var req SubredditPostsRequest
	if err := s.bind(c, &req, &req.CredentialsRequest); err != nil {
		return err
	}
	if strings.TrimSpace(req.SubredditName) == "" {
		return validationError("subreddit_name is required")
	}
	if req.Limit < 0 || req.Limit > 100 {
		return validationError("limit must be between 1 and 100")
	}

	listing, err := s.client(req.CredentialsRequest).GetSubredditPosts(c.Request().Context(), req.SubredditName, api.ListingOptions{
		Sort:       req.Sort,
		Limit:      req.Limit,
		After:      req.After,
		Before:     req.Before,
		TimeFilter: req.TimeFilter,
	})
	if err != nil {
		if errors.Is(err, api.ErrInvalidListing) {
			return validationError(err.Error())
		}
		return s.upstreamError("get_subreddit_posts", err)
	}
	return c.JSON(http.StatusOK, listing)
}

func (s *Server) handleAnalyzePost(c echo.Context) error {
	var req AnalyzeRequest
	if err := s.bind(c, &req, &req.CredentialsRequest); err != nil {
		return err
	}
	if strings.TrimSpace(req.PostURL) == "" {
		return validationError("post_url is required")
	}

	resp, err := s.analyze(c.Request().Context(), s.client(req.CredentialsRequest), req.PostURL, req.AnalyzeOptions)
	if err != nil {
		return s.upstreamError("analyze_post", err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFormatPost(c echo.Context) error {
	var req AnalyzeRequest
	if err := s.bind(c, &req, &req.CredentialsRequest); err != nil {
		return err
	}
	if strings.TrimSpace(req.PostURL) == "" {
		return validationError("post_url is required")
	}

	resp, err := s.analyze(c.Request().Context(), s.client(req.CredentialsRequest), req.PostURL, req.AnalyzeOptions)
	if err != nil {
		return s.upstreamError("format_post", err)
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(resp.FormattedPost))
}

func (s *Server) handleRankPosts(c echo.Context) error {
	var req RankRequest
	if err := s.bind(c, &req, &req.CredentialsRequest); err != nil {
		return err
	}
	if len(req.PostURLs) == 0 {
		return validationError("post_urls must contain at least one URL")
	}
	if len(req.PostURLs) > maxRankedPosts {
		return validationError(fmt.Sprintf("post_urls may contain at most %d URLs", maxRankedPosts))
	}

	entries, err := s.fetchAll(c.Request().Context(), s.client(req.CredentialsRequest), req.PostURLs, req.commentOptions())
	if err != nil {
		return s.upstreamError("rank_posts", err)
	}

	ranked := s.scorer.RankWith(entries, req.includeTimeFactor())
	for _, post := range ranked {
		s.metrics.observeAnalysis(post.AttractivenessAnalysis, post.Tier)
	}

	return c.JSON(http.StatusOK, RankResponse{Count: len(ranked), RankedPosts: ranked})
}

// analyze fetches one post with its comments and runs the full scoring pipeline
func (s *Server) analyze(ctx context.Context, client RedditClient, postURL string, opts AnalyzeOptions) (*AnalyzeResponse, error) {
	post, comments, err := client.GetPostWithComments(ctx, postURL, opts.commentOptions())
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	analysis := s.scorer.Score(*post, comments, opts.includeTimeFactor())
	tier := stats.ClassifyTier(analysis.AttractivenessScore)
	s.metrics.observeAnalysis(analysis, tier)

	s.log.WithFields(logrus.Fields{
		"post_id":              post.ID,
		"attractiveness_score": analysis.AttractivenessScore,
		"tier":                 tier.Tier,
	}).Info("Analysed post")

	return &AnalyzeResponse{
		Post:                   *post,
		Comments:               comments,
		CommentMetrics:         stats.AggregateComments(comments),
		AttractivenessAnalysis: analysis,
		Tier:                   tier,
		FormattedPost:          s.renderer.Render(*post, comments, &analysis),
	}, nil
}

// fetchAll fetches every post concurrently, keeping the order of postURLs
func (s *Server) fetchAll(ctx context.Context, client RedditClient, postURLs []string, opts api.CommentOptions) ([]stats.RankEntry, error) {
	entries := make([]stats.RankEntry, len(postURLs))
	errs := make([]error, len(postURLs))

	var wg sync.WaitGroup
	for i, postURL := range postURLs {
		wg.Add(1)
		go func(i int, postURL string) {
			defer wg.Done()
			post, comments, err := client.GetPostWithComments(ctx, postURL, opts)
			if err != nil {
				errs[i] = fmt.Errorf("failed to fetch %s: %w", postURL, err)
				return
			}
			entries[i] = stats.RankEntry{Post: *post, Comments: comments}
		}(i, postURL)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return entries, nil
}

// bind decodes the request body and fills in credential defaults
func (s *Server) bind(c echo.Context, req any, creds *CredentialsRequest) error {
	if err := c.Bind(req); err != nil {
		return validationError("Invalid request format or missing required fields")
	}

	if creds.Credentials.ClientID == "" || creds.Credentials.ClientSecret == "" {
		return validationError("credentials.client_id and credentials.client_secret are required")
	}
	if creds.Credentials.UserAgent == "" {
		creds.Credentials.UserAgent = s.config.Reddit.DefaultUserAgent
	}
	return nil
}

func (s *Server) client(req CredentialsRequest) RedditClient {
	return s.newClient(req.Credentials)
}

// upstreamError maps client failures to responses: anything Reddit or the
// caller's input caused is a 400, everything else a 500
func (s *Server) upstreamError(operation string, err error) error {
	s.metrics.upstreamError(operation)

	var apiErr *api.RedditAPIError
	if errors.As(err, &apiErr) || errors.Is(err, api.ErrInvalidPostURL) {
		s.log.WithError(err).WithField("operation", operation).Warn("Reddit API request failed")
		return echo.NewHTTPError(http.StatusBadRequest, "Reddit API Error: "+err.Error())
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error: "+err.Error()).SetInternal(err)
}

func validationError(detail string) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, detail)
}
