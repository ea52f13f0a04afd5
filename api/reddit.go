package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/reddit-insights/models"
)

const (
	DefaultBaseURL   = "https://oauth.reddit.com"
	DefaultAuthURL   = "https://www.reddit.com/api/v1/access_token"
	DefaultUserAgent = "RedditAPIWrapper/1.0"
	defaultTimeout   = 10 * time.Second
	defaultLimit     = 25
	maxLimit         = 100 // max number of items per listing request
)

// RedditAPIError is returned for anything that goes wrong talking to Reddit
type RedditAPIError struct {
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *RedditAPIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RedditAPIError) Unwrap() error {
	return e.Err
}

// Credentials are the caller's Reddit app credentials
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	UserAgent    string `json:"user_agent"`
}

// ClientConfig configures a RedditAPI client
type ClientConfig struct {
	Credentials
	BaseURL string
	AuthURL string
	Timeout time.Duration
}

// RateLimitStatus is the last rate limit reported by Reddit
type RateLimitStatus struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	Reset     int `json:"reset_seconds"`
}

// RedditAPI represents a Reddit API client authenticated with client credentials
type RedditAPI struct {
	credentials      Credentials
	baseURL          string
	authURL          string
	httpClient       *http.Client
	accessToken      string
	tokenExpiry      time.Time
	mutex            sync.RWMutex
	authMutex        sync.Mutex
	log              *logrus.Logger
	rateLimit        RateLimitStatus
	rateHeadersMutex sync.RWMutex
}

// NewRedditAPI creates a new Reddit API client
func NewRedditAPI(cfg ClientConfig, log *logrus.Logger) *RedditAPI {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &RedditAPI{
		credentials: cfg.Credentials,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		authURL:     cfg.AuthURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         log,
		rateLimit:   RateLimitStatus{Reset: 600},
	}
}

// GetRateLimitStatus returns the rate limit reported by the most recent response
func (r *RedditAPI) GetRateLimitStatus() RateLimitStatus {
	r.rateHeadersMutex.RLock()
	defer r.rateHeadersMutex.RUnlock()
	return r.rateLimit
}

// token returns the cached bearer token and its expiry
func (r *RedditAPI) token() (string, time.Time) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.accessToken, r.tokenExpiry
}

// authenticate exchanges the client credentials for a bearer token.
// A cached token is reused until it expires or matches rejected, the token
// the API just refused. Exchanges are serialized so concurrent callers
// share a single token request.
func (r *RedditAPI) authenticate(ctx context.Context, rejected string) error {
	r.authMutex.Lock()
	defer r.authMutex.Unlock()

	token, expiry := r.token()
	if token != "" && token != rejected && time.Now().Before(expiry) {
		return nil
	}

	r.log.Debug("Authenticating with Reddit API using client credentials")

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.authURL, strings.NewReader(data.Encode()))
	if err != nil {
		return &RedditAPIError{Message: "failed to create auth request", Err: err}
	}

	req.SetBasicAuth(r.credentials.ClientID, r.credentials.ClientSecret)
	req.Header.Set("User-Agent", r.credentials.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return &RedditAPIError{Message: "network error during authentication", Err: err}
	}
	defer resp.Body.Close()

	r.updateRateLimits(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &RedditAPIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("authentication failed: %d - %s", resp.StatusCode, string(body)),
		}
	}

	var authResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return &RedditAPIError{Message: "invalid JSON response during authentication", Err: err}
	}
	if authResp.AccessToken == "" {
		return &RedditAPIError{Message: "authentication response did not include an access token"}
	}

	r.mutex.Lock()
	r.accessToken = authResp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn) * time.Second)
	r.mutex.Unlock()

	r.log.WithField("expires_in", authResp.ExpiresIn).Debug("Successfully authenticated with Reddit API")
	return nil
}

// get performs an authenticated GET and returns the response body.
// A 401 triggers one re-authentication and retry, since tokens can expire early.
func (r *RedditAPI) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := r.authenticate(ctx, ""); err != nil {
		return nil, err
	}

	token, _ := r.token()
	status, body, err := r.doGet(ctx, endpoint, params, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		r.log.WithField("endpoint", endpoint).Info("Access token rejected, re-authenticating")
		if err := r.authenticate(ctx, token); err != nil {
			return nil, err
		}
		token, _ = r.token()
		status, body, err = r.doGet(ctx, endpoint, params, token)
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK && status != http.StatusCreated {
		r.log.WithFields(logrus.Fields{
			"endpoint":      endpoint,
			"status_code":   status,
			"response_body": string(body),
		}).Error("Reddit API error response")
		return nil, &RedditAPIError{
			StatusCode: status,
			Message:    fmt.Sprintf("API request failed: %d - %s", status, string(body)),
		}
	}

	return body, nil
}

func (r *RedditAPI) doGet(ctx context.Context, endpoint string, params url.Values, token string) (int, []byte, error) {
	target := r.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, &RedditAPIError{Message: "failed to create request", Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", r.credentials.UserAgent)

	r.log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"params":   params.Encode(),
	}).Debug("Requesting Reddit API")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RedditAPIError{Message: "network error during API request", Err: err}
	}
	defer resp.Body.Close()

	r.updateRateLimits(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &RedditAPIError{StatusCode: resp.StatusCode, Message: "failed to read response body", Err: err}
	}

	return resp.StatusCode, body, nil
}

// GetPostStatistics fetches a post by its URL
func (r *RedditAPI) GetPostStatistics(ctx context.Context, postURL string) (*models.Post, error) {
	post, _, err := r.GetPostWithComments(ctx, postURL, CommentOptions{Limit: 1, Depth: 1})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// CommentOptions controls how much of a comment tree Reddit returns
type CommentOptions struct {
	Limit int    // max comments, 0 for Reddit's default
	Depth int    // max reply depth, 0 for Reddit's default
	Sort  string // confidence, top, new, controversial, old, qa
}

// GetPostWithComments fetches a post and its comment tree by the post's URL
func (r *RedditAPI) GetPostWithComments(ctx context.Context, postURL string, opts CommentOptions) (*models.Post, []models.Comment, error) {
	endpoint, err := commentsEndpoint(postURL)
	if err != nil {
		return nil, nil, err
	}

	params := url.Values{}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Depth > 0 {
		params.Set("depth", strconv.Itoa(opts.Depth))
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}

	body, err := r.get(ctx, endpoint, params)
	if err != nil {
		return nil, nil, err
	}

	post, comments, err := decodePostWithComments(body)
	if err != nil {
		return nil, nil, err
	}

	r.log.WithFields(logrus.Fields{
		"post_id":        post.ID,
		"subreddit":      post.Subreddit,
		"top_level":      len(comments),
		"reported_count": post.NumComments,
	}).Info("Fetched post from Reddit")

	return post, comments, nil
}

// GetUserStatistics fetches a user's about page
func (r *RedditAPI) GetUserStatistics(ctx context.Context, username string) (*models.User, error) {
	username = cleanName(username, "u/")
	if username == "" {
		return nil, &RedditAPIError{Message: "username is required"}
	}

	body, err := r.get(ctx, "/user/"+url.PathEscape(username)+"/about", nil)
	if err != nil {
		return nil, err
	}

	return decodeUser(body)
}

// GetSubredditInfo fetches a subreddit's about page
func (r *RedditAPI) GetSubredditInfo(ctx context.Context, name string) (*models.Subreddit, error) {
	name = cleanName(name, "r/")
	if name == "" {
		return nil, &RedditAPIError{Message: "subreddit name is required"}
	}

	body, err := r.get(ctx, "/r/"+url.PathEscape(name)+"/about", nil)
	if err != nil {
		return nil, err
	}

	return decodeSubreddit(body)
}

// ListingOptions selects a page of subreddit posts
type ListingOptions struct {
	Sort       string // hot, new, top, rising
	Limit      int
	After      string
	Before     string
	TimeFilter string // hour, day, week, month, year, all; only used with top
}

var listingSorts = map[string]bool{"hot": true, "new": true, "top": true, "rising": true}

// ErrInvalidListing is returned for listing options Reddit would reject
var ErrInvalidListing = errors.New("invalid listing options")

// GetSubredditPosts fetches one page of posts from a subreddit
func (r *RedditAPI) GetSubredditPosts(ctx context.Context, name string, opts ListingOptions) (*models.PostListing, error) {
	name = cleanName(name, "r/")
	if name == "" {
		return nil, &RedditAPIError{Message: "subreddit name is required"}
	}

	if opts.Sort == "" {
		opts.Sort = "hot"
	}
	if !listingSorts[opts.Sort] {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidListing, opts.Sort)
	}
	if opts.After != "" && opts.Before != "" {
		return nil, fmt.Errorf("%w: after and before are mutually exclusive", ErrInvalidListing)
	}
	if opts.Limit <= 0 || opts.Limit > maxLimit {
		opts.Limit = defaultLimit
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(opts.Limit))
	if opts.After != "" {
		params.Set("after", opts.After)
	}
	if opts.Before != "" {
		params.Set("before", opts.Before)
	}
	if opts.Sort == "top" && opts.TimeFilter != "" {
		params.Set("t", opts.TimeFilter)
	}

	body, err := r.get(ctx, fmt.Sprintf("/r/%s/%s", url.PathEscape(name), opts.Sort), params)
	if err != nil {
		return nil, err
	}

	listing, err := decodeListing(body)
	if err != nil {
		return nil, err
	}
	listing.Subreddit = name
	listing.Sort = opts.Sort

	r.log.WithFields(logrus.Fields{
		"subreddit":  name,
		"sort":       opts.Sort,
		"post_count": len(listing.Posts),
		"after":      opts.After,
		"next_after": listing.After,
	}).Info("Fetched subreddit posts with pagination info")

	return listing, nil
}

// updateRateLimits records the rate limit headers for diagnostics
func (r *RedditAPI) updateRateLimits(resp *http.Response) {
	// X-Ratelimit-Used: Approximate number of requests used in this period
	// X-Ratelimit-Remaining: Approximate number of requests left to use
	// X-Ratelimit-Reset: Approximate number of seconds to end of period
	used := getHeaderAsInt(resp.Header, "X-Ratelimit-Used")
	remaining := getHeaderAsInt(resp.Header, "X-Ratelimit-Remaining")
	reset := getHeaderAsInt(resp.Header, "X-Ratelimit-Reset")

	if reset == 0 && used == 0 {
		return
	}

	r.rateHeadersMutex.Lock()
	r.rateLimit = RateLimitStatus{Used: used, Remaining: remaining, Reset: reset}
	r.rateHeadersMutex.Unlock()

	r.log.WithFields(logrus.Fields{
		"used":      used,
		"remaining": remaining,
		"reset_sec": reset,
	}).Debug("Updated rate limit status from Reddit headers")
}

func getHeaderAsInt(header http.Header, name string) int {
	value := header.Get(name)
	if value == "" {
		return 0
	}

	// reddit sends the remaining count as a float, e.g. "598.0"
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(floatValue) || math.IsInf(floatValue, 0) {
		return 0
	}
	return int(floatValue)
}
