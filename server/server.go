package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/brettboylen/reddit-insights/api"
	"github.com/brettboylen/reddit-insights/models"
	"github.com/brettboylen/reddit-insights/render"
	"github.com/brettboylen/reddit-insights/stats"
	"github.com/brettboylen/reddit-insights/utils"
)

// RedditClient is the part of the Reddit API client the handlers use
type RedditClient interface {
	GetPostStatistics(ctx context.Context, postURL string) (*models.Post, error)
	GetPostWithComments(ctx context.Context, postURL string, opts api.CommentOptions) (*models.Post, []models.Comment, error)
	GetUserStatistics(ctx context.Context, username string) (*models.User, error)
	GetSubredditInfo(ctx context.Context, name string) (*models.Subreddit, error)
	GetSubredditPosts(ctx context.Context, name string, opts api.ListingOptions) (*models.PostListing, error)
}

// ClientFactory builds a client for the credentials sent with a request
type ClientFactory func(credentials api.Credentials) RedditClient

// Server is the HTTP front end of the service
type Server struct {
	echo      *echo.Echo
	config    *utils.Config
	newClient ClientFactory
	scorer    *stats.Scorer
	renderer  *render.Renderer
	metrics   *Metrics
	log       *logrus.Logger
}

// New creates a server with all routes and middleware registered
func New(config *utils.Config, newClient ClientFactory, log *logrus.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		config:    config,
		newClient: newClient,
		scorer:    stats.NewScorer(),
		renderer:  render.NewRenderer(),
		metrics:   NewMetrics(),
		log:       log,
	}

	e.HTTPErrorHandler = s.handleError

	// middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(s.metrics.middleware)
	e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(config.Server.MaxRequestsPerMinute)))

	e.GET("/", s.handleRoot)
	e.GET("/health", s.handleHealth)

	docsAuth := middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm:     "docs",
		Validator: s.validateDocsCredentials,
	})
	apiAuth := middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm:     "api",
		Validator: s.validateAPIKey,
	})

	e.GET("/metrics", s.metrics.handler(), docsAuth)
	e.GET("/docs", s.handleDocs, docsAuth)
	e.GET("/openapi.json", s.handleDocs, docsAuth)

	e.POST("/get-user", s.handleGetUser, apiAuth)
	e.POST("/get-post", s.handleGetPost, apiAuth)
	e.POST("/get-subreddit", s.handleGetSubreddit, apiAuth)
	e.POST("/get-subreddit-posts", s.handleGetSubredditPosts, apiAuth)
	e.POST("/analyze-post", s.handleAnalyzePost, apiAuth)
	e.POST("/rank-posts", s.handleRankPosts, apiAuth)
	e.POST("/format-post", s.handleFormatPost, apiAuth)

	return s
}

// rateLimiterConfig limits each client IP to maxRequestsPerMinute
func rateLimiterConfig(maxRequestsPerMinute int) middleware.RateLimiterConfig {
	requestsPerSecond := float64(maxRequestsPerMinute) / 60.0

	return middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(requestsPerSecond),
				Burst:     max(1, maxRequestsPerMinute/10),
				ExpiresIn: 3 * time.Minute,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusForbidden, errorBody("Forbidden", "Could not identify client"))
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, errorBody("Too Many Requests", "Rate limit exceeded, please try again later"))
		},
	}
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on the configured port until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		serverAddr := fmt.Sprintf(":%d", s.config.Server.Port)
		s.log.WithField("port", s.config.Server.Port).Info("Starting API server")
		if err := s.echo.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown failed: %w", err)
	}
	return nil
}

// errorResponse is the body of every error the server returns
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func errorBody(title, detail string) errorResponse {
	return errorResponse{Error: title, Detail: detail}
}

// handleError turns handler errors into JSON error bodies
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := errorBody("Internal Server Error", "Internal Server Error: "+err.Error())

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail := fmt.Sprint(he.Message)
		switch code {
		case http.StatusNotFound:
			body = errorBody("Endpoint not found", "The requested endpoint does not exist")
		case http.StatusMethodNotAllowed:
			body = errorBody("Method not allowed", "The endpoint does not support this method")
		case http.StatusUnprocessableEntity:
			body = errorBody("Validation Error", detail)
		default:
			body = errorBody(http.StatusText(code), detail)
		}
	}

	if code >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", c.Path()).Error("Request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		s.log.WithError(err).Error("Failed to write error response")
	}
}
