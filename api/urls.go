package api

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPostURL is returned when no post ID can be found in a URL
var ErrInvalidPostURL = errors.New("could not extract post ID from URL")

// checked in order; the first match wins
var postIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/comments/([a-z0-9]+)(?:/|$|\?)`),
	regexp.MustCompile(`/r/[^/]+/comments/([a-z0-9]+)`),
	regexp.MustCompile(`redd\.it/([a-z0-9]+)`),
	regexp.MustCompile(`reddit\.com/([a-z0-9]+)/?(?:$|\?)`),
}

var subredditPattern = regexp.MustCompile(`/r/([^/?#]+)/`)

// ExtractPostID pulls the base36 post ID out of any of the common Reddit URL forms
func ExtractPostID(postURL string) (string, error) {
	for _, pattern := range postIDPatterns {
		if match := pattern.FindStringSubmatch(postURL); match != nil {
			return match[1], nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidPostURL, postURL)
}

// ExtractSubreddit returns the subreddit named in a post URL, or "" if there is none
func ExtractSubreddit(postURL string) string {
	if match := subredditPattern.FindStringSubmatch(postURL); match != nil {
		return match[1]
	}
	return ""
}

// commentsEndpoint builds the API path that returns a post and its comments
func commentsEndpoint(postURL string) (string, error) {
	postID, err := ExtractPostID(postURL)
	if err != nil {
		return "", err
	}

	if subreddit := ExtractSubreddit(postURL); subreddit != "" {
		return fmt.Sprintf("/r/%s/comments/%s", subreddit, postID), nil
	}
	return "/comments/" + postID, nil
}

// cleanName strips surrounding whitespace and a leading "u/" or "r/" style prefix
func cleanName(name, prefix string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, prefix)
	return strings.Trim(name, "/")
}
