package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// endpointDoc describes one route in the OpenAPI document
type endpointDoc struct {
	Method  string
	Path    string
	Summary string
	Request string // name of the JSON body type, empty for GET routes
	Auth    string // security scheme, empty for open routes
}

var endpointDocs = []endpointDoc{
	{http.MethodGet, "/", "Service information and endpoint list", "", ""},
	{http.MethodGet, "/health", "Liveness check", "", ""},
	{http.MethodGet, "/metrics", "Prometheus metrics", "", "docsAuth"},
	{http.MethodGet, "/docs", "This document", "", "docsAuth"},
	{http.MethodGet, "/openapi.json", "This document", "", "docsAuth"},
	{http.MethodPost, "/get-user", "Profile statistics for a user", "UserRequest", "apiKey"},
	{http.MethodPost, "/get-post", "Statistics for a post", "PostRequest", "apiKey"},
	{http.MethodPost, "/get-subreddit", "Subreddit information", "SubredditRequest", "apiKey"},
	{http.MethodPost, "/get-subreddit-posts", "One page of subreddit posts", "SubredditPostsRequest", "apiKey"},
	{http.MethodPost, "/analyze-post", "Attractiveness score, tier and comment metrics for a post", "AnalyzeRequest", "apiKey"},
	{http.MethodPost, "/rank-posts", "Rank up to 25 posts by attractiveness", "RankRequest", "apiKey"},
	{http.MethodPost, "/format-post", "Markdown rendering of a post and its comment tree", "AnalyzeRequest", "apiKey"},
}

// openAPIDocument builds an OpenAPI 3 description of the routes
func (s *Server) openAPIDocument() map[string]any {
	paths := map[string]any{}
	for _, doc := range endpointDocs {
		op := map[string]any{
			"summary": doc.Summary,
			"responses": map[string]any{
				"200": map[string]any{"description": "OK"},
			},
		}
		if doc.Request != "" {
			op["requestBody"] = map[string]any{
				"required": true,
				"content": map[string]any{
					"application/json": map[string]any{
						"schema": map[string]any{"$ref": "#/components/schemas/" + doc.Request},
					},
				},
			}
			op["responses"].(map[string]any)["422"] = map[string]any{"description": "Invalid request body"}
			op["responses"].(map[string]any)["400"] = map[string]any{"description": "Reddit API error"}
		}
		if doc.Auth != "" {
			op["security"] = []map[string][]string{{doc.Auth: {}}}
			op["responses"].(map[string]any)["401"] = map[string]any{"description": "Missing or invalid credentials"}
		}

		item, ok := paths[doc.Path].(map[string]any)
		if !ok {
			item = map[string]any{}
			paths[doc.Path] = item
		}
		item[lowerMethod(doc.Method)] = op
	}

	schemas := map[string]any{}
	for _, doc := range endpointDocs {
		if doc.Request != "" {
			schemas[doc.Request] = map[string]any{"type": "object"}
		}
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   s.config.App.Name,
			"version": s.config.App.Version,
		},
		"paths": paths,
		"components": map[string]any{
			"schemas": schemas,
			"securitySchemes": map[string]any{
				"apiKey": map[string]any{
					"type":        "http",
					"scheme":      "basic",
					"description": "API key as the username, empty password",
				},
				"docsAuth": map[string]any{
					"type":   "http",
					"scheme": "basic",
				},
			},
		},
	}
}

func lowerMethod(method string) string {
	switch method {
	case http.MethodPost:
		return "post"
	default:
		return "get"
	}
}

func (s *Server) handleDocs(c echo.Context) error {
	return c.JSON(http.StatusOK, s.openAPIDocument())
}
