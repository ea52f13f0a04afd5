package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// validateAPIKey accepts HTTP Basic auth carrying the API key as the username.
// The password is ignored.
func (s *Server) validateAPIKey(username, _ string, c echo.Context) (bool, error) {
	if secureEqual(username, s.config.Auth.APIKey) {
		return true, nil
	}
	return false, unauthorized(c, "api", "Invalid API key")
}

// validateDocsCredentials guards the operational endpoints with a username and password
func (s *Server) validateDocsCredentials(username, password string, c echo.Context) (bool, error) {
	// evaluate both so timing does not reveal which one was wrong
	userOK := secureEqual(username, s.config.Auth.DocsUsername)
	passOK := secureEqual(password, s.config.Auth.DocsPassword)
	if userOK && passOK {
		return true, nil
	}
	return false, unauthorized(c, "docs", "Invalid documentation credentials")
}

func unauthorized(c echo.Context, realm, detail string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="`+realm+`"`)
	return echo.NewHTTPError(http.StatusUnauthorized, detail)
}

func secureEqual(given, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}
