package utils

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Session cookie names and lifetimes (seconds).
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	AccessTokenMaxAge  = 15 * 60
	RefreshTokenMaxAge = 30 * 24 * 60 * 60
)

const bearerPrefix = "Bearer "

// IsSecure reports whether the inbound request arrived over https,
// directly or through a proxy setting X-Forwarded-Proto.
func IsSecure(c echo.Context) bool {
	return c.Scheme() == "https"
}

// SetAccessTokenCookie stores the access token in an httpOnly cookie.
func SetAccessTokenCookie(c echo.Context, token string, secure bool) {
	c.SetCookie(sessionCookie(AccessTokenCookie, token, AccessTokenMaxAge, secure))
}

// SetRefreshTokenCookie stores the refresh token in an httpOnly cookie.
func SetRefreshTokenCookie(c echo.Context, token string, secure bool) {
	c.SetCookie(sessionCookie(RefreshTokenCookie, token, RefreshTokenMaxAge, secure))
}

// ClearAccessTokenCookie expires the access token cookie.
func ClearAccessTokenCookie(c echo.Context) {
	c.SetCookie(expiredCookie(AccessTokenCookie))
}

// ClearRefreshTokenCookie expires the refresh token cookie.
func ClearRefreshTokenCookie(c echo.Context) {
	c.SetCookie(expiredCookie(RefreshTokenCookie))
}

// GetAccessToken returns the access token from its cookie, else from the
// Authorization header, else "".
func GetAccessToken(c echo.Context) string {
	return tokenFrom(c, AccessTokenCookie)
}

// GetRefreshToken returns the refresh token from its cookie, else from the
// Authorization header, else "".
func GetRefreshToken(c echo.Context) string {
	return tokenFrom(c, RefreshTokenCookie)
}

func tokenFrom(c echo.Context, cookieName string) string {
	if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
	}
	return ""
}

func sessionCookie(name, value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
