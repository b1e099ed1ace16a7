package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's id as a string, or
// "anon" when JWTAuth has not run or rejected the request.
func currentUserID(c echo.Context) string {
	if id, ok := c.Get(UserIDKey).(uint64); ok && id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}

// UserID returns the id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(UserIDKey).(uint64)
	return id, ok && id != 0
}
