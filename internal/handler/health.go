package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing store is reachable.  *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health answers load balancer probes.  It replies "ok" unless the database
// is configured and does not answer a ping within two seconds.
func (h *BaseHandler) Health(c echo.Context) error {
	if h.DB == nil {
		return c.String(http.StatusOK, "ok")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		return c.String(http.StatusServiceUnavailable, "unavailable")
	}
	return c.String(http.StatusOK, "ok")
}
