package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sincarebunch/barbershop-api/internal/metrics"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = echo.HeaderXRequestID

// RequestLogger tags each request with an id (reusing a client supplied
// X-Request-ID) and writes one access log line when it completes.
// Authorization and cookie headers are never logged.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	log = log.Named("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			rid := req.Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(RequestIDHeader, rid)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			latency := time.Since(start)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveRequest(req.Method, route, status, latency)

			fields := []zap.Field{
				zap.String("request_id", rid),
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("ip", c.RealIP()),
				zap.Int("status", status),
				zap.Duration("latency", latency),
			}
			// Handlers log the cause of a 5xx at Error.
			if status >= 400 {
				log.Warn("request", fields...)
			} else {
				log.Info("request", fields...)
			}
			return nil
		}
	}
}
