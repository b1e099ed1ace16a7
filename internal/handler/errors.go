package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sincarebunch/barbershop-api/internal/metrics"
	"github.com/sincarebunch/barbershop-api/internal/service"
	"github.com/sincarebunch/barbershop-api/internal/utils"
)

// requestTimeout bounds the store calls of one request.
const requestTimeout = 5 * time.Second

const msgInternal = "Internal Server Error"

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind error) int {
	switch {
	case errors.Is(kind, service.ErrUserExists):
		return http.StatusConflict
	case errors.Is(kind, service.ErrInvalidCredentials), errors.Is(kind, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(kind, service.ErrUserNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError answers a failed operation.  Domain errors keep their
// message; anything else is logged with a stack and hidden behind a 500.
// overrides remaps the status of specific kinds for one route.
func respondError(c echo.Context, log *zap.Logger, op string, err error, overrides map[error]int) error {
	var se *service.Error
	if errors.As(err, &se) {
		status := statusFor(se.Kind)
		if s, ok := overrides[se.Kind]; ok {
			status = s
		}
		log.Warn(op+" rejected", zap.String("reason", se.Message), zap.Int("status", status))
		metrics.RecordAuth(op, metrics.OutcomeRejected)
		return utils.Failure(c, status, se.Message)
	}
	log.Error(op+" failed", zap.Error(err), zap.Stack("stack"))
	metrics.RecordAuth(op, metrics.OutcomeError)
	return utils.Failure(c, http.StatusInternalServerError, msgInternal)
}

// bindAndValidate decodes the JSON body into req and runs the echo
// validator.  The returned error is already written to the client.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, utils.Failure(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return false, utils.Failure(c, http.StatusBadRequest, err.Error())
	}
	return true, nil
}
