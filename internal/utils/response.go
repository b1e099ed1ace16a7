package utils

import "github.com/labstack/echo/v4"

// Envelope is the body of every JSON response.
type Envelope struct {
	Error   bool   `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Success writes a non-error envelope with the given status.
func Success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Error: false, Code: status, Message: message, Data: data})
}

// Failure writes an error envelope with a nil data field.
func Failure(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Error: true, Code: status, Message: message})
}
