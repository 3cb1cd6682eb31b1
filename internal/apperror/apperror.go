package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error carries a user-facing message and the underlying cause. Message is safe
// to show; Err is only ever logged.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// JSON returns the error as a JSON string.
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error.
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation is a failure detected before any remote call.
func Validation(message string) *Error {
	return New(http.StatusUnprocessableEntity, message, nil)
}

// Remote wraps a failure returned by the data service.
func Remote(message string, err error) *Error {
	return New(http.StatusBadGateway, message, err)
}

// Unauthorized is returned when an operation needs a signed-in user.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message, nil)
}

// Forbidden is returned when the signed-in user lacks a capability.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message, nil)
}

// Message extracts the user-facing text of err, falling back to a generic one.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong"
}

// Code extracts the HTTP status of err.
func Code(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code int) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// Middleware renders the last gin error of a JSON route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		var appErr *Error
		if !errors.As(err, &appErr) {
			appErr = New(http.StatusInternalServerError, "Internal server error", err)
		}
		c.AbortWithStatusJSON(appErr.Code, appErr)
	}
}
