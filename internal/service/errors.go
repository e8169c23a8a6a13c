package service

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIError is the error a handler hands to the error reporter instead of writing a response
// itself. Message is shown to the client, Err is only logged.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// reportError forwards the error to the error reporter and stops the handler chain.
func reportError(c *gin.Context, status int, message string, cause error) {
	_ = c.Error(&APIError{Status: status, Message: message, Err: cause})
	c.Abort()
}

// ErrorReporter writes the response for the last error a handler reported. Errors that are not
// an APIError are answered with a plain 500 so that internal details never reach the client.
func ErrorReporter(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := http.StatusInternalServerError
		message := http.StatusText(http.StatusInternalServerError)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Status
			message = apiErr.Message
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error(message, fields...)
		} else {
			log.Debug(message, fields...)
		}
		c.IndentedJSON(status, gin.H{"message": message})
	}
}
