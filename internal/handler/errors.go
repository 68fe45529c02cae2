package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipehub/backend/internal/model"
	"github.com/recipehub/backend/internal/service"
)

const msgInternal = "Something went wrong. Please try again."

// errorMessages overrides the client-facing text for a handler. Empty fields
// use the defaults.
type errorMessages struct {
	NotFound string
	Internal string
}

func writeError(c *gin.Context, err error, msgs errorMessages) {
	status := http.StatusInternalServerError
	message := orDefault(msgs.Internal, msgInternal)

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrConflict):
		status, message = http.StatusBadRequest, "User with this username or email already exists."
	case errors.Is(err, service.ErrImagesDisabled):
		status, message = http.StatusBadRequest, "Image uploads are not enabled on this server."
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, orDefault(msgs.NotFound, "Resource not found.")
	case errors.Is(err, service.ErrBadCredentials):
		status, message = http.StatusForbidden, "Invalid credentials."
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, "You are not allowed to modify this resource."
	case errors.Is(err, service.ErrUnauthorized):
		status, message = http.StatusUnauthorized, msgInvalidToken
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}

	c.JSON(status, model.ErrorResponse{Success: false, Message: message})
}

// recoverPanic answers a panicking handler with the standard error envelope.
func recoverPanic(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", rec,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{Success: false, Message: msgInternal})
	})
}

func writeBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{Success: false, Message: message})
}

func orDefault(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}
