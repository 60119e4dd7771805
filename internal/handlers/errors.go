package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bings/visallo/internal/apperrors"
	"github.com/bings/visallo/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondServiceError translates service-layer errors to HTTP responses. The
// apperrors sentinels decide the status; anything unrecognized is a 500 with a
// generic message so internals never leak to clients.
func respondServiceError(c *gin.Context, err error, fallbackMsg string) {
	var accessDenied *apperrors.AccessDeniedError
	switch {
	case errors.As(err, &accessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: accessDenied.Message})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	default:
		middleware.GetLoggerFromCtx(c.Request.Context()).Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallbackMsg})
	}
}
