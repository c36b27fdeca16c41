package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageflow/internal/service"
)

const actorContextKey = "__actor"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrPageNotFound),
		errors.Is(err, service.ErrVersionNotFound),
		errors.Is(err, service.ErrLinkNotFound),
		errors.Is(err, service.ErrComponentNotFound),
		errors.Is(err, service.ErrPlacementNotFound),
		errors.Is(err, service.ErrPageExpired):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrIllegalTransition),
		errors.Is(err, service.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes the mapped status. Internal errors are logged and hidden.
func (a *API) respondServiceError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		respondError(c, status, "internal server error")
		return
	}
	respondError(c, status, err.Error())
}

// actorFrom returns the actor stored by AuthRequired, or the zero actor.
func actorFrom(c *gin.Context) service.Actor {
	if value, exists := c.Get(actorContextKey); exists {
		if actor, ok := value.(service.Actor); ok {
			return actor
		}
	}
	return service.Actor{}
}
