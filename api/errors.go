package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inspikalu/sol-capsule/capsule"
	"github.com/inspikalu/sol-capsule/registry"
)

// statusFor maps pipeline and registry errors to HTTP status codes. Anything
// unrecognised happened upstream, in storage or on chain.
func statusFor(err error) int {
	var precondition *capsule.PreconditionError
	var locked *registry.LockedError
	switch {
	case errors.As(err, &precondition):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrInvalidPrice):
		return http.StatusBadRequest
	case errors.Is(err, capsule.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, capsule.ErrRunNotResumable):
		return http.StatusConflict
	case errors.Is(err, capsule.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrCapsuleNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrNotOwner):
		return http.StatusForbidden
	case errors.As(err, &locked):
		return http.StatusLocked
	default:
		return http.StatusBadGateway
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var locked *registry.LockedError
	if errors.As(err, &locked) {
		body["releaseDate"] = locked.ReleaseDate
		body["timeLeft"] = locked.TimeLeft
	}
	c.JSON(status, body)
}
