package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/rented/backend/internal/service"
	"github.com/rented/backend/internal/token"
)

// respondErr maps domain failures to HTTP statuses. Anything unclassified is
// a 500 with a generic body so internals never leak to the portal.
func respondErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	reason := "internal_error"

	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, token.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidState):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrScopeForbidden), errors.Is(err, service.ErrForbidden),
		errors.Is(err, token.ErrInactive), errors.Is(err, token.ErrExpired):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrDuplicateSubmission), errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status != http.StatusInternalServerError {
		reason = err.Error()
	}
	c.JSON(status, gin.H{"error": reason})
}
