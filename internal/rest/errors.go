package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaistout4/ImageGallerySPA/api"
	"github.com/kaistout4/ImageGallerySPA/gallery/domain"
	"github.com/rs/zerolog/log"
)

// statusFor maps a domain error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNameTooLong):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err. Server errors are logged and
// their detail withheld from the caller.
func writeError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	message := domain.Message(err, fallback)

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg(fallback)
		message = fallback
	}

	c.AbortWithStatusJSON(status, api.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
