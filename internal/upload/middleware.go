package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const storedPathKey = "upload.storedPath"

// Middleware stores the file in form field before the next handler runs.
// A request without the field passes through; the handler decides what a
// missing file means. Rejected files stop the request here.
func (s *Store) Middleware(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.maxBytes > 0 {
			// leave room for the other form fields
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBytes+1<<20)
		}

		fh, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			c.Next()
			return
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				abort(c, http.StatusRequestEntityTooLarge, "File size exceeds the allowed limit")
				return
			}
			abort(c, http.StatusBadRequest, "Malformed multipart request")
			return
		}

		stored, err := s.Save(fh)
		switch {
		case errors.Is(err, ErrTooLarge):
			abort(c, http.StatusRequestEntityTooLarge, "File size exceeds the allowed limit")
			return
		case errors.Is(err, ErrUnsupportedType):
			abort(c, http.StatusUnsupportedMediaType, "Only PNG and JPEG images are accepted")
			return
		case err != nil:
			log.Error().Err(err).Str("filename", fh.Filename).Msg("Failed to store upload")
			abort(c, http.StatusInternalServerError, "Failed to save image")
			return
		}

		c.Set(storedPathKey, stored)
		c.Next()
	}
}

// StoredPath returns the path assigned to the file stored by Middleware
func StoredPath(c *gin.Context) (string, bool) {
	stored := c.GetString(storedPathKey)
	return stored, stored != ""
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   http.StatusText(status),
		"message": message,
	})
}
