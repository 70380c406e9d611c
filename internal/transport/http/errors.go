package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/smart-dobi/internal/domain"
)

// writeError maps the domain error taxonomy onto stable status codes and
// messages. Unrecognized errors become a generic 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Machine not found"})
	case errors.Is(err, domain.ErrNotAvailable):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Machine not available"})
	case errors.Is(err, domain.ErrNotReserved):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Machine not reserved"})
	case errors.Is(err, domain.ErrInvalidContact):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid WhatsApp number"})
	case errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid status"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
	case errors.Is(err, domain.ErrUpstream):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Authentication service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}
