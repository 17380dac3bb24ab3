package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zvrva/slotbooker/internal/domain"
)

// writeError maps the domain error taxonomy onto HTTP status codes:
// not-found 404, conflict 409, validation 400, everything else 500.
func writeError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
