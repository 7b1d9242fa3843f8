package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/aviato/internal/common"
	"github.com/gin-gonic/gin"
)

// writeError maps service errors to status codes. Blocked contact attempts
// are 403 with the reason as detail.
func (h *Handler) writeError(c *gin.Context, err error, notFound string) {
	var blocked *common.BlockedError
	switch {
	case errors.As(err, &blocked):
		c.JSON(http.StatusForbidden, gin.H{"detail": blocked.Reason})
	case errors.Is(err, common.ErrInvalidOpenDate):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Open Date must be tomorrow or later"})
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": notFound})
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "Not authorized to update this user"})
	default:
		h.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}
