package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/pkg/errors"
)

// errorStatus maps domain errors onto an HTTP status and body. Validation
// failures carry the field map so clients can mark individual inputs;
// everything else is a single top-level message.
func errorStatus(logger *zap.Logger, err error) (int, gin.H) {
	switch e := err.(type) {
	case *errors.ErrValidation:
		return http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"fields": e.Fields,
		}
	case *errors.ErrEmptyCart:
		return http.StatusConflict, gin.H{"error": e.Error()}
	case *errors.ErrInvalidStateTransition:
		return http.StatusConflict, gin.H{"error": "submission already in progress"}
	case *errors.ErrSessionExpired:
		return http.StatusUnauthorized, gin.H{"error": e.Error()}
	case *errors.ErrNotFound:
		return http.StatusNotFound, gin.H{"error": e.Error()}
	case *errors.ErrBackend:
		return http.StatusBadGateway, gin.H{"error": e.Error()}
	default:
		logger.Error("Unhandled error", zap.Error(err))
		return http.StatusInternalServerError, gin.H{"error": "internal error"}
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, body := errorStatus(logger, err)
	c.JSON(status, body)
}
