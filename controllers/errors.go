package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/services"
)

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as 500 without detail.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var ve *services.ValidationError
	var oracle *services.OracleSchemaViolation
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &oracle):
		log.Warn("oracle schema violation", "operation", oracle.Operation, "error", oracle.Err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "extraction service returned an invalid answer"})
	case errors.Is(err, services.ErrProductNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrAuthentication):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUserTaken),
		errors.Is(err, services.ErrAlreadyVerified),
		errors.Is(err, services.ErrWrongCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnsupportedImageType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("request timed out", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "timed out"})
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
