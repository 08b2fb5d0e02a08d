package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pricecast/internal/api/models"
	"pricecast/internal/logging"
)

// ErrorHandler recovers from panics and returns the standard error envelope.
func ErrorHandler() gin.HandlerFunc {
	log := logging.Component("http")
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Msg("recovered from panic")

		message := "An unexpected error occurred"
		switch v := recovered.(type) {
		case string:
			message = v
		case error:
			message = v.Error()
		default:
			if v != nil {
				message = fmt.Sprint(v)
			}
		}

		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: message,
			},
		})
		c.Abort()
	})
}
