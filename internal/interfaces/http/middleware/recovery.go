package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// Recovery turns a handler panic into a 500 with the standard error body.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error("Panic recovered",
				logging.String("panic", fmt.Sprint(rec)),
				logging.String("path", c.Request.URL.Path),
				logging.String("request_id", GetRequestID(c)),
				logging.String("stack", string(debug.Stack())))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":       string(errors.ErrCodeInternal),
					"message":    "internal server error",
					"request_id": GetRequestID(c),
				},
			})
		}()
		c.Next()
	}
}

//Personal.AI order the ending
