package response

import (
	"net/http"

	"devplan/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// AbortError writes the error envelope and stops the handler chain.
func AbortError(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

// FromError maps err onto the envelope. Internal failures are logged in full
// and answered with a generic message.
func FromError(c *gin.Context, err error, log *zap.Logger) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		_ = c.Error(err)
	}
	Error(c, status, string(apperr.CodeOf(err)), apperr.PublicMessage(err))
}

// AbortFromError is FromError for middleware.
func AbortFromError(c *gin.Context, err error, log *zap.Logger) {
	FromError(c, err, log)
	c.Abort()
}

// ValidationError answers a failed binding or validation with 400.
func ValidationError(c *gin.Context, details any) {
	if details == nil {
		Error(c, http.StatusBadRequest, string(apperr.CodeBadRequest), "Invalid request body")
		return
	}
	ErrorWithDetails(c, http.StatusBadRequest, string(apperr.CodeBadRequest), "Invalid request body", details)
}
