package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/BppleMan/convertor/internal/apperror"
)

// writeError converts any error into the problem+json body described in
// §6, and logs it at the severity warranted by its HTTP status.
func writeError(c *gin.Context, err error) {
	status, httpCode := apperror.Classify(err)

	entry := requestLogger(c).WithField("status_code", status.Code)
	if httpCode >= 500 {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Warn("request rejected")
	}

	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(httpCode, apperror.Problem{Status: status, Data: nil})
}
