package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"myclaim/internal/apperr"
)

// writeError renders err as {"error": ...}. Internal causes are not exposed.
func writeError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	body := gin.H{}
	var aerr *apperr.Error
	switch {
	case errors.As(err, &aerr) && status < http.StatusInternalServerError:
		body["error"] = aerr.Message
		if aerr.Field != "" {
			body["field"] = aerr.Field
		}
	case errors.As(err, &aerr) && aerr.Kind != apperr.Internal:
		body["error"] = aerr.Message
	default:
		body["error"] = "Internal server error"
		if id := GetRequestID(c); id != "" {
			body["request_id"] = id
		}
	}
	c.AbortWithStatusJSON(status, body)
}
