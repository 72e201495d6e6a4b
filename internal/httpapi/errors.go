package httpapi

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"appointment-booking-api/internal/service"
)

// writeError sends err as a plain-text body with the status its kind maps to.
func writeError(c *gin.Context, err error) {
	var code int
	switch service.KindOf(err) {
	case service.KindNotFound:
		code = http.StatusNotFound
	case service.KindInvalidState, service.KindValidation:
		code = http.StatusBadRequest
	case service.KindConflict:
		code = http.StatusConflict
	case service.KindUnauthorized:
		code = http.StatusUnauthorized
	case service.KindForbidden:
		code = http.StatusForbidden
	default:
		log.Printf("http %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.String(code, err.Error())
}

func badRequest(c *gin.Context, msg string) {
	c.String(http.StatusBadRequest, msg)
}
