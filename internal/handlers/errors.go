package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"hms-server/internal/middleware"
	"hms-server/internal/services"
	"hms-server/internal/utils"
)

// respondError maps a service error to its HTTP response. Unclassified
// errors are logged and reported as a generic server error.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.InternalServerError(c, "Server error")
		return
	}

	switch svcErr.Kind {
	case services.KindValidation:
		utils.ValidationError(c, svcErr.Msg)
	case services.KindBadRequest:
		utils.BadRequest(c, svcErr.Msg)
	case services.KindUnauthorized:
		utils.Unauthorized(c, svcErr.Msg)
	case services.KindForbidden:
		utils.Forbidden(c, svcErr.Msg)
	case services.KindNotFound:
		utils.NotFound(c, svcErr.Msg)
	case services.KindConflict:
		utils.Conflict(c, svcErr.Msg)
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.InternalServerError(c, "Server error")
	}
}

// caller returns the authenticated user's id, or responds 401.
func caller(c *gin.Context) (string, bool) {
	id, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Not authorized")
		return "", false
	}
	return id, true
}
