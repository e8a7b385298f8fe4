package handler

import (
	"net/http"

	"buildledger/internal/apperr"
	"buildledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// tenantID reads the authenticated account ID placed in the context by the
// auth middleware. A missing or malformed value aborts with 401.
func tenantID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Not authenticated"))
		return uuid.Nil, false
	}
	str, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Not authenticated"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(str)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Not authenticated"))
		return uuid.Nil, false
	}
	return id, true
}

// fail maps a service error onto the HTTP status for its error class.
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}
