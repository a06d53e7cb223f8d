package middleware

import (
	"github.com/gin-gonic/gin"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/shared/response"
)

// Authorize gates a route on a family-level decision: the action comes from the
// HTTP verb and no resource instance is consulted. Object-level checks, such as
// editing a review, happen in the services after the row is loaded.
func Authorize(authorizer access.Authorizer, family access.Family) gin.HandlerFunc {
	return func(c *gin.Context) {
		action := access.ActionForMethod(c.Request.Method)
		if err := authorizer.Authorize(CallerFrom(c), family, action, nil); err != nil {
			response.FromError(c, err)
			return
		}
		c.Next()
	}
}
