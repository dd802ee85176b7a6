package middleware

import (
	"github.com/gin-gonic/gin"

	"edumanage/internal/apperr"
	"edumanage/internal/auth"
	"edumanage/pkg/response"
)

const contextKeyAuth = "auth_context"

// Authenticate verifies the bearer credential and stores the decoded identity
// on the request. It does not authorize: permission and role checks happen in
// the services, against the snapshot carried by the token.
func Authenticate(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, err)
			return
		}

		actor, err := authenticator.Authenticate(token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(contextKeyAuth, actor)
		c.Next()
	}
}

// Actor returns the authenticated identity stored by Authenticate, or nil if
// the request went through an unauthenticated route.
func Actor(c *gin.Context) *auth.Context {
	value, exists := c.Get(contextKeyAuth)
	if !exists {
		return nil
	}
	actor, ok := value.(*auth.Context)
	if !ok {
		return nil
	}
	return actor
}

func abortWithError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	c.AbortWithStatusJSON(status, response.Error(status, err.Error()))
}
