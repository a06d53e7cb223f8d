package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/internal/shared/response"
	"yamdb-backend/pkg/jwt"
)

const callerKey = "caller"

var errInvalidToken = apperr.Unauthenticated("AUTH_INVALID_TOKEN", "token is invalid or expired")

// TokenValidator is satisfied by *jwt.Manager.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// CallerResolver loads the current role of a token's subject. The role is read
// from storage on every request so demotions take effect immediately.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, userID int64) (*access.Caller, bool, error)
}

// Identity attaches the caller to the request. A missing Authorization header
// leaves the request anonymous; a malformed or invalid token is rejected.
func Identity(tokens TokenValidator, resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.FromError(c, errInvalidToken.WithMessage("authorization header must be 'Bearer <token>'"))
			return
		}

		claims, err := tokens.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString("request_id")).Msg("rejected token")
			response.FromError(c, errInvalidToken)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			response.FromError(c, errInvalidToken)
			return
		}

		caller, found, err := resolver.ResolveCaller(c.Request.Context(), userID)
		if err != nil {
			response.FromError(c, err)
			return
		}
		if !found {
			response.FromError(c, errInvalidToken.WithMessage("user no longer exists"))
			return
		}

		c.Set(callerKey, caller)
		c.Request = c.Request.WithContext(access.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

// CallerFrom returns the caller set by Identity, or nil for anonymous requests.
func CallerFrom(c *gin.Context) *access.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*access.Caller)
	return caller
}
