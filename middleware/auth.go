package middleware

import (
	"harvestmap/apperrors"
	"harvestmap/services/identity"
	"harvestmap/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PrincipalKey is the gin context key holding the authenticated seller id.
const PrincipalKey = "principalID"

// AuthMiddleware rejects requests without a valid bearer token and stores the
// verified principal in the context.
func AuthMiddleware(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()

		token, ok := identity.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			utils.JSONError(c, logger, apperrors.Unauthenticated("Missing or invalid Authorization header", nil))
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			utils.JSONError(c, logger, err)
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// RequireSelf only lets a principal act on the resource named by its own id in
// the given path parameter.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c) != c.Param(param) {
			utils.JSONError(c, zap.L(), apperrors.Forbidden("cannot act on behalf of another seller"))
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated id, or "" on unauthenticated routes.
func Principal(c *gin.Context) string {
	return c.GetString(PrincipalKey)
}
