package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pourboire/backend/internal/auth"
	"github.com/pourboire/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextCompanyID is the key for the caller's company in gin context.
	ContextCompanyID = "company_id"
	// ContextUserRole is the key for user role in gin context.
	ContextUserRole = "user_role"
	// ContextUserToken is the key for the raw bearer token, forwarded to the
	// identity service on outbound lookups.
	ContextUserToken = "user_token"
)

// JWT returns a middleware that validates JWT and sets user claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, response.CodeMissingToken)
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, response.CodeInvalidToken)
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, response.CodeInvalidToken)
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextCompanyID, claims.CompanyID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserToken, parts[1])
		c.Next()
	}
}
