package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orgboard/orgboard/internal/api/response"
	"github.com/orgboard/orgboard/internal/auth"
)

// Context keys populated by AuthMiddleware.
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserNameKey  = "user_name"
	TokenKey     = "token"
)

// AuthMiddleware gates protected routes on a valid, unexpired JWT. The token
// is read from the Authorization header (Bearer scheme) or, failing that,
// from the session cookie. A missing, malformed, or expired token gets the
// same 401 envelope, so callers cannot distinguish the failure modes.
//
// Verification is purely cryptographic; no database round-trip happens here.
func AuthMiddleware(tokens *auth.TokenIssuer, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, cookieName)
		if token == "" {
			unauthorized(c)
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserNameKey, claims.Name)
		c.Set(TokenKey, token)

		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil {
			return cookie
		}
	}
	return ""
}

func unauthorized(c *gin.Context) {
	response.Start().Fail(c, http.StatusUnauthorized,
		"Authentication required", response.CodeUnauthorized, response.CategoryAuthentication)
	c.Abort()
}
