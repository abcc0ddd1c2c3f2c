package auth

import (
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/curiosity-whiteboard/whiteboard-backend/internal/boards"
)

const ctxScopeKey = "board_scope"

// OptionalAuth resolves the request's board scope. No Authorization
// header means the shared anonymous scope. A bearer token is verified
// against Firebase and maps to the user's private scope; invalid tokens
// are rejected rather than silently downgraded to anonymous.
func OptionalAuth(authClient *fbauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" || authClient == nil {
			c.Set(ctxScopeKey, boards.Scope{})
			c.Next()
			return
		}

		decoded, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(ctxScopeKey, boards.Scope{UserID: decoded.UID})
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
