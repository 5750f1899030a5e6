package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey = "session"
	roleKey    = "role"
)

// Middleware enforces bearer session tokens signed with HS256 and resolves
// the caller's role.
func Middleware(signingKey, issuer string, policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		session, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(sessionKey, session)
		c.Set(roleKey, policy.ResolveRole(session))
		c.Next()
	}
}

// Require aborts with 403 unless the caller's role is one of kinds.
func Require(kinds ...Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		for _, k := range kinds {
			if role.Kind == k {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// RoleFrom returns the role stored by Middleware.
func RoleFrom(c *gin.Context) (Role, bool) {
	v, ok := c.Get(roleKey)
	if !ok {
		return Role{}, false
	}
	role, ok := v.(Role)
	return role, ok
}

// SessionFrom returns the session stored by Middleware.
func SessionFrom(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}
