package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-key"
	testIssuer = "test-issuer"
)

func TestIssueParseRoundTrip(t *testing.T) {
	token, exp, err := Issue("u1", "Delegate@Example.com", testIssuer, testKey, time.Minute)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	s, err := Parse(token, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.Subject)
	assert.Equal(t, "delegate@example.com", s.Email)
}

func TestParseRejects(t *testing.T) {
	token, _, err := Issue("u1", "a@b.c", testIssuer, testKey, time.Minute)
	require.NoError(t, err)

	_, err = Parse(token, "other-key", testIssuer)
	assert.Error(t, err)

	_, err = Parse(token, testKey, "someone-else")
	assert.Error(t, err)

	expired, _, err := Issue("u1", "a@b.c", testIssuer, testKey, -time.Minute)
	require.NoError(t, err)
	_, err = Parse(expired, testKey, testIssuer)
	assert.Error(t, err)
}

func TestAllowlistPolicy(t *testing.T) {
	p := NewAllowlistPolicy([]string{"Admin@Example.com"}, map[string]string{"chair@example.com": "UNSC", "head@example.com": AllCommittees})

	admin := p.ResolveRole(Session{Email: "admin@example.com"})
	assert.Equal(t, KindAdmin, admin.Kind)
	assert.True(t, admin.Covers("anything"))
	assert.Equal(t, "", admin.ScopeFilter())

	chair := p.ResolveRole(Session{Email: "CHAIR@example.com"})
	assert.Equal(t, KindChair, chair.Kind)
	assert.True(t, chair.Covers("UNSC"))
	assert.False(t, chair.Covers("DISEC"))
	assert.False(t, chair.Covers(""))
	assert.Equal(t, "UNSC", chair.ScopeFilter())

	head := p.ResolveRole(Session{Email: "head@example.com"})
	assert.True(t, head.Covers("DISEC"))
	assert.Equal(t, "", head.ScopeFilter())

	user := p.ResolveRole(Session{Email: "someone@example.com"})
	assert.Equal(t, KindUser, user.Kind)
	assert.False(t, user.Covers("UNSC"))
}

func TestMiddlewareAndRequire(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewAllowlistPolicy([]string{"admin@example.com"}, nil)
	r := gin.New()
	r.GET("/admin", Middleware(testKey, testIssuer, p), Require(KindAdmin), func(c *gin.Context) {
		role, _ := RoleFrom(c)
		c.JSON(http.StatusOK, role)
	})

	do := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("garbage"))

	userToken, _, err := Issue("u", "user@example.com", testIssuer, testKey, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(userToken))

	adminToken, _, err := Issue("a", "admin@example.com", testIssuer, testKey, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(adminToken))
}
