package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devplan/internal/domain"
	"devplan/internal/pkg/jwt"
	"devplan/internal/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthenticator(t *testing.T) (*Authenticator, string) {
	t.Helper()
	svc := jwt.New("test-secret-123", time.Hour)
	token, err := svc.IssueAccessToken("user-42", domain.RoleManager)
	require.NoError(t, err)
	return NewAuthenticator(svc), token
}

func TestAuthenticate_HeaderFormat(t *testing.T) {
	auth, token := newAuthenticator(t)

	id, err := auth.Authenticate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", id.UserID)
	assert.Equal(t, domain.RoleManager, id.Role)

	for name, header := range map[string]string{
		"empty":           "",
		"scheme only":     "Bearer",
		"empty token":     "Bearer ",
		"double space":    "Bearer  " + token,
		"extra part":      "Bearer " + token + " extra",
		"lowercase":       "bearer " + token,
		"basic":           "Basic dGVzdA==",
		"garbage token":   "Bearer invalid-jwt-here",
		"no scheme token": token,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Authenticate(header)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestAuthenticate_ForeignSecret(t *testing.T) {
	auth, _ := newAuthenticator(t)
	foreign, err := jwt.New("another-secret", time.Hour).IssueAccessToken("user-42", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = auth.Authenticate("Bearer " + foreign)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestJWTAuth_ValidToken(t *testing.T) {
	auth, token := newAuthenticator(t)

	router := gin.New()
	router.Use(JWTAuth(auth))
	router.GET("/protected", func(c *gin.Context) {
		id := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "role": id.Role})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
	assert.Contains(t, w.Body.String(), "MANAGER")
}

func TestJWTAuth_Rejects(t *testing.T) {
	auth, _ := newAuthenticator(t)

	router := gin.New()
	router.Use(JWTAuth(auth))
	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("handler should not be reached")
	})

	for _, header := range []string{"", "Basic dGVzdA==", "Bearer invalid-jwt-here"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	}
}

func TestOptionalJWTAuth(t *testing.T) {
	auth, token := newAuthenticator(t)

	router := gin.New()
	router.Use(OptionalJWTAuth(auth))
	router.GET("/maybe", func(c *gin.Context) {
		c.String(http.StatusOK, IdentityFrom(c).UserID)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/maybe", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, "user-42", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer nope")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	newRouter := func(id domain.Identity) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if !id.IsZero() {
				SetIdentity(c, id)
			}
		})
		router.GET("/admin", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return router
	}

	cases := []struct {
		id   domain.Identity
		want int
	}{
		{domain.Identity{}, http.StatusUnauthorized},
		{domain.Identity{UserID: "u", Role: domain.RoleUser}, http.StatusForbidden},
		{domain.Identity{UserID: "m", Role: domain.RoleManager}, http.StatusForbidden},
		{domain.Identity{UserID: "a", Role: domain.RoleAdmin}, http.StatusNoContent},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		newRouter(tc.id).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, tc.want, w.Code, tc.id.Role.String())
	}
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.POST("/login", RateLimit(ratelimit.NewMemoryLimiter(2, time.Minute), ClientIPKey), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORS_Preflight(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeaders(), CORS([]string{"https://app.example.com"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
