package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devplan/internal/domain"
	"devplan/internal/middleware"
	"devplan/internal/pkg/jwt"
	"devplan/internal/pkg/ratelimit"
	"devplan/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newRouter(t *testing.T, f *fixture, limiter ratelimit.Limiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(f.svc, limiter, nil)
	authn := middleware.NewAuthenticator(jwt.New("test-secret", jwt.DefaultAccessTTL, jwt.WithClock(func() time.Time { return f.now })))

	r := gin.New()
	h.RegisterPublicRoutes(r)
	protected := r.Group("")
	protected.Use(middleware.JWTAuth(authn))
	h.RegisterProtectedRoutes(protected)
	return r
}

func doJSON(r http.Handler, method, path string, body any, bearer string) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHandler_LoginRefreshLogout(t *testing.T) {
	f := newFixture(t)
	testutil.CreateUser(t, f.db, "ana@example.com", domain.RoleUser, testutil.WithPassword("s3cret"))
	r := newRouter(t, f, nil)

	w, env := doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "ana@example.com", "password": "s3cret"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var login struct {
		User         domain.User `json:"user"`
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, "ana@example.com", login.User.Email)
	assert.NotContains(t, string(env.Data), "password")

	w, env = doJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": login.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var pair TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))

	w, env = doJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": login.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	w, _ = doJSON(r, http.MethodPost, "/auth/logout", gin.H{"refreshToken": pair.RefreshToken}, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = doJSON(r, http.MethodPost, "/auth/logout-all", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(r, http.MethodPost, "/auth/logout-all", nil, pair.AccessToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_LoginValidationAndErrors(t *testing.T) {
	f := newFixture(t)
	testutil.CreateUser(t, f.db, "gone@example.com", domain.RoleUser, testutil.WithPassword("s3cret"), testutil.Inactive())
	r := newRouter(t, f, nil)

	w, env := doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "not-an-email", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	w, _ = doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "nobody@example.com", "password": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "gone@example.com", "password": "s3cret"}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(r, http.MethodPost, "/auth/refresh", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_LoginThrottled(t *testing.T) {
	f := newFixture(t)
	r := newRouter(t, f, ratelimit.NewMemoryLimiter(2, time.Minute))

	body := gin.H{"email": "ana@example.com", "password": "wrong"}
	for i := 0; i < 2; i++ {
		w, _ := doJSON(r, http.MethodPost, "/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, env := doJSON(r, http.MethodPost, "/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
}
