package plan

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

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_PlanFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, tm := newTestService(t)
	tokens := jwt.New("test-secret", time.Hour)

	r := gin.New()
	protected := r.Group("")
	protected.Use(middleware.JWTAuth(middleware.NewAuthenticator(tokens)))
	NewHandler(svc, nil).RegisterRoutes(protected)

	token := func(u *domain.User) string {
		s, err := tokens.IssueAccessToken(u.ID, u.Role)
		require.NoError(t, err)
		return s
	}

	body := gin.H{
		"title":      "Grow",
		"periodFrom": "2026-01-01T00:00:00Z",
		"periodTo":   "2026-07-01T00:00:00Z",
		"goals":      []gin.H{{"title": "Speak", "actions": []gin.H{{"description": "Meetup talk"}}}},
	}

	w := request(r, http.MethodPost, "/plans", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(r, http.MethodPost, "/plans", body, token(tm.report))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data domain.Plan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	planID := created.Data.ID
	goalID := created.Data.Goals[0].ID
	assert.Equal(t, tm.report.ID, created.Data.UserID)

	// Body claims about role or identity change nothing: access comes from the token.
	spoof := gin.H{"title": "x", "periodFrom": "2026-01-01T00:00:00Z", "periodTo": "2026-02-01T00:00:00Z",
		"userId": tm.report.ID, "role": "ADMIN"}
	w = request(r, http.MethodPost, "/plans", spoof, token(tm.other))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = request(r, http.MethodGet, "/plans/"+planID, nil, token(tm.other))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(r, http.MethodGet, "/plans/"+planID, nil, token(tm.manager))
	assert.Equal(t, http.StatusOK, w.Code)

	bad := gin.H{"title": "x", "periodFrom": "2026-02-01T00:00:00Z", "periodTo": "2026-02-01T00:00:00Z"}
	w = request(r, http.MethodPost, "/plans", bad, token(tm.admin))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(r, http.MethodPost, "/plans/"+planID+"/goals/"+goalID+"/check-ins", gin.H{"progressPct": 150}, token(tm.report))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = request(r, http.MethodPost, "/plans/"+planID+"/goals/"+goalID+"/check-ins", gin.H{"progressPct": 40}, token(tm.report))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = request(r, http.MethodPost, "/plans/"+planID+"/goals/"+goalID+"/actions", gin.H{"description": "Write blog"}, token(tm.report))
	assert.Equal(t, http.StatusCreated, w.Code)
	w = request(r, http.MethodPost, "/plans/"+planID+"/goals/missing/actions", gin.H{"description": "Write blog"}, token(tm.report))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(r, http.MethodPost, "/plans/"+planID+"/goals", gin.H{"title": "Lead"}, token(tm.report))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = request(r, http.MethodPost, "/plans/"+planID+"/feedback", gin.H{"message": "Nice"}, token(tm.manager))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = request(r, http.MethodPatch, "/plans/"+planID+"/activate", nil, token(tm.report))
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = request(r, http.MethodPatch, "/plans/"+planID+"/activate", nil, token(tm.report))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = request(r, http.MethodGet, "/plans?userId="+tm.report.ID, nil, token(tm.manager))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), planID)

	w = request(r, http.MethodGet, "/plans/missing", nil, token(tm.admin))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
