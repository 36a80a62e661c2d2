package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/auth"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/config"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/evaluation"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/leaderboard"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/monitoring"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/profile"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/ratelimit"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/sharing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	repo   *database.Repository
	token  string
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.New()
	cfg.RateLimitPerMinute = 10000
	cfg.ShareRateLimitPerMinute = 10000
	if mutate != nil {
		mutate(cfg)
	}

	repo := database.NewRepository(database.OpenTestDB(t))
	lc := leaderboard.NewLeaderboardCache(time.Minute)
	t.Cleanup(lc.Close)
	lb := leaderboard.NewService(repo, lc, leaderboard.Config{MaxLimit: cfg.MaxLeaderboardLimit, DefaultLimit: cfg.DefaultPageLimit})

	metrics := monitoring.NewMetrics()
	limiter := ratelimit.NewRateLimiter(nil, ratelimit.Config{
		PerMinute:      cfg.RateLimitPerMinute,
		Burst:          cfg.RateLimitBurst,
		LoginPerMinute: cfg.LoginRateLimitPerMinute,
		SharePerMinute: cfg.ShareRateLimitPerMinute,
	}, metrics)
	t.Cleanup(func() { _ = limiter.Close() })

	deps := Deps{
		Config:      cfg,
		Repo:        repo,
		Leaderboard: lb,
		Profiles:    profile.NewService(repo, lb),
		Sharing:     sharing.NewService(repo, lb, cfg.FrontendURL),
		Evaluations: evaluation.NewWriter(repo, lb),
		Auth:        auth.NewService(cfg.JWTSecret, cfg.AdminUsername, cfg.AdminPasswordHash, cfg.TokenTTL),
		Limiter:     limiter,
		Metrics:     metrics,
		Logger:      monitoring.NewLogger("error"),
	}
	return &testServer{router: NewRouter(deps), repo: repo}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.RemoteAddr = "192.0.2.10:4000"

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error struct {
		Kind      string         `json:"kind"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details"`
		RequestID string         `json:"request_id"`
	} `json:"error"`
}

func fullCrisis(v float64) map[string]float64 {
	return map[string]float64{
		"decisionMaking": v, "communication": v, "technicalAcumen": v, "leadership": v, "completeness": v,
	}
}

func (s *testServer) createCandidate(t *testing.T, n int) int64 {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/candidates", map[string]any{
		"first_name":    fmt.Sprintf("Ada%d", n),
		"last_name":     "Lovelace",
		"email":         fmt.Sprintf("ada%d@example.com", n),
		"primary_skill": "Backend",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[database.Candidate](t, w).ID
}

func (s *testServer) evaluate(t *testing.T, id int64, scores map[string]float64) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, fmt.Sprintf("/api/candidates/%d/evaluations", id), map[string]any{
		"prompt_id":     "crisis",
		"response":      "Stabilize first, then communicate.",
		"rubric_scores": scores,
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
	for _, internal := range []string{"pool", "cache", "rate_limiter", "metrics"} {
		assert.NotContains(t, body, internal)
	}
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestHealthDetailsRequireReviewer(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	s := newTestServer(t, func(c *config.Config) {
		c.JWTSecret = "test-secret-test-secret-test-secret"
		c.AdminPasswordHash = hash
	})

	w := s.do(t, http.MethodGet, "/api/health/details", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)
	s.token = decode[map[string]any](t, w)["token"].(string)

	w = s.do(t, http.MethodGet, "/api/health/details", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	for _, key := range []string{"pool", "cache", "rate_limiter", "metrics"} {
		assert.Contains(t, body, key)
	}
}

func TestPrompts(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/prompts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 3)
	assert.Equal(t, "crisis", list[0]["id"])
	assert.EqualValues(t, 100, list[0]["total_possible"])
	assert.NotContains(t, list[0], "prompt")

	w = s.do(t, http.MethodGet, "/api/prompts/team", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string]any](t, w)["prompt"])

	w = s.do(t, http.MethodGet, "/api/prompts/unknown", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, w).Error.Kind)
}

func TestValidateAndTotalScores(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		path   string
		scores map[string]float64
		status int
		total  float64
	}{
		{name: "complete set", path: "/api/prompts/crisis/validate", scores: fullCrisis(15), status: http.StatusOK, total: 75},
		{name: "out of range", path: "/api/prompts/crisis/validate", scores: fullCrisis(21), status: http.StatusBadRequest},
		{name: "missing categories", path: "/api/prompts/crisis/validate", scores: map[string]float64{"leadership": 5}, status: http.StatusBadRequest},
		{name: "partial total", path: "/api/prompts/crisis/total", scores: map[string]float64{"leadership": 5, "communication": 7.5}, status: http.StatusOK, total: 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tt.path, map[string]any{"rubric_scores": tt.scores})
			require.Equal(t, tt.status, w.Code, w.Body.String())

			if tt.status != http.StatusOK {
				body := decode[errorBody](t, w)
				assert.Equal(t, "validation_failure", body.Error.Kind)
				assert.Contains(t, body.Error.Details, "problems")
				return
			}
			body := decode[map[string]any](t, w)
			assert.InDelta(t, tt.total, body["total"], 1e-9)
			assert.EqualValues(t, 100, body["total_possible"])
		})
	}
}

func TestMalformedBodyIsRejected(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/prompts/crisis/total", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/prompts/crisis/total", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestEvaluationFlowOrdersLeaderboard(t *testing.T) {
	s := newTestServer(t, nil)

	first := s.createCandidate(t, 1)
	second := s.createCandidate(t, 2)
	third := s.createCandidate(t, 3)

	require.Equal(t, http.StatusCreated, s.evaluate(t, first, fullCrisis(10)).Code)
	require.Equal(t, http.StatusCreated, s.evaluate(t, second, fullCrisis(18)).Code)
	require.Equal(t, http.StatusCreated, s.evaluate(t, third, fullCrisis(10)).Code)

	w := s.do(t, http.MethodGet, "/api/leaderboard/top10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	top := decode[[]database.RankedCandidate](t, w)
	require.Len(t, top, 3)
	assert.Equal(t, []int64{second, first, third}, []int64{top[0].CandidateID, top[1].CandidateID, top[2].CandidateID})
	assert.Equal(t, []int{1, 2, 3}, []int{top[0].Rank, top[1].Rank, top[2].Rank})

	w = s.do(t, http.MethodGet, "/api/leaderboard?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[leaderboard.Page](t, w)
	require.Len(t, page.Data, 1)
	assert.Equal(t, third, page.Data[0].CandidateID)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/candidates/%d/rank", first), nil)
	require.Equal(t, http.StatusOK, w.Code)
	pos := decode[leaderboard.Position](t, w)
	assert.Equal(t, 2, pos.Rank)
	assert.Equal(t, 3, pos.Total)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/candidates/%d", second), nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[map[string]any](t, w)
	assert.Equal(t, "ada2@example.com", detail["email"])
	require.NotNil(t, detail["ranking"])
	assert.EqualValues(t, 1, detail["ranking"].(map[string]any)["rank"])
	assert.Len(t, detail["evaluations"], 1)
}

func TestTopCandidatesCappedAtMaxLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.MaxLeaderboardLimit = 2
		c.DefaultPageLimit = 2
	})

	for i := 1; i <= 3; i++ {
		require.Equal(t, http.StatusCreated, s.evaluate(t, s.createCandidate(t, i), fullCrisis(float64(10+i))).Code)
	}

	w := s.do(t, http.MethodGet, "/api/leaderboard/top10?n=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]database.RankedCandidate](t, w), 2)
}

func TestDuplicateEvaluationConflicts(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createCandidate(t, 1)

	require.Equal(t, http.StatusCreated, s.evaluate(t, id, fullCrisis(10)).Code)

	w := s.evaluate(t, id, fullCrisis(12))
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict_already_exists", decode[errorBody](t, w).Error.Kind)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/candidates/%d/evaluations/crisis", id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusCreated, s.evaluate(t, id, fullCrisis(12)).Code)
}

func TestInvalidEvaluationIsRejected(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createCandidate(t, 1)

	w := s.evaluate(t, id, map[string]float64{"leadership": 50})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.evaluate(t, 999, fullCrisis(10))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/candidates/%d/rank", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNullScoreIsRejected(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createCandidate(t, 1)

	scores := map[string]any{
		"decisionMaking": nil, "communication": 20, "technicalAcumen": 20, "leadership": 20, "completeness": 20,
	}

	w := s.do(t, http.MethodPost, "/api/prompts/crisis/validate", map[string]any{"rubric_scores": scores})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decode[errorBody](t, w)
	assert.Equal(t, "validation_failure", body.Error.Kind)
	assert.Contains(t, w.Body.String(), "not_finite")

	w = s.do(t, http.MethodPost, "/api/prompts/crisis/total", map[string]any{"rubric_scores": scores})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	progress := decode[map[string]any](t, w)
	assert.InDelta(t, 80, progress["total"], 1e-9)
	assert.Equal(t, false, progress["complete"])
	assert.Equal(t, []any{"decisionMaking"}, progress["remaining"])

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/candidates/%d/evaluations", id), map[string]any{
		"prompt_id":     "crisis",
		"response":      "Stabilize first, then communicate.",
		"rubric_scores": scores,
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/candidates/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[map[string]any](t, w)["evaluations"])
}

func TestDuplicateCandidateEmail(t *testing.T) {
	s := newTestServer(t, nil)
	s.createCandidate(t, 1)

	w := s.do(t, http.MethodPost, "/api/candidates", map[string]any{
		"first_name":    "Other",
		"last_name":     "Person",
		"email":         "ADA1@example.com",
		"primary_skill": "Frontend",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestShareFlow(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createCandidate(t, 1)
	require.Equal(t, http.StatusCreated, s.evaluate(t, id, fullCrisis(16)).Code)

	w := s.do(t, http.MethodPost, fmt.Sprintf("/api/candidates/%d/share", id), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[sharing.Share](t, w)
	assert.Equal(t, "http://localhost:3000/share/"+first.Token, first.ShareURL)

	w = s.do(t, http.MethodGet, "/api/share/"+first.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	detail := decode[map[string]any](t, w)
	assert.EqualValues(t, id, detail["id"])
	assert.Equal(t, true, detail["ranking"].(map[string]any)["is_shared"])

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/candidates/%d/share", id), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[sharing.Share](t, w)
	assert.NotEqual(t, first.Token, second.Token)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/share/"+first.Token, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/share/"+second.Token, nil).Code)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/candidates/%d/share", id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/share/"+second.Token, nil).Code)
}

func TestShareUnknownToken(t *testing.T) {
	s := newTestServer(t, nil)

	for _, token := range []string{"nope", strings.Repeat("A", 43)} {
		w := s.do(t, http.MethodGet, "/api/share/"+token, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		body := decode[errorBody](t, w)
		assert.Equal(t, "not_found", body.Error.Kind)
		assert.NotContains(t, w.Body.String(), token)
	}
}

func TestShareUnrankedCandidate(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createCandidate(t, 1)

	w := s.do(t, http.MethodPost, fmt.Sprintf("/api/candidates/%d/share", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShareRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.ShareRateLimitPerMinute = 2
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = s.do(t, http.MethodGet, "/api/share/nope", nil)
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decode[errorBody](t, last).Error.Kind)
}

func TestReviewerRoutesRequireToken(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	s := newTestServer(t, func(c *config.Config) {
		c.JWTSecret = "test-secret-test-secret-test-secret"
		c.AdminPasswordHash = hash
	})

	w := s.do(t, http.MethodPost, "/api/candidates", map[string]any{"first_name": "x"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", decode[errorBody](t, w).Error.Kind)

	w = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)
	s.token = decode[map[string]any](t, w)["token"].(string)
	require.NotEmpty(t, s.token)

	s.createCandidate(t, 1)

	// reads stay public
	s.token = ""
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/leaderboard", nil).Code)
}

func TestSearchAndSkills(t *testing.T) {
	s := newTestServer(t, nil)
	s.createCandidate(t, 1)
	s.createCandidate(t, 2)

	w := s.do(t, http.MethodGet, "/api/search?q=ada1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]database.CandidateSummary](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/search?q=%20%20", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Error.Details, "q")

	w = s.do(t, http.MethodGet, "/api/candidates/skill/Backend", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]database.CandidateSummary](t, w), 2)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/analytics/skills", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/analytics/evaluations", nil).Code)
}

func TestDeleteCandidate(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createCandidate(t, 1)
	require.Equal(t, http.StatusCreated, s.evaluate(t, id, fullCrisis(10)).Code)

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, fmt.Sprintf("/api/candidates/%d", id), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, fmt.Sprintf("/api/candidates/%d", id), nil).Code)

	w := s.do(t, http.MethodGet, "/api/leaderboard/top10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]database.RankedCandidate](t, w))
}

func TestBadCandidateID(t *testing.T) {
	s := newTestServer(t, nil)

	for _, id := range []string{"abc", "0", "-4"} {
		w := s.do(t, http.MethodGet, "/api/candidates/"+id, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
}

func TestErrorCarriesRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/candidates/12345", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "req-abc", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-abc", decode[errorBody](t, w).Error.RequestID)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/api/prompts", nil)

	w := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `candidate_eval_http_requests_total{method="GET",route="/api/prompts",status="200"} 1`)
}
