// Package api exposes the evaluation dashboard over HTTP.
package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/auth"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/config"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/evaluation"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/leaderboard"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/monitoring"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/profile"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/ratelimit"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/security"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/sharing"
)

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	Config      *config.Config
	Repo        *database.Repository
	Leaderboard *leaderboard.Service
	Profiles    *profile.Service
	Sharing     *sharing.Service
	Evaluations *evaluation.Writer
	Auth        *auth.Service
	Limiter     *ratelimit.RateLimiter
	Metrics     *monitoring.Metrics
	Logger      *monitoring.Logger
}

// Handler holds the gin handlers.
type Handler struct {
	Deps
	security security.SecurityConfig
}

// NewHandler creates a handler over deps.
func NewHandler(deps Deps) *Handler {
	return &Handler{Deps: deps, security: security.DefaultSecurityConfig()}
}

// fail records err for the error middleware.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func bindFailure(err error) error {
	return apperrors.NewValidationErrorWithMap(map[string]string{"body": err.Error()})
}

// candidateID parses the :id path parameter.
func candidateID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.NewValidationErrorWithMap(map[string]string{"id": "candidate id must be a positive integer"})
	}
	return id, nil
}

// queryInt reads an integer query parameter; a missing or malformed
// value yields 0 so callers apply their defaults.
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return v
}
