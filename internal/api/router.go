package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ZanzyTHEbar/candidate-evaluator/internal/docs"
	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/middleware"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/monitoring"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/security"
)

const maxBodyBytes = 1 << 20

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(deps Deps) *gin.Engine {
	h := NewHandler(deps)
	compression := middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig())

	r := gin.New()
	r.Use(
		monitoring.RequestIDMiddleware(),
		apperrors.RecoveryHandler(),
		monitoring.MonitoringMiddleware(deps.Metrics, deps.Logger),
		monitoring.SecurityMonitoringMiddleware(deps.Logger),
		security.SecurityHeadersMiddleware(deps.Config.EnableHSTS),
		security.CORSMiddleware(deps.Config.AllowedOrigins()),
		compression.Handler(),
		apperrors.ErrorHandler(),
	)

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.NoRoute(func(c *gin.Context) {
		apperrors.Abort(c, apperrors.NotFound("route", nil))
	})

	api := r.Group("/api",
		security.RequestTimeout(h.security.RequestTimeout),
		security.MaxBodySize(maxBodyBytes),
		security.ValidateContentType(),
		deps.Limiter.IPRateLimitMiddleware(),
	)

	api.GET("/health", h.Health)

	api.GET("/prompts", h.ListPrompts)
	api.GET("/prompts/:id", h.GetPrompt)
	api.POST("/prompts/:id/validate", h.ValidateScores)
	api.POST("/prompts/:id/total", h.TotalScores)

	api.GET("/leaderboard/top10", h.TopCandidates)
	api.GET("/leaderboard", h.LeaderboardPage)

	api.GET("/candidates/skill/:skill", h.CandidatesBySkill)
	api.GET("/candidates/:id", h.GetCandidate)
	api.GET("/candidates/:id/rank", h.CandidateRank)
	api.GET("/search", h.Search)

	api.GET("/analytics/skills", h.SkillAnalytics)
	api.GET("/analytics/evaluations", h.EvaluationAnalytics)

	api.GET("/share/:token",
		deps.Limiter.Middleware("share", deps.Limiter.ShareRate()),
		security.NoStore(),
		h.SharedProfile,
	)

	api.POST("/auth/login", deps.Limiter.Middleware("login", deps.Limiter.LoginRate()), h.Login)

	reviewer := api.Group("", deps.Auth.Middleware())
	reviewer.GET("/health/details", h.HealthDetails)
	reviewer.POST("/candidates", h.CreateCandidate)
	reviewer.DELETE("/candidates/:id", h.DeleteCandidate)
	reviewer.POST("/candidates/:id/evaluations", h.RecordEvaluation)
	reviewer.DELETE("/candidates/:id/evaluations/:promptId", h.DeleteEvaluation)
	reviewer.POST("/candidates/:id/share", h.ShareCandidate)
	reviewer.DELETE("/candidates/:id/share", h.RevokeShare)

	return r
}
