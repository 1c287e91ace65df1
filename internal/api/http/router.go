package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/spec-kit/recruitment-crm/internal/api/http/handlers"
	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/observability"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Candidates     *handlers.CandidatesHandler
	Calls          *handlers.CallsHandler
	Analytics      *handlers.AnalyticsHandler
	Export         *handlers.ExportHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	// CORSOrigins is a comma separated allow list.
	CORSOrigins string
	// LoginRateLimit caps login attempts per client IP per minute. Zero disables the limiter.
	LoginRateLimit int
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	if cfg.LoginRateLimit > 0 {
		authGroup.Post("/login", limiter.New(limiter.Config{
			Max:        cfg.LoginRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return apperrors.NewDomainError("RATE_LIMITED", "too many login attempts", fiber.StatusTooManyRequests, nil)
			},
		}), cfg.Auth.Login)
	} else {
		authGroup.Post("/login", cfg.Auth.Login)
	}

	session := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	session.Post("/logout", cfg.Auth.Logout)
	session.Get("/me", cfg.Auth.Me)
	session.Post("/password/change", cfg.Auth.ChangePassword)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	users := protected.Group("/users")
	users.Get("/", cfg.Users.List)
	users.Post("/", auth.RequirePermission(auth.ActionCreate, auth.ResourceUser), cfg.Users.Create)
	users.Get("/recruiters", cfg.Users.Recruiters)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", cfg.Users.Update)
	users.Post("/:id/deactivate", auth.RequirePermission(auth.ActionDelete, auth.ResourceUser), cfg.Users.Deactivate)
	users.Post("/:id/reactivate", auth.RequirePermission(auth.ActionEdit, auth.ResourceUser), cfg.Users.Reactivate)
	users.Post("/:id/password/reset", auth.RequirePermission(auth.ActionEdit, auth.ResourceUser), cfg.Users.ResetPassword)

	candidates := protected.Group("/candidates")
	candidates.Get("/", cfg.Candidates.List)
	candidates.Post("/", auth.RequirePermission(auth.ActionCreate, auth.ResourceCandidate), cfg.Candidates.Create)
	candidates.Get("/:id", cfg.Candidates.Get)
	candidates.Put("/:id", auth.RequirePermission(auth.ActionEdit, auth.ResourceCandidate), cfg.Candidates.Update)
	candidates.Patch("/:id/status", auth.RequirePermission(auth.ActionEdit, auth.ResourceCandidate), cfg.Candidates.ChangeStatus)
	candidates.Patch("/:id/recruiter", auth.RequirePermission(auth.ActionEdit, auth.ResourceCandidate), cfg.Candidates.AssignRecruiter)
	candidates.Post("/:id/recruiter/auto", auth.RequirePermission(auth.ActionEdit, auth.ResourceCandidate), cfg.Candidates.AutoAssign)
	candidates.Delete("/:id", auth.RequirePermission(auth.ActionDelete, auth.ResourceCandidate), cfg.Candidates.Delete)
	candidates.Get("/:id/calls", cfg.Candidates.Calls)

	calls := protected.Group("/calls")
	calls.Get("/", cfg.Calls.List)
	calls.Get("/followups", cfg.Calls.FollowUps)
	calls.Post("/", auth.RequirePermission(auth.ActionCreate, auth.ResourceCall), cfg.Calls.Log)
	calls.Patch("/:id", cfg.Calls.Update)
	calls.Delete("/:id", cfg.Calls.Delete)

	protected.Get("/analytics/summary", cfg.Analytics.Summary)
	protected.Get("/activity", auth.RequirePermission(auth.ActionView, auth.ResourceActivityLog), cfg.Analytics.Activity)

	exports := protected.Group("/export")
	exports.Get("/candidates", auth.RequirePermission(auth.ActionExport, auth.ResourceCandidate), cfg.Export.Candidates)
	exports.Get("/calls", auth.RequirePermission(auth.ActionExport, auth.ResourceCall), cfg.Export.Calls)
}
