package handlers

import (
	"net/http"
	"time"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/services"
	"task-tracker/backend/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter wires middleware, templates, and every route group onto a gin
// engine.
func NewRouter(cfg *config.Config, db *gorm.DB, sessions *session.Store, authService services.AuthService, todoService services.TodoService) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.LoadHTMLGlob(cfg.Server.TemplatesGlob)
	r.Use(middleware.LoadSession(sessions, cfg.Session.CookieName))

	cookie := CookieSettings{
		Name:   cfg.Session.CookieName,
		MaxAge: int(cfg.Session.TTL.Seconds()),
		Secure: cfg.Session.SecureCookie,
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimit).Middleware()

	NewAuthHandler(db, authService, sessions, cookie).RegisterRoutes(r, limiter)
	NewTodoHandler(db, todoService).RegisterRoutes(r)
	NewOAuthHandler(db, authService, sessions, cookie, cfg.OAuth).RegisterRoutes(r)

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))
	NewAPIHandler(db, todoService).RegisterRoutes(api)

	r.GET("/health", healthHandler(db, sessions))

	return r
}

func healthHandler(db *gorm.DB, sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		report := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "up",
			"sessions": "up",
		}

		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			report["database"] = "down"
			report["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
		if err := sessions.Health(); err != nil {
			report["sessions"] = "down"
			report["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, report)
	}
}
