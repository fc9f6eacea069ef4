package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"beproductive/backend/internal/handler"
	"beproductive/backend/internal/middleware"
	"beproductive/backend/internal/service"
)

const sessionCookieName = "beproductive_session"

type Handlers struct {
	Auth           *handler.AuthHandler
	Tasks          *handler.TaskHandler
	RecurringTasks *handler.RecurringTaskHandler
	Goals          *handler.GoalHandler
	Reflections    *handler.ReflectionHandler
}

type Options struct {
	CORSOrigins   []string
	SessionSecret string
	CookieSecure  bool
	SessionTTL    time.Duration
}

func New(authService *service.AuthService, h Handlers, opts Options) *gin.Engine {
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	engine := gin.New()
	engine.Use(
		gin.Logger(),
		gin.Recovery(),
		middleware.CORS(opts.CORSOrigins),
		sessions.Sessions(sessionCookieName, store),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", middleware.Auth(authService), h.Auth.Me)

	protected := api.Group("")
	protected.Use(middleware.Auth(authService))

	tasks := protected.Group("/tasks")
	tasks.GET("", h.Tasks.List)
	tasks.POST("", h.Tasks.Create)
	tasks.PATCH("/reorder", h.Tasks.Reorder)
	tasks.PATCH("/:id", h.Tasks.Update)
	tasks.PATCH("/:id/status", h.Tasks.UpdateStatus)
	tasks.PATCH("/:id/progress", h.Tasks.UpdateProgress)
	tasks.POST("/:id/sessions", h.Tasks.LogSession)
	tasks.GET("/:id/sessions", h.Tasks.ListSessions)
	tasks.DELETE("/:id", h.Tasks.Delete)

	rules := protected.Group("/recurring-tasks")
	rules.GET("", h.RecurringTasks.List)
	rules.GET("/:id", h.RecurringTasks.Get)
	rules.POST("", h.RecurringTasks.Create)
	rules.PATCH("/:id", h.RecurringTasks.Update)
	rules.DELETE("/:id", h.RecurringTasks.Delete)

	goals := protected.Group("/goals")
	goals.GET("", h.Goals.List)
	goals.GET("/:id", h.Goals.Get)
	goals.POST("", h.Goals.Create)
	goals.PUT("/:id", h.Goals.Update)
	goals.DELETE("/:id", h.Goals.Delete)

	reflections := protected.Group("/reflections")
	reflections.GET("", h.Reflections.Get)
	reflections.GET("/history", h.Reflections.History)
	reflections.GET("/stats", h.Reflections.Stats)
	reflections.POST("", h.Reflections.Save)

	return engine
}
