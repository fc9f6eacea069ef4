package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"beproductive/backend/internal/config"
	"beproductive/backend/internal/db"
	"beproductive/backend/internal/handler"
	"beproductive/backend/internal/repository"
	"beproductive/backend/internal/router"
	"beproductive/backend/internal/service"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	taskRepo := repository.NewTaskRepository(database)
	sessionRepo := repository.NewFocusSessionRepository(database)
	ruleRepo := repository.NewRecurringTaskRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	reflectionRepo := repository.NewReflectionRepository(database)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	taskService := service.NewTaskService(taskRepo, sessionRepo, ruleRepo, goalRepo)
	recurringTaskService := service.NewRecurringTaskService(ruleRepo, goalRepo)
	goalService := service.NewGoalService(goalRepo)
	reflectionService := service.NewReflectionService(reflectionRepo, taskRepo, sessionRepo)

	engine := router.New(authService, router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Tasks:          handler.NewTaskHandler(taskService),
		RecurringTasks: handler.NewRecurringTaskHandler(recurringTaskService),
		Goals:          handler.NewGoalHandler(goalService),
		Reflections:    handler.NewReflectionHandler(reflectionService),
	}, router.Options{
		CORSOrigins:   cfg.CORSOrigins,
		SessionSecret: cfg.SessionSecret,
		CookieSecure:  cfg.CookieSecure,
		SessionTTL:    cfg.TokenTTL,
	})

	log.Printf("backend listening on :%s (db driver %s)", cfg.Port, database.Driver)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
