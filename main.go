package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskdeck/taskdeck-be/internal/api"
	"github.com/taskdeck/taskdeck-be/internal/auth"
	"github.com/taskdeck/taskdeck-be/internal/config"
	"github.com/taskdeck/taskdeck-be/internal/database"
	"github.com/taskdeck/taskdeck-be/internal/logger"
	"github.com/taskdeck/taskdeck-be/internal/services"
	"github.com/taskdeck/taskdeck-be/internal/store"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up stores and services
	userStore := store.NewSQLUserStore(db)
	taskStore := store.NewSQLTaskStore(db)
	userService := services.NewUserService(userStore)
	taskService := services.NewTaskService(taskStore)

	// Set up sessions and run the background expiry sweep
	sessions := auth.NewSessionStore(cfg.SessionTTL)
	go sessions.Run()

	// Set up router
	router := api.NewRouter(sessions, userService, taskService, cfg.AllowedOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sessions.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
