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

	"github.com/joho/godotenv"

	"github.com/taskflow/taskflow/internal/api"
	"github.com/taskflow/taskflow/internal/config"
	"github.com/taskflow/taskflow/internal/database"
	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/notify"
	"github.com/taskflow/taskflow/internal/repository"
	"github.com/taskflow/taskflow/internal/service"
	"github.com/taskflow/taskflow/pkg/auth"
	"github.com/taskflow/taskflow/pkg/email"
	"github.com/taskflow/taskflow/pkg/media"
	"gorm.io/gorm"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Connecting to PostgreSQL...")
	db, err := database.NewGormDB(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		Debug:    cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("Failed to close database connection: %v", err)
			}
		}
	}()

	if cfg.Server.AutoMigrate {
		if err := runAutoMigration(db); err != nil {
			log.Fatalf("Failed to run auto migration: %v", err)
		}
	}

	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenDuration)

	// Email service: mock in development/testing, SMTP otherwise
	var emailService email.Service
	if cfg.Email.TestingMode || cfg.IsDevelopment() {
		log.Println("Using mock email service for development/testing")
		emailService = email.NewMockService()
	} else {
		log.Println("Using SMTP email service")
		emailService = email.NewSMTPService(cfg.ToEmailConfig())
	}

	dispatcher := notify.NewDispatcher(emailService, 64)
	defer dispatcher.Close()

	mediaStore := media.NewDiskStore(cfg.Storage.MediaDir, cfg.Storage.MediaBaseURL)

	taskRepo := repository.NewTransactionalRepository(db)
	taskService := service.NewTaskService(taskRepo, mediaStore, dispatcher)
	authService := service.NewAuthService(db, tokenManager, auth.NewPasswordManager())

	lookup := api.NewLookup(db)
	router := api.NewRouter(cfg,
		authService,
		api.NewAuthHandlers(authService),
		api.NewTaskHandlers(taskService, lookup),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("TaskFlow HTTP server listening on port %s", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server shutdown complete")
}

// runAutoMigration keeps the schema in sync with the model structs.
func runAutoMigration(db *gorm.DB) error {
	log.Println("Running auto migration...")
	err := db.AutoMigrate(
		&models.User{},
		&models.UserToken{},
		&models.Project{},
		&models.Task{},
	)
	if err != nil {
		return fmt.Errorf("run auto migration: %w", err)
	}
	log.Println("Auto migration completed")
	return nil
}
