package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/SamShahinDev/dirtfree-crm-sub004/api/rest/routes"
	"github.com/SamShahinDev/dirtfree-crm-sub004/config"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/board"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/repository"
)

func main() {
	cfg := config.Load()

	log := newLogger(cfg.LogLevel)
	defer log.Sync()
	sugar := log.Sugar()

	policy, err := cfg.LoadPolicy()
	if err != nil {
		sugar.Fatalw("failed to load schedule policy", "error", err)
	}

	// Initialize database
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		sugar.Fatalw("failed to run migrations", "error", err)
	}
	sugar.Info("database connected")

	// Initialize repositories and the board service
	jobRepo := repository.NewJobRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	boardSvc := board.NewService(jobRepo, auditRepo, policy, sugar)

	// Setup routes
	r := mux.NewRouter()
	routes.SetupRoutes(r, db, boardSvc, sugar)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sugar.Infow("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		sugar.Fatalw("server forced to shutdown", "error", err)
	}
	sugar.Info("server exited")
}

func newLogger(level string) *zap.Logger {
	if level == "debug" {
		log, _ := zap.NewDevelopment()
		return log
	}
	log, _ := zap.NewProduction()
	return log
}
