package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/api"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/config"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/db"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/export"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/ingestion"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/middleware"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/repository"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Load the production dataset name mapping
	datasetMapping, err := config.LoadDatasetMapping(cfg.DatasetMappingFile)
	if err != nil {
		log.Fatalf("Failed to load dataset mapping: %v", err)
	}

	// Create repositories
	projectRepo := repository.NewMigrationProjectRepository(conn.Pool)
	runRepo := repository.NewMigrationRunRepository(conn.Pool)

	// Create services and handlers
	ingestionHandler := ingestion.NewHandler(ingestion.NewService(runRepo, datasetMapping))
	exportHandler := export.NewHandler(runRepo)
	projectHandler := api.NewProjectHandler(projectRepo, runRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/projects", projectHandler.Create)
	mux.HandleFunc("GET /api/projects", projectHandler.List)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.Get)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.Delete)
	mux.HandleFunc("GET /api/projects/{id}/runs", projectHandler.ListRuns)
	mux.HandleFunc("POST /api/projects/{id}/runs", ingestionHandler.Upload)
	mux.HandleFunc("GET /api/runs/{id}", projectHandler.GetRun)
	mux.HandleFunc("GET /api/runs/{id}/artifacts/{kind}", exportHandler.Artifact)
	mux.HandleFunc("GET /api/runs/{id}/report.xlsx", exportHandler.Excel)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      corsHandler.Handler(middleware.LoggingMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting migration API on %s", cfg.ServerAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
