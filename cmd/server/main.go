package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-slide-synth/internal/config"
	"pdf-slide-synth/internal/handler"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	ctx := context.Background()

	// Wiring
	container, err := config.NewContainer(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer container.Close()

	// Handlers
	conversionHandler := handler.NewConversionHandler(
		container.ConversionService,
		container.Config.GetMaxFileSize(),
		container.Logger,
	)
	jobHandler := handler.NewJobHandler(
		container.ConversionService,
		container.Logger,
	)

	// Router
	router := handler.NewRouter(
		conversionHandler,
		jobHandler,
		handler.UserScope(container.Logger),
		container.Config.GetCORSAllowedOrigins(),
	)

	// Synthesis can take minutes, so there is no write timeout.
	server := &http.Server{
		Addr:              ":" + container.Config.GetServerPort(),
		Handler:           handler.RequestLogger(container.Logger)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	container.Logger.Info("Server exited")
}
