// Package main is the entry point for the ATS Resume Expert server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shimizu-Technology/ats-resume-expert/internal/config"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/handlers"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/router"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/analysis"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/dispatch"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/gemini"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/openrouter"
	pdfservice "github.com/Shimizu-Technology/ats-resume-expert/internal/services/pdf"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/report"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// shutdownTimeout bounds how long in-flight analyses get to finish.
const shutdownTimeout = 30 * time.Second

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 ATS Resume Expert %s starting...", Version)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			log.Fatalf("❌ %v (add it to the environment or a .env file)", err)
		}
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, provider=%s, max_upload=%dMB, gin_mode=%s",
		cfg.Port, cfg.Provider, cfg.MaxUploadMB, cfg.GinMode)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Go Pattern: signal.NotifyContext cancels ctx on SIGINT/SIGTERM, so
	// every goroutine below can watch a single Done channel.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Step 2: Create Services
	llm, err := newModelClient(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create %s client: %v", cfg.Provider, err)
	}
	log.Printf("✅ %s client ready (model %s)", cfg.Provider, llm.Model())

	svc := analysis.NewService(pdfservice.Extractor{}, llm, report.NewRenderer())

	// Step 3: Setup HTTP Router
	h := handlers.NewHandler(svc, llm.Model(), Version, cfg.MaxUploadBytes())
	r := router.Setup(h, cfg.AllowedOrigins)

	// Step 4: Start the HTTP Server
	// WriteTimeout covers the model call, which can take well over a minute
	// for long resumes.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// Step 5: Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Println("🛑 Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️  Server forced to shutdown: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	log.Println("👋 Server stopped. Goodbye!")
}

// modelClient is a dispatcher that can name the model it talks to.
type modelClient interface {
	dispatch.Dispatcher
	Model() string
}

// newModelClient builds the dispatcher for the configured provider.
func newModelClient(ctx context.Context, cfg *config.Config) (modelClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		return openrouter.New(openrouter.Options{
			APIKey:  cfg.OpenRouterAPIKey,
			Model:   cfg.OpenRouterModel,
			BaseURL: cfg.OpenRouterBaseURL,
		})
	default:
		if cfg.GeminiBaseURL != "" {
			log.Printf("🔧 Gemini endpoint override: %s", cfg.GeminiBaseURL)
		}
		return gemini.New(ctx, gemini.Options{
			APIKey:  cfg.GoogleAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
	}
}
