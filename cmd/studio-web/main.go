package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/fpang/backdrop-studio/internal/auth"
	"github.com/fpang/backdrop-studio/internal/config"
	"github.com/fpang/backdrop-studio/internal/gemini"
	"github.com/fpang/backdrop-studio/internal/logging"
	"github.com/fpang/backdrop-studio/internal/server"
)

//go:embed all:frontend_dist
var frontendFS embed.FS

// CLI flags
var (
	portFlag    int
	modelFlag   string
	presetsFlag string
)

var rootCmd = &cobra.Command{
	Use:   "studio-web",
	Short: "Web UI for AI background removal and replacement",
	Long: `Backdrop Studio starts a local web server where you can upload a photo,
remove its background, or replace it with a generated scene. Results are kept
in an in-session history so you can compare and download earlier versions.

Examples:
  studio-web
  studio-web --port 9090
  studio-web --model gemini-3-pro-image-preview
  studio-web --presets ./my-presets.toml`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", gemini.DefaultImageModel, "Gemini image model to use")
	rootCmd.Flags().StringVar(&presetsFlag, "presets", "", "Path to a TOML preset catalog (default: built-in presets)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()
	logging.Init()

	// Validate API key at startup
	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get API key")
	}

	ctx := context.Background()
	validationClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client for validation")
	}
	if err := auth.ValidateAPIKey(ctx, validationClient); err != nil {
		log.Fatal().Err(err).Msg("Invalid API key")
	}

	presets, err := config.LoadPresets(presetsFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load presets")
	}

	svc := gemini.NewClient(apiKey, gemini.WithModel(modelFlag))
	api := server.New(svc, presets)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.Handler())

	// Frontend static files
	frontendSub, err := fs.Sub(frontendFS, "frontend_dist")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to access embedded frontend")
	}
	fileServer := http.FileServer(http.FS(frontendSub))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Security headers
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' blob: data:; style-src 'self' 'unsafe-inline'; connect-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		fileServer.ServeHTTP(w, r)
	})

	addr := fmt.Sprintf(":%d", portFlag)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Info().Int("port", portFlag).Str("model", modelFlag).Msg("Starting web server")
	fmt.Printf("\n  Backdrop Studio: http://localhost:%d\n\n", portFlag)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
