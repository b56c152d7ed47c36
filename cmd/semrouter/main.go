// Semrouter is the PerceptEye semantic routing service. It interprets
// captured image and audio frames with a multimodal model and dispatches each
// frame to the appropriate capability backend.
//
// Usage:
//
//	semrouter [flags]
//	semrouter --config /path/to/semrouter.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/percepteye/semrouter/docs"
	"github.com/percepteye/semrouter/internal/capability"
	"github.com/percepteye/semrouter/internal/config"
	"github.com/percepteye/semrouter/internal/interpreter/gemini"
	"github.com/percepteye/semrouter/internal/router"
	"github.com/percepteye/semrouter/internal/server"
)

// version is set at build time via ldflags.
var version = "dev"

// @title       PerceptEye Semantic Router API
// @version     1.0
// @description Multimodal semantic routing middleware: interprets a captured frame and dispatches it to the appropriate capability backend.
// @BasePath    /
func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/semrouter.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("semrouter %s\n", version)
		os.Exit(0)
	}

	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	config.SetupLogging(cfg.Logging)
	slog.Info("semrouter starting", "version", version)

	// Root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	interp, err := gemini.New(ctx, cfg.Interpreter.Gemini)
	if err != nil {
		slog.Error("failed to initialize interpreter", "error", err)
		os.Exit(1)
	}
	defer interp.Close()
	slog.Info("using gemini interpreter", "model", cfg.Interpreter.Gemini.Model)

	face := capability.NewFaceRecognitionTTS(
		cfg.Backends.FaceRecognitionTTS.Endpoint, cfg.Backends.FaceRecognitionTTS.Timeout())
	sign := capability.NewSignLanguage(
		cfg.Backends.SignLanguage.Endpoint, cfg.Backends.SignLanguage.Timeout())
	scene := capability.NewSceneDescription(
		cfg.Backends.SceneDescription.Endpoint, cfg.Backends.SceneDescription.Timeout())

	r := router.New(interp, face, sign, scene,
		cfg.Routing.ConfidenceThreshold, cfg.Interpreter.Gemini.Timeout())

	srv := server.New(cfg.Server.Port, r, cfg.Routing.FetchTimeout())
	srv.SetReady(true)
	slog.Info("semrouter ready",
		"port", cfg.Server.Port,
		"confidence_threshold", cfg.Routing.ConfidenceThreshold)

	if err := srv.ListenAndServe(ctx); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("semrouter stopped")
}
