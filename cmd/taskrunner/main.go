package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/config"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/forge"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/llm"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/metrics"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/pipeline"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/server/httpserver"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct {
		Port int `short:"p" help:"Override the listen port"`
	} `cmd:"" default:"withargs" help:"Start the task runner HTTP server"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	switch ctx.Command() {
	case "version":
		fmt.Printf("taskrunner %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	default:
		if err := runServe(); err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}
}

func runServe() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if CLI.Serve.Port > 0 {
		cfg.Server.Port = CLI.Serve.Port
	}

	setupLogging(cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gemini, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
		APIKey:          cfg.Gemini.APIKey,
		Model:           cfg.Gemini.Model,
		BaseURL:         cfg.Gemini.APIBase,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	github, err := forge.NewGitHubClient(cfg.GitHub)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	p := pipeline.New(github, llm.NewGenerator(gemini), pipeline.Options{
		Secret:   cfg.Submission.Secret,
		Recorder: recorder,
	})

	srv := httpserver.New(cfg, p, gemini, registry)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	slog.Info("Task runner started",
		slog.Int("port", cfg.Server.Port),
		slog.String("model", cfg.Gemini.Model),
		slog.String("version", version.Version))

	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping server...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		return err
	}

	slog.Info("Server stopped successfully")
	return nil
}

// setupLogging configures the default slog logger from config, with --verbose
// forcing debug level. Text format uses tint for readable console output.
func setupLogging(cfg *config.Config) {
	level := slogLevel(cfg.Logging.Level)
	if CLI.Verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:   level,
			NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
		})
	}
	slog.SetDefault(slog.New(handler))
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
