package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"airwavego/internal/api"
	"airwavego/pkg/config"
	"airwavego/pkg/content"
	"airwavego/pkg/continuity"
	"airwavego/pkg/db"
	"airwavego/pkg/jobs"
	"airwavego/pkg/llm"
	"airwavego/pkg/logging"
	"airwavego/pkg/prompt"
	"airwavego/pkg/request"
	"airwavego/pkg/scheduler"
	"airwavego/pkg/station"
	"airwavego/pkg/store"
	"airwavego/pkg/tracker"
	"airwavego/pkg/tts"
	"airwavego/pkg/version"
)

const defaultConfigPath = "configs/airwave.yaml"

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", defaultConfigPath, "Path to the config file")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// .env is optional; config env fallbacks pick up whatever it sets.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(
		logging.Settings{Path: cfg.Log.Server.Path, Level: cfg.Log.Server.Level},
		logging.Settings{Path: cfg.Log.Requests.Path, Level: cfg.Log.Requests.Level},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	tts.SetLogPath(cfg.Log.TTS.Path)

	slog.Info("Airwave started", "version", version.Version, "station", cfg.Station.Name)

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()

	if ttl := time.Duration(cfg.Request.CacheTTL); ttl > 0 {
		if err := dbConn.PruneCache(ttl); err != nil {
			slog.Error("Cache prune failed", "error", err)
		}
	}

	st := store.NewSQLiteStore(dbConn)
	tr := tracker.New()
	reqClient := request.New(cfg.Request, st, tr)

	// Generation and synthesis providers
	llmProv, err := llm.New(cfg.LLM, cfg.Log.LLM.Path, tr)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	if err := llmProv.HealthCheck(ctx); err != nil {
		return fmt.Errorf("llm provider not usable: %w", err)
	}
	if tc, ok := llmProv.(interface{ SetTemperature(base, jitter float32) }); ok {
		tc.SetTemperature(cfg.LLM.TemperatureBase, cfg.LLM.TemperatureJitter)
	}

	ttsProv, err := station.NewTTSProvider(cfg.TTS, cfg.Station.Language, reqClient, tr)
	if err != nil {
		return fmt.Errorf("failed to initialize TTS provider: %w", err)
	}

	// Production pipeline
	prompts, err := prompt.NewBuilder(cfg.Station)
	if err != nil {
		return fmt.Errorf("failed to initialize prompt builder: %w", err)
	}
	cont := continuity.NewManager(cfg.Continuity)
	fetchers := content.NewRegistry(cfg, reqClient)
	producer := station.NewProducer(cfg, fetchers, prompts, llmProv, ttsProv, cont, st)

	// Shutdown plumbing: signals, the API endpoint and demo-once all
	// funnel into the same channel.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	// Scheduler
	items, err := config.LoadSchedule(cfg.Scheduler.SchedulePath)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}
	sched := scheduler.New(items, producer, cfg.Scheduler.DemoOnce, shutdownFunc)
	sched.Start(ctx)
	defer sched.Stop()

	// Job queue and HTTP API
	queue := jobs.NewQueue(ctx, producer)
	srv := api.NewServer(cfg.Server.Address,
		api.NewJobsHandler(queue),
		api.NewStatsHandler(tr),
		api.NewHistoryHandler(st),
		shutdownFunc,
	)

	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
