// Command dhvani is the main entry point for the Dhvani voice banking server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhvanibank/dhvani/internal/assistant"
	"github.com/dhvanibank/dhvani/internal/bank"
	"github.com/dhvanibank/dhvani/internal/bank/postgres"
	"github.com/dhvanibank/dhvani/internal/config"
	"github.com/dhvanibank/dhvani/internal/intent"
	"github.com/dhvanibank/dhvani/internal/observe"
	"github.com/dhvanibank/dhvani/internal/server"
	"github.com/dhvanibank/dhvani/pkg/platform/webspeech"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "dhvani: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "dhvani: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// The level lives in a LevelVar so a config reload can change it without
	// rebuilding the handler.
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("dhvani starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "dhvani",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Account store ─────────────────────────────────────────────────────────
	var store bank.Store
	if dsn := cfg.Bank.PostgresDSN; dsn != "" {
		pgStore, err := postgres.NewStore(ctx, dsn)
		if err != nil {
			slog.Error("failed to connect to postgres", "err", err)
			return 1
		}
		defer pgStore.Close()
		store = pgStore
		slog.Info("account store ready", "backend", "postgres")
	} else {
		store = bank.NewMemoryStore()
		slog.Info("account store ready", "backend", "memory")
	}

	// ── Speech bridge and engine ──────────────────────────────────────────────
	bridge := webspeech.NewBridge(
		webspeech.WithMetrics(metrics),
		webspeech.WithOriginPatterns(cfg.Server.AllowedOrigins...),
	)

	engine := assistant.New(
		assistant.Config{
			Locale:         intent.Locale(cfg.Speech.Locale),
			Routes:         cfg.IntentRoutes(),
			SpeakDelay:     cfg.Speech.SpeakDelay(),
			VoiceWait:      cfg.Speech.VoiceWait(),
			PhoneticAssist: cfg.Speech.PhoneticAssist,
		},
		assistant.Deps{
			Platform:  bridge,
			Navigator: bridge,
			Prefill:   bridge.PrefillTransfer,
			Notices:   bridge,
			Metrics:   metrics,
		},
	)

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		diff := config.Diff(old, new)
		if diff.LogLevelChanged {
			logLevel.Set(slogLevel(diff.NewLogLevel))
			slog.Info("log level changed", "level", diff.NewLogLevel)
		}
		if diff.LocaleChanged {
			engine.SetLocale(intent.Locale(diff.NewLocale))
		}
		if diff.RoutesChanged {
			slog.Warn("route table changed — restart required to apply")
		}
	})
	if err != nil {
		slog.Error("failed to start config watcher", "err", err)
		return 1
	}
	defer watcher.Stop()

	// ── HTTP server ───────────────────────────────────────────────────────────
	srvCfg := server.Config{ListenAddr: cfg.Server.ListenAddr}
	if cfg.Server.TLS != nil {
		srvCfg.TLSCertFile = cfg.Server.TLS.CertFile
		srvCfg.TLSKeyFile = cfg.Server.TLS.KeyFile
	}
	srv := server.New(srvCfg, server.Deps{
		Engine:  engine,
		Bridge:  bridge,
		Store:   store,
		Metrics: metrics,
	})

	printStartupSummary(cfg)
	slog.Info("server ready — press Ctrl+C to shut down")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	backend := "memory (demo data)"
	if cfg.Bank.PostgresDSN != "" {
		backend = "postgres"
	}
	locale := cfg.Speech.Locale
	if locale == "" {
		locale = string(intent.LocaleEnglish)
	}
	routes := "built-in"
	if n := len(cfg.Routes); n > 0 {
		routes = fmt.Sprintf("%d configured", n)
	}

	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         Dhvani — startup summary      ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printRow("Listen addr", cfg.Server.ListenAddr)
	printRow("TLS", boolLabel(cfg.Server.TLS != nil))
	printRow("Locale", locale)
	printRow("Routes", routes)
	printRow("Phonetic assist", boolLabel(cfg.Speech.PhoneticAssist))
	printRow("Account store", backend)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printRow(label, value string) {
	if value == "" {
		value = "(not configured)"
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-15s : %-19s ║\n", label, value)
}

func boolLabel(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
