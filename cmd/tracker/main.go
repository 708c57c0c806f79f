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

	"github.com/olekukonko/tablewriter"
	"github.com/redis/go-redis/v9"

	"github.com/adelgado/vsetrack/config"
	"github.com/adelgado/vsetrack/internal/adapters/notify"
	"github.com/adelgado/vsetrack/internal/adapters/publish"
	"github.com/adelgado/vsetrack/internal/adapters/storage"
	"github.com/adelgado/vsetrack/internal/adapters/vse"
	"github.com/adelgado/vsetrack/internal/domain"
	"github.com/adelgado/vsetrack/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one cycle and exit")
	force := flag.Bool("force", false, "run even if the market is closed")
	discover := flag.Bool("discover", false, "scrape the leaderboard to list participants and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	client := vse.NewClient(vse.Config{
		APIBase:      cfg.Source.APIBase,
		SiteBase:     cfg.Source.SiteBase,
		GameURI:      cfg.Competition.GameURI,
		AuthCookie:   cfg.Source.AuthCookie,
		RequestDelay: cfg.RequestDelay(),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *discover {
		runDiscover(ctx, client)
		return
	}

	slog.Info("vsetrack starting",
		"config", *configPath,
		"competition", cfg.Competition.GameURI,
		"interval", cfg.ScanInterval(),
		"once", *once,
	)

	log, err := storage.NewSQLiteLog(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open transaction log", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer log.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Publish.RedisAddr})
	defer rdb.Close()

	publisher := publish.NewRedisPublisher(rdb, cfg.Publish.Key, cfg.Publish.Channel)
	backup := publish.NewFileBackup(cfg.Publish.BackupPath)
	notifier := notify.NewConsole(10)

	loc, err := time.LoadLocation(cfg.Scraper.Timezone)
	if err != nil {
		slog.Error("invalid timezone", "tz", cfg.Scraper.Timezone, "err", err)
		os.Exit(1)
	}

	p := pipeline.New(
		pipeline.Config{
			Competition:  cfg.Competition.GameURI,
			Interval:     cfg.ScanInterval(),
			RunBudget:    cfg.RunBudget(),
			FetchWorkers: cfg.Scraper.FetchWorkers,
			FeedMax:      cfg.Scraper.FeedMax,
			Location:     loc,
			Force:        *force,
		},
		cfg.Competition.Participants,
		client, client, log, publisher, backup, notifier,
	)

	if *once {
		report, err := p.RunOnce(ctx)
		if err != nil {
			slog.Error("cycle failed", "err", err)
			os.Exit(1)
		}
		slog.Info("cycle complete", "run_id", report.RunID, "status", report.Status)
		if report.Status == pipeline.StatusDegraded {
			os.Exit(2)
		}
		return
	}

	if err := p.Run(ctx); err != nil {
		if !errors.Is(err, domain.ErrConfig) {
			slog.Error("pipeline exited with error", "err", err)
		} else {
			slog.Error("configuration error", "err", err)
		}
		os.Exit(1)
	}

	slog.Info("vsetrack stopped cleanly")
}

// runDiscover imprime los participantes del leaderboard en formato listo
// para pegar en el YAML de configuración.
func runDiscover(ctx context.Context, client *vse.Client) {
	participants, err := client.FetchLeaderboard(ctx)
	if err != nil {
		slog.Error("leaderboard scrape failed", "err", err)
		os.Exit(1)
	}
	if len(participants) == 0 {
		slog.Warn("no participants found — check the session cookie")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Public ID", "Name")
	for _, p := range participants {
		table.Append(p.PublicID, p.DisplayName)
	}
	table.Render()

	fmt.Println("\n# YAML para competition.participants:")
	for _, p := range participants {
		fmt.Printf("    - public_id: %q\n      display_name: %q\n", p.PublicID, p.DisplayName)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
