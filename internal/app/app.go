package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/coursekit/internal/data/db"
	"github.com/yungbote/coursekit/internal/data/snapshot"
	"github.com/yungbote/coursekit/internal/observability"
	"github.com/yungbote/coursekit/internal/platform/envutil"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

type Options struct {
	ConfigPath string
	// LogMode overrides $LOG_MODE; the default is development.
	LogMode string
	// Configure applies command-line overrides after the file and env layers.
	Configure func(*Config)
}

type App struct {
	Log       *logger.Logger
	Cfg       Config
	Ledger    *db.LedgerDB
	Snapshots *snapshot.Store
	Repos     Repos
	Services  Services

	shutdownTracing func(context.Context) error
}

func New(ctx context.Context, opts Options) (*App, error) {
	logMode := opts.LogMode
	if logMode == "" {
		logMode = envutil.String("LOG_MODE", "development")
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if opts.Configure != nil {
		opts.Configure(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		log.Sync()
		return nil, err
	}
	log.Debug("Configuration loaded",
		"bootstrap_lesson_id", cfg.BootstrapLessonID,
		"fallback_unit_id", cfg.FallbackUnitID,
		"daily_pattern", cfg.DailyPattern,
		"ledger_dsn", cfg.LedgerDSN,
	)

	shutdown := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(cfg.Otel.ServiceName))
	fail := func(err error) (*App, error) {
		_ = shutdown(context.WithoutCancel(ctx))
		log.Sync()
		return nil, err
	}

	opener, err := resolveObjectOpener(log, cfg)
	if err != nil {
		return fail(err)
	}
	snapshots := snapshot.New(log, opener)

	var (
		ledger *db.LedgerDB
		theDB  *gorm.DB
	)
	if cfg.LedgerEnabled() {
		ledger, err = db.Open(log, cfg.LedgerDSN)
		if err != nil {
			return fail(fmt.Errorf("init ledger: %w", err))
		}
		theDB = ledger.DB()
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(log, cfg, reposet, snapshots)

	return &App{
		Log:             log,
		Cfg:             cfg,
		Ledger:          ledger,
		Snapshots:       snapshots,
		Repos:           reposet,
		Services:        serviceset,
		shutdownTracing: shutdown,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownTracing(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Snapshots != nil {
		if err := a.Snapshots.Close(); err != nil && a.Log != nil {
			a.Log.Warn("object storage close failed", "error", err)
		}
	}
	if a.Ledger != nil {
		if err := a.Ledger.Close(); err != nil && a.Log != nil {
			a.Log.Warn("ledger close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
