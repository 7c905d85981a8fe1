package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/coursekit/internal/domain/runs"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// DriverForDSN picks postgres for postgres:// or postgresql:// DSNs and key=value
// libpq strings; everything else is treated as a SQLite path or URI.
func DriverForDSN(dsn string) Driver {
	d := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(d, "postgres://"), strings.HasPrefix(d, "postgresql://"):
		return DriverPostgres
	case strings.Contains(d, "host=") && strings.Contains(d, "dbname="):
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

type LedgerDB struct {
	db     *gorm.DB
	log    *logger.Logger
	driver Driver
}

// Open connects to the run ledger and migrates its schema.
func Open(logg *logger.Logger, dsn string) (*LedgerDB, error) {
	serviceLog := logg.With("service", "LedgerDB")
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("ledger dsn is empty")
	}
	driver := DriverForDSN(dsn)

	gormLog := gormLogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}
	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s ledger: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection also keeps :memory: databases shared.
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := AutoMigrateAll(gdb); err != nil {
		return nil, err
	}
	serviceLog.Debug("Ledger ready", "driver", driver, "ledger_dsn", dsn)
	return &LedgerDB{db: gdb, log: serviceLog, driver: driver}, nil
}

func (s *LedgerDB) DB() *gorm.DB { return s.db }

func (s *LedgerDB) Driver() Driver { return s.driver }

func (s *LedgerDB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&runs.ReconcileRun{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
