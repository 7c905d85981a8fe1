package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit/internal/data/db"
	"github.com/yungbote/coursekit/internal/domain/runs"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a private in-memory SQLite ledger that is closed with the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	ledger, err := db.Open(Logger(tb), ":memory:")
	if err != nil {
		tb.Fatalf("failed to init test db: %v", err)
	}
	tb.Cleanup(func() { _ = ledger.Close() })
	return ledger.DB()
}

func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func SeedRun(tb testing.TB, ctx context.Context, tx *gorm.DB, status string, startedAt time.Time) *runs.ReconcileRun {
	tb.Helper()
	run := &runs.ReconcileRun{
		ID:        uuid.New(),
		Command:   "reconcile",
		InputJSON: "course.json",
		InputCSV:  "lessons.csv",
		Output:    "out.json",
		Status:    status,
		StartedAt: startedAt,
	}
	if status != runs.StatusRunning {
		finished := startedAt.Add(time.Second)
		run.FinishedAt = &finished
	}
	if err := tx.WithContext(ctx).Create(run).Error; err != nil {
		tb.Fatalf("seed run: %v", err)
	}
	return run
}
