package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursekit/internal/data/runlog"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

type Repos struct {
	ReconcileRuns runlog.ReconcileRunRepo
}

// wireRepos leaves every repo nil when the ledger is disabled.
func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	if db == nil {
		return Repos{}
	}
	log.Debug("Wiring repos...")
	return Repos{
		ReconcileRuns: runlog.NewReconcileRunRepo(db, log),
	}
}
