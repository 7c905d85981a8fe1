package app

import (
	"github.com/yungbote/coursekit/internal/platform/logger"
	"github.com/yungbote/coursekit/internal/services"
)

type Services struct {
	Reconciler services.Reconciler
	Exporter   services.Exporter
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, store services.SnapshotStore) Services {
	log.Debug("Wiring services...")
	opts := cfg.ReconcileOptions()
	return Services{
		Reconciler: services.NewReconciler(log, store, reposet.ReconcileRuns, opts),
		Exporter:   services.NewExporter(log, store, opts),
	}
}
