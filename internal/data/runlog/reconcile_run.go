package runlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit/internal/domain/runs"
	"github.com/yungbote/coursekit/internal/pkg/dbctx"
	apperrors "github.com/yungbote/coursekit/internal/pkg/errors"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

const DefaultListLimit = 20

type ReconcileRunRepo interface {
	Start(dbc dbctx.Context, run *runs.ReconcileRun) (*runs.ReconcileRun, error)
	Finish(dbc dbctx.Context, id uuid.UUID, runErr error, report datatypes.JSON) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*runs.ReconcileRun, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*runs.ReconcileRun, error)
}

type reconcileRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewReconcileRunRepo(db *gorm.DB, baseLog *logger.Logger) ReconcileRunRepo {
	return &reconcileRunRepo{
		db:  db,
		log: baseLog.With("repo", "ReconcileRunRepo"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Start inserts run as running. ID and StartedAt are filled when zero.
func (r *reconcileRunRepo) Start(dbc dbctx.Context, run *runs.ReconcileRun) (*runs.ReconcileRun, error) {
	if run == nil {
		return nil, fmt.Errorf("start run: %w", apperrors.ErrInvalidArgument)
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = r.now()
	}
	run.Status = runs.StatusRunning
	run.FinishedAt = nil
	if err := dbc.DB(r.db).Create(run).Error; err != nil {
		return nil, fmt.Errorf("create reconcile run: %w", err)
	}
	r.log.Debug("Run started", "run_id", run.ID, "command", run.Command)
	return run, nil
}

// Finish marks the run succeeded when runErr is nil, failed otherwise.
func (r *reconcileRunRepo) Finish(dbc dbctx.Context, id uuid.UUID, runErr error, report datatypes.JSON) error {
	if id == uuid.Nil {
		return fmt.Errorf("finish run: %w", apperrors.ErrInvalidArgument)
	}
	status, errText := runs.StatusSucceeded, ""
	if runErr != nil {
		status, errText = runs.StatusFailed, strings.TrimSpace(runErr.Error())
	}
	updates := map[string]interface{}{
		"status":      status,
		"error":       errText,
		"finished_at": r.now(),
	}
	if len(report) > 0 {
		updates["report"] = report
	}
	res := dbc.DB(r.db).Model(&runs.ReconcileRun{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("finish reconcile run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reconcile run %s: %w", id, apperrors.ErrNotFound)
	}
	r.log.Debug("Run finished", "run_id", id, "status", status)
	return nil
}

func (r *reconcileRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*runs.ReconcileRun, error) {
	var run runs.ReconcileRun
	err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, fmt.Errorf("reconcile run %s: %w", id, apperrors.ErrNotFound)
	}
	return &run, nil
}

// ListRecent returns the newest runs first. A non-positive limit uses DefaultListLimit.
func (r *reconcileRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*runs.ReconcileRun, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var out []*runs.ReconcileRun
	if err := dbc.DB(r.db).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
