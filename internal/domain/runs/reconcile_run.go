package runs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ReconcileRun is one invocation of the reconciliation routine. Report holds the
// JSON-encoded stage counts once the run finishes.
type ReconcileRun struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Command    string         `gorm:"column:command;not null;index" json:"command"`
	InputJSON  string         `gorm:"column:input_json" json:"input_json"`
	InputCSV   string         `gorm:"column:input_csv" json:"input_csv,omitempty"`
	Output     string         `gorm:"column:output" json:"output,omitempty"`
	DryRun     bool           `gorm:"column:dry_run;not null;default:false" json:"dry_run"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	Error      string         `gorm:"column:error" json:"error,omitempty"`
	Report     datatypes.JSON `gorm:"column:report" json:"report,omitempty"`
	StartedAt  time.Time      `gorm:"column:started_at;not null;index" json:"started_at"`
	FinishedAt *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (ReconcileRun) TableName() string { return "reconcile_run" }

func (r *ReconcileRun) Finished() bool {
	return r != nil && r.Status != StatusRunning
}

func (r *ReconcileRun) Duration() time.Duration {
	if r == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
