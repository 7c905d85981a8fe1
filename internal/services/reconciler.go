package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	"github.com/yungbote/coursekit/internal/data/runlog"
	"github.com/yungbote/coursekit/internal/domain/coursedoc"
	"github.com/yungbote/coursekit/internal/domain/runs"
	"github.com/yungbote/coursekit/internal/migration/aggregate"
	"github.com/yungbote/coursekit/internal/migration/lessoncsv"
	"github.com/yungbote/coursekit/internal/migration/reconcile"
	"github.com/yungbote/coursekit/internal/migration/unitid"
	"github.com/yungbote/coursekit/internal/observability"
	"github.com/yungbote/coursekit/internal/pkg/dbctx"
	apperrors "github.com/yungbote/coursekit/internal/pkg/errors"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

// SnapshotStore is satisfied by *snapshot.Store.
type SnapshotStore interface {
	Read(ctx context.Context, uri string) ([]byte, error)
	Write(ctx context.Context, uri string, data []byte) error
}

type ReconcileOptions struct {
	BootstrapLessonID string
	FallbackUnitID    string
	ReviewLabel       string
	DailyPattern      *regexp.Regexp
}

type ReconcileRequest struct {
	JSONURI string
	CSVURI  string
	OutURI  string
	DryRun  bool
}

func (r ReconcileRequest) validate() error {
	var missing []string
	if strings.TrimSpace(r.JSONURI) == "" {
		missing = append(missing, "json")
	}
	if strings.TrimSpace(r.CSVURI) == "" {
		missing = append(missing, "csv")
	}
	if !r.DryRun && strings.TrimSpace(r.OutURI) == "" {
		missing = append(missing, "out")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", apperrors.ErrInvalidArgument, strings.Join(missing, ", "))
	}
	return nil
}

// ReconcileReport holds the counts of every stage of one run.
type ReconcileReport struct {
	RunID  string `json:"runId,omitempty"`
	DryRun bool   `json:"dryRun"`

	CSVLessons    int `json:"csvLessons"`
	CSVSkipped    int `json:"csvSkipped"`
	CSVDuplicates int `json:"csvDuplicates"`

	UnitsRewritten int `json:"unitsRewritten"`
	UnitCollisions int `json:"unitCollisions"`
	UnitsRenamed   int `json:"unitsRenamed"`

	LessonsDropped  int      `json:"lessonsDropped"`
	LessonsRetained int      `json:"lessonsRetained"`
	LessonsAdded    int      `json:"lessonsAdded"`
	LessonsReplaced int      `json:"lessonsReplaced"`
	LessonsRepaired int      `json:"lessonsRepaired"`
	FallbackUnitID  string   `json:"fallbackUnitId,omitempty"`
	Dangling        []string `json:"dangling,omitempty"`

	Units         int `json:"units"`
	EmptyUnits    int `json:"emptyUnits"`
	UnitRefs      int `json:"unitRefs"`
	ReviewRenamed int `json:"reviewRenamed"`

	Lessons     int `json:"lessons"`
	OutputBytes int `json:"outputBytes"`
}

type Reconciler interface {
	Run(ctx context.Context, req ReconcileRequest) (*ReconcileReport, error)
}

type reconciler struct {
	log   *logger.Logger
	store SnapshotStore
	runs  runlog.ReconcileRunRepo
	opts  ReconcileOptions
}

// NewReconciler wires the reconciliation pipeline. runRepo may be nil to skip the
// run ledger.
func NewReconciler(baseLog *logger.Logger, store SnapshotStore, runRepo runlog.ReconcileRunRepo, opts ReconcileOptions) Reconciler {
	return &reconciler{
		log:   baseLog.With("service", "Reconciler"),
		store: store,
		runs:  runRepo,
		opts:  opts,
	}
}

// Run reads the snapshot and the CSV export, reconciles them and writes the
// result in one piece. Any failure before the write leaves the output untouched.
func (r *reconciler) Run(ctx context.Context, req ReconcileRequest) (rep *ReconcileReport, err error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	ctx, span := observability.StartStage(ctx, "reconcile",
		attribute.String("input.json", req.JSONURI),
		attribute.String("input.csv", req.CSVURI),
		attribute.Bool("dry_run", req.DryRun),
	)
	defer func() { observability.EndStage(span, err) }()

	rep = &ReconcileReport{DryRun: req.DryRun}
	runID, err := r.startRun(ctx, req)
	if err != nil {
		return nil, err
	}
	if runID != uuid.Nil {
		rep.RunID = runID.String()
		defer func() { r.finishRun(ctx, runID, rep, err) }()
	}
	log := r.log.With("run_id", rep.RunID)

	// 1. read
	var rawJSON, rawCSV []byte
	if err = r.stage(ctx, "read", func(ctx context.Context) ([]attribute.KeyValue, error) {
		var rerr error
		if rawJSON, rerr = r.store.Read(ctx, req.JSONURI); rerr != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", req.JSONURI, rerr)
		}
		if rawCSV, rerr = r.store.Read(ctx, req.CSVURI); rerr != nil {
			return nil, fmt.Errorf("read csv %s: %w", req.CSVURI, rerr)
		}
		return []attribute.KeyValue{attribute.Int("json.bytes", len(rawJSON)), attribute.Int("csv.bytes", len(rawCSV))}, nil
	}); err != nil {
		return rep, err
	}

	// 2. decode
	var doc *coursedoc.Document
	if err = r.stage(ctx, "decode", func(context.Context) ([]attribute.KeyValue, error) {
		d, derr := coursedoc.Decode(rawJSON)
		if derr != nil {
			return nil, fmt.Errorf("decode %s: %w", req.JSONURI, derr)
		}
		doc = d
		return []attribute.KeyValue{
			attribute.Int("courses", len(doc.Courses)),
			attribute.Int("units", len(doc.Units)),
			attribute.Int("lessons", len(doc.Lessons)),
		}, nil
	}); err != nil {
		return rep, err
	}
	log.Debug("Decoded snapshot", "courses", len(doc.Courses), "units", len(doc.Units), "lessons", len(doc.Lessons))

	// 3. parse csv
	var parsed *lessoncsv.Result
	if err = r.stage(ctx, "parse_csv", func(context.Context) ([]attribute.KeyValue, error) {
		res, perr := lessoncsv.Load(string(rawCSV))
		if perr != nil {
			return nil, fmt.Errorf("parse csv %s: %w", req.CSVURI, perr)
		}
		parsed = res
		return []attribute.KeyValue{
			attribute.Int("lessons", len(res.Lessons)),
			attribute.Int("skipped", res.Skipped),
			attribute.Int("duplicates", res.Duplicates),
		}, nil
	}); err != nil {
		return rep, err
	}
	rep.CSVLessons, rep.CSVSkipped, rep.CSVDuplicates = len(parsed.Lessons), parsed.Skipped, parsed.Duplicates
	log.Info("Parsed CSV", "lessons", rep.CSVLessons, "skipped", rep.CSVSkipped, "duplicates", rep.CSVDuplicates)

	// 4. normalize unit ids
	var mapping unitid.Mapping
	r.step(ctx, "normalize_units", func() []attribute.KeyValue {
		var st unitid.Stats
		mapping, st = unitid.Normalize(doc, parsed.UnitNames)
		rep.UnitsRewritten, rep.UnitCollisions, rep.UnitsRenamed = st.Rewritten, st.Collisions, st.Renamed
		return []attribute.KeyValue{attribute.Int("rewritten", st.Rewritten), attribute.Int("collisions", st.Collisions)}
	})
	log.Info("Normalized unit ids", "rewritten", rep.UnitsRewritten, "collisions", rep.UnitCollisions, "renamed", rep.UnitsRenamed)

	// 5. reconcile lessons
	var merged *reconcile.Result
	r.step(ctx, "reconcile_lessons", func() []attribute.KeyValue {
		merged = reconcile.Merge(doc.Lessons, parsed.Lessons, doc.Units, mapping, reconcile.Options{
			BootstrapLessonID: r.opts.BootstrapLessonID,
			DailyPattern:      r.opts.DailyPattern,
			FallbackUnitID:    r.opts.FallbackUnitID,
		})
		doc.Lessons = merged.Lessons
		return []attribute.KeyValue{
			attribute.Int("dropped", merged.Dropped),
			attribute.Int("added", merged.Added),
			attribute.Int("dangling", len(merged.Dangling)),
		}
	})
	rep.LessonsDropped, rep.LessonsRetained = merged.Dropped, merged.Retained
	rep.LessonsAdded, rep.LessonsReplaced, rep.LessonsRepaired = merged.Added, merged.Replaced, merged.Repaired
	rep.FallbackUnitID, rep.Dangling = merged.FallbackUnitID, merged.Dangling
	log.Info("Reconciled lessons",
		"dropped", rep.LessonsDropped,
		"retained", rep.LessonsRetained,
		"added", rep.LessonsAdded,
		"replaced", rep.LessonsReplaced,
		"repaired", rep.LessonsRepaired,
		"fallback_unit_id", rep.FallbackUnitID,
	)
	r.reportQuality(ctx, rep, parsed)

	// 6. aggregates
	r.step(ctx, "recompute_aggregates", func() []attribute.KeyValue {
		st := aggregate.Recompute(doc, aggregate.Options{
			BootstrapLessonID: r.opts.BootstrapLessonID,
			ReviewLabel:       r.opts.ReviewLabel,
		})
		rep.Units, rep.EmptyUnits, rep.UnitRefs, rep.ReviewRenamed = st.Units, st.EmptyUnits, st.UnitRefs, st.Renamed
		return []attribute.KeyValue{attribute.Int("units", st.Units), attribute.Int("renamed", st.Renamed)}
	})
	rep.Lessons = len(doc.Lessons)
	log.Info("Recomputed aggregates", "units", rep.Units, "empty_units", rep.EmptyUnits, "review_renamed", rep.ReviewRenamed)

	// 7. write once
	if err = r.stage(ctx, "write", func(ctx context.Context) ([]attribute.KeyValue, error) {
		out, eerr := coursedoc.Encode(doc)
		if eerr != nil {
			return nil, fmt.Errorf("encode: %w", eerr)
		}
		rep.OutputBytes = len(out)
		if req.DryRun {
			return []attribute.KeyValue{attribute.Bool("skipped", true)}, nil
		}
		if werr := r.store.Write(ctx, req.OutURI, out); werr != nil {
			return nil, fmt.Errorf("write %s: %w", req.OutURI, werr)
		}
		return []attribute.KeyValue{attribute.Int("bytes", len(out))}, nil
	}); err != nil {
		return rep, err
	}
	if req.DryRun {
		log.Info("Dry run; output not written", "bytes", rep.OutputBytes)
	} else {
		log.Info("Wrote reconciled snapshot", "out", req.OutURI, "bytes", rep.OutputBytes)
	}
	return rep, nil
}

func (r *reconciler) stage(ctx context.Context, name string, fn func(context.Context) ([]attribute.KeyValue, error)) error {
	ctx, span := observability.StartStage(ctx, name)
	attrs, err := fn(ctx)
	observability.EndStage(span, err, attrs...)
	return err
}

// step runs an in-memory stage that cannot fail.
func (r *reconciler) step(ctx context.Context, name string, fn func() []attribute.KeyValue) {
	_, span := observability.StartStage(ctx, name)
	observability.EndStage(span, nil, fn()...)
}

// reportQuality flags dropped daily lessons, dangling references and CSV rows
// that were skipped or overridden.
func (r *reconciler) reportQuality(ctx context.Context, rep *ReconcileReport, parsed *lessoncsv.Result) {
	q := observability.NewDataQuality("reconcile")
	q.Add("csv_row_skipped", parsed.Skipped)
	q.Add("csv_row_duplicate", parsed.Duplicates)
	q.Add("unit_collision", rep.UnitCollisions)
	q.Add("daily_lesson_dropped", rep.LessonsDropped)
	q.Add("dangling_unit_ref", len(rep.Dangling), rep.Dangling...)
	observability.ReportDataQuality(ctx, r.log, q, map[string]any{"run_id": rep.RunID})
}

func (r *reconciler) startRun(ctx context.Context, req ReconcileRequest) (uuid.UUID, error) {
	if r.runs == nil {
		return uuid.Nil, nil
	}
	run, err := r.runs.Start(dbctx.Context{Ctx: ctx}, &runs.ReconcileRun{
		Command:   "reconcile",
		InputJSON: req.JSONURI,
		InputCSV:  req.CSVURI,
		Output:    req.OutURI,
		DryRun:    req.DryRun,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("record run start: %w", err)
	}
	return run.ID, nil
}

// finishRun closes the ledger row. Ledger errors are logged, never returned.
func (r *reconciler) finishRun(ctx context.Context, id uuid.UUID, rep *ReconcileReport, runErr error) {
	var report datatypes.JSON
	if rep != nil {
		if b, err := json.Marshal(rep); err == nil {
			report = datatypes.JSON(b)
		}
	}
	if err := r.runs.Finish(dbctx.Context{Ctx: context.WithoutCancel(ctx)}, id, runErr, report); err != nil {
		r.log.Warn("Failed to record run result", "run_id", id, "error", err)
	}
}
