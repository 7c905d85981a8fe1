package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
	"github.com/yungbote/coursekit/internal/migration/csvexport"
	"github.com/yungbote/coursekit/internal/migration/mockdata"
	"github.com/yungbote/coursekit/internal/observability"
	apperrors "github.com/yungbote/coursekit/internal/pkg/errors"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

type ExportRequest struct {
	JSONURI string
	OutURI  string
}

type ExportReport struct {
	Rows  int `json:"rows"`
	Bytes int `json:"bytes"`
}

type MockRequest struct {
	JSONURI string
	CSVURI  string
	Options mockdata.Options
}

type MockReport struct {
	Units     int `json:"units"`
	Lessons   int `json:"lessons"`
	Rows      int `json:"rows"`
	JSONBytes int `json:"jsonBytes"`
	CSVBytes  int `json:"csvBytes"`
}

// Exporter turns snapshots into lesson spreadsheets and produces synthetic
// snapshot/spreadsheet pairs.
type Exporter interface {
	Export(ctx context.Context, req ExportRequest) (*ExportReport, error)
	Mock(ctx context.Context, req MockRequest) (*MockReport, error)
}

type exporter struct {
	log   *logger.Logger
	store SnapshotStore
	opts  ReconcileOptions
}

func NewExporter(baseLog *logger.Logger, store SnapshotStore, opts ReconcileOptions) Exporter {
	return &exporter{
		log:   baseLog.With("service", "Exporter"),
		store: store,
		opts:  opts,
	}
}

func (e *exporter) Export(ctx context.Context, req ExportRequest) (rep *ExportReport, err error) {
	if strings.TrimSpace(req.JSONURI) == "" || strings.TrimSpace(req.OutURI) == "" {
		return nil, fmt.Errorf("%w: export needs json and out", apperrors.ErrInvalidArgument)
	}
	ctx, span := observability.StartStage(ctx, "export", attribute.String("input.json", req.JSONURI))
	defer func() { observability.EndStage(span, err) }()

	raw, err := e.store.Read(ctx, req.JSONURI)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", req.JSONURI, err)
	}
	doc, err := coursedoc.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", req.JSONURI, err)
	}
	var buf bytes.Buffer
	rows, err := csvexport.Write(&buf, doc, csvexport.Options{BootstrapLessonID: e.opts.BootstrapLessonID})
	if err != nil {
		return nil, err
	}
	if err := e.store.Write(ctx, req.OutURI, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write %s: %w", req.OutURI, err)
	}
	rep = &ExportReport{Rows: rows, Bytes: buf.Len()}
	e.log.Info("Exported lessons", "out", req.OutURI, "rows", rows, "bytes", rep.Bytes)
	return rep, nil
}

func (e *exporter) Mock(ctx context.Context, req MockRequest) (rep *MockReport, err error) {
	if strings.TrimSpace(req.JSONURI) == "" || strings.TrimSpace(req.CSVURI) == "" {
		return nil, fmt.Errorf("%w: mock needs json and csv outputs", apperrors.ErrInvalidArgument)
	}
	if req.Options.Weeks < 0 || req.Options.Days < 0 {
		return nil, fmt.Errorf("%w: weeks and days must not be negative", apperrors.ErrInvalidArgument)
	}
	ctx, span := observability.StartStage(ctx, "mock", attribute.Int64("seed", int64(req.Options.Seed)))
	defer func() { observability.EndStage(span, err) }()

	fx := mockdata.Generate(req.Options)
	docBytes, err := coursedoc.Encode(fx.Doc)
	if err != nil {
		return nil, fmt.Errorf("encode fixture: %w", err)
	}
	csvBytes, err := fx.CSV()
	if err != nil {
		return nil, fmt.Errorf("render fixture csv: %w", err)
	}
	if err := e.store.Write(ctx, req.JSONURI, docBytes); err != nil {
		return nil, fmt.Errorf("write %s: %w", req.JSONURI, err)
	}
	if err := e.store.Write(ctx, req.CSVURI, csvBytes); err != nil {
		return nil, fmt.Errorf("write %s: %w", req.CSVURI, err)
	}
	rep = &MockReport{
		Units:     len(fx.Doc.Units),
		Lessons:   len(fx.Doc.Lessons),
		Rows:      len(fx.Rows) - 1,
		JSONBytes: len(docBytes),
		CSVBytes:  len(csvBytes),
	}
	e.log.Info("Generated mock data", "json", req.JSONURI, "csv", req.CSVURI, "units", rep.Units, "lessons", rep.Lessons, "rows", rep.Rows)
	return rep, nil
}
