package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/coursekit/internal/platform/envutil"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

const maxSampleIssues = 3

// DataQuality collects non-fatal anomalies found while reconciling: rows that
// were skipped, references that point nowhere, ids that collided.
type DataQuality struct {
	Stage   string
	Counts  map[string]int
	Samples []string
}

func NewDataQuality(stage string) *DataQuality {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		stage = "unknown"
	}
	return &DataQuality{Stage: stage, Counts: map[string]int{}}
}

// Add counts n occurrences of issue and keeps up to three sample ids.
func (q *DataQuality) Add(issue string, n int, samples ...string) {
	if q == nil || n <= 0 {
		return
	}
	q.Counts[issue] += n
	for _, s := range samples {
		if len(q.Samples) >= maxSampleIssues {
			break
		}
		if s = strings.TrimSpace(s); s != "" {
			q.Samples = append(q.Samples, issue+": "+s)
		}
	}
}

func (q *DataQuality) Empty() bool {
	return q == nil || len(q.Counts) == 0
}

func (q *DataQuality) Issues() []string {
	if q == nil {
		return nil
	}
	out := make([]string, 0, len(q.Counts))
	for k := range q.Counts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ReportDataQuality logs the collected issues, attaches them to the active span
// and, when DATA_QUALITY_ALERT_WEBHOOK_URL is set, posts them there.
func ReportDataQuality(ctx context.Context, log *logger.Logger, q *DataQuality, meta map[string]any) {
	if q.Empty() {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	span := trace.SpanFromContext(ctx)
	if sc := span.SpanContext(); sc.HasTraceID() {
		meta["trace_id"] = sc.TraceID().String()
	}
	attrs := []attribute.KeyValue{attribute.String("stage", q.Stage)}
	for _, issue := range q.Issues() {
		attrs = append(attrs, attribute.Int("issue."+issue, q.Counts[issue]))
	}
	span.AddEvent("data_quality", trace.WithAttributes(attrs...))

	if log != nil {
		log.Warn("data quality issue detected",
			"stage", q.Stage,
			"issues", q.Counts,
			"sample_errors", q.Samples,
			"meta", meta,
		)
	}
	sendDataQualityAlert(ctx, q, meta, log)
}

func sendDataQualityAlert(ctx context.Context, q *DataQuality, meta map[string]any, log *logger.Logger) {
	webhook := envutil.String("DATA_QUALITY_ALERT_WEBHOOK_URL", "")
	if webhook == "" {
		return
	}
	payload := map[string]any{
		"title":         "Course data quality issue",
		"stage":         q.Stage,
		"issues":        q.Counts,
		"sample_errors": q.Samples,
		"meta":          meta,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}
	body, _ := json.Marshal(payload)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(body))
	if err != nil {
		if log != nil {
			log.Warn("data quality alert request build failed", "error", err, "stage", q.Stage)
		}
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if log != nil {
			log.Warn("data quality alert post failed", "error", err, "stage", q.Stage)
		}
		return
	}
	_ = resp.Body.Close()
	if log != nil {
		log.Info("data quality alert sent", "stage", q.Stage, "status", resp.StatusCode)
	}
}
