package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
	"github.com/yungbote/coursekit/internal/migration/aggregate"
	"github.com/yungbote/coursekit/internal/services"
)

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"--log-mode", "test"}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"COURSEKIT_CONFIG", "COURSEKIT_LEDGER_DSN", "OBJECT_STORAGE_MODE", "STORAGE_EMULATOR_HOST", "OTEL_ENABLED"} {
		t.Setenv(k, "")
	}
}

func TestCLIMockReconcileExportRuns(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	ledger := filepath.Join(dir, "runs.db")
	in, csvIn := filepath.Join(dir, "mock.json"), filepath.Join(dir, "mock.csv")
	out, csvOut := filepath.Join(dir, "out.json"), filepath.Join(dir, "out.csv")

	if _, stderr, code := runCLI(t, "--ledger-dsn", ledger, "mock", "--out-json", in, "--out-csv", csvIn, "--weeks", "2", "--days", "2"); code != 0 {
		t.Fatalf("mock: exit=%d stderr=%s", code, stderr)
	}

	stdout, stderr, code := runCLI(t, "--ledger-dsn", ledger, "reconcile", "--json", in, "--csv", "file://"+filepath.ToSlash(csvIn), "--out", out)
	if code != 0 {
		t.Fatalf("reconcile: exit=%d stderr=%s", code, stderr)
	}
	var rep services.ReconcileReport
	if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
		t.Fatalf("report: %v\n%s", err, stdout)
	}
	if rep.LessonsAdded != 4 || rep.RunID == "" {
		t.Fatalf("report: %+v", rep)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	doc, err := coursedoc.Decode(raw)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	u := doc.Units["unit_qlzx_2728_week1"]
	if u == nil || len(u.Lessons) != 2 || u.Lessons[1].Name != aggregate.DefaultReviewLabel {
		t.Fatalf("week1 unit: %+v", u)
	}

	if _, stderr, code := runCLI(t, "--ledger-dsn", ledger, "export", "--json", out, "--out", csvOut); code != 0 {
		t.Fatalf("export: exit=%d stderr=%s", code, stderr)
	}
	if _, err := os.Stat(csvOut); err != nil {
		t.Fatalf("export output: %v", err)
	}

	stdout, stderr, code = runCLI(t, "--ledger-dsn", ledger, "runs", "--limit", "5")
	if code != 0 {
		t.Fatalf("runs: exit=%d stderr=%s", code, stderr)
	}
	if !strings.Contains(stdout, rep.RunID) || !strings.Contains(stdout, "succeeded") {
		t.Fatalf("runs output:\n%s", stdout)
	}
}

func TestCLIReconcileDryRunWithoutLedger(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	in, csvIn := filepath.Join(dir, "mock.json"), filepath.Join(dir, "mock.csv")
	if _, stderr, code := runCLI(t, "--ledger-dsn", "off", "mock", "--out-json", in, "--out-csv", csvIn); code != 0 {
		t.Fatalf("mock: exit=%d stderr=%s", code, stderr)
	}
	stdout, stderr, code := runCLI(t, "--ledger-dsn", "off", "reconcile", "--json", in, "--csv", csvIn, "--dry-run")
	if code != 0 {
		t.Fatalf("reconcile: exit=%d stderr=%s", code, stderr)
	}
	if !strings.Contains(stdout, `"dryRun": true`) {
		t.Fatalf("dry run report:\n%s", stdout)
	}
	if _, _, code := runCLI(t, "--ledger-dsn", "off", "runs"); code != 1 {
		t.Fatalf("runs without ledger: want exit 1 got %d", code)
	}
}

func TestCLIFailures(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	cases := [][]string{
		{"--ledger-dsn", "off", "reconcile", "--json", filepath.Join(dir, "missing.json"), "--csv", filepath.Join(dir, "missing.csv"), "--out", filepath.Join(dir, "o.json")},
		{"--ledger-dsn", "off", "reconcile", "--json", "s3://bucket/x.json", "--csv", "x.csv", "--out", "o.json"},
		{"--ledger-dsn", "off", "--daily-pattern", "day(", "reconcile", "--json", "a", "--csv", "b", "--out", "c"},
		{"--ledger-dsn", "off", "export", "--json", "a.json"},
	}
	for _, args := range cases {
		if _, _, code := runCLI(t, args...); code != 1 {
			t.Fatalf("%v: want exit 1 got %d", args, code)
		}
	}
}
