package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"ledger_dsn", "postgres://svc:hunter2@db:5432/coursekit",
		"credentials", "{...}",
		"lessons", 12,
	})
	if len(got) != 6 {
		t.Fatalf("len: want=6 got=%d", len(got))
	}
	if got[1] != "postgres://%5BREDACTED%5D@db:5432/coursekit" {
		t.Fatalf("dsn: got=%v", got[1])
	}
	if got[3] != "[REDACTED]" {
		t.Fatalf("credentials: want=[REDACTED] got=%v", got[3])
	}
	if got[5] != 12 {
		t.Fatalf("lessons: want=12 got=%v", got[5])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	got := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(got) != 3 || got[2] != "dangling" {
		t.Fatalf("odd kv: got=%v", got)
	}
}

func TestRedactDSNKeepsPlainPaths(t *testing.T) {
	if got := redactDSN("file:ledger.db?cache=shared"); got != "file:ledger.db?cache=shared" {
		t.Fatalf("sqlite dsn: got=%q", got)
	}
	if got := redactDSN("runs.db"); got != "runs.db" {
		t.Fatalf("bare path: got=%q", got)
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	l, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("discarded", "k", "v")
	l.With("service", "x").Debug("discarded")
}
