package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yungbote/coursekit/internal/pkg/errors"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"COURSEKIT_CONFIG",
		"COURSEKIT_BOOTSTRAP_LESSON_ID",
		"COURSEKIT_FALLBACK_UNIT_ID",
		"COURSEKIT_REVIEW_LABEL",
		"COURSEKIT_DAILY_PATTERN",
		"COURSEKIT_LEDGER_DSN",
		"OBJECT_STORAGE_MODE",
		"STORAGE_EMULATOR_HOST",
		"OTEL_SERVICE_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "lesson_0", cfg.BootstrapLessonID)
	assert.Equal(t, "Weekly Review & Quiz", cfg.ReviewLabel)
	assert.Equal(t, DefaultLedgerDSN, cfg.LedgerDSN)
	assert.True(t, cfg.LedgerEnabled())

	opts := cfg.ReconcileOptions()
	require.NotNil(t, opts.DailyPattern)
	assert.True(t, opts.DailyPattern.MatchString("lesson_x_week1_day3"))
}

func TestLoadConfigLayers(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "coursekit.yaml")
	yamlBody := "bootstrap_lesson_id: lesson_intro\nreview_label: Recap\nledger_dsn: \"off\"\notel:\n  service_name: ck-test\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))
	t.Setenv("COURSEKIT_REVIEW_LABEL", "Week Recap")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "lesson_intro", cfg.BootstrapLessonID)
	assert.Equal(t, "Week Recap", cfg.ReviewLabel, "env wins over file")
	assert.Equal(t, "ck-test", cfg.Otel.ServiceName)
	assert.False(t, cfg.LedgerEnabled())
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("COURSEKIT_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := LoadConfig("")
	require.NoError(t, err, "missing env-provided file is ignored")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err, "missing explicit file is an error")
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bootstrap_lesson_id: [unclosed\n"), 0o644))
	_, err := LoadConfig(path)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument), "got %v", err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty bootstrap": func(c *Config) { c.BootstrapLessonID = "  " },
		"empty label":     func(c *Config) { c.ReviewLabel = "" },
		"empty pattern":   func(c *Config) { c.DailyPattern = "" },
		"bad pattern":     func(c *Config) { c.DailyPattern = "day(" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidArgument)
		})
	}
}
