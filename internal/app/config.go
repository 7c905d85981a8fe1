package app

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
	"github.com/yungbote/coursekit/internal/migration/aggregate"
	"github.com/yungbote/coursekit/internal/observability"
	apperrors "github.com/yungbote/coursekit/internal/pkg/errors"
	"github.com/yungbote/coursekit/internal/platform/envutil"
	"github.com/yungbote/coursekit/internal/services"
)

const (
	DefaultLedgerDSN = "coursekit.db"
	envConfigPath    = "COURSEKIT_CONFIG"
)

type OtelSettings struct {
	ServiceName string `yaml:"service_name"`
}

type Config struct {
	BootstrapLessonID   string       `yaml:"bootstrap_lesson_id"`
	FallbackUnitID      string       `yaml:"fallback_unit_id"`
	ReviewLabel         string       `yaml:"review_label"`
	DailyPattern        string       `yaml:"daily_pattern"`
	LedgerDSN           string       `yaml:"ledger_dsn"`
	ObjectStorageMode   string       `yaml:"object_storage_mode"`
	StorageEmulatorHost string       `yaml:"storage_emulator_host"`
	Otel                OtelSettings `yaml:"otel"`

	dailyPattern *regexp.Regexp
}

func DefaultConfig() Config {
	return Config{
		BootstrapLessonID: coursedoc.DefaultBootstrapLessonID,
		ReviewLabel:       aggregate.DefaultReviewLabel,
		DailyPattern:      coursedoc.DailyLessonPattern.String(),
		LedgerDSN:         DefaultLedgerDSN,
		Otel:              OtelSettings{ServiceName: observability.DefaultServiceName},
	}
}

// LoadConfig layers defaults, the YAML file at path (or $COURSEKIT_CONFIG) and
// COURSEKIT_* variables. An explicit path that does not exist is an error; the
// environment-provided path is optional.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = envutil.String(envConfigPath, "")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("%w: parse config %s: %v", apperrors.ErrInvalidArgument, path, err)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.BootstrapLessonID = envutil.String("COURSEKIT_BOOTSTRAP_LESSON_ID", c.BootstrapLessonID)
	c.FallbackUnitID = envutil.String("COURSEKIT_FALLBACK_UNIT_ID", c.FallbackUnitID)
	c.ReviewLabel = envutil.String("COURSEKIT_REVIEW_LABEL", c.ReviewLabel)
	c.DailyPattern = envutil.String("COURSEKIT_DAILY_PATTERN", c.DailyPattern)
	c.LedgerDSN = envutil.String("COURSEKIT_LEDGER_DSN", c.LedgerDSN)
	c.ObjectStorageMode = envutil.String("OBJECT_STORAGE_MODE", c.ObjectStorageMode)
	c.StorageEmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", c.StorageEmulatorHost)
	c.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", c.Otel.ServiceName)
}

// Validate trims fields, compiles the daily pattern and rejects unusable values.
func (c *Config) Validate() error {
	c.BootstrapLessonID = strings.TrimSpace(c.BootstrapLessonID)
	c.FallbackUnitID = strings.TrimSpace(c.FallbackUnitID)
	c.ReviewLabel = strings.TrimSpace(c.ReviewLabel)
	c.LedgerDSN = strings.TrimSpace(c.LedgerDSN)

	if c.BootstrapLessonID == "" {
		return fmt.Errorf("%w: bootstrap_lesson_id is empty", apperrors.ErrInvalidArgument)
	}
	if c.ReviewLabel == "" {
		return fmt.Errorf("%w: review_label is empty", apperrors.ErrInvalidArgument)
	}
	if strings.TrimSpace(c.DailyPattern) == "" {
		return fmt.Errorf("%w: daily_pattern is empty", apperrors.ErrInvalidArgument)
	}
	re, err := regexp.Compile(c.DailyPattern)
	if err != nil {
		return fmt.Errorf("%w: daily_pattern: %v", apperrors.ErrInvalidArgument, err)
	}
	c.dailyPattern = re
	return nil
}

// LedgerEnabled reports whether runs are recorded. "off" and "none" disable it.
func (c Config) LedgerEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(c.LedgerDSN)) {
	case "", "off", "none":
		return false
	default:
		return true
	}
}

// ReconcileOptions requires a successful Validate.
func (c Config) ReconcileOptions() services.ReconcileOptions {
	return services.ReconcileOptions{
		BootstrapLessonID: c.BootstrapLessonID,
		FallbackUnitID:    c.FallbackUnitID,
		ReviewLabel:       c.ReviewLabel,
		DailyPattern:      c.dailyPattern,
	}
}
