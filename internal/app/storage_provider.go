package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/coursekit/internal/data/snapshot"
	"github.com/yungbote/coursekit/internal/platform/gcp"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

var newObjectStore = gcp.NewObjectStore

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveObjectOpener validates the storage settings up front and returns an
// opener that connects on the first gs:// access.
func resolveObjectOpener(log *logger.Logger, cfg Config) (snapshot.ObjectOpener, error) {
	storageCfg, err := gcp.ResolveStorageConfig(cfg.ObjectStorageMode, cfg.StorageEmulatorHost)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", cfg.ObjectStorageMode,
			"emulator_host", cfg.StorageEmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}

	return func(ctx context.Context) (gcp.ObjectStore, error) {
		log.Info(
			"Selecting object storage provider",
			"mode", storageCfg.Mode,
			"inferred", storageCfg.Inferred,
			"emulator_host", storageCfg.EmulatorHost,
		)
		store, err := newObjectStore(ctx, log, storageCfg)
		if err != nil {
			classified := classifyStorageProviderBootstrapError(storageCfg, err)
			log.Error(
				"Object storage provider bootstrap failed",
				"mode", storageCfg.Mode,
				"emulator_host", storageCfg.EmulatorHost,
				"error_code", storageProviderBootstrapErrorCode(classified),
				"error", classified,
			)
			return nil, classified
		}
		return store, nil
	}, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.StorageConfig, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *gcp.StorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.StorageConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case gcp.StorageConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.StorageConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		}
	}
	mode := string(storageCfg.Mode)
	if cfgErr != nil && mode == "" {
		mode = cfgErr.Mode
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         mode,
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
