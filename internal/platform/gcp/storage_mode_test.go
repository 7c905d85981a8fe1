package gcp

import (
	"errors"
	"testing"
)

func TestResolveStorageConfigDefaultGCS(t *testing.T) {
	cfg, err := ResolveStorageConfig("", "")
	if err != nil {
		t.Fatalf("ResolveStorageConfig: %v", err)
	}
	if cfg.Mode != StorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", StorageModeGCS, cfg.Mode)
	}
	if cfg.Inferred {
		t.Fatalf("inferred: want=false got=true")
	}
}

func TestResolveStorageConfigExplicitGCSIgnoresHost(t *testing.T) {
	cfg, err := ResolveStorageConfig("GCS", "http://fake-gcs:4443")
	if err != nil {
		t.Fatalf("ResolveStorageConfig: %v", err)
	}
	if cfg.Mode != StorageModeGCS || cfg.IsEmulatorMode() {
		t.Fatalf("mode: want=%q got=%q", StorageModeGCS, cfg.Mode)
	}
}

func TestResolveStorageConfigInfersEmulator(t *testing.T) {
	cfg, err := ResolveStorageConfig("", "http://fake-gcs:4443/")
	if err != nil {
		t.Fatalf("ResolveStorageConfig: %v", err)
	}
	if cfg.Mode != StorageModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", StorageModeGCSEmulator, cfg.Mode)
	}
	if !cfg.Inferred {
		t.Fatalf("inferred: want=true got=false")
	}
	if cfg.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: want=%q got=%q", "http://fake-gcs:4443", cfg.EmulatorHost)
	}
}

func TestResolveStorageConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		mode string
		host string
		code StorageConfigErrorCode
	}{
		{name: "invalid mode", mode: "s3", code: StorageConfigErrorInvalidMode},
		{name: "emulator without host", mode: "gcs_emulator", code: StorageConfigErrorMissingEmulatorHost},
		{name: "emulator bad host", mode: "gcs_emulator", host: "fake-gcs:4443", code: StorageConfigErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveStorageConfig(tc.mode, tc.host)
			var cfgErr *StorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("want StorageConfigError, got %v", err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, cfgErr.Code)
			}
			if cfgErr.Error() == "" {
				t.Fatalf("empty error message")
			}
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"snapshots/course.json": "application/json",
		"exports/lessons.CSV":   "text/csv; charset=utf-8",
		"blob":                  "application/octet-stream",
	}
	for key, want := range cases {
		if got := contentTypeForKey(key); got != want {
			t.Fatalf("%s: want=%q got=%q", key, want, got)
		}
	}
}
