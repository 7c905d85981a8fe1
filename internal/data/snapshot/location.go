package snapshot

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

var ErrUnsupportedScheme = errors.New("unsupported snapshot location scheme")

type Scheme string

const (
	SchemeFile Scheme = "file"
	SchemeGCS  Scheme = "gs"
)

// Location is a parsed snapshot URI. Local locations carry Path; GCS locations
// carry Bucket and Key.
type Location struct {
	Scheme Scheme
	Path   string
	Bucket string
	Key    string
}

func (l Location) String() string {
	if l.Scheme == SchemeGCS {
		return "gs://" + l.Bucket + "/" + l.Key
	}
	return l.Path
}

// ParseLocation accepts a plain filesystem path, a file:// URI or a
// gs://bucket/object URI.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, fmt.Errorf("%w: empty location", ErrUnsupportedScheme)
	}
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Location{Scheme: SchemeFile, Path: filepath.Clean(raw)}, nil
	}
	switch Scheme(strings.ToLower(scheme)) {
	case SchemeFile:
		u, err := url.Parse(raw)
		if err != nil {
			return Location{}, fmt.Errorf("parse %q: %w", raw, err)
		}
		p := u.Path
		if u.Host != "" && u.Host != "localhost" {
			// file://relative/path keeps the host segment as the first path element.
			p = u.Host + u.Path
		}
		if p == "" {
			return Location{}, fmt.Errorf("%w: %q has no path", ErrUnsupportedScheme, raw)
		}
		return Location{Scheme: SchemeFile, Path: filepath.Clean(filepath.FromSlash(p))}, nil
	case SchemeGCS:
		bucket, key, _ := strings.Cut(rest, "/")
		key = strings.TrimLeft(key, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %q needs gs://<bucket>/<object>", ErrUnsupportedScheme, raw)
		}
		return Location{Scheme: SchemeGCS, Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}
