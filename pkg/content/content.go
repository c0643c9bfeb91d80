// Package content resolves preseed payloads from their backing locations.
// A nil *Source is the explicit "no content" marker used by discovery-only
// preseed reconciliation.
package content

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Fetcher retrieves an object from a bucket store.
type Fetcher interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

type kind int

const (
	kindInline kind = iota
	kindFile
	kindS3
)

// Source yields preseed content from one backing location.
type Source struct {
	kind    kind
	inline  string
	path    string
	bucket  string
	key     string
	fetcher Fetcher
}

// FromString wraps literal content.
func FromString(s string) *Source {
	return &Source{kind: kindInline, inline: s}
}

// FromFile reads content from a local path at Read time.
func FromFile(path string) *Source {
	return &Source{kind: kindFile, path: path}
}

// FromS3 reads content from an object store at Read time.
func FromS3(f Fetcher, bucket, key string) *Source {
	return &Source{kind: kindS3, bucket: bucket, key: key, fetcher: f}
}

// Resolve maps a location spec to a Source: "s3://bucket/key" selects the
// object store (f must be non-nil), anything else is a local file path.
func Resolve(spec string, f Fetcher) (*Source, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("empty content location")
	}

	if strings.HasPrefix(spec, "s3://") {
		parsed, err := url.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", spec, err)
		}
		bucket := parsed.Host
		key := strings.TrimPrefix(parsed.Path, "/")
		if bucket == "" || key == "" {
			return nil, fmt.Errorf("%q must name a bucket and key", spec)
		}
		if f == nil {
			return nil, fmt.Errorf("%q requires an object store client", spec)
		}
		return FromS3(f, bucket, key), nil
	}

	return FromFile(spec), nil
}

// Read materialises the content.
func (s *Source) Read(ctx context.Context) (string, error) {
	if s == nil {
		return "", errors.New("nil content source")
	}

	switch s.kind {
	case kindInline:
		return s.inline, nil
	case kindFile:
		data, err := os.ReadFile(s.path)
		if err != nil {
			return "", fmt.Errorf("read preseed file: %w", err)
		}
		return string(data), nil
	case kindS3:
		data, err := s.fetcher.Fetch(ctx, s.bucket, s.key)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown content source kind %d", s.kind)
	}
}

// Location describes where the content comes from, for logs and journals.
func (s *Source) Location() string {
	if s == nil {
		return ""
	}
	switch s.kind {
	case kindFile:
		return s.path
	case kindS3:
		return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
	default:
		return "inline"
	}
}
