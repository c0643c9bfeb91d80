package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeFetcher struct {
	bucket, key string
	data        []byte
	err         error
}

func (f *fakeFetcher) Fetch(_ context.Context, bucket, key string) ([]byte, error) {
	f.bucket = bucket
	f.key = key
	return f.data, f.err
}

func TestResolve(t *testing.T) {
	fetcher := &fakeFetcher{}

	tests := []struct {
		name         string
		spec         string
		fetcher      Fetcher
		wantErr      bool
		wantLocation string
	}{
		{
			name:         "local file",
			spec:         "./preseeds/debian.txt",
			wantLocation: "./preseeds/debian.txt",
		},
		{
			name:         "s3 uri",
			spec:         "s3://preseeds/debian/stable.txt",
			fetcher:      fetcher,
			wantLocation: "s3://preseeds/debian/stable.txt",
		},
		{
			name:    "s3 uri without key",
			spec:    "s3://preseeds",
			fetcher: fetcher,
			wantErr: true,
		},
		{
			name:    "s3 uri without client",
			spec:    "s3://preseeds/debian.txt",
			wantErr: true,
		},
		{
			name:    "empty spec",
			spec:    "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Resolve(tt.spec, tt.fetcher)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := src.Location(); got != tt.wantLocation {
				t.Fatalf("Location() = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}

func TestReadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.txt")
	if err := os.WriteFile(path, []byte("d-i mirror/country string manual\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FromFile(path).Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "d-i mirror/country string manual\n" {
		t.Fatalf("Read() = %q", got)
	}

	if _, err := FromFile(filepath.Join(t.TempDir(), "missing")).Read(context.Background()); err == nil {
		t.Fatal("Read() of missing file succeeded")
	}
}

func TestReadFromS3(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte("payload")}
	src := FromS3(fetcher, "preseeds", "debian.txt")

	got, err := src.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "payload" {
		t.Fatalf("Read() = %q, want %q", got, "payload")
	}
	if fetcher.bucket != "preseeds" || fetcher.key != "debian.txt" {
		t.Fatalf("fetched %s/%s", fetcher.bucket, fetcher.key)
	}

	fetcher.err = errors.New("denied")
	if _, err := src.Read(context.Background()); err == nil {
		t.Fatal("Read() swallowed fetch error")
	}
}

func TestReadNilSource(t *testing.T) {
	var src *Source
	if _, err := src.Read(context.Background()); err == nil {
		t.Fatal("Read() on nil source succeeded")
	}
}
