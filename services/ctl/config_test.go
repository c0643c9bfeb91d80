package ctl

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const twoInstances = `
default_instance: lab
instances:
  lab:
    url: http://lab-mrp:5000
    token: lab-token
    interface: eth1
  staging:
    url: http://staging-mrp:5000
    token: staging-token
`

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		instance string
		env      map[string]string
		want     Config
		wantErr  bool
	}{
		{
			name:     "default instance",
			contents: twoInstances,
			want:     Config{URL: "http://lab-mrp:5000", Token: "lab-token", Interface: "eth1"},
		},
		{
			name:     "named instance",
			contents: twoInstances,
			instance: "staging",
			want:     Config{URL: "http://staging-mrp:5000", Token: "staging-token"},
		},
		{
			name:     "unknown instance",
			contents: twoInstances,
			instance: "prod",
			wantErr:  true,
		},
		{
			name: "single instance needs no default",
			contents: `
instances:
  only:
    url: http://mrp:5000
    token: tok
`,
			want: Config{URL: "http://mrp:5000", Token: "tok"},
		},
		{
			name: "multiple instances without default",
			contents: `
instances:
  a:
    url: http://a:5000
    token: t
  b:
    url: http://b:5000
    token: t
`,
			wantErr: true,
		},
		{
			name:     "env overrides file",
			contents: twoInstances,
			env: map[string]string{
				"PROVSYNC_TOKEN":     "rotated",
				"PROVSYNC_INTERFACE": "eth0",
			},
			want: Config{URL: "http://lab-mrp:5000", Token: "rotated", Interface: "eth0"},
		},
		{
			name:     "missing token",
			contents: "instances:\n  lab:\n    url: http://mrp:5000\n",
			wantErr:  true,
		},
		{
			name:     "invalid yaml",
			contents: "instances: [",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load(writeConfig(t, tt.contents), tt.instance)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Fatalf("Load() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	if err == nil {
		t.Fatal("Load() with missing explicit path succeeded")
	}
}

func TestLoadEnvOnly(t *testing.T) {
	// No config file: the environment alone must be enough.
	t.Setenv("PROVSYNC_URL", "http://mrp:5000")
	t.Setenv("PROVSYNC_TOKEN", "tok")

	missing := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := Load(missing, "")
	if err == nil {
		t.Fatal("explicit missing path should still fail")
	}

	got, err := loadWithDefaultPathMissing(t)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.URL != "http://mrp:5000" || got.Token != "tok" {
		t.Fatalf("Load() = %+v", got)
	}
}

// loadWithDefaultPathMissing exercises the default-path branch without
// touching /etc on the test host.
func loadWithDefaultPathMissing(t *testing.T) (Config, error) {
	t.Helper()
	if _, err := os.Stat(DefaultPath); err == nil {
		t.Skipf("%s exists on this host", DefaultPath)
	}
	return Load("", "")
}
