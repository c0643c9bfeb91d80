package s3

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_REGION", "S3_DISABLE_TLS", "S3_FORCE_PATH_STYLE",
	} {
		t.Setenv(key, "")
	}
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    Config
		wantErr bool
	}{
		{
			name: "defaults applied",
			env: map[string]string{
				"S3_ENDPOINT":   "seaweed:8333",
				"S3_ACCESS_KEY": "ak",
				"S3_SECRET_KEY": "sk",
			},
			want: Config{
				Endpoint:       "seaweed:8333",
				AccessKey:      "ak",
				SecretKey:      "sk",
				Region:         "us-east-1",
				ForcePathStyle: true,
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"S3_ENDPOINT":         " seaweed:8333 ",
				"S3_ACCESS_KEY":       "ak",
				"S3_SECRET_KEY":       "sk",
				"S3_REGION":           "eu-west-1",
				"S3_DISABLE_TLS":      "true",
				"S3_FORCE_PATH_STYLE": "false",
			},
			want: Config{
				Endpoint:   "seaweed:8333",
				AccessKey:  "ak",
				SecretKey:  "sk",
				Region:     "eu-west-1",
				DisableTLS: true,
			},
		},
		{
			name: "missing endpoint",
			env: map[string]string{
				"S3_ACCESS_KEY": "ak",
				"S3_SECRET_KEY": "sk",
			},
			wantErr: true,
		},
		{
			name: "missing credentials",
			env: map[string]string{
				"S3_ENDPOINT": "seaweed:8333",
			},
			wantErr: true,
		},
		{
			name: "unparseable bool keeps default",
			env: map[string]string{
				"S3_ENDPOINT":         "seaweed:8333",
				"S3_ACCESS_KEY":       "ak",
				"S3_SECRET_KEY":       "sk",
				"S3_FORCE_PATH_STYLE": "maybe",
			},
			want: Config{
				Endpoint:       "seaweed:8333",
				AccessKey:      "ak",
				SecretKey:      "sk",
				Region:         "us-east-1",
				ForcePathStyle: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := ConfigFromEnv()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ConfigFromEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Fatalf("ConfigFromEnv() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBaseEndpoint(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "bare host gets https",
			cfg:  Config{Endpoint: "seaweed:8333"},
			want: "https://seaweed:8333",
		},
		{
			name: "bare host with tls disabled gets http",
			cfg:  Config{Endpoint: "seaweed:8333", DisableTLS: true},
			want: "http://seaweed:8333",
		},
		{
			name: "explicit scheme wins over tls setting",
			cfg:  Config{Endpoint: "https://seaweed:8333", DisableTLS: true},
			want: "https://seaweed:8333",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.baseEndpoint(); got != tt.want {
				t.Fatalf("baseEndpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}
