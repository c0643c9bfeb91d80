package provisioner

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, "test-token")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		token   string
		wantErr bool
	}{
		{
			name:    "valid http",
			baseURL: "http://192.168.0.3:5000",
			token:   "tok",
		},
		{
			name:    "valid https with path",
			baseURL: "https://provisioner.example.com/",
			token:   "tok",
		},
		{
			name:    "missing scheme",
			baseURL: "provisioner.example.com",
			token:   "tok",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			baseURL: "ftp://provisioner.example.com",
			token:   "tok",
			wantErr: true,
		},
		{
			name:    "empty token",
			baseURL: "http://provisioner.example.com",
			token:   "  ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.baseURL, tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
