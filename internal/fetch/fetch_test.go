package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_InvalidProxy(t *testing.T) {
	tests := []struct {
		name    string
		proxy   string
		wantErr bool
	}{
		{name: "empty", proxy: "", wantErr: false},
		{name: "valid", proxy: "http://proxy.local:3128", wantErr: false},
		{name: "no_host", proxy: "not a url", wantErr: true},
		{name: "bad_escape", proxy: "http://%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{Proxy: tt.proxy})
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_DownloadToFile(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
	}{
		{name: "successful_download", statusCode: http.StatusOK, body: "test binary content"},
		{name: "404_not_found", statusCode: http.StatusNotFound, body: "not found", wantErr: true},
		{name: "500_server_error", statusCode: http.StatusInternalServerError, body: "server error", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != DefaultUserAgent {
					t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
				}
				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Errorf("failed to write response: %v", err)
				}
			}))
			defer server.Close()

			tmpDir := t.TempDir()
			destPath := filepath.Join(tmpDir, "nested", "test-file")
			n, err := newTestClient(t, Config{}).DownloadToFile(context.Background(), server.URL, destPath)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !errors.Is(err, ErrStatus) {
					t.Errorf("expected ErrStatus, got %v", err)
				}
				if _, statErr := os.Stat(destPath); !os.IsNotExist(statErr) {
					t.Error("destination should not exist after failed download")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != int64(len(tt.body)) {
				t.Errorf("written = %d, want %d", n, len(tt.body))
			}

			content, err := os.ReadFile(destPath)
			if err != nil {
				t.Fatalf("failed to read downloaded file: %v", err)
			}
			if string(content) != tt.body {
				t.Errorf("content mismatch:\ngot:  %q\nwant: %q", string(content), tt.body)
			}

			entries, _ := os.ReadDir(filepath.Dir(destPath))
			for _, e := range entries {
				if strings.HasSuffix(e.Name(), ".tmp") {
					t.Errorf("temp file left behind: %s", e.Name())
				}
			}
		})
	}
}

func TestClient_NoRetriesByDefault(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(t, Config{}).Bytes(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestClient_RetryLogic(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	body, err := newTestClient(t, Config{Retries: 1}).Bytes(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected success after retry, got error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if string(body) != "success" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, Config{}).Bytes(ctx, server.URL)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestClient_RedirectLocation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/releases/tag/v0.35.0", http.StatusFound)
	})
	mux.HandleFunc("/releases/tag/v0.35.0", func(w http.ResponseWriter, r *http.Request) {
		t.Error("redirect should not be followed")
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, Config{})

	loc, err := c.RedirectLocation(context.Background(), server.URL+"/releases/latest")
	if err != nil {
		t.Fatalf("RedirectLocation() error = %v", err)
	}
	if !strings.HasSuffix(loc, "/releases/tag/v0.35.0") {
		t.Errorf("location = %q", loc)
	}

	loc, err = c.RedirectLocation(context.Background(), server.URL+"/plain")
	if err != nil {
		t.Fatalf("RedirectLocation() error = %v", err)
	}
	if loc != "" {
		t.Errorf("expected empty location, got %q", loc)
	}

	if _, err := c.RedirectLocation(context.Background(), server.URL+"/missing"); !errors.Is(err, ErrStatus) {
		t.Errorf("expected ErrStatus, got %v", err)
	}
}

func TestClient_UserAgentOverride(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	if _, err := newTestClient(t, Config{UserAgent: "custom/2"}).Bytes(context.Background(), server.URL); err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if got != "custom/2" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestClient_BytesSizeCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", len(r.URL.Path))))
	}))
	defer server.Close()

	c := newTestClient(t, Config{})
	c.maxBody = 8

	body, err := c.Bytes(context.Background(), server.URL+"/1234567")
	if err != nil {
		t.Fatalf("Bytes() at the cap: error = %v", err)
	}
	if len(body) != 8 {
		t.Errorf("len(body) = %d, want 8", len(body))
	}

	body, err = c.Bytes(context.Background(), server.URL+"/12345678")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Bytes() over the cap: error = %v, want ErrTooLarge", err)
	}
	if body != nil {
		t.Errorf("body = %d bytes, want nil", len(body))
	}
}
