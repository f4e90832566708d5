package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/genietools/genie-dat/pkg/core"
)

func writeExport(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestNew_NormalizesBaseURL(t *testing.T) {
	for _, in := range []string{"http://exports.local:5000", "http://exports.local:5000/", "http://exports.local:5000//"} {
		c := New(in, "k")
		if c.baseURL != "http://exports.local:5000" {
			t.Errorf("New(%q).baseURL = %q", in, c.baseURL)
		}
		if c.httpClient == nil || c.httpClient.Timeout == 0 {
			t.Errorf("New(%q) has no bounded http client", in)
		}
	}
}

func TestHealthcheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		cancel  bool
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
		{name: "no content is not ok", status: http.StatusNoContent, wantErr: true},
		{name: "cancelled", status: http.StatusOK, cancel: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/healthcheck" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}

			err := New(server.URL, "").Healthcheck(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Healthcheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHealthcheck_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	if err := New(url, "").Healthcheck(context.Background()); err == nil {
		t.Error("expected error for closed server")
	}
}

func TestUpload_SendsFormAndFile(t *testing.T) {
	got := map[string]string{}
	var key, content string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != ArchivesPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing form: %v", err)
			return
		}
		key = r.Header.Get("X-API-Key")
		for field, values := range r.MultipartForm.Value {
			got[field] = values[0]
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("reading file part: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		content = string(data)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	path := writeExport(t, "empires2_000000000000beef.json.gz", "gz bytes")
	meta := core.UploadMetadata{
		Version:     "VER 8.8",
		Fingerprint: "000000000000beef",
		Complete:    true,
		Civs:        2,
		Units:       40,
	}
	if err := New(server.URL, "mysecret").Upload(context.Background(), path, meta); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	want := map[string]string{
		"filename":    "empires2_000000000000beef.json.gz",
		"version":     "VER 8.8",
		"fingerprint": "000000000000beef",
		"complete":    "true",
		"civs":        "2",
		"units":       "40",
	}
	for field, v := range want {
		if got[field] != v {
			t.Errorf("field %s = %q, want %q", field, got[field], v)
		}
	}
	if key != "mysecret" {
		t.Errorf("X-API-Key = %q", key)
	}
	if content != "gz bytes" {
		t.Errorf("file content = %q", content)
	}
}

func TestUpload_ExplicitFileName(t *testing.T) {
	var name string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, hdr, err := r.FormFile("file"); err == nil {
			name = hdr.Filename
		}
		name += "|" + r.FormValue("filename")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	path := writeExport(t, "tmp123.json", "{}")
	meta := core.UploadMetadata{FileName: "aoc_10c.json"}
	if err := New(server.URL, "k").Upload(context.Background(), path, meta); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if name != "aoc_10c.json|aoc_10c.json" {
		t.Errorf("file name = %q", name)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	err := New("http://127.0.0.1:1", "k").Upload(context.Background(), filepath.Join(t.TempDir(), "gone.json"), core.UploadMetadata{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestUpload_StatusError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantBody string
	}{
		{name: "forbidden", status: http.StatusForbidden},
		{name: "conflict with reason", status: http.StatusConflict, body: "archive already uploaded\n", wantBody: "archive already uploaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			path := writeExport(t, "dup.json", "{}")
			err := New(server.URL, "k").Upload(context.Background(), path, core.UploadMetadata{})

			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StatusError, got %v", err)
			}
			if se.Op != "upload" || se.Code != tt.status || se.Body != tt.wantBody {
				t.Errorf("unexpected status error %+v", se)
			}
		})
	}
}
