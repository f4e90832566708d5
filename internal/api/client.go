// internal/api/client.go
package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/genietools/genie-dat/pkg/core"
)

// ArchivesPath receives exported archive documents.
const ArchivesPath = "/api/v1/archives"

// StatusError is returned when the server answers with an unexpected code.
type StatusError struct {
	Op   string
	Code int
	Body string // first bytes of the response, for the log
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.Code, e.Body)
}

// Client talks to the export server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck reports whether the export server answers.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	return c.do(req, "healthcheck", http.StatusOK)
}

// Upload streams the export document at filePath together with meta as a
// multipart form.
func (c *Client) Upload(ctx context.Context, filePath string, meta core.UploadMetadata) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer file.Close()

	if meta.FileName == "" {
		meta.FileName = filepath.Base(filePath)
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	written := make(chan error, 1)
	go func() {
		err := writeForm(form, file, meta)
		if cerr := form.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
		written <- err
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ArchivesPath, pr)
	if err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("X-API-Key", c.apiKey)

	if err := c.do(req, "upload", http.StatusOK, http.StatusCreated); err != nil {
		pr.CloseWithError(err)
		return err
	}
	if err := <-written; err != nil {
		return fmt.Errorf("upload: writing form: %w", err)
	}
	return nil
}

func writeForm(w *multipart.Writer, file io.Reader, meta core.UploadMetadata) error {
	fields := [][2]string{
		{"filename", meta.FileName},
		{"version", meta.Version},
		{"fingerprint", meta.Fingerprint},
		{"complete", strconv.FormatBool(meta.Complete)},
		{"civs", strconv.Itoa(meta.Civs)},
		{"units", strconv.Itoa(meta.Units)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	part, err := w.CreateFormFile("file", meta.FileName)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

// do sends req and checks the status against want.
func (c *Client) do(req *http.Request, op string, want ...int) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	for _, code := range want {
		if resp.StatusCode == code {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
