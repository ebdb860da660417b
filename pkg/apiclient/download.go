package apiclient

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// Download is a decrypted payload streamed from the server. The caller
// owns Body and must close it.
type Download struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// Close releases the underlying response body.
func (d *Download) Close() error {
	return d.Body.Close()
}

// Save writes the payload into dir under the server-supplied filename and
// returns the full path. The body is consumed and closed.
func (d *Download) Save(dir string) (string, error) {
	defer func() { _ = d.Body.Close() }()

	name := d.Filename
	if name == "" {
		name = "download"
	}
	// The server sets the filename; refuse anything that would escape dir.
	name = filepath.Base(name)

	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := io.Copy(f, d.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	return path, nil
}

// newDownload wraps a streaming response. Filename comes from the
// Content-Disposition header; mime.ParseMediaType handles both the plain
// filename parameter and the RFC 5987 filename* form.
func newDownload(resp *http.Response) *Download {
	d := &Download{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}

	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			d.Filename = params["filename"]
		}
	}

	return d
}
