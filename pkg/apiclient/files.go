package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// File represents a stored file's metadata.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFiles returns the authenticated user's files.
func (c *Client) ListFiles() ([]File, error) {
	return listResources[File](c, "/api/v1/files")
}

// UploadFile uploads a file under the given name and returns its
// metadata.
func (c *Client) UploadFile(name string, content io.Reader) (*File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/files", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp.StatusCode, respBody)
	}

	var file File
	if err := json.Unmarshal(respBody, &file); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &file, nil
}

// DownloadFile streams the decrypted payload of an owned file. The caller
// must close the returned download.
func (c *Client) DownloadFile(id string) (*Download, error) {
	resp, err := c.raw(http.MethodGet, fmt.Sprintf("/api/v1/files/%s", url.PathEscape(id)), nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return nil, decodeAPIError(resp.StatusCode, respBody)
	}

	return newDownload(resp), nil
}

// DeleteFile deletes a stored file.
func (c *Client) DeleteFile(id string) error {
	return c.delete(fmt.Sprintf("/api/v1/files/%s", url.PathEscape(id)), nil)
}
