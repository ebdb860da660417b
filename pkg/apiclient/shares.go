package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"
)

// Share represents a share link as seen by its owner.
type Share struct {
	ID            string     `json:"id"`
	Token         string     `json:"token"`
	FileID        string     `json:"file_id"`
	TotalShares   int        `json:"total_shares"`
	Threshold     int        `json:"threshold"`
	Recipients    []string   `json:"recipients"`
	SecondFactor  bool       `json:"require_second_factor"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	MaxDownloads  *int64     `json:"max_downloads,omitempty"`
	DownloadCount int64      `json:"download_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateShareRequest is the request to create a share link.
type CreateShareRequest struct {
	FileID              string     `json:"file_id"`
	TotalShares         int        `json:"total_shares"`
	Threshold           int        `json:"threshold"`
	Recipients          []string   `json:"recipients"`
	Password            string     `json:"password"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	MaxDownloads        *int64     `json:"max_downloads,omitempty"`
	RequireSecondFactor bool       `json:"require_second_factor,omitempty"`
}

// Challenge describes a pending second-factor step on a share access.
type Challenge struct {
	Method string `json:"method"`
}

// ShareAccess is the outcome of a share access attempt. Exactly one of
// Challenge and Download is set.
type ShareAccess struct {
	Challenge *Challenge
	Download  *Download
}

// ListShares returns the authenticated user's share links.
func (c *Client) ListShares() ([]Share, error) {
	return listResources[Share](c, "/api/v1/shares")
}

// CreateShare creates a new share link.
func (c *Client) CreateShare(req *CreateShareRequest) (*Share, error) {
	return createResource[Share](c, "/api/v1/shares", req)
}

// DeleteShare revokes a share link.
func (c *Client) DeleteShare(token string) error {
	return c.delete(fmt.Sprintf("/api/v1/shares/%s", url.PathEscape(token)), nil)
}

// AccessShare submits the share password. A grant streams the payload; a
// share that demands a second factor returns a challenge, after which the
// caller completes the exchange with VerifyShare.
//
// No authentication token is needed; the share token is the identity.
func (c *Client) AccessShare(token, password string) (*ShareAccess, error) {
	req := struct {
		Password string `json:"password"`
	}{
		Password: password,
	}
	return c.negotiate(fmt.Sprintf("/api/v1/shares/%s/access", url.PathEscape(token)), req)
}

// VerifyShare completes a share challenge with the delivered code.
func (c *Client) VerifyShare(token, code string) (*ShareAccess, error) {
	req := struct {
		Code string `json:"code"`
	}{
		Code: code,
	}
	return c.negotiate(fmt.Sprintf("/api/v1/shares/%s/verify", url.PathEscape(token)), req)
}

// negotiate posts to a share endpoint and dispatches on the response
// Content-Type: JSON means a challenge notice, anything else is the
// payload itself.
func (c *Client) negotiate(path string, body any) (*ShareAccess, error) {
	resp, err := c.raw(http.MethodPost, path, body)
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

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		defer func() { _ = resp.Body.Close() }()

		var challenge Challenge
		if err := json.NewDecoder(resp.Body).Decode(&challenge); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &ShareAccess{Challenge: &challenge}, nil
	}

	return &ShareAccess{Download: newDownload(resp)}, nil
}
