package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/gate"
)

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// writeGateRefusal maps a non-granted gate outcome to its HTTP shape.
// Grants and challenges are surface-specific and handled by the caller.
// Wrong passwords and wrong codes share one 401 shape; the caller picks
// the detail for its surface.
func writeGateRefusal(w http.ResponseWriter, outcome gate.Outcome, detail string) {
	switch outcome.Status {
	case gate.StatusLocked:
		TooManyRequests(w, "Too many failed attempts, try again later", int64(outcome.RetryAfter.Seconds()))
	default:
		UnauthorizedWithRemaining(w, detail, outcome.RemainingAttempts)
	}
}

// setDownloadHeaders prepares a binary response carrying a filename. The
// plain filename parameter keeps legacy clients working; the RFC 5987
// filename* form carries the UTF-8 original.
func setDownloadHeaders(w http.ResponseWriter, filename, contentType string, size int) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		// FormatMediaType refuses some exotic names; fall back to the
		// escaped form only.
		disposition = fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename))
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
}
