package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Lightningwave/safesplit-sub000/internal/logger"
	"github.com/Lightningwave/safesplit-sub000/pkg/api/middleware"
	"github.com/Lightningwave/safesplit-sub000/pkg/metrics"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/artifact"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/gate"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/sealing"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/split"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// ShareHandler manages share lifecycles and the password-gated retrieval
// surface behind share tokens.
type ShareHandler struct {
	store     store.Store
	gate      *gate.Gate
	artifacts *artifact.Store
	masterKey []byte
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(s store.Store, g *gate.Gate, artifacts *artifact.Store, masterKey []byte) *ShareHandler {
	return &ShareHandler{
		store:     s,
		gate:      g,
		artifacts: artifacts,
		masterKey: masterKey,
	}
}

// ShareResponse is the owner-facing representation of a share.
type ShareResponse struct {
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

func shareToResponse(s *models.Share) ShareResponse {
	recipients := make([]string, 0, len(s.Fragments))
	seen := make(map[string]struct{}, len(s.Fragments))
	for _, f := range s.Fragments {
		if _, ok := seen[f.Recipient]; ok {
			continue
		}
		seen[f.Recipient] = struct{}{}
		recipients = append(recipients, f.Recipient)
	}
	return ShareResponse{
		ID:            s.ID,
		Token:         s.Token,
		FileID:        s.FileID,
		TotalShares:   s.TotalShares,
		Threshold:     s.Threshold,
		Recipients:    recipients,
		SecondFactor:  s.RequireSecondFactor,
		ExpiresAt:     s.ExpiresAt,
		MaxDownloads:  s.MaxDownloads,
		DownloadCount: s.DownloadCount,
		CreatedAt:     s.CreatedAt,
	}
}

// Create handles POST /api/v1/shares.
// Splits the file key per the descriptor and records the share with its
// fragments in one transaction.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	var desc split.Descriptor
	if !decodeJSONBody(w, r, &desc) {
		return
	}
	if desc.FileID == "" {
		BadRequest(w, "file_id is required")
		return
	}
	if err := desc.Validate(); err != nil {
		UnprocessableEntity(w, err.Error())
		return
	}

	file, err := h.store.GetFile(r.Context(), desc.FileID)
	if err != nil {
		if errors.Is(err, models.ErrFileNotFound) {
			NotFound(w, "File not found")
			return
		}
		InternalServerError(w, "Failed to load file")
		return
	}
	if file.OwnerID != claims.UserID {
		Forbidden(w, "Not the file owner")
		return
	}

	dataKey, err := sealing.UnwrapKey(h.masterKey, file.SealedKey)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Key unwrap failed",
			logger.KeyFileID, file.ID, logger.KeyError, err.Error())
		InternalServerError(w, "Failed to create share")
		return
	}
	fragments, err := split.SplitKey(dataKey, &desc)
	if err != nil {
		InternalServerError(w, "Failed to create share")
		return
	}

	token, err := models.GenerateShareToken()
	if err != nil {
		InternalServerError(w, "Failed to create share")
		return
	}
	passwordHash, err := models.HashPassword(desc.Password)
	if err != nil {
		InternalServerError(w, "Failed to create share")
		return
	}

	share := &models.Share{
		Token:               token,
		FileID:              file.ID,
		OwnerID:             claims.UserID,
		PasswordHash:        passwordHash,
		TotalShares:         desc.TotalShares,
		Threshold:           desc.Threshold,
		RequireSecondFactor: desc.RequireSecondFactor,
		ExpiresAt:           desc.ExpiresAt,
		MaxDownloads:        desc.MaxDownloads,
	}
	share.Fragments = make([]models.ShareFragment, len(fragments))
	for i, f := range fragments {
		share.Fragments[i] = models.ShareFragment{
			Index:     f.Index,
			Recipient: f.Recipient,
			Payload:   f.Payload,
		}
	}

	if _, err := h.store.CreateShare(r.Context(), share); err != nil {
		InternalServerError(w, "Failed to create share")
		return
	}

	logger.InfoCtx(r.Context(), "Share created",
		logger.KeyFileID, file.ID,
		logger.KeyShareToken, token)
	WriteJSONCreated(w, shareToResponse(share))
}

// List handles GET /api/v1/shares.
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	shares, err := h.store.ListSharesByOwner(r.Context(), claims.UserID)
	if err != nil {
		InternalServerError(w, "Failed to list shares")
		return
	}
	responses := make([]ShareResponse, len(shares))
	for i, s := range shares {
		responses[i] = shareToResponse(s)
	}
	WriteJSONOK(w, responses)
}

// Delete handles DELETE /api/v1/shares/{token}.
// Revocation removes the share, its fragments, and any gate state keyed
// to the share principal.
func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	share, err := h.store.GetShareByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, models.ErrShareNotFound) {
			NotFound(w, "Share not found")
			return
		}
		InternalServerError(w, "Failed to load share")
		return
	}
	if share.OwnerID != claims.UserID && !claims.IsAdmin() {
		Forbidden(w, "Not the share owner")
		return
	}

	if err := h.store.DeleteShare(r.Context(), share.Token); err != nil {
		InternalServerError(w, "Failed to delete share")
		return
	}
	WriteNoContent(w)
}

// AccessRequest is the password submission for a share.
type AccessRequest struct {
	Password string `json:"password"`
}

// ShareVerifyRequest is the second-factor submission for a share.
type ShareVerifyRequest struct {
	Code string `json:"code"`
}

// Access handles POST /api/v1/shares/{token}/access.
// A correct password on a one-factor share streams the file in the same
// response. Two-factor shares get a challenge; the client answers it via
// Verify using the same share token.
func (h *ShareHandler) Access(w http.ResponseWriter, r *http.Request) {
	var req AccessRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	share, ok := h.loadLiveShare(w, r)
	if !ok {
		return
	}

	ctx := logger.WithContext(r.Context(),
		logger.FromContext(r.Context()).WithSurface("share").WithShareToken(share.Token))

	outcome, err := h.gate.SubmitPrimary(ctx, gate.Principal{
		ID:           share.PrincipalID(),
		SecretHash:   share.PasswordHash,
		SecondFactor: share.RequireSecondFactor,
	}, req.Password)
	if err != nil {
		logger.ErrorCtx(ctx, "Share access check failed", logger.KeyError, err.Error())
		InternalServerError(w, "Failed to check credentials")
		return
	}

	switch outcome.Status {
	case gate.StatusGranted:
		h.serveShare(w, r.WithContext(ctx), share)
	case gate.StatusChallenge:
		WriteJSONOK(w, ChallengeResponse{
			Status: "challenge_required",
			Method: outcome.ChallengeMethod,
		})
	default:
		writeGateRefusal(w, outcome, "Invalid share password")
	}
}

// Verify handles POST /api/v1/shares/{token}/verify.
func (h *ShareHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req ShareVerifyRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	share, ok := h.loadLiveShare(w, r)
	if !ok {
		return
	}

	ctx := logger.WithContext(r.Context(),
		logger.FromContext(r.Context()).WithSurface("share").WithShareToken(share.Token))

	outcome, err := h.gate.SubmitSecondFactor(ctx, gate.Principal{
		ID:           share.PrincipalID(),
		SecretHash:   share.PasswordHash,
		SecondFactor: share.RequireSecondFactor,
	}, req.Code)
	if err != nil {
		logger.ErrorCtx(ctx, "Share verification failed", logger.KeyError, err.Error())
		InternalServerError(w, "Failed to check code")
		return
	}

	if outcome.Status != gate.StatusGranted {
		writeGateRefusal(w, outcome, "Invalid verification code")
		return
	}
	h.serveShare(w, r.WithContext(ctx), share)
}

// loadLiveShare resolves the token from the URL and rejects expired
// shares before any credential is examined. Unknown tokens are plain 404s
// since no gate state exists for them.
func (h *ShareHandler) loadLiveShare(w http.ResponseWriter, r *http.Request) (*models.Share, bool) {
	share, err := h.store.GetShareByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, models.ErrShareNotFound) {
			NotFound(w, "Share not found")
			return nil, false
		}
		InternalServerError(w, "Failed to load share")
		return nil, false
	}
	if share.Expired(time.Now()) {
		metrics.ShareDownloads.WithLabelValues(metrics.ResultExpired).Inc()
		Gone(w, "Share has expired")
		return nil, false
	}
	return share, true
}

// serveShare claims a download slot, reconstructs the file key from the
// stored fragments, and streams the plaintext. The claim happens first so
// a ceiling of N admits exactly N grants even under concurrency.
func (h *ShareHandler) serveShare(w http.ResponseWriter, r *http.Request, share *models.Share) {
	if err := h.store.ClaimDownload(r.Context(), share.Token); err != nil {
		if errors.Is(err, models.ErrDownloadsExhausted) {
			metrics.ShareDownloads.WithLabelValues(metrics.ResultExhausted).Inc()
			Gone(w, "Download limit reached")
			return
		}
		InternalServerError(w, "Failed to claim download")
		return
	}

	file, err := h.store.GetFile(r.Context(), share.FileID)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Shared file missing",
			logger.KeyFileID, share.FileID, logger.KeyError, err.Error())
		InternalServerError(w, "Failed to load file")
		return
	}

	fragments := make([]split.Fragment, 0, share.Threshold)
	for _, f := range share.Fragments {
		fragments = append(fragments, split.Fragment{
			Index:     f.Index,
			Recipient: f.Recipient,
			Payload:   f.Payload,
		})
		if len(fragments) == share.Threshold {
			break
		}
	}
	dataKey, err := split.CombineKey(fragments, share.Threshold)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Key reconstruction failed",
			logger.KeyFileID, file.ID, logger.KeyError, err.Error())
		InternalServerError(w, "Failed to open file")
		return
	}

	sealed, err := h.artifacts.Read(file.BlobKey)
	if err != nil {
		InternalServerError(w, "Failed to open file")
		return
	}
	plaintext, err := sealing.Open(dataKey, sealed)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Unseal failed",
			logger.KeyFileID, file.ID, logger.KeyError, err.Error())
		InternalServerError(w, "Failed to open file")
		return
	}

	metrics.ShareDownloads.WithLabelValues(metrics.ResultServed).Inc()
	logger.InfoCtx(r.Context(), "Share download served",
		logger.KeyFileID, file.ID,
		logger.KeyFilename, file.Name,
		logger.KeySize, int64(len(plaintext)))

	setDownloadHeaders(w, file.Name, file.ContentType, len(plaintext))
	w.WriteHeader(http.StatusOK)
	w.Write(plaintext)
}
