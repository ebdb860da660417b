package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Lightningwave/safesplit-sub000/internal/logger"
	"github.com/Lightningwave/safesplit-sub000/pkg/api/middleware"
	"github.com/Lightningwave/safesplit-sub000/pkg/metrics"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/artifact"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/sealing"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// maxUploadBytes caps the multipart body of an upload.
const maxUploadBytes = 128 << 20

// FileHandler handles sealed file upload, listing, and owner download.
type FileHandler struct {
	store     store.Store
	artifacts *artifact.Store
	masterKey []byte
}

// NewFileHandler creates a new FileHandler. masterKey wraps per-file data
// keys before they are persisted.
func NewFileHandler(s store.Store, artifacts *artifact.Store, masterKey []byte) *FileHandler {
	return &FileHandler{
		store:     s,
		artifacts: artifacts,
		masterKey: masterKey,
	}
}

// FileResponse is the metadata representation of a stored file.
type FileResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

func fileToResponse(f *models.StoredFile) FileResponse {
	return FileResponse{
		ID:          f.ID,
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        f.Size,
		CreatedAt:   f.CreatedAt,
	}
}

// Upload handles POST /api/v1/files.
// Seals the uploaded payload under a fresh data key and stores ciphertext
// and metadata separately.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		BadRequest(w, "Multipart field 'file' is required")
		return
	}
	defer file.Close()

	plaintext, err := io.ReadAll(file)
	if err != nil {
		BadRequest(w, "Failed to read upload")
		return
	}
	if len(plaintext) == 0 {
		BadRequest(w, "Uploaded file is empty")
		return
	}

	dataKey, err := sealing.GenerateKey()
	if err != nil {
		InternalServerError(w, "Failed to seal file")
		return
	}
	sealed, err := sealing.Seal(dataKey, plaintext)
	if err != nil {
		InternalServerError(w, "Failed to seal file")
		return
	}
	wrappedKey, err := sealing.WrapKey(h.masterKey, dataKey)
	if err != nil {
		InternalServerError(w, "Failed to seal file")
		return
	}

	id := uuid.NewString()
	blobKey := id[:2] + "/" + id
	if err := h.artifacts.Write(blobKey, sealed); err != nil {
		logger.ErrorCtx(r.Context(), "Artifact write failed", logger.KeyError, err.Error())
		InternalServerError(w, "Failed to store file")
		return
	}

	stored := &models.StoredFile{
		ID:          id,
		OwnerID:     claims.UserID,
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(plaintext)),
		BlobKey:     blobKey,
		SealedKey:   wrappedKey,
	}
	if _, err := h.store.CreateFile(r.Context(), stored); err != nil {
		h.artifacts.Delete(blobKey)
		InternalServerError(w, "Failed to store file")
		return
	}

	metrics.FilesSealed.Inc()
	metrics.SealedBytes.Add(float64(len(plaintext)))
	logger.InfoCtx(r.Context(), "File sealed",
		logger.KeyFileID, id,
		logger.KeyFilename, header.Filename,
		logger.KeySize, stored.Size)

	WriteJSONCreated(w, fileToResponse(stored))
}

// List handles GET /api/v1/files.
// Returns the authenticated user's files.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	files, err := h.store.ListFilesByOwner(r.Context(), claims.UserID)
	if err != nil {
		InternalServerError(w, "Failed to list files")
		return
	}

	responses := make([]FileResponse, len(files))
	for i, f := range files {
		responses[i] = fileToResponse(f)
	}
	WriteJSONOK(w, responses)
}

// Download handles GET /api/v1/files/{id}.
// Unseals and streams a file back to its owner.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	stored, err := h.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrFileNotFound) {
			NotFound(w, "File not found")
			return
		}
		InternalServerError(w, "Failed to load file")
		return
	}

	if stored.OwnerID != claims.UserID && !claims.IsAdmin() {
		Forbidden(w, "Not the file owner")
		return
	}

	plaintext, err := h.unseal(stored)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Unseal failed",
			logger.KeyFileID, stored.ID, logger.KeyError, err.Error())
		InternalServerError(w, "Failed to open file")
		return
	}

	setDownloadHeaders(w, stored.Name, stored.ContentType, len(plaintext))
	w.WriteHeader(http.StatusOK)
	w.Write(plaintext)
}

// Delete handles DELETE /api/v1/files/{id}.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	stored, err := h.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrFileNotFound) {
			NotFound(w, "File not found")
			return
		}
		InternalServerError(w, "Failed to load file")
		return
	}
	if stored.OwnerID != claims.UserID && !claims.IsAdmin() {
		Forbidden(w, "Not the file owner")
		return
	}

	if err := h.store.DeleteFile(r.Context(), stored.ID); err != nil {
		InternalServerError(w, "Failed to delete file")
		return
	}
	// Ciphertext cleanup is best effort; an orphaned blob is unreadable
	// without the deleted key row.
	if err := h.artifacts.Delete(stored.BlobKey); err != nil {
		logger.WarnCtx(r.Context(), "Artifact cleanup failed",
			logger.KeyFileID, stored.ID, logger.KeyError, err.Error())
	}

	WriteNoContent(w)
}

// unseal recovers the plaintext of a stored file via its wrapped data key.
func (h *FileHandler) unseal(stored *models.StoredFile) ([]byte, error) {
	dataKey, err := sealing.UnwrapKey(h.masterKey, stored.SealedKey)
	if err != nil {
		return nil, err
	}
	sealed, err := h.artifacts.Read(stored.BlobKey)
	if err != nil {
		return nil, err
	}
	return sealing.Open(dataKey, sealed)
}
