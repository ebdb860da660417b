//go:build integration

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

func TestFileHandler_UploadAndDownload(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", "password123", models.RoleEndUser)
	content := []byte("plaintext to seal")

	file := uploadFile(t, env, owner, "notes.txt", content)
	if file.Size != int64(len(content)) {
		t.Errorf("Expected size %d, got %d", len(content), file.Size)
	}

	// The artifact on disk is ciphertext, not the plaintext
	stored, err := env.store.GetFile(context.Background(), file.ID)
	if err != nil {
		t.Fatalf("Failed to load file row: %v", err)
	}
	sealed, err := env.artifacts.Read(stored.BlobKey)
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	if bytes.Contains(sealed, content) {
		t.Error("Artifact contains the plaintext")
	}

	w := authJSON(t, env.files.Download, owner, http.MethodGet,
		"/api/v1/files/"+file.ID, nil, map[string]string{"id": file.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("Download() status = %d, body = %s", w.Code, w.Body.String())
	}
	if !bytes.Equal(w.Body.Bytes(), content) {
		t.Error("Downloaded content does not match upload")
	}
}

func TestFileHandler_DownloadNotOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", "password123", models.RoleEndUser)
	other := env.createUser(t, "other", "password123", models.RoleEndUser)
	admin := env.createUser(t, "admin", "password123", models.RoleSysAdmin)

	file := uploadFile(t, env, owner, "notes.txt", []byte("payload"))

	w := authJSON(t, env.files.Download, other, http.MethodGet,
		"/api/v1/files/"+file.ID, nil, map[string]string{"id": file.ID})
	if w.Code != http.StatusForbidden {
		t.Errorf("Download() by stranger status = %d, want %d", w.Code, http.StatusForbidden)
	}

	w = authJSON(t, env.files.Download, admin, http.MethodGet,
		"/api/v1/files/"+file.ID, nil, map[string]string{"id": file.ID})
	if w.Code != http.StatusOK {
		t.Errorf("Download() by admin status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestFileHandler_List(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", "password123", models.RoleEndUser)
	other := env.createUser(t, "other", "password123", models.RoleEndUser)

	uploadFile(t, env, owner, "a.txt", []byte("aaa"))
	uploadFile(t, env, owner, "b.txt", []byte("bbb"))
	uploadFile(t, env, other, "c.txt", []byte("ccc"))

	w := authJSON(t, env.files.List, owner, http.MethodGet, "/api/v1/files", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("List() status = %d", w.Code)
	}
	var files []FileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &files); err != nil {
		t.Fatalf("Failed to unmarshal list: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 files, got %d", len(files))
	}
}

func TestFileHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", "password123", models.RoleEndUser)
	file := uploadFile(t, env, owner, "notes.txt", []byte("payload"))

	w := authJSON(t, env.files.Delete, owner, http.MethodDelete,
		"/api/v1/files/"+file.ID, nil, map[string]string{"id": file.ID})
	if w.Code != http.StatusNoContent {
		t.Fatalf("Delete() status = %d", w.Code)
	}

	w = authJSON(t, env.files.Download, owner, http.MethodGet,
		"/api/v1/files/"+file.ID, nil, map[string]string{"id": file.ID})
	if w.Code != http.StatusNotFound {
		t.Errorf("Download() after delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestFileHandler_EmptyUpload(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", "password123", models.RoleEndUser)

	w := authJSON(t, env.files.Upload, owner, http.MethodPost, "/api/v1/files", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Upload() without multipart body status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
