//go:build integration

package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Lightningwave/safesplit-sub000/pkg/api/auth"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/artifact"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/gate"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/secondfactor"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// recordingSender captures one-time codes instead of delivering them.
type recordingSender struct {
	mu    sync.Mutex
	codes []string
}

func (s *recordingSender) SendCode(ctx context.Context, recipient, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	return nil
}

func (s *recordingSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		t.Fatal("no code was sent")
	}
	return s.codes[len(s.codes)-1]
}

// testEnv wires the full handler stack over an in-memory store.
type testEnv struct {
	store     store.Store
	jwt       *auth.JWTService
	gate      *gate.Gate
	sender    *recordingSender
	artifacts *artifact.Store
	masterKey []byte

	auth   *AuthHandler
	users  *UserHandler
	files  *FileHandler
	shares *ShareHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbConfig := store.Config{
		Type: store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{
			Path: ":memory:",
		},
	}
	vaultStore, err := store.New(&dbConfig)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { vaultStore.Close() })

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret: "test-secret-key-that-is-at-least-32-characters-long",
		Issuer: "test",
	})
	if err != nil {
		t.Fatalf("Failed to create JWT service: %v", err)
	}

	sender := &recordingSender{}
	second := secondfactor.NewService(vaultStore, NewContactResolver(vaultStore), sender, 10*time.Minute)
	g := gate.New(gate.NewLedger(vaultStore, gate.Policy{}), second)

	artifacts, err := artifact.NewWithPath(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create artifact store: %v", err)
	}

	masterKey := make([]byte, 32)
	for i := range masterKey {
		masterKey[i] = byte(i)
	}

	return &testEnv{
		store:     vaultStore,
		jwt:       jwtService,
		gate:      g,
		sender:    sender,
		artifacts: artifacts,
		masterKey: masterKey,
		auth:      NewAuthHandler(vaultStore, jwtService, g),
		users:     NewUserHandler(vaultStore),
		files:     NewFileHandler(vaultStore, artifacts, masterKey),
		shares:    NewShareHandler(vaultStore, g, artifacts, masterKey),
	}
}

func (env *testEnv) createUser(t *testing.T, username, password string, role models.Role) *models.User {
	t.Helper()

	hash, err := models.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
	}
	if _, err := env.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func (env *testEnv) disableUser(t *testing.T, user *models.User) {
	t.Helper()
	user.Enabled = false
	if err := env.store.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to disable user: %v", err)
	}
}
