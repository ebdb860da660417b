//go:build integration

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "password123", models.RoleEndUser)

	tests := []struct {
		name       string
		body       LoginRequest
		wantStatus int
	}{
		{
			name:       "valid credentials",
			body:       LoginRequest{Username: "alice", Password: "password123"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid password",
			body:       LoginRequest{Username: "alice", Password: "wrongpassword"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non-existent user",
			body:       LoginRequest{Username: "nobody", Password: "password123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing username",
			body:       LoginRequest{Password: "password123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing password",
			body:       LoginRequest{Username: "alice"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, env.auth.Login, "/api/v1/auth/login", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("Login() status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var resp LoginResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to unmarshal response: %v", err)
				}
				if resp.AccessToken == "" {
					t.Error("Expected access token to be set")
				}
				if resp.LandingRoute != "/dashboard" {
					t.Errorf("Expected landing route /dashboard, got %s", resp.LandingRoute)
				}
			}
		})
	}
}

func TestAuthHandler_Login_DisabledUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ghost", "password123", models.RoleEndUser)
	env.disableUser(t, user)

	w := postJSON(t, env.auth.Login, "/api/v1/auth/login", LoginRequest{Username: "ghost", Password: "password123"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Login() status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAuthHandler_Login_RemainingAttempts(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "bob", "password123", models.RoleEndUser)

	w := postJSON(t, env.auth.Login, "/api/v1/auth/login", LoginRequest{Username: "bob", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Login() status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var problem struct {
		RemainingAttempts *int `json:"remaining_attempts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if problem.RemainingAttempts == nil || *problem.RemainingAttempts != 4 {
		t.Errorf("Expected 4 remaining attempts, got %v", problem.RemainingAttempts)
	}
}

func TestAuthHandler_Login_UnknownNameMatchesWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "frank", "password123", models.RoleEndUser)

	known := postJSON(t, env.auth.Login, "/api/v1/auth/login", LoginRequest{Username: "frank", Password: "wrong"})
	unknown := postJSON(t, env.auth.Login, "/api/v1/auth/login", LoginRequest{Username: "nobody", Password: "wrong"})

	if unknown.Code != known.Code {
		t.Fatalf("Unknown name status = %d, known name status = %d", unknown.Code, known.Code)
	}

	var knownProblem, unknownProblem struct {
		Detail            string `json:"detail"`
		RemainingAttempts *int   `json:"remaining_attempts"`
	}
	if err := json.Unmarshal(known.Body.Bytes(), &knownProblem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if err := json.Unmarshal(unknown.Body.Bytes(), &unknownProblem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if unknownProblem.Detail != knownProblem.Detail {
		t.Errorf("Detail differs: %q vs %q", unknownProblem.Detail, knownProblem.Detail)
	}
	if unknownProblem.RemainingAttempts == nil {
		t.Fatal("Expected remaining_attempts for unknown name")
	}
	if *unknownProblem.RemainingAttempts != *knownProblem.RemainingAttempts {
		t.Errorf("Remaining attempts differ: %d vs %d", *unknownProblem.RemainingAttempts, *knownProblem.RemainingAttempts)
	}

	// Unknown names lock out on the same schedule as real accounts.
	for i := 0; i < 4; i++ {
		postJSON(t, env.auth.Login, "/api/v1/auth/login", LoginRequest{Username: "nobody", Password: "wrong"})
	}
	w := postJSON(t, env.auth.Login, "/api/v1/auth/login", LoginRequest{Username: "nobody", Password: "wrong"})
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Locked unknown name status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

func TestAuthHandler_Login_LockoutAfterMaxFailures(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "carol", "password123", models.RoleEndUser)

	// All five failures are 401s; the fifth exhausts the budget and the
	// lock applies from the next submission on.
	for i := 0; i < 5; i++ {
		w := postJSON(t, env.auth.Login, "/api/v1/auth/login", LoginRequest{Username: "carol", Password: fmt.Sprintf("wrong%d", i)})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("Attempt %d status = %d, want %d, body = %s", i+1, w.Code, http.StatusUnauthorized, w.Body.String())
		}
		if i == 4 {
			var problem struct {
				RemainingAttempts *int `json:"remaining_attempts"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &problem); err != nil {
				t.Fatalf("Failed to unmarshal problem: %v", err)
			}
			if problem.RemainingAttempts == nil || *problem.RemainingAttempts != 0 {
				t.Errorf("Expected 0 remaining attempts on the final denial, got %v", problem.RemainingAttempts)
			}
		}
	}

	// The correct password is refused while locked
	w := postJSON(t, env.auth.Login, "/api/v1/auth/login", LoginRequest{Username: "carol", Password: "password123"})
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Locked login status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header on locked response")
	}
}

func TestAuthHandler_TwoFactorFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "dave", "password123", models.RoleEndUser)
	user.TwoFactorEnabled = true
	if err := env.store.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to enable second factor: %v", err)
	}

	// Primary phase yields a challenge, not tokens
	w := postJSON(t, env.auth.Login, "/api/v1/auth/login", LoginRequest{Username: "dave", Password: "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("Login() status = %d, body = %s", w.Code, w.Body.String())
	}
	var challenge ChallengeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &challenge); err != nil {
		t.Fatalf("Failed to unmarshal challenge: %v", err)
	}
	if challenge.Status != "challenge_required" {
		t.Fatalf("Expected challenge_required, got %q", challenge.Status)
	}
	if challenge.Method != models.ChallengeMethodEmail {
		t.Errorf("Expected email method, got %q", challenge.Method)
	}
	if challenge.ChallengeToken == "" {
		t.Fatal("Expected challenge token")
	}

	// Wrong code burns an attempt
	w = postJSON(t, env.auth.Verify2FA, "/api/v1/auth/2fa/verify", VerifyRequest{
		ChallengeToken: challenge.ChallengeToken,
		Code:           "000000",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Verify2FA() wrong code status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// The delivered code completes the grant. The code is single-use, so
	// the wrong-code attempt above must not have consumed it.
	w = postJSON(t, env.auth.Verify2FA, "/api/v1/auth/2fa/verify", VerifyRequest{
		ChallengeToken: challenge.ChallengeToken,
		Code:           env.sender.lastCode(t),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Verify2FA() status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("Expected access token after second factor")
	}

	// Replaying the consumed code is refused
	w = postJSON(t, env.auth.Verify2FA, "/api/v1/auth/2fa/verify", VerifyRequest{
		ChallengeToken: challenge.ChallengeToken,
		Code:           env.sender.lastCode(t),
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Replayed code status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "erin", "password123", models.RoleEndUser)

	tokenPair, err := env.jwt.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("Failed to generate token pair: %v", err)
	}

	tests := []struct {
		name         string
		refreshToken string
		wantStatus   int
	}{
		{
			name:         "valid refresh token",
			refreshToken: tokenPair.RefreshToken,
			wantStatus:   http.StatusOK,
		},
		{
			name:         "access token rejected",
			refreshToken: tokenPair.AccessToken,
			wantStatus:   http.StatusUnauthorized,
		},
		{
			name:         "invalid refresh token",
			refreshToken: "invalid-token",
			wantStatus:   http.StatusUnauthorized,
		},
		{
			name:         "empty refresh token",
			refreshToken: "",
			wantStatus:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, env.auth.Refresh, "/api/v1/auth/refresh", RefreshRequest{RefreshToken: tt.refreshToken})
			if w.Code != tt.wantStatus {
				t.Errorf("Refresh() status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
