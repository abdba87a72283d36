package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeDenylist struct {
	revoked map[string]bool
}

func (f *fakeDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

func newAuthedRequest(t *testing.T, ts *TokenService, userID string) *http.Request {
	t.Helper()
	token, err := ts.Generate(userID, TokenUseAccess)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestRequireAuth_PassesIdentity(t *testing.T) {
	ts := newTestTokenService(t)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
	})

	h := RequireAuth(ts, &fakeDenylist{revoked: map[string]bool{}})(next)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newAuthedRequest(t, ts, "user-42"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-42" {
		t.Errorf("userID in context = %q, want %q", gotUserID, "user-42")
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	ts := newTestTokenService(t)

	h := RequireAuth(ts, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("401 body is not JSON: %v", err)
	}
	if body.Error != "unauthenticated" {
		t.Errorf("error = %q, want %q", body.Error, "unauthenticated")
	}
}

func TestRequireAuth_RevokedToken(t *testing.T) {
	ts := newTestTokenService(t)

	req := newAuthedRequest(t, ts, "user-42")
	id, err := ts.Validate(BearerToken(req), TokenUseAccess)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	h := RequireAuth(ts, &fakeDenylist{revoked: map[string]bool{id.JTI: true}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run with a revoked token")
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuth_RefreshTokenRejected(t *testing.T) {
	ts := newTestTokenService(t)

	refresh, err := ts.Generate("user-42", TokenUseRefresh)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)

	h := RequireAuth(ts, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with a refresh token")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "well formed", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case-insensitive scheme", header: "bearer abc", want: "abc"},
		{name: "missing", header: "", want: ""},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(r); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentityFromContext_Anonymous(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Error("IdentityFromContext on an empty context should report anonymous")
	}
}
