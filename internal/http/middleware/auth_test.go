package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/facegate/facegate/pkg/auth"
	"github.com/facegate/facegate/pkg/domain"
)

func newTestSessionService() *auth.SessionService {
	return auth.NewSessionService(auth.SessionConfig{
		JWTSecret: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:    "facegate-test",
	}, nil, nil)
}

func testUser() *domain.User {
	return &domain.User{
		ID:               uuid.New(),
		Email:            "alice@example.com",
		Role:             domain.RoleClient,
		Status:           domain.StatusActive,
		ProfileCompleted: true,
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response["error"]
}

func TestAuth_MissingToken(t *testing.T) {
	sessions := newTestSessionService()

	handler := Auth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if got := decodeError(t, w); got != "missing authorization" {
		t.Errorf("got error %q, want %q", got, "missing authorization")
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	sessions := newTestSessionService()

	handler := Auth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if got := decodeError(t, w); got != "invalid or expired token" {
		t.Errorf("got error %q, want %q", got, "invalid or expired token")
	}
}

func TestAuth_ValidBearerToken(t *testing.T) {
	sessions := newTestSessionService()
	user := testUser()

	token, _, err := sessions.IssueAccessToken(user, false)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	called := false
	handler := Auth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true

		userID, ok := GetUserID(r.Context())
		if !ok {
			t.Error("user ID should be in context")
		}
		if userID != user.ID {
			t.Errorf("got user ID %s, want %s", userID, user.ID)
		}

		claims, ok := GetClaims(r.Context())
		if !ok {
			t.Fatal("claims should be in context")
		}
		if claims.Email != user.Email {
			t.Errorf("got email %q, want %q", claims.Email, user.Email)
		}

		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Error("handler should have been called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuth_TokenFromCookie(t *testing.T) {
	sessions := newTestSessionService()
	user := testUser()

	token, _, err := sessions.IssueAccessToken(user, false)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	called := false
	handler := Auth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Error("handler should have been called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRequireFaceVerified(t *testing.T) {
	sessions := newTestSessionService()
	user := testUser()

	chain := func(next http.Handler) http.Handler {
		return Auth(sessions)(RequireFaceVerified()(next))
	}

	t.Run("full session token passes", func(t *testing.T) {
		token, _, err := sessions.IssueAccessToken(user, false)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		called := false
		handler := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if !called {
			t.Error("handler should have been called")
		}
	})

	t.Run("face challenge token rejected", func(t *testing.T) {
		token, _, err := sessions.IssueAccessToken(user, true)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		handler := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("got status %d, want %d", w.Code, http.StatusForbidden)
		}
		if got := decodeError(t, w); got != "face verification required" {
			t.Errorf("got error %q, want %q", got, "face verification required")
		}
	})

	t.Run("profile completion token rejected", func(t *testing.T) {
		pending := testUser()
		pending.Status = domain.StatusPending
		pending.ProfileCompleted = false

		token, _, err := sessions.IssueAccessToken(pending, false)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		handler := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("got status %d, want %d", w.Code, http.StatusForbidden)
		}
		if got := decodeError(t, w); got != "profile completion required" {
			t.Errorf("got error %q, want %q", got, "profile completion required")
		}
	})
}

func TestRequireFaceVerified_PendingAdminCannotReachAdminRoutes(t *testing.T) {
	sessions := newTestSessionService()

	admin := testUser()
	admin.Role = domain.RoleAdmin
	admin.Status = domain.StatusPending
	admin.ProfileCompleted = false

	// The token login issues for a pending account has the face flag
	// unset; it must still not pass the full-session gate.
	token, _, err := sessions.IssueAccessToken(admin, false)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	handler := Auth(sessions)(RequireFaceVerified()(RequireRole(domain.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))))

	req := httptest.NewRequest("POST", "/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("got status %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRequireRole(t *testing.T) {
	sessions := newTestSessionService()

	chain := func(next http.Handler) http.Handler {
		return Auth(sessions)(RequireRole(domain.RoleAdmin)(next))
	}

	t.Run("admin passes", func(t *testing.T) {
		admin := testUser()
		admin.Role = domain.RoleAdmin

		token, _, err := sessions.IssueAccessToken(admin, false)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		called := false
		handler := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if !called {
			t.Error("handler should have been called")
		}
	})

	t.Run("client rejected", func(t *testing.T) {
		token, _, err := sessions.IssueAccessToken(testUser(), false)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		handler := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("got status %d, want %d", w.Code, http.StatusForbidden)
		}
		if got := decodeError(t, w); got != "insufficient permissions" {
			t.Errorf("got error %q, want %q", got, "insufficient permissions")
		}
	})
}
