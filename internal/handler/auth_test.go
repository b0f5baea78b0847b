package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cleanline-pos/api/internal/auth"
	"github.com/cleanline-pos/api/internal/database"
	"github.com/cleanline-pos/api/internal/handler"
)

const testJWTSecret = "test-secret"

// --- Mock store ---

type mockAuthStore struct {
	users map[uuid.UUID]database.User
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{users: make(map[uuid.UUID]database.User)}
}

func (m *mockAuthStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	for _, u := range m.users {
		if u.Email == email && u.IsActive {
			return u, nil
		}
	}
	return database.User{}, pgx.ErrNoRows
}

func (m *mockAuthStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthStore) addUser(t *testing.T, email, password, role string) database.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u := database.User{
		ID:           uuid.New(),
		BranchID:     uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Test User",
		Role:         role,
		IsActive:     true,
	}
	m.users[u.ID] = u
	return u
}

func newAuthRouter(store *mockAuthStore) *chi.Mux {
	r := chi.NewRouter()
	handler.NewAuthHandler(store, testJWTSecret).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestLogin(t *testing.T) {
	store := newMockAuthStore()
	user := store.addUser(t, "owner@cleanline.test", "secret123", "OWNER")
	router := newAuthRouter(store)

	rec := postJSON(t, router, "/auth/login", map[string]string{
		"email":    "owner@cleanline.test",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			ID    uuid.UUID `json:"id"`
			Email string    `json:"email"`
			Role  string    `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("missing tokens in response")
	}
	if resp.User.ID != user.ID || resp.User.Role != "OWNER" {
		t.Errorf("user = %+v", resp.User)
	}

	claims, err := auth.ValidateToken(testJWTSecret, resp.AccessToken)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.UserID != user.ID || claims.BranchID != user.BranchID {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := newMockAuthStore()
	store.addUser(t, "owner@cleanline.test", "secret123", "OWNER")
	router := newAuthRouter(store)

	tests := []struct {
		name  string
		body  map[string]string
		wantC int
	}{
		{"wrong password", map[string]string{"email": "owner@cleanline.test", "password": "nope"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "ghost@cleanline.test", "password": "secret123"}, http.StatusUnauthorized},
		{"missing fields", map[string]string{"email": "owner@cleanline.test"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := postJSON(t, router, "/auth/login", tt.body); rec.Code != tt.wantC {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantC)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	store := newMockAuthStore()
	user := store.addUser(t, "owner@cleanline.test", "secret123", "OWNER")
	router := newAuthRouter(store)

	refresh, err := auth.GenerateRefreshToken(testJWTSecret, user.ID)
	if err != nil {
		t.Fatal(err)
	}

	rec := postJSON(t, router, "/auth/refresh", map[string]string{"refresh_token": refresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.ValidateToken(testJWTSecret, resp.AccessToken); err != nil {
		t.Errorf("refreshed access token invalid: %v", err)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	router := newAuthRouter(newMockAuthStore())
	rec := postJSON(t, router, "/auth/refresh", map[string]string{"refresh_token": "garbage"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
