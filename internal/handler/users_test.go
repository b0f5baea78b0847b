package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/cleanline-pos/api/internal/database"
	"github.com/cleanline-pos/api/internal/enum"
	"github.com/cleanline-pos/api/internal/handler"
)

type mockUserStore struct {
	users map[uuid.UUID]database.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]database.User)}
}

func (m *mockUserStore) ListUsersByBranch(_ context.Context, branchID uuid.UUID) ([]database.User, error) {
	var out []database.User
	for _, u := range m.users {
		if u.BranchID == branchID && u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	for _, u := range m.users {
		if u.Email == arg.Email {
			return database.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	u := database.User{
		ID:           uuid.New(),
		BranchID:     arg.BranchID,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		Name:         arg.Name,
		Role:         arg.Role,
		IsActive:     true,
	}
	m.users[u.ID] = u
	return u, nil
}

func newUserRouter(store *mockUserStore) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/branches/{bid}/users", func(r chi.Router) {
		handler.NewUserHandler(store).RegisterRoutes(r)
	})
	return r
}

func TestUserList(t *testing.T) {
	store := newMockUserStore()
	branchID := uuid.New()
	store.users[uuid.New()] = database.User{ID: uuid.New(), BranchID: branchID, Name: "Olga", Role: enum.UserRoleReceiver, IsActive: true}
	store.users[uuid.New()] = database.User{ID: uuid.New(), BranchID: uuid.New(), Name: "Elsewhere", Role: enum.UserRoleReceiver, IsActive: true}

	router := newUserRouter(store)
	rec := doRequest(t, router, http.MethodGet, "/branches/"+branchID.String()+"/users/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp []struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 1 || resp[0].Name != "Olga" {
		t.Errorf("users = %+v", resp)
	}
}

func TestUserCreate(t *testing.T) {
	store := newMockUserStore()
	branchID := uuid.New()
	router := newUserRouter(store)

	rec := doRequest(t, router, http.MethodPost, "/branches/"+branchID.String()+"/users/",
		`{"email":"olga@cleanline.ru","password":"secret123","name":"Olga","role":"RECEIVER"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	stored := store.users[uuid.MustParse(resp.ID)]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")); err != nil {
		t.Error("stored hash does not match password")
	}

	// Same email again.
	rec = doRequest(t, router, http.MethodPost, "/branches/"+branchID.String()+"/users/",
		`{"email":"olga@cleanline.ru","password":"other","name":"Olga 2","role":"RECEIVER"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate email status = %d, want 409", rec.Code)
	}
}

func TestUserCreateValidation(t *testing.T) {
	router := newUserRouter(newMockUserStore())
	base := "/branches/" + uuid.New().String() + "/users/"

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"x","name":"N","role":"RECEIVER"}`},
		{"missing password", `{"email":"a@b.c","name":"N","role":"RECEIVER"}`},
		{"missing name", `{"email":"a@b.c","password":"x","role":"RECEIVER"}`},
		{"bad role", `{"email":"a@b.c","password":"x","name":"N","role":"JANITOR"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doRequest(t, router, http.MethodPost, base, tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
