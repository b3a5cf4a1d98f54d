package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lakshb/ai-chat-relay/internal/realtime"
	"github.com/lakshb/ai-chat-relay/internal/service/registration"
	"github.com/lakshb/ai-chat-relay/internal/store"
)

type fakeDirectory struct {
	users map[string]realtime.User
}

func (d *fakeDirectory) UserExists(_ context.Context, userID string) (bool, error) {
	_, ok := d.users[userID]
	return ok, nil
}

func (d *fakeDirectory) UpsertUser(_ context.Context, u realtime.User) error {
	d.users[u.ID] = u
	return nil
}

func (d *fakeDirectory) EnsureChannel(_ context.Context, _, _, _ string) error { return nil }

func (d *fakeDirectory) SendMessage(_ context.Context, _, _, _ string) error { return nil }

func setupRouter() *chi.Mux {
	directory := &fakeDirectory{users: make(map[string]realtime.User)}
	reg := registration.NewService(directory, store.NewMemoryStore())
	handler := New(reg)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRegisterUser(t *testing.T) {
	r := setupRouter()

	resp := postJSON(t, r, "/register-user", map[string]string{
		"name":  "Ada",
		"email": "ada@x.com",
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.UserID != "ada_x_com" || body.Name != "Ada" || body.Email != "ada@x.com" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRegisterUserMissingFields(t *testing.T) {
	r := setupRouter()

	resp := postJSON(t, r, "/register-user", map[string]string{"name": "Ada"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestRegisterUserInvalidBody(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/register-user", bytes.NewReader([]byte("not json")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
