package streamchat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lakshb/ai-chat-relay/internal/realtime"
)

const (
	testAPIKey    = "key123"
	testAPISecret = "secret456"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   map[string]any
}

func newTestClient(t *testing.T, status int, responseBody string) (*Client, *recordedRequest) {
	t.Helper()

	recorded := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded.method = r.Method
		recorded.path = r.URL.Path
		recorded.query = map[string]string{}
		for key := range r.URL.Query() {
			recorded.query[key] = r.URL.Query().Get(key)
		}
		recorded.header = r.Header.Clone()
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&recorded.body)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(responseBody))
	}))
	t.Cleanup(srv.Close)

	client, err := New(testAPIKey, testAPISecret, srv.URL)
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	return client, recorded
}

func TestNewMintsServerToken(t *testing.T) {
	client, err := New(testAPIKey, testAPISecret, "")
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	token, err := jwt.Parse(client.token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testAPISecret), nil
	})
	if err != nil {
		t.Fatalf("parsing token err: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	if claims["server"] != true {
		t.Fatalf("expected server claim, got %v", claims)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New("", testAPISecret, ""); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := New(testAPIKey, "", ""); err == nil {
		t.Fatal("expected error for missing api secret")
	}
}

func TestUserExists(t *testing.T) {
	client, recorded := newTestClient(t, http.StatusOK, `{"users":[{"id":"ada_x_com"}]}`)

	exists, err := client.UserExists(context.Background(), "ada_x_com")
	if err != nil {
		t.Fatalf("UserExists err: %v", err)
	}
	if !exists {
		t.Fatal("expected user to exist")
	}

	if recorded.method != http.MethodGet || recorded.path != "/users" {
		t.Fatalf("unexpected request: %s %s", recorded.method, recorded.path)
	}
	if recorded.query["api_key"] != testAPIKey {
		t.Fatalf("missing api_key param, got %v", recorded.query)
	}
	if recorded.header.Get("stream-auth-type") != "jwt" {
		t.Fatal("missing stream-auth-type header")
	}
	if recorded.header.Get("Authorization") == "" {
		t.Fatal("missing Authorization header")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(recorded.query["payload"]), &payload); err != nil {
		t.Fatalf("decoding payload param: %v", err)
	}
	if _, ok := payload["filter_conditions"]; !ok {
		t.Fatalf("payload missing filter_conditions: %v", payload)
	}
}

func TestUserExistsAbsent(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"users":[]}`)

	exists, err := client.UserExists(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("UserExists err: %v", err)
	}
	if exists {
		t.Fatal("expected user to be absent")
	}
}

func TestUpsertUser(t *testing.T) {
	client, recorded := newTestClient(t, http.StatusCreated, `{}`)

	u := realtime.User{ID: "ada_x_com", Name: "Ada", Email: "ada@x.com", Role: "user"}
	if err := client.UpsertUser(context.Background(), u); err != nil {
		t.Fatalf("UpsertUser err: %v", err)
	}

	if recorded.method != http.MethodPost || recorded.path != "/users" {
		t.Fatalf("unexpected request: %s %s", recorded.method, recorded.path)
	}
	users, ok := recorded.body["users"].(map[string]any)
	if !ok {
		t.Fatalf("body missing users map: %v", recorded.body)
	}
	if _, ok := users["ada_x_com"]; !ok {
		t.Fatalf("users map missing entry: %v", users)
	}
}

func TestEnsureChannel(t *testing.T) {
	client, recorded := newTestClient(t, http.StatusCreated, `{}`)

	if err := client.EnsureChannel(context.Background(), "chat-ada_x_com", "ai_bot", "AI Chat"); err != nil {
		t.Fatalf("EnsureChannel err: %v", err)
	}

	if recorded.path != "/channels/messaging/chat-ada_x_com/query" {
		t.Fatalf("unexpected path: %s", recorded.path)
	}
	data, ok := recorded.body["data"].(map[string]any)
	if !ok {
		t.Fatalf("body missing data: %v", recorded.body)
	}
	if data["created_by_id"] != "ai_bot" {
		t.Fatalf("unexpected creator: %v", data)
	}
}

func TestSendMessage(t *testing.T) {
	client, recorded := newTestClient(t, http.StatusCreated, `{}`)

	if err := client.SendMessage(context.Background(), "chat-ada_x_com", "ai_bot", "hi there"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	if recorded.path != "/channels/messaging/chat-ada_x_com/message" {
		t.Fatalf("unexpected path: %s", recorded.path)
	}
	message, ok := recorded.body["message"].(map[string]any)
	if !ok {
		t.Fatalf("body missing message: %v", recorded.body)
	}
	if message["text"] != "hi there" || message["user_id"] != "ai_bot" {
		t.Fatalf("unexpected message body: %v", message)
	}
}

func TestUpstreamErrorSurfaced(t *testing.T) {
	client, _ := newTestClient(t, http.StatusInternalServerError, `{"message":"boom"}`)

	if err := client.SendMessage(context.Background(), "chat-x", "ai_bot", "hi"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
