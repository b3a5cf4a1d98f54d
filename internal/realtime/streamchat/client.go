package streamchat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lakshb/ai-chat-relay/internal/realtime"
)

const (
	defaultBaseURL = "https://chat.stream-io-api.com"
	channelType    = "messaging"
)

// Client talks to the hosted Stream Chat REST API with server-side
// credentials. It implements realtime.Provider.
type Client struct {
	apiKey     string
	token      string
	baseURL    string
	httpClient *http.Client
}

// New builds a client for the given credentials. The server token is an
// HS256 JWT with the "server" claim, signed with the API secret and minted
// once for the process lifetime. baseURL may be empty to use the hosted API.
func New(apiKey, apiSecret, baseURL string) (*Client, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("stream api key and secret are required")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"server": true,
	})
	signed, err := token.SignedString([]byte(apiSecret))
	if err != nil {
		return nil, fmt.Errorf("signing server token: %w", err)
	}

	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  apiKey,
		token:   signed,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// UserExists queries the directory for an exact id match.
func (c *Client) UserExists(ctx context.Context, userID string) (bool, error) {
	filter := map[string]any{
		"filter_conditions": map[string]any{
			"id": map[string]any{"$eq": userID},
		},
	}
	payload, err := json.Marshal(filter)
	if err != nil {
		return false, fmt.Errorf("encoding user query: %w", err)
	}

	query := url.Values{"payload": {string(payload)}}
	var response struct {
		Users []struct {
			ID string `json:"id"`
		} `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &response); err != nil {
		return false, err
	}
	return len(response.Users) > 0, nil
}

// UpsertUser creates or refreshes a directory entry.
func (c *Client) UpsertUser(ctx context.Context, u realtime.User) error {
	body := map[string]any{
		"users": map[string]any{
			u.ID: map[string]any{
				"id":    u.ID,
				"name":  u.Name,
				"email": u.Email,
				"role":  u.Role,
			},
		},
	}
	return c.do(ctx, http.MethodPost, "/users", nil, body, nil)
}

// EnsureChannel queries the channel with creation enabled, which creates it
// when absent and is a no-op otherwise.
func (c *Client) EnsureChannel(ctx context.Context, channelID, createdBy, name string) error {
	body := map[string]any{
		"data": map[string]any{
			"name":          name,
			"created_by_id": createdBy,
		},
	}
	path := fmt.Sprintf("/channels/%s/%s/query", channelType, channelID)
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

// SendMessage publishes text into the channel authored by authorID.
func (c *Client) SendMessage(ctx context.Context, channelID, authorID, text string) error {
	body := map[string]any{
		"message": map[string]any{
			"text":    text,
			"user_id": authorID,
		},
	}
	path := fmt.Sprintf("/channels/%s/%s/message", channelType, channelID)
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("stream-auth-type", "jwt")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling stream chat %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("stream chat %s %s: status %d: %s", method, path, resp.StatusCode, snippet)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding stream chat response: %w", err)
		}
	}
	return nil
}
