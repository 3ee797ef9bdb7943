package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Client talks to an identity service. The customer/staff service and the
// driver credential service share the same wire shape but live at
// independent base URLs with independent credential namespaces.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates an identity-service client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// LoginRequest is the credential pair sent to POST /login. Identifier is
// a username or email depending on the deployment.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse is the identity service's successful login payload.
type LoginResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// RegisterRequest is the profile sent to POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// RegisterResponse is the identity service's successful register payload.
// Note: registration does not return a token.
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}

// Login authenticates a credential pair. A non-2xx response becomes an
// AuthError carrying the server message when present; network failures
// become a TransportError.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.postJSON(ctx, "/login", req, &out, "invalid credentials"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.postJSON(ctx, "/register", req, &out, "registration failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile pushes a profile change for the authenticated user.
func (c *Client) UpdateProfile(ctx context.Context, token string, profile map[string]any) error {
	return c.doJSON(ctx, http.MethodPut, "/profile", token, profile, nil, "profile update failed")
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any, fallbackMsg string) error {
	return c.doJSON(ctx, http.MethodPost, path, "", in, out, fallbackMsg)
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any, fallbackMsg string) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		msg := env.Message
		if msg == "" {
			msg = fallbackMsg
		}
		return &AuthError{Message: msg}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Op: method + " " + path, Err: err}
		}
	}
	return nil
}
