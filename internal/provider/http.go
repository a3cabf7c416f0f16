package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultCallTimeout = 5 * time.Second

// HTTPProvider talks to the hosted auth provider over its REST surface.
// Provider error bodies are logged server-side and never propagated to
// callers verbatim.
type HTTPProvider struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// NewHTTPProvider constructs a network-backed provider client.
func NewHTTPProvider(baseURL, serviceKey string, timeout time.Duration, logger *slog.Logger) *HTTPProvider {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &HTTPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{},
		timeout:    timeout,
		logger:     logger,
	}
}

type sessionResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID string `json:"id"`
	} `json:"user"`
}

type userResponse struct {
	ID string `json:"id"`
}

// SignInWithPassword exchanges email/password for a session.
func (p *HTTPProvider) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	var out sessionResponse
	if err := p.call(ctx, http.MethodPost, "/token?grant_type=password", "", body, &out); err != nil {
		return Session{}, err
	}
	return Session{SubjectID: out.User.ID, AccessToken: out.AccessToken}, nil
}

// SignUp creates a provider identity and returns its initial session.
func (p *HTTPProvider) SignUp(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	var out sessionResponse
	err := p.call(ctx, http.MethodPost, "/signup", "", body, &out)
	if err != nil {
		return Session{}, err
	}
	return Session{SubjectID: out.User.ID, AccessToken: out.AccessToken}, nil
}

// ValidateToken resolves a bearer token to its subject id.
func (p *HTTPProvider) ValidateToken(ctx context.Context, token string) (string, error) {
	var out userResponse
	if err := p.call(ctx, http.MethodGet, "/user", token, nil, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// SignOut revokes the session behind the given token.
func (p *HTTPProvider) SignOut(ctx context.Context, token string) error {
	return p.call(ctx, http.MethodPost, "/logout", token, nil, nil)
}

// DeleteUser removes a provider identity using the admin service key.
func (p *HTTPProvider) DeleteUser(ctx context.Context, subjectID string) error {
	path := "/admin/users/" + url.PathEscape(subjectID)
	return p.call(ctx, http.MethodDelete, path, p.serviceKey, nil, nil)
}

func (p *HTTPProvider) call(ctx context.Context, method, path, bearer string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("provider: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", p.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		if p.logger != nil {
			p.logger.Error("auth provider unreachable", slog.String("path", path), slog.Any("error", err))
		}
		return ErrUnavailable
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusInternalServerError {
		p.logBody(path, res)
		return ErrUnavailable
	}
	if res.StatusCode >= http.StatusBadRequest {
		p.logBody(path, res)
		if path == "/signup" && (res.StatusCode == http.StatusUnprocessableEntity || res.StatusCode == http.StatusConflict) {
			return ErrExists
		}
		return ErrRejected
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if p.logger != nil {
			p.logger.Error("auth provider malformed response", slog.String("path", path), slog.Any("error", err))
		}
		return ErrUnavailable
	}
	return nil
}

func (p *HTTPProvider) logBody(path string, res *http.Response) {
	if p.logger == nil {
		return
	}
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
	p.logger.Warn("auth provider error response",
		slog.String("path", path),
		slog.Int("status", res.StatusCode),
		slog.String("body", string(raw)))
}

var _ Provider = (*HTTPProvider)(nil)
