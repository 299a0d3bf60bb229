package redfish

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/alvmarrod/redfish-verify/internal/config"
)

const sessionsPath = "/redfish/v1/SessionService/Sessions"

// Client is a session-authenticated Redfish service client
type Client struct {
	baseURL    string
	user       string
	password   string
	retries    uint64
	httpClient *http.Client

	token      string
	sessionURI string
}

// NewClient creates a client for the given service configuration
func NewClient(cfg *config.Config) *Client {
	baseURL := cfg.Host
	if !strings.Contains(baseURL, "://") {
		// BMCs speak HTTPS on the management interface
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureTLS},
	}

	return &Client{
		baseURL:  baseURL,
		user:     cfg.User,
		password: cfg.Password,
		retries:  uint64(cfg.RetryAttempts),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
		},
	}
}

// BaseURL returns the normalized service address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login creates a session on the service and keeps its token for
// subsequent requests. A failed login is fatal for the run.
func (c *Client) Login(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"UserName": c.user,
		"Password": c.password,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sessionsPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("service rejected login for user '%s' with status %d", c.user, resp.StatusCode)
	}

	token := resp.Header.Get("X-Auth-Token")
	if token == "" {
		return fmt.Errorf("service did not return a session token")
	}

	c.token = token
	c.sessionURI = resp.Header.Get("Location")
	logrus.Debugf("Session established at %s", c.sessionURI)

	return nil
}

// Logout deletes the session created by Login. Best effort; a failed
// logout only leaves a session to expire on the service side.
func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" || c.sessionURI == "" {
		return nil
	}

	sessionURL := c.sessionURI
	if strings.HasPrefix(sessionURL, "/") {
		sessionURL = c.baseURL + sessionURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, sessionURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create logout request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	c.token = ""
	c.sessionURI = ""

	return nil
}

// Get fetches one resource by its service-relative path. Network errors and
// 5xx responses are retried with exponential backoff; 4xx responses are not.
func (c *Client) Get(ctx context.Context, path string) (*Resource, error) {
	var payload []byte

	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request for %s: %w", path, err))
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("X-Auth-Token", c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request for %s failed: %w", path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read body of %s: %w", path, err)
		}

		if resp.StatusCode >= 500 {
			return fmt.Errorf("service returned status %d for %s", resp.StatusCode, path)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("service returned status %d for %s", resp.StatusCode, path))
		}

		payload = body
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return nil, err
	}

	return NewResource(path, payload)
}
