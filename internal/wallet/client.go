package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
)

const (
	defaultBaseURL = "https://walletobjects.googleapis.com/walletobjects/v1"
	issuerScope    = "https://www.googleapis.com/auth/wallet_object.issuer"
)

// ErrClassProvisioning is returned when the wallet API answers a class
// lookup or create with an unexpected status.
var ErrClassProvisioning = errors.New("wallet class provisioning failed")

// ErrObjectCreation is returned when an object create request fails.
var ErrObjectCreation = errors.New("wallet object creation failed")

// EnsureResult reports the terminal state of a class provisioning call.
type EnsureResult int

const (
	// ClassCreated means the class was missing and has been created.
	ClassCreated EnsureResult = iota
	// ClassAlreadyExists means the class was already provisioned.
	ClassAlreadyExists
)

// Client issues authenticated requests against the Wallet Objects REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientOption configures the Client during construction.
type ClientOption func(*Client)

// WithBaseURL overrides the wallet API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient constructs a Client around an already-authenticated HTTP client.
func NewClient(httpClient *http.Client, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	c := &Client{httpClient: httpClient, baseURL: defaultBaseURL}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewServiceAccountClient builds a Client authenticated with the wallet
// issuer scope from service-account credentials JSON.
func NewServiceAccountClient(ctx context.Context, credentialsJSON []byte, opts ...ClientOption) (*Client, error) {
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, issuerScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	return NewClient(cfg.Client(ctx), opts...), nil
}

// EnsureClass provisions a wallet class exactly once. A found class is a
// no-op; a missing class is created, with a conflict on create counted as
// already existing.
func (c *Client) EnsureClass(ctx context.Context, classID string, template ClassTemplate) (EnsureResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/genericClass/"+classID, nil)
	if err != nil {
		return 0, fmt.Errorf("create class lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("class lookup: %w", err)
	}
	drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return ClassAlreadyExists, nil
	case http.StatusNotFound:
		return c.createClass(ctx, classID, template)
	default:
		return 0, fmt.Errorf("%w: lookup returned status %d", ErrClassProvisioning, resp.StatusCode)
	}
}

func (c *Client) createClass(ctx context.Context, classID string, template ClassTemplate) (EnsureResult, error) {
	body, err := json.Marshal(template.toGenericClass(classID))
	if err != nil {
		return 0, fmt.Errorf("encode class: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/genericClass", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create class request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("class create: %w", err)
	}
	drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return ClassCreated, nil
	case http.StatusConflict:
		return ClassAlreadyExists, nil
	default:
		return 0, fmt.Errorf("%w: create returned status %d", ErrClassProvisioning, resp.StatusCode)
	}
}

// CreateObject creates a wallet object. A conflict counts as success since
// object ids are freshly generated and never reused.
func (c *Client) CreateObject(ctx context.Context, obj PassObject) error {
	body, err := json.Marshal(obj.toGenericObject())
	if err != nil {
		return fmt.Errorf("encode object: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/genericObject", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create object request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("object create: %w", err)
	}
	drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("%w: status %d", ErrObjectCreation, resp.StatusCode)
	}

	return nil
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
