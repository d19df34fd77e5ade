package intents

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

	"github.com/google/uuid"

	"github.com/rotaops/fleetline-backend/pkg/config"
	"github.com/rotaops/fleetline-backend/pkg/enums"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
)

const requestBodyReadLimit int64 = 1024

var errBaseURLRequired = errors.New("classifier base URL is required")

// Client calls the hosted intent classifier over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured classifier base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the classifier client from configuration.
func NewClient(cfg config.ClassifierConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type classifyRequest struct {
	TenantID uuid.UUID `json:"tenant_id"`
	DriverID uuid.UUID `json:"driver_id"`
	Kind     string    `json:"kind"`
	Text     *string   `json:"text,omitempty"`
	MediaURL *string   `json:"media_url,omitempty"`
	Caption  *string   `json:"caption,omitempty"`
}

type classifyResponse struct {
	Intent     string  `json:"intent"`
	Identifier *string `json:"identifier,omitempty"`
	Reason     *string `json:"reason,omitempty"`
}

// Classify sends the message content to the classifier and maps its answer
// onto the closed intent enumeration. Unrecognized intent tags degrade to
// unknown instead of erroring.
func (c *Client) Classify(ctx context.Context, input ClassifyInput) (Intent, error) {
	if c == nil {
		return Intent{}, pkgerrors.New(pkgerrors.CodeDependency, "classifier client not configured")
	}

	payload, err := json.Marshal(classifyRequest{
		TenantID: input.TenantID,
		DriverID: input.DriverID,
		Kind:     input.Kind.String(),
		Text:     input.Text,
		MediaURL: input.MediaURL,
		Caption:  input.Caption,
	})
	if err != nil {
		return Intent{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal classify request")
	}

	url := strings.TrimRight(c.baseURL, "/") + "/v1/classify"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Intent{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build classify request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Intent{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute classify request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return Intent{}, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "classify request failed")
	}

	var apiResp classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Intent{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode classify response")
	}

	return Intent{
		Type:       enums.ParseIntentType(apiResp.Intent),
		Identifier: trimmedOrNil(apiResp.Identifier),
		Reason:     trimmedOrNil(apiResp.Reason),
	}, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
