package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rotaops/fleetline-backend/pkg/config"
	"github.com/rotaops/fleetline-backend/pkg/enums"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
)

const whatsappBodyReadLimit int64 = 1024

var (
	errWhatsAppPhoneNumberID = errors.New("whatsapp phone number id is required")
	errWhatsAppAccessToken   = errors.New("whatsapp access token is required")
)

// TokenSource supplies a bearer token and its expiry. The default source
// hands back the configured long-lived token; hosted deployments can swap in
// one that exchanges refresh credentials.
type TokenSource func(ctx context.Context) (string, time.Time, error)

// WhatsAppClient sends messages through the WhatsApp Cloud API. The bearer
// token is cached per client instance with an explicit expiry, never in
// package state.
type WhatsAppClient struct {
	httpClient    *http.Client
	baseURL       string
	phoneNumberID string
	tokenSource   TokenSource

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// WhatsAppOption configures optional client behavior.
type WhatsAppOption func(*WhatsAppClient)

// WithWhatsAppHTTPClient overrides the default HTTP client.
func WithWhatsAppHTTPClient(client *http.Client) WhatsAppOption {
	return func(c *WhatsAppClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithWhatsAppTokenSource overrides how bearer tokens are obtained.
func WithWhatsAppTokenSource(source TokenSource) WhatsAppOption {
	return func(c *WhatsAppClient) {
		if source != nil {
			c.tokenSource = source
		}
	}
}

// NewWhatsAppClient builds a WhatsApp Cloud API client from configuration.
func NewWhatsAppClient(cfg config.WhatsAppConfig, opts ...WhatsAppOption) (*WhatsAppClient, error) {
	phoneNumberID := strings.TrimSpace(cfg.PhoneNumberID)
	if phoneNumberID == "" {
		return nil, errWhatsAppPhoneNumberID
	}
	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errWhatsAppAccessToken
	}

	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	client := &WhatsAppClient{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		phoneNumberID: phoneNumberID,
		tokenSource: func(ctx context.Context) (string, time.Time, error) {
			return accessToken, time.Now().Add(tokenTTL), nil
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Provider implements Sender.
func (c *WhatsAppClient) Provider() enums.ProviderKind {
	return enums.ProviderWhatsApp
}

// Close releases idle connections.
func (c *WhatsAppClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *WhatsAppClient) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}
	token, expiry, err := c.tokenSource(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "obtain whatsapp token")
	}
	c.token = token
	c.tokenExpiry = expiry
	return token, nil
}

type whatsappTextPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type whatsappImagePayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Image            struct {
		Link    string  `json:"link"`
		Caption *string `json:"caption,omitempty"`
	} `json:"image"`
}

type whatsappLocationPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Location         struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// SendText implements Sender.
func (c *WhatsAppClient) SendText(ctx context.Context, phone, text string) error {
	payload := whatsappTextPayload{MessagingProduct: "whatsapp", To: phone, Type: "text"}
	payload.Text.Body = text
	return c.post(ctx, phone, payload)
}

// SendImage implements Sender.
func (c *WhatsAppClient) SendImage(ctx context.Context, phone, mediaURL string, caption *string) error {
	payload := whatsappImagePayload{MessagingProduct: "whatsapp", To: phone, Type: "image"}
	payload.Image.Link = mediaURL
	payload.Image.Caption = caption
	return c.post(ctx, phone, payload)
}

// SendLocation implements Sender.
func (c *WhatsAppClient) SendLocation(ctx context.Context, phone string, lat, lng float64) error {
	payload := whatsappLocationPayload{MessagingProduct: "whatsapp", To: phone, Type: "location"}
	payload.Location.Latitude = lat
	payload.Location.Longitude = lng
	return c.post(ctx, phone, payload)
}

func (c *WhatsAppClient) post(ctx context.Context, phone string, payload any) error {
	if strings.TrimSpace(phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "destination phone is required")
	}

	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal whatsapp payload")
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build whatsapp request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute whatsapp request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, whatsappBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "whatsapp send failed")
	}
	return nil
}
