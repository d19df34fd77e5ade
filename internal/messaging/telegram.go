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
	"time"

	"github.com/rotaops/fleetline-backend/pkg/config"
	"github.com/rotaops/fleetline-backend/pkg/enums"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
)

var errTelegramToken = errors.New("telegram gateway token is required")

// TelegramClient sends messages through a phone-addressed Telegram gateway.
type TelegramClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	sender     string
}

// TelegramOption configures optional client behavior.
type TelegramOption func(*TelegramClient)

// WithTelegramHTTPClient overrides the default HTTP client.
func WithTelegramHTTPClient(client *http.Client) TelegramOption {
	return func(c *TelegramClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewTelegramClient builds a Telegram gateway client from configuration.
func NewTelegramClient(cfg config.TelegramConfig, opts ...TelegramOption) (*TelegramClient, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errTelegramToken
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	client := &TelegramClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      token,
		sender:     strings.TrimSpace(cfg.Sender),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Provider implements Sender.
func (c *TelegramClient) Provider() enums.ProviderKind {
	return enums.ProviderTelegram
}

// Close releases idle connections.
func (c *TelegramClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

type telegramSendReq struct {
	PhoneNumber    string   `json:"phone_number"`
	Text           string   `json:"text,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	Caption        *string  `json:"caption,omitempty"`
	Lat            *float64 `json:"lat,omitempty"`
	Lng            *float64 `json:"lng,omitempty"`
	SenderUsername string   `json:"sender_username,omitempty"`
}

type telegramResp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// SendText implements Sender.
func (c *TelegramClient) SendText(ctx context.Context, phone, text string) error {
	return c.post(ctx, "/sendMessage", telegramSendReq{PhoneNumber: phone, Text: text})
}

// SendImage implements Sender.
func (c *TelegramClient) SendImage(ctx context.Context, phone, mediaURL string, caption *string) error {
	return c.post(ctx, "/sendPhoto", telegramSendReq{PhoneNumber: phone, ImageURL: mediaURL, Caption: caption})
}

// SendLocation implements Sender.
func (c *TelegramClient) SendLocation(ctx context.Context, phone string, lat, lng float64) error {
	return c.post(ctx, "/sendLocation", telegramSendReq{PhoneNumber: phone, Lat: &lat, Lng: &lng})
}

func (c *TelegramClient) post(ctx context.Context, path string, payload telegramSendReq) error {
	if strings.TrimSpace(payload.PhoneNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "destination phone is required")
	}
	if c.sender != "" {
		payload.SenderUsername = c.sender
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal telegram payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build telegram request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute telegram request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK {
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), "telegram send failed")
	}

	var gateway telegramResp
	if err := json.Unmarshal(raw, &gateway); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode telegram response")
	}
	if !gateway.OK {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("gateway error: %s", gateway.Error), "telegram send failed")
	}
	return nil
}
