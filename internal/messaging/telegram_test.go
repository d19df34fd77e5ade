package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaops/fleetline-backend/pkg/config"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
)

func newTelegramFixture(t *testing.T, handler http.HandlerFunc) *TelegramClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewTelegramClient(config.TelegramConfig{
		BaseURL: server.URL,
		Token:   "tg-token",
		Sender:  "fleetline",
	})
	require.NoError(t, err)
	return client
}

func TestTelegramSendText(t *testing.T) {
	var got telegramSendReq
	client := newTelegramFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sendMessage", r.URL.Path)
		assert.Equal(t, "Bearer tg-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(telegramResp{OK: true})
	})

	require.NoError(t, client.SendText(context.Background(), "5511999998888", "🚚 Route started"))
	assert.Equal(t, "5511999998888", got.PhoneNumber)
	assert.Equal(t, "🚚 Route started", got.Text)
	assert.Equal(t, "fleetline", got.SenderUsername)
}

func TestTelegramGatewayRefusal(t *testing.T) {
	client := newTelegramFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(telegramResp{OK: false, Error: "PHONE_NOT_FOUND"})
	})

	err := client.SendText(context.Background(), "5511999998888", "hi")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))

	// The typed error formats code and message only, the gateway refusal
	// rides along as the wrapped cause.
	cause := errors.Unwrap(err)
	require.NotNil(t, cause)
	assert.Contains(t, cause.Error(), "PHONE_NOT_FOUND")
}

func TestTelegramSendImageUsesPhotoEndpoint(t *testing.T) {
	var path string
	var got telegramSendReq
	client := newTelegramFixture(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(telegramResp{OK: true})
	})

	caption := "proof"
	require.NoError(t, client.SendImage(context.Background(), "5511999998888", "https://cdn.example/pod.jpg", &caption))
	assert.Equal(t, "/sendPhoto", path)
	assert.Equal(t, "https://cdn.example/pod.jpg", got.ImageURL)
	require.NotNil(t, got.Caption)
	assert.Equal(t, "proof", *got.Caption)
}

func TestNewTelegramClientRequiresToken(t *testing.T) {
	_, err := NewTelegramClient(config.TelegramConfig{})
	assert.Error(t, err)
}
