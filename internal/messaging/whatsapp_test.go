package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaops/fleetline-backend/pkg/config"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
)

func newWhatsAppFixture(t *testing.T, handler http.HandlerFunc, opts ...WhatsAppOption) *WhatsAppClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewWhatsAppClient(config.WhatsAppConfig{
		BaseURL:       server.URL,
		PhoneNumberID: "5540001",
		AccessToken:   "wa-token",
		TokenTTL:      time.Hour,
	}, opts...)
	require.NoError(t, err)
	return client
}

func TestWhatsAppSendText(t *testing.T) {
	var got map[string]any
	client := newWhatsAppFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/5540001/messages", r.URL.Path)
		assert.Equal(t, "Bearer wa-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.SendText(context.Background(), "5511999998888", "✅ Delivery recorded"))
	assert.Equal(t, "whatsapp", got["messaging_product"])
	assert.Equal(t, "5511999998888", got["to"])
	assert.Equal(t, "text", got["type"])
	text, ok := got["text"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "✅ Delivery recorded", text["body"])
}

func TestWhatsAppSendLocation(t *testing.T) {
	var got map[string]any
	client := newWhatsAppFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.SendLocation(context.Background(), "5511999998888", -23.55, -46.63))
	location, ok := got["location"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, -23.55, location["latitude"], 0.0001)
	assert.InDelta(t, -46.63, location["longitude"], 0.0001)
}

func TestWhatsAppTokenCachedUntilExpiry(t *testing.T) {
	calls := 0
	source := func(ctx context.Context) (string, time.Time, error) {
		calls++
		return "minted", time.Now().Add(time.Hour), nil
	}
	client := newWhatsAppFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer minted", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}, WithWhatsAppTokenSource(source))

	ctx := context.Background()
	require.NoError(t, client.SendText(ctx, "5511999998888", "one"))
	require.NoError(t, client.SendText(ctx, "5511999998888", "two"))
	assert.Equal(t, 1, calls, "token minted once within its TTL")
}

func TestWhatsAppTokenRefreshedAfterExpiry(t *testing.T) {
	calls := 0
	source := func(ctx context.Context) (string, time.Time, error) {
		calls++
		return "minted", time.Now().Add(-time.Minute), nil
	}
	client := newWhatsAppFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, WithWhatsAppTokenSource(source))

	ctx := context.Background()
	require.NoError(t, client.SendText(ctx, "5511999998888", "one"))
	require.NoError(t, client.SendText(ctx, "5511999998888", "two"))
	assert.Equal(t, 2, calls, "expired token is re-minted")
}

func TestWhatsAppServerErrorIsDependencyError(t *testing.T) {
	client := newWhatsAppFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid token"}}`, http.StatusUnauthorized)
	})

	err := client.SendText(context.Background(), "5511999998888", "hi")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestWhatsAppEmptyPhoneRejected(t *testing.T) {
	client := newWhatsAppFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	err := client.SendText(context.Background(), " ", "hi")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestNewWhatsAppClientRequiresCredentials(t *testing.T) {
	_, err := NewWhatsAppClient(config.WhatsAppConfig{PhoneNumberID: "1"})
	assert.Error(t, err)

	_, err = NewWhatsAppClient(config.WhatsAppConfig{AccessToken: "t"})
	assert.Error(t, err)
}
