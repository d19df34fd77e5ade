package intents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaops/fleetline-backend/pkg/config"
	"github.com/rotaops/fleetline-backend/pkg/enums"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
)

func classifyText(text string) ClassifyInput {
	return ClassifyInput{
		TenantID: uuid.New(),
		DriverID: uuid.New(),
		Kind:     enums.MessageKindText,
		Text:     &text,
	}
}

func TestClassifyMapsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/classify", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text", req.Kind)
		require.NotNil(t, req.Text)
		assert.Equal(t, "entreguei na padaria", *req.Text)

		identifier := " padaria "
		_ = json.NewEncoder(w).Encode(classifyResponse{Intent: "deliver", Identifier: &identifier})
	}))
	defer server.Close()

	client, err := NewClient(config.ClassifierConfig{BaseURL: server.URL, APIKey: "secret"})
	require.NoError(t, err)

	intent, err := client.Classify(context.Background(), classifyText("entreguei na padaria"))
	require.NoError(t, err)
	assert.Equal(t, enums.IntentDeliver, intent.Type)
	require.NotNil(t, intent.Identifier)
	assert.Equal(t, "padaria", *intent.Identifier, "identifier is trimmed")
	assert.Nil(t, intent.Reason)
}

func TestClassifyUnrecognizedTagDegradesToUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(classifyResponse{Intent: "brand-new-intent"})
	}))
	defer server.Close()

	client, err := NewClient(config.ClassifierConfig{BaseURL: server.URL})
	require.NoError(t, err)

	intent, err := client.Classify(context.Background(), classifyText("???"))
	require.NoError(t, err)
	assert.Equal(t, enums.IntentUnknown, intent.Type)
}

func TestClassifyServerErrorIsDependencyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(config.ClassifierConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), classifyText("oi"))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.ClassifierConfig{})
	assert.Error(t, err)
}
