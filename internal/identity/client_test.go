package identity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestHTTPClient_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/identity/resolve", r.URL.Path)
		require.Equal(t, "apikey", r.Header.Get("X-API-Key"))

		switch r.URL.Query().Get("token") {
		case "tok-good":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"userId":      "user-9",
				"displayName": "Pat Passenger",
			})
		case "tok-empty":
			_ = json.NewEncoder(w).Encode(map[string]any{"userId": ""})
		case "tok-boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "apikey", 2*time.Second, newTestLogger())
	require.NoError(t, err)

	ctx := context.Background()

	id, err := client.Resolve(ctx, "tok-good")
	require.NoError(t, err)
	assert.Equal(t, "user-9", id.ID)
	assert.Equal(t, "Pat Passenger", id.DisplayName)

	_, err = client.Resolve(ctx, "tok-unknown")
	assert.ErrorIs(t, err, ErrUnknownToken)

	_, err = client.Resolve(ctx, "tok-empty")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownToken)

	_, err = client.Resolve(ctx, "tok-boom")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownToken)
}

func TestConvertToIdentity_NameFallback(t *testing.T) {
	id, err := convertToIdentity(apiResponse{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.DisplayName)
}
