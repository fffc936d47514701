package identity

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestHTTPClientSmoke checks the client against a live identity provider
// (typically cmd/identity-mock) when IDENTITY_URL is supplied.
func TestHTTPClientSmoke(t *testing.T) {
	baseURL := os.Getenv("IDENTITY_URL")
	if baseURL == "" {
		t.Skip("IDENTITY_URL not provided")
	}
	apiKey := os.Getenv("IDENTITY_API_KEY")
	client, err := NewHTTPClient(baseURL, apiKey, 3*time.Second, newTestLogger())
	if err != nil {
		t.Fatalf("create http client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := client.Resolve(ctx, os.Getenv("IDENTITY_SMOKE_TOKEN"))
	if err != nil {
		t.Fatalf("resolve smoke token: %v", err)
	}
	if id.ID == "" {
		t.Fatalf("unexpected identity payload: %+v", id)
	}
}
