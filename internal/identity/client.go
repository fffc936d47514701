package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPClient resolves tokens against a remote identity provider.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  logrus.FieldLogger
}

// NewHTTPClient constructs a new HTTP-backed identity resolver.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger logrus.FieldLogger) (*HTTPClient, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse identity url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Resolve asks the identity provider who the token belongs to.
func (c *HTTPClient) Resolve(ctx context.Context, token string) (Identity, error) {
	rel := &url.URL{Path: "/identity/resolve"}
	q := rel.Query()
	q.Set("token", token)
	rel.RawQuery = q.Encode()
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload apiResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return Identity{}, fmt.Errorf("decode identity response: %w", err)
		}
		return convertToIdentity(payload)
	case http.StatusNotFound, http.StatusUnauthorized:
		return Identity{}, ErrUnknownToken
	default:
		c.logger.WithField("status", resp.StatusCode).Warn("identity: unexpected upstream status")
		return Identity{}, fmt.Errorf("identity: upstream returned %d", resp.StatusCode)
	}
}

type apiResponse struct {
	UserID      string  `json:"userId"`
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

func convertToIdentity(payload apiResponse) (Identity, error) {
	if strings.TrimSpace(payload.UserID) == "" {
		return Identity{}, fmt.Errorf("identity: upstream response missing userId")
	}
	name := payload.UserID
	if payload.DisplayName != nil && *payload.DisplayName != "" {
		name = *payload.DisplayName
	}
	return Identity{
		ID:          payload.UserID,
		DisplayName: name,
		AvatarURL:   payload.AvatarURL,
	}, nil
}
