package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/patrickmn/go-cache"

	rideready "github.com/rideready/rideready"
	"github.com/rideready/rideready/internal/domain"
	"github.com/rideready/rideready/jwt"
)

const (
	defaultTimeout = 3 * time.Second
)

// Client talks to a gear catalog node. Construct it with New and attach
// exactly one credential: a session token for the full API, or an api
// key for the public read-only surface.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	userAgent string
	baseURL   string

	authMode rideready.AuthMode
	token    string
	apiKey   string
	identity string
}

func New(baseURL string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:  &httpClient,
		cache:   cache.New(10*time.Minute, 15*time.Minute),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// UseSession switches the client to bearer authentication. The identity
// is read from the token claims and used to scope media paths.
func (c *Client) UseSession(token string) error {
	claims, err := decodeClaims(token)
	if err != nil {
		return fmt.Errorf("failed to decode session token: %v", err)
	}
	if claims.Issuer == "" {
		return fmt.Errorf("session token carries no identity")
	}
	c.authMode = rideready.AuthModeUserPool
	c.token = token
	c.identity = claims.Issuer
	return nil
}

// UseAPIKey switches the client to api-key authentication. Only the
// public endpoints are reachable in this mode.
func (c *Client) UseAPIKey(key string) {
	c.authMode = rideready.AuthModeAPIKey
	c.apiKey = key
	c.token = ""
	c.identity = ""
}

func (c *Client) Identity() string {
	return c.identity
}

// decodeClaims reads the payload segment without verifying the
// signature. The server verifies; the client only needs the issuer.
func decodeClaims(token string) (*jwt.Claims, error) {
	split := strings.Split(token, ".")
	if len(split) != 3 {
		return nil, fmt.Errorf("invalid token format")
	}
	payload, err := base64.RawURLEncoding.DecodeString(split[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %v", err)
	}
	var claims jwt.Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %v", err)
	}
	return &claims, nil
}

func (c *Client) attachAuth(req *http.Request) {
	switch c.authMode {
	case rideready.AuthModeUserPool:
		req.Header.Set("Authorization", "Bearer "+c.token)
	case rideready.AuthModeAPIKey:
		req.Header.Set(domain.APIKeyHeader, c.apiKey)
	}
}

func (c *Client) httpRequest(ctx context.Context, method, path string, body io.Reader, response any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}

// ListGear fetches the caller's catalog view. Pass an owner to narrow
// the listing to that rider's records.
func (c *Client) ListGear(ctx context.Context, owner string) ([]rideready.Gear, error) {
	path := "/api/v1/gear"
	if owner != "" {
		path += "?owner=" + owner
	}

	var gear []rideready.Gear
	err := c.httpRequest(ctx, http.MethodGet, path, nil, &gear)
	if err != nil {
		return nil, fmt.Errorf("failed to list gear: %v", err)
	}
	return gear, nil
}

func (c *Client) CreateGear(ctx context.Context, input rideready.GearInput) (rideready.Gear, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return rideready.Gear{}, fmt.Errorf("failed to marshal input: %v", err)
	}

	var created rideready.Gear
	err = c.httpRequest(ctx, http.MethodPost, "/api/v1/gear", bytes.NewReader(payload), &created)
	if err != nil {
		return rideready.Gear{}, fmt.Errorf("failed to create gear: %v", err)
	}
	return created, nil
}

func (c *Client) DeleteGear(ctx context.Context, id string) error {
	err := c.httpRequest(ctx, http.MethodDelete, "/api/v1/gear/"+id, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to delete gear: %v", err)
	}
	return nil
}

func (c *Client) ListRiders(ctx context.Context) ([]rideready.RiderSummary, error) {
	var riders []rideready.RiderSummary
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/riders", nil, &riders)
	if err != nil {
		return nil, fmt.Errorf("failed to list riders: %v", err)
	}
	return riders, nil
}

// ListPublicGear is the read-only listing for api-key clients.
func (c *Client) ListPublicGear(ctx context.Context) ([]rideready.Gear, error) {
	var gear []rideready.Gear
	err := c.httpRequest(ctx, http.MethodGet, "/api/v1/public/gear", nil, &gear)
	if err != nil {
		return nil, fmt.Errorf("failed to list public gear: %v", err)
	}
	return gear, nil
}

// Upload stores an object under the caller's media prefix and returns
// its etag.
func (c *Client) Upload(ctx context.Context, name string, data io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/v1/storage/media/"+name, data)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	c.attachAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result struct {
		Etag string `json:"etag"`
	}
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}
	return result.Etag, nil
}

// ResolveImage exchanges an image reference for a signed URL. The path
// is composed from the caller's own identity segment, so a record whose
// object lives under another rider's prefix resolves to a URL that will
// not serve. Signed URLs are cached until shortly before expiry.
func (c *Client) ResolveImage(ctx context.Context, name string) (string, error) {
	if c.identity == "" {
		return "", fmt.Errorf("image resolution requires a session")
	}

	path := rideready.ComposeMediaPath(c.identity, name)

	cacheKey := "signed:" + path
	x, found := c.cache.Get(cacheKey)
	if found {
		return x.(string), nil
	}

	payload, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sign request: %v", err)
	}

	var signed rideready.SignedURL
	err = c.httpRequest(ctx, http.MethodPost, "/api/v1/storage/sign", bytes.NewReader(payload), &signed)
	if err != nil {
		return "", fmt.Errorf("failed to sign media path: %v", err)
	}

	ttl := time.Until(signed.Expires) - 30*time.Second
	if ttl > 0 {
		c.cache.Set(cacheKey, signed.URL, ttl)
	}

	return signed.URL, nil
}

// Subscribe opens the realtime socket and streams catalog events until
// the context is cancelled.
func (c *Client) Subscribe(ctx context.Context) (<-chan rideready.Event, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/realtime"

	header := http.Header{}
	if c.authMode == rideready.AuthModeUserPool {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial realtime socket: %v", err)
	}

	output := make(chan rideready.Event)
	go func() {
		defer close(output)
		defer conn.Close()
		for {
			var event rideready.Event
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	return output, nil
}
