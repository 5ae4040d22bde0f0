package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	rideready "github.com/rideready/rideready"
	"github.com/rideready/rideready/jwt"
)

func sessionToken(t *testing.T, identity string) string {
	t.Helper()
	token, err := jwt.Create(jwt.Claims{
		Subject:        "rideready",
		Audience:       "catalog.example.com",
		Issuer:         identity,
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	}, []byte("secret"))
	if err != nil {
		t.Fatalf("token creation failed: %v", err)
	}
	return token
}

func TestUseSessionReadsIdentity(t *testing.T) {
	c := New("http://localhost")
	if err := c.UseSession(sessionToken(t, "rider-a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Identity() != "rider-a" {
		t.Fatalf("expected rider-a got %s", c.Identity())
	}
}

func TestUseSessionRejectsGarbage(t *testing.T) {
	c := New("http://localhost")
	if err := c.UseSession("not-a-token"); err == nil {
		t.Fatal("expected error")
	}
}

func TestListGearSendsBearer(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]rideready.Gear{{ID: "id-1", Name: "Helmet", Owner: "rider-a"}})
	}))
	defer server.Close()

	c := New(server.URL)
	token := sessionToken(t, "rider-a")
	if err := c.UseSession(token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gear, err := c.ListGear(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gear) != 1 || gear[0].Name != "Helmet" {
		t.Fatalf("unexpected gear %+v", gear)
	}
	if gotAuth != "Bearer "+token {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestListPublicGearSendsAPIKey(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		json.NewEncoder(w).Encode([]rideready.Gear{})
	}))
	defer server.Close()

	c := New(server.URL)
	c.UseAPIKey("public-key")

	_, err := c.ListPublicGear(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "public-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
}

func TestListGearSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New(server.URL)
	if _, err := c.ListGear(context.Background(), ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestResolveImageComposesOwnSegmentAndCaches(t *testing.T) {
	var calls atomic.Int32
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Path string `json:"path"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotPath = req.Path
		json.NewEncoder(w).Encode(rideready.SignedURL{
			URL:     "http://example.com/" + req.Path + "?sig=x",
			Expires: time.Now().Add(15 * time.Minute),
		})
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.UseSession(sessionToken(t, "rider-a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	url1, err := c.ResolveImage(context.Background(), "helmet.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "media/rider-a/helmet.jpg" {
		t.Fatalf("expected own-identity path, got %q", gotPath)
	}

	url2, err := c.ResolveImage(context.Background(), "helmet.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url1 != url2 {
		t.Fatal("expected cached URL")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one sign request, got %d", calls.Load())
	}
}

func TestResolveImageRequiresSession(t *testing.T) {
	c := New("http://localhost")
	c.UseAPIKey("public-key")
	if _, err := c.ResolveImage(context.Background(), "helmet.jpg"); err == nil {
		t.Fatal("expected error")
	}
}
