package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	rideready "github.com/rideready/rideready"
	"github.com/rideready/rideready/internal/domain"
	"github.com/rideready/rideready/internal/infra/storage"
	"github.com/rideready/rideready/internal/present/rest/middleware"
	"github.com/rideready/rideready/internal/service"
	"github.com/rideready/rideready/internal/usecase"
	"github.com/rideready/rideready/jwt"
)

// --- mocks ---

type mockGearRepo struct {
	gear   map[string]domain.Gear
	nextID int
}

func newMockGearRepo() *mockGearRepo { return &mockGearRepo{gear: map[string]domain.Gear{}} }

func (m *mockGearRepo) Create(ctx context.Context, g domain.Gear) (domain.Gear, error) {
	m.nextID++
	g.ID = "id-" + strconv.Itoa(m.nextID)
	g.CDate = time.Now()
	m.gear[g.ID] = g
	return g, nil
}

func (m *mockGearRepo) List(ctx context.Context, owner string) ([]domain.Gear, error) {
	var result []domain.Gear
	for _, g := range m.gear {
		if owner == "" || g.Owner == owner {
			result = append(result, g)
		}
	}
	return result, nil
}

func (m *mockGearRepo) Get(ctx context.Context, id string) (domain.Gear, error) {
	g, ok := m.gear[id]
	if !ok {
		return domain.Gear{}, domain.NotFoundError{Resource: "gear"}
	}
	return g, nil
}

func (m *mockGearRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.gear[id]; !ok {
		return domain.NotFoundError{Resource: "gear"}
	}
	delete(m.gear, id)
	return nil
}

type mockRiderRepo struct{}

func (m *mockRiderRepo) Upsert(ctx context.Context, rider domain.Rider) error { return nil }
func (m *mockRiderRepo) List(ctx context.Context) ([]domain.Rider, error) {
	return []domain.Rider{{ID: "rider-a", DisplayName: "Alice"}}, nil
}

type mockStore struct {
	objects map[string][]byte
}

func (m *mockStore) Put(ctx context.Context, key string, r io.Reader) (string, int64, error) {
	data, _ := io.ReadAll(r)
	m.objects[key] = data
	return "etag", int64(len(data)), nil
}

func (m *mockStore) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, 0, errors.New("missing")
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

// --- fixture ---

const (
	testSecret = "test-secret"
	testFQDN   = "catalog.example.com"
	testAPIKey = "public-key"
)

func newTestServer(t *testing.T) (*echo.Echo, *mockGearRepo, *mockStore) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAPIKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}

	conf := domain.Config{
		FQDN:               testFQDN,
		TokenSecret:        testSecret,
		APIKeyHash:         string(hash),
		MediaURLTTLSeconds: 900,
	}

	repo := newMockGearRepo()
	store := &mockStore{objects: map[string][]byte{}}
	signer := storage.NewURLSigner([]byte(testSecret), "http://"+testFQDN, 15*time.Minute)

	gearUC := usecase.NewGearUsecase(repo, store, signer, nil)
	riderUC := usecase.NewRiderUsecase(&mockRiderRepo{})
	auth := service.NewAuthService(&conf, riderUC)

	h := NewHandler(conf, gearUC, riderUC, nil)

	e := echo.New()
	e.Use(middleware.NewAuthMiddleware(auth, conf).IdentifyIdentity)
	h.RegisterRoutes(e)
	return e, repo, store
}

func token(t *testing.T, identity string, groups []string) string {
	t.Helper()
	tok, err := jwt.Create(jwt.Claims{
		Subject:        "rideready",
		Audience:       testFQDN,
		Issuer:         identity,
		Groups:         groups,
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	}, []byte(testSecret))
	if err != nil {
		t.Fatalf("token creation failed: %v", err)
	}
	return tok
}

func doJSON(e *echo.Echo, method, target, bearer string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

// --- tests ---

func TestCreateThenListShowsRecord(t *testing.T) {
	e, _, _ := newTestServer(t)
	bearer := token(t, "rider-a", nil)

	res := doJSON(e, http.MethodPost, "/api/v1/gear", bearer, rideready.GearInput{
		Name:           "Helmet",
		Description:    "Full-face",
		ImageReference: "helmet.jpg",
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(e, http.MethodGet, "/api/v1/gear", bearer, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	var listed []rideready.Gear
	if err := json.Unmarshal(res.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "Helmet" || listed[0].Owner != "rider-a" {
		t.Fatalf("unexpected list %+v", listed)
	}
}

func TestCreateRequiresFields(t *testing.T) {
	e, _, _ := newTestServer(t)
	bearer := token(t, "rider-a", nil)

	res := doJSON(e, http.MethodPost, "/api/v1/gear", bearer, rideready.GearInput{Name: "Helmet"})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestCreateRequiresAuth(t *testing.T) {
	e, _, _ := newTestServer(t)

	res := doJSON(e, http.MethodPost, "/api/v1/gear", "", rideready.GearInput{Name: "n", Description: "d"})
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.Code)
	}
}

func TestDeleteRemovesFromNextList(t *testing.T) {
	e, repo, _ := newTestServer(t)
	bearer := token(t, "rider-a", nil)

	res := doJSON(e, http.MethodPost, "/api/v1/gear", bearer, rideready.GearInput{Name: "n", Description: "d"})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", res.Code)
	}
	var created rideready.Gear
	if err := json.Unmarshal(res.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	res = doJSON(e, http.MethodDelete, "/api/v1/gear/"+created.ID, bearer, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if len(repo.gear) != 0 {
		t.Fatalf("expected record removed")
	}

	// deleting again surfaces not-found without crashing the caller
	res = doJSON(e, http.MethodDelete, "/api/v1/gear/"+created.ID, bearer, nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func TestDeleteForeignGearForbidden(t *testing.T) {
	e, _, _ := newTestServer(t)

	res := doJSON(e, http.MethodPost, "/api/v1/gear", token(t, "rider-a", nil), rideready.GearInput{Name: "n", Description: "d"})
	var created rideready.Gear
	json.Unmarshal(res.Body.Bytes(), &created)

	res = doJSON(e, http.MethodDelete, "/api/v1/gear/"+created.ID, token(t, "rider-b", nil), nil)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", res.Code)
	}
}

func TestOwnerFilterSeparatesRiders(t *testing.T) {
	e, _, _ := newTestServer(t)

	doJSON(e, http.MethodPost, "/api/v1/gear", token(t, "rider-a", nil), rideready.GearInput{Name: "Helmet", Description: "d"})
	doJSON(e, http.MethodPost, "/api/v1/gear", token(t, "rider-b", nil), rideready.GearInput{Name: "Gloves", Description: "d"})

	res := doJSON(e, http.MethodGet, "/api/v1/gear?owner=rider-b", token(t, "rider-a", nil), nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	var listed []rideready.Gear
	json.Unmarshal(res.Body.Bytes(), &listed)
	if len(listed) != 1 || listed[0].Owner != "rider-b" {
		t.Fatalf("unexpected filtered list %+v", listed)
	}
}

func TestPublicListRequiresAPIKey(t *testing.T) {
	e, _, _ := newTestServer(t)

	doJSON(e, http.MethodPost, "/api/v1/gear", token(t, "rider-a", nil), rideready.GearInput{Name: "Helmet", Description: "d"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/gear", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/public/gear", nil)
	req.Header.Set(domain.APIKeyHeader, testAPIKey)
	res = httptest.NewRecorder()
	e.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d: %s", res.Code, res.Body.String())
	}
	var listed []rideready.Gear
	json.Unmarshal(res.Body.Bytes(), &listed)
	if len(listed) != 1 {
		t.Fatalf("expected public list to show the record")
	}
}

func TestUploadSignFetchRoundtrip(t *testing.T) {
	e, _, _ := newTestServer(t)
	bearer := token(t, "rider-a", nil)
	payload := []byte("image-bytes")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/storage/media/helmet.jpg", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+bearer)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("upload expected 200 got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(e, http.MethodPost, "/api/v1/storage/sign", bearer, map[string]string{
		"path": "media/rider-a/helmet.jpg",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("sign expected 200 got %d: %s", res.Code, res.Body.String())
	}
	var signed rideready.SignedURL
	if err := json.Unmarshal(res.Body.Bytes(), &signed); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	// fetch through the signed URL, no session auth attached
	req = httptest.NewRequest(http.MethodGet, signed.URL, nil)
	res = httptest.NewRecorder()
	e.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("media fetch expected 200 got %d", res.Code)
	}
	if !bytes.Equal(res.Body.Bytes(), payload) {
		t.Fatalf("fetched bytes differ from uploaded bytes")
	}
}

func TestSignForeignSegmentForbidden(t *testing.T) {
	e, _, _ := newTestServer(t)

	res := doJSON(e, http.MethodPost, "/api/v1/storage/sign", token(t, "rider-a", nil), map[string]string{
		"path": "media/rider-b/helmet.jpg",
	})
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", res.Code)
	}
}

func TestRidersList(t *testing.T) {
	e, _, _ := newTestServer(t)

	res := doJSON(e, http.MethodGet, "/api/v1/riders", token(t, "rider-a", nil), nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	var riders []rideready.RiderSummary
	json.Unmarshal(res.Body.Bytes(), &riders)
	if len(riders) != 1 || riders[0].DisplayName != "Alice" {
		t.Fatalf("unexpected riders %+v", riders)
	}
}
