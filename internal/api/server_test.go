package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signage-server/signage-server-pro/internal/config"
	"github.com/signage-server/signage-server-pro/internal/media"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

type testServer struct {
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Name = "signage-server-test"
	cfg.Server.Version = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenTTL = time.Hour
	cfg.Media.Dir = t.TempDir()
	cfg.Media.MaxUploadSize = 10 << 20

	mediaStore, err := media.NewStore(cfg.Media.Dir, zerolog.Nop())
	require.NoError(t, err)

	rest := NewRESTServer(cfg, storage.NewMemoryStore(), mediaStore)
	srv := httptest.NewServer(rest.router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// registerMaster registers a master account and returns its session token
func (ts *testServer) registerMaster(t *testing.T) string {
	t.Helper()

	resp, _ := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Prime Displays",
		"email":    "master@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "master@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (ts *testServer) createAgency(t *testing.T, masterToken, email string) string {
	t.Helper()

	resp, _ := ts.do(t, http.MethodPost, "/api/v1/agencies", masterToken, map[string]string{
		"name":     "City Billboards",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.registerMaster(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "master@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/agencies", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleGuardBlocksWrongTier(t *testing.T) {
	ts := newTestServer(t)
	masterToken := ts.registerMaster(t)

	// Masters cannot reach the agency-tier ad routes.
	resp, _ := ts.do(t, http.MethodGet, "/api/v1/ads", masterToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	agencyToken := ts.createAgency(t, masterToken, "agency@example.com")

	// Agencies cannot reach the master-tier agency routes.
	resp, _ = ts.do(t, http.MethodGet, "/api/v1/agencies", agencyToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeviceLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	masterToken := ts.registerMaster(t)
	ts.createAgency(t, masterToken, "agency@example.com")

	resp, body := ts.do(t, http.MethodGet, "/api/v1/agencies", masterToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	agencies := body["agencies"].([]interface{})
	require.Len(t, agencies, 1)
	agencyID := agencies[0].(map[string]interface{})["id"].(string)

	resp, body = ts.do(t, http.MethodPost, "/api/v1/devices", masterToken, map[string]interface{}{
		"name":        "Station Screen",
		"model":       "LG-55",
		"agencyId":    agencyID,
		"apiEndpoint": "/evil/override",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	secretKey, _ := body["secretKey"].(string)
	assert.NotEmpty(t, secretKey)
	device := body["device"].(map[string]interface{})
	assert.Equal(t, "INACTIVE", device["status"])

	// The callback endpoint is derived from the generated uuid; the
	// request body cannot set it.
	assert.Equal(t, "/api/v1/player/"+device["uuid"].(string), device["apiEndpoint"])

	// Device comes back in the fleet listing.
	resp, body = ts.do(t, http.MethodGet, "/api/v1/devices", masterToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	// The player channel accepts the issued secret key.
	resp, body = ts.do(t, http.MethodPost, "/api/v1/player/connect", "", map[string]string{
		"key": secretKey,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "device connected", body["message"])

	// But rejects the public key.
	publicKey := device["publicKey"].(string)
	resp, _ = ts.do(t, http.MethodPost, "/api/v1/player/connect", "", map[string]string{
		"key": publicKey,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAssignmentConflictOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	masterToken := ts.registerMaster(t)
	agencyToken := ts.createAgency(t, masterToken, "agency@example.com")

	_, body := ts.do(t, http.MethodGet, "/api/v1/agencies", masterToken, nil)
	agencyID := body["agencies"].([]interface{})[0].(map[string]interface{})["id"].(string)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/devices", masterToken, map[string]interface{}{
		"name":     "Mall Screen",
		"agencyId": agencyID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	deviceID := body["device"].(map[string]interface{})["id"].(string)

	resp, body = ts.do(t, http.MethodPost, "/api/v1/agency-clients", agencyToken, map[string]string{
		"name":          "Ravi Kumar",
		"businessName":  "Kumar Traders",
		"businessEmail": "client@example.com",
		"password":      "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	clientID := body["id"].(string)

	adID := seedAd(t, ts, agencyToken)

	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * time.Hour)

	create := func(from, to time.Time) (*http.Response, map[string]interface{}) {
		return ts.do(t, http.MethodPost, "/api/v1/assignments", agencyToken, map[string]interface{}{
			"clientId":  clientID,
			"deviceId":  deviceID,
			"adId":      adID,
			"startTime": from.Format(time.RFC3339),
			"endTime":   to.Format(time.RFC3339),
		})
	}

	resp, _ = create(start, end)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Overlapping window is refused.
	resp, _ = create(start.Add(time.Hour), end.Add(time.Hour))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Touching window is fine.
	resp, _ = create(end, end.Add(time.Hour))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Availability grid marks the booked hours.
	resp, body = ts.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/assignments/slots?deviceId=%s&date=%s", deviceID, start.UTC().Format("2006-01-02")),
		agencyToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hours := body["hours"].([]interface{})
	require.Len(t, hours, 24)

	// Both bookings are in the future, so the timeline views agree.
	resp, body = ts.do(t, http.MethodGet, "/api/v1/timeline/upcoming", agencyToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["total"])

	resp, body = ts.do(t, http.MethodGet, "/api/v1/timeline/live", agencyToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["total"])

	// The client sees its schedule through the client portal.
	resp, clientBody := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "client@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	clientToken := clientBody["token"].(string)

	resp, body = ts.do(t, http.MethodGet, "/api/v1/client/ads/schedules", clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["total"])

	resp, body = ts.do(t, http.MethodGet, "/api/v1/client/ads/history", clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["total"])
}

func TestAssignmentFormData(t *testing.T) {
	ts := newTestServer(t)
	masterToken := ts.registerMaster(t)
	agencyToken := ts.createAgency(t, masterToken, "agency@example.com")

	seedAd(t, ts, agencyToken)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/assignments/form-data", agencyToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["ads"].([]interface{}), 1)
	assert.Empty(t, body["clients"])
	assert.Empty(t, body["devices"])
}

// seedAd uploads an ad through the multipart endpoint
func seedAd(t *testing.T, ts *testServer, agencyToken string) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Summer Sale"))

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="video"; filename="promo.mp4"`},
		"Content-Type":        {"video/mp4"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a video"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/v1/ads", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+agencyToken)

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out["id"].(string)
}
