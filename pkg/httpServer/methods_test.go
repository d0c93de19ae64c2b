package httpServer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-intake-gateway/pkg/clients/discord"
	"report-intake-gateway/pkg/constants"
	intakeRepository "report-intake-gateway/pkg/repositories/intake"
	adminService "report-intake-gateway/pkg/services/admin"
	intakeService "report-intake-gateway/pkg/services/intake"
	ratelimitService "report-intake-gateway/pkg/services/ratelimit"
)

var metricsSubsystem atomic.Int64

type testServer struct {
	app       *fiber.App
	sinkCalls *atomic.Int64
}

// newTestServer wires the full stack: in-memory repository, cooldown rate
// gate, real webhook client pointed at a local sink, real services.
func newTestServer(t *testing.T, cooldown time.Duration) *testServer {
	t.Helper()

	var sinkCalls atomic.Int64
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sinkCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(sink.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := intakeRepository.NewRepository()
	webhook := discord.NewClient(sink.URL, time.Second)

	gate, err := ratelimitService.NewService(repo, ratelimitService.Config{
		Policy:   ratelimitService.PolicyCooldown,
		Cooldown: cooldown,
	}, logger)
	require.NoError(t, err)

	intakeSvc := intakeService.NewService(repo, gate, webhook, logger)
	adminSvc := adminService.NewService("admin", "s3cret", repo, logger)

	app := fiber.New(fiber.Config{
		BodyLimit: constants.MaxAttachmentSize + 1<<20,
	})
	// distinct subsystem per test server to keep prometheus registration unique
	subsystem := fmt.Sprintf("server_test_%d", metricsSubsystem.Add(1))
	handler := New(app, intakeSvc, adminSvc, "report_intake", subsystem, logger)
	handler.RegisterRoutes()

	return &testServer{app: app, sinkCalls: &sinkCalls}
}

func jsonRequest(method, target, clientIP string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if clientIP != "" {
		req.Header.Set("x-forwarded-for", clientIP)
	}
	return req
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()

	defer res.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestSubmitReport(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	res, err := ts.app.Test(jsonRequest(http.MethodPost, "/api/v1/report", "1.2.3.4", map[string]string{
		"title":       "Bug",
		"description": "Crash on load",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	assert.Equal(t, "report text submitted successfully", body["message"])
}

func TestSubmitReportMissingFields(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	res, err := ts.app.Test(jsonRequest(http.MethodPost, "/api/v1/report", "1.2.3.4", map[string]string{
		"title": "Bug",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSubmitReportRateLimited(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	payload := map[string]string{"title": "Bug", "description": "Crash on load"}

	res, err := ts.app.Test(jsonRequest(http.MethodPost, "/api/v1/report", "1.2.3.4", payload), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// immediate resubmission from the same IP
	res, err = ts.app.Test(jsonRequest(http.MethodPost, "/api/v1/report", "1.2.3.4", payload), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)

	// a different IP is unaffected
	res, err = ts.app.Test(jsonRequest(http.MethodPost, "/api/v1/report", "5.6.7.8", payload), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestFlushTextOnlyReport(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	res, err := ts.app.Test(jsonRequest(http.MethodPost, "/api/v1/report", "1.2.3.4", map[string]string{
		"title":       "Bug",
		"description": "Crash on load",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// PUT with no file flushes the staged report
	req := httptest.NewRequest(http.MethodPut, "/api/v1/report", nil)
	req.Header.Set("x-forwarded-for", "1.2.3.4")

	res, err = ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	assert.Equal(t, "text-only report sent successfully", body["message"])
	assert.Equal(t, int64(1), ts.sinkCalls.Load())
}

func TestFlushNothingStaged(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/report", nil)
	req.Header.Set("x-forwarded-for", "1.2.3.4")

	res, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, int64(0), ts.sinkCalls.Load())
}

func TestUploadFile(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	res, err := ts.app.Test(jsonRequest(http.MethodPost, "/api/v1/report", "1.2.3.4", map[string]string{
		"title":       "Bug",
		"description": "Crash on load",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "shot.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/report", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-forwarded-for", "1.2.3.4")

	res, err = ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	assert.Equal(t, "report with file submitted successfully", body["message"])
	assert.Equal(t, int64(1), ts.sinkCalls.Load())
}

func TestUploadFileTooLarge(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "huge.png")
	require.NoError(t, err)
	_, err = part.Write(make([]byte, constants.MaxAttachmentSize+1))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/report", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-forwarded-for", "1.2.3.4")

	res, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)
	assert.Equal(t, int64(0), ts.sinkCalls.Load())
}

func TestAdminAuth(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	payload := map[string]string{"action": "list"}

	// missing auth
	res, err := ts.app.Test(jsonRequest(http.MethodPatch, "/api/v1/report", "", payload), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// invalid credentials
	req := jsonRequest(http.MethodPatch, "/api/v1/report", "", payload)
	req.Header.Set("Authorization", basicAuth("admin", "guess"))
	res, err = ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// valid credentials
	req = jsonRequest(http.MethodPatch, "/api/v1/report", "", payload)
	req.Header.Set("Authorization", basicAuth("admin", "s3cret"))
	res, err = ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	assert.Equal(t, []any{}, body["blacklisted_ips"])
}

func TestAdminBlacklistFlow(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	// blacklist 9.9.9.9
	req := jsonRequest(http.MethodPatch, "/api/v1/report", "", map[string]string{
		"action": "blacklist",
		"ip":     "9.9.9.9",
	})
	req.Header.Set("Authorization", basicAuth("admin", "s3cret"))
	res, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	assert.Equal(t, "IP 9.9.9.9 has been blacklisted", body["message"])

	// it now shows up in the list
	req = jsonRequest(http.MethodPatch, "/api/v1/report", "", map[string]string{"action": "list"})
	req.Header.Set("Authorization", basicAuth("admin", "s3cret"))
	res, err = ts.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body = decodeBody(t, res)
	assert.Equal(t, []any{"9.9.9.9"}, body["blacklisted_ips"])

	// submissions from the blacklisted IP are forbidden
	res, err = ts.app.Test(jsonRequest(http.MethodPost, "/api/v1/report", "9.9.9.9", map[string]string{
		"title":       "Bug",
		"description": "Crash on load",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// unblacklist restores access
	req = jsonRequest(http.MethodPatch, "/api/v1/report", "", map[string]string{
		"action": "unblacklist",
		"ip":     "9.9.9.9",
	})
	req.Header.Set("Authorization", basicAuth("admin", "s3cret"))
	res, err = ts.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, err = ts.app.Test(jsonRequest(http.MethodPost, "/api/v1/report", "9.9.9.9", map[string]string{
		"title":       "Bug",
		"description": "Crash on load",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestAdminInvalidAction(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	req := jsonRequest(http.MethodPatch, "/api/v1/report", "", map[string]string{"action": "nuke"})
	req.Header.Set("Authorization", basicAuth("admin", "s3cret"))

	res, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	res, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestMetricsRequiresAdmin(t *testing.T) {
	ts := newTestServer(t, 10*time.Minute)

	res, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	req.Header.Set("Authorization", basicAuth("admin", "s3cret"))
	res, err = ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
