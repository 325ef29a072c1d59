package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lottery/config"
	"lottery/events"
	"lottery/models"
	"lottery/repository"
	"lottery/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, state models.ActivityState, redCount int) *Server {
	t.Helper()

	cfg := &config.Config{
		ListenAddr:      ":0",
		AdminPassword:   "hunter2",
		AdminJWTSecret:  "test-secret",
		AdminSessionTTL: time.Hour,
		MaxPID:          1000,
		RoundTTL:        10 * time.Minute,
		SessionMaxAge:   7 * 24 * time.Hour,
		Environment:     "test",
	}

	participantRepo := repository.NewParticipantRepository(cfg.MaxPID)
	roundRepo := repository.NewRoundRepository(cfg.RoundTTL)
	bus := events.NewBus()

	policy, err := service.NewDrawPolicy(redCount)
	require.NoError(t, err)

	activity := service.NewActivityStatus(state)
	identity := service.NewIdentityResolver(participantRepo, bus)
	lottery := service.NewLotteryService(identity, participantRepo, roundRepo, policy, activity, bus)
	admin := service.NewAdminService(participantRepo, roundRepo, policy, activity, bus)

	return NewServer(cfg, lottery, admin)
}

func doRequest(s *Server, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func adminLogin(t *testing.T, s *Server) *http.Cookie {
	t.Helper()
	rec := doRequest(s, http.MethodPost, "/api/admin/login", `{"password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	c := cookieByName(rec, "admin_session")
	require.NotNil(t, c)
	return c
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)

	rec := doRequest(s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["ok"])
}

func TestServer_JoinSetsSessionCookie(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)

	rec := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["pid"])
	assert.Equal(t, false, body["participated"])

	c := cookieByName(rec, "pid")
	require.NotNil(t, c)
	assert.Equal(t, "0", c.Value)
	assert.True(t, c.HttpOnly)
}

func TestServer_JoinIsIdempotentPerSession(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)

	first := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	pidCookie := cookieByName(first, "pid")
	require.NotNil(t, pidCookie)

	second := doRequest(s, http.MethodPost, "/api/lottery/join", "", pidCookie)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, float64(0), decodeBody(t, second)["pid"])
}

func TestServer_JoinRecognizesClientIDAfterCookieLoss(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/lottery/join", strings.NewReader(""))
	req.Header.Set("X-Client-Id", "device-42")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	firstPID := decodeBody(t, rec)["pid"]

	// Same client id, no cookie: must resolve to the same participant
	req = httptest.NewRequest(http.MethodPost, "/api/lottery/join", strings.NewReader(""))
	req.Header.Set("X-Client-Id", "device-42")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, firstPID, decodeBody(t, rec)["pid"])
}

func TestServer_DrawRejectedWhenNotOpen(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)

	join := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	pidCookie := cookieByName(join, "pid")

	rec := doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":0}`, pidCookie)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ACTIVITY_NOT_OPEN", decodeBody(t, rec)["error"])
}

func TestServer_DrawWithoutIdentity(t *testing.T) {
	s := newTestServer(t, models.ActivityOpen, 1)

	rec := doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NO_PID", decodeBody(t, rec)["error"])
}

func TestServer_DrawInvalidChoice(t *testing.T) {
	s := newTestServer(t, models.ActivityOpen, 1)

	join := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	pidCookie := cookieByName(join, "pid")

	rec := doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":5}`, pidCookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_CHOICE", decodeBody(t, rec)["error"])
}

func TestServer_DrawOnceThenConflict(t *testing.T) {
	// redCount 3: every tile wins, so the outcome is deterministic
	s := newTestServer(t, models.ActivityOpen, 3)

	join := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	pidCookie := cookieByName(join, "pid")

	draw := doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":1}`, pidCookie)
	require.Equal(t, http.StatusOK, draw.Code)
	body := decodeBody(t, draw)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["win"])
	assert.Equal(t, "zhong", body["face"])
	assert.Equal(t, float64(1), body["winIndex"])
	assert.Len(t, body["deck"], 3)

	// The one allowed draw is spent; repeats return the recorded outcome
	again := doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":2}`, pidCookie)
	require.Equal(t, http.StatusConflict, again.Code)
	body = decodeBody(t, again)
	assert.Equal(t, "ALREADY_PARTICIPATED", body["error"])
	assert.Equal(t, float64(0), body["pid"])
	assert.Equal(t, true, body["win"])
}

func TestServer_DrawAllBlank(t *testing.T) {
	s := newTestServer(t, models.ActivityOpen, 0)

	join := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	pidCookie := cookieByName(join, "pid")

	draw := doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":0}`, pidCookie)
	require.Equal(t, http.StatusOK, draw.Code)
	body := decodeBody(t, draw)
	assert.Equal(t, false, body["win"])
	assert.Equal(t, "blank", body["face"])
	assert.Equal(t, float64(-1), body["winIndex"])
}

func TestServer_DealAndPickFlow(t *testing.T) {
	s := newTestServer(t, models.ActivityOpen, 3)

	deal := doRequest(s, http.MethodPost, "/api/lottery/deal", "")
	require.Equal(t, http.StatusOK, deal.Code)
	dealBody := decodeBody(t, deal)
	token, ok := dealBody["roundToken"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	assert.Len(t, dealBody["faces"], 3)

	join := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	pidCookie := cookieByName(join, "pid")

	pick := doRequest(s, http.MethodPost, "/api/lottery/pick",
		`{"roundToken":"`+token+`","index":0}`, pidCookie)
	require.Equal(t, http.StatusOK, pick.Code)
	assert.Equal(t, true, decodeBody(t, pick)["win"])

	// The round was consumed: a different participant cannot replay it
	join2 := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	pidCookie2 := cookieByName(join2, "pid")
	replay := doRequest(s, http.MethodPost, "/api/lottery/pick",
		`{"roundToken":"`+token+`","index":0}`, pidCookie2)
	require.Equal(t, http.StatusNotFound, replay.Code)
	assert.Equal(t, "ROUND_NOT_FOUND", decodeBody(t, replay)["error"])
}

func TestServer_Status(t *testing.T) {
	s := newTestServer(t, models.ActivityOpen, 2)

	rec := doRequest(s, http.MethodGet, "/api/lottery/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["open"])
	assert.Equal(t, "open", body["state"])
	assert.Equal(t, float64(2), body["redCountMode"])
}

func TestServer_AdminLoginWrongPassword(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)

	rec := doRequest(s, http.MethodPost, "/api/admin/login", `{"password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_PASSWORD", decodeBody(t, rec)["error"])
	assert.Nil(t, cookieByName(rec, "admin_session"))
}

func TestServer_AdminRoutesRequireSession(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/participants"},
		{http.MethodGet, "/api/admin/export"},
		{http.MethodPost, "/api/admin/set-state"},
		{http.MethodPost, "/api/admin/reset-all"},
		{http.MethodGet, "/api/lottery/admin/get-prob"},
		{http.MethodPost, "/api/lottery/admin/set-prob"},
	} {
		rec := doRequest(s, route.method, route.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
		assert.Equal(t, "ADMIN_REQUIRED", decodeBody(t, rec)["error"])
	}
}

func TestServer_AdminSessionLifecycle(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)
	session := adminLogin(t, s)

	me := doRequest(s, http.MethodGet, "/api/admin/me", "", session)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, true, decodeBody(t, me)["ok"])

	noSession := doRequest(s, http.MethodGet, "/api/admin/me", "")
	require.Equal(t, http.StatusUnauthorized, noSession.Code)
	assert.Equal(t, "NO_TOKEN", decodeBody(t, noSession)["error"])

	forged := &http.Cookie{Name: "admin_session", Value: "not-a-jwt"}
	rec := doRequest(s, http.MethodGet, "/api/admin/participants", "", forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_AdminSetStateOpensDrawing(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 3)
	session := adminLogin(t, s)

	rec := doRequest(s, http.MethodPost, "/api/admin/set-state", `{"state":"open"}`, session)
	require.Equal(t, http.StatusOK, rec.Code)

	join := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	pidCookie := cookieByName(join, "pid")
	draw := doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":0}`, pidCookie)
	assert.Equal(t, http.StatusOK, draw.Code)
}

func TestServer_AdminSetStateInvalid(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)
	session := adminLogin(t, s)

	rec := doRequest(s, http.MethodPost, "/api/admin/set-state", `{"state":"paused"}`, session)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_STATE", decodeBody(t, rec)["error"])
}

func TestServer_AdminProbRoundTrip(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)
	session := adminLogin(t, s)

	set := doRequest(s, http.MethodPost, "/api/lottery/admin/set-prob", `{"mode":2}`, session)
	require.Equal(t, http.StatusOK, set.Code)
	assert.Equal(t, float64(2), decodeBody(t, set)["mode"])

	get := doRequest(s, http.MethodGet, "/api/lottery/admin/get-prob", "", session)
	require.Equal(t, http.StatusOK, get.Code)
	body := decodeBody(t, get)
	assert.Equal(t, float64(2), body["mode"])
	assert.InDelta(t, 2.0/3, body["probability"].(float64), 1e-9)
}

func TestServer_AdminSetProbByProbability(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)
	session := adminLogin(t, s)

	set := doRequest(s, http.MethodPost, "/api/lottery/admin/set-prob", `{"probability":0.005}`, session)
	require.Equal(t, http.StatusOK, set.Code)
	assert.Equal(t, float64(0), decodeBody(t, set)["mode"])
}

func TestServer_AdminResetUserAllowsRedraw(t *testing.T) {
	s := newTestServer(t, models.ActivityOpen, 3)
	session := adminLogin(t, s)

	join := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	pidCookie := cookieByName(join, "pid")
	first := doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":0}`, pidCookie)
	require.Equal(t, http.StatusOK, first.Code)

	reset := doRequest(s, http.MethodPost, "/api/admin/reset-user", `{"pid":0}`, session)
	require.Equal(t, http.StatusOK, reset.Code)

	second := doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":0}`, pidCookie)
	assert.Equal(t, http.StatusOK, second.Code)
}

func TestServer_AdminResetUserUnknown(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)
	session := adminLogin(t, s)

	rec := doRequest(s, http.MethodPost, "/api/admin/reset-user", `{"pid":999}`, session)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PARTICIPANT_NOT_FOUND", decodeBody(t, rec)["error"])
}

func TestServer_AdminParticipantsAndResetAll(t *testing.T) {
	s := newTestServer(t, models.ActivityOpen, 3)
	session := adminLogin(t, s)

	join := doRequest(s, http.MethodPost, "/api/lottery/join", `{"cid":"device-7"}`)
	pidCookie := cookieByName(join, "pid")
	_ = doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":0}`, pidCookie)

	list := doRequest(s, http.MethodGet, "/api/admin/participants", "", session)
	require.Equal(t, http.StatusOK, list.Code)
	body := decodeBody(t, list)
	assert.Equal(t, float64(1), body["total"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	row := items[0].(map[string]any)
	assert.Equal(t, "won", row["status"])
	assert.Equal(t, "e-7", row["correlationShort3"])

	reset := doRequest(s, http.MethodPost, "/api/admin/reset-all", "", session)
	require.Equal(t, http.StatusOK, reset.Code)

	list = doRequest(s, http.MethodGet, "/api/admin/participants", "", session)
	assert.Equal(t, float64(0), decodeBody(t, list)["total"])
}

func TestServer_AdminExportCSV(t *testing.T) {
	s := newTestServer(t, models.ActivityOpen, 3)
	session := adminLogin(t, s)

	join := doRequest(s, http.MethodPost, "/api/lottery/join", "")
	pidCookie := cookieByName(join, "pid")
	_ = doRequest(s, http.MethodPost, "/api/lottery/draw", `{"choice":0}`, pidCookie)
	// A second participant who never draws
	_ = doRequest(s, http.MethodPost, "/api/lottery/join", "")

	rec := doRequest(s, http.MethodGet, "/api/admin/export", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "lottery_")

	raw := rec.Body.Bytes()
	require.True(t, len(raw) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3])

	// Default export lists only winners
	lines := strings.Split(strings.TrimSpace(string(raw[3:])), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "pid,correlation_id,status,joined_at,draw_at", strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "0,"))
	assert.Contains(t, lines[1], "won")

	all := doRequest(s, http.MethodGet, "/api/admin/export?all=1", "", session)
	require.Equal(t, http.StatusOK, all.Code)
	lines = strings.Split(strings.TrimSpace(all.Body.String()), "\n")
	assert.Len(t, lines, 3)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t, models.ActivityWaiting, 1)

	rec := doRequest(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
