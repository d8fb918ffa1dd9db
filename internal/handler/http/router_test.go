package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/domain/user"
	"github.com/guardline/roster-backend/internal/pkg/jwt"
	"github.com/guardline/roster-backend/internal/pkg/sse"
	"github.com/guardline/roster-backend/internal/repository/memory"
	attendanceService "github.com/guardline/roster-backend/internal/service/attendance"
	"github.com/guardline/roster-backend/internal/service/board"
	earningsService "github.com/guardline/roster-backend/internal/service/earnings"
	guardService "github.com/guardline/roster-backend/internal/service/guard"
	paymentService "github.com/guardline/roster-backend/internal/service/payment"
	shiftService "github.com/guardline/roster-backend/internal/service/shift"
	siteService "github.com/guardline/roster-backend/internal/service/site"
	slotService "github.com/guardline/roster-backend/internal/service/slot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testAPI struct {
	t          *testing.T
	router     http.Handler
	jwtService jwt.Service
	admin      string
	supervisor string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.NewStore()
	siteRepo := memory.NewSiteRepository(store)
	guardRepo := memory.NewGuardRepository(store)
	shiftRepo := memory.NewShiftRepository(store)
	slotRepo := memory.NewSlotRepository(store)
	attendanceRepo := memory.NewAttendanceRepository(store)
	paymentRepo := memory.NewPaymentRepository(store)

	hub := sse.NewHub()
	publisher := board.NewPublisher(nil, hub)
	rules := attendanceService.NewRules(attendanceRepo, slotRepo)
	jwtService := jwt.NewJWTService(handlerTestSecret)
	sites := siteService.NewSiteService(siteRepo)

	router := NewRouter(RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}, Env: "test"}, jwtService, Handlers{
		Site:       NewSiteHandler(sites),
		Guard:      NewGuardHandler(guardService.NewGuardService(guardRepo)),
		Shift:      NewShiftHandler(shiftService.NewShiftService(shiftRepo, siteRepo, guardRepo)),
		Slot:       NewSlotHandler(slotService.NewSlotService(slotRepo, attendanceRepo, siteRepo, guardRepo, rules, publisher)),
		Attendance: NewAttendanceHandler(attendanceService.NewAttendanceService(attendanceRepo, shiftRepo, slotRepo, siteRepo, guardRepo, rules, publisher)),
		Payment:    NewPaymentHandler(paymentService.NewPaymentService(paymentRepo, guardRepo)),
		Earnings:   NewEarningsHandler(earningsService.NewEarningsService(guardRepo, siteRepo, attendanceRepo, paymentRepo)),
		Events:     NewEventHandler(hub, jwtService, sites),
	})

	admin, _, err := jwtService.GenerateAccessToken(user.Principal{ID: "admin-1", Email: "admin@example.com", Role: user.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	supervisor, _, err := jwtService.GenerateAccessToken(user.Principal{ID: "sup-1", Email: "sup@example.com", Role: user.RoleSupervisor}, time.Hour)
	require.NoError(t, err)

	return &testAPI{t: t, router: router, jwtService: jwtService, admin: admin, supervisor: supervisor}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env
}

func (a *testAPI) createSite(name string, day, night int) site.SiteResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/sites", a.admin, map[string]interface{}{
		"name": name, "address": "1 Pier Road", "day_slots": day, "night_slots": night, "pay_rate": "30000",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var out site.SiteResponse
	decode(a.t, rec, &out)
	return out
}

func (a *testAPI) createGuard(name, badge string) guard.GuardResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/guards", a.admin, map[string]interface{}{
		"name": name, "badge_number": badge, "pay_rate": "29000",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var out guard.GuardResponse
	decode(a.t, rec, &out)
	return out
}

func (a *testAPI) generate(siteID, date string) slot.BoardResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/sites/"+siteID+"/slots/generate", a.supervisor, map[string]string{"date": date})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var out slot.BoardResponse
	decode(a.t, rec, &out)
	return out
}

func TestRouter_Authentication(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/sites", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/sites", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	foreign, _, err := jwt.NewJWTService("other-secret").GenerateAccessToken(user.Principal{ID: "x", Role: user.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	rec = api.do(http.MethodGet, "/api/v1/sites", foreign, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sseToken, _, err := api.jwtService.GenerateSSEToken("admin-1", "site-a")
	require.NoError(t, err)
	rec = api.do(http.MethodGet, "/api/v1/sites", sseToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/sites", api.supervisor, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RoleChecks(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/v1/sites", api.supervisor, map[string]interface{}{"name": "Dock", "address": "2 Pier"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/payments", api.supervisor, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/earnings/guards?month=2024-01", api.supervisor, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPut, "/api/v1/attendance/any/status", api.supervisor, map[string]string{"status": "replaced"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_SiteErrors(t *testing.T) {
	api := newTestAPI(t)
	created := api.createSite("Harbour Gate", 2, 1)
	assert.Equal(t, 2, created.DayCapacity)

	rec := api.do(http.MethodPost, "/api/v1/sites", api.admin, map[string]interface{}{"name": "", "address": "", "day_slots": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "name")
	assert.Contains(t, env.Error.Details, "day_slots")

	rec = api.do(http.MethodPost, "/api/v1/sites", api.admin, map[string]interface{}{"name": "harbour gate", "address": "elsewhere"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/sites/does-not-exist", api.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sites", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+api.admin)
	bad := httptest.NewRecorder()
	api.router.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestRouter_BoardFlow(t *testing.T) {
	api := newTestAPI(t)
	x := api.createSite("Site X", 1, 0)
	y := api.createSite("Site Y", 1, 0)
	amos := api.createGuard("Amos", "G-001")

	bx := api.generate(x.ID, "2024-01-10")
	by := api.generate(y.ID, "2024-01-10")
	require.Len(t, bx.Day, 1)
	require.Len(t, by.Day, 1)

	rec := api.do(http.MethodPost, "/api/v1/slots/"+bx.Day[0].ID+"/assign", api.supervisor, map[string]string{"guard_id": amos.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/v1/slots/"+by.Day[0].ID+"/assign", api.supervisor, map[string]string{"guard_id": amos.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decode(t, rec, nil)
	assert.Contains(t, env.Error.Message, "another site")

	rec = api.do(http.MethodPost, "/api/v1/slots/"+bx.Day[0].ID+"/attendance", api.supervisor, map[string]bool{"is_present": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var marked slot.SlotResponse
	decode(t, rec, &marked)
	assert.Equal(t, string(slot.StatePresent), marked.State)

	rec = api.do(http.MethodGet, "/api/v1/sites/"+x.ID+"/slots?date=2024-01-10", api.supervisor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current slot.BoardResponse
	decode(t, rec, &current)
	assert.Equal(t, 1, current.DaySummary.Present)

	rec = api.do(http.MethodGet, "/api/v1/sites/"+x.ID+"/slots?date=10-01-2024", api.supervisor, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/attendance?site_id="+x.ID+"&date=2024-01-10", api.supervisor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []map[string]interface{}
	decode(t, rec, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "present", records[0]["status"])
}

func TestRouter_EarningsExport(t *testing.T) {
	api := newTestAPI(t)
	api.createGuard("Amos", "G-001")

	rec := api.do(http.MethodGet, "/api/v1/earnings/guards/export?month=2024-01", api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "earnings-2024-01.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = api.do(http.MethodGet, "/api/v1/earnings/guards/export?month=January", api.admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()

	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return name, data
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestRouter_BoardEventsStream(t *testing.T) {
	api := newTestAPI(t)
	x := api.createSite("Site X", 1, 0)
	amos := api.createGuard("Amos", "G-001")
	bx := api.generate(x.ID, "2024-01-10")

	rec := api.do(http.MethodGet, "/api/v1/sites/"+x.ID+"/events/token", api.supervisor, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var token SSETokenResponse
	decode(t, rec, &token)

	server := httptest.NewServer(api.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// a token for one site does not open another site's stream
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/sites/other/events?token="+token.Token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/sites/"+x.ID+"/events?token="+token.Token, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	name, _ := readEvent(t, reader)
	require.Equal(t, "connected", name)

	rec = api.do(http.MethodPost, "/api/v1/slots/"+bx.Day[0].ID+"/assign", api.supervisor, map[string]string{"guard_id": amos.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	name, data := readEvent(t, reader)
	assert.Equal(t, board.EventBoardChanged, name)
	assert.JSONEq(t, `{"date":"2024-01-10"}`, data)
}
