package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krishichetan/kchetan/internal/client/api"
	"github.com/krishichetan/kchetan/internal/client/api/apitest"
	"github.com/krishichetan/kchetan/internal/client/storage"
	"github.com/krishichetan/kchetan/internal/controller"
	"github.com/krishichetan/kchetan/internal/models"
	"github.com/krishichetan/kchetan/internal/screen"
	"github.com/krishichetan/kchetan/internal/view"
)

type testServer struct {
	backend *apitest.Backend
	store   *storage.LocalStorage
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	b := apitest.New(t)
	store := storage.NewLocalStorage(filepath.Join(t.TempDir(), "session.json"))
	scr := screen.New()
	ctl := controller.New(api.New(b.URL(), nil), store, scr, zap.NewNop())
	t.Cleanup(ctl.Close)
	h := &ViewHandler{Controller: ctl, Screen: scr, Log: zap.NewNop()}
	return &testServer{backend: b, store: store, handler: NewRouter(h, zap.NewNop())}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) ViewResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (s *testServer) login(t *testing.T, phone, password string) ViewResponse {
	t.Helper()
	body, _ := json.Marshal(LoginRequest{Phone: phone, Password: password})
	return decodeView(t, s.do(t, http.MethodPost, "/api/login?wait=true", string(body)))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSessionGate(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/view", "/api/refresh", "/api/modules/market"} {
		method := http.MethodPost
		if path == "/api/view" {
			method = http.MethodGet
		}
		rec := s.do(t, method, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.JSONEq(t, `{"redirect":"login"}`, rec.Body.String(), path)
	}
	assert.Zero(t, s.backend.TotalHits())
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/login", `{"phone":"9876543210","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/login", `{"phone":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	v := s.login(t, "9876543210", "farmer123")
	assert.Equal(t, models.ModuleDashboard, v.Module)
	assert.Equal(t, models.RoleFarmer, v.Role)
	assert.Equal(t, "Test Farmer", v.User)
	assert.Equal(t, []models.Module{models.ModuleDashboard}, v.Screen.Active())
	assert.Contains(t, v.Screen.Regions, view.RegionStats)
}

func TestRejectsNonJSONBody(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "9876543210", "farmer123")

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("message=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestActivateAndLanguage(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "9876543210", "farmer123")

	v := decodeView(t, s.do(t, http.MethodPost, "/api/modules/market?wait=true", ""))
	assert.Equal(t, models.ModuleMarket, v.Module)
	assert.Len(t, v.Screen.Regions[view.RegionPrices].Cards, 2)

	v = decodeView(t, s.do(t, http.MethodPost, "/api/modules/retail", ""))
	assert.Equal(t, models.ModuleMarket, v.Module, "unknown module is ignored")

	v = decodeView(t, s.do(t, http.MethodPost, "/api/language/hi?wait=true", ""))
	assert.Equal(t, models.Hindi, v.Language)
	assert.Equal(t, "hi-IN", v.Screen.VoiceTag)
	assert.Equal(t, "गेहूँ", v.Screen.Regions[view.RegionPrices].Cards[0].Title)

	rec := s.do(t, http.MethodPost, "/api/language/fr", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	before := s.backend.Hits(apitest.RoutePrices)
	decodeView(t, s.do(t, http.MethodPost, "/api/refresh?wait=true", ""))
	assert.Equal(t, before+1, s.backend.Hits(apitest.RoutePrices))
}

func TestChat(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "9876543210", "farmer123")

	v := decodeView(t, s.do(t, http.MethodPost, "/api/chat", `{"message":"when to water?"}`))
	msgs := v.Screen.Regions[view.RegionChat].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "when to water?", msgs[0].Text)
	assert.Equal(t, "Irrigation is recommended in the evening.", msgs[1].Text)

	s.backend.Fail(apitest.RouteChat, http.StatusInternalServerError)
	v = decodeView(t, s.do(t, http.MethodPost, "/api/chat", `{"message":"again"}`))
	msgs = v.Screen.Regions[view.RegionChat].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, view.ErrorReply, msgs[3].Text)
}

func TestDiagnoseUpload(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "9876543210", "farmer123")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "leaf.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/diagnose", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	v := decodeView(t, rec)
	assert.Equal(t, "Early Blight", v.Screen.Regions[view.RegionDiagnosis].Cards[0].Title)
	call := s.backend.Calls(apitest.RouteDiagnose)[0]
	assert.Contains(t, string(call.Body), "png-bytes")
}

func TestFarmerActions(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "9876543210", "farmer123")

	rec := s.do(t, http.MethodPost, "/api/advisories/a1/status", `{"status":"unknown"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	v := decodeView(t, s.do(t, http.MethodPost, "/api/advisories/a1/status?wait=true", `{"status":"ignored"}`))
	assert.Equal(t, "❌ Ignored", v.Screen.Regions[view.RegionAdvisories].Cards[0].Badge)

	rec = s.do(t, http.MethodPost, "/api/profile", `{"location":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	decodeView(t, s.do(t, http.MethodPost, "/api/profile?wait=true",
		`{"location":"Pune","crop_type":"Rice","land_size":3,"sowing_date":"2025-06-15","soil_type":"clay"}`))
	assert.Equal(t, 1, s.backend.Hits(apitest.RouteSaveProfile))

	rec = s.do(t, http.MethodPost, "/api/officer/advisories", `{"type":"pest","message":"spray"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOfficerActions(t *testing.T) {
	s := newTestServer(t)
	v := s.login(t, "9876543211", "officer123")
	assert.Equal(t, models.ModuleOfficer, v.Module)

	v = decodeView(t, s.do(t, http.MethodPost, "/api/officer/recs/ai_1/validate?wait=true", `{"text":"Use 10kg"}`))
	assert.Equal(t, view.NoPendingItems, v.Screen.Regions[view.RegionReviewQueue].Placeholder)

	rec := s.do(t, http.MethodPost, "/api/officer/advisories", `{"type":"pest","message":"spray"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sent":1}`, rec.Body.String())

	s.backend.Fail(apitest.RouteSendAdvisory, http.StatusInternalServerError)
	rec = s.do(t, http.MethodPost, "/api/officer/advisories", `{"type":"pest","message":"spray"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "9876543210", "farmer123")

	rec := s.do(t, http.MethodPost, "/api/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"redirect":"login"}`, rec.Body.String())

	_, err := s.store.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoSession)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/view", "").Code)
}
