package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasspane/dashboard/internal/domain/intent"
	"github.com/glasspane/dashboard/internal/domain/session"
	"github.com/glasspane/dashboard/internal/domain/tabdata"
	"github.com/glasspane/dashboard/internal/platform"
)

type stubAdapter struct {
	platform platform.Platform
	options  *intent.ToggleReportOptions

	mu      sync.Mutex
	intents []intent.Intent
}

func (a *stubAdapter) SendIntent(ctx context.Context, it intent.Intent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.intents = append(a.intents, it)
	return nil
}

func (a *stubAdapter) RequestToggleReportOptions(ctx context.Context) (*intent.ToggleReportOptions, error) {
	if a.options == nil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return a.options, nil
}

func (a *stubAdapter) Platform() platform.Platform { return a.platform }

func (a *stubAdapter) sent() []intent.Intent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]intent.Intent(nil), a.intents...)
}

type fixture struct {
	router  *gin.Engine
	manager *session.Manager
	adapter *stubAdapter
	session *session.Session
}

func newFixture(t *testing.T, replyDeadline time.Duration) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := session.NewManager(platform.DefaultMatrix(), nil)
	adapter := &stubAdapter{
		platform: platform.Extension,
		options:  &intent.ToggleReportOptions{Data: []intent.ToggleReportParam{{ID: "siteUrl"}}},
	}
	sess := manager.Create(adapter)

	h := NewHandlers(manager, replyDeadline, nil)
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/tabs", h.ListTabs)
	router.GET("/tabs/:id/snapshot", h.GetSnapshot)
	router.GET("/tabs/:id/snapshot/wait", h.WaitSnapshot)
	router.POST("/tabs/:id/intents/protection", h.SetProtection)
	router.POST("/tabs/:id/intents/open-url", h.OpenURL)
	router.POST("/tabs/:id/intents/toggle-report/options", h.ToggleReportOptions)
	router.POST("/tabs/:id/intents/toggle-report/send", h.ToggleReportSend)
	router.POST("/tabs/:id/intents/size", h.SetSize)

	return &fixture{router: router, manager: manager, adapter: adapter, session: sess}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) makeReady(t *testing.T) {
	t.Helper()
	agg := f.session.Aggregator
	agg.SetProtections(tabdata.NewProtections(false, []string{tabdata.FeatureContentBlocking}, false, false))
	require.NoError(t, agg.SetRequestData("https://example.com", tabdata.RequestPayload{}))
	agg.SetUpgradedHTTPS(true)
	agg.SetLocale("en")
}

func TestHealth(t *testing.T) {
	f := newFixture(t, 0)
	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["tabs"])
}

func TestListTabs(t *testing.T) {
	f := newFixture(t, 0)
	w := f.do(t, http.MethodGet, "/tabs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Tabs []map[string]any `json:"tabs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Tabs, 1)
	assert.Equal(t, f.session.ID, body.Tabs[0]["id"])
	assert.Equal(t, false, body.Tabs[0]["ready"])
}

func TestGetSnapshotStates(t *testing.T) {
	f := newFixture(t, 0)

	w := f.do(t, http.MethodGet, "/tabs/nope/snapshot", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/tabs/"+f.session.ID+"/snapshot", nil)
	assert.Equal(t, http.StatusAccepted, w.Code, "gate open means pending, not error")

	f.makeReady(t)
	w = f.do(t, http.MethodGet, "/tabs/"+f.session.ID+"/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap tabdata.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "en", snap.Tab.Locale)
	assert.True(t, snap.Tab.UpgradedHTTPS)
}

func TestWaitSnapshotResolvesOnReadiness(t *testing.T) {
	f := newFixture(t, 0)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- f.do(t, http.MethodGet, "/tabs/"+f.session.ID+"/snapshot/wait", nil)
	}()

	// Give the waiter time to register, then complete the gate.
	time.Sleep(50 * time.Millisecond)
	f.makeReady(t)

	select {
	case w := <-done:
		require.Equal(t, http.StatusOK, w.Code)
		var snap tabdata.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.Equal(t, "en", snap.Tab.Locale)
	case <-time.After(2 * time.Second):
		t.Fatal("wait never resolved")
	}
}

func TestSetProtectionInvertsAllowlist(t *testing.T) {
	f := newFixture(t, 0)

	w := f.do(t, http.MethodPost, "/tabs/"+f.session.ID+"/intents/protection", gin.H{
		"allowlisted": true,
		"screen":      "primaryScreen",
	})
	require.Equal(t, http.StatusOK, w.Code)

	sent := f.adapter.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, intent.KindSetProtection, sent[0].Kind)
	payload := sent[0].Payload.(intent.SetProtectionPayload)
	assert.False(t, payload.IsProtected)
	assert.Equal(t, "primaryScreen", payload.EventOrigin.Screen)
}

func TestSetProtectionRequiresAllowlistedField(t *testing.T) {
	f := newFixture(t, 0)
	w := f.do(t, http.MethodPost, "/tabs/"+f.session.ID+"/intents/protection", gin.H{"screen": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.adapter.sent())
}

func TestOpenURLRejectsBadSchemes(t *testing.T) {
	f := newFixture(t, 0)
	w := f.do(t, http.MethodPost, "/tabs/"+f.session.ID+"/intents/open-url", gin.H{
		"url": "javascript:alert(1)",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, f.adapter.sent())
}

func TestToggleReportSendWithoutFlow(t *testing.T) {
	f := newFixture(t, 0)
	w := f.do(t, http.MethodPost, "/tabs/"+f.session.ID+"/intents/toggle-report/send", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestToggleReportOptionsThenSend(t *testing.T) {
	f := newFixture(t, 0)

	w := f.do(t, http.MethodPost, "/tabs/"+f.session.ID+"/intents/toggle-report/options", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var opts intent.ToggleReportOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	require.Len(t, opts.Data, 1)
	assert.Equal(t, "siteUrl", opts.Data[0].ID)

	w = f.do(t, http.MethodPost, "/tabs/"+f.session.ID+"/intents/toggle-report/send", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/tabs/"+f.session.ID+"/intents/toggle-report/send", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "flow closes after send")
}

func TestToggleReportOptionsDeadline(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	f.adapter.options = nil // host never replies

	w := f.do(t, http.MethodPost, "/tabs/"+f.session.ID+"/intents/toggle-report/options", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestSetSizeValidation(t *testing.T) {
	f := newFixture(t, 0)

	w := f.do(t, http.MethodPost, "/tabs/"+f.session.ID+"/intents/size", gin.H{"height": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/tabs/"+f.session.ID+"/intents/size", gin.H{"height": 480})
	require.Equal(t, http.StatusOK, w.Code)
	sent := f.adapter.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, 480, sent[0].Payload.(intent.SetSizePayload).Height)
}

func TestIntentOnUnknownSession(t *testing.T) {
	f := newFixture(t, 0)
	w := f.do(t, http.MethodPost, "/tabs/ghost/intents/size", gin.H{"height": 480})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
