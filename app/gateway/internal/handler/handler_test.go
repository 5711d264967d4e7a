package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/metrics/system"
	"github.com/lk2023060901/aagateway/pkg/web"
	weberrors "github.com/lk2023060901/aagateway/pkg/web/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	current  *bridge.Snapshot
	startErr error
	started  int
}

func (f *fakeSessions) StartSession() (bridge.Snapshot, error) {
	if f.startErr != nil {
		return bridge.Snapshot{}, f.startErr
	}
	f.started++
	f.current = &bridge.Snapshot{ID: "s1", Role: bridge.RoleGateway, State: bridge.StateLinkBringUp}
	return *f.current, nil
}

func (f *fakeSessions) CancelSession() (bridge.Snapshot, bool) {
	if f.current == nil || f.current.State == bridge.StateStopped {
		return bridge.Snapshot{}, false
	}
	f.current.State = bridge.StateStopped
	f.current.StopReason = bridge.ErrCancelled.Error()
	return *f.current, true
}

func (f *fakeSessions) Current() (bridge.Snapshot, bool) {
	if f.current == nil {
		return bridge.Snapshot{}, false
	}
	return *f.current, true
}

type fakeStats struct{}

func (fakeStats) Stats() system.Stats { return system.Stats{Goroutines: 7} }

func setup(f *fakeSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	NewSessionHandler(f, fakeStats{}, metrics, nil).Register(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path string) (int, web.Response) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var resp web.Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func data(t *testing.T, resp web.Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

func TestSessionLifecycle(t *testing.T) {
	f := &fakeSessions{}
	r := setup(f)

	code, resp := do(t, r, http.MethodGet, "/api/session")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, weberrors.CodeNotFound, resp.Code)

	code, resp = do(t, r, http.MethodPost, "/api/session/start")
	require.Equal(t, http.StatusOK, code)
	got := data(t, resp)
	assert.Equal(t, "s1", got["id"])
	assert.Equal(t, "gateway", got["role"])
	assert.Equal(t, "link_bring_up", got["state"])

	code, resp = do(t, r, http.MethodPost, "/api/session/cancel")
	require.Equal(t, http.StatusOK, code)
	got = data(t, resp)
	assert.Equal(t, "stopped", got["state"])
	assert.Equal(t, "cancelled", got["stop_reason"])

	code, _ = do(t, r, http.MethodPost, "/api/session/cancel")
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = do(t, r, http.MethodGet, "/api/session")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "stopped", data(t, resp)["state"])

	code, _ = do(t, r, http.MethodGet, "/api/session?scope=active")
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = do(t, r, http.MethodGet, "/api/session?scope=all")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, weberrors.CodeInvalidParams, resp.Code)
}

func TestStartErrors(t *testing.T) {
	r := setup(&fakeSessions{startErr: bridge.ErrSessionActive})
	code, _ := do(t, r, http.MethodPost, "/api/session/start")
	assert.Equal(t, http.StatusConflict, code)

	r = setup(&fakeSessions{startErr: errors.New("device busy")})
	code, resp := do(t, r, http.MethodPost, "/api/session/start")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "device busy", resp.Message)
}

func TestAuxiliaryRoutes(t *testing.T) {
	r := setup(&fakeSessions{})

	code, resp := do(t, r, http.MethodGet, "/api/system")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 7, data(t, resp)["goroutines"])

	code, _ = do(t, r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, code)

	code, resp = do(t, r, http.MethodGet, "/api/version")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, data(t, resp), "version")
}
