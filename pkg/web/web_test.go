package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/aagateway/pkg/logger"
	weberrors "github.com/lk2023060901/aagateway/pkg/web/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.Mode = gin.TestMode
	return NewServer(cfg, logger.NewNoop())
}

func TestResponses(t *testing.T) {
	s := newTestServer()
	s.Router().GET("/ok", func(c *gin.Context) { Success(c, gin.H{"state": "idle"}) })
	s.Router().GET("/conflict", func(c *gin.Context) { Fail(c, weberrors.CodeConflict, "busy") })
	s.Router().GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, weberrors.CodeOK, resp.Code)
	assert.Equal(t, map[string]any{"state": "idle"}, resp.Data)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStartStop(t *testing.T) {
	s := newTestServer()
	s.Router().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrServerAlreadyStarted)

	resp, err := http.Get("http://" + s.Addr().String() + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop())
	assert.Nil(t, s.Addr())
	assert.ErrorIs(t, s.Stop(), ErrServerNotStarted)
}

func TestCodeToStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, weberrors.CodeToStatus(weberrors.CodeOK))
	assert.Equal(t, http.StatusBadRequest, weberrors.CodeToStatus(weberrors.CodeInvalidParams))
	assert.Equal(t, http.StatusNotFound, weberrors.CodeToStatus(weberrors.CodeNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, weberrors.CodeToStatus(weberrors.CodeUnavailable))
	assert.Equal(t, http.StatusInternalServerError, weberrors.CodeToStatus(weberrors.CodeInternalError))
}
