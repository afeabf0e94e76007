package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping() error { return s.err }

func TestSystemHandler(t *testing.T) {
	newEngine := func(p Pinger) *gin.Engine {
		engine := gin.New()
		NewSystemHandler(p, zap.NewNop()).RegisterRoutes(engine)
		return engine
	}

	t.Run("health is always ok", func(t *testing.T) {
		w := httptest.NewRecorder()
		newEngine(stubPinger{err: errors.New("down")}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ready checks the database", func(t *testing.T) {
		w := httptest.NewRecorder()
		newEngine(stubPinger{}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ready fails when the database is unreachable", func(t *testing.T) {
		w := httptest.NewRecorder()
		newEngine(stubPinger{err: errors.New("connection refused")}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
