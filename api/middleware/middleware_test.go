package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fyerfyer/pickup-extractor/internal/pickup"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPickupError(t *testing.T) {
	missing := FromPickupError(fmt.Errorf("%w: PlainText", pickup.ErrMissingContent))
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, MsgMissingContent, missing.Message)

	failed := FromPickupError(pickup.NewExtractionError("boom %d", 1))
	assert.Equal(t, http.StatusInternalServerError, failed.Code)
	assert.Equal(t, MsgProcessFailed, failed.Message)
	assert.Equal(t, "boom 1", failed.Details)

	other := FromPickupError(errors.New("disk full"))
	assert.Equal(t, http.StatusInternalServerError, other.Code)
	assert.Equal(t, "disk full", other.Details)

	passthrough := FromPickupError(NewNotFoundError("gone"))
	assert.Equal(t, http.StatusNotFound, passthrough.Code)
}

func TestFromBindError(t *testing.T) {
	tooLarge := FromBindError(&http.MaxBytesError{Limit: 10})
	assert.Equal(t, http.StatusRequestEntityTooLarge, tooLarge.Code)
	assert.Equal(t, ErrorTypePayloadTooLarge, tooLarge.Type)

	invalid := FromBindError(errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
	assert.Equal(t, MsgInvalidBody, invalid.Message)
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SetTraceID(), ErrorMiddleware())
	return r
}

// TestErrorMiddleware 测试两种错误响应格式
func TestErrorMiddleware(t *testing.T) {
	r := newTestEngine()
	r.GET("/envelope", func(c *gin.Context) {
		HandleError(c, NewNotFoundError("missing"))
	})
	r.GET("/flat", FlatErrors(), func(c *gin.Context) {
		HandleError(c, NewInternalError(MsgProcessFailed, "detail"))
	})
	r.GET("/plain-error", func(c *gin.Context) {
		HandleError(c, errors.New("raw"))
	})
	r.GET("/panic", FlatErrors(), func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/envelope", nil)
	req.Header.Set(TraceIDHeader, "trace-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"message":"missing","trace_id":"trace-1"}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/flat", nil)
	req.Header.Set(TraceIDHeader, "trace-2")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to process document","details":"detail","trace_id":"trace-2"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain-error", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Internal server error"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Failed to process document"`)
}

// TestBodyLimit 测试请求体大小限制
func TestBodyLimit(t *testing.T) {
	r := newTestEngine()
	r.POST("/upload", BodyLimit(16), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			HandleError(c, FromBindError(err))
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("small")))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("a", 32))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("a", 32)))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

// TestSetTraceID 测试追踪ID生成与透传
func TestSetTraceID(t *testing.T) {
	r := newTestEngine()
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(TraceIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "given")
	r.ServeHTTP(w, req)
	assert.Equal(t, "given", w.Body.String())
}

// TestConfigureLogger 测试日志文件输出
func TestConfigureLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pickup.log")
	logger := ConfigureLogger(LogOptions{Level: "debug", File: file, MaxSizeMB: 1, Console: io.Discard})
	t.Cleanup(func() {
		ConfigureLogger(LogOptions{Level: "info"})
	})

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	logger.Info("written to file")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")

	ConfigureLogger(LogOptions{Level: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
