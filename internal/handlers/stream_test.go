// internal/handlers/stream_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatstore/backend/internal/config"
	"github.com/beatstore/backend/internal/services"
)

func newStreamRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demos"), 0o755))

	cfg := &config.Config{Storage: config.StorageConfig{Root: root}}
	storage, err := services.NewStorageService(cfg)
	require.NoError(t, err)

	handler := NewStreamHandler(storage)
	r := gin.New()
	r.GET("/static/demos/:filename", handler.ServeDemo)
	r.GET("/static/audio/:filename", handler.ServeFullAudio)
	return r, root
}

// writeDemoFile creates a file whose byte at offset i equals i%256, so
// slices can be checked for exactness.
func writeDemoFile(t *testing.T, root, name string, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "demos", name), data, 0o644))
	return data
}

func TestServeDemoFullBody(t *testing.T) {
	r, root := newStreamRouter(t)
	data := writeDemoFile(t, root, "demo_test.mp3", 1000)

	req := httptest.NewRequest("GET", "/static/demos/demo_test.mp3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, "1000", w.Header().Get("Content-Length"))
	assert.Equal(t, data, w.Body.Bytes())
}

func TestServeDemoPartialContent(t *testing.T) {
	r, root := newStreamRouter(t)
	data := writeDemoFile(t, root, "demo_test.mp3", 1000)

	req := httptest.NewRequest("GET", "/static/demos/demo_test.mp3", nil)
	req.Header.Set("Range", "bytes=200-299")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "bytes 200-299/1000", w.Header().Get("Content-Range"))
	assert.Equal(t, "100", w.Header().Get("Content-Length"))
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, data[200:300], w.Body.Bytes())
}

func TestServeDemoOpenEndedRange(t *testing.T) {
	r, root := newStreamRouter(t)
	data := writeDemoFile(t, root, "demo_test.mp3", 1000)

	req := httptest.NewRequest("GET", "/static/demos/demo_test.mp3", nil)
	req.Header.Set("Range", "bytes=900-")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "bytes 900-999/1000", w.Header().Get("Content-Range"))
	assert.Equal(t, data[900:], w.Body.Bytes())
}

func TestServeDemoRangeLargerThanChunk(t *testing.T) {
	r, root := newStreamRouter(t)
	data := writeDemoFile(t, root, "demo_test.mp3", 40000)

	req := httptest.NewRequest("GET", "/static/demos/demo_test.mp3", nil)
	req.Header.Set("Range", "bytes=100-30099")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "bytes 100-30099/40000", w.Header().Get("Content-Range"))
	assert.Equal(t, data[100:30100], w.Body.Bytes())
}

func TestServeDemoUnsatisfiableRangeFallsBack(t *testing.T) {
	r, root := newStreamRouter(t)
	data := writeDemoFile(t, root, "demo_test.mp3", 1000)

	for _, header := range []string{
		"bytes=995-2000",
		"bytes=1000-",
		"bytes=300-200",
		"bytes=-500",
		"bytes=0-99,200-299",
		"garbage",
	} {
		req := httptest.NewRequest("GET", "/static/demos/demo_test.mp3", nil)
		req.Header.Set("Range", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "header %q", header)
		assert.Empty(t, w.Header().Get("Content-Range"), "header %q", header)
		assert.Equal(t, data, w.Body.Bytes(), "header %q", header)
	}
}

func TestServeDemoMissingFile(t *testing.T) {
	r, _ := newStreamRouter(t)

	req := httptest.NewRequest("GET", "/static/demos/nope.mp3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeFullAudioRejectsTraversal(t *testing.T) {
	r, _ := newStreamRouter(t)

	req := httptest.NewRequest("GET", "/static/audio/..%2F..%2Fetc%2Fpasswd", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
