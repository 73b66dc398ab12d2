// internal/handlers/stream.go
package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/beatstore/backend/internal/httprange"
	"github.com/beatstore/backend/internal/services"
	"github.com/beatstore/backend/internal/utils"
)

// streamChunkSize bounds memory use per in-flight stream regardless of
// file size.
const streamChunkSize = 8 * 1024

// StreamHandler serves audio files with single-range partial-content
// support so players can seek without downloading the whole file.
type StreamHandler struct {
	storage *services.StorageService
}

func NewStreamHandler(storage *services.StorageService) *StreamHandler {
	return &StreamHandler{storage: storage}
}

// GET /static/demos/:filename
func (h *StreamHandler) ServeDemo(c *gin.Context) {
	path, err := h.storage.FilePath("demos", c.Param("filename"))
	if err != nil {
		utils.NotFoundResponse(c, "File not found")
		return
	}
	h.serveFile(c, path)
}

// GET /static/audio/:filename
func (h *StreamHandler) ServeFullAudio(c *gin.Context) {
	path, err := h.storage.FilePath("audio", c.Param("filename"))
	if err != nil {
		utils.NotFoundResponse(c, "File not found")
		return
	}
	h.serveFile(c, path)
}

func (h *StreamHandler) serveFile(c *gin.Context, path string) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			utils.NotFoundResponse(c, "File not found")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		utils.NotFoundResponse(c, "File not found")
		return
	}
	size := info.Size()

	// A missing, malformed or unsatisfiable Range header degrades to a
	// plain full-body response; it is never an error.
	byteRange, ok := httprange.Parse(c.GetHeader("Range"), size)
	if !ok {
		c.Header("Content-Type", "audio/mpeg")
		c.Header("Accept-Ranges", "bytes")
		c.Header("Content-Length", strconv.FormatInt(size, 10))
		c.Status(http.StatusOK)
		copyChunks(c.Writer, file, size)
		return
	}

	if _, err := file.Seek(byteRange.Start, io.SeekStart); err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", byteRange.Start, byteRange.End, size))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Length", strconv.FormatInt(byteRange.Length(), 10))
	c.Header("Content-Type", "audio/mpeg")
	c.Status(http.StatusPartialContent)
	copyChunks(c.Writer, file, byteRange.Length())
}

// copyChunks streams exactly n bytes in fixed-size chunks. A write error
// means the client went away; the loop stops so no bytes past the last
// delivered chunk are read, and the deferred close releases the handle.
func copyChunks(w io.Writer, r io.Reader, n int64) {
	buf := make([]byte, streamChunkSize)
	remaining := n
	for remaining > 0 {
		chunk := int64(len(buf))
		if remaining < chunk {
			chunk = remaining
		}

		read, err := r.Read(buf[:chunk])
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return
			}
			remaining -= int64(read)
		}
		if err != nil {
			return
		}
	}
}
