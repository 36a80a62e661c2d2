package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize          int      // smallest first write that gets compressed
	CompressionLevel int      // gzip level, 1-9
	ContentTypes     []string // content types to compress
	ExcludedPaths    []string // routes that handle their own encoding
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
			"application/javascript",
		},
		ExcludedPaths: []string{"/metrics"},
	}
}

// CompressionMiddleware gzips large responses for clients that accept it
type CompressionMiddleware struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	level := config.CompressionLevel
	cm := &CompressionMiddleware{config: config, stats: NewCompressionStats()}
	cm.pool.New = func() interface{} {
		gz, err := gzip.NewWriterLevel(io.Discard, level)
		if err != nil {
			gz = gzip.NewWriter(io.Discard)
		}
		return gz
	}
	return cm
}

// Handler returns the gin middleware
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead || !clientAcceptsGzip(c.Request) || cm.excluded(c.Request.URL.Path) {
			c.Next()
			return
		}

		gw := &gzipResponseWriter{ResponseWriter: c.Writer, cm: cm}
		c.Writer = gw
		defer func() {
			gw.finish()
			c.Writer = gw.ResponseWriter
		}()

		c.Next()
	}
}

func clientAcceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

func (cm *CompressionMiddleware) excluded(path string) bool {
	for _, p := range cm.config.ExcludedPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (cm *CompressionMiddleware) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

// gzipResponseWriter decides on the first write whether to compress
type gzipResponseWriter struct {
	gin.ResponseWriter
	cm         *CompressionMiddleware
	gz         *gzip.Writer
	decided    bool
	original   int64
	compressed countingWriter
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func (g *gzipResponseWriter) decide(first []byte) {
	g.decided = true

	status := g.Status()
	if status == http.StatusNoContent || status == http.StatusNotModified || status < 200 {
		return
	}
	if len(first) < g.cm.config.MinSize || !g.cm.shouldCompress(g.Header().Get("Content-Type")) {
		return
	}
	if g.Header().Get("Content-Encoding") != "" {
		return
	}

	g.Header().Set("Content-Encoding", "gzip")
	g.Header().Add("Vary", "Accept-Encoding")
	g.Header().Del("Content-Length")

	g.compressed.w = g.ResponseWriter
	g.gz = g.cm.pool.Get().(*gzip.Writer)
	g.gz.Reset(&g.compressed)
}

// Write writes data through the gzip writer once compression is chosen
func (g *gzipResponseWriter) Write(data []byte) (int, error) {
	if !g.decided {
		g.decide(data)
	}
	g.original += int64(len(data))
	if g.gz == nil {
		return g.ResponseWriter.Write(data)
	}
	return g.gz.Write(data)
}

func (g *gzipResponseWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

// Flush flushes the gzip writer
func (g *gzipResponseWriter) Flush() {
	if g.gz != nil {
		_ = g.gz.Flush()
	}
	g.ResponseWriter.Flush()
}

func (g *gzipResponseWriter) finish() {
	if g.gz == nil {
		if g.original > 0 {
			g.cm.stats.RecordRequest(g.original, g.original, false)
		}
		return
	}
	_ = g.gz.Close()
	g.gz.Reset(io.Discard)
	g.cm.pool.Put(g.gz)
	g.gz = nil
	g.cm.stats.RecordRequest(g.original, g.compressed.n, true)
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	TotalRequests      int64
	CompressedRequests int64
	TotalBytes         int64
	CompressedBytes    int64
	mutex              sync.RWMutex
}

// NewCompressionStats creates new compression statistics
func NewCompressionStats() *CompressionStats {
	return &CompressionStats{}
}

// RecordRequest records a request's compression stats
func (cs *CompressionStats) RecordRequest(originalSize, writtenSize int64, compressed bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.TotalRequests++
	cs.TotalBytes += originalSize
	cs.CompressedBytes += writtenSize
	if compressed {
		cs.CompressedRequests++
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	ratio := float64(1)
	if cs.TotalBytes > 0 {
		ratio = float64(cs.CompressedBytes) / float64(cs.TotalBytes)
	}

	return map[string]interface{}{
		"total_requests":      cs.TotalRequests,
		"compressed_requests": cs.CompressedRequests,
		"total_bytes":         cs.TotalBytes,
		"written_bytes":       cs.CompressedBytes,
		"compression_ratio":   ratio,
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	return cm.stats.GetStats()
}
