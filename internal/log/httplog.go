package log

import (
	"net/http"
	"strings"
	"time"

	"github.com/felixge/httpsnoop"
	"go.uber.org/zap"
)

// HTTPLogEntry represents an HTTP request/response log entry
type HTTPLogEntry struct {
	Method     string
	Path       string
	Status     int
	Duration   time.Duration
	Size       int64
	RemoteAddr string
	UserAgent  string
}

func (e HTTPLogEntry) fields() []interface{} {
	return []interface{}{
		"method", e.Method,
		"path", e.Path,
		"status", e.Status,
		"duration_ms", e.Duration.Milliseconds(),
		"size", e.Size,
		"remote_addr", e.RemoteAddr,
		"user_agent", e.UserAgent,
	}
}

// HTTPMiddleware logs every request handled by next. Paths starting with any
// of quietPrefixes (polling endpoints) are logged at debug level.
func HTTPMiddleware(logger *zap.SugaredLogger, quietPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, req)

			entry := HTTPLogEntry{
				Method:     req.Method,
				Path:       req.URL.Path,
				Status:     m.Code,
				Duration:   m.Duration,
				Size:       m.Written,
				RemoteAddr: req.RemoteAddr,
				UserAgent:  req.UserAgent(),
			}

			switch {
			case entry.Status >= 500:
				logger.Errorw("http request", entry.fields()...)
			case isQuiet(entry.Path, quietPrefixes):
				logger.Debugw("http request", entry.fields()...)
			default:
				logger.Infow("http request", entry.fields()...)
			}
		})
	}
}

func isQuiet(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
