package middleware

import (
	"context"
	"net/http"
	"tasklist/internal/logger"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const RequestIdKey contextKey = "request_id"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get("X-Request-ID")
		if requestId == "" {
			requestId = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestId)

		ctx := context.WithValue(r.Context(), RequestIdKey, requestId)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}

type loggingWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (lw *loggingWriter) WriteHeader(code int) {
	if !lw.wroteHeader {
		lw.status = code
		lw.wroteHeader = true
		lw.ResponseWriter.WriteHeader(code)
	}
}

func (lw *loggingWriter) Write(b []byte) (int, error) {
	if !lw.wroteHeader {
		lw.WriteHeader(http.StatusOK)
	}

	n, err := lw.ResponseWriter.Write(b)
	lw.size += n
	return n, err
}

func (lw *loggingWriter) Unwrap() http.ResponseWriter {
	return lw.ResponseWriter
}

// Logging writes one line when a request arrives and one when it finishes.
// boardSeq reports the board's latest change sequence; comparing it before
// and after the handler shows whether the request changed the task list.
func Logging(boardSeq func() uint64) func(http.Handler) http.Handler {
	if boardSeq == nil {
		boardSeq = func() uint64 { return 0 }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestId := GetRequestID(r.Context())
			seqBefore := boardSeq()

			logger.Info(
				"HTTP_IN: Request started",
				zap.String("request_id", requestId),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("client_ip", r.RemoteAddr),
				zap.Uint64("board_seq", seqBefore),
			)

			lw := &loggingWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}
			next.ServeHTTP(lw, r)

			seqAfter := boardSeq()
			fields := []zap.Field{
				zap.String("request_id", requestId),
				zap.Int("status", lw.status),
				zap.Int("bytes_written", lw.size),
				zap.Uint64("board_seq", seqAfter),
				zap.Bool("board_changed", seqAfter != seqBefore),
				zap.Duration("ms", time.Since(start)),
			}
			// chi fills the route once the request has been matched
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				fields = append(fields, zap.String("route", rctx.RoutePattern()))
				if id := rctx.URLParam("id"); id != "" {
					fields = append(fields, zap.String("task_id", id))
				}
			}

			logLevel := zap.InfoLevel
			if lw.status >= 400 && lw.status < 500 {
				logLevel = zap.WarnLevel
			} else if lw.status >= 500 {
				logLevel = zap.ErrorLevel
			}
			logger.Log(logLevel, "HTTP_OUT: Request finished", fields...)
		})
	}
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIdKey).(string); ok {
		return id
	}
	return ""
}
