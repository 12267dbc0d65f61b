package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestLogKey contextKey = "request_log"

// requestLog is filled in by handlers further down the chain so the access
// log line can carry the authenticated tenant.
type requestLog struct {
	tenantID uuid.UUID
}

func annotateTenant(ctx context.Context, tenantID uuid.UUID) {
	if rl, ok := ctx.Value(requestLogKey).(*requestLog); ok {
		rl.tenantID = tenantID
	}
}

type LoggingMiddleware struct {
	log *logrus.Logger
}

func NewLoggingMiddleware(log *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{log: log}
}

func (m *LoggingMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		rl := &requestLog{}

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestLogKey, rl)))

		fields := logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}
		if rl.tenantID != uuid.Nil {
			fields["tenant_id"] = rl.tenantID.String()
		}

		entry := m.log.WithFields(fields)
		switch {
		case rec.status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case rec.status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	})
}
