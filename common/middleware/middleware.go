package middleware

import (
	"net/http"
	"time"

	hr "github.com/julienschmidt/httprouter"
	"github.com/segmentio/ksuid"
	log "github.com/sirupsen/logrus"

	cst "everink.io/ember/constants"
)

type Middleware func(hr.Handle) hr.Handle

// Chain composites given handler and middlewares
func Chain(h hr.Handle, ms ...Middleware) hr.Handle {
	for _, m := range ms {
		h = m(h)
	}
	return h
}

// PanicRecoverer recovers from panic of underlying handlers
func PanicRecoverer() Middleware {
	return func(h hr.Handle) hr.Handle {
		return func(w http.ResponseWriter, r *http.Request, p hr.Params) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithField("panicReason", rec).Error("got panic from underlying handler")
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			h(w, r, p)
		}
	}
}

// AccessLogger stamps each request with a fresh ksuid and logs method, path,
// status and latency once the underlying handler returns.
func AccessLogger() Middleware {
	return func(h hr.Handle) hr.Handle {
		return func(w http.ResponseWriter, r *http.Request, p hr.Params) {
			reqID := ksuid.New().String()
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			h(sw, r, p)
			log.WithFields(log.Fields{
				cst.LogFieldRequestID: reqID,
				"method":              r.Method,
				"path":                r.URL.Path,
				"status":              sw.status(),
				"latencyMillis":       time.Since(start).Milliseconds(),
			}).Info("request served")
		}
	}
}

// statusWriter remembers the response status for access logging.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}
