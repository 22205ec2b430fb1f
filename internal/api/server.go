package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/alnah/go-md2docx/internal/logging"
	"github.com/alnah/go-md2docx/internal/metrics"
)

// JSON encodes a control byte as \uXXXX, so the content field can take up
// to escapeFactor bytes on the wire per content byte.
const (
	escapeFactor = 6
	bodySlack    = 64 * 1024
)

// Server adapts a Pipeline to net/http.
type Server struct {
	pipeline *Pipeline
	logger   *zap.Logger
	metrics  metrics.Recorder
	gatherer prometheus.Gatherer
}

// NewServer creates a Server. A nil gatherer serves the default registry
// on /metrics.
func NewServer(p *Pipeline, gatherer prometheus.Gatherer) *Server {
	return &Server{
		pipeline: p,
		logger:   p.logger,
		metrics:  p.metrics,
		gatherer: gatherer,
	}
}

// Handler returns the routed, instrumented handler:
//
//	POST|OPTIONS /convert and /   conversion
//	GET /health                   health check
//	GET /metrics                  Prometheus exposition
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	convert := http.HandlerFunc(s.handleConvert)
	mux.Handle("/convert", metrics.Middleware(s.metrics, "/convert")(convert))
	mux.Handle("/{$}", metrics.Middleware(s.metrics, "/")(convert))
	mux.Handle("GET /health", metrics.Middleware(s.metrics, "/health")(http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /metrics", metrics.Handler(s.gatherer))

	return logging.Middleware(s.logger)(mux)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeHeaders(w, StandardHeaders())
		w.WriteHeader(http.StatusNoContent)
		return
	}

	limit := escapeFactor*s.pipeline.MaxBytes() + bodySlack
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeResponse(w, s.pipeline.Reject(bodyTooLarge(s.pipeline.opts.MaxFileSizeMB, tooBig.Limit)))
			return
		}
		logging.FromContext(r.Context(), s.logger).Warn("reading request body", zap.Error(err))
		writeResponse(w, s.pipeline.Reject(stageFailure(KindInvalidRequestShape, StageValidate, err)))
		return
	}

	writeResponse(w, s.pipeline.Handle(r.Context(), Request{Method: r.Method, Body: body}))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeResponse(w, s.pipeline.Health())
}

func writeHeaders(w http.ResponseWriter, headers map[string]string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
}

func writeResponse(w http.ResponseWriter, resp Response) {
	writeHeaders(w, resp.Headers)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
