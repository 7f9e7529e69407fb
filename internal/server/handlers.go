package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/layout/sequence"
	"github.com/matzehuels/diagramkit/pkg/observability"
	"github.com/matzehuels/diagramkit/pkg/pipeline"
)

// Request is the JSON request body. Plain text bodies are treated as
// {"source": body}.
type Request struct {
	Source   string            `json:"source"`
	Markdown bool              `json:"markdown,omitempty"`
	Block    int               `json:"block,omitempty"`
	Engine   string            `json:"engine,omitempty"`
	Refresh  bool              `json:"refresh,omitempty"`
	Layout   *sequence.Options `json:"layout,omitempty"`
}

// ParseResponse is returned by POST /v1/parse.
type ParseResponse struct {
	Diagram     *ir.Diagram       `json:"diagram"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Cached      bool              `json:"cached"`
}

// LayoutResponse is returned by POST /v1/layout.
type LayoutResponse struct {
	Diagram     *ir.Diagram            `json:"diagram"`
	Diagnostics []diag.Diagnostic      `json:"diagnostics"`
	Layout      *pipeline.LayoutResult `json:"layout"`
	Hash        string                 `json:"hash"`
	Cached      bool                   `json:"cached"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.readOptions(w, r)
	if !ok {
		return
	}
	parsed, hit, err := s.runner.ParseWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ParseResponse{
		Diagram:     parsed.Diagram,
		Diagnostics: nonNil(parsed.Diagnostics),
		Cached:      hit,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.readOptions(w, r)
	if !ok {
		return
	}
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		Diagram:     result.Diagram,
		Diagnostics: nonNil(result.Diagnostics),
		Layout:      result.Layout,
		Hash:        result.DiagramHash,
		Cached:      result.CacheInfo.ParseHit && result.CacheInfo.LayoutHit,
	})
}

// readOptions decodes the request into pipeline options, writing a 400 on
// failure.
func (s *Server) readOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return pipeline.Options{}, false
	}

	req := Request{Source: string(body)}
	if isJSON(r.Header.Get("Content-Type")) {
		req = Request{}
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
			return pipeline.Options{}, false
		}
	}
	if req.Source == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeEmptyInput, "empty diagram source"))
		return pipeline.Options{}, false
	}

	opts := pipeline.Options{
		Source:         req.Source,
		Name:           middleware.GetReqID(r.Context()),
		Markdown:       req.Markdown,
		Block:          req.Block,
		Engine:         req.Engine,
		Refresh:        req.Refresh,
		Sequence:       s.opts.Layout,
		MaxDiagnostics: s.opts.MaxDiagnostics,
		Logger:         s.logger,
	}
	if req.Layout != nil {
		opts.Sequence = *req.Layout
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options"))
		return pipeline.Options{}, false
	}
	return opts, true
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

func nonNil(ds []diag.Diagnostic) []diag.Diagnostic {
	if ds == nil {
		return []diag.Diagnostic{}
	}
	return ds
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeEmptyInput,
		errors.ErrCodeUnsupportedDiagramType, errors.ErrCodeNoDiagramBlock:
		return http.StatusBadRequest
	case errors.ErrCodeLayout, errors.ErrCodeUnresolvedEndpoint:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", code, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Code: string(code), Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// observe reports every request to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", time.Since(start))
	})
}
