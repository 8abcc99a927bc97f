package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/deptree/pkg/buildinfo"
	"github.com/matzehuels/deptree/pkg/depgraph"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	pkgio "github.com/matzehuels/deptree/pkg/io"
	"github.com/matzehuels/deptree/pkg/pipeline"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// HeaderCache is "HIT" when a report came from the cache, else "MISS".
const HeaderCache = "X-Cache"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ctxKey struct{}

// requestID reuses the caller's X-Request-ID or assigns a new one, and
// echoes it on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Version})
}

// handlePackage resolves a package from the registry.
func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	depth, err := depthParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	opts := pipeline.Options{
		Root:     chi.URLParam(r, "*"),
		Version:  r.URL.Query().Get("version"),
		MaxDepth: depth,
		Registry: s.cfg.Registry,
		Refresh:  refresh,
		Logger:   s.logger,
	}

	rep, cached, err := s.runner.Report(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if cached {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleStatic analyzes an uploaded graph: an adjacency list, or a JSON
// graph when the body is sent as application/json.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	depth, err := depthParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var g *depgraph.Graph
	if isJSON(r.Header.Get("Content-Type")) {
		g, err = pkgio.ReadJSON(body)
	} else {
		g, err = pkgio.ReadAdjacency(body)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
				"graph exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		s.fail(w, r, deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "parse graph"))
		return
	}

	a, err := s.runner.Analyze(r.Context(), pipeline.Options{
		Root:     r.URL.Query().Get("root"),
		MaxDepth: depth,
		Graph:    g,
		Logger:   s.logger,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.Report())
}

// depthParam reads ?depth=, defaulting to pipeline.DefaultMaxDepth.
func depthParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("depth")
	if raw == "" {
		return pipeline.DefaultMaxDepth, nil
	}
	depth, err := strconv.Atoi(raw)
	if err != nil {
		return 0, deperrors.New(deperrors.ErrCodeInvalidDepth, "depth must be an integer, got %q", raw)
	}
	return depth, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// fail maps a coded error onto its HTTP status. Uncoded errors are 500s.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := deperrors.GetCode(err)
	if code == "" {
		code = deperrors.ErrCodeInternal
	}
	status := deperrors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", requestIDFrom(r.Context()))
	}
	writeError(w, r, status, string(code), deperrors.UserMessage(err))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
