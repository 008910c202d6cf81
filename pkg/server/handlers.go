package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/snhsdiag/pkg/buildinfo"
	"github.com/matzehuels/snhsdiag/pkg/diagram"
	"github.com/matzehuels/snhsdiag/pkg/diagram/analysis"
	"github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
	errs "github.com/matzehuels/snhsdiag/pkg/errors"
	"github.com/matzehuels/snhsdiag/pkg/observability"
	"github.com/matzehuels/snhsdiag/pkg/render"
)

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Engine  string `json:"engine"`
}

// DiagramSummary describes one registered diagram.
type DiagramSummary struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Title   string   `json:"title,omitempty"`
	Output  string   `json:"output"`
	Format  string   `json:"format"`
	Nodes   int      `json:"nodes"`
	Edges   int      `json:"edges"`
}

// DiagramDetail is returned by /api/v1/diagrams/{name}.
type DiagramDetail struct {
	DiagramSummary
	Report analysis.Report `json:"report"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: info.Version,
		Commit:  info.ShortCommit(),
		Engine:  s.runner.Engine.Name(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	out := make([]DiagramSummary, 0, len(s.defs))
	for _, d := range s.defs {
		g, err := d.Build()
		if err != nil {
			s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "build %s", d.Name))
			return
		}
		out = append(out, summarize(d, g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	def, g, ok := s.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, DiagramDetail{
		DiagramSummary: summarize(def, g),
		Report:         analysis.Analyze(g),
	})
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.resolve(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", render.FormatDOT.ContentType())
	w.WriteHeader(http.StatusOK)
	_ = diagram.WriteDOT(g, w)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	def, g, ok := s.resolve(w, r)
	if !ok {
		return
	}
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInvalidFormat, err, "image format"))
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	data, hit, err := s.runner.RenderBytesWithCacheInfo(r.Context(), g, format, refresh)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	cacheStatus := "MISS"
	if hit {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", `inline; filename="`+def.Output+"."+format.Ext()+`"`)
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// resolve looks up and builds the diagram named in the URL, writing an error
// response when that fails.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (builtin.Definition, *diagram.Graph, bool) {
	name := chi.URLParam(r, "name")
	if err := errs.ValidateDiagramName(name); err != nil {
		s.fail(w, r, err)
		return builtin.Definition{}, nil, false
	}
	def, ok := s.lookup(name)
	if !ok {
		s.fail(w, r, errs.New(errs.ErrCodeDiagramNotFound, "unknown diagram %q", name))
		return builtin.Definition{}, nil, false
	}
	g, err := def.Build()
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "build %s", def.Name))
		return builtin.Definition{}, nil, false
	}
	return def, g, true
}

func summarize(d builtin.Definition, g *diagram.Graph) DiagramSummary {
	return DiagramSummary{
		Name:    d.Name,
		Aliases: d.Aliases,
		Title:   d.Title,
		Output:  d.Output,
		Format:  g.Format(),
		Nodes:   g.NodeCount(),
		Edges:   g.EdgeCount(),
	}
}

// fail writes err as a JSON error with a status derived from its code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	code := string(errs.GetCode(err))
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	if status >= 500 {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		s.logger.Error("request error", "request_id", RequestID(r.Context()), "err", err)
	}
	writeError(w, r, status, code, errs.UserMessage(err))
}

// StatusCode maps an error onto an HTTP status.
func StatusCode(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidEngine,
		errs.ErrCodeInvalidDefinition, errs.ErrCodeInvalidPath, errs.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errs.ErrCodeDiagramNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeEngineUnavailable:
		return http.StatusServiceUnavailable
	case errs.ErrCodeRender:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   msg,
		RequestID: RequestID(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
