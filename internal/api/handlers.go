package api

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/helmdraw/pkg/buildinfo"
	"github.com/matzehuels/helmdraw/pkg/cache"
	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/document"
	"github.com/matzehuels/helmdraw/pkg/edit"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

// contentTypes maps an output format to the media type served for it.
var contentTypes = map[string]string{
	diagram.FormatJSON: "application/json",
	diagram.FormatSVG:  "image/svg+xml",
	diagram.FormatDOT:  "text/vnd.graphviz",
	diagram.FormatPDF:  "application/pdf",
	diagram.FormatPNG:  "image/png",
}

type notationRequest struct {
	Notation string `json:"notation" validate:"required"`
}

type canonicalResponse struct {
	Notation string `json:"notation"`
	Hash     string `json:"hash"`
	Chains   int    `json:"chains"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
}

type deleteRequest struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

type replaceRequest struct {
	Node   string `json:"node" validate:"required"`
	Symbol string `json:"symbol" validate:"required"`
}

type editResponse struct {
	*edit.Result
	Version int `json:"version"`
}

// LayoutResponse is the JSON body of a layout request. Text artifacts
// (json, svg, dot) are returned as-is; pdf and png are base64 encoded.
type LayoutResponse struct {
	Notation  string            `json:"notation"`
	Hash      string            `json:"hash,omitempty"`
	Drawing   diagram.Drawing   `json:"drawing"`
	Artifacts map[string]string `json:"artifacts"`
	Cached    *cacheInfo        `json:"cached,omitempty"`
	Timings   *timings          `json:"timings,omitempty"`
}

type cacheInfo struct {
	Layout bool `json:"layout"`
	Render bool `json:"render"`
}

type timings struct {
	ParseMS  float64 `json:"parse_ms"`
	LayoutMS float64 `json:"layout_ms"`
	RenderMS float64 `json:"render_ms"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.docs.Len(),
	})
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) canonical(w http.ResponseWriter, r *http.Request) {
	var req notationRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := errors.ValidateNotationInput(req.Notation); err != nil {
		s.respondError(w, err)
		return
	}
	m, canonical, err := pipeline.Parse(r.Context(), s.runner.Monomers, req.Notation)
	if err != nil {
		s.respondError(w, err)
		return
	}
	g := m.Graph()
	s.respondJSON(w, http.StatusOK, canonicalResponse{
		Notation: canonical,
		Hash:     cache.NotationHash(canonical),
		Chains:   m.StartCount(),
		Nodes:    g.NodeCount(),
		Edges:    g.EdgeCount(),
	})
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if !s.decode(w, r, &opts) {
		return
	}
	opts.Logger = s.logger
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if s.respondRaw(w, r, res.Artifacts) {
		return
	}
	s.respondJSON(w, http.StatusOK, LayoutResponse{
		Notation:  res.Canonical,
		Hash:      res.NotationHash,
		Drawing:   res.Drawing,
		Artifacts: encodeArtifacts(res.Artifacts),
		Cached:    &cacheInfo{Layout: res.CacheInfo.LayoutHit, Render: res.CacheInfo.RenderHit},
		Timings: &timings{
			ParseMS:  ms(res.Stats.ParseTime),
			LayoutMS: ms(res.Stats.LayoutTime),
			RenderMS: ms(res.Stats.RenderTime),
		},
	})
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var req notationRequest
	if !s.decode(w, r, &req) {
		return
	}
	d, err := s.docs.Create(r.Context(), req.Notation)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/documents/"+d.ID)
	s.respondJSON(w, http.StatusCreated, d.Snapshot())
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	d, ok := s.document(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, d.Snapshot())
}

func (s *Server) closeDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.docs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteSelection(w http.ResponseWriter, r *http.Request) {
	d, ok := s.document(w, r)
	if !ok {
		return
	}
	var req deleteRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := d.Delete(r.Context(), req.Nodes, req.Edges)
	s.respondEdit(w, d, res, err)
}

func (s *Server) replaceNode(w http.ResponseWriter, r *http.Request) {
	d, ok := s.document(w, r)
	if !ok {
		return
	}
	var req replaceRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := d.Replace(r.Context(), req.Node, req.Symbol)
	s.respondEdit(w, d, res, err)
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	d, ok := s.document(w, r)
	if !ok {
		return
	}
	var req document.LinkRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := d.Connect(r.Context(), req)
	s.respondEdit(w, d, res, err)
}

func (s *Server) documentLayout(w http.ResponseWriter, r *http.Request) {
	d, ok := s.document(w, r)
	if !ok {
		return
	}
	opts, err := optionsFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	opts.Logger = s.logger
	drawing, artifacts, err := d.Layout(r.Context(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if s.respondRaw(w, r, artifacts) {
		return
	}
	s.respondJSON(w, http.StatusOK, LayoutResponse{
		Notation:  drawing.Notation,
		Drawing:   drawing,
		Artifacts: encodeArtifacts(artifacts),
	})
}

// optionsFromQuery reads render and geometry options from URL parameters.
// format may be repeated or comma separated.
func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		VizType: q.Get("viz_type"),
		Style:   q.Get("style"),
		Engine:  q.Get("engine"),
	}
	for _, v := range q["format"] {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				opts.Formats = append(opts.Formats, f)
			}
		}
	}

	floats := map[string]*float64{
		"scale":         &opts.Scale,
		"spacing":       &opts.Spacing,
		"branch_offset": &opts.BranchOffset,
		"strand_gap":    &opts.StrandGap,
		"row_gap":       &opts.RowGap,
		"dock_offset":   &opts.DockOffset,
	}
	for name, dst := range floats {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", name, v)
			}
			*dst = f
		}
	}

	bools := map[string]*bool{
		"guides":   &opts.LoopGuides,
		"warnings": &opts.Warnings,
		"detailed": &opts.Detailed,
	}
	for name, dst := range bools {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
			}
			*dst = b
		}
	}
	return opts, nil
}

// document loads the document named by the {id} route parameter, writing
// the error response itself when it cannot.
func (s *Server) document(w http.ResponseWriter, r *http.Request) (*document.Document, bool) {
	d, err := s.docs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return nil, false
	}
	return d, true
}

// decode reads a JSON body into dst and validates it. On failure it writes
// the error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
		case err == io.EOF:
			s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "request body is empty"))
		default:
			s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed JSON: %v", err))
		}
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.respondError(w, validationError(err))
		return false
	}
	return true
}

func (s *Server) respondEdit(w http.ResponseWriter, d *document.Document, res *edit.Result, err error) {
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, editResponse{Result: res, Version: d.Snapshot().Version})
}

// respondRaw writes the artifact itself when exactly one binary or SVG
// format was produced and the client accepts its media type.
func (s *Server) respondRaw(w http.ResponseWriter, r *http.Request, artifacts map[string][]byte) bool {
	if len(artifacts) != 1 {
		return false
	}
	for format, data := range artifacts {
		ct := contentTypes[format]
		if format == diagram.FormatJSON || !accepts(r, ct) {
			return false
		}
		w.Header().Set("Content-Type", ct)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			s.logger.Debug("write response", "err", err)
		}
	}
	return true
}

func accepts(r *http.Request, contentType string) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == contentType {
			return true
		}
	}
	return false
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respondJSON(w, status, body)
}

func encodeArtifacts(artifacts map[string][]byte) map[string]string {
	out := make(map[string]string, len(artifacts))
	for format, data := range artifacts {
		switch format {
		case diagram.FormatPDF, diagram.FormatPNG:
			out[format] = base64.StdEncoding.EncodeToString(data)
		default:
			out[format] = string(data)
		}
	}
	return out
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
