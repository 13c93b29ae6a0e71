package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/helmdraw/pkg/document"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/layout"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	quiet := log.NewWithOptions(&strings.Builder{}, log.Options{Level: log.FatalLevel})
	runner := pipeline.NewRunner(nil, nil, nil, quiet)
	docs := document.NewStore(nil, document.WithLogger(quiet))
	srv := httptest.NewServer(New(runner, docs, Config{Logger: quiet}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, header ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode %T: %v", v, err)
	}
	return v
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t)
	if resp := do(t, srv, http.MethodGet, "/health", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
	resp := do(t, srv, http.MethodGet, "/v1/version", "")
	info := decodeBody[map[string]string](t, resp)
	if info["go"] == "" {
		t.Errorf("version = %v", info)
	}
}

func TestCanonical(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, http.MethodPost, "/v1/canonical", `{"notation":"RNA1{R(A).P.R(C)}$$$$"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decodeBody[canonicalResponse](t, resp)
	if got.Notation != "RNA1{R(A)P.R(C)}$$$$" || got.Nodes != 5 || got.Chains != 1 || got.Hash == "" {
		t.Errorf("canonical = %+v", got)
	}
}

func TestErrorResponses(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"empty body", http.MethodPost, "/v1/canonical", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing notation", http.MethodPost, "/v1/canonical", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, "/v1/canonical", `{"notation":"PEPTIDE1{A}$$$$","x":1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"syntax", http.MethodPost, "/v1/canonical", `{"notation":"RNA1{R(A"}`, http.StatusBadRequest, errors.ErrCodeNotationSyntax},
		{"unknown monomer", http.MethodPost, "/v1/canonical", `{"notation":"PEPTIDE1{A.[Xyz]}$$$$"}`, http.StatusUnprocessableEntity, errors.ErrCodeUnresolvedMonomer},
		{"bad format", http.MethodPost, "/v1/layout", `{"notation":"PEPTIDE1{A}$$$$","formats":["gif"]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad scale", http.MethodPost, "/v1/layout", `{"notation":"PEPTIDE1{A}$$$$","scale":100}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad id", http.MethodGet, "/v1/documents/nope", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing document", http.MethodGet, "/v1/documents/7f0e1c52-9d6b-4b7e-9a57-5a3d2b0e8c11", "", http.StatusNotFound, errors.ErrCodeDocumentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decodeBody[ErrorResponse](t, resp)
			if body.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", body.Code, tt.code, body.Message)
			}
		})
	}
}

func TestValidationMessage(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, http.MethodPost, "/v1/layout", `{"notation":"PEPTIDE1{A}$$$$","style":"neon"}`)
	body := decodeBody[ErrorResponse](t, resp)
	if body.Message != "style must be one of: simple, outline" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, http.MethodPost, "/v1/layout", `{"notation":"PEPTIDE1{A.G.C}$$$$","formats":["svg","json"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decodeBody[LayoutResponse](t, resp)
	if got.Drawing.Motif != layout.Linear || len(got.Drawing.Nodes) != 3 {
		t.Errorf("drawing = %v with %d nodes", got.Drawing.Motif, len(got.Drawing.Nodes))
	}
	if !strings.HasPrefix(got.Artifacts["svg"], "<svg ") {
		t.Errorf("svg artifact: %.40s", got.Artifacts["svg"])
	}
	if got.Cached == nil || got.Cached.Layout {
		t.Errorf("cached = %+v", got.Cached)
	}
}

func TestLayoutRawSVG(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, http.MethodPost, "/v1/layout", `{"notation":"PEPTIDE1{A.G.C}$$$$","formats":["svg"]}`,
		"Accept", "image/svg+xml")
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("Content-Type = %q", ct)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "<svg ") {
		t.Errorf("body: %.40s", buf.String())
	}
}

func TestDocumentLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/v1/documents", `{"notation":"PEPTIDE1{A.G.C.K}$$$$"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	snap := decodeBody[document.Snapshot](t, resp)
	base := "/v1/documents/" + snap.ID
	if loc := resp.Header.Get("Location"); loc != base {
		t.Errorf("Location = %q", loc)
	}

	resp = do(t, srv, http.MethodPost, base+"/delete", `{"nodes":["PEPTIDE1:2"]}`)
	edited := decodeBody[editResponse](t, resp)
	if edited.Notation != "PEPTIDE1{A}|PEPTIDE2{C.K}$$$$" || edited.Version != 1 {
		t.Errorf("delete = %+v", edited)
	}

	resp = do(t, srv, http.MethodPost, base+"/replace", `{"node":"PEPTIDE2:1","symbol":"Nle"}`)
	edited = decodeBody[editResponse](t, resp)
	if edited.Notation != "PEPTIDE1{A}|PEPTIDE2{[Nle].K}$$$$" || edited.Version != 2 {
		t.Errorf("replace = %+v", edited)
	}

	resp = do(t, srv, http.MethodPost, base+"/replace", `{"node":"PEPTIDE2:1"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("replace without symbol: status %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodPost, base+"/connect",
		`{"from":"PEPTIDE1:1","from_port":"R2","to":"PEPTIDE2:1","to_port":"R2"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("connect occupied port: status %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodGet, base+"/layout?format=json&guides=true", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("layout status = %d", resp.StatusCode)
	}
	lr := decodeBody[LayoutResponse](t, resp)
	if len(lr.Drawing.Nodes) != 3 || lr.Artifacts["json"] == "" {
		t.Errorf("layout: %d nodes, artifacts %v", len(lr.Drawing.Nodes), len(lr.Artifacts))
	}

	resp = do(t, srv, http.MethodGet, base+"/layout?guides=maybe", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad query: status %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodGet, base, "")
	got := decodeBody[document.Snapshot](t, resp)
	if got.Version != 2 || got.Chains != 2 {
		t.Errorf("get = %+v", got)
	}

	if resp := do(t, srv, http.MethodDelete, base, ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("close status = %d", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodGet, base, ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after close: status %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidStyle, http.StatusBadRequest},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeStructuralInvariant, http.StatusUnprocessableEntity},
		{errors.ErrCodeLayoutUnsupportedMotif, http.StatusUnprocessableEntity},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestErrorResponseHidesInternalCauses(t *testing.T) {
	status, body := errorResponse(errors.Wrap(errors.ErrCodeInternal, context.Canceled, "secret path /etc"))
	if status != http.StatusInternalServerError || body.Message != "internal error" {
		t.Errorf("errorResponse = %d %+v", status, body)
	}
	_, body = errorResponse(errors.New(errors.ErrCodeNotFound, "no node").WithNode(3))
	if body.Node == nil || *body.Node != 3 || body.Edge != nil {
		t.Errorf("node handle = %+v", body)
	}
}
