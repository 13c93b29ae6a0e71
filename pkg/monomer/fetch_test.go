package monomer

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const remoteLibrary = `[[monomer]]
symbol  = "Aib"
name    = "Aminoisobutyric acid"
polymer = "PEPTIDE"
kind    = "amino_acid"
role    = "backbone"
ports   = ["R1", "R2"]
`

func TestFetch(t *testing.T) {
	old := fetchDelay
	fetchDelay = time.Millisecond
	t.Cleanup(func() { fetchDelay = old })

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flaky.toml":
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(remoteLibrary))
		case "/broken.toml":
			w.Write([]byte("[[monomer]]\nsymbol = 3\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.Client(), srv.URL+"/flaky.toml")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want a retry after 503", calls.Load())
	}
	lib, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := lib.Lookup(Peptide, "Aib"); !ok {
		t.Error("fetched library lacks Aib")
	}

	if _, err := Fetch(context.Background(), srv.Client(), srv.URL+"/missing.toml"); err == nil {
		t.Error("Fetch succeeded on 404")
	}
	if _, err := Fetch(context.Background(), srv.Client(), srv.URL+"/broken.toml"); err == nil {
		t.Error("Fetch accepted an invalid library")
	}
}

func TestIsURL(t *testing.T) {
	for src, want := range map[string]bool{
		"https://example.org/lib.toml": true,
		"http://localhost/lib.toml":    true,
		"lib.toml":                     false,
		"/etc/helmdraw/lib.toml":       false,
	} {
		if got := IsURL(src); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", src, got, want)
		}
	}
}
