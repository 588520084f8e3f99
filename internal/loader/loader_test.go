package loader

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

// glb builds a minimal binary glTF of size bytes.
func glb(size int) []byte {
	b := make([]byte, size)
	binary.LittleEndian.PutUint32(b[0:4], glbMagic)
	binary.LittleEndian.PutUint32(b[4:8], glbVersion)
	binary.LittleEndian.PutUint32(b[8:12], uint32(size))
	return b
}

type recorder struct {
	fractions []float64
	loads     int
	errs      []error
}

func (r *recorder) events() Events {
	return Events{
		OnProgress: func(f float64) { r.fractions = append(r.fractions, f) },
		OnLoad:     func() { r.loads++ },
		OnError:    func(err error) { r.errs = append(r.errs, err) },
	}
}

func serve(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(status)
		// Write in chunks so the client sees several reads.
		for i := 0; i < len(body); i += 4096 {
			end := min(i+4096, len(body))
			_, _ = w.Write(body[i:end])
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchValidGLB(t *testing.T) {
	body := glb(64 << 10)
	srv := serve(t, body, http.StatusOK)

	var rec recorder
	var buf bytes.Buffer
	n, err := New().Fetch(context.Background(), srv.URL+"/model.glb", &buf, rec.events())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if n != int64(len(body)) || !bytes.Equal(buf.Bytes(), body) {
		t.Errorf("Fetch() wrote %d bytes, want %d", n, len(body))
	}
	if rec.loads != 1 || len(rec.errs) != 0 {
		t.Errorf("loads, errors = %d, %v; want 1, none", rec.loads, rec.errs)
	}
	if len(rec.fractions) == 0 || rec.fractions[len(rec.fractions)-1] != 1 {
		t.Fatalf("fractions = %v, want ending in 1", rec.fractions)
	}
	for i := 1; i < len(rec.fractions); i++ {
		if rec.fractions[i] < rec.fractions[i-1] {
			t.Errorf("fractions decrease at %d: %v", i, rec.fractions)
		}
	}
	for _, f := range rec.fractions[:len(rec.fractions)-1] {
		if f >= 1 {
			t.Errorf("intermediate fraction %v reached 1 before validation", f)
		}
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := serve(t, []byte("missing"), http.StatusNotFound)

	var rec recorder
	_, err := New().Fetch(context.Background(), srv.URL+"/model.glb", &bytes.Buffer{}, rec.events())
	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("Fetch() error = %v, want ErrHTTPStatus", err)
	}
	if len(rec.errs) != 1 || rec.loads != 0 {
		t.Errorf("errors, loads = %v, %d; want one error, no load", rec.errs, rec.loads)
	}
}

func TestFetchBadAsset(t *testing.T) {
	tests := map[string][]byte{
		"magic":   append([]byte("JUNK"), glb(32)[4:]...),
		"version": func() []byte { b := glb(32); b[4] = 1; return b }(),
		"length":  func() []byte { b := glb(32); b[8] = 99; return b }(),
		"short":   []byte("glTF"),
	}
	for name, body := range tests {
		srv := serve(t, body, http.StatusOK)
		var rec recorder
		_, err := New().Fetch(context.Background(), srv.URL+"/m.GLB?v=1", &bytes.Buffer{}, rec.events())
		if !errors.Is(err, ErrBadAsset) {
			t.Errorf("%s: Fetch() error = %v, want ErrBadAsset", name, err)
		}
		if rec.loads != 0 || len(rec.errs) != 1 {
			t.Errorf("%s: loads, errors = %d, %v", name, rec.loads, rec.errs)
		}
	}
}

func TestFetchSkipsValidationForOtherFiles(t *testing.T) {
	srv := serve(t, []byte(`{"asset":{"version":"2.0"}}`), http.StatusOK)
	var rec recorder
	if _, err := New().Fetch(context.Background(), srv.URL+"/scene.gltf", &bytes.Buffer{}, rec.events()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if rec.loads != 1 {
		t.Errorf("loads = %d, want 1", rec.loads)
	}
}

func TestFetchTooLarge(t *testing.T) {
	srv := serve(t, glb(1024), http.StatusOK)
	var rec recorder
	_, err := New(WithMaxSize(512)).Fetch(context.Background(), srv.URL+"/model.glb", &bytes.Buffer{}, rec.events())
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Fetch() error = %v, want ErrTooLarge", err)
	}
}

func TestFetchCancelledSendsNoEvents(t *testing.T) {
	srv := serve(t, glb(64), http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var rec recorder
	_, err := New().Fetch(ctx, srv.URL+"/model.glb", &bytes.Buffer{}, rec.events())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
	if rec.loads != 0 || len(rec.errs) != 0 || len(rec.fractions) != 0 {
		t.Errorf("events after cancel: %+v", rec)
	}
}
