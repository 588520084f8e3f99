package modelo

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/modelo/capability"
	"github.com/gogpu/modelo/internal/fakeclock"
	"github.com/gogpu/modelo/internal/loader"
	"github.com/gogpu/modelo/progress"
	"github.com/gogpu/modelo/viewer"
)

const testTimeout = 20 * time.Second

func detectorFor(tier capability.Tier) *capability.Detector {
	if tier == capability.Unsupported {
		return capability.NewDetector(capability.WithProbers())
	}
	return capability.NewDetector(capability.WithProbers(capability.ProbeFunc{
		ProberName: "fake-" + tier.String(),
		ProberTier: tier,
		Fn: func(context.Context) (*capability.BackendInfo, error) {
			return capability.NewBackendInfo(capability.BackendInfo{API: "fake"}), nil
		},
	}))
}

func newTestShell(t *testing.T, tier capability.Tier, opts ...Option) (*Shell, *viewer.Element, *fakeclock.Clock) {
	t.Helper()
	el := viewer.NewElement("viewer")
	clk := fakeclock.New(time.UnixMilli(1_700_000_000_000))
	opts = append([]Option{
		WithDetector(detectorFor(tier)),
		WithTrackerOptions(progress.WithClock(clk), progress.WithTimeout(testTimeout)),
	}, opts...)
	sh := New(el, opts...)
	t.Cleanup(sh.Close)
	return sh, el, clk
}

func attr(el *viewer.Element, name string) string {
	v, _ := el.Attribute(name)
	return v
}

func TestInitAppliesQuality(t *testing.T) {
	tests := []struct {
		tier capability.Tier
		want map[string]string
	}{
		{capability.HighPerf3D, map[string]string{
			"tone-mapping": "aces", "shadow-intensity": "1.5", "shadow-softness": "1", "exposure": "1.3",
		}},
		{capability.Unsupported, map[string]string{
			"tone-mapping": "", "shadow-intensity": "0.8", "shadow-softness": "0.5", "exposure": "1",
		}},
	}
	for _, tt := range tests {
		sh, el, _ := newTestShell(t, tt.tier)
		desc := sh.Init(context.Background())
		if desc.Tier != tt.tier {
			t.Errorf("Init().Tier = %v, want %v", desc.Tier, tt.tier)
		}
		for name, want := range tt.want {
			if got := attr(el, name); got != want {
				t.Errorf("%v: %s = %q, want %q", tt.tier, name, got, want)
			}
		}
		if el.HasAttribute(viewer.AttrToneMapping) != (tt.tier == capability.HighPerf3D) {
			t.Errorf("%v: tone-mapping presence is wrong", tt.tier)
		}
	}
}

func TestStatus(t *testing.T) {
	sh, _, _ := newTestShell(t, capability.Accelerated3D)
	sh.Init(context.Background())
	if got := sh.Status(); got != "⚡ High performance" {
		t.Errorf("Status() = %q", got)
	}
}

func TestViewerEventsDriveTracker(t *testing.T) {
	sh, el, clk := newTestShell(t, capability.HighPerf3D)
	sh.Init(context.Background())

	snap := sh.SetSource("helmet.glb")
	if snap.State != progress.Loading || attr(el, viewer.AttrSrc) != "helmet.glb" {
		t.Fatalf("SetSource() = %+v, src = %q", snap, attr(el, viewer.AttrSrc))
	}

	sh.HandleProgress(0.4)
	el.SetAttribute(viewer.AttrCameraOrbit, "30deg 70deg 3m")
	sh.HandleLoad()
	if got := sh.Tracker().Snapshot().State; got != progress.Loaded {
		t.Errorf("state = %v, want %v", got, progress.Loaded)
	}

	// The orbit at load time becomes the reset orbit.
	el.SetAttribute(viewer.AttrCameraOrbit, "0deg 0deg 1m")
	sh.Controls().ResetCamera()
	if got := attr(el, viewer.AttrCameraOrbit); got != "30deg 70deg 3m" {
		t.Errorf("camera-orbit after reset = %q, want the orbit captured on load", got)
	}

	clk.Advance(2 * testTimeout)
	if got := sh.Tracker().Snapshot().State; got != progress.Loaded {
		t.Errorf("state after timeout window = %v, want %v", got, progress.Loaded)
	}
}

func TestTimeoutThenRetry(t *testing.T) {
	sh, el, clk := newTestShell(t, capability.BasicGraphics)
	sh.Init(context.Background())
	sh.SetSource("/modelo/assets/helmet.glb")
	sh.HandleProgress(0.2)

	clk.Advance(testTimeout)
	if got := sh.Tracker().Snapshot().State; got != progress.TimedOut {
		t.Fatalf("state = %v, want %v", got, progress.TimedOut)
	}

	snap, err := sh.Retry()
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if snap.Attempt != 2 {
		t.Errorf("Attempt = %d, want 2", snap.Attempt)
	}
	src := attr(el, viewer.AttrSrc)
	if !strings.HasPrefix(src, "/modelo/assets/helmet.glb?t=") || src != snap.URL {
		t.Errorf("src = %q, want base URL with token", src)
	}
	if _, err := sh.Retry(); !errors.Is(err, progress.ErrNotRetryable) {
		t.Errorf("Retry() while loading error = %v, want ErrNotRetryable", err)
	}
}

func TestSetSourceSupersedes(t *testing.T) {
	sh, el, clk := newTestShell(t, capability.HighPerf3D)
	sh.SetSource("a.glb")
	sh.HandleProgress(0.7)

	snap := sh.SetSource("b.glb")
	if snap.Fraction != 0 || snap.Attempt != 1 || attr(el, viewer.AttrSrc) != "b.glb" {
		t.Errorf("SetSource(b) = %+v", snap)
	}
	if n := clk.Pending(); n != 1 {
		t.Errorf("Pending() = %d, want 1", n)
	}
}

func glbBody(size int) []byte {
	b := make([]byte, size)
	copy(b, "glTF")
	binary.LittleEndian.PutUint32(b[4:8], 2)
	binary.LittleEndian.PutUint32(b[8:12], uint32(size))
	return b
}

func TestFetch(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	body := glbBody(32 << 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	sh, el, _ := newTestShell(t, capability.HighPerf3D, WithLoader(loader.New(loader.WithHTTPClient(srv.Client()))))
	sh.Init(context.Background())

	var buf bytes.Buffer
	_, err := sh.Fetch(context.Background(), srv.URL+"/helmet.glb", &buf)
	if !errors.Is(err, progress.ErrAssetLoad) || !errors.Is(err, loader.ErrHTTPStatus) {
		t.Fatalf("Fetch() error = %v, want ErrAssetLoad wrapping ErrHTTPStatus", err)
	}
	if got := sh.Tracker().Snapshot().State; got != progress.Errored {
		t.Fatalf("state = %v, want %v", got, progress.Errored)
	}

	fail.Store(false)
	buf.Reset()
	n, err := sh.RetryFetch(context.Background(), &buf)
	if err != nil {
		t.Fatalf("RetryFetch() error = %v", err)
	}
	if n != int64(len(body)) {
		t.Errorf("RetryFetch() = %d bytes, want %d", n, len(body))
	}
	snap := sh.Tracker().Snapshot()
	if snap.State != progress.Loaded || snap.Attempt != 2 || snap.Percent != 100 {
		t.Errorf("after retry: %+v", snap)
	}
	if !strings.Contains(attr(el, viewer.AttrSrc), "?t=") {
		t.Errorf("src = %q, want retry token", attr(el, viewer.AttrSrc))
	}
}

func TestFetchTimesOut(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	sh, _, clk := newTestShell(t, capability.HighPerf3D, WithLoader(loader.New(loader.WithHTTPClient(srv.Client()))))

	errc := make(chan error, 1)
	go func() {
		_, err := sh.Fetch(context.Background(), srv.URL+"/slow.glb", &bytes.Buffer{})
		errc <- err
	}()

	<-started
	clk.Advance(testTimeout)

	select {
	case err := <-errc:
		if !errors.Is(err, progress.ErrLoadTimeout) {
			t.Errorf("Fetch() error = %v, want ErrLoadTimeout", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Fetch() did not return after the timeout fired")
	}
	if got := sh.Tracker().Snapshot().State; got != progress.TimedOut {
		t.Errorf("state = %v, want %v", got, progress.TimedOut)
	}
}

func TestFetchSupersededMidStream(t *testing.T) {
	body := glbBody(64 << 10)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body[:len(body)/2])
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	sh, el, _ := newTestShell(t, capability.HighPerf3D, WithLoader(loader.New(loader.WithHTTPClient(srv.Client()))))

	progressing := make(chan struct{})
	var once sync.Once
	sh.Tracker().Subscribe(func(s progress.Snapshot) {
		if s.State == progress.Progressing && s.Generation == 1 {
			once.Do(func() { close(progressing) })
		}
	})

	errc := make(chan error, 1)
	go func() {
		_, err := sh.Fetch(context.Background(), srv.URL+"/a.glb", &bytes.Buffer{})
		errc <- err
	}()

	select {
	case <-progressing:
	case <-time.After(10 * time.Second):
		t.Fatal("download never reported progress")
	}
	next := sh.SetSource("b.glb")

	select {
	case err := <-errc:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("Fetch() error = %v, want ErrSuperseded", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Fetch() did not return after being superseded")
	}

	snap := sh.Tracker().Snapshot()
	if snap.Generation != next.Generation || snap.State != progress.Loading || snap.Fraction != 0 || snap.Err != nil {
		t.Errorf("new session after superseded download: %+v", snap)
	}
	if got := attr(el, viewer.AttrSrc); got != "b.glb" {
		t.Errorf("src = %q, want b.glb", got)
	}
}
