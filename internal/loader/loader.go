// Package loader fetches model assets over HTTP and reports load events
// the way the embedded viewer does: progress fractions, then load or error.
package loader

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrHTTPStatus is returned for non-200 responses.
	ErrHTTPStatus = errors.New("loader: unexpected HTTP status")

	// ErrBadAsset is returned when the body is not a valid binary glTF.
	ErrBadAsset = errors.New("loader: invalid GLB asset")

	// ErrTooLarge is returned when the body exceeds the size limit.
	ErrTooLarge = errors.New("loader: asset too large")
)

// DefaultMaxSize is the default body size limit.
const DefaultMaxSize = 256 << 20

// GLB header layout: magic, version, total length; all little-endian uint32.
const (
	glbMagic      = 0x46546C67 // "glTF"
	glbVersion    = 2
	glbHeaderSize = 12
)

// Events receives load notifications. Nil fields are skipped.
type Events struct {
	OnProgress func(fraction float64)
	OnLoad     func()
	OnError    func(err error)
}

func (e Events) progress(f float64) {
	if e.OnProgress != nil {
		e.OnProgress(f)
	}
}

func (e Events) load() {
	if e.OnLoad != nil {
		e.OnLoad()
	}
}

func (e Events) fail(err error) {
	if e.OnError != nil {
		e.OnError(err)
	}
}

// Loader fetches assets.
type Loader struct {
	client   *http.Client
	maxSize  int64
	validate bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithMaxSize sets the body size limit in bytes.
func WithMaxSize(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxSize = n
		}
	}
}

// WithValidation turns GLB header validation on or off. It is on by default
// and applies to URLs whose path ends in ".glb".
func WithValidation(on bool) Option {
	return func(l *Loader) { l.validate = on }
}

// New returns a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: 5 * time.Minute},
		maxSize:  DefaultMaxSize,
		validate: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch downloads url into w and reports events to ev. It returns the number
// of bytes written.
//
// Progress is reported only when the server sends a Content-Length, and
// never reaches 1 before the body is complete and valid. On success ev gets
// OnProgress(1) followed by OnLoad. On failure ev gets OnError with the
// returned error. A cancelled ctx returns ctx.Err() without any event; the
// caller that cancelled owns the session.
func (l *Loader) Fetch(ctx context.Context, url string, w io.Writer, ev Events) (int64, error) {
	n, err := l.fetch(ctx, url, w, ev)
	if err != nil {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		ev.fail(err)
		return n, err
	}
	ev.progress(1)
	ev.load()
	return n, nil
}

func (l *Loader) fetch(ctx context.Context, url string, w io.Writer, ev Events) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("loader: build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("loader: fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}
	if resp.ContentLength > l.maxSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	pr := &progressReader{
		r:     io.LimitReader(resp.Body, l.maxSize+1),
		total: resp.ContentLength,
		ev:    ev,
	}
	n, err := io.Copy(w, pr)
	if err != nil {
		return n, fmt.Errorf("loader: read %s: %w", url, err)
	}
	if n > l.maxSize {
		return n, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, l.maxSize)
	}
	if l.validate && isGLB(url) {
		if err := ValidateGLB(pr.header[:pr.headerLen], n); err != nil {
			return n, err
		}
	}
	return n, nil
}

func isGLB(url string) bool {
	path, _, _ := strings.Cut(url, "?")
	path, _, _ = strings.Cut(path, "#")
	return strings.HasSuffix(strings.ToLower(path), ".glb")
}

// ValidateGLB checks a binary glTF header against the body size.
func ValidateGLB(header []byte, size int64) error {
	if len(header) < glbHeaderSize {
		return fmt.Errorf("%w: %d-byte body is shorter than the header", ErrBadAsset, size)
	}
	if magic := binary.LittleEndian.Uint32(header[0:4]); magic != glbMagic {
		return fmt.Errorf("%w: bad magic %#x", ErrBadAsset, magic)
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != glbVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadAsset, v)
	}
	if declared := int64(binary.LittleEndian.Uint32(header[8:12])); declared != size {
		return fmt.Errorf("%w: header declares %d bytes, got %d", ErrBadAsset, declared, size)
	}
	return nil
}

// progressReader reports read fractions and keeps the first header bytes.
type progressReader struct {
	r         io.Reader
	total     int64
	read      int64
	ev        Events
	header    [glbHeaderSize]byte
	headerLen int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		if p.headerLen < glbHeaderSize {
			p.headerLen += copy(p.header[p.headerLen:], b[:n])
		}
		p.read += int64(n)
		if p.total > 0 && p.read < p.total {
			p.ev.progress(float64(p.read) / float64(p.total))
		}
	}
	return n, err
}
