package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/gogpu/modelo/capability"
	"github.com/gogpu/modelo/internal/i18n"
	"github.com/gogpu/modelo/internal/prefs"
	"github.com/gogpu/modelo/internal/statuscard"
	"github.com/gogpu/modelo/progress"
	"github.com/gogpu/modelo/quality"
	"github.com/gogpu/modelo/viewer"
)

const maxPrefBody = 4 << 10

type pageData struct {
	Lang    string
	Theme   string
	Tier    capability.Tier
	Status  string
	Message string
	Viewer  template.HTML
	Models  []string
	Source  string
	Speeds  []string
	Labels  pageLabels
	Client  clientConfig
}

type pageLabels struct {
	Retry, Rotate, ResetCamera, Speed string
}

// clientConfig is handed to web/modelo.js, which binds the viewer's load,
// progress and error events to the same contract progress.Tracker follows.
type clientConfig struct {
	TimeoutMs          int64    `json:"timeoutMs"`
	InteractionDelayMs int64    `json:"interactionDelayMs"`
	Messages           []string `json:"messages"` // indexed by percentage
	Loaded             string   `json:"loaded"`
	Retrying           string   `json:"retrying"`
	TimedOut           string   `json:"timedOut"`
	Failed             string   `json:"failed"`
	OrbitKey           string   `json:"orbitKey,omitempty"`
}

// requestLang picks the response language from ?lang=, then
// Accept-Language, then the configured locale.
func (s *Server) requestLang(r *http.Request) language.Tag {
	return i18n.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), s.cfg.Locale)
}

// requestTier returns the ?tier= override or the detected tier. A browser
// that probed its own GPU reports its tier this way.
func (s *Server) requestTier(r *http.Request) (capability.Tier, error) {
	v := r.URL.Query().Get("tier")
	if v == "" {
		return s.desc.Tier, nil
	}
	t, ok := capability.ParseTier(v)
	if !ok {
		return 0, fmt.Errorf("unknown tier %q", v)
	}
	return t, nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	tier, err := s.requestTier(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lang := s.requestLang(r)

	models, err := s.manifest()
	if err != nil {
		s.logger.Warn("server: manifest unavailable", "err", err)
	}
	src := r.URL.Query().Get("src")
	if src == "" {
		src = s.cfg.Viewer.DefaultModel
	}
	if src == "" && len(models) > 0 {
		src = "/modelo/assets/" + models[0]
	}

	el := viewer.NewElement("viewer")
	el.SetAttribute(viewer.AttrCameraControls, "")
	el.SetAttribute(viewer.AttrEnvironmentImage, s.cfg.Viewer.EnvironmentImage)
	el.SetAttribute(viewer.AttrInteractionPrompt, s.cfg.Viewer.InteractionPrompt)
	controls := viewer.NewControls(el, s.controlsConfig(s.cfg.Viewer.AutoRotate, s.cfg.Viewer.RotationSpeed))
	quality.Resolve(tier).Apply(el)
	if src != "" {
		el.SetAttribute(viewer.AttrSrc, src)
	}

	theme := prefs.ThemeDark
	if s.store != nil {
		if theme, err = s.store.Theme(r.Context(), s.cfg.Storage.ThemeKey); err != nil {
			s.logger.Warn("server: theme lookup failed", "err", err)
			theme = prefs.ThemeDark
		}
		orbit, err := s.store.Get(r.Context(), s.cfg.Storage.CameraOrbitKey)
		switch {
		case err == nil:
			controls.SetOrbit(orbit)
		case !errors.Is(err, prefs.ErrNotFound):
			s.logger.Warn("server: camera orbit lookup failed", "err", err)
		}
	}

	bands, _ := progress.BandsByName(s.cfg.Progress.Bands)
	client := clientConfig{
		TimeoutMs:          s.cfg.Timing.LoadTimeout.Milliseconds(),
		InteractionDelayMs: s.cfg.Timing.InteractionDelay.Milliseconds(),
		Messages:           bands.Messages(lang),
		Loaded:             i18n.Sprintf(lang, i18n.KeyLoaded),
		Retrying:           i18n.Sprintf(lang, i18n.KeyRetrying),
		TimedOut:           i18n.Sprintf(lang, i18n.KeyTimeout),
		Failed:             i18n.Sprintf(lang, i18n.KeyLoadError),
	}
	if s.store != nil {
		client.OrbitKey = s.cfg.Storage.CameraOrbitKey
	}

	data := pageData{
		Lang:    lang.String(),
		Theme:   theme,
		Tier:    tier,
		Status:  tier.Status(lang),
		Message: i18n.Sprintf(lang, i18n.KeyStarting),
		Viewer:  el.HTML(),
		Models:  models,
		Source:  src,
		Speeds:  slices.Sorted(maps.Keys(s.cfg.Viewer.Speeds)),
		Labels: pageLabels{
			Retry:       i18n.Sprintf(lang, i18n.KeyRetryAction),
			Rotate:      i18n.Sprintf(lang, i18n.KeyToggleRotation),
			ResetCamera: i18n.Sprintf(lang, i18n.KeyResetCamera),
			Speed:       i18n.Sprintf(lang, i18n.KeyRotationSpeed),
		},
		Client: client,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("server: render page", "err", err)
	}
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	b, err := webFS.ReadFile("web/modelo.js")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(b)
}

func (s *Server) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	b, err := webFS.ReadFile("web/sw.js")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Service-Worker-Allowed", "/")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(b)
}

type capabilitiesResponse struct {
	capability.Descriptor
	Status                string `json:"status"`
	HighPerformanceVendor bool   `json:"highPerformanceVendor"`
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, capabilitiesResponse{
		Descriptor:            s.desc,
		Status:                s.desc.Status(s.requestLang(r)),
		HighPerformanceVendor: s.desc.IsHighPerformanceVendor(),
	})
}

type qualityResponse struct {
	Tier       capability.Tier    `json:"tier"`
	Parameters quality.Parameters `json:"parameters"`
	Attributes map[string]string  `json:"attributes"`
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	tier, err := s.requestTier(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p := quality.Resolve(tier)
	attrs := make(map[string]string)
	for _, a := range p.Attributes() {
		attrs[a.Name] = a.Value
	}
	writeJSON(w, http.StatusOK, qualityResponse{Tier: tier, Parameters: p, Attributes: attrs})
}

func (s *Server) handleStatusCard(w http.ResponseWriter, r *http.Request) {
	tier, err := s.requestTier(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pct := 0
	if v := r.URL.Query().Get("pct"); v != "" {
		if pct, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("bad pct %q", v))
			return
		}
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if err := statuscard.Render(w, tier.Label(s.requestLang(r)), tier, pct); err != nil {
		s.logger.Error("server: status card", "err", err)
	}
}

func (s *Server) handleGetPref(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("preferences disabled"))
		return
	}
	key := chi.URLParam(r, "key")
	v, err := s.store.Get(r.Context(), key)
	if errors.Is(err, prefs.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": v})
}

func (s *Server) handlePutPref(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("preferences disabled"))
		return
	}
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPrefBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad body: %w", err))
		return
	}
	key := chi.URLParam(r, "key")
	if err := s.store.Set(r.Context(), key, req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("preferences disabled"))
		return
	}
	theme, err := s.store.ToggleTheme(r.Context(), s.cfg.Storage.ThemeKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
