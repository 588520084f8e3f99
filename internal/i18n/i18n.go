// Package i18n holds the localized strings shown by the viewer shell.
//
// Strings are registered in the golang.org/x/text default catalog at init
// time, keyed by the constants below. Progress keys that end in "Pct" take
// the integer percentage as their only argument.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported lists the languages with a complete catalog.
// The first entry is the fallback.
var Supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(Supported)

// Message keys.
const (
	KeyTierHighPerf    = "tier.highperf"
	KeyTierAccelerated = "tier.accelerated"
	KeyTierBasic       = "tier.basic"
	KeyTierUnsupported = "tier.unsupported"
	KeyTierUnknown     = "tier.unknown"

	KeyStarting           = "progress.starting"
	KeyConnecting         = "progress.connecting"
	KeyInitializing       = "progress.initializing"
	KeyDownloadingPct     = "progress.downloading"
	KeyProcessingPct      = "progress.processing"
	KeyApplyMaterialsPct  = "progress.materials"
	KeyLoadingGeometryPct = "progress.geometry"
	KeyApplyTexturesPct   = "progress.textures"
	KeyFinalizing         = "progress.finalizing"
	KeyLoaded             = "progress.loaded"
	KeyRetrying           = "progress.retrying"
	KeyTimeout            = "progress.timeout"
	KeyLoadError          = "progress.error"

	KeyRetryAction    = "action.retry"
	KeyToggleRotation = "action.rotate"
	KeyResetCamera    = "action.reset-camera"
	KeyRotationSpeed  = "action.speed"
)

type entry struct {
	key, en, es string
}

var entries = []entry{
	{KeyTierHighPerf, "Maximum performance", "Rendimiento máximo"},
	{KeyTierAccelerated, "High performance", "Alto rendimiento"},
	{KeyTierBasic, "Compatibility", "Compatibilidad"},
	{KeyTierUnsupported, "No GPU support", "Sin soporte GPU"},
	{KeyTierUnknown, "Unknown status", "Estado desconocido"},

	{KeyStarting, "Initializing advanced view...", "Inicializando vista avanzada..."},
	{KeyConnecting, "Connecting to server...", "Conectando al servidor..."},
	{KeyInitializing, "Initializing system...", "Inicializando sistema..."},
	{KeyDownloadingPct, "Downloading model %d%%", "Descargando modelo %d%%"},
	{KeyProcessingPct, "Processing geometry %d%%", "Procesando geometría %d%%"},
	{KeyApplyMaterialsPct, "Applying materials %d%%", "Aplicando materiales %d%%"},
	{KeyLoadingGeometryPct, "Loading geometry %d%%", "Cargando geometría %d%%"},
	{KeyApplyTexturesPct, "Applying textures %d%%", "Aplicando texturas %d%%"},
	{KeyFinalizing, "Finalizing load...", "Finalizando carga..."},
	{KeyLoaded, "Model loaded", "Modelo cargado"},
	{KeyRetrying, "Retrying...", "Reintentando..."},
	{KeyTimeout, "Load timed out. Try again.", "Tiempo de carga excedido. Intenta reintentar."},
	{KeyLoadError, "Failed to load the 3D model. Check your connection.", "Error al cargar el modelo 3D. Verifica la conexión."},

	{KeyRetryAction, "Retry", "Reintentar"},
	{KeyToggleRotation, "Toggle rotation", "Alternar rotación"},
	{KeyResetCamera, "Reset camera", "Restablecer cámara"},
	{KeyRotationSpeed, "Rotation speed", "Velocidad de rotación"},
}

func init() {
	for _, e := range entries {
		if err := message.SetString(language.English, e.key, e.en); err != nil {
			panic(err)
		}
		if err := message.SetString(language.Spanish, e.key, e.es); err != nil {
			panic(err)
		}
	}
}

// Match returns the supported language closest to the given BCP 47 strings
// (for example an Accept-Language header value). Unknown or empty input
// yields the fallback language.
func Match(langs ...string) language.Tag {
	_, idx := language.MatchStrings(matcher, langs...)
	return Supported[idx]
}

// Sprintf formats the catalog entry for key in the given language.
func Sprintf(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag).Sprintf(key, args...)
}
