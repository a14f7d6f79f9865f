package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyCategory   = "category"
	KeyKind       = "kind"
	KeyFragment   = "fragment"
	KeyDocURL     = "doc_url"
	KeyTopic      = "topic"
	KeyFile       = "file"
	KeyLanguage   = "language"
	KeyTool       = "tool"
	KeyCommand    = "command"
	KeyDurationMS = "duration_ms"
	KeyCause      = "cause"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Fragment(f string) slog.Attr     { return slog.String(KeyFragment, f) }
func DocURL(u string) slog.Attr       { return slog.String(KeyDocURL, u) }
func Topic(t string) slog.Attr        { return slog.String(KeyTopic, t) }
func File(path string) slog.Attr      { return slog.String(KeyFile, path) }
func Language(l string) slog.Attr     { return slog.String(KeyLanguage, l) }
func Tool(t string) slog.Attr         { return slog.String(KeyTool, t) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Cause(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyCause, "")
	}
	return slog.String(KeyCause, err.Error())
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
