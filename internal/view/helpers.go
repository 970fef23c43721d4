// internal/view/helpers.go
//
// Template functions.  The request-info helpers take the *requestinfo.Info
// carried by Page, so templates write {{ browser .Info }} and never reach
// into nested structs.

package view

import (
	"html/template"

	"github.com/yanizio/nasabah/internal/message"
	"github.com/yanizio/nasabah/internal/requestinfo"
	"github.com/yanizio/nasabah/internal/widget"
	"go.uber.org/zap"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"dict":        dict,
		"widget":      renderWidget,
		"noticeClass": noticeClass,

		"browser": func(i *requestinfo.Info) string {
			if i == nil {
				return ""
			}
			return i.UA.Browser
		},
		"device": func(i *requestinfo.Info) string {
			if i == nil {
				return ""
			}
			return i.UA.Device
		},
		"country": func(i *requestinfo.Info) string {
			if i == nil {
				return ""
			}
			return i.Geo.CountryISO
		},
		"isBot": func(i *requestinfo.Info) bool { return i != nil && i.UA.IsBot },
	}
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// renderWidget renders a registered widget.  Failures become HTML comments
// so a broken fragment never takes the whole page down.
func renderWidget(key string, params map[string]any) template.HTML {
	w := widget.Lookup(key)
	if w == nil {
		return template.HTML("<!-- widget not found -->")
	}
	html, err := w.Render(params)
	if err != nil {
		zap.S().Warnw("widget render failed", "widget", key, "err", err)
		return template.HTML("<!-- widget error -->")
	}
	return html
}

func noticeClass(k message.Kind) string {
	switch k {
	case message.Success:
		return "notice notice-success"
	case message.Error:
		return "notice notice-error"
	case message.Loading:
		return "notice notice-loading"
	}
	return "notice notice-info"
}
