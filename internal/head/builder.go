// internal/head/builder.go
//
// The Builder collects everything that belongs inside a page's <head>.  It
// is scoped to one render.  The view engine seeds the defaults (charset,
// viewport, stylesheet), handlers add a page title, and the layout decides
// where each slice is emitted.
//
// Features
// --------
//   - SetTitle        – page title, joined with the site title.
//   - Meta, Link      – raw tags, deduplicated.
//   - Render helpers  – concat methods that return template.HTML.
package head

import (
	"html/template"
	"strings"
)

// Builder is used by one goroutine at a time.
type Builder struct {
	site  string
	title string

	metas []string
	links []string
	seen  map[string]struct{}
}

// New returns a Builder for a site called site.
func New(site string) *Builder {
	return &Builder{site: site, seen: make(map[string]struct{})}
}

// SetTitle sets the page part of <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) { b.title = t }

// PageTitle is the bare page title, suitable for an <h1>.
func (b *Builder) PageTitle() string { return b.title }

// Title returns the full <title> tag: "Page | Site", or just the one that
// is set.
func (b *Builder) Title() template.HTML {
	var parts []string
	for _, p := range []string{b.title, b.site} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(strings.Join(parts, " | ")) + "</title>")
}

// Meta and Link take pre-built tags; callers escape attribute values.
func (b *Builder) Meta(tag string) { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string) { b.add("link:"+tag, &b.links, tag) }

// Stylesheet is Link for the common case.
func (b *Builder) Stylesheet(href string) {
	b.Link(`<link rel="stylesheet" href="` + template.HTMLEscapeString(href) + `">`)
}

func (b *Builder) add(key string, tgt *[]string, tag string) {
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

func (b *Builder) Metas() template.HTML { return template.HTML(strings.Join(b.metas, "")) }
func (b *Builder) Links() template.HTML { return template.HTML(strings.Join(b.links, "")) }
