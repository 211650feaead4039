package vite

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/http"
	"strings"

	"github.com/tdewolff/minify/v2"
	minhtml "github.com/tdewolff/minify/v2/html"
)

// ErrRender marks a template that could not produce a document.
var ErrRender = errors.New("vite: render failed")

// Template turns a resolved payload into a response body.
// Render must not block.
type Template[S any] interface {
	Render(r *http.Request, state S, p *Payload) ([]byte, error)
}

type TemplateFunc[S any] func(r *http.Request, state S, p *Payload) ([]byte, error)

func (f TemplateFunc[S]) Render(r *http.Request, state S, p *Payload) ([]byte, error) {
	return f(r, state, p)
}

// AssetTags renders stylesheet links followed by module scripts, each group
// in payload order.
func AssetTags(p *Payload) template.HTML {
	var b strings.Builder
	for _, a := range p.Styles() {
		fmt.Fprintf(&b, `<link rel="stylesheet" href="%s">`, html.EscapeString(a.Path))
		b.WriteByte('\n')
	}
	for _, a := range p.Scripts() {
		fmt.Fprintf(&b, `<script type="module" src="%s"></script>`, html.EscapeString(a.Path))
		b.WriteByte('\n')
	}
	return template.HTML(b.String())
}

// Document is what HTMLTemplate executes against.
type Document[S any] struct {
	Title   string
	Lang    string
	Assets  template.HTML
	Content template.HTML
	Path    string
	State   S
}

const DefaultDocument = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{.Assets}}</head>
<body>
<div id="app">{{.Content}}</div>
</body>
</html>
`

// HTMLTemplate renders payloads through html/template.
type HTMLTemplate[S any] struct {
	tmpl   *template.Template
	title  string
	lang   string
	minify *minify.M
}

type HTMLOption func(*htmlConfig)

type htmlConfig struct {
	title  string
	lang   string
	minify bool
	funcs  template.FuncMap
}

func WithTitle(title string) HTMLOption {
	return func(c *htmlConfig) { c.title = title }
}

func WithLang(lang string) HTMLOption {
	return func(c *htmlConfig) { c.lang = lang }
}

// WithMinify strips whitespace and optional tags from the output.
func WithMinify() HTMLOption {
	return func(c *htmlConfig) { c.minify = true }
}

func WithFuncs(funcs template.FuncMap) HTMLOption {
	return func(c *htmlConfig) { c.funcs = funcs }
}

// NewHTMLTemplate parses src. An empty src uses DefaultDocument.
func NewHTMLTemplate[S any](src string, opts ...HTMLOption) (*HTMLTemplate[S], error) {
	cfg := htmlConfig{lang: "en"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if src == "" {
		src = DefaultDocument
	}

	tmpl, err := template.New("document").Funcs(cfg.funcs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	t := &HTMLTemplate[S]{tmpl: tmpl, title: cfg.title, lang: cfg.lang}
	if cfg.minify {
		m := minify.New()
		m.AddFunc("text/html", minhtml.Minify)
		t.minify = m
	}
	return t, nil
}

func (t *HTMLTemplate[S]) Render(r *http.Request, state S, p *Payload) ([]byte, error) {
	doc := Document[S]{
		Title:  t.title,
		Lang:   t.lang,
		Assets: AssetTags(p),
		State:  state,
	}
	if p.HasContent() {
		// server-rendered markup is trusted output of the renderer
		doc.Content = template.HTML(p.Content())
	}
	if r != nil && r.URL != nil {
		doc.Path = r.URL.Path
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	if t.minify == nil {
		return buf.Bytes(), nil
	}

	out, err := t.minify.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: minify: %w", ErrRender, err)
	}
	return out, nil
}
