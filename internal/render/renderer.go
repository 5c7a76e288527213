package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/cache"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
	"github.com/fyrsmithlabs/projectdeck/internal/sanitize"
)

// Source supplies the data a render needs.
type Source interface {
	Current(ctx context.Context) (project.Collection, error)
	FetchFavicons(ctx context.Context) bool
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Project Deck</title>
<style>{{.CSS}}</style>
</head>
<body>
{{.Menu}}
{{- if .Rows}}
<ul class="deck-list">
{{- range .Rows}}
<li class="deck-project" id="{{.Anchor}}" data-id="{{.ID}}"{{with .Color}} style="border-left-color: {{.}}"{{end}}>
{{- with .Favicon}}<img class="favicon" src="{{.}}" alt="">{{end -}}
<span class="name">{{.Name}}</span> <span class="path">{{.Path}}</span>
{{- if .Links}} <span class="links">{{range .Links}}<a href="{{.URL}}">{{.Label}}</a>{{end}}</span>{{end -}}
</li>
{{- end}}
</ul>
{{- else}}
{{.Empty}}
{{- end}}
</body>
</html>
`))

type link struct {
	Label string
	URL   string
}

type row struct {
	ID      string
	Anchor  string
	Name    string
	Path    string
	Color   string
	Favicon string
	Links   []link
}

type page struct {
	CSS   template.CSS
	Menu  template.HTML
	Empty template.HTML
	Rows  []row
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithAssets sets the asset cache.
func WithAssets(a *Assets) Option {
	return func(r *Renderer) { r.assets = a }
}

// WithBlocks sets the block cache.
func WithBlocks(b *Blocks) Option {
	return func(r *Renderer) { r.blocks = b }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// Renderer builds the panel document.
type Renderer struct {
	source Source
	assets *Assets
	blocks *Blocks
	logger *logging.Logger
}

// NewRenderer creates a renderer over source. Caches default to private
// memos without metrics.
func NewRenderer(source Source, opts ...Option) *Renderer {
	r := &Renderer{source: source}
	for _, opt := range opts {
		opt(r)
	}
	if r.assets == nil {
		r.assets = NewAssets(cache.NewMemo("assets", nil))
	}
	if r.blocks == nil {
		r.blocks = NewBlocks(cache.NewMemo("blocks", nil))
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	return r
}

// Assets returns the renderer's asset cache.
func (r *Renderer) Assets() *Assets {
	return r.assets
}

// Render returns the full panel document.
func (r *Renderer) Render(ctx context.Context) (string, error) {
	coll, err := r.source.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load projects: %w", err)
	}
	favicons := r.source.FetchFavicons(ctx)

	css, err := r.assets.Stylesheet()
	if err != nil {
		return "", err
	}
	menu, err := r.blocks.SettingsMenu(favicons)
	if err != nil {
		return "", fmt.Errorf("failed to render menu: %w", err)
	}
	empty, err := r.blocks.EmptyState()
	if err != nil {
		return "", fmt.Errorf("failed to render empty state: %w", err)
	}

	data := page{
		// Embedded at build time.
		CSS:   template.CSS(css),
		Menu:  menu,
		Empty: empty,
		Rows:  make([]row, 0, len(coll)),
	}
	for _, p := range coll {
		data.Rows = append(data.Rows, newRow(p, favicons))
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render panel: %w", err)
	}

	r.logger.Trace(ctx, "panel rendered", zap.Int("projects", len(coll)), zap.Bool("favicons", favicons))
	return buf.String(), nil
}

func newRow(p project.Project, favicons bool) row {
	out := row{
		ID:     p.ID,
		Anchor: "project-" + sanitize.Identifier(p.ID),
		Name:   p.Name,
		Path:   p.Path,
	}
	// Hand-edited colors are only emitted when well formed.
	if c, ok := p.Color.Get(); ok && project.ValidateColor(p.Color) == nil {
		out.Color = c
	}

	for _, l := range []struct {
		label string
		value project.Nullable
	}{
		{"prod", p.ProductionURL},
		{"staging", p.StagingURL},
		{"dev", p.DevURL},
		{"manage", p.ManagementURL},
	} {
		if u, ok := l.value.Get(); ok {
			out.Links = append(out.Links, link{Label: l.label, URL: u})
		}
	}

	if favicons {
		out.Favicon = faviconURL(p)
	}
	return out
}

// faviconURL points at /favicon.ico of the first environment URL with a host.
func faviconURL(p project.Project) string {
	for _, n := range []project.Nullable{p.ProductionURL, p.StagingURL, p.DevURL, p.ManagementURL} {
		v, ok := n.Get()
		if !ok {
			continue
		}
		u, err := url.Parse(v)
		if err != nil || u.Host == "" {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/favicon.ico"}).String()
	}
	return ""
}
