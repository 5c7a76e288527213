package render

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/fyrsmithlabs/projectdeck/internal/cache"
)

var settingsMenuTmpl = template.Must(template.New("settings-menu").Parse(
	`<nav class="deck-menu">` +
		`<span>{{len .Commands}} commands</span>` +
		`{{range .Commands}}<button type="button" data-command="{{.}}">{{.}}</button>{{end}}` +
		`<label><input type="checkbox" data-command="favicons"{{if .Favicons}} checked{{end}}> favicons</label>` +
		`</nav>`))

var emptyStateTmpl = template.Must(template.New("empty-state").Parse(
	`<p class="deck-empty">No projects yet. Run <code>projectdeck add</code> or <code>projectdeck scan</code>.</p>`))

var menuCommands = []string{"add", "scan", "refresh"}

// Blocks memoizes structural markup that depends only on its inputs, never
// on the project collection.
type Blocks struct {
	memo *cache.Memo
}

// NewBlocks creates a block cache over memo.
func NewBlocks(memo *cache.Memo) *Blocks {
	return &Blocks{memo: memo}
}

// SettingsMenu returns the panel menu for the given favicon preference.
func (b *Blocks) SettingsMenu(favicons bool) (template.HTML, error) {
	key := cache.Key{Resource: "settings-menu", Param: "favicons=" + strconv.FormatBool(favicons)}
	return b.get(key, settingsMenuTmpl, map[string]any{
		"Commands": menuCommands,
		"Favicons": favicons,
	})
}

// EmptyState returns the markup shown for an empty deck.
func (b *Blocks) EmptyState() (template.HTML, error) {
	return b.get(cache.Key{Resource: "empty-state"}, emptyStateTmpl, nil)
}

func (b *Blocks) get(key cache.Key, tmpl *template.Template, data any) (template.HTML, error) {
	text, err := b.memo.Get(key, func() (string, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	})
	// Produced by html/template, so already escaped.
	return template.HTML(text), err
}
