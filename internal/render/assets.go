package render

import (
	"embed"
	"fmt"
	"path"

	"github.com/fyrsmithlabs/projectdeck/internal/cache"
)

//go:embed assets/panel.css assets/changelog.md
var assetFS embed.FS

// Asset paths.
const (
	StylesheetAsset = "assets/panel.css"
	ChangelogAsset  = "assets/changelog.md"
)

// Assets serves embedded static files through a memo. Entries are loaded once
// and project mutations never invalidate them.
type Assets struct {
	memo *cache.Memo
	read func(name string) ([]byte, error)
}

// NewAssets creates an asset cache over memo.
func NewAssets(memo *cache.Memo) *Assets {
	return &Assets{memo: memo, read: assetFS.ReadFile}
}

// Get returns the asset at name.
func (a *Assets) Get(name string) (string, error) {
	return a.memo.Get(cache.Key{Resource: "asset", Param: path.Clean(name)}, func() (string, error) {
		data, err := a.read(name)
		if err != nil {
			return "", fmt.Errorf("failed to read asset %s: %w", name, err)
		}
		return string(data), nil
	})
}

// Stylesheet returns the panel CSS.
func (a *Assets) Stylesheet() (string, error) {
	return a.Get(StylesheetAsset)
}

// Changelog returns the changelog text.
func (a *Assets) Changelog() (string, error) {
	return a.Get(ChangelogAsset)
}
