// Package settings persists the deck's configuration document.
//
// The document is a flat JSON object of settings keys, in the manner of an
// editor's settings.json:
//
//	{
//	  "projectDeck.projects": [ ... ],
//	  "projectDeck.fetchFavicons": true,
//	  "editor.fontSize": 13
//	}
//
// A Backend reads and writes single keys. Writes replace the whole document
// atomically (temp file + rename) and keep every unrelated key as it was.
package settings
