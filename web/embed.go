package web

import (
	"embed"
	"io/fs"
)

var (
	//go:embed templates content assets
	files embed.FS
)

// Templates returns the embedded html/template sources.
func Templates() fs.FS {
	sub, _ := fs.Sub(files, "templates")
	return sub
}

// Content returns the embedded résumé content (TOML).
func Content() fs.FS {
	sub, _ := fs.Sub(files, "content")
	return sub
}

// Assets returns the embedded static assets served under /assets.
func Assets() fs.FS {
	sub, _ := fs.Sub(files, "assets")
	return sub
}
