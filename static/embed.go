// Package static embeds the site asset bundle (CSS and JS).
package static

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

//go:embed css/*.css js/*.js
var assets embed.FS

// FS exposes the embedded assets.
func FS() fs.FS {
	return assets
}

// HTTP returns an http.FileSystem backed by the embedded assets.
func HTTP() http.FileSystem {
	return http.FS(assets)
}

// CopyAll writes all embedded assets into the destination directory,
// preserving the relative layout.
func CopyAll(dest string) error {
	return fs.WalkDir(assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		target := filepath.Join(dest, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil { //nolint:gosec // standard directory permissions
			return err
		}
		data, err := fs.ReadFile(assets, path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644) //nolint:gosec // standard file permissions
	})
}
