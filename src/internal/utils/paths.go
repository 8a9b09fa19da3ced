package utils

import (
	"net/url"
	"path/filepath"
	"strings"
)

// GetAbsolutePath returns path if it was absolute, otherwise joins it with baseDir
func GetAbsolutePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(baseDir, path))
}

// ResolveFileURL rewrites a relative file:// URL (file://feeds/drop.txt) into an
// absolute one rooted at baseDir. Other URLs are returned unchanged.
func ResolveFileURL(rawURL, baseDir string) string {
	if !strings.HasPrefix(rawURL, "file://") {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := filepath.FromSlash(u.Host + u.Path)
	if path == "" || filepath.IsAbs(path) {
		return rawURL
	}

	// Built by hand so {{placeholders}} survive unescaped.
	return "file://" + filepath.ToSlash(GetAbsolutePath(path, baseDir))
}
