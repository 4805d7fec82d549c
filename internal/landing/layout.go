// Package landing describes where the landing page lives on disk: the landing
// document itself and the static directories mounted under fixed URL
// prefixes.
package landing

import (
	"path"
	"path/filepath"
	"strings"
)

// IndexFile is the landing document's name inside the landing directory.
const IndexFile = "index.html"

// Mount exposes Dir under the URL Prefix. Prefix has no trailing slash.
type Mount struct {
	Prefix string
	Dir    string
}

// Layout is the on-disk shape of the landing site.
type Layout struct {
	Dir    string
	Index  string
	Mounts []Mount
}

// NewLayout returns the layout rooted at dir: index.html, styles/ under
// /styles, src/js/ under /js and assets/ under /assets.
func NewLayout(dir string) Layout {
	return Layout{
		Dir:   dir,
		Index: filepath.Join(dir, IndexFile),
		Mounts: []Mount{
			{Prefix: "/styles", Dir: filepath.Join(dir, "styles")},
			{Prefix: "/js", Dir: filepath.Join(dir, "src", "js")},
			{Prefix: "/assets", Dir: filepath.Join(dir, "assets")},
		},
	}
}

// Resolve maps a URL path to the file it names, if some mount covers it. The
// returned path never escapes the mount directory.
func (l Layout) Resolve(urlPath string) (string, bool) {
	for _, m := range l.Mounts {
		if urlPath != m.Prefix && !strings.HasPrefix(urlPath, m.Prefix+"/") {
			continue
		}
		rest := path.Clean("/" + strings.TrimPrefix(urlPath, m.Prefix))
		if rest == "/" {
			return "", false
		}
		return filepath.Join(m.Dir, filepath.FromSlash(rest)), true
	}
	return "", false
}
