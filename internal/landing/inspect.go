package landing

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/net/html"
)

// AssetRef is a reference from the landing document to a mounted file.
type AssetRef struct {
	URL     string `json:"url"`
	Path    string `json:"path"`
	Present bool   `json:"present"`
}

// Report summarizes a landing document.
type Report struct {
	Title  string     `json:"title"`
	Assets []AssetRef `json:"assets"`
}

// Missing returns the references whose file does not exist.
func (r Report) Missing() []AssetRef {
	var missing []AssetRef
	for _, a := range r.Assets {
		if !a.Present {
			missing = append(missing, a)
		}
	}
	return missing
}

// Inspect parses the landing document and checks every href or src that
// points into one of the layout's mounts.
func Inspect(fsys afero.Fs, layout Layout) (Report, error) {
	data, err := afero.ReadFile(fsys, layout.Index)
	if err != nil {
		return Report{}, fmt.Errorf("read landing document: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return Report{}, fmt.Errorf("parse landing document: %w", err)
	}

	report := Report{Assets: []AssetRef{}}
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "title" && report.Title == "" && n.FirstChild != nil {
				report.Title = strings.TrimSpace(n.FirstChild.Data)
			}
			for _, attr := range n.Attr {
				if attr.Key != "href" && attr.Key != "src" {
					continue
				}
				url := stripQuery(attr.Val)
				if seen[url] {
					continue
				}
				file, ok := layout.Resolve(url)
				if !ok {
					continue
				}
				seen[url] = true
				present, _ := afero.Exists(fsys, file)
				report.Assets = append(report.Assets, AssetRef{URL: url, Path: file, Present: present})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return report, nil
}

// stripQuery drops any query or fragment and makes document-relative
// references absolute, since the landing document is served at "/".
func stripQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if ref != "" && !strings.HasPrefix(ref, "/") && !strings.Contains(ref, ":") {
		ref = "/" + strings.TrimPrefix(ref, "./")
	}
	return ref
}
