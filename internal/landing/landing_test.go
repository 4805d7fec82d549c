package landing

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	layout := NewLayout("/site")

	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{url: "/styles/main.css", want: filepath.Join("/site", "styles", "main.css"), ok: true},
		{url: "/js/app.js", want: filepath.Join("/site", "src", "js", "app.js"), ok: true},
		{url: "/assets/img/logo.svg", want: filepath.Join("/site", "assets", "img", "logo.svg"), ok: true},
		{url: "/assets/../index.html", want: filepath.Join("/site", "assets", "index.html"), ok: true},
		{url: "/styles/../../etc/passwd", want: filepath.Join("/site", "styles", "etc", "passwd"), ok: true},
		{url: "/styles", ok: false},
		{url: "/styles/", ok: false},
		{url: "/stylesheet.css", ok: false},
		{url: "/api/stats", ok: false},
		{url: "/", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := layout.Resolve(tt.url)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	fsys := afero.NewMemMapFs()
	layout := NewLayout("/site")

	doc := `<!DOCTYPE html>
<html>
<head>
  <title> CortexOS </title>
  <link rel="stylesheet" href="/styles/main.css?v=3">
  <link rel="stylesheet" href="styles/missing.css">
  <link rel="icon" href="https://cdn.example.com/favicon.ico">
</head>
<body>
  <img src="/assets/logo.svg#mark">
  <script src="/js/app.js"></script>
  <script src="/js/app.js"></script>
  <a href="/api/stats">stats</a>
</body>
</html>`
	require.NoError(t, afero.WriteFile(fsys, layout.Index, []byte(doc), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/site/styles/main.css", []byte("body{}"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/site/src/js/app.js", []byte(""), 0o644))

	report, err := Inspect(fsys, layout)
	require.NoError(t, err)

	assert.Equal(t, "CortexOS", report.Title)
	require.Len(t, report.Assets, 4)

	missing := report.Missing()
	urls := make([]string, 0, len(missing))
	for _, m := range missing {
		urls = append(urls, m.URL)
	}
	assert.ElementsMatch(t, []string{"/styles/missing.css", "/assets/logo.svg"}, urls)
}

func TestInspectMissingDocument(t *testing.T) {
	_, err := Inspect(afero.NewMemMapFs(), NewLayout("/site"))
	assert.Error(t, err)
}
