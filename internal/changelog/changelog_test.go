package changelog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Changelog

All notable changes to this project are documented here.

## [1.0.0-beta.1] - 2026-02-01
### Added
- Multi-agent swarm execution
- 6-gate quality pipeline
  - nested bullet counts too
-not a bullet
* star bullets are ignored
- Provider failover
- Circuit breaker
- Cost router
- Seventh change is dropped

## [0.9.0] - 2026-01-10
- Memory eviction

## [0.8.0] - 2025-12-01
Nothing but prose here.

## [0.7.0] - 2025-11-01
- Older change

## [0.6.0] - 2025-10-01
- Oldest change
`

func TestParseTakesFirstThreeSections(t *testing.T) {
	entries := Parse(sample)

	require.Len(t, entries, 3)
	assert.Equal(t, "[1.0.0-beta.1] - 2026-02-01", entries[0].Version)
	assert.Equal(t, "[0.9.0] - 2026-01-10", entries[1].Version)
	assert.Equal(t, "[0.8.0] - 2025-12-01", entries[2].Version)
}

func TestParseCapsChangesPerSection(t *testing.T) {
	entries := Parse(sample)

	require.NotEmpty(t, entries)
	assert.Equal(t, []string{
		"Multi-agent swarm execution",
		"6-gate quality pipeline",
		"nested bullet counts too",
		"Provider failover",
		"Circuit breaker",
	}, entries[0].Changes)
	assert.Equal(t, []string{"Memory eviction"}, entries[1].Changes)
}

func TestParseSectionWithoutItems(t *testing.T) {
	entries := Parse(sample)

	require.Len(t, entries, 3)
	assert.NotNil(t, entries[2].Changes)
	assert.Empty(t, entries[2].Changes)
}

func TestParseWithoutMarker(t *testing.T) {
	tests := []string{
		"",
		"# Changelog\n\nNo releases yet.\n",
		"## 1.0.0\n- heading on the first line has no leading newline\n",
	}
	for i, text := range tests {
		t.Run(fmt.Sprintf("case %d", i), func(t *testing.T) {
			entries := Parse(text)
			assert.NotNil(t, entries)
			assert.Empty(t, entries)
		})
	}
}

func TestParseFewerSectionsThanLimit(t *testing.T) {
	entries := Parse("intro\n## 2.0.0\n- one\n- two\n")

	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Version: "2.0.0", Changes: []string{"one", "two"}}, entries[0])
}

func TestParseHandlesCRLF(t *testing.T) {
	text := strings.ReplaceAll("intro\n## 3.1.0\n- windows line\n", "\n", "\r\n")

	entries := Parse(text)

	require.Len(t, entries, 1)
	assert.Equal(t, "3.1.0", entries[0].Version)
	assert.Equal(t, []string{"windows line"}, entries[0].Changes)
}

func TestReadMissingFile(t *testing.T) {
	entries := Read(afero.NewMemMapFs(), "/project/CHANGELOG.md")

	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestReadParsesFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/project/CHANGELOG.md", []byte(sample), 0o644))

	entries := Read(fsys, "/project/CHANGELOG.md")

	assert.Len(t, entries, 3)
}

func TestReadIsNotCached(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/project/CHANGELOG.md"
	require.NoError(t, afero.WriteFile(fsys, path, []byte("x\n## 1.0.0\n- first\n"), 0o644))
	first := Read(fsys, path)

	require.NoError(t, afero.WriteFile(fsys, path, []byte("x\n## 1.1.0\n- second\n"), 0o644))
	second := Read(fsys, path)

	assert.Equal(t, "1.0.0", first[0].Version)
	assert.Equal(t, "1.1.0", second[0].Version)
}
