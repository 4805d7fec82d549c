// Package changelog extracts the most recent release notes from a Markdown
// changelog.
package changelog

import (
	"strings"

	"github.com/spf13/afero"
)

const (
	sectionMarker = "\n## "
	itemMarker    = "- "

	// MaxEntries is the number of version sections returned.
	MaxEntries = 3
	// MaxChanges is the number of change lines kept per section.
	MaxChanges = 5
)

// Entry is one version section.
type Entry struct {
	Version string   `json:"version" yaml:"version"`
	Changes []string `json:"changes" yaml:"changes"`
}

// Read parses the changelog at path. A file that cannot be read yields an
// empty list.
func Read(fsys afero.Fs, path string) []Entry {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return []Entry{}
	}
	return Parse(string(data))
}

// Parse splits text on level-two headings that start a line, skips whatever
// precedes the first one, and returns up to MaxEntries sections in document
// order. The first line of a section is its version label; bullet lines
// ("- ") after it are its changes, capped at MaxChanges.
func Parse(text string) []Entry {
	sections := strings.Split(text, sectionMarker)
	if len(sections) < 2 {
		return []Entry{}
	}
	sections = sections[1:]
	if len(sections) > MaxEntries {
		sections = sections[:MaxEntries]
	}

	entries := make([]Entry, 0, len(sections))
	for _, section := range sections {
		entries = append(entries, parseSection(section))
	}
	return entries
}

func parseSection(section string) Entry {
	lines := strings.Split(section, "\n")
	entry := Entry{
		Version: strings.TrimSpace(lines[0]),
		Changes: []string{},
	}

	for _, line := range lines[1:] {
		if len(entry.Changes) == MaxChanges {
			break
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, itemMarker) {
			continue
		}
		entry.Changes = append(entry.Changes, strings.TrimSpace(strings.TrimPrefix(trimmed, itemMarker)))
	}
	return entry
}
