package stats

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CountFiles counts the files in dir whose base name matches the
// filepath.Match pattern. With recursive set, subdirectories are walked too.
//
// A missing dir is reported as an error wrapping fs.ErrNotExist so callers can
// tell "no such directory" apart from "zero matches". A dir that exists but is
// not a directory contains no matches.
func CountFiles(fsys afero.Fs, dir, pattern string, recursive bool) (int, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return 0, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	info, err := fsys.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("count %s: %w", dir, fs.ErrNotExist)
		}
		return 0, fmt.Errorf("count %s: %w", dir, err)
	}
	if !info.IsDir() {
		return 0, nil
	}

	if !recursive {
		entries, err := afero.ReadDir(fsys, dir)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", dir, err)
		}
		count := 0
		for _, entry := range entries {
			if !entry.IsDir() && matches(pattern, entry.Name()) {
				count++
			}
		}
		return count, nil
	}

	count := 0
	err = afero.Walk(fsys, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && matches(pattern, info.Name()) {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", dir, err)
	}
	return count, nil
}

func matches(pattern, name string) bool {
	ok, _ := filepath.Match(pattern, name)
	return ok
}
