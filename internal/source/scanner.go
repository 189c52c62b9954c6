package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanFeeds resolves path to the feed files it names. A file is returned
// as-is; a directory is walked for *.jsonl files, sorted by path.
func ScanFeeds(path string) ([]FeedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	if !info.IsDir() {
		return []FeedFile{feedFile(path)}, nil
	}

	var files []FeedFile
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		files = append(files, feedFile(p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func feedFile(path string) FeedFile {
	name := filepath.Base(path)
	return FeedFile{Path: path, Name: strings.TrimSuffix(name, filepath.Ext(name))}
}
