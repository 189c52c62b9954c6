package pipeline

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/spendvibe/internal/source"
	"github.com/theirongolddev/spendvibe/internal/store"
)

// ImportResult summarizes one feed import.
type ImportResult struct {
	TotalFiles   int
	Unchanged    int
	Imported     int
	FileErrors   int
	ParseErrors  int
	Duplicates   int
	Transactions int
}

// Import parses the feeds at path and upserts their records into st.
// Files whose size and mtime match the last import are skipped unless
// force is set. Changed files are parsed on a bounded worker pool.
func Import(path string, st *store.Store, force bool, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := source.ScanFeeds(path)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := st.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading file tracker: %w", err)
	}

	type candidate struct {
		file source.FeedFile
		info store.FileInfo
	}
	var toParse []candidate
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			result.FileErrors++
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		if prev, ok := tracked[f.Path]; ok && !force && prev == fi {
			result.Unchanged++
			continue
		}
		toParse = append(toParse, candidate{file: f, info: fi})
	}

	if len(toParse) == 0 {
		return result, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(toParse) {
		numWorkers = len(toParse)
	}

	work := make(chan int, len(toParse))
	results := make([]source.ParseResult, len(toParse))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range toParse {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFeed(toParse[idx].file, "")
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+result.Unchanged, result.TotalFiles)
				}
			}
		}()
	}

	wg.Wait()

	// Writes stay on this goroutine; SQLite serializes them anyway.
	for i, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		n, err := st.SaveTransactions(pr.Transactions)
		if err != nil {
			return result, fmt.Errorf("importing %s: %w", toParse[i].file.Path, err)
		}
		if err := st.TrackFile(toParse[i].file.Path, toParse[i].info); err != nil {
			return result, fmt.Errorf("tracking %s: %w", toParse[i].file.Path, err)
		}
		result.Imported++
		result.Transactions += n
		result.ParseErrors += pr.ParseErrors
		result.Duplicates += pr.Duplicates
	}

	return result, nil
}
