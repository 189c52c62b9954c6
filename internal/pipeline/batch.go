package pipeline

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/spendvibe/internal/model"
)

// ProgressFunc is called as batch analyses complete.
// current is the number of requests processed so far, total is the total count.
type ProgressFunc func(current, total int)

// AnalyzeBatch runs independent analyses on a bounded worker pool.
// Reports come back in request order. workers <= 0 uses GOMAXPROCS.
func (a *Analyzer) AnalyzeBatch(reqs []Request, workers int, progressFn ProgressFunc) []*model.Report {
	reports := make([]*model.Report, len(reqs))
	if len(reqs) == 0 {
		return reports
	}

	numWorkers := workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(reqs) {
		numWorkers = len(reqs)
	}

	work := make(chan int, len(reqs))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range reqs {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				reports[idx] = a.Analyze(reqs[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(reqs))
				}
			}
		}()
	}

	wg.Wait()

	a.log.Debug().Int("requests", len(reqs)).Int("workers", numWorkers).Msg("batch complete")
	return reports
}
