package annotate

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// WorkItem is one variant queued for annotation. Seq numbers start at 0 and
// are consecutive in input order.
type WorkItem struct {
	Seq     int
	Variant *vcf.Variant
}

// WorkResult holds the per-transcript outcomes for a single variant.
type WorkResult struct {
	Seq     int
	Variant *vcf.Variant
	Pairs   []PairResult
}

// ParallelAnnotate annotates items on a pool of workers and calls emit for
// each result in Seq order, from a single goroutine. It returns when items
// is closed and every result has been emitted, or with the first error from
// emit or ctx. Workers <= 0 means runtime.NumCPU().
func (a *Annotator) ParallelAnnotate(ctx context.Context, items <-chan WorkItem, workers int, emit func(WorkResult) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		g.Go(func() error {
			defer wg.Done()
			for {
				var item WorkItem
				select {
				case it, ok := <-items:
					if !ok {
						return nil
					}
					item = it
				case <-ctx.Done():
					return ctx.Err()
				}

				r := WorkResult{Seq: item.Seq, Variant: item.Variant, Pairs: a.Annotate(item.Variant)}
				select {
				case results <- r:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		return emitInOrder(results, emit)
	})
	return g.Wait()
}

// emitInOrder holds back early results until every lower Seq has been
// emitted.
func emitInOrder(results <-chan WorkResult, emit func(WorkResult) error) error {
	held := make(map[int]WorkResult)
	next := 0
	for r := range results {
		held[r.Seq] = r
		for {
			r, ok := held[next]
			if !ok {
				break
			}
			delete(held, next)
			next++
			if err := emit(r); err != nil {
				return err
			}
		}
	}
	return nil
}
