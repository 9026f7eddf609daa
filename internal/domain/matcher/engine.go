package matcher

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// pairsPerJob bounds how many candidate pairs one goroutine scores.
const pairsPerJob = 256

type pairRef struct {
	probe     int
	candidate int
}

// ScorePairs scores every candidate pair with a bounded worker pool.
//
// candidates[i] lists the pool indexes for probes[i], as returned by
// Finder.Find. Each job writes into its own range of a pre-sized slice, so
// the output order depends only on the inputs, not on scheduling. Pairs that
// score 0 are kept: the resolver needs them for missing reasons.
func ScorePairs(ctx context.Context, probes, pool []transaction.Record, candidates [][]int, p Profile, workers int) ([]ScoredPair, error) {
	refs := make([]pairRef, 0)
	for i, list := range candidates {
		for _, j := range list {
			refs = append(refs, pairRef{probe: i, candidate: j})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]ScoredPair, len(refs))
	if len(refs) == 0 {
		return out, nil
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(refs); start += pairsPerJob {
		start := start
		end := min(start+pairsPerJob, len(refs))
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			for k := start; k < end; k++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				a, b := probes[refs[k].probe], pool[refs[k].candidate]
				score, reasons := Score(a, b, p)
				out[k] = ScoredPair{
					Probe:      refs[k].probe,
					Candidate:  refs[k].candidate,
					Score:      score,
					Reasons:    reasons,
					AmountDiff: a.Amount().Sub(b.Amount()).Abs(),
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
