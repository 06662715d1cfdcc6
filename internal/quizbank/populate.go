package quizbank

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultLevels are the difficulties Populate fills for every objective.
var DefaultLevels = []float64{0.3, 0.5, 0.7}

// PopulateResult summarizes one objective/difficulty cell.
type PopulateResult struct {
	ObjectiveID int
	Difficulty  float64
	BankID      int // 0 when the window was already covered
	Err         error
}

// Populate prebuilds banks for each objective at each level, running at most
// parallel generations at once. Results come back in objective-major order.
// A failing cell does not stop the others; the returned error is only ctx's.
func (a *Allocator) Populate(ctx context.Context, objectiveIDs []int, levels []float64, count, parallel int) ([]PopulateResult, error) {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	if parallel <= 0 {
		parallel = 1
	}

	results := make([]PopulateResult, len(objectiveIDs)*len(levels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, oid := range objectiveIDs {
		for j, d := range levels {
			slot := &results[i*len(levels)+j]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r := PopulateResult{ObjectiveID: oid, Difficulty: d}
				bank, err := a.Prebuild(gctx, oid, d, count)
				switch {
				case err != nil:
					r.Err = err
					a.log.Warn("prebuild failed", "objective", oid, "difficulty", d, "error", err)
				case bank != nil:
					r.BankID = bank.ID
				}
				*slot = r
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
