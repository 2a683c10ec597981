package search

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"golang.org/x/sync/errgroup"
	"time"
)

// Outcome is the result of one query of a batch. Exactly one of Result and Err is set.
type Outcome struct {
	Query  Query
	Result *Result
	Err    error
}

// SearchAll runs the queries with at most parallelism concurrent searches. A failing query does not affect the others,
// its error is reported in its outcome. The outcomes have the same order as the queries.
func (s *Searcher) SearchAll(ctx context.Context, queries []Query, parallelism int) []Outcome {
	if parallelism < 1 {
		parallelism = 1
	}

	batchStartTime := time.Now()
	outcomes := make([]Outcome, len(queries))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)

	for i, query := range queries {
		i, query := i, query
		group.Go(func() error {
			result, err := s.Search(groupCtx, query)
			outcomes[i] = Outcome{Query: query, Result: result, Err: err}
			if err != nil {
				sigolo.Errorf("Search for %s failed: %+v", query.String(), err)
			}
			return nil
		})
	}

	// Workers never return an error, failures are part of the outcomes.
	_ = group.Wait()

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	sigolo.Infof("Finished %d searches (%d failed) in %s", len(queries), failed, time.Since(batchStartTime))

	return outcomes
}
