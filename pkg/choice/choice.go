// Package choice implements the clone scheduler: racing up to N
// cooperative clones of a thread and selecting a winner, replacing
// coroutine backtracking with cheap structural-sharing clones.
package choice

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/dmbarbour/glas/pkg/thread"
)

// Callback is the body run against each clone. i is the clone's index in
// [0, N). ready is called by the callback when the clone reaches a
// commit boundary with no errors; calling it more than once is
// harmless, only the first call matters. Callback should poll
// ctx.Err() / clone.IsUncreated() at its own suspension points to
// honour cancellation once a sibling has won — cancellation here is
// cooperative, checked at every attempt to acquire a resource, every
// suspension point, and every commit.
type Callback func(ctx context.Context, clone *thread.Thread, i int, ready func()) error

// Result is what Choice reports about the clone it selected.
type Result struct {
	Index int
	Clone *thread.Thread
	Err   error
}

// event is one clone's first notable occurrence: either it called ready
// (commitReady) or its callback returned (with or without an error).
type event struct {
	index       int
	commitReady bool
	err         error
}

// Choice clones origin into up to n cooperative children and runs cb on
// each, bounded to width concurrent workers. It returns as soon as a
// winner is selected: the first clone to either report commit-ready or
// cleanly return (the two rank equally; whichever arrives first wins),
// or — if every clone returns an error — the first clone to have
// returned an error, once every clone has finished.
// Every other clone is marked UNCREATED and its context cancelled.
func Choice(ctx context.Context, origin *thread.Thread, n int, width int64, cb Callback) (Result, error) {
	if n < 1 {
		return Result{}, nil
	}
	if width < 1 {
		width = 1
	}

	clones := make([]*thread.Thread, n)
	for i := range clones {
		clones[i] = thread.Clone(origin)
	}

	cloneCtx, cancelAll := context.WithCancel(ctx)
	defer cancelAll()

	events := make(chan event, n)
	sem := semaphore.NewWeighted(width)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range clones {
		i := i
		go func() {
			defer wg.Done()
			if err := sem.Acquire(cloneCtx, 1); err != nil {
				events <- event{index: i, err: err}
				return
			}
			defer sem.Release(1)

			var once sync.Once
			ready := func() {
				once.Do(func() { events <- event{index: i, commitReady: true} })
			}
			err := cb(cloneCtx, clones[i], i, ready)
			once.Do(func() { events <- event{index: i, err: err} })
		}()
	}
	go func() {
		wg.Wait()
		close(events)
	}()

	var firstErr *event
	seen := 0
	for ev := range events {
		seen++
		if ev.commitReady && ev.err == nil {
			return finish(clones, cloneCtx, cancelAll, ev.index, nil, origin)
		}
		if ev.err == nil {
			return finish(clones, cloneCtx, cancelAll, ev.index, nil, origin)
		}
		if firstErr == nil {
			e := ev
			firstErr = &e
		}
		if seen == n {
			break
		}
	}
	if firstErr != nil {
		return finish(clones, cloneCtx, cancelAll, firstErr.index, firstErr.err, origin)
	}
	return Result{}, context.Canceled
}

// finish marks every clone but winner UNCREATED, cancels their contexts,
// and transfers the winner's state back into origin.
func finish(clones []*thread.Thread, _ context.Context, cancelAll context.CancelFunc, winner int, err error, origin *thread.Thread) (Result, error) {
	for i, c := range clones {
		if i == winner {
			continue
		}
		c.MarkUncreated()
	}
	cancelAll()

	won := clones[winner]
	origin.SetEnv(won.Env())
	transferAll(won.Stack(), origin.Stack())
	transferAll(won.Stash(), origin.Stash())
	return Result{Index: winner, Clone: won, Err: err}, nil
}

// transferAll moves every item of src onto dst, preserving order,
// leaving src empty.
func transferAll(src, dst *thread.Stack) {
	_ = thread.Transfer(src, dst, src.Len())
}
