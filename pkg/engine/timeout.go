package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation runs past its limit.
	ErrTimeout = errors.New("engine: evaluation timed out")

	// ErrSuperseded is returned when a newer evaluation started before
	// this one finished. Its batch is discarded.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

// evalResult carries one evaluation back from its goroutine.
type evalResult struct {
	batch  *Batch
	errors []EvalError
	err    error
}

// waitWithTimeout waits up to limit for a result from ch. A result whose
// generation is no longer current is dropped with ErrSuperseded, so a slow
// script never overwrites the batch of a later one.
//
// On timeout the goroutine may still be running; the generation check
// discards its result when it eventually completes.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	limit time.Duration,
	mu *sync.Mutex,
	currentGen *uint64,
) (*Batch, []EvalError, error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.batch, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	}
}
