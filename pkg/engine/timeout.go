package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chazu/polycut/pkg/planeset"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// ErrSuperseded is returned by Evaluate when a newer evaluation started
// before this one finished.
var ErrSuperseded = errors.New("evaluation superseded by newer request")

// evalResult passes evaluation results through channels.
type evalResult struct {
	scene  *planeset.Scene
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns a timeout error
// if the evaluation exceeds EvalTimeout. The generation counter discards
// results of evaluations that a newer call has superseded.
//
// On timeout the goroutine may still be running; its result is dropped into
// the buffered channel and never read.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (*planeset.Scene, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
	}
}
