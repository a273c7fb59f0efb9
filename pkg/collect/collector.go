// Package collect runs the dependency-collection phase: it fans the
// pactree queries out over a bounded worker pool, parses each package's
// forward and reverse listings into edge sets, and records per-package
// failures without aborting the run.
//
// Collection is the only concurrent phase of the engine. Workers share no
// mutable state beyond the keyed result map and the append-only failure
// log, both serialized by a single mutex, so any interleaving of worker
// completions yields the same final graph.
package collect

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/pacscope/pacscope/pkg/deptree"
	"github.com/pacscope/pacscope/pkg/pkggraph"
)

// Collection phases reported in failures.
const (
	PhaseForward = "forward"
	PhaseReverse = "reverse"
	PhaseClosure = "closure"
)

// DefaultToolTimeout bounds one external tool invocation. A hung pactree
// degrades to a logged per-package failure instead of stalling the run.
const DefaultToolTimeout = 30 * time.Second

// TreeSource provides the raw dependency listings for one package.
// *pacman.System is the production implementation.
type TreeSource interface {
	// DependencyTree returns the raw forward tree listing.
	DependencyTree(ctx context.Context, name string) (string, error)
	// ReverseTree returns the raw reverse tree listing.
	ReverseTree(ctx context.Context, name string) (string, error)
	// FlatDependencies returns the flat optional-inclusive closure listing.
	FlatDependencies(ctx context.Context, name string) (string, error)
}

// Failure records one failed tool invocation.
type Failure struct {
	Package string `json:"package"`
	Phase   string `json:"phase"` // forward, reverse or closure
	Reason  string `json:"reason"`
}

// FailureLog is an append-only failure list, safe for concurrent appends.
type FailureLog struct {
	mu       sync.Mutex
	failures []Failure
}

// Append records one failure.
func (l *FailureLog) Append(pkg, phase string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = append(l.failures, Failure{Package: pkg, Phase: phase, Reason: err.Error()})
}

// All returns the recorded failures.
func (l *FailureLog) All() []Failure {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Failure, len(l.failures))
	copy(out, l.failures)
	return out
}

// Len returns the number of recorded failures.
func (l *FailureLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.failures)
}

// Options configures the collection run.
type Options struct {
	Workers     int                  // worker pool size (default: host core count)
	ToolTimeout time.Duration        // per-invocation bound (default: DefaultToolTimeout)
	Logger      func(string, ...any) // progress/warning callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = DefaultToolTimeout
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Result is the aggregated output of one collection run.
type Result struct {
	Edges    map[string]pkggraph.EdgeSets // keyed by package name
	Failures []Failure
}

// Collect gathers the four edge sets for every named package.
//
// Each package is one independent unit of work: a worker fetches and
// parses the forward and reverse tree. A failed invocation leaves that
// direction's sets empty and appends to the failure log; it never aborts
// the run. Cancelling ctx aborts the whole collection and is the only
// cancellation level — failed packages are recorded once, not retried.
func Collect(ctx context.Context, src TreeSource, names []string, opts Options) (Result, error) {
	opts = opts.WithDefaults()

	var (
		mu       sync.Mutex
		edges    = make(map[string]pkggraph.EdgeSets, len(names))
		failures FailureLog
		wg       sync.WaitGroup
		jobs     = make(chan string)
	)

	for range opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				if ctx.Err() != nil {
					continue
				}
				es := collectOne(ctx, src, name, opts, &failures)
				mu.Lock()
				edges[name] = es
				mu.Unlock()
			}
		}()
	}

	for _, name := range names {
		select {
		case jobs <- name:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{Edges: edges, Failures: failures.All()}, nil
}

// collectOne fetches and parses both directions for one package.
func collectOne(ctx context.Context, src TreeSource, name string, opts Options, log *FailureLog) pkggraph.EdgeSets {
	var es pkggraph.EdgeSets

	forward, err := runBounded(ctx, opts.ToolTimeout, name, src.DependencyTree)
	if err != nil {
		opts.Logger("forward tree failed: %s: %v", name, err)
		log.Append(name, PhaseForward, err)
	} else {
		rec := deptree.Parse(forward, name)
		es.DependsOn = rec.Mandatory
		es.OptionalDependsOn = rec.Optional
	}

	reverse, err := runBounded(ctx, opts.ToolTimeout, name, src.ReverseTree)
	if err != nil {
		opts.Logger("reverse tree failed: %s: %v", name, err)
		log.Append(name, PhaseReverse, err)
	} else {
		rec := deptree.Parse(reverse, name)
		es.RequiredBy = rec.Mandatory
		es.OptionalRequiredBy = rec.Optional
	}

	return es
}

// runBounded invokes fn under a per-invocation deadline.
func runBounded(ctx context.Context, timeout time.Duration, name string, fn func(context.Context, string) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx, name)
}
