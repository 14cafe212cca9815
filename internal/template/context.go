package template

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/vk/crowdplace/internal/ctxlog"
	"github.com/vk/crowdplace/internal/scene"
)

// EvalContext carries the capabilities one build needs: the scene backend,
// the random source, and branch accounting. Randomness is an injected
// capability rather than a package global so builds are reproducible under a
// fixed seed and isolated under test.
type EvalContext struct {
	ctx   context.Context
	Scene scene.Backend
	Rand  *rand.Rand

	placed  int
	dropped int
}

// NewEvalContext returns a context for one build. The context.Context must
// carry a logger (see ctxlog).
func NewEvalContext(ctx context.Context, backend scene.Backend, rng *rand.Rand) *EvalContext {
	return &EvalContext{ctx: ctx, Scene: backend, Rand: rng}
}

// Logger returns the build's logger.
func (ec *EvalContext) Logger() *slog.Logger {
	return ctxlog.FromContext(ec.ctx)
}

// Uniform draws uniformly from [lo, hi).
func (ec *EvalContext) Uniform(lo, hi float32) float32 {
	return lo + ec.Rand.Float32()*(hi-lo)
}

// DropBranch records a branch dropped by a runtime condition. Dropping is
// control flow, not failure: the build continues with fewer agents.
func (ec *EvalContext) DropBranch(n Node, reason string) {
	ec.dropped++
	ec.Logger().Debug("Branch dropped.", "node", n.ID(), "kind", n.Kind(), "reason", reason)
}

func (ec *EvalContext) notePlaced() { ec.placed++ }

// Placed returns the number of agents registered during this build.
func (ec *EvalContext) Placed() int { return ec.placed }

// Dropped returns the number of branches dropped during this build.
func (ec *EvalContext) Dropped() int { return ec.dropped }
