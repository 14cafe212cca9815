package template

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/vk/crowdplace/internal/ctxlog"
	"github.com/vk/crowdplace/internal/inmemoryscene"
	"github.com/vk/crowdplace/internal/scene"
)

// spyTemplate records every request it receives.
type spyTemplate struct {
	base
	reqs []*Request
}

func newSpy() *spyTemplate {
	return &spyTemplate{base: newBase("spy", Config{ID: "spy"})}
}

func (s *spyTemplate) Validate(q scene.Queries) error { return nil }

func (s *spyTemplate) Build(ec *EvalContext, req *Request) error {
	s.countBuild()
	s.reqs = append(s.reqs, req)
	return nil
}

// spyGeo returns a fixed result and records the deferred flag.
type spyGeo struct {
	base
	result   *GeoResult
	deferred []bool
}

func newSpyGeo(res *GeoResult) *spyGeo {
	return &spyGeo{base: newBase("spyGeo", Config{ID: "spyGeo"}), result: res}
}

func (s *spyGeo) Validate(q scene.Queries) error { return nil }

func (s *spyGeo) Construct(ec *EvalContext, req *Request, deferred bool) (*GeoResult, error) {
	s.countBuild()
	s.deferred = append(s.deferred, deferred)
	return s.result, nil
}

func bind(slot string, n Node) Inputs {
	return Inputs{{Slot: slot, Nodes: []Node{n}}}
}

func testEC(t *testing.T, backend *inmemoryscene.Scene, seed int64) *EvalContext {
	t.Helper()
	if backend == nil {
		backend = inmemoryscene.New()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	return NewEvalContext(ctx, backend, rand.New(rand.NewSource(seed)))
}
