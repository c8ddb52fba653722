// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"sync"

	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// Engine produces an evidence bundle for a summarization request. The
// passed config is the per-request effective configuration; engines
// must not cache it.
type Engine interface {
	Name() string
	Summarize(ctx context.Context, req types.SummarizationRequest, cfg types.Config) (types.EvidenceBundle, error)
}

// Registry resolves engines by name. Unknown names resolve to the
// deterministic engine so callers always get a usable summary.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry returns a registry pre-populated with the built-in
// engines. The llm and hybrid engines degrade to deterministic output
// when no provider is configured, so registering them unconditionally
// is safe.
func NewRegistry() *Registry {
	r := &Registry{engines: make(map[string]Engine)}
	r.Register(Deterministic{})
	r.Register(LLM{})
	r.Register(Hybrid{})
	return r
}

func (r *Registry) Register(engine Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[engine.Name()] = engine
}

func (r *Registry) Resolve(name string) Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if engine, ok := r.engines[name]; ok {
		return engine
	}
	return r.engines[types.EngineDeterministic]
}

// Names returns the registered engine names in unspecified order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	return names
}

// Summarize routes the request to its engine.
func (r *Registry) Summarize(ctx context.Context, req types.SummarizationRequest, cfg types.Config) (types.EvidenceBundle, error) {
	return r.Resolve(req.Engine).Summarize(ctx, req, cfg)
}
