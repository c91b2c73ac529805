package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
)

// BuilderFunc constructs a processor from its `pipeline.<name>` settings
// table. cfg is nil when the user set nothing.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry resolves processor names from settings into processors.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry. See RegisterDefaults.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the processor registered under name.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	if build, ok := r.builders[name]; ok {
		return build(cfg)
	}
	return nil, fmt.Errorf("unknown processor %q (have %v): %w", name, r.Names(), domain.ErrUnsupportedType)
}

// BuildPipeline constructs each named processor with its own config table
// and chains them in the order given.
func (r *Registry) BuildPipeline(names []string, cfg map[string]map[string]any) (*Pipeline, error) {
	stages := make([]driven.PostProcessor, 0, len(names))
	for _, name := range names {
		stage, err := r.Build(name, cfg[name])
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return NewPipeline(stages...), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}
