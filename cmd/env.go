package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/provdir/internal/pipeline"
	"github.com/sells-group/provdir/internal/registry"
	"github.com/sells-group/provdir/internal/store"
	"github.com/sells-group/provdir/internal/triage"
	"github.com/sells-group/provdir/internal/validate"
)

// pipelineEnv holds the initialized store, registry, and pipeline needed
// by the validate/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Registry registry.Lookup
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if c, ok := pe.Registry.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the flat-file run store from config.
func initStore() (store.Store, error) {
	st, err := store.NewFS(cfg.Store.Dir)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// initRegistry opens the configured NPI lookup backend. Backend "none"
// yields an empty in-memory registry: enrichment and cross-checks degrade
// to no-ops rather than failing.
func initRegistry() (registry.Lookup, error) {
	var (
		reg registry.Lookup
		err error
	)
	switch cfg.Registry.Backend {
	case "none", "":
		reg = registry.NewStatic(nil)
	case "file":
		reg, err = registry.LoadFile(cfg.Registry.Path)
	case "sqlite":
		reg, err = registry.NewSQLite(cfg.Registry.Path)
	default:
		err = eris.Errorf("unknown registry backend %q", cfg.Registry.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Registry.RateLimitRPS > 0 {
		reg = registry.NewLimited(reg, cfg.Registry.RateLimitRPS)
	}
	return reg, nil
}

// initPipeline sets up the store, the registry backend, optional rule
// overlays, and the pipeline. Callers should defer env.Close().
func initPipeline(mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore()
	if err != nil {
		return nil, err
	}

	reg, err := initRegistry()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithWorkers(cfg.Pipeline.Workers)}

	if cfg.Rules.Heuristics != "" {
		h, err := validate.LoadHeuristics(cfg.Rules.Heuristics)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		opts = append(opts, pipeline.WithHeuristics(h))
		zap.L().Info("using heuristics overlay", zap.String("path", cfg.Rules.Heuristics))
	}
	if cfg.Rules.Actions != "" {
		a, err := triage.LoadActions(cfg.Rules.Actions)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		opts = append(opts, pipeline.WithActions(a))
		zap.L().Info("using actions overlay", zap.String("path", cfg.Rules.Actions))
	}

	return &pipelineEnv{
		Store:    st,
		Registry: reg,
		Pipeline: pipeline.New(reg, opts...),
	}, nil
}
