// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover gathers candidate sources from academic and web APIs
// and deduplicates them into a unified set.
package discover

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/research-pipeline/internal/pipeline"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

// Backend searches a single discovery API. Each backend (arXiv, Semantic
// Scholar, Tavily) implements this interface per the Strategy pattern.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, limit int, cfg types.SearchConfig) ([]types.Source, error)
}

// Reformulator produces alternative phrasings of a query. Implemented by
// the language-model collaborator; a failed call returns an empty list.
type Reformulator interface {
	Reformulate(ctx context.Context, query string) []string
}

// backendLimit returns the per-backend result cap for a depth preset.
func backendLimit(name string, depth types.DepthConfig) int {
	switch name {
	case "arxiv":
		return depth.MaxArxivResults
	case "semantic_scholar":
		return depth.MaxScholarResults
	default:
		return depth.MaxWebResults
	}
}

// Discover queries every backend in order, optionally reformulates the
// query when the initial pass is sparse, and deduplicates the combined
// results. A backend failure is reported as a warning on w and skipped;
// discovery itself never fails.
func Discover(ctx context.Context, query string, backends []Backend, ref Reformulator, depth types.DepthConfig, cfg types.SearchConfig, w io.Writer) ([]types.Source, types.DiscoveryMetadata) {
	var all []types.Source
	searched := map[string]bool{}

	runPass := func(q string, limitCap int) {
		for _, b := range backends {
			limit := backendLimit(b.Name(), depth)
			if limitCap > 0 && limit > limitCap {
				limit = limitCap
			}
			if limit <= 0 {
				continue
			}

			results, err := b.Search(ctx, q, limit, cfg)
			if err != nil {
				fmt.Fprintf(w, "warning: backend %s failed: %v\n", b.Name(), err)
				continue
			}
			searched[b.Name()] = true
			all = append(all, results...)
			fmt.Fprintf(w, "%s: %d sources\n", b.Name(), len(results))
		}
	}

	runPass(query, 0)

	if depth.Reformulate && ref != nil && len(all) < depth.ReformulateBelow {
		for _, alt := range ref.Reformulate(ctx, query) {
			fmt.Fprintf(w, "reformulated query: %s\n", alt)
			runPass(alt, 3)
		}
	}

	unique := Dedupe(all)

	names := make([]string, 0, len(searched))
	for name := range searched {
		names = append(names, name)
	}
	sort.Strings(names)

	meta := types.DiscoveryMetadata{
		TotalFound:       len(all),
		UniqueSources:    len(unique),
		BackendsSearched: names,
	}
	fmt.Fprintf(w, "discovery complete: %d unique sources (%d found)\n", len(unique), len(all))
	return unique, meta
}

// Stage wraps Discover as a pipeline stage.
func Stage(backends []Backend, ref Reformulator, depth types.DepthConfig, cfg types.SearchConfig, w io.Writer) pipeline.Stage {
	return pipeline.Stage{
		Name: "discovery",
		Run: func(ctx context.Context, state *types.PipelineState) (types.StateUpdate, error) {
			sources, meta := Discover(ctx, state.Query, backends, ref, depth, cfg, w)
			if sources == nil {
				sources = []types.Source{}
			}
			return types.StateUpdate{
				RawSources:        sources,
				DiscoveryMetadata: &meta,
			}, nil
		},
	}
}

// sourceID derives a stable source identifier from a backend prefix and
// a seed (native ID or URL). The suffix is the first 12 hex characters
// of SHA-256(seed).
func sourceID(prefix, seed string) string {
	h := sha256.Sum256([]byte(seed))
	return fmt.Sprintf("%s_%x", prefix, h)[:len(prefix)+1+12]
}
