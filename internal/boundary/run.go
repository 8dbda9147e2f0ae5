package boundary

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gauge-sh/tach/internal/importscan"
	"github.com/gauge-sh/tach/internal/modtree"
)

// FileImports is one file's scan output paired with its resolved module
// context, the unit of work CheckAll dispatches across the worker pool.
type FileImports struct {
	File         string
	ImporterCfg  *modtree.ModuleConfig
	ImporterPath modtree.DottedPath
	Imports      []importscan.Import
}

// CheckAll applies CheckImport to every (file, Import) pair across a worker
// pool sized to runtime.NumCPU(), per SPEC_FULL.md §4.5 / spec.md §5. Each
// goroutine accumulates into its own buffer; buffers are merged once all
// workers finish, avoiding a shared lock on the hot path.
func (c *Checker) CheckAll(ctx context.Context, files []FileImports) ([]Diagnostic, []Edge, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([][]Diagnostic, len(files))
	edgeSets := make([][]Edge, len(files))

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var diags []Diagnostic
			var edges []Edge
			for _, im := range f.Imports {
				d, e := c.CheckImport(f.File, f.ImporterCfg, f.ImporterPath, im)
				diags = append(diags, d...)
				if e != nil {
					edges = append(edges, *e)
				}
			}
			results[i] = diags
			edgeSets[i] = edges
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var allDiags []Diagnostic
	var allEdges []Edge
	for i := range files {
		allDiags = append(allDiags, results[i]...)
		allEdges = append(allEdges, edgeSets[i]...)
	}
	return allDiags, allEdges, nil
}
