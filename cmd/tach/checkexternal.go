package main

import (
	"context"
	"flag"

	"github.com/gauge-sh/tach/internal/boundary"
	"github.com/gauge-sh/tach/internal/engine"
	"github.com/gauge-sh/tach/internal/modtree"
)

// checkExternalCommand runs only step g (external-target rules), the
// narrower surface named separately in spec.md §6's CLI list.
type checkExternalCommand struct{}

func (*checkExternalCommand) Name() string      { return "check-external" }
func (*checkExternalCommand) Args() string      { return "" }
func (*checkExternalCommand) ShortHelp() string { return "check only external-package dependency rules" }
func (*checkExternalCommand) LongHelp() string {
	return "check-external runs the same scan as check but reports only external-package\n" +
		"dependency violations (depends_on_external / cannot_depend_on_external / external.exclude)."
}
func (*checkExternalCommand) Hidden() bool          { return false }
func (*checkExternalCommand) Register(*flag.FlagSet) {}

func (c *checkExternalCommand) Run(ctx *Ctx, args []string) error {
	proj, err := loadProject(ctx)
	if err != nil {
		return err
	}

	diags, _, err := proj.Check(context.Background(), engine.CheckOptions{CheckDependencies: true})
	if err != nil {
		return err
	}

	var external []boundary.Diagnostic
	for _, d := range diags {
		if d.Kind != boundary.KindDependency || d.ImportPath == "" {
			continue
		}
		if proj.Resolver.Resolve(d.ImportPath, modtree.RootAllow).Kind == modtree.KindExternal {
			external = append(external, d)
		}
	}

	printDiagnostics(ctx, external)
	if boundary.HasError(external) {
		return diagnosticsFound{count: countErrors(external)}
	}
	return nil
}
