package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/gauge-sh/tach/internal/boundary"
	"github.com/gauge-sh/tach/internal/engine"
	"github.com/gauge-sh/tach/internal/modtree"
)

type reportCommand struct {
	noDeps   bool
	noUsages bool
	stats    bool
}

func (*reportCommand) Name() string      { return "report" }
func (*reportCommand) Args() string      { return "PATH [--no-deps] [--no-usages] [--stats]" }
func (*reportCommand) ShortHelp() string { return "show a module's declared dependencies and usages" }
func (*reportCommand) LongHelp() string {
	return "report PATH prints the dotted module at PATH's declared dependencies and every\n" +
		"other module observed importing it, derived from the same scan check runs."
}
func (*reportCommand) Hidden() bool { return false }

func (c *reportCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&c.noDeps, "no-deps", false, "omit the dependencies section")
	fs.BoolVar(&c.noUsages, "no-usages", false, "omit the usages section")
	fs.BoolVar(&c.stats, "stats", false, "append fanout/import-complexity metrics (report-only, never gates exit code)")
}

func (c *reportCommand) Run(ctx *Ctx, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("report requires exactly one module PATH argument")
	}
	target := modtree.DottedPath(args[0])

	proj, err := loadProject(ctx)
	if err != nil {
		return err
	}

	_, edges, err := runForEdges(proj)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.Out.Writer(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "module\t%s\n", target)

	if !c.noDeps {
		cfg, _, ok := proj.Tree.NearestAncestor(target)
		fmt.Fprintln(w, "dependencies:")
		if ok && cfg.HasDependsOn() {
			deps := append([]modtree.Dependency{}, cfg.DependsOn...)
			sort.Slice(deps, func(i, j int) bool { return deps[i].Path < deps[j].Path })
			for _, d := range deps {
				tag := ""
				if d.Deprecated {
					tag = " (deprecated)"
				}
				fmt.Fprintf(w, "\t%s%s\n", d.Path, tag)
			}
		} else {
			fmt.Fprintln(w, "\t(unchecked)")
		}
	}

	if !c.noUsages {
		fmt.Fprintln(w, "usages:")
		users := usersOf(edges, target)
		if len(users) == 0 {
			fmt.Fprintln(w, "\t(none observed)")
		}
		for _, u := range users {
			fmt.Fprintf(w, "\t%s\n", u)
		}
	}

	if c.stats {
		printFanoutStats(w, edges)
	}

	return w.Flush()
}

func usersOf(edges []boundary.Edge, target modtree.DottedPath) []modtree.DottedPath {
	seen := make(map[modtree.DottedPath]bool)
	for _, e := range edges {
		if e.To == target {
			seen[e.From] = true
		}
	}
	out := make([]modtree.DottedPath, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// printFanoutStats is the additive `report --stats` addendum: average and
// maximum fanout across every module with at least one recorded edge,
// grounded on the fanout-summary shape seen in the pack's
// analyzeModuleFanout helper. It never affects check's exit code.
func printFanoutStats(w *tabwriter.Writer, edges []boundary.Edge) {
	fanout := make(map[modtree.DottedPath]int)
	seen := make(map[[2]modtree.DottedPath]bool)
	for _, e := range edges {
		if seen[[2]modtree.DottedPath{e.From, e.To}] {
			continue
		}
		seen[[2]modtree.DottedPath{e.From, e.To}] = true
		fanout[e.From]++
	}
	if len(fanout) == 0 {
		fmt.Fprintln(w, "stats:\t(no edges observed)")
		return
	}

	total, max := 0, 0
	var maxEntity modtree.DottedPath
	for mod, n := range fanout {
		total += n
		if n > max {
			max, maxEntity = n, mod
		}
	}
	fmt.Fprintf(w, "stats:\tavg fanout %.2f, max %d (%s)\n", float64(total)/float64(len(fanout)), max, maxEntity)
}

func runForEdges(proj *engine.Project) ([]boundary.Diagnostic, []boundary.Edge, error) {
	return proj.Check(context.Background(), engine.CheckOptions{CheckDependencies: true, CheckInterfaces: true})
}
