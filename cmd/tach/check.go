package main

import (
	"context"
	"flag"
	"strings"

	"github.com/gauge-sh/tach/internal/boundary"
	"github.com/gauge-sh/tach/internal/engine"
)

type checkCommand struct {
	dependencies bool
	interfaces   bool
	exact        bool
	exclude      string
}

func (*checkCommand) Name() string      { return "check" }
func (*checkCommand) Args() string      { return "[--dependencies] [--interfaces] [--exact] [--exclude PATH,...]" }
func (*checkCommand) ShortHelp() string { return "check every import against the configured module boundaries" }
func (*checkCommand) LongHelp() string {
	return "Check walks every configured source root, extracts imports, and reports every\n" +
		"Dependency, Interface, Deprecated, and (with --exact) Unused diagnostic."
}
func (*checkCommand) Hidden() bool { return false }

func (c *checkCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&c.dependencies, "dependencies", true, "check dependency/visibility/layer rules")
	fs.BoolVar(&c.interfaces, "interfaces", true, "check interface strictness rules")
	fs.BoolVar(&c.exact, "exact", false, "also report declared dependencies no import actually uses")
	fs.StringVar(&c.exclude, "exclude", "", "comma-separated extra exclude globs")
}

func (c *checkCommand) Run(ctx *Ctx, args []string) error {
	proj, err := loadProject(ctx)
	if err != nil {
		return err
	}

	diags, _, err := proj.Check(context.Background(), engine.CheckOptions{
		CheckDependencies: c.dependencies,
		CheckInterfaces:   c.interfaces,
		Exact:             c.exact,
		Exclude:           splitCommaList(c.exclude),
	})
	if err != nil {
		return err
	}

	printDiagnostics(ctx, diags)
	if boundary.HasError(diags) {
		return diagnosticsFound{count: countErrors(diags)}
	}
	return nil
}

// splitCommaList splits a comma-separated flag value into its trimmed,
// non-empty parts, or returns nil for an empty/blank value.
func splitCommaList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadProject(ctx *Ctx) (*engine.Project, error) {
	proj, err := engine.Load(ctx.WorkingDir)
	if err != nil {
		return nil, configError{err: err}
	}
	for _, key := range proj.UnknownConfigKeys {
		ctx.Err.Printf("tach: configuration warning: unknown key %q\n", key)
	}
	return proj, nil
}

func printDiagnostics(ctx *Ctx, diags []boundary.Diagnostic) {
	for _, d := range diags {
		ctx.Out.Printf("%s %s:%d: %s\n", severityLabel(d.Severity), d.File, d.Line, d.Message)
	}
	ctx.Out.Printf("%d diagnostic(s)\n", len(diags))
}

func severityLabel(s boundary.Severity) string {
	switch s {
	case boundary.SeverityError:
		return "error"
	case boundary.SeverityWarning:
		return "warning"
	default:
		return "off"
	}
}

func countErrors(diags []boundary.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == boundary.SeverityError {
			n++
		}
	}
	return n
}
