package main

import "flag"

// runExternalTool is the shared Run body for every command named in
// spec.md §6's CLI surface that this module deliberately doesn't
// implement — each is an out-of-scope collaborator (editor/IDE
// integration, VCS hooks, a telemetry backend, a language server) better
// served by a dedicated external tool than by a boundary checker.
func runExternalTool(ctx *Ctx, name, help string) error {
	ctx.Err.Printf("tach %s: not implemented; use a dedicated %s instead\n", name, help)
	return exitWithCode{code: 1}
}

type tuiCommand struct{}

func (*tuiCommand) Name() string      { return "tui" }
func (*tuiCommand) Args() string      { return "" }
func (*tuiCommand) ShortHelp() string { return "interactive module graph explorer (external tool)" }
func (*tuiCommand) LongHelp() string  { return "tui is handled by a dedicated terminal UI, not this binary." }
func (*tuiCommand) Hidden() bool      { return true }
func (*tuiCommand) Register(*flag.FlagSet) {}
func (*tuiCommand) Run(ctx *Ctx, args []string) error {
	return runExternalTool(ctx, "tui", "terminal UI")
}

type diffCommand struct{}

func (*diffCommand) Name() string      { return "diff" }
func (*diffCommand) Args() string      { return "" }
func (*diffCommand) ShortHelp() string { return "diff module boundaries against a base ref (external tool)" }
func (*diffCommand) LongHelp() string  { return "diff is handled by a dedicated VCS-integration tool, not this binary." }
func (*diffCommand) Hidden() bool      { return true }
func (*diffCommand) Register(*flag.FlagSet) {}
func (*diffCommand) Run(ctx *Ctx, args []string) error {
	return runExternalTool(ctx, "diff", "VCS-integration tool")
}

type hookInstallCommand struct{}

func (*hookInstallCommand) Name() string      { return "hook-install" }
func (*hookInstallCommand) Args() string      { return "" }
func (*hookInstallCommand) ShortHelp() string { return "install a pre-commit hook (external tool)" }
func (*hookInstallCommand) LongHelp() string {
	return "hook-install is handled by a dedicated pre-commit framework, not this binary."
}
func (*hookInstallCommand) Hidden() bool      { return true }
func (*hookInstallCommand) Register(*flag.FlagSet) {}
func (*hookInstallCommand) Run(ctx *Ctx, args []string) error {
	return runExternalTool(ctx, "hook-install", "pre-commit framework")
}

type graphCommand struct{}

func (*graphCommand) Name() string      { return "graph" }
func (*graphCommand) Args() string      { return "" }
func (*graphCommand) ShortHelp() string { return "render the module graph as an image (external tool)" }
func (*graphCommand) LongHelp() string  { return "graph is handled by a dedicated graph-rendering tool, not this binary." }
func (*graphCommand) Hidden() bool      { return true }
func (*graphCommand) Register(*flag.FlagSet) {}
func (*graphCommand) Run(ctx *Ctx, args []string) error {
	return runExternalTool(ctx, "graph", "graph-rendering tool")
}

type telemetryCommand struct{}

func (*telemetryCommand) Name() string      { return "telemetry" }
func (*telemetryCommand) Args() string      { return "" }
func (*telemetryCommand) ShortHelp() string { return "report anonymous usage metrics (external tool)" }
func (*telemetryCommand) LongHelp() string {
	return "telemetry is handled by a dedicated metrics backend, not this binary."
}
func (*telemetryCommand) Hidden() bool      { return true }
func (*telemetryCommand) Register(*flag.FlagSet) {}
func (*telemetryCommand) Run(ctx *Ctx, args []string) error {
	return runExternalTool(ctx, "telemetry", "metrics backend")
}

type lspCommand struct{}

func (*lspCommand) Name() string      { return "lsp" }
func (*lspCommand) Args() string      { return "" }
func (*lspCommand) ShortHelp() string { return "run as a language server (external tool)" }
func (*lspCommand) LongHelp() string  { return "lsp is handled by a dedicated language-server binary, not this one." }
func (*lspCommand) Hidden() bool      { return true }
func (*lspCommand) Register(*flag.FlagSet) {}
func (*lspCommand) Run(ctx *Ctx, args []string) error {
	return runExternalTool(ctx, "lsp", "language-server binary")
}
