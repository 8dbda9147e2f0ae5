// Command tach enforces architectural module boundaries across a Python
// project: it resolves every import against a declared module tree and
// reports dependency, interface, visibility, layer, and root-module
// violations.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gauge-sh/tach/internal/engine"
)

// command is every tach subcommand's shape, kept exactly as the teacher's
// cmd/dep dispatcher (Name/Args/ShortHelp/LongHelp/Register/Hidden/Run).
type command interface {
	Name() string
	Args() string
	ShortHelp() string
	LongHelp() string
	Register(*flag.FlagSet)
	Hidden() bool
	Run(ctx *Ctx, args []string) error
}

// Ctx is what every command needs: where it's running, how to talk back to
// the user, and (once Load succeeds) the loaded project.
type Ctx struct {
	WorkingDir string
	Out, Err   *log.Logger
	Project    *engine.Project
}

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to get working directory:", err)
		os.Exit(3)
	}
	c := &Config{
		Args:       os.Args,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		WorkingDir: wd,
	}
	os.Exit(c.Run())
}

// Config specifies one full invocation.
type Config struct {
	WorkingDir     string
	Args           []string
	Stdout, Stderr io.Writer
}

func allCommands() []command {
	return []command{
		&checkCommand{},
		&checkExternalCommand{},
		&reportCommand{},
		&syncCommand{},
		&testCommand{},
		&tuiCommand{},
		&diffCommand{},
		&hookInstallCommand{},
		&graphCommand{},
		&telemetryCommand{},
		&lspCommand{},
	}
}

// Run executes a configuration and returns a process exit code, following
// spec.md §6's exit-code contract: 0 clean, 1 diagnostics include an error,
// 2 configuration invalid, 3 internal error.
func (c *Config) Run() (exitCode int) {
	commands := allCommands()
	outLogger := log.New(c.Stdout, "", 0)
	errLogger := log.New(c.Stderr, "", 0)

	usage := func() {
		errLogger.Println("tach enforces module boundaries in a Python codebase")
		errLogger.Println()
		errLogger.Println("Usage: tach <command>")
		errLogger.Println()
		errLogger.Println("Commands:")
		errLogger.Println()
		w := tabwriter.NewWriter(c.Stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range commands {
			if !cmd.Hidden() {
				fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
			}
		}
		w.Flush()
		errLogger.Println()
		errLogger.Println(`Use "tach help [command]" for more information about a command.`)
	}

	cmdName, printCommandHelp, exit := parseArgs(c.Args)
	if exit {
		usage()
		return 1
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}

		fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		fs.SetOutput(c.Stderr)
		cmd.Register(fs)
		resetUsage(errLogger, fs, cmdName, cmd.Args(), cmd.LongHelp())

		if printCommandHelp {
			fs.Usage()
			return 1
		}

		if err := fs.Parse(c.Args[2:]); err != nil {
			return 1
		}

		ctx := &Ctx{WorkingDir: c.WorkingDir, Out: outLogger, Err: errLogger}

		if err := cmd.Run(ctx, fs.Args()); err != nil {
			if code, ok := err.(exitCoder); ok {
				errLogger.Printf("tach: %v\n", err)
				return code.ExitCode()
			}
			errLogger.Printf("tach: %v\n", err)
			return 3
		}
		return 0
	}

	errLogger.Printf("tach: %s: no such command\n", cmdName)
	usage()
	return 1
}

// exitCoder lets a command's error carry a specific exit code (e.g. 1 for
// "ran cleanly but found violations", 2 for "bad configuration").
type exitCoder interface {
	error
	ExitCode() int
}

type diagnosticsFound struct{ count int }

func (e diagnosticsFound) Error() string { return fmt.Sprintf("%d error diagnostic(s)", e.count) }
func (diagnosticsFound) ExitCode() int    { return 1 }

type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (configError) ExitCode() int   { return 2 }

func resetUsage(logger *log.Logger, fs *flag.FlagSet, name, args, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		defValue := f.DefValue
		if defValue == "" {
			defValue = "<none>"
		}
		fmt.Fprintf(flagWriter, "\t-%s\t%s (default: %s)\n", f.Name, f.Usage, defValue)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		logger.Printf("Usage: tach %s %s\n", name, args)
		logger.Println()
		logger.Println(strings.TrimSpace(longHelp))
		logger.Println()
		if hasFlags {
			logger.Println("Flags:")
			logger.Println()
			logger.Println(flagBlock.String())
		}
	}
}

// parseArgs determines the subcommand name and whether the user asked for
// help, mirroring the teacher's cmd/dep argument-sniffing exactly.
func parseArgs(args []string) (cmdName string, printCmdUsage bool, exit bool) {
	isHelpArg := func() bool {
		return strings.Contains(strings.ToLower(args[1]), "help") || strings.ToLower(args[1]) == "-h"
	}

	switch len(args) {
	case 0, 1:
		exit = true
	case 2:
		if isHelpArg() {
			exit = true
		}
		cmdName = args[1]
	default:
		if isHelpArg() {
			cmdName = args[2]
			printCmdUsage = true
		} else {
			cmdName = args[1]
		}
	}
	return cmdName, printCmdUsage, exit
}
