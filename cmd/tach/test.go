package main

import (
	"bytes"
	"flag"
	"os/exec"

	"github.com/gauge-sh/tach/internal/cache"
)

// testCommand drives an arbitrary test/build action through the C6
// computation cache: a cache hit replays the prior run's captured output
// and exit code without invoking action at all.
type testCommand struct {
	interpreter string
}

func (*testCommand) Name() string      { return "test" }
func (*testCommand) Args() string      { return "[--python VERSION] -- ACTION [ARGS...]" }
func (*testCommand) ShortHelp() string { return "run ACTION, memoized by a content-addressed cache" }
func (*testCommand) LongHelp() string {
	return "test computes a fingerprint over every source file under the configured\n" +
		"source roots, the named interpreter version, and ACTION's own name, then\n" +
		"either replays a prior cached run or executes ACTION and caches its result."
}
func (*testCommand) Hidden() bool { return false }

func (c *testCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&c.interpreter, "python", "", "interpreter version string to fold into the fingerprint")
}

func (c *testCommand) Run(ctx *Ctx, args []string) error {
	if len(args) == 0 {
		return exitWithCode{code: 2}
	}

	proj, err := loadProject(ctx)
	if err != nil {
		return err
	}

	in, err := proj.BuildFingerprintInputs(args[0], c.interpreter, nil)
	if err != nil {
		return err
	}
	fp, err := cache.Compute(in)
	if err != nil {
		return err
	}

	store := cache.NewStore(proj.CacheRoot())
	runner := &cache.Runner{Store: store}

	action := func() (cache.Entry, error) {
		var stdout, stderr bytes.Buffer
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = ctx.WorkingDir
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		runErr := cmd.Run()
		exitCode := 0
		if runErr != nil {
			if exitErr, ok := runErr.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
			} else {
				return cache.Entry{}, runErr
			}
		}
		return cache.Entry{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), ExitCode: exitCode}, nil
	}

	code, err := runner.Run(fp, ctx.Out.Writer(), ctx.Err.Writer(), action)
	if err != nil {
		return err
	}
	if code != 0 {
		return exitWithCode{code: code}
	}
	return nil
}

// exitWithCode lets test propagate ACTION's own exit code (or a usage
// error) through the dispatcher's exitCoder contract.
type exitWithCode struct{ code int }

func (e exitWithCode) Error() string { return "action exited non-zero" }
func (e exitWithCode) ExitCode() int { return e.code }
