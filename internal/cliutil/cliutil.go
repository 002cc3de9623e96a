// Package cliutil implements the command-line driver: flag parsing and
// the per-file compile loop, following the teacher's internal/maincmd
// (github.com/mna/nenuphar), adapted from its multi-subcommand shape
// (parse/resolve/tokenize) down to this language's single action —
// compile each given .vh file to its marshalled bytecode image.
package cliutil

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/valhalla-lang/valhallac"
)

const binName = "valhallac"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <path>...
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <path>...
       %[1]s -h|--help
       %[1]s --version

Compiler front/middle-end for the valhalla programming language: lexes,
parses, resolves and compiles each given source file to a marshalled
bytecode image.

Valid flag options are:
       -h --help                 Show this help and exit.
       --version                 Print version and exit.
       --verbose                 Print one status line per input file.
       -o --out <path>           Output path. Only valid with exactly one
                                 input file; defaults to the input path
                                 with its .vh suffix replaced by .out.
`, binName)
)

// Cmd holds parsed flags and build-time version stamps, following the
// teacher's Cmd shape (exported fields tagged for mainer.Parser).
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"version"`
	Verbose bool `flag:"verbose"`
	Out     string `flag:"o,out"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

// Validate checks the parsed arguments, mirroring the teacher's
// Cmd.Validate contract (called by mainer.Parser.Parse before Main's
// switch runs).
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return fmt.Errorf("no input file specified")
	}
	if c.Out != "" && len(c.args) > 1 {
		return fmt.Errorf("--out is only valid with exactly one input file")
	}
	return nil
}

// Main is the process entry point's sole call, returning the exit code
// os.Exit should use.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.compileFiles(ctx, stdio, c.args); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

func outputPath(c *Cmd, input string) string {
	if c.Out != "" {
		return c.Out
	}
	if strings.HasSuffix(input, ".vh") {
		return strings.TrimSuffix(input, ".vh") + ".out"
	}
	return input + ".out"
}

func (c *Cmd) compileFiles(ctx context.Context, stdio mainer.Stdio, files []string) error {
	var failed bool
	for _, f := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := compileOne(stdio, c, f); err != nil {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more files failed to compile")
	}
	return nil
}

func compileOne(stdio mainer.Stdio, c *Cmd, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return err
	}

	data, reporter, err := valhallac.CompileToBytes(path, string(src))
	for _, issue := range reporter.Sorted() {
		fmt.Fprintln(stdio.Stderr, issue.Error())
	}
	if err != nil {
		return err
	}

	out := outputPath(c, path)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", out, err)
		return err
	}
	if c.Verbose {
		fmt.Fprintf(stdio.Stdout, "%s -> %s (%d bytes)\n", path, out, len(data))
	}
	return nil
}
