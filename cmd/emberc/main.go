// Command emberc is the driver for the ember compiler: it reads a
// source file, runs it through compiler.CompileFile, writes the
// resulting assembly to disk, and — when asked — hands that file to an
// external assembler and linker to produce a runnable binary. None of
// that orchestration belongs in the compiler package itself, which
// knows nothing about argument parsing, file I/O, or external tools.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/ember-lang/emberc/compiler"
)

func main() {
	app := &cli.Command{
		Name:        "emberc",
		Description: "emberc compiles ember source files to x86-64 assembly",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

// compileAct takes a single positional source file argument plus two
// optional flags: -o to redirect the assembly output path, and -run to
// additionally invoke yasm/nasm and ld and execute the result.
func compileAct(c *cli.Command) (err error) {
	var (
		src    string
		outAsm string
		run    bool
	)

	rest := c.Args
	for i := 0; i < len(rest); i++ {
		switch {
		case rest[i] == "-run":
			run = true
		case rest[i] == "-o" && i+1 < len(rest):
			i++
			outAsm = rest[i]
		case strings.HasPrefix(rest[i], "-"):
			return errors.New("unknown flag %q", rest[i])
		case src == "":
			src = rest[i]
		default:
			return errors.New("unexpected argument %q", rest[i])
		}
	}

	if src == "" {
		return errors.New("usage: emberc [-o out.asm] [-run] <file.ember>")
	}
	if outAsm == "" {
		outAsm = "out.asm"
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	spinner, _ := pterm.DefaultSpinner.Start("compiling " + src)
	asm, err := compiler.CompileFile(ctx, src)
	if err != nil {
		spinner.Fail("compile failed: " + err.Error())
		return err
	}
	spinner.Success("compiled " + src + " -> " + outAsm)

	if err := os.WriteFile(outAsm, asm, 0o644); err != nil {
		return errors.Wrap(err, "write %s", outAsm)
	}

	if !run {
		return nil
	}

	return assembleAndRun(outAsm)
}

// assembleAndRun shells out to yasm (falling back to nasm) and ld to
// turn the assembly file into an executable, then runs it and mirrors
// its exit code. Every argument is passed to exec.Command as a
// separate argv entry — never through a shell — so a source path
// containing shell metacharacters can't be turned into command
// injection.
func assembleAndRun(asmPath string) error {
	base := strings.TrimSuffix(asmPath, filepath.Ext(asmPath))
	objPath := base + ".o"
	binPath := base

	assembler := "yasm"
	if _, err := exec.LookPath(assembler); err != nil {
		assembler = "nasm"
	}

	asmSpin, _ := pterm.DefaultSpinner.Start("assembling " + asmPath)
	asmCmd := exec.Command(assembler, "-f", "elf64", asmPath, "-o", objPath)
	asmCmd.Stdout = os.Stdout
	asmCmd.Stderr = os.Stderr
	if err := asmCmd.Run(); err != nil {
		asmSpin.Fail("assemble failed")
		return errors.Wrap(err, "%s %s", assembler, asmPath)
	}
	asmSpin.Success("assembled " + objPath)

	linkSpin, _ := pterm.DefaultSpinner.Start("linking " + objPath)
	linkCmd := exec.Command("ld", "-o", binPath, objPath)
	linkCmd.Stdout = os.Stdout
	linkCmd.Stderr = os.Stderr
	if err := linkCmd.Run(); err != nil {
		linkSpin.Fail("link failed")
		return errors.Wrap(err, "ld %s", objPath)
	}
	linkSpin.Success("linked " + binPath)

	runPath := binPath
	if !filepath.IsAbs(runPath) {
		runPath = "./" + runPath
	}
	runCmd := exec.Command(runPath)
	runCmd.Stdout = os.Stdout
	runCmd.Stderr = os.Stderr
	runCmd.Stdin = os.Stdin

	runErr := runCmd.Run()
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		fmt.Fprintf(os.Stderr, "%s exited with code %d\n", runPath, exitErr.ExitCode())
		os.Exit(exitErr.ExitCode())
	}
	if runErr != nil {
		return errors.Wrap(runErr, "run %s", runPath)
	}

	return nil
}
