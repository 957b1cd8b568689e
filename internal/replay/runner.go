// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package replay

import (
	"os"
	"os/exec"
	"strings"

	shlex "github.com/anmitsu/go-shlex"

	"github.com/mfleetwo/rcs-fast-import/internal/ir"
	"github.com/mfleetwo/rcs-fast-import/internal/xlog"
)

var log = xlog.Component("replay")

// Runner executes a synthesized RCS command line. Production code uses
// shellRunner; tests substitute a fake that records invocations instead
// of touching a real RCS toolchain.
type Runner interface {
	Run(dir string, cmdline string, legend string) error
}

// shellRunner tokenizes the synthesized command line with go-shlex and
// execs the result directly - no real shell in the loop, so embedded
// quoting never needs to survive a second round of shell parsing.
type shellRunner struct {
	verboseCommands bool
}

// NewShellRunner returns the production Runner. verboseCommands gates
// the command-echo verbosity tier: when set, the child's stdout/stderr
// are forwarded instead of left connected to nothing.
func NewShellRunner(verboseCommands bool) Runner {
	return &shellRunner{verboseCommands: verboseCommands}
}

func (r *shellRunner) Run(dir, cmdline, legend string) error {
	if r.verboseCommands {
		log.WithField("dir", dir).Info("executing " + cmdline + " " + legend)
	}
	words, err := shlex.Split(cmdline, true)
	if err != nil {
		return ir.NewError(ir.ClassExternal, "preparing %q for execution: %v", cmdline, err)
	}
	if len(words) == 0 {
		return ir.NewError(ir.ClassExternal, "empty command line")
	}
	cmd := exec.Command(words[0], words[1:]...)
	cmd.Dir = dir
	if r.verboseCommands {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return ir.NewError(ir.ClassExternal, "running %q (%s): %v", cmdline, legend, err)
	}
	return nil
}

// singleQuote applies the "quote-close / quote / quote-reopen" escape
// for embedding arbitrary text inside a single-quoted shell argument:
// each embedded "'" becomes "'\''".
func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
