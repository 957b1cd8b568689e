// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

// Command rcs-fast-import reads a git fast-import stream on standard
// input and replays it as a tree of RCS master files rooted at the
// invocation directory. It is a one-shot batch converter, not an
// interactive shell: argument parsing is the whole of main's job.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfleetwo/rcs-fast-import/internal/baton"
	"github.com/mfleetwo/rcs-fast-import/internal/graph"
	"github.com/mfleetwo/rcs-fast-import/internal/ir"
	"github.com/mfleetwo/rcs-fast-import/internal/lex"
	"github.com/mfleetwo/rcs-fast-import/internal/parser"
	"github.com/mfleetwo/rcs-fast-import/internal/replay"
	"github.com/mfleetwo/rcs-fast-import/internal/scratch"
	"github.com/mfleetwo/rcs-fast-import/internal/xlog"
)

// version is a fixed string; there is no build-time injection machinery
// to stamp it with instead.
const version = "rcs-fast-import 1.0"

var (
	verbosity int
	plain     bool
	locked    bool
	unlocked  bool
	showVer   bool
	usage     bool
)

func main() {
	root := &cobra.Command{
		Use:           "rcs-fast-import",
		Short:         "Replay a git fast-import stream as a tree of RCS masters",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if usage {
				return cmd.Usage()
			}
			if showVer {
				fmt.Println(version)
				return nil
			}
			return run()
		},
	}
	root.Flags().CountVarP(&verbosity, "verbose", "v", "increase diagnostic verbosity (repeatable)")
	root.Flags().BoolVarP(&plain, "plain", "p", false, "plain mode: raw comment, no RFC-822 envelope")
	root.Flags().BoolVarP(&locked, "locked", "l", false, "leave the final checkout locked")
	root.Flags().BoolVarP(&unlocked, "unlocked", "u", false, "leave the final checkout unlocked")
	root.Flags().BoolVarP(&showVer, "version", "V", false, "print version and exit")
	root.Flags().BoolVarP(&usage, "usage", "?", false, "print usage and exit")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires the pipeline: lex -> parse -> resolve -> replay -> finalize.
// Since there is no command loop to wrap, the panic recovery that turns
// an *ir.ImportError into a plain error return lives here directly.
func run() (err error) {
	xlog.SetVerbosity(verbosity)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot determine invocation directory: %w", err)
	}

	sp, spErr := scratch.New(cwd)
	if spErr != nil {
		return spErr
	}
	defer sp.Teardown()

	b := baton.New("importing")
	defer func() {
		if rec := recover(); rec != nil {
			b.End("failed")
			if ie, ok := rec.(*ir.ImportError); ok {
				err = ie
				return
			}
			panic(rec)
		}
	}()

	lx := lex.New(os.Stdin)
	repo, err := parser.Parse(lx, "<stdin>", sp)
	if err != nil {
		b.End("failed")
		return err
	}
	b.Twirl()

	if err := graph.Resolve(repo); err != nil {
		b.End("failed")
		return err
	}
	b.Twirl()

	engine := replay.New(repo, sp, replay.Options{
		Plain:            plain,
		LockedCheckout:   locked,
		UnlockedCheckout: unlocked,
		VerboseCommands:  verbosity >= 3,
	})
	if err := engine.Run(); err != nil {
		b.End("failed")
		return err
	}
	b.Twirl()

	if err := sp.Finalize(cwd); err != nil {
		b.End("failed")
		return err
	}

	b.End("done")
	return nil
}
