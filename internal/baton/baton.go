// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

// Package baton implements a progress indicator: a twirling stderr
// indicator when attached to a terminal, plain dots otherwise. TTY
// detection gates a further terminfo capability probe (Strings/Fprintf
// against terminfo.EnterReverseMode and friends) so the completion
// message can use reverse video where the terminal supports it; the
// terminfo database is loaded with terminfo.LoadFromEnv and any failure
// just degrades to plain dots.
package baton

import (
	"fmt"
	"os"
	"time"

	"github.com/xo/terminfo"
	"golang.org/x/crypto/ssh/terminal"
)

// Baton ships progress indications to stderr for the duration of one
// run.
type Baton struct {
	stream *os.File
	start  time.Time
	count  int
	fancy  bool            // stderr is a terminal with usable capabilities
	ti     *terminfo.Terminfo
}

// New creates a Baton and writes the start prompt.
func New(prompt string) *Baton {
	b := &Baton{stream: os.Stderr, start: time.Now()}
	b.fancy = terminal.IsTerminal(int(b.stream.Fd()))
	if b.fancy {
		if ti, err := terminfo.LoadFromEnv(); err == nil && ti != nil {
			b.ti = ti
		} else {
			b.fancy = false // terminal, but no usable terminfo database
		}
	}
	fmt.Fprintf(b.stream, "%s...", prompt)
	if b.fancy {
		b.stream.WriteString(" \b")
	}
	return b
}

// Twirl advances the spinner by one frame, or emits a plain dot when
// stderr isn't a capable terminal.
func (b *Baton) Twirl() {
	if b.fancy {
		b.stream.Write([]byte{"-/|\\"[b.count%4]})
		b.stream.WriteString("\b")
	} else {
		b.stream.WriteString(".")
	}
	b.count++
}

// End reports completion with elapsed time, highlighting msg in reverse
// video when terminfo offers the capability.
func (b *Baton) End(msg string) {
	elapsed := time.Since(b.start).Round(time.Millisecond)
	if b.fancy && len(b.ti.Strings[terminfo.EnterReverseMode]) != 0 {
		fmt.Fprintf(b.stream, "...(%s) ", elapsed)
		b.ti.Fprintf(b.stream, terminfo.EnterReverseMode)
		b.stream.WriteString(msg)
		b.ti.Fprintf(b.stream, terminfo.ExitAttributeMode)
		b.stream.WriteString(".\n")
		return
	}
	fmt.Fprintf(b.stream, "...(%s) %s.\n", elapsed, msg)
}
