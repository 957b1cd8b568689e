// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package ir

// Passthrough is any unrecognized top-level stream line, retained
// verbatim so the event list round-trips losslessly even though replay
// never emits it to RCS.
type Passthrough struct {
	Text string
	Line int
}
