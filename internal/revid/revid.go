// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

// Package revid implements dotted-decimal RCS revision numbers and the
// successor/parent/branch-tip operations the branch-assignment engine
// composes them with.
package revid

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is a non-empty sequence of positive integers of even length: trunk
// IDs have length 2 ("1.1", "1.2", ...), branch tips have length 4, 6,
// and so on. It is a value type - every operation returns a new ID
// rather than mutating the receiver.
type ID []int

// Fresh returns the first revision ever assigned to a new master: "1.1".
func Fresh() ID {
	return ID{1, 1}
}

// Parse turns a dotted-decimal string such as "1.2.1.1" into an ID.
func Parse(s string) (ID, error) {
	parts := strings.Split(s, ".")
	if len(parts)%2 != 0 || len(parts) == 0 {
		return nil, fmt.Errorf("revision id %q does not have an even number of components", s)
	}
	id := make(ID, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("revision id %q has a non-positive or non-numeric component %q", s, p)
		}
		id[i] = n
	}
	return id, nil
}

// String renders the dotted decimal form.
func (id ID) String() string {
	parts := make([]string, len(id))
	for i, n := range id {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Clone returns an independent copy, since ID is backed by a slice and
// callers must not let Successor/BranchTip mutate a shared tip-map entry.
func (id ID) Clone() ID {
	out := make(ID, len(id))
	copy(out, id)
	return out
}

// Successor increments the last element: a linear extension of the same
// line.
func (id ID) Successor() ID {
	out := id.Clone()
	out[len(out)-1]++
	return out
}

// Parent returns the revision this one was checked in against. If the
// last element is greater than 1, decrementing it stays on the same
// line. Otherwise the branch point on the parent line is the ID with its
// last two elements dropped. Parent is undefined on "1.1" (ok is false).
func (id ID) Parent() (ID, bool) {
	if len(id) == 2 && id[1] == 1 {
		return nil, false
	}
	if id[len(id)-1] > 1 {
		out := id.Clone()
		out[len(out)-1]--
		return out, true
	}
	return id[:len(id)-2].Clone(), true
}

// BranchTip appends [k, 1], producing the first revision on the k-th
// child branch forked from id.
func (id ID) BranchTip(k int) ID {
	out := make(ID, len(id)+2)
	copy(out, id)
	out[len(out)-2] = k
	out[len(out)-1] = 1
	return out
}

// BranchOf drops the last element, yielding the canonical branch
// identifier RCS symbolic names attach to (e.g. "1.1.1" for the branch
// whose tips are "1.1.1.1", "1.1.1.2", ...).
func (id ID) BranchOf() ID {
	return id[:len(id)-1].Clone()
}

// IsTrunk reports whether id names a length-2 (mainline) revision.
func (id ID) IsTrunk() bool {
	return len(id) == 2
}

// Less reports whether id sorts strictly before other in dotted-number
// order within the same branch: compare elementwise, shorter is a
// prefix-loses tiebreak. Every check-in issues a revision strictly
// greater than the prior tip, so this ordering also verifies that.
func (id ID) Less(other ID) bool {
	for i := 0; i < len(id) && i < len(other); i++ {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return len(id) < len(other)
}

// Equal reports elementwise equality.
func (id ID) Equal(other ID) bool {
	if len(id) != len(other) {
		return false
	}
	for i := range id {
		if id[i] != other[i] {
			return false
		}
	}
	return true
}
