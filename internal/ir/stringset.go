// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package ir

import (
	orderedset "github.com/emirpasic/gods/sets/linkedhashset"
)

// StringSet is an insertion-ordered, duplicate-free set of strings,
// backed by gods' linkedhashset. Ordering (not just dedup) matters for
// two things: the branch-assignment engine's deterministic 1-based
// child-branch numbering, and the event graph's stable "known branch
// names" listing.
type StringSet struct {
	set *orderedset.Set
}

// NewStringSet builds a StringSet, optionally pre-populated.
func NewStringSet(items ...string) *StringSet {
	s := orderedset.New()
	for _, i := range items {
		s.Add(i)
	}
	return &StringSet{set: s}
}

// Add appends item if not already present; it is a no-op otherwise, so
// the set never reorders or duplicates an existing entry.
func (s *StringSet) Add(item string) {
	if !s.set.Contains(item) {
		s.set.Add(item)
	}
}

// Contains reports set membership.
func (s *StringSet) Contains(item string) bool {
	return s.set.Contains(item)
}

// Index returns the 0-based insertion position of item, or -1 if absent.
func (s *StringSet) Index(item string) int {
	for i, v := range s.Values() {
		if v == item {
			return i
		}
	}
	return -1
}

// Values returns the set's members in insertion order.
func (s *StringSet) Values() []string {
	raw := s.set.Values()
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = v.(string)
	}
	return out
}

// Size reports the number of members.
func (s *StringSet) Size() int {
	return s.set.Size()
}
