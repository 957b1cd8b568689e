// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package ir

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Repository is the ordered event list plus the indexes the resolver and
// replay engine need. Parsing and replay are both single-threaded, but
// the mark index is backed by a concurrent map anyway: it is the table a
// future concurrent replay engine would want, and it costs nothing here.
type Repository struct {
	Events []Event

	marks cmap.ConcurrentMap[string, Event]

	// Branches is the set of every branch name the stream has
	// mentioned, in first-observed order.
	Branches *StringSet

	// ScratchDir is the spill-file directory for this run; set by
	// parser.Parse from its scratch.Space before parsing begins.
	ScratchDir string
}

// NewRepository allocates an empty Repository ready to accept events.
func NewRepository() *Repository {
	return &Repository{
		Events:   make([]Event, 0, 1024),
		marks:    cmap.New[Event](),
		Branches: NewStringSet(),
	}
}

// AddEvent appends event to the list and, for blobs and commits, indexes
// it by mark so later mark references resolve in O(1).
func (r *Repository) AddEvent(e Event) {
	r.Events = append(r.Events, e)
	switch v := e.(type) {
	case *Blob:
		if v.Mark != "" {
			r.marks.Set(string(v.Mark), e)
		}
	case *Commit:
		if v.Mark != "" {
			r.marks.Set(string(v.Mark), e)
		}
		if v.Branch != "" {
			r.Branches.Add(v.Branch)
		}
	}
}

// MarkToEvent resolves a ":N" mark to its event, or nil if unknown.
func (r *Repository) MarkToEvent(mark Mark) Event {
	if mark == "" {
		return nil
	}
	if e, ok := r.marks.Get(string(mark)); ok {
		return e
	}
	return nil
}

// MarkToCommit resolves a mark to a *Commit, or nil if the mark is
// unknown or does not name a commit.
func (r *Repository) MarkToCommit(mark Mark) *Commit {
	if c, ok := r.MarkToEvent(mark).(*Commit); ok {
		return c
	}
	return nil
}

// MarkToBlob resolves a mark to a *Blob, or nil if the mark is unknown
// or does not name a blob.
func (r *Repository) MarkToBlob(mark Mark) *Blob {
	if b, ok := r.MarkToEvent(mark).(*Blob); ok {
		return b
	}
	return nil
}

// Commits returns every Commit event in stream order.
func (r *Repository) Commits() []*Commit {
	out := make([]*Commit, 0, len(r.Events))
	for _, e := range r.Events {
		if c, ok := e.(*Commit); ok {
			out = append(out, c)
		}
	}
	return out
}
