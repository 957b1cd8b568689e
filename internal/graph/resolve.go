// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

// Package graph implements the event-graph resolver: a single linear
// pass that links every Tag and Reset to the Commit its committish mark
// names and checks that every commit's parent marks resolve before
// replay begins.
package graph

import (
	"github.com/mfleetwo/rcs-fast-import/internal/ir"
	"github.com/mfleetwo/rcs-fast-import/internal/xlog"
)

var log = xlog.Component("graph")

// Resolve walks repo.Events once, attaching each Tag/Reset to the Commit
// named by its committish mark, then checks that each commit's parent
// marks name known commits; parents stay as marks, which the
// branch-assignment engine looks up on demand. An unresolved committish or
// parent mark is
// a semantic error: every mark a tag or reset names must have been
// introduced earlier in the stream.
func Resolve(repo *ir.Repository) error {
	var err *ir.ImportError
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				if ie, ok := rec.(*ir.ImportError); ok {
					err = ie
					return
				}
				panic(rec)
			}
		}()
		resolve(repo)
	}()
	if err != nil {
		return err
	}
	return nil
}

func resolve(repo *ir.Repository) {
	for _, e := range repo.Events {
		switch v := e.(type) {
		case *ir.Tag:
			v.Commit = mustCommit(repo, v.Committish, v.Line, "tag "+v.Name)
			v.Commit.Tags = append(v.Commit.Tags, v)
		case *ir.Reset:
			if v.Committish == "" {
				continue
			}
			v.Commit = mustCommit(repo, v.Committish, v.Line, "reset "+v.Ref)
			v.Commit.Resets = append(v.Commit.Resets, v)
		}
	}
	for _, c := range repo.Commits() {
		for _, pmark := range c.Parents {
			if repo.MarkToCommit(pmark) == nil {
				ir.ThrowAt(ir.ClassSemantic, c.Line, "commit %s names unresolved parent mark %s", c.Mark, pmark)
			}
		}
	}
	log.WithField("commits", len(repo.Commits())).Debug("resolved event graph")
}

func mustCommit(repo *ir.Repository, mark ir.Mark, line int, what string) *ir.Commit {
	c := repo.MarkToCommit(mark)
	if c == nil {
		ir.ThrowAt(ir.ClassSemantic, line, "%s names unresolved committish %s", what, mark)
	}
	return c
}
