// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package graph

import (
	"testing"

	"github.com/mfleetwo/rcs-fast-import/internal/ir"
)

func TestResolveLinksTagsAndResets(t *testing.T) {
	repo := ir.NewRepository()
	c := ir.NewCommit()
	c.Mark = ":1"
	c.Branch = "master"
	repo.AddEvent(c)

	tag := &ir.Tag{Name: "v1.0", Committish: ":1"}
	repo.AddEvent(tag)
	reset := &ir.Reset{Ref: "refs/heads/master", Committish: ":1"}
	repo.AddEvent(reset)

	if err := Resolve(repo); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tag.Commit != c {
		t.Error("tag was not linked to its committish commit")
	}
	if reset.Commit != c {
		t.Error("reset was not linked to its committish commit")
	}
	if len(c.Tags) != 1 || c.Tags[0] != tag {
		t.Error("commit.Tags was not backfilled")
	}
	if len(c.Resets) != 1 || c.Resets[0] != reset {
		t.Error("commit.Resets was not backfilled")
	}
}

func TestResolveSkipsResetWithNoCommittish(t *testing.T) {
	repo := ir.NewRepository()
	reset := &ir.Reset{Ref: "refs/heads/stale"}
	repo.AddEvent(reset)
	if err := Resolve(repo); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if reset.Commit != nil {
		t.Error("reset with no committish should stay unresolved, not error")
	}
}

func TestResolveUnresolvedTagIsFatal(t *testing.T) {
	repo := ir.NewRepository()
	tag := &ir.Tag{Name: "v1.0", Committish: ":99"}
	repo.AddEvent(tag)
	if err := Resolve(repo); err == nil {
		t.Fatal("expected a semantic error for an unresolved tag committish")
	}
}

func TestResolveUnresolvedParentIsFatal(t *testing.T) {
	repo := ir.NewRepository()
	c := ir.NewCommit()
	c.Mark = ":1"
	c.Parents = []ir.Mark{":0"}
	repo.AddEvent(c)
	if err := Resolve(repo); err == nil {
		t.Fatal("expected a semantic error for an unresolved parent mark")
	}
}
