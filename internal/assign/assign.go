// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

// Package assign implements the branch-assignment engine: the
// tip[(path, branch)] map and the algorithm that turns a modify-op into
// an RCS dotted-decimal revision ID by climbing the first-parent chain
// until an ancestor's tip for the path is found, then either taking the
// tip's successor (same branch) or opening a new branch off it.
package assign

import (
	"github.com/mfleetwo/rcs-fast-import/internal/ir"
	"github.com/mfleetwo/rcs-fast-import/internal/revid"
	"github.com/mfleetwo/rcs-fast-import/internal/xlog"
)

var log = xlog.Component("assign")

// Engine tracks, for every (path, branch) pair seen so far, the most
// recently assigned revision ID, plus which paths already have a master
// on disk. It is not safe for concurrent use.
type Engine struct {
	tip    map[string]map[string]revid.ID
	exists map[string]bool
}

// New returns an Engine with no recorded history.
func New() *Engine {
	return &Engine{
		tip:    make(map[string]map[string]revid.ID),
		exists: make(map[string]bool),
	}
}

// Exists reports whether a master has already been created for path,
// letting the replay engine distinguish "create master" from "check in
// new revision" without duplicating the engine's own bookkeeping.
func (e *Engine) Exists(path string) bool {
	return e.exists[path]
}

// MarkExists records that path now has a master on disk without
// assigning a revision. The replay engine's Copy and Rename create their
// target master through Assign and do not call it.
func (e *Engine) MarkExists(path string) {
	e.exists[path] = true
}

func (e *Engine) getTip(path, branch string) (revid.ID, bool) {
	byBranch, ok := e.tip[path]
	if !ok {
		return nil, false
	}
	id, ok := byBranch[branch]
	return id, ok
}

func (e *Engine) setTip(path, branch string, id revid.ID) {
	byBranch, ok := e.tip[path]
	if !ok {
		byBranch = make(map[string]revid.ID)
		e.tip[path] = byBranch
	}
	byBranch[branch] = id
}

// Assign computes the revision ID for one modify-op on path within
// commit. repo supplies parent-commit lookups for the first-parent
// climb.
func (e *Engine) Assign(repo *ir.Repository, commit *ir.Commit, path string) revid.ID {
	if !e.exists[path] {
		id := revid.Fresh()
		e.exists[path] = true
		e.setTip(path, commit.Branch, id)
		log.WithField("path", path).WithField("rev", id.String()).Debug("fresh master")
		return id
	}

	cur := commit
	for {
		pmark := cur.FirstParent()
		if pmark == "" {
			ir.ThrowAt(ir.ClassCapability, commit.Line,
				"no ancestor of commit %s owns an existing tip for %q: malformed input", commit.Mark, path)
		}
		ancestor := repo.MarkToCommit(pmark)
		if ancestor == nil {
			ir.ThrowAt(ir.ClassSemantic, commit.Line, "commit %s has unresolved parent mark %s", commit.Mark, pmark)
		}
		tip, ok := e.getTip(path, ancestor.Branch)
		if !ok {
			cur = ancestor
			continue
		}

		var id revid.ID
		if ancestor.Branch == commit.Branch {
			id = tip.Successor()
		} else {
			if !ancestor.ChildBranches.Contains(commit.Branch) {
				ancestor.ChildBranches.Add(commit.Branch)
			}
			k := ancestor.ChildBranches.Index(commit.Branch) + 1
			id = tip.BranchTip(k)
		}
		e.setTip(path, commit.Branch, id)
		log.WithField("path", path).WithField("rev", id.String()).Debug("assigned")
		return id
	}
}

// ComputeBranchTips reports, for every commit's mark, whether it is a
// branch tip: none of its first-parent children shares its branch name.
// The replay engine uses this to decide whether to attach a branch-name
// symbolic name after a check-in.
func ComputeBranchTips(repo *ir.Repository) map[ir.Mark]bool {
	hasSameBranchChild := make(map[ir.Mark]bool)
	for _, c := range repo.Commits() {
		pmark := c.FirstParent()
		if pmark == "" {
			continue
		}
		parent := repo.MarkToCommit(pmark)
		if parent != nil && parent.Branch == c.Branch {
			hasSameBranchChild[pmark] = true
		}
	}
	tips := make(map[ir.Mark]bool, len(repo.Commits()))
	for _, c := range repo.Commits() {
		tips[c.Mark] = !hasSameBranchChild[c.Mark]
	}
	return tips
}
