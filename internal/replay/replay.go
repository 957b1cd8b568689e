// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

// Package replay implements the replay engine (VCS driver): it walks
// the resolved event graph in stream order and drives an external RCS
// toolchain to build one master per versioned path under an RCS/
// subdirectory, the same layout rcs(1) itself expects.
package replay

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/termie/go-shutil"

	fqme "gitlab.com/esr/fqme"

	"github.com/mfleetwo/rcs-fast-import/internal/assign"
	"github.com/mfleetwo/rcs-fast-import/internal/ir"
	"github.com/mfleetwo/rcs-fast-import/internal/revid"
	"github.com/mfleetwo/rcs-fast-import/internal/scratch"
)

// Options configures one replay run, corresponding to the tool's
// command-line flags.
type Options struct {
	Plain            bool // -p: raw comment, no RFC-822 envelope
	LockedCheckout   bool // -l
	UnlockedCheckout bool // -u
	VerboseCommands  bool // command-echo tier of -v
}

// Engine drives the replay of one resolved Repository into a working
// directory of RCS masters.
type Engine struct {
	opts   Options
	repo   *ir.Repository
	sp     *scratch.Space
	assign *assign.Engine
	runner Runner
	tips   map[ir.Mark]bool // commit mark -> is branch tip

	live         map[string]map[string]bool // path -> branch -> currently live
	tipPerBranch map[string]map[string]revid.ID
	lastGlobal   map[string]revid.ID // path -> most recently checked-in revision, any branch
	seen         []string            // paths with a master, in creation order

	user string
}

// New builds a replay Engine. repo must already have passed through
// internal/graph.Resolve.
func New(repo *ir.Repository, sp *scratch.Space, opts Options) *Engine {
	name, email, err := fqme.WhoAmI()
	who := "unknown"
	if err == nil && name != "" {
		who = name + " <" + email + ">"
	}
	return &Engine{
		opts:         opts,
		repo:         repo,
		sp:           sp,
		assign:       assign.New(),
		runner:       NewShellRunner(opts.VerboseCommands),
		tips:         assign.ComputeBranchTips(repo),
		live:         make(map[string]map[string]bool),
		tipPerBranch: make(map[string]map[string]revid.ID),
		lastGlobal:   make(map[string]revid.ID),
		user:         who,
	}
}

// Run drives every event in repo in stream order.
func (e *Engine) Run() error {
	log.WithField("user", e.user).Info("starting replay")
	for _, ev := range e.repo.Events {
		c, ok := ev.(*ir.Commit)
		if !ok {
			continue
		}
		if err := e.replayCommit(c); err != nil {
			return err
		}
	}
	return e.postActions()
}

func (e *Engine) replayCommit(c *ir.Commit) error {
	if c.IsMerge() {
		log.WithField("mark", c.Mark).Warn("merge commit has no RCS representation; following first parent only")
	}
	for _, op := range c.FileOps {
		if err := e.replayFileOp(c, op); err != nil {
			return err
		}
	}
	return e.postcommit(c)
}

func (e *Engine) replayFileOp(c *ir.Commit, op *ir.FileOp) error {
	switch op.Kind {
	case ir.OpModify:
		return e.modify(c, op)
	case ir.OpDelete:
		return e.delete(c, op.Path, "Delete")
	case ir.OpRename:
		if err := e.copy(c, op.Source, op.Path, "Rename"); err != nil {
			return err
		}
		return e.delete(c, op.Source, "Rename")
	case ir.OpCopy:
		return e.copy(c, op.Source, op.Path, "Copy")
	case ir.OpDeleteAll:
		return e.deleteAll(c)
	default:
		return ir.NewError(ir.ClassSemantic, "unrecognized fileop kind %q", op.Kind)
	}
}

// --- path helpers -----------------------------------------------------

func (e *Engine) rcsDir(path string) string {
	return filepath.Join(e.sp.WorkDir, filepath.Dir(path), "RCS")
}

func (e *Engine) masterPath(path string) string {
	return filepath.Join(e.rcsDir(path), filepath.Base(path)+",v")
}

func (e *Engine) workingPath(path string) string {
	return filepath.Join(e.sp.WorkDir, path)
}

func (e *Engine) ensureRCSDir(path string) error {
	if err := os.MkdirAll(e.rcsDir(path), 0755); err != nil {
		return ir.NewError(ir.ClassIO, "cannot create RCS directory for %q: %v", path, err)
	}
	return nil
}

func (e *Engine) setLive(path, branch string, live bool) {
	byBranch, ok := e.live[path]
	if !ok {
		byBranch = make(map[string]bool)
		e.live[path] = byBranch
	}
	byBranch[branch] = live
}

// --- Modify ------------------------------------------------------------

func (e *Engine) modify(c *ir.Commit, op *ir.FileOp) error {
	switch op.Mode {
	case ir.ModeSymlink, ir.ModeGitlink:
		return ir.NewError(ir.ClassCapability, "file mode %s (%s) is not representable in RCS, path %q", op.Mode, modeName(op.Mode), op.Path)
	}
	if err := e.ensureRCSDir(op.Path); err != nil {
		return err
	}
	working := e.workingPath(op.Path)
	if _, err := os.Stat(working); err == nil {
		return ir.NewError(ir.ClassIO, "working path %q already occupied before check-in", op.Path)
	}
	if op.Blob == nil {
		return ir.NewError(ir.ClassSemantic, "modify op on %q has no resolved content source", op.Path)
	}
	src := op.Blob.SpillPath
	if err := os.MkdirAll(filepath.Dir(working), 0755); err != nil {
		return ir.NewError(ir.ClassIO, "cannot create working subdirectory for %q: %v", op.Path, err)
	}
	if err := os.Link(src, working); err != nil {
		// Spill file and working tree may not share a filesystem; fall
		// back to a real copy.
		if _, cerr := shutil.Copy(src, working, false); cerr != nil {
			return ir.NewError(ir.ClassIO, "cannot materialize content for %q: %v", op.Path, cerr)
		}
	}
	e.setLive(op.Path, c.Branch, true)
	return e.checkin(c, op.Path, false)
}

// --- Delete --------------------------------------------------------------

func (e *Engine) delete(c *ir.Commit, path, legend string) error {
	if err := e.ensureRCSDir(path); err != nil {
		return err
	}
	working := e.workingPath(path)
	if err := os.MkdirAll(filepath.Dir(working), 0755); err != nil {
		return ir.NewError(ir.ClassIO, "cannot create working subdirectory for %q: %v", path, err)
	}
	if err := os.WriteFile(working, nil, 0644); err != nil {
		return ir.NewError(ir.ClassIO, "cannot write empty working file for %q: %v", path, err)
	}
	e.setLive(path, c.Branch, false)
	return e.checkin(c, path, true)
}

func (e *Engine) deleteAll(c *ir.Commit) error {
	var livePaths []string
	for path, branches := range e.live {
		if branches[c.Branch] {
			livePaths = append(livePaths, path)
		}
	}
	for _, path := range livePaths {
		if err := e.delete(c, path, "DeleteAll"); err != nil {
			return err
		}
	}
	return nil
}

// --- Copy / Rename -------------------------------------------------------

// copy implements the Copy dispatch: fatal if target exists, otherwise
// check out source's branch tip and check it in fresh as target - the
// copy does not inherit history.
func (e *Engine) copy(c *ir.Commit, source, target, legend string) error {
	if e.assign.Exists(target) {
		return ir.NewError(ir.ClassCapability, "copy target %q already has a master", target)
	}
	srcTip, ok := e.tipOf(source, c.Branch)
	if !ok {
		return ir.NewError(ir.ClassSemantic, "copy source %q has no revision on branch %q", source, c.Branch)
	}
	if err := os.MkdirAll(filepath.Dir(e.workingPath(source)), 0755); err != nil {
		return ir.NewError(ir.ClassIO, "cannot create working subdirectory for %q: %v", source, err)
	}
	// "co" places the working file as RCS/<name>,v's sibling, i.e.
	// exactly workingPath(source); no -p/redirection needed, which
	// matters because Run execs argv directly rather than through a
	// shell that could interpret ">".
	checkoutCmd := fmt.Sprintf("co -q -r%s %s", srcTip.String(), shQuotePath(e.masterPath(source)))
	if err := e.runner.Run(e.sp.WorkDir, checkoutCmd, legend+" checkout"); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(e.workingPath(target)), 0755); err != nil {
		return ir.NewError(ir.ClassIO, "cannot create working subdirectory for %q: %v", target, err)
	}
	if err := os.Rename(e.workingPath(source), e.workingPath(target)); err != nil {
		return ir.NewError(ir.ClassIO, "cannot rename checked-out content into %q: %v", target, err)
	}
	if err := e.ensureRCSDir(target); err != nil {
		return err
	}
	e.setLive(target, c.Branch, true)
	return e.checkin(c, target, false)
}

func (e *Engine) tipOf(path, branch string) (revid.ID, bool) {
	byBranch, ok := e.tipPerBranch[path]
	if !ok {
		return nil, false
	}
	id, ok := byBranch[branch]
	return id, ok
}

// --- check-in synthesis ---------------------------------------------------

// checkin assigns a revision, synthesizes and runs the "ci" command, and
// records bookkeeping. deleted marks a state=Deleted check-in.
func (e *Engine) checkin(c *ir.Commit, path string, deleted bool) error {
	rev := e.assign.Assign(e.repo, c, path)

	master := e.masterPath(path)
	working := e.workingPath(path)
	comment := buildComment(c, e.opts.Plain)

	// Detect re-entry onto an older branch: the new revision's RCS
	// parent differs from whatever this master was most recently checked
	// in at, regardless of branch.
	if parent, ok := rev.Parent(); ok {
		if last, had := e.lastGlobal[path]; had && !last.Equal(parent) {
			if err := e.runner.Run(e.sp.WorkDir, fmt.Sprintf("rcs -q -u %s", shQuotePath(master)), "unlock before re-entering older branch"); err != nil {
				return err
			}
			if err := e.runner.Run(e.sp.WorkDir, fmt.Sprintf("rcs -q -l%s %s", parent.String(), shQuotePath(master)), "lock parent revision"); err != nil {
				return err
			}
		}
	}

	flags := fmt.Sprintf("-q -r%s -m%s", rev.String(), singleQuote(comment))
	if deleted {
		flags += " -sDeleted"
	}
	if err := e.runner.Run(e.sp.WorkDir, fmt.Sprintf("ci %s %s", flags, shQuotePath(working)), "check in "+path); err != nil {
		return err
	}
	os.Remove(working)

	e.recordCheckin(path, c.Branch, rev)

	if e.tips[c.Mark] {
		if err := e.attachSymbolicName(master, c.Branch, rev.BranchOf().String()); err != nil {
			return err
		}
	}
	for _, reset := range c.Resets {
		if err := e.attachSymbolicName(master, reset.Ref, rev.String()); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) recordCheckin(path, branch string, rev revid.ID) {
	byBranch, ok := e.tipPerBranch[path]
	if !ok {
		byBranch = make(map[string]revid.ID)
		e.tipPerBranch[path] = byBranch
	}
	byBranch[branch] = rev
	e.lastGlobal[path] = rev

	for _, p := range e.seen {
		if p == path {
			return
		}
	}
	e.seen = append(e.seen, path)
}

func (e *Engine) attachSymbolicName(master, name, rev string) error {
	cmdline := fmt.Sprintf("rcs -q -n%s:%s %s", name, rev, shQuotePath(master))
	return e.runner.Run(e.sp.WorkDir, cmdline, "tag "+name)
}

// --- tags (ANNOTATED-TAGS) -------------------------------------------------

const annotatedTagsPath = "ANNOTATED-TAGS"

func (e *Engine) postcommit(c *ir.Commit) error {
	for _, tag := range c.Tags {
		if err := e.recordAnnotatedTag(c, tag); err != nil {
			return err
		}
	}
	return nil
}

// recordAnnotatedTag writes one tag record to the ANNOTATED-TAGS working
// file, checks it in as a new revision of that shared master with the
// tagger's date, then attaches the tag name as a symbolic name to every
// other master that has a tip on the tagged commit's branch.
func (e *Engine) recordAnnotatedTag(c *ir.Commit, tag *ir.Tag) error {
	if err := e.ensureRCSDir(annotatedTagsPath); err != nil {
		return err
	}
	working := e.workingPath(annotatedTagsPath)
	existing, _ := os.ReadFile(working)
	record := formatAnnotatedTag(tag)
	if err := os.WriteFile(working, append(existing, record...), 0644); err != nil {
		return ir.NewError(ir.ClassIO, "cannot append to %s: %v", annotatedTagsPath, err)
	}

	rev := e.assign.Assign(e.repo, c, annotatedTagsPath)
	master := e.masterPath(annotatedTagsPath)
	dateFlag := ""
	if tag.Tagger != nil {
		dateFlag = fmt.Sprintf("-d%s ", singleQuote(tag.Tagger.When.RFC1123Z()))
	}
	cmdline := fmt.Sprintf("ci -q -r%s %s-m%s %s", rev.String(), dateFlag, singleQuote("tag "+tag.Name), shQuotePath(working))
	if err := e.runner.Run(e.sp.WorkDir, cmdline, "check in annotated tag "+tag.Name); err != nil {
		return err
	}
	os.Remove(working)
	e.recordCheckin(annotatedTagsPath, c.Branch, rev)

	// Attaches to every master with a tip on the tag commit's own branch,
	// which covers the common case of tagging the latest commit on a
	// branch; a master last touched on some other branch keeps no record
	// of this tag.
	for _, path := range e.seen {
		if path == annotatedTagsPath {
			continue
		}
		if id, ok := e.tipOf(path, c.Branch); ok {
			if err := e.attachSymbolicName(e.masterPath(path), tag.Name, id.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatAnnotatedTag(tag *ir.Tag) string {
	taggerLine := "Tagger: none\n"
	if tag.Tagger != nil {
		taggerLine = fmt.Sprintf("Tagger: %s <%s>\nTagger-Date: %s\n", tag.Tagger.Name, tag.Tagger.Email, tag.Tagger.When.RFC1123Z())
	}
	return fmt.Sprintf("Tag-Name: %s\n%s\n%s\n", tag.Name, taggerLine, tag.Comment)
}

// --- post-run actions -------------------------------------------------

// postActions performs the final per-master checkout step. Every "ci"
// leaves its master unlocked with no working file; -l and -u each ask
// for one final working copy per master, checked out locked or unlocked
// respectively. With neither flag the masters are left exactly as "ci"
// left them, rather than issuing a redundant unlock pass over masters
// that are already unlocked.
func (e *Engine) postActions() error {
	switch {
	case e.opts.LockedCheckout:
		for _, path := range e.seen {
			master := e.masterPath(path)
			if err := e.runner.Run(e.sp.WorkDir, fmt.Sprintf("co -q -l %s", shQuotePath(master)), "final checkout, locked"); err != nil {
				return err
			}
		}
	case e.opts.UnlockedCheckout:
		for _, path := range e.seen {
			master := e.masterPath(path)
			if err := e.runner.Run(e.sp.WorkDir, fmt.Sprintf("co -q %s", shQuotePath(master)), "final checkout, unlocked"); err != nil {
				return err
			}
		}
	}
	return nil
}

func modeName(mode string) string {
	switch mode {
	case ir.ModeSymlink:
		return "symlink"
	case ir.ModeGitlink:
		return "submodule"
	default:
		return mode
	}
}

func shQuotePath(p string) string {
	return singleQuote(p)
}
