// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

// Package scratch manages the per-process scratch directory and the
// temporary replay working directory, and their teardown.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mfleetwo/rcs-fast-import/internal/ir"
)

// Space owns one process's scratch directory (blob/inline spills) and
// working directory (the replay engine's staging area), named with the
// PID to avoid collision between concurrent runs.
type Space struct {
	BaseDir    string // invocation directory
	ScratchDir string // "<base>/.rs<pid>" - blob and inline spill files
	WorkDir    string // "<base>/temp-import-<pid>" - replay staging area

	inlineSeq int
}

// New creates both directories under baseDir, named with the current
// process ID.
func New(baseDir string) (*Space, error) {
	pid := os.Getpid()
	sp := &Space{
		BaseDir:    baseDir,
		ScratchDir: filepath.Join(baseDir, fmt.Sprintf(".rs%d", pid)),
		WorkDir:    filepath.Join(baseDir, fmt.Sprintf("temp-import-%d", pid)),
	}
	if err := os.MkdirAll(sp.ScratchDir, 0755); err != nil {
		return nil, ir.NewError(ir.ClassIO, "cannot create scratch directory %s: %v", sp.ScratchDir, err)
	}
	if err := os.MkdirAll(sp.WorkDir, 0755); err != nil {
		os.RemoveAll(sp.ScratchDir)
		return nil, ir.NewError(ir.ClassIO, "cannot create working directory %s: %v", sp.WorkDir, err)
	}
	return sp, nil
}

// BlobSpillPath returns the stable spill path for a blob mark, derived
// from the mark so repeated lookups for the same blob agree.
func (sp *Space) BlobSpillPath(mark ir.Mark) string {
	return filepath.Join(sp.ScratchDir, "blob"+string(mark))
}

// NextInlinePath allocates a spill path for an inline fileop payload,
// named after the owning commit's mark plus a sequence number since one
// commit can carry more than one inline M op.
func (sp *Space) NextInlinePath(commitMark ir.Mark) string {
	sp.inlineSeq++
	return filepath.Join(sp.ScratchDir, fmt.Sprintf("inline%s-%d", commitMark, sp.inlineSeq))
}

// Teardown unconditionally removes both directories. Callers defer it
// immediately after New succeeds, so it runs on success and on a fatal
// error returned or raised through main. No signal handler is installed:
// a process killed by an interrupt exits without running it and leaves
// both directories behind.
func (sp *Space) Teardown() {
	os.RemoveAll(sp.ScratchDir)
	os.RemoveAll(sp.WorkDir)
}

// Finalize atomically moves the populated RCS tree out of the working
// directory to its final location under destDir, then removes whatever
// remains of the working directory. An interrupt before this step leaves
// destDir untouched; this is the only step that mutates it.
func (sp *Space) Finalize(destDir string) error {
	entries, err := os.ReadDir(sp.WorkDir)
	if err != nil {
		return ir.NewError(ir.ClassIO, "cannot read working directory %s: %v", sp.WorkDir, err)
	}
	for _, e := range entries {
		src := filepath.Join(sp.WorkDir, e.Name())
		dst := filepath.Join(destDir, e.Name())
		if err := os.Rename(src, dst); err != nil {
			return ir.NewError(ir.ClassIO, "cannot move %s into place at %s: %v", src, dst, err)
		}
	}
	os.RemoveAll(sp.WorkDir)
	return nil
}
