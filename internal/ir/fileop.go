// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package ir

// FileOpKind tags the variant of a FileOp with the single-byte letter
// fast-import itself uses for the op (M, D, R, C, d).
type FileOpKind byte

// The five file-operation kinds a FileOp can carry.
const (
	OpModify FileOpKind = 'M'
	OpDelete FileOpKind = 'D'
	OpRename FileOpKind = 'R'
	OpCopy   FileOpKind = 'C'
	OpDeleteAll FileOpKind = 'd'
)

// File modes recognized in an M line. 120000 (symlink) and 160000
// (gitlink/submodule) are recognized only so they can be diagnosed and
// refused - RCS has no representation for either.
const (
	ModeRegular    = "100644"
	ModeExecutable = "100755"
	ModeSymlink    = "120000"
	ModeGitlink    = "160000"
)

// FileOp is one operation attached to a Commit. Not every field is
// meaningful for every Kind - Path always is; Source is Rename/Copy only;
// Mode and Ref/Inline are Modify only.
type FileOp struct {
	Kind FileOpKind
	Mode string
	Ref  string // ":N" mark reference, or "inline"
	Path string
	Source string // Rename/Copy source path

	Inline []byte // payload when Ref == "inline", spilled by the parser
	Blob   *Blob  // resolved blob when Ref is a mark; a markless Blob over the inline spill when Ref == "inline"

	Line int // stream line this op began on, for diagnostics
}
