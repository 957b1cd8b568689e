// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package ir

// Blob is a detached binary payload, spilled to disk rather than held
// whole in memory. FirstPath records the path of the modify-op that
// first referenced it; later references to the same mark reuse the
// same SpillPath without re-recording FirstPath.
type Blob struct {
	Mark      Mark
	SpillPath string
	FirstPath string
}

// NewBlob constructs a Blob for the given mark with its spill file already
// written to spillPath by the parser.
func NewBlob(mark Mark, spillPath string) *Blob {
	return &Blob{Mark: mark, SpillPath: spillPath}
}

// NoteFirstPath records path as this blob's first associated path if one
// hasn't been recorded yet.
func (b *Blob) NoteFirstPath(path string) {
	if b.FirstPath == "" {
		b.FirstPath = path
	}
}
