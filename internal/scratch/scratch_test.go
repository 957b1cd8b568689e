// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package scratch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mfleetwo/rcs-fast-import/internal/ir"
)

func TestNewCreatesBothDirectories(t *testing.T) {
	base := t.TempDir()
	sp, err := New(base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sp.Teardown()

	if _, err := os.Stat(sp.ScratchDir); err != nil {
		t.Errorf("scratch dir not created: %v", err)
	}
	if _, err := os.Stat(sp.WorkDir); err != nil {
		t.Errorf("work dir not created: %v", err)
	}
}

func TestBlobSpillPathStable(t *testing.T) {
	sp, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sp.Teardown()

	p1 := sp.BlobSpillPath(ir.Mark(":5"))
	p2 := sp.BlobSpillPath(ir.Mark(":5"))
	if p1 != p2 {
		t.Errorf("BlobSpillPath should be stable for the same mark: %q != %q", p1, p2)
	}
	if filepath.Dir(p1) != sp.ScratchDir {
		t.Errorf("blob spill path %q should live under the scratch directory %q", p1, sp.ScratchDir)
	}
}

func TestNextInlinePathIsUnique(t *testing.T) {
	sp, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sp.Teardown()

	p1 := sp.NextInlinePath(ir.Mark(":1"))
	p2 := sp.NextInlinePath(ir.Mark(":1"))
	if p1 == p2 {
		t.Error("two NextInlinePath calls for the same commit should not collide")
	}
}

func TestTeardownRemovesDirectories(t *testing.T) {
	sp, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sp.Teardown()
	if _, err := os.Stat(sp.ScratchDir); !os.IsNotExist(err) {
		t.Error("Teardown should remove the scratch directory")
	}
	if _, err := os.Stat(sp.WorkDir); !os.IsNotExist(err) {
		t.Error("Teardown should remove the working directory")
	}
}

func TestFinalizeMovesTreeIntoPlace(t *testing.T) {
	dest := t.TempDir()
	sp, err := New(dest)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sp.Teardown()

	rcsDir := filepath.Join(sp.WorkDir, "RCS")
	if err := os.MkdirAll(rcsDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(rcsDir, "foo.txt,v"), []byte("rcs text"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := sp.Finalize(dest); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "RCS", "foo.txt,v")); err != nil {
		t.Errorf("expected master file to land at destination: %v", err)
	}
}
