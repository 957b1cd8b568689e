// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package parser

import (
	"strings"
	"testing"

	"github.com/mfleetwo/rcs-fast-import/internal/ir"
	"github.com/mfleetwo/rcs-fast-import/internal/lex"
	"github.com/mfleetwo/rcs-fast-import/internal/scratch"
)

func newSpace(t *testing.T) *scratch.Space {
	t.Helper()
	sp, err := scratch.New(t.TempDir())
	if err != nil {
		t.Fatalf("scratch.New: %v", err)
	}
	t.Cleanup(sp.Teardown)
	return sp
}

func TestParseLinearHistory(t *testing.T) {
	stream := "blob\n" +
		"mark :1\n" +
		"data 5\n" +
		"hello\n" +
		"commit refs/heads/master\n" +
		"mark :2\n" +
		"committer Jane Doe <jane@example.com> 1000000000 +0000\n" +
		"data 9\n" +
		"first rev\n" +
		"M 100644 :1 foo.txt\n" +
		"commit refs/heads/master\n" +
		"mark :3\n" +
		"committer Jane Doe <jane@example.com> 1000000100 +0000\n" +
		"data 10\n" +
		"second rev\n" +
		"from :2\n" +
		"M 100644 :1 foo.txt\n"

	sp := newSpace(t)
	repo, err := Parse(lex.New(strings.NewReader(stream)), "<test>", sp)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	c1 := repo.MarkToCommit(":2")
	c2 := repo.MarkToCommit(":3")
	if c1 == nil || c2 == nil {
		t.Fatal("expected both commits to be indexed by mark")
	}
	if c2.FirstParent() != ":2" {
		t.Errorf("second commit's first parent = %q, want :2", c2.FirstParent())
	}
	if c1.Branch != "refs/heads/master" || c2.Branch != "refs/heads/master" {
		t.Error("both commits should carry the branch named in their header")
	}
	if len(c1.FileOps) != 1 || c1.FileOps[0].Kind != ir.OpModify {
		t.Fatalf("expected one Modify fileop on first commit, got %+v", c1.FileOps)
	}
	if c1.FileOps[0].Blob == nil || c1.FileOps[0].Blob.Mark != ":1" {
		t.Error("M op should resolve its mark reference to the blob")
	}
}

func TestParseCommitRequiresMark(t *testing.T) {
	stream := "commit refs/heads/master\n" +
		"committer Jane Doe <jane@example.com> 1000000000 +0000\n" +
		"data 4\n" +
		"oops\n"
	sp := newSpace(t)
	_, err := Parse(lex.New(strings.NewReader(stream)), "<test>", sp)
	if err == nil {
		t.Fatal("expected a semantic error for a commit with no mark")
	}
}

func TestParseCommitRequiresCommitter(t *testing.T) {
	stream := "commit refs/heads/master\n" +
		"mark :1\n" +
		"data 4\n" +
		"oops\n"
	sp := newSpace(t)
	_, err := Parse(lex.New(strings.NewReader(stream)), "<test>", sp)
	if err == nil {
		t.Fatal("expected a semantic error for a commit with no committer")
	}
}

func TestParseDeleteAndRename(t *testing.T) {
	stream := "commit refs/heads/master\n" +
		"mark :1\n" +
		"committer Jane Doe <jane@example.com> 1000000000 +0000\n" +
		"data 4\n" +
		"init\n" +
		"D old.txt\n" +
		"R \"old name.txt\" \"new name.txt\"\n" +
		"deleteall\n"
	sp := newSpace(t)
	repo, err := Parse(lex.New(strings.NewReader(stream)), "<test>", sp)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c := repo.MarkToCommit(":1")
	if len(c.FileOps) != 3 {
		t.Fatalf("expected 3 fileops, got %d", len(c.FileOps))
	}
	if c.FileOps[0].Kind != ir.OpDelete || c.FileOps[0].Path != "old.txt" {
		t.Errorf("unexpected Delete op: %+v", c.FileOps[0])
	}
	if c.FileOps[1].Kind != ir.OpRename || c.FileOps[1].Source != "old name.txt" || c.FileOps[1].Path != "new name.txt" {
		t.Errorf("unexpected Rename op: %+v", c.FileOps[1])
	}
	if c.FileOps[2].Kind != ir.OpDeleteAll {
		t.Errorf("unexpected DeleteAll op: %+v", c.FileOps[2])
	}
}

func TestParsePropertyShapes(t *testing.T) {
	stream := "commit refs/heads/master\n" +
		"mark :1\n" +
		"committer Jane Doe <jane@example.com> 1000000000 +0000\n" +
		"property flagonly\n" +
		"property short 5 value\n" +
		"property multiline 17 line one\nline two\n" +
		"data 4\n" +
		"init\n"
	sp := newSpace(t)
	repo, err := Parse(lex.New(strings.NewReader(stream)), "<test>", sp)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c := repo.MarkToCommit(":1")
	if !c.Properties["flagonly"].Flag {
		t.Error("flagonly property should be a bare flag")
	}
	if got := c.Properties["short"].Value; got != "value" {
		t.Errorf("short property = %q, want %q", got, "value")
	}
	if got := c.Properties["multiline"].Value; got != "line one\nline two" {
		t.Errorf("multiline property = %q, want %q", got, "line one\nline two")
	}
}

func TestParseRefusesUnknownMode(t *testing.T) {
	stream := "commit refs/heads/master\n" +
		"mark :1\n" +
		"committer Jane Doe <jane@example.com> 1000000000 +0000\n" +
		"data 4\n" +
		"init\n" +
		"M 999999 inline foo.txt\n" +
		"data 3\nfoo\n"
	sp := newSpace(t)
	_, err := Parse(lex.New(strings.NewReader(stream)), "<test>", sp)
	if err == nil {
		t.Fatal("expected a parse error for an unrecognized file mode")
	}
}

func TestParseTagAndReset(t *testing.T) {
	stream := "commit refs/heads/master\n" +
		"mark :1\n" +
		"committer Jane Doe <jane@example.com> 1000000000 +0000\n" +
		"data 4\n" +
		"init\n" +
		"reset refs/heads/master\n" +
		"from :1\n" +
		"tag v1.0\n" +
		"from :1\n" +
		"tagger Jane Doe <jane@example.com> 1000000000 +0000\n" +
		"data 7\n" +
		"release\n"
	sp := newSpace(t)
	repo, err := Parse(lex.New(strings.NewReader(stream)), "<test>", sp)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var sawReset, sawTag bool
	for _, ev := range repo.Events {
		switch v := ev.(type) {
		case *ir.Reset:
			sawReset = true
			if v.Ref != "refs/heads/master" || v.Committish != ":1" {
				t.Errorf("unexpected reset: %+v", v)
			}
		case *ir.Tag:
			sawTag = true
			if v.Name != "v1.0" || v.Committish != ":1" || v.Tagger == nil {
				t.Errorf("unexpected tag: %+v", v)
			}
		}
	}
	if !sawReset || !sawTag {
		t.Error("expected both a reset and a tag event")
	}
}
