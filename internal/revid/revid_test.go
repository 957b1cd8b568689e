// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package revid

import "testing"

func TestFresh(t *testing.T) {
	id := Fresh()
	if id.String() != "1.1" {
		t.Errorf("Fresh() = %s, want 1.1", id.String())
	}
}

func TestSuccessor(t *testing.T) {
	id := Fresh()
	next := id.Successor()
	if next.String() != "1.2" {
		t.Errorf("Successor() = %s, want 1.2", next.String())
	}
	if id.String() != "1.1" {
		t.Errorf("Successor mutated its receiver: %s", id.String())
	}
}

func TestBranchTip(t *testing.T) {
	id, _ := Parse("1.3")
	tip := id.BranchTip(1)
	if tip.String() != "1.3.1.1" {
		t.Errorf("BranchTip(1) = %s, want 1.3.1.1", tip.String())
	}
	tip2 := id.BranchTip(2)
	if tip2.String() != "1.3.2.1" {
		t.Errorf("BranchTip(2) = %s, want 1.3.2.1", tip2.String())
	}
}

func TestParent(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"1.1", "", false},
		{"1.2", "1.1", true},
		{"1.3.1.1", "1.3", true},
		{"1.3.1.2", "1.3.1.1", true},
	}
	for _, c := range cases {
		id, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		parent, ok := id.Parent()
		if ok != c.wantOk {
			t.Errorf("Parent() of %s: ok = %v, want %v", c.in, ok, c.wantOk)
			continue
		}
		if ok && parent.String() != c.want {
			t.Errorf("Parent() of %s = %s, want %s", c.in, parent.String(), c.want)
		}
	}
}

func TestBranchOf(t *testing.T) {
	id, _ := Parse("1.3.1.2")
	if got := id.BranchOf().String(); got != "1.3.1" {
		t.Errorf("BranchOf() = %s, want 1.3.1", got)
	}
}

func TestLess(t *testing.T) {
	a, _ := Parse("1.1")
	b, _ := Parse("1.2")
	c, _ := Parse("1.1.1.1")
	if !a.Less(b) {
		t.Error("expected 1.1 < 1.2")
	}
	if b.Less(a) {
		t.Error("expected 1.2 not < 1.1")
	}
	if !a.Less(c) {
		t.Error("expected 1.1 < 1.1.1.1")
	}
}

func TestParseRejectsOddLength(t *testing.T) {
	if _, err := Parse("1.2.3"); err == nil {
		t.Error("Parse(\"1.2.3\") should fail: odd number of components")
	}
}

func TestParseRejectsNonPositive(t *testing.T) {
	if _, err := Parse("1.0"); err == nil {
		t.Error("Parse(\"1.0\") should fail: zero component")
	}
}

func TestCloneIndependence(t *testing.T) {
	id := Fresh()
	clone := id.Clone()
	clone[0] = 99
	if id[0] == 99 {
		t.Error("Clone shares backing array with its source")
	}
}
