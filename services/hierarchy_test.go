package services

import (
	"errors"
	"testing"
)

func sampleSection() []RuleNode {
	return []RuleNode{
		{ID: "r1", SectionID: "s1", Path: "1", Level: 1},
		{ID: "r11", SectionID: "s1", Path: "1.1", Level: 2, ParentPath: "1"},
		{ID: "r12", SectionID: "s1", Path: "1.2", Level: 2, ParentPath: "1"},
		{ID: "r111", SectionID: "s1", Path: "1.1.1", Level: 3, ParentPath: "1.1"},
		{ID: "r2", SectionID: "s1", Path: "2", Level: 1},
		{ID: "r21", SectionID: "s1", Path: "2.1", Level: 2, ParentPath: "2"},
	}
}

func TestResolveChildren_Basic(t *testing.T) {
	res := ResolveChildren(sampleSection(), "1")
	if !res.ParentFound {
		t.Error("expected parent to be found")
	}
	if res.ChildLevel != 2 {
		t.Errorf("child level = %d, want 2", res.ChildLevel)
	}
	if res.Uncertain {
		t.Error("did not expect uncertain resolution")
	}

	nodes := res.Nodes()
	if len(nodes) != 2 || nodes[0].Path != "1.1" || nodes[1].Path != "1.2" {
		t.Fatalf("children of \"1\" = %v, want [1.1 1.2]", paths(nodes))
	}
	for _, m := range res.Children {
		if m.Strategy != MatchParentPath {
			t.Errorf("node %s matched by %s, want parent_path", m.Node.Path, m.Strategy)
		}
	}
}

func TestResolveChildren_CaseInsensitive(t *testing.T) {
	nodes := []RuleNode{
		{ID: "a", Path: "1.A", Level: 2, ParentPath: "1"},
		{ID: "p", Path: "1", Level: 1},
		{ID: "b", Path: "1.a.x", Level: 3, ParentPath: "1.A"},
	}
	res := ResolveChildren(nodes, "1.a")
	if !res.ParentFound {
		t.Error("case-insensitive parent lookup failed")
	}
	got := res.Nodes()
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("children of \"1.a\" = %v, want [1.a.x]", paths(got))
	}
	// Stored casing comes back untouched.
	if got[0].Path != "1.a.x" {
		t.Errorf("path casing mangled: %q", got[0].Path)
	}
}

func TestResolveChildren_MissingParentPathField(t *testing.T) {
	// No denormalized parent_path anywhere; structure still resolves.
	nodes := []RuleNode{
		{ID: "p", Path: "3", Level: 1},
		{ID: "c1", Path: "3.1", Level: 2},
		{ID: "c2", Path: "3.2", Level: 2},
	}
	res := ResolveChildren(nodes, "3")
	if len(res.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(res.Children))
	}
	for _, m := range res.Children {
		if m.Strategy != MatchPathStructure {
			t.Errorf("node %s matched by %s, want path_structure", m.Node.Path, m.Strategy)
		}
	}
}

func TestResolveChildren_ParentMissingFallsBackToDepth(t *testing.T) {
	// Parent node itself was deleted or never synced; the bare segment
	// count of the queried path becomes the child level, so rows stored
	// one level below it do not resolve against a missing parent.
	nodes := []RuleNode{
		{ID: "c1", Path: "4.1", Level: 2, ParentPath: "4"},
		{ID: "c2", Path: "4.2", Level: 2, ParentPath: "4"},
	}
	res := ResolveChildren(nodes, "4")
	if res.ParentFound {
		t.Error("parent should not be found")
	}
	if res.ChildLevel != 1 {
		t.Errorf("child level = %d, want 1 (segment count of the queried path)", res.ChildLevel)
	}
	if len(res.Children) != 0 {
		t.Errorf("got %d children, want 0 (%v)", len(res.Children), paths(res.Nodes()))
	}
}

func TestResolveChildren_ParentMissingResolvesDriftedChildren(t *testing.T) {
	// The depth fallback pays off when the stored levels drifted to the
	// queried path's own depth: those rows confirm structurally.
	nodes := []RuleNode{
		{ID: "c1", Path: "4.1.1", Level: 2},
		{ID: "c2", Path: "4.1.2", Level: 2},
	}
	res := ResolveChildren(nodes, "4.1")
	if res.ParentFound {
		t.Error("parent should not be found")
	}
	if res.ChildLevel != 2 {
		t.Errorf("child level = %d, want 2", res.ChildLevel)
	}
	if len(res.Children) != 2 {
		t.Fatalf("got %d children, want 2 (%v)", len(res.Children), paths(res.Nodes()))
	}
	for _, m := range res.Children {
		if m.Strategy != MatchPathStructure {
			t.Errorf("node %s matched by %s, want path_structure", m.Node.Path, m.Strategy)
		}
	}
}

func TestResolveChildren_DriftedLevels(t *testing.T) {
	// A node whose level is right but whose path is one segment deeper
	// than expected (drifted sibling insertion) is still accepted, via
	// the structural leading-segments check or the prefix fallback.
	nodes := []RuleNode{
		{ID: "p", Path: "5", Level: 1},
		{ID: "deep", Path: "5.a.b", Level: 2},
	}
	res := ResolveChildren(nodes, "5")
	if len(res.Children) != 1 {
		t.Fatalf("drifted node not resolved: %v", paths(res.Nodes()))
	}
	if res.Uncertain {
		t.Error("structural acceptance should not be flagged uncertain")
	}
}

func TestResolveChildren_LenientRecovery(t *testing.T) {
	// Format divergence: the stored child "1.21.c" does not extend
	// "1.2" as a dot-prefix, so every confident strategy misses it.
	// The lenient pass recovers it on first segment + level equality,
	// and flags the whole result uncertain.
	nodes := []RuleNode{
		{ID: "p", Path: "1.2", Level: 2, ParentPath: "1"},
		{ID: "stray", Path: "1.21.c", Level: 3},
	}
	res := ResolveChildren(nodes, "1.2")
	if len(res.Children) != 1 {
		t.Fatalf("lenient pass found %d, want 1 (%v)", len(res.Children), paths(res.Nodes()))
	}
	if !res.Uncertain {
		t.Error("lenient matches must be flagged uncertain")
	}
	if res.Children[0].Strategy != MatchLenient {
		t.Errorf("strategy = %s, want lenient", res.Children[0].Strategy)
	}
}

func TestResolveChildren_NoLenientAcrossSections(t *testing.T) {
	// Different first segment: not even the lenient pass may invent a
	// relationship. Empty is the correct answer.
	nodes := []RuleNode{
		{ID: "p", Path: "6", Level: 1},
		{ID: "odd", Path: "7.1", Level: 2},
	}
	res := ResolveChildren(nodes, "6")
	if len(res.Children) != 0 {
		t.Fatalf("expected no children, got %v", paths(res.Nodes()))
	}
	if res.Uncertain {
		t.Error("an empty result is not uncertain")
	}
}

func TestResolveChildren_EmptySubtreeIsValid(t *testing.T) {
	// "2.1" is a true leaf: nothing below it, and no same-first-segment
	// node at the child level for the lenient pass to latch onto.
	res := ResolveChildren(sampleSection(), "2.1")
	if len(res.Children) != 0 {
		t.Errorf("leaf node returned children: %v", paths(res.Nodes()))
	}
	if res.Uncertain {
		t.Error("an empty leaf is a confident result, not an uncertain one")
	}
}

func TestResolveChildren_LeafWithCousinTriggersLenient(t *testing.T) {
	// "1.2" has no descendants, but cousin "1.1.1" shares the first
	// segment and sits at the child level, so the last-ditch pass
	// surfaces it rather than hiding a possibly mis-pathed row. The
	// uncertain flag is what separates this from a real child list.
	res := ResolveChildren(sampleSection(), "1.2")
	if len(res.Children) != 1 || res.Children[0].Node.Path != "1.1.1" {
		t.Fatalf("children of \"1.2\" = %v, want [1.1.1]", paths(res.Nodes()))
	}
	if res.Children[0].Strategy != MatchLenient {
		t.Errorf("strategy = %s, want lenient", res.Children[0].Strategy)
	}
	if !res.Uncertain {
		t.Error("lenient recovery must be flagged uncertain")
	}
}

func TestListAtLevel(t *testing.T) {
	top := ListAtLevel(sampleSection(), 1)
	if len(top) != 2 || top[0].Path != "1" || top[1].Path != "2" {
		t.Errorf("level-1 nodes = %v, want [1 2]", paths(top))
	}
}

func TestListAtLevel_LexicographicOrder(t *testing.T) {
	nodes := []RuleNode{
		{Path: "2", Level: 1},
		{Path: "10", Level: 1},
		{Path: "1", Level: 1},
	}
	got := ListAtLevel(nodes, 1)
	// Plain text ordering: "10" before "2". Known and preserved.
	if got[0].Path != "1" || got[1].Path != "10" || got[2].Path != "2" {
		t.Errorf("order = %v, want [1 10 2]", paths(got))
	}
}

func TestCountChildren(t *testing.T) {
	nodes := sampleSection()
	if n := CountChildren(nodes, "1", 1); n != 2 {
		t.Errorf("CountChildren(1) = %d, want 2", n)
	}
	if n := CountChildren(nodes, "1.1", 2); n != 1 {
		t.Errorf("CountChildren(1.1) = %d, want 1", n)
	}
	if n := CountChildren(nodes, "1.2", 2); n != 0 {
		t.Errorf("CountChildren(1.2) = %d, want 0", n)
	}
}

func TestSanitizeRuleCode(t *testing.T) {
	tests := []struct {
		in     string
		expect string
	}{
		{"3a", "3a"},
		{"  3a  ", "3a"},
		{"3 a", "3.a"},
		{"3!@#a", "3a"},
		{"3...a", "3.a"},
		{".3a.", "3a"},
		{"a b c", "a.b.c"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeRuleCode(tt.in); got != tt.expect {
			t.Errorf("SanitizeRuleCode(%q) = %q, want %q", tt.in, got, tt.expect)
		}
	}
}

func TestPlaceNode_Child(t *testing.T) {
	anchor := RuleNode{Path: "1.1", Level: 2, ParentPath: "1"}
	p, err := PlaceNode(anchor, InsertChild, "a")
	if err != nil {
		t.Fatalf("PlaceNode error: %v", err)
	}
	if p.Path != "1.1.a" || p.Level != 3 {
		t.Errorf("child placement = %+v, want {1.1.a 3}", p)
	}
}

func TestPlaceNode_Sibling(t *testing.T) {
	// Sibling placement joins the anchor's stored parent_path with the
	// code, even when that stored value is the anchor's own path.
	anchor := RuleNode{Path: "1.2", Level: 2, ParentPath: "1.2"}
	p, err := PlaceNode(anchor, InsertSibling, "x")
	if err != nil {
		t.Fatalf("PlaceNode error: %v", err)
	}
	if p.Path != "1.2.x" || p.Level != 2 {
		t.Errorf("sibling placement = %+v, want {1.2.x 2}", p)
	}

	// Common case: sibling of "1.2" whose parent path is "1".
	anchor = RuleNode{Path: "1.2", Level: 2, ParentPath: "1"}
	p, err = PlaceNode(anchor, InsertSibling, "3")
	if err != nil {
		t.Fatalf("PlaceNode error: %v", err)
	}
	if p.Path != "1.3" || p.Level != 2 {
		t.Errorf("sibling placement = %+v, want {1.3 2}", p)
	}
}

func TestPlaceNode_SiblingOfTopLevel(t *testing.T) {
	anchor := RuleNode{Path: "1", Level: 1, ParentPath: ""}
	p, err := PlaceNode(anchor, InsertSibling, "9")
	if err != nil {
		t.Fatalf("PlaceNode error: %v", err)
	}
	if p.Path != "9" || p.Level != 1 {
		t.Errorf("top-level sibling placement = %+v, want {9 1}", p)
	}
}

func TestPlaceNode_DepthLimit(t *testing.T) {
	anchor := RuleNode{Path: "1.2.3.4", Level: 4, ParentPath: "1.2.3"}
	_, err := PlaceNode(anchor, InsertChild, "5")
	if err == nil {
		t.Fatal("expected validation error at depth 5")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error type = %T, want *ValidationError", err)
	}
}

func TestPlaceNode_EmptyCode(t *testing.T) {
	anchor := RuleNode{Path: "1", Level: 1}
	_, err := PlaceNode(anchor, InsertChild, "!!!")
	if !IsValidation(err) {
		t.Errorf("expected validation error for empty sanitized code, got %v", err)
	}
}

func TestValidatePlacement(t *testing.T) {
	existing := sampleSection()

	if err := ValidatePlacement(existing, "s1", "1.3", 2); err != nil {
		t.Errorf("valid placement rejected: %v", err)
	}

	// Case-insensitive duplicate.
	err := ValidatePlacement([]RuleNode{{Path: "1.A", Level: 2}}, "s1", "1.a", 2)
	if !IsConflict(err) {
		t.Errorf("expected conflict error, got %v", err)
	}

	if err := ValidatePlacement(existing, "s1", "1.3!", 2); !IsValidation(err) {
		t.Errorf("expected validation error for bad charset, got %v", err)
	}
	if err := ValidatePlacement(existing, "s1", "1.2.3.4.5", 5); !IsValidation(err) {
		t.Errorf("expected validation error for level 5, got %v", err)
	}
	if err := ValidatePlacement(existing, "s1", "9", 0); !IsValidation(err) {
		t.Errorf("expected validation error for level 0, got %v", err)
	}

	// Depth/level disagreement is tolerated.
	if err := ValidatePlacement(existing, "s1", "1.9", 3); err != nil {
		t.Errorf("depth mismatch should not block insertion: %v", err)
	}
}

func TestParentPathOf(t *testing.T) {
	tests := []struct {
		in     string
		expect string
	}{
		{"1.2.3", "1.2"},
		{"1.2", "1"},
		{"1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParentPathOf(tt.in); got != tt.expect {
			t.Errorf("ParentPathOf(%q) = %q, want %q", tt.in, got, tt.expect)
		}
	}
}

func paths(nodes []RuleNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Path
	}
	return out
}
