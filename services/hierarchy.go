package services

import (
	"log"
	"regexp"
	"sort"
	"strings"
)

// MaxRuleDepth is the deepest nesting the NRM2 classification allows.
const MaxRuleDepth = 4

// RuleNode is one NRM2 classification entry. The dot-delimited Path is
// the single source of truth for hierarchy; Level is derived and kept
// for fast filtering, and ParentPath is a denormalized convenience that
// may be blank or stale on hand-edited data. The resolver tolerates
// both kinds of drift.
type RuleNode struct {
	ID         string
	SectionID  string
	Path       string
	Level      int
	ParentPath string
	Content    string
	Unit       string
}

// MatchStrategy identifies which rung of the resolver's fallback chain
// accepted a child node. Anything past MatchParentPath signals
// hierarchy drift worth surfacing in diagnostics.
type MatchStrategy int

const (
	// MatchParentPath: the node's own parent_path equals the queried
	// parent path. Authoritative.
	MatchParentPath MatchStrategy = iota
	// MatchPathStructure: the node's path with its last segment
	// stripped equals the parent path.
	MatchPathStructure
	// MatchPrefixLevel: accepted purely on path prefix + level.
	MatchPrefixLevel
	// MatchLenient: last-ditch recovery on first path segment + level
	// equality only. Results are flagged uncertain.
	MatchLenient
)

func (s MatchStrategy) String() string {
	switch s {
	case MatchParentPath:
		return "parent_path"
	case MatchPathStructure:
		return "path_structure"
	case MatchPrefixLevel:
		return "prefix_level"
	case MatchLenient:
		return "lenient"
	}
	return "unknown"
}

// ChildMatch pairs a resolved child with the strategy that accepted it.
type ChildMatch struct {
	Node     RuleNode
	Strategy MatchStrategy
}

// ChildResolution is the outcome of ResolveChildren. A zero-child
// resolution is a valid leaf state, never an error. Uncertain is set
// when only the lenient first-segment recovery produced matches.
type ChildResolution struct {
	Children    []ChildMatch
	ChildLevel  int
	ParentFound bool
	Uncertain   bool
}

// Nodes returns just the resolved child nodes, in resolution order.
func (r ChildResolution) Nodes() []RuleNode {
	nodes := make([]RuleNode, 0, len(r.Children))
	for _, m := range r.Children {
		nodes = append(nodes, m.Node)
	}
	return nodes
}

// ResolveChildren finds the immediate children of parentPath within a
// section's full node set. Comparisons are case-insensitive on trimmed
// paths; stored casing is preserved in results.
//
// The expected child level comes from the parent node's stored level
// when the parent can be located, else from the parent path's segment
// count (drift from ad-hoc sibling insertion means the two can
// disagree). Candidates at that level are then accepted by the first
// strategy that confirms them: the node's own parent_path field, then
// path structure, then bare prefix+level. If nothing matches at all, a
// lenient pass on first-segment+level runs as last-ditch recovery and
// the whole result is flagged uncertain.
func ResolveChildren(nodes []RuleNode, parentPath string) ChildResolution {
	parent := strings.TrimSpace(parentPath)
	parentLower := strings.ToLower(parent)

	res := ChildResolution{}

	// Locate the parent node to learn the expected child level.
	for _, n := range nodes {
		if strings.ToLower(strings.TrimSpace(n.Path)) == parentLower {
			res.ParentFound = true
			res.ChildLevel = n.Level + 1
			break
		}
	}
	if !res.ParentFound {
		res.ChildLevel = len(splitPath(parent))
		log.Printf("hierarchy: parent %q not found, using path depth %d as child level", parent, res.ChildLevel)
	}

	prefixLower := parentLower + "."
	parentSegs := splitPath(parent)

	var candidates []RuleNode
	for _, n := range nodes {
		if n.Level != res.ChildLevel {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(n.Path)), prefixLower) {
			continue
		}
		candidates = append(candidates, n)
	}

	for _, n := range candidates {
		nodePath := strings.TrimSpace(n.Path)
		nodeSegs := splitPath(nodePath)

		// Authoritative when the denormalized field is present and agrees.
		if np := strings.ToLower(strings.TrimSpace(n.ParentPath)); np != "" && np == parentLower {
			res.Children = append(res.Children, ChildMatch{Node: n, Strategy: MatchParentPath})
			continue
		}

		// Structural confirmation: stripping the last segment yields the
		// parent, or the leading segments match and the depth is sane.
		withoutLast := strings.ToLower(joinPath(nodeSegs[:len(nodeSegs)-1]))
		leading := ""
		if len(nodeSegs) >= len(parentSegs) {
			leading = strings.ToLower(joinPath(nodeSegs[:len(parentSegs)]))
		}
		depthOK := len(nodeSegs) == len(parentSegs)+1 || len(nodeSegs) == len(parentSegs)+2
		if (withoutLast == parentLower || leading == parentLower) && depthOK {
			res.Children = append(res.Children, ChildMatch{Node: n, Strategy: MatchPathStructure})
			continue
		}

		// Prefix + level already held to get here; accept, but flag the
		// drift in diagnostics.
		log.Printf("hierarchy: accepted %q as child of %q by prefix+level fallback (level %d)", nodePath, parent, n.Level)
		res.Children = append(res.Children, ChildMatch{Node: n, Strategy: MatchPrefixLevel})
	}

	if len(res.Children) > 0 {
		sortMatchesByPath(res.Children)
		return res
	}

	// Lenient recovery: first segment + level only. Catches case or
	// format divergence between the stored paths and the query.
	firstSeg := ""
	if len(parentSegs) > 0 {
		firstSeg = strings.ToLower(parentSegs[0])
	}
	for _, n := range nodes {
		if n.Level != res.ChildLevel {
			continue
		}
		segs := splitPath(strings.TrimSpace(n.Path))
		if len(segs) == res.ChildLevel && len(segs) > 0 && strings.ToLower(segs[0]) == firstSeg {
			res.Children = append(res.Children, ChildMatch{Node: n, Strategy: MatchLenient})
		}
	}
	if len(res.Children) > 0 {
		res.Uncertain = true
		sortMatchesByPath(res.Children)
		log.Printf("hierarchy: no confident children of %q, returning %d lenient matches", parent, len(res.Children))
	}
	return res
}

// ListAtLevel returns the section nodes at exactly the given level,
// ordered by path. The order is plain lexicographic on the path text,
// so "10" sorts before "2"; that matches how the classification has
// always been browsed and is deliberately left alone.
func ListAtLevel(nodes []RuleNode, level int) []RuleNode {
	var out []RuleNode
	for _, n := range nodes {
		if n.Level == level {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// CountChildren returns how many nodes sit one level below path with it
// as a dot-prefix. Drives the expand affordance in the rule browser.
func CountChildren(nodes []RuleNode, path string, level int) int {
	prefix := strings.ToLower(strings.TrimSpace(path)) + "."
	count := 0
	for _, n := range nodes {
		if n.Level == level+1 && strings.HasPrefix(strings.ToLower(strings.TrimSpace(n.Path)), prefix) {
			count++
		}
	}
	return count
}

var invalidPathChars = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// ValidPathPattern matches a storable rule path: alphanumeric segments
// joined by single dots.
var ValidPathPattern = regexp.MustCompile(`^[a-zA-Z0-9]+(\.[a-zA-Z0-9]+)*$`)

// SanitizeRuleCode normalizes a user-typed rule code: whitespace runs
// become dots, anything outside [a-zA-Z0-9.] is dropped, repeated dots
// collapse, and leading/trailing dots are trimmed. An empty result
// means the code had no usable characters.
func SanitizeRuleCode(code string) string {
	s := strings.Join(strings.Fields(strings.TrimSpace(code)), ".")
	s = invalidPathChars.ReplaceAllString(s, "")
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	return strings.Trim(s, ".")
}

// InsertMode selects where a new node lands relative to its anchor.
type InsertMode int

const (
	InsertChild InsertMode = iota
	InsertSibling
)

// Placement is the computed position for a new rule node.
type Placement struct {
	Path  string
	Level int
}

// PlaceNode computes the path and level for a new node inserted as a
// child or sibling of anchor. Child: anchor.path + "." + code at
// anchor.level+1. Sibling: anchor.parentPath + "." + code (or bare code
// for a top-level anchor) at anchor.level.
//
// A level that disagrees with the computed path's depth is logged as a
// warning but does not block the placement; the tree view makes the
// drift visible and the resolver tolerates it on read.
func PlaceNode(anchor RuleNode, mode InsertMode, code string) (Placement, error) {
	clean := SanitizeRuleCode(code)
	if clean == "" {
		return Placement{}, &ValidationError{Field: "code", Reason: "must contain at least one alphanumeric character"}
	}

	var basePath string
	var level int
	switch mode {
	case InsertSibling:
		basePath = strings.TrimSpace(anchor.ParentPath)
		level = anchor.Level
	default:
		basePath = strings.TrimSpace(anchor.Path)
		level = anchor.Level + 1
	}

	path := clean
	if basePath != "" {
		path = basePath + "." + clean
	}

	if level > MaxRuleDepth {
		return Placement{}, &ValidationError{Field: "level", Reason: "maximum hierarchy depth is 4 levels"}
	}
	if level < 1 {
		return Placement{}, &ValidationError{Field: "level", Reason: "computed level is below 1"}
	}

	if depth := len(splitPath(path)); depth != level {
		log.Printf("hierarchy: level %d does not match path depth %d for %q (non-blocking)", level, depth, path)
	}

	return Placement{Path: path, Level: level}, nil
}

// ValidatePlacement checks a path/level pair against a section's
// existing nodes before insertion: path charset, level range, and
// case-insensitive path uniqueness. A depth/level mismatch is logged,
// not rejected -- availability over strict consistency, the CMS tree
// view surfaces the drift.
func ValidatePlacement(existing []RuleNode, sectionID, path string, level int) error {
	if !ValidPathPattern.MatchString(path) {
		return &ValidationError{Field: "path", Reason: "must contain only alphanumeric characters and dots"}
	}
	if level < 1 || level > MaxRuleDepth {
		return &ValidationError{Field: "level", Reason: "must be between 1 and 4"}
	}

	pathLower := strings.ToLower(path)
	for _, n := range existing {
		if strings.ToLower(strings.TrimSpace(n.Path)) == pathLower {
			return &ConflictError{Path: path, SectionID: sectionID}
		}
	}

	if depth := len(splitPath(path)); depth != level {
		log.Printf("hierarchy: inserting %q with level %d but path depth %d (non-blocking)", path, level, depth)
	}
	return nil
}

// ParentPathOf strips the last segment from a path. Top-level paths
// yield "".
func ParentPathOf(path string) string {
	segs := splitPath(strings.TrimSpace(path))
	if len(segs) <= 1 {
		return ""
	}
	return joinPath(segs[:len(segs)-1])
}

// PathDepth counts the dot-separated segments in a path.
func PathDepth(path string) int {
	return len(splitPath(strings.TrimSpace(path)))
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	var segs []string
	for _, s := range strings.Split(path, ".") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func joinPath(segs []string) string {
	return strings.Join(segs, ".")
}

func sortMatchesByPath(matches []ChildMatch) {
	sort.Slice(matches, func(i, j int) bool { return matches[i].Node.Path < matches[j].Node.Path })
}
