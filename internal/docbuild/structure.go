// Package docbuild implements the Document Structure Builder (spec.md
// §4.4): it turns an augmented document (one carrying resolve.Header
// attributes) into a hierarchical section tree, following the
// stack-of-open-sections algorithm the teacher's pkg/extract/parser.go
// uses to nest Chapter/Section/Article/Paragraph, generalized from that
// fixed four-level hierarchy to the depth-ordered, open-ended nesting
// spec.md §3 requires.
package docbuild

import (
	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/resolve"
)

// Node is a SectionNode: a header plus its content span and children.
type Node struct {
	Header      resolve.Header
	StartLine   int
	EndLine     int // -1 while open
	ContentSpan docmodel.Span
	Children    []*Node
	Depth       int
}

// Structure is the DocumentStructure: the forest of top-level Nodes.
type Structure struct {
	Sections []*Node
}

// Flatten returns every node in the tree, pre-order, for O(1) iteration
// without re-walking the tree at each call site (spec.md §4.3 calls for
// the linker to "pre-flatten the structure once").
func (s *Structure) Flatten() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range s.Sections {
		walk(n)
	}
	return out
}
