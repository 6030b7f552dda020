package docbuild

import (
	"fmt"

	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/perr"
	"github.com/latticework/contractdiff/internal/resolve"
)

// Builder runs the stack-based nesting algorithm of spec.md §4.4.
type Builder struct{}

// Process builds a Structure from a Document whose lines have already
// been run through resolve.SectionHeaderResolver.
func (Builder) Process(doc *docmodel.Document) (result perr.Result[*Structure]) {
	result = perr.Ok(&Structure{})
	var stack []*Node

	closeNode := func(n *Node, endLine int) {
		if endLine < n.StartLine {
			// The builder's own stack invariant (§4.4: a node is only ever
			// closed at or after the line it opened on) has been violated by
			// the algorithm itself, not by malformed input; this can only
			// follow a logic error in the nesting loop below.
			panic(oopsStackInvariant(n, endLine))
		}
		n.EndLine = endLine
		lastTok := 0
		if endLine >= 0 && endLine < len(doc.Lines) {
			lastTok = doc.Lines[endLine].Len()
		}
		n.ContentSpan.End = docmodel.Position{Line: endLine, Token: lastTok}
	}

	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*perr.ProcessError)
			if !ok {
				panic(r)
			}
			result.Value = &Structure{}
			result.AddError(ie)
		}
	}()

	for lineIdx, line := range doc.Lines {
		headers := line.Find(resolve.AttrSectionHeader)
		if len(headers) == 0 {
			continue
		}
		best := headers[0]
		for _, h := range headers[1:] {
			if h.Value.(resolve.Header).Confidence > best.Value.(resolve.Header).Confidence {
				best = h
			}
		}
		if best.Range.Start > 1 {
			// Admission invariant: mid-line matches never reach the
			// structure, even if the resolver somehow emitted one.
			continue
		}
		header := best.Value.(resolve.Header)
		depth := header.Identifier.Depth()

		disambiguateIAlpha(&header, stack, depth)

		for len(stack) > 0 && stack[len(stack)-1].Depth >= depth {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			closeNode(top, lineIdx-1)
		}

		node := &Node{
			Header:      header,
			StartLine:   lineIdx,
			EndLine:     -1,
			ContentSpan: docmodel.Span{Start: docmodel.Position{Line: lineIdx, Token: 0}},
			Depth:       depth,
		}

		if len(stack) == 0 {
			if depth > topLevelDepth(result.Value.Sections) && len(result.Value.Sections) > 0 {
				// A child-depth header with no open parent: spec.md §4.4
				// edge case — it becomes a top-level sibling and a warning
				// is emitted, rather than silently nesting under nothing.
				result.AddWarning(fmt.Sprintf(
					"line %d: header %q appeared before any parent at its nesting level; treated as top-level",
					doc.SourceLine(lineIdx), header.RawText))
			}
			result.Value.Sections = append(result.Value.Sections, node)
		} else {
			parent := stack[len(stack)-1]
			if node.StartLine <= parent.StartLine {
				result.AddError(perr.AmbiguousNesting(doc.SourceLine(lineIdx), []string{header.Identifier.Canonical(), parent.Header.Identifier.Canonical()}))
			}
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}

	lastLine := len(doc.Lines) - 1
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		closeNode(top, lastLine)
	}
	return result
}

// oopsStackInvariant builds the InternalError raised when closeNode is
// asked to close a node at a line before the one it opened on.
func oopsStackInvariant(n *Node, endLine int) *perr.ProcessError {
	return perr.Internal("docbuild.Builder.Process", "section closed before its own start line",
		"canonical_id", n.Header.Identifier.Canonical(), "start_line", n.StartLine, "end_line", endLine)
}

// topLevelDepth reports the depth of existing top-level sections, used
// only to decide whether a warning is worth emitting for the first-ever
// header (which is always legitimately top-level).
func topLevelDepth(sections []*Node) int {
	if len(sections) == 0 {
		return 0
	}
	return sections[0].Depth
}

// disambiguateIAlpha implements spec.md §4.4's local "(i)" disambiguation:
// a Roman value-1 header is reinterpreted as Alpha('i') when the open
// stack's current innermost sibling sequence last admitted Alpha('h') at
// the same depth.
func disambiguateIAlpha(header *resolve.Header, stack []*Node, depth int) {
	if header.Identifier.Form != resolve.FormRoman || header.Identifier.RomanValue != 1 {
		return
	}
	if len(stack) == 0 {
		return
	}
	parent := stack[len(stack)-1]
	if len(parent.Children) == 0 {
		return
	}
	last := parent.Children[len(parent.Children)-1]
	if last.Depth != depth {
		return
	}
	if last.Header.Identifier.Form == resolve.FormAlpha && last.Header.Identifier.Letter == 'h' {
		header.Identifier = resolve.Identifier{Form: resolve.FormAlpha, Letter: 'i', Parenthesized: true}
	}
}
