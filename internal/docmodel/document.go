// Package docmodel implements ContractDocument: the tokenized multi-line
// document plus the index that maps filtered, in-memory line numbers back
// to 1-based source line numbers.
package docmodel

import (
	"strings"

	"github.com/latticework/contractdiff/internal/llline"
)

// Position identifies a token inside a multi-line document.
type Position struct {
	Line  int
	Token int
}

// Span is a half-open cross-line range within a document.
type Span struct {
	Start Position
	End   Position
}

// Document is an ordered set of tokenized, non-empty lines plus the
// mapping from internal (post-filter) line index to 1-based source line
// number, and the original text. Document is immutable after
// construction; processors read it but never mutate it.
type Document struct {
	Lines        []*llline.Line
	LineToSource []int // len(Lines); 1-based source line number per entry
	Original     string
}

// Build tokenizes text into a Document, filtering empty lines but
// recording their source line numbers so a host can still display
// correct line numbers for any internal line index.
func Build(text string) *Document {
	raw := strings.Split(text, "\n")
	doc := &Document{Original: text}
	for i, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		doc.Lines = append(doc.Lines, llline.Tokenize(l))
		doc.LineToSource = append(doc.LineToSource, i+1)
	}
	return doc
}

// SourceLine returns the 1-based original source line number for an
// internal line index.
func (d *Document) SourceLine(internalIdx int) int {
	if internalIdx < 0 || internalIdx >= len(d.LineToSource) {
		return 0
	}
	return d.LineToSource[internalIdx]
}

// TextOf joins the tokens covered by a Span with single spaces across
// lines, never concatenating adjacent tokens without a separator.
func (d *Document) TextOf(s Span) string {
	if s.Start.Line < 0 || s.End.Line >= len(d.Lines) || s.Start.Line > s.End.Line {
		return ""
	}
	var parts []string
	for li := s.Start.Line; li <= s.End.Line; li++ {
		line := d.Lines[li]
		start := 0
		end := line.Len()
		if li == s.Start.Line {
			start = s.Start.Token
		}
		if li == s.End.Line {
			end = s.End.Token
		}
		text := line.TextOf(llline.Range{Start: start, End: end})
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
