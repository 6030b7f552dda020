package docbuild

import (
	"testing"

	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/llline"
	"github.com/latticework/contractdiff/internal/perr"
	"github.com/latticework/contractdiff/internal/resolve"
)

// TestHeaderBoundaryInvariant implements spec.md §8.3: a header attribute
// whose first token index is > 1 must never be admitted into the
// structure, even if a resolver somehow emitted one.
func TestHeaderBoundaryInvariant(t *testing.T) {
	doc := docmodel.Build("Some preamble text Section 9 Fake Header\nSection 1: Real Header")
	line := doc.Lines[0]
	// Simulate a resolver mistake: a header attribute starting at token
	// index 4 (well past the admission boundary).
	line.Add(resolve.AttrSectionHeader, llline.Range{Start: 4, End: 6}, resolve.Header{
		Identifier: resolve.Identifier{Form: resolve.FormNumeric, Parts: []int{9}},
		Title:      "Fake Header", RawText: "Section 9 Fake Header", Confidence: 0.9,
	})

	p := resolve.Pipeline{Lines: doc.Lines[1:]}
	p.Standard()

	result := Builder{}.Process(doc)
	for _, n := range result.Value.Flatten() {
		if n.Header.Identifier.Canonical() == "9" {
			t.Fatalf("mid-line header match was admitted into the structure: %+v", n)
		}
	}
}

func TestBuilderNesting(t *testing.T) {
	doc := docmodel.Build("Article I: Definitions\nSection 1.1: Scope\nSection 1.2: Exceptions\nArticle II: Obligations\nSection 2.1: Payment")
	p := resolve.Pipeline{Lines: doc.Lines}
	p.Standard()

	result := Builder{}.Process(doc)
	if len(result.Value.Sections) != 2 {
		t.Fatalf("want 2 top-level sections, got %d", len(result.Value.Sections))
	}
	if len(result.Value.Sections[0].Children) != 2 {
		t.Fatalf("want Article I to have 2 children, got %d", len(result.Value.Sections[0].Children))
	}
	if len(result.Value.Sections[1].Children) != 1 {
		t.Fatalf("want Article II to have 1 child, got %d", len(result.Value.Sections[1].Children))
	}
}

// TestCloseNodeInvariantPanicIsRecoveredAsInternalError covers spec.md
// §7's InternalError path: the error built for a violation of the
// builder's own stack invariant (a node only ever closes at or after the
// line it opened on) carries CodeInternalError, and a panic carrying it
// can be recovered as a *perr.ProcessError into a perr.Result's errors.
// The test does not drive Process itself.
func TestCloseNodeInvariantPanicIsRecoveredAsInternalError(t *testing.T) {
	n := &Node{
		Header:    resolve.Header{Identifier: resolve.Identifier{Form: resolve.FormNumeric, Parts: []int{3}}},
		StartLine: 5,
	}
	ie := oopsStackInvariant(n, 2)
	if ie.Code != perr.CodeInternalError {
		t.Fatalf("want CodeInternalError, got %v", ie.Code)
	}

	var result perr.Result[*Structure]
	func() {
		defer func() {
			if r := recover(); r != nil {
				got, ok := r.(*perr.ProcessError)
				if !ok {
					t.Fatalf("want a recovered *perr.ProcessError, got %T", r)
				}
				result.AddError(got)
			}
		}()
		panic(ie)
	}()
	if !result.HasErrors() || result.Errors[0].Code != perr.CodeInternalError {
		t.Fatalf("want the panic recovered as an InternalError, got %+v", result.Errors)
	}
}
