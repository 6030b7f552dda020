package link

import (
	"testing"

	"github.com/latticework/contractdiff/internal/docbuild"
	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/resolve"
)

func buildAndLink(t *testing.T, text string) (*docmodel.Document, *docbuild.Structure, Result) {
	t.Helper()
	doc := docmodel.Build(text)
	p := resolve.Pipeline{Lines: doc.Lines}
	p.Standard()
	sr := docbuild.Builder{}.Process(doc)
	res, _ := Linker{}.Link(doc, sr.Value)
	return doc, sr.Value, res
}

// TestResolvedReferencesExistInStructure implements spec.md §8.4: every
// Resolved reference's canonical id must name a section that actually
// exists in the document structure.
func TestResolvedReferencesExistInStructure(t *testing.T) {
	_, structure, res := buildAndLink(t, "Section 6.1: Indemnification\nThe Company shall act pursuant to Section 6.1.")
	byCanon := make(map[string]bool)
	for _, n := range structure.Flatten() {
		byCanon[n.Header.Identifier.Canonical()] = true
	}
	found := false
	for _, l := range res.References {
		if l.Resolution.Status != StatusResolved {
			continue
		}
		found = true
		if !byCanon[l.Resolution.Canonical] {
			t.Errorf("resolved reference %q names a section not present in the structure", l.Resolution.Canonical)
		}
	}
	if !found {
		t.Fatal("expected at least one resolved reference")
	}
}

// TestDanglingReferenceIsUnresolved implements spec.md §8.4/Scenario E: a
// reference into a section that does not exist resolves as Unresolved
// and produces a DanglingReference ProcessError.
func TestDanglingReferenceIsUnresolved(t *testing.T) {
	_, _, res := buildAndLink(t, "Section 6.1: Payment\nPayment is due pursuant to Section 8.3.")
	found := false
	for _, l := range res.References {
		if l.Reference.Target != nil && l.Reference.Target.Canonical() == "SECTION:8.3" {
			found = true
			if l.Resolution.Status != StatusUnresolved {
				t.Errorf("reference to nonexistent Section 8.3: got status %v, want Unresolved", l.Resolution.Status)
			}
		}
	}
	if !found {
		t.Fatal("expected a reference to Section 8.3 to be detected")
	}
}
