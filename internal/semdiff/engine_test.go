package semdiff

import (
	"testing"

	"github.com/latticework/contractdiff/internal/align"
	"github.com/latticework/contractdiff/internal/docbuild"
	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/llline"
	"github.com/latticework/contractdiff/internal/resolve"
)

// TestModalChangePartyImpactCount implements spec.md §8.6: a modal
// transition produces exactly one PartyImpact when no beneficiary was
// extracted, and two when a beneficiary is present (for the transitions
// that affect both parties).
func TestModalChangePartyImpactCount(t *testing.T) {
	e := NewEngine()
	pair := align.Pair{Original: []align.SectionRef{{CanonicalID: "4.1"}}}

	withoutBeneficiary := resolve.Obligation{
		Obligor: resolve.ObligorReference{Text: "Company", Normalized: "company"},
		Type:    resolve.ObligationDuty,
	}
	revised := resolve.Obligation{Type: resolve.ObligationPermission}
	c := e.modalChange(withoutBeneficiary, revised, 0.9, pair)
	if len(c.PartyImpacts) != 1 {
		t.Fatalf("no beneficiary: want exactly 1 party impact, got %d (%+v)", len(c.PartyImpacts), c.PartyImpacts)
	}

	beneficiary := &resolve.BeneficiaryRef{Text: "Customer", Normalized: "customer"}
	withBeneficiary := resolve.Obligation{
		Obligor:     resolve.ObligorReference{Text: "Company", Normalized: "company"},
		Type:        resolve.ObligationDuty,
		Beneficiary: beneficiary,
	}
	c2 := e.modalChange(withBeneficiary, revised, 0.9, pair)
	if len(c2.PartyImpacts) != 2 {
		t.Fatalf("with beneficiary: want exactly 2 party impacts, got %d (%+v)", len(c2.PartyImpacts), c2.PartyImpacts)
	}
}

// TestModalChangeDutyToPermissionIsCritical implements the risk table
// entry of spec.md §4.6.2 and the modal-weakening literal scenario of
// §8.7 ("shall" softened to "may"): Duty -> Permission is Critical and
// favorable to the obligor.
func TestModalChangeDutyToPermissionIsCritical(t *testing.T) {
	e := NewEngine()
	pair := align.Pair{Original: []align.SectionRef{{CanonicalID: "4.1"}}}
	o := resolve.Obligation{Obligor: resolve.ObligorReference{Text: "Company"}, Type: resolve.ObligationDuty}
	r := resolve.Obligation{Type: resolve.ObligationPermission}
	c := e.modalChange(o, r, 0.9, pair)
	if c.Risk != RiskCritical {
		t.Errorf("Duty->Permission: risk = %v, want Critical", c.Risk)
	}
	if len(c.PartyImpacts) == 0 || c.PartyImpacts[0].Direction != Favorable {
		t.Errorf("Duty->Permission: want obligor impact Favorable, got %+v", c.PartyImpacts)
	}
}

// TestTemporalNoCrossProduct implements spec.md §8.6: matching a set of
// original deadlines against a set of revised deadlines must never
// produce a cross-product of changes; each original matches at most one
// revised value.
func TestTemporalNoCrossProduct(t *testing.T) {
	e := NewEngine()

	docA := docmodel.Build("Notice shall be given within 30 days.\nNotice shall be given within 60 days.")
	docA.Lines[0].Add(resolve.AttrTemporal, llline.Range{Start: 0, End: 1}, resolve.Temporal{
		Kind: resolve.TemporalDuration, Unit: resolve.UnitDays, Value: 30, Raw: "30 days", Confidence: 0.9,
	})
	docA.Lines[1].Add(resolve.AttrTemporal, llline.Range{Start: 0, End: 1}, resolve.Temporal{
		Kind: resolve.TemporalDuration, Unit: resolve.UnitDays, Value: 60, Raw: "60 days", Confidence: 0.9,
	})
	nodeA := &docbuild.Node{StartLine: 0, EndLine: 1}
	byStartA := map[int]*docbuild.Node{0: nodeA}

	docB := docmodel.Build("Notice shall be given within 45 days.")
	docB.Lines[0].Add(resolve.AttrTemporal, llline.Range{Start: 0, End: 1}, resolve.Temporal{
		Kind: resolve.TemporalDuration, Unit: resolve.UnitDays, Value: 45, Raw: "45 days", Confidence: 0.9,
	})
	nodeB := &docbuild.Node{StartLine: 0, EndLine: 0}
	byStartB := map[int]*docbuild.Node{0: nodeB}

	pair := align.Pair{
		Original:   []align.SectionRef{{CanonicalID: "5.1", StartLine: 0}},
		Revised:    []align.SectionRef{{CanonicalID: "5.1", StartLine: 0}},
		Confidence: 0.9,
	}

	changes := e.compareTemporal(docA, docB, byStartA, byStartB, pair, DefaultConfig())
	if len(changes) != 1 {
		t.Fatalf("want exactly 1 temporal change matching the closest original value, got %d", len(changes))
	}
	if changes[0].TemporalTo != "45 days" {
		t.Errorf("want the match to report the revised value 45 days, got %q", changes[0].TemporalTo)
	}
}

// TestTermDefinitionBlastRadiusExactness implements spec.md §8.6 and the
// term-redefinition literal scenario of §8.7: a TermDefinition change's
// blast_radius must name exactly the positions of every TermReference to
// that name in the revised document, no more and no fewer.
func TestTermDefinitionBlastRadiusExactness(t *testing.T) {
	e := NewEngine()

	docA := docmodel.Build("\"Confidential Information\" means data marked private.")
	docA.Lines[0].Add(resolve.AttrDefinedTerm, llline.Range{Start: 0, End: 2}, resolve.DefinedTerm{
		Name: "Confidential Information", NormalizedName: "confidential information",
		Definition: "data marked private", Confidence: 0.9,
	})

	docB := docmodel.Build("\"Confidential Information\" means any data disclosed under this agreement.\nThe Company shall protect Confidential Information.\nA vendor may review Confidential Information upon request.")
	docB.Lines[0].Add(resolve.AttrDefinedTerm, llline.Range{Start: 0, End: 2}, resolve.DefinedTerm{
		Name: "Confidential Information", NormalizedName: "confidential information",
		Definition: "any data disclosed under this agreement", Confidence: 0.9,
	})
	docB.Lines[1].Add(resolve.AttrTermReference, llline.Range{Start: 3, End: 5}, resolve.TermReference{
		Name: "Confidential Information", NormalizedName: "confidential information", Confidence: 0.9,
	})
	docB.Lines[2].Add(resolve.AttrTermReference, llline.Range{Start: 3, End: 5}, resolve.TermReference{
		Name: "Confidential Information", NormalizedName: "confidential information", Confidence: 0.9,
	})

	changes := e.computeTermDefinitionChanges(docA, docB, DefaultConfig())
	if len(changes) != 1 {
		t.Fatalf("want exactly 1 term definition change, got %d", len(changes))
	}
	blast := changes[0].BlastRadius
	if len(blast) != 2 {
		t.Fatalf("want blast_radius of exactly 2 references, got %d (%+v)", len(blast), blast)
	}
	wantLines := map[int]bool{1: true, 2: true}
	for _, pos := range blast {
		if !wantLines[pos.Line] {
			t.Errorf("unexpected blast_radius position on line %d", pos.Line)
		}
	}
}
