package align

import (
	"testing"

	"github.com/latticework/contractdiff/internal/docbuild"
	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/resolve"
)

// TestUnmatchedConfidenceRespected implements spec.md §8.5: Deleted and
// Inserted pairs produced from leftover sections carry the configured
// unmatched_confidence, not some other derived value.
func TestUnmatchedConfidenceRespected(t *testing.T) {
	cfg := DefaultSimilarityConfig()
	cfg.UnmatchedConfidence = 0.42
	a := &DocumentAligner{Config: cfg}

	docA := docmodel.Build("Section 9: Orphaned\nThe Company shall vacate the premises.")
	docB := docmodel.Build("Section 10: Novel\nThe Customer may inspect the premises.")
	structA := buildStructure(t, docA)
	structB := buildStructure(t, docB)

	result := a.Align(docA, docB, structA, structB, nil)

	sawUnmatched := false
	for _, p := range result.Pairs {
		if p.Type == Deleted || p.Type == Inserted {
			sawUnmatched = true
			if p.Confidence != 0.42 {
				t.Errorf("pair %+v: confidence = %v, want configured unmatched_confidence 0.42", p, p.Confidence)
			}
			if len(p.Signals) != 1 || p.Signals[0].Name != "no_match_found" {
				t.Errorf("pair %+v: want a single no_match_found signal, got %+v", p, p.Signals)
			}
		}
	}
	if !sawUnmatched {
		t.Fatal("want at least one Deleted or Inserted pair from two wholly unrelated sections")
	}
}

// TestAdjustConfidenceClamped implements spec.md §8.5: AdjustConfidence
// hints must never push a candidate's confidence outside [0, 1].
func TestAdjustConfidenceClamped(t *testing.T) {
	a := &DocumentAligner{Config: DefaultSimilarityConfig()}
	cand := Candidates{
		Candidates: []Candidate{
			{ID: "cand_1", ProposedType: Modified, Confidence: 0.9},
			{ID: "cand_2", ProposedType: Modified, Confidence: 0.1},
		},
	}
	hints := []Hint{
		{CandidateID: "cand_1", Type: HintAdjustConfidence, Delta: 0.5},
		{CandidateID: "cand_2", Type: HintAdjustConfidence, Delta: -0.5},
	}
	out := a.ApplyHints(cand, hints)
	for _, c := range out.Candidates {
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Errorf("candidate %s: confidence %v out of [0,1] range", c.ID, c.Confidence)
		}
	}
}

// TestForceNoMatchProducesOneDeletedOneInserted implements spec.md §8.5:
// a ForceNoMatch hint on a 1:1 candidate must result in exactly one
// Deleted pair and one Inserted pair once the candidate set is committed.
func TestForceNoMatchProducesOneDeletedOneInserted(t *testing.T) {
	a := &DocumentAligner{Config: DefaultSimilarityConfig()}

	// Different canonical id and title (so Pass 1/2 skip it) but near
	// identical body text (so Pass 3 proposes it as a 1:1 Moved candidate).
	docA := docmodel.Build("Section 4: Termination\nThe Company may terminate this agreement upon notice.")
	docB := docmodel.Build("Section 9: Cancellation\nThe Company may terminate this agreement upon notice.")
	structA := buildStructure(t, docA)
	structB := buildStructure(t, docB)

	cand := a.ComputeCandidates(docA, docB, structA, structB)
	if len(cand.Candidates) != 1 {
		t.Fatalf("setup: want exactly 1 Pass-3 candidate, got %d: %+v", len(cand.Candidates), cand.Candidates)
	}
	id := cand.Candidates[0].ID

	result := a.Align(docA, docB, structA, structB, []Hint{{CandidateID: id, Type: HintForceNoMatch}})

	deleted, inserted := 0, 0
	for _, p := range result.Pairs {
		switch p.Type {
		case Deleted:
			deleted++
		case Inserted:
			inserted++
		}
	}
	if deleted != 1 || inserted != 1 {
		t.Fatalf("want exactly 1 Deleted and 1 Inserted pair, got %d Deleted, %d Inserted (pairs: %+v)", deleted, inserted, result.Pairs)
	}
}

func buildStructure(t *testing.T, doc *docmodel.Document) *docbuild.Structure {
	t.Helper()
	p := resolve.Pipeline{Lines: doc.Lines}
	p.Standard()
	sr := docbuild.Builder{}.Process(doc)
	return sr.Value
}

// TestDetectSplitMerge implements the split literal scenario of spec.md
// §8.7: one original section whose content is fully covered by two
// remaining revised sections combined is classified Split, with
// len(original) == 1, len(revised) == 2, and a combined similarity at or
// above split_merge_accept_threshold.
func TestDetectSplitMerge(t *testing.T) {
	cfg := DefaultSimilarityConfig()
	a := &DocumentAligner{Config: cfg}

	docA := docmodel.Build("contractor vendor license royalty discount warranty remedy penalty waiver.")
	nodeOrig := &docbuild.Node{StartLine: 0, EndLine: 0}

	docB := docmodel.Build("contractor vendor license royalty discount.\nwarranty remedy penalty waiver.")
	nodeRev1 := &docbuild.Node{StartLine: 0, EndLine: 0}
	nodeRev2 := &docbuild.Node{StartLine: 1, EndLine: 1}

	usedOrig := make(map[*docbuild.Node]bool)
	usedRev := make(map[*docbuild.Node]bool)
	nextID := 1

	cands := a.detectSplitMerge(docA, docB, []*docbuild.Node{nodeOrig}, []*docbuild.Node{nodeRev1, nodeRev2}, usedOrig, usedRev, &nextID)

	if len(cands) != 1 {
		t.Fatalf("want exactly 1 split candidate, got %d", len(cands))
	}
	c := cands[0]
	if c.ProposedType != Split {
		t.Fatalf("want ProposedType Split, got %v", c.ProposedType)
	}
	if len(c.Original) != 1 || len(c.Revised) != 2 {
		t.Fatalf("want 1 original section and 2 revised sections, got %d/%d", len(c.Original), len(c.Revised))
	}
	if c.Confidence < cfg.SplitMergeAcceptThreshold {
		t.Fatalf("combined similarity %v below split_merge_accept_threshold %v", c.Confidence, cfg.SplitMergeAcceptThreshold)
	}
	if !usedOrig[nodeOrig] || !usedRev[nodeRev1] || !usedRev[nodeRev2] {
		t.Fatal("want all three sections marked used once grouped into the split candidate")
	}
}
