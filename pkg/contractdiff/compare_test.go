package contractdiff

import (
	"testing"

	"github.com/latticework/contractdiff/internal/align"
	"github.com/latticework/contractdiff/internal/config"
	"github.com/latticework/contractdiff/internal/semdiff"
)

// TestScenarioIdentity implements the identity literal scenario of
// spec.md §8.7: comparing a document against itself produces zero
// semantic changes, and every section pair is an ExactMatch at
// confidence 1.0.
func TestScenarioIdentity(t *testing.T) {
	text := "Section 1: Confidentiality\nThe Company shall protect Confidential Information."
	result, errs := Compare(text, text, config.DefaultProfile())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if result.Diff.Summary.Total != 0 {
		t.Fatalf("want 0 semantic changes for an identical document, got %d: %+v", result.Diff.Summary.Total, result.Diff.Changes)
	}
	if len(result.Alignment.Pairs) != 1 {
		t.Fatalf("want exactly 1 alignment pair, got %d", len(result.Alignment.Pairs))
	}
	pair := result.Alignment.Pairs[0]
	if pair.Type != align.ExactMatch {
		t.Fatalf("want ExactMatch, got %v", pair.Type)
	}
	const eps = 1e-9
	if d := pair.Confidence - 1.0; d > eps || d < -eps {
		t.Fatalf("want confidence ~1.0, got %v", pair.Confidence)
	}
}

// TestScenarioRenumbering implements the renumbering literal scenario of
// spec.md §8.7: a section kept word-for-word but renumbered aligns as
// Renumbered at high confidence, with zero semantic changes and a token
// alignment that is nearly entirely matched.
func TestScenarioRenumbering(t *testing.T) {
	textA := "Section 6.1: Indemnification\nThe Company shall indemnify the Customer for any direct damages."
	textB := "Section 6.2: Indemnification\nThe Company shall indemnify the Customer for any direct damages."

	result, errs := Compare(textA, textB, config.DefaultProfile())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(result.Alignment.Pairs) != 1 {
		t.Fatalf("want exactly 1 alignment pair, got %d: %+v", len(result.Alignment.Pairs), result.Alignment.Pairs)
	}
	pair := result.Alignment.Pairs[0]
	if pair.Type != align.Renumbered {
		t.Fatalf("want Renumbered, got %v", pair.Type)
	}
	if pair.Confidence < 0.9 {
		t.Fatalf("want confidence >= 0.9, got %v", pair.Confidence)
	}
	if result.Diff.Summary.Total != 0 {
		t.Fatalf("want 0 semantic changes for a pure renumbering, got %d: %+v", result.Diff.Summary.Total, result.Diff.Changes)
	}

	found := false
	for _, ta := range result.TokenDiffs {
		found = true
		if sim := ta.Similarity(); sim < 0.6 {
			t.Errorf("want token similarity well above 0.6 for a one-digit renumbering, got %v", sim)
		}
	}
	if !found {
		t.Fatal("want a token alignment to have been computed for the renumbered pair's differing header line")
	}
}

// TestScenarioDeletionWithDanglingReference implements the deletion
// literal scenario of spec.md §8.7: removing a section that another
// section still references produces exactly one Structural{SectionRemoved}
// change, at High risk because the removed section contained a duty, and
// a warning calling out the now-dangling reference.
func TestScenarioDeletionWithDanglingReference(t *testing.T) {
	textA := "Section 6.1: Indemnification\nThe Company shall indemnify the Customer.\nSection 7: Remedies\nClaims proceed pursuant to Section 6.1."
	textB := "Section 7: Remedies\nClaims proceed pursuant to Section 6.1."

	result, errs := Compare(textA, textB, config.DefaultProfile())
	_ = errs

	var removed []semdiff.SemanticChange
	for _, c := range result.Diff.Changes {
		if c.Type == semdiff.ChangeStructural && c.StructuralKind == semdiff.SectionRemoved {
			removed = append(removed, c)
		}
	}
	if len(removed) != 1 {
		t.Fatalf("want exactly 1 Structural{SectionRemoved} change, got %d: %+v", len(removed), result.Diff.Changes)
	}
	if removed[0].Risk != semdiff.RiskHigh {
		t.Errorf("want risk High for removing a section containing a duty, got %v", removed[0].Risk)
	}

	danglingWarned := false
	for _, w := range result.Warnings {
		if w != "" && containsDangling(w) {
			danglingWarned = true
		}
	}
	if !danglingWarned {
		t.Errorf("want a warning about the now-dangling reference to the removed section, got %v", result.Warnings)
	}
}

func containsDangling(s string) bool {
	for i := 0; i+len("dangling") <= len(s); i++ {
		if s[i:i+len("dangling")] == "dangling" {
			return true
		}
	}
	return false
}
