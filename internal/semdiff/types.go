// Package semdiff implements the Semantic Diff Engine (spec.md §4.6):
// it turns an align.Result plus per-side extracted attributes into
// typed, risk-scored SemanticChanges, grounded in the teacher's
// pkg/extract/rulesdiff.go (RulesDiffer / ClauseChange / ChangeType).
package semdiff

import "github.com/latticework/contractdiff/internal/docmodel"

// ChangeType discriminates the SemanticChangeType tagged union.
type ChangeType string

const (
	ChangeObligationModal     ChangeType = "obligation_modal"
	ChangeObligationCondition ChangeType = "obligation_condition"
	ChangeObligorChange       ChangeType = "obligor_change"
	ChangeBeneficiaryChange   ChangeType = "beneficiary_change"
	ChangeTermDefinition      ChangeType = "term_definition"
	ChangeTemporal            ChangeType = "temporal"
	ChangeStructural          ChangeType = "structural"
)

// RiskLevel enumerates the severity of a SemanticChange.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

func maxRisk(a, b RiskLevel) RiskLevel {
	order := map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2, RiskCritical: 3}
	if order[a] >= order[b] {
		return a
	}
	return b
}

// Direction enumerates which way a PartyImpact cuts.
type Direction string

const (
	Favorable   Direction = "favorable"
	Unfavorable Direction = "unfavorable"
	Neutral     Direction = "neutral"
)

// PartyImpact attaches a direction and rationale to one named party.
type PartyImpact struct {
	Party     string
	Direction Direction
	Rationale string
}

// StructuralKind enumerates the Structural SemanticChangeType variant.
type StructuralKind string

const (
	SectionAdded   StructuralKind = "section_added"
	SectionRemoved StructuralKind = "section_removed"
	SectionMoved   StructuralKind = "section_moved"
)

// ConditionChangeKind enumerates the ObligationCondition variant.
type ConditionChangeKind string

const (
	ConditionAdded    ConditionChangeKind = "added"
	ConditionRemoved  ConditionChangeKind = "removed"
	ConditionModified ConditionChangeKind = "modified"
)

// SemanticChange is one typed, risk-scored observation. Only the
// fields relevant to Type are meaningful, following the teacher's
// one-struct-per-variant convention for tagged unions.
type SemanticChange struct {
	ChangeID      string
	Type          ChangeType
	Risk          RiskLevel
	PartyImpacts  []PartyImpact
	Explanation   string
	Confidence    float64
	SourceSection string

	// ObligationModal
	ModalFrom      string
	ModalTo        string
	ActionSnippet  string
	Obligor        string
	Beneficiary    string

	// ObligationCondition
	ConditionKind ConditionChangeKind
	ConditionText string

	// ObligorChange / BeneficiaryChange
	PartyFrom string
	PartyTo   string

	// TermDefinition
	Term          string
	DefBefore     string
	DefAfter      string
	BlastRadius   []docmodel.Position

	// Temporal
	TemporalFrom   string
	TemporalTo     string
	TemporalAnchor string

	// Structural
	StructuralKind StructuralKind
}

// DiffSummary aggregates a SemanticDiffResult's changes.
type DiffSummary struct {
	Total  int
	ByRisk map[RiskLevel]int
	ByType map[ChangeType]int
}

// PartySummary aggregates impacts for one named party.
type PartySummary struct {
	Party               string
	Favorable           int
	Unfavorable         int
	Neutral             int
	NetDutyChange       int
	NetPermissionChange int
}

// Result is the SemanticDiffResult.
type Result struct {
	Changes       []SemanticChange
	Summary       DiffSummary
	PartySummaries []PartySummary
	Warnings      []string
}

// ReviewCandidates is DiffReviewCandidates: low-confidence changes
// surfaced for external review.
type ReviewCandidates struct {
	Changes   []SemanticChange
	Threshold float64
}

// HintType discriminates the DiffHintType tagged union.
type HintType string

const (
	HintConfirm      HintType = "confirm"
	HintRefute       HintType = "refute"
	HintAdjustRisk   HintType = "adjust_risk"
	HintAdjustImpact HintType = "adjust_impact"
	HintSuppress     HintType = "suppress_change"
)

// Hint is a DiffHint.
type Hint struct {
	ChangeID    string
	Type        HintType
	Confidence  float64
	Source      string
	Explanation string

	// AdjustRisk
	RiskDelta int // applied against the RiskLevel ordering

	// AdjustImpact
	ImpactParty     string
	ImpactDirection Direction
}
