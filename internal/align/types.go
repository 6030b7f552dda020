// Package align implements the Document Aligner (spec.md §4.5): pairing
// sections from one document version to another under uncertainty,
// grounded in the teacher's two version-to-version comparison engines,
// pkg/extract/rulesdiff.go (RulesDiffer, clause-level compare/classify)
// and pkg/analysis/crossref.go (CrossRefAnalyzer.CompareDocuments).
package align

// Type is the AlignmentType tagged union.
type Type string

const (
	ExactMatch Type = "exact_match"
	Renumbered Type = "renumbered"
	Moved      Type = "moved"
	Modified   Type = "modified"
	Split      Type = "split"
	Merged     Type = "merged"
	Deleted    Type = "deleted"
	Inserted   Type = "inserted"
)

// SectionRef identifies one section on one side of an alignment.
type SectionRef struct {
	CanonicalID string
	Title       string
	StartLine   int
	Depth       int
}

// Signal is one named, weighted similarity contribution.
type Signal struct {
	Name   string
	Score  float64
	Weight float64
}

// Pair is one AlignedPair: a typed correspondence between one or more
// original sections and one or more revised sections.
type Pair struct {
	Original   []SectionRef
	Revised    []SectionRef
	Type       Type
	Confidence float64
	Signals    []Signal
}

// Candidate is an AlignmentCandidate: a proposed Pair plus the metadata
// needed for external (e.g. LLM) review before it is committed.
type Candidate struct {
	ID                string
	Original          []SectionRef
	Revised           []SectionRef
	ProposedType      Type
	Confidence        float64
	Signals           []Signal
	UncertaintyReason string
	OriginalExcerpts  string
	RevisedExcerpts   string
}

// Candidates is the compute_candidates output: proposed pairs plus the
// leftovers that found no match at all, and the config snapshot used to
// produce them.
type Candidates struct {
	Candidates       []Candidate
	UnpairedOriginal []SectionRef
	UnpairedRevised  []SectionRef
	ConfigSnapshot   SimilarityConfig
}

// HintType discriminates the AlignmentHint tagged union.
type HintType string

const (
	HintForceMatch      HintType = "force_match"
	HintForceNoMatch    HintType = "force_no_match"
	HintAdjustConfidence HintType = "adjust_confidence"
	HintOverrideType    HintType = "override_type"
	HintSemanticContext HintType = "semantic_context"
)

// Hint is an AlignmentHint: an external signal adjusting a candidate.
// Only the fields relevant to Type are meaningful.
type Hint struct {
	CandidateID string
	OriginalIDs []string
	RevisedIDs  []string
	Type        HintType
	Confidence  float64
	Source      string
	Explanation string

	ForceMatchType Type    // HintForceMatch
	Delta          float64 // HintAdjustConfidence
	NewType        Type    // HintOverrideType
	Topics         []string // HintSemanticContext
}

// Stats summarizes an AlignmentResult.
type Stats struct {
	ByType map[Type]int
	Total  int
}

// Result is the AlignmentResult: the committed, typed section pairs.
type Result struct {
	Pairs    []Pair
	Stats    Stats
	Warnings []string
}

// SimilarityConfig holds every tunable threshold from spec.md §4.5.2, all
// serializable (JSON tags match the wire format, spec.md §6.2) and
// overridable, mirroring the teacher's FormatPattern/DetectionConfig
// shape (a plain, versionable config struct) without its YAML hot-reload
// machinery, which has no analog in a synchronous, no-I/O core.
type SimilarityConfig struct {
	ExactMatchThreshold          float64 `json:"exact_match_threshold" yaml:"exact_match_threshold"`
	ModificationThreshold        float64 `json:"modification_threshold" yaml:"modification_threshold"`
	SplitMergeCandidateThreshold float64 `json:"split_merge_candidate_threshold" yaml:"split_merge_candidate_threshold"`
	SplitMergeAcceptThreshold    float64 `json:"split_merge_accept_threshold" yaml:"split_merge_accept_threshold"`
	UnmatchedConfidence          float64 `json:"unmatched_confidence" yaml:"unmatched_confidence"`
	ReviewThreshold              float64 `json:"review_threshold" yaml:"review_threshold"`
	ExcerptTokenBudget           int     `json:"excerpt_token_budget" yaml:"excerpt_token_budget"`

	WeightCanonicalID float64 `json:"weight_canonical_id" yaml:"weight_canonical_id"`
	WeightTitle       float64 `json:"weight_title" yaml:"weight_title"`
	WeightSemantic    float64 `json:"weight_semantic" yaml:"weight_semantic"`
	WeightPosition    float64 `json:"weight_position" yaml:"weight_position"`
	WeightText        float64 `json:"weight_text" yaml:"weight_text"`
}

// DefaultSimilarityConfig returns the defaults listed in spec.md §4.5.2.
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		ExactMatchThreshold:          0.90,
		ModificationThreshold:        0.60,
		SplitMergeCandidateThreshold: 0.30,
		SplitMergeAcceptThreshold:    0.80,
		UnmatchedConfidence:          0.60,
		ReviewThreshold:              0.75,
		ExcerptTokenBudget:           40,

		WeightCanonicalID: 0.25,
		WeightTitle:       0.20,
		WeightSemantic:    0.35,
		WeightPosition:    0.10,
		WeightText:        0.10,
	}
}
