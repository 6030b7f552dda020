// Package resolve implements the per-line resolver pipeline: stateless
// rules that read an llline.Line (and, for cross-line concerns, a small
// amount of explicitly-threaded document-level context) and append typed
// attributes to it. Resolvers never mutate a line and never consult
// global mutable state; any corpus-wide knowledge a resolver needs (e.g.
// the set of defined terms) is built in an earlier pass and passed in
// explicitly, the way extract.DefinitionLookup is built once and handed
// to later extractors in the teacher.
package resolve

import "github.com/latticework/contractdiff/internal/llline"

// Attribute type keys, one per resolver output.
const (
	AttrKeyword         llline.AttrType = "keyword"
	AttrDefinedTerm     llline.AttrType = "defined_term"
	AttrTermReference   llline.AttrType = "term_reference"
	AttrTemporal        llline.AttrType = "temporal"
	AttrSectionHeader   llline.AttrType = "section_header"
	AttrSectionRef      llline.AttrType = "section_reference"
	AttrPronoun         llline.AttrType = "pronoun"
	AttrPronounChain    llline.AttrType = "pronoun_chain"
	AttrObligation      llline.AttrType = "obligation"
)

// KeywordKind distinguishes modal verbs from structural conjunctions.
type KeywordKind string

const (
	KeywordModal       KeywordKind = "modal"
	KeywordConjunction KeywordKind = "conjunction"
)

// Keyword is emitted by ContractKeywordResolver.
type Keyword struct {
	Text       string
	Kind       KeywordKind
	Confidence float64
}

// DefinedTerm is emitted by DefinedTermResolver: a quoted, capitalized
// phrase introduced by a definitional verb ("means", "shall mean",
// "refers to").
type DefinedTerm struct {
	Name           string
	NormalizedName string
	Definition     string
	Confidence     float64
}

// TermReference is emitted by TermReferenceResolver: a later use of a
// name already established by some DefinedTerm.
type TermReference struct {
	Name           string
	NormalizedName string
	Confidence     float64
}

// DurationUnit enumerates the unit of a Duration temporal expression.
type DurationUnit string

const (
	UnitDays         DurationUnit = "days"
	UnitWeeks        DurationUnit = "weeks"
	UnitMonths       DurationUnit = "months"
	UnitYears        DurationUnit = "years"
	UnitBusinessDays DurationUnit = "business_days"
)

// DeadlineKind enumerates the qualifier attached to a Deadline temporal
// expression.
type DeadlineKind string

const (
	DeadlineWithin           DeadlineKind = "within"
	DeadlineBy               DeadlineKind = "by"
	DeadlineNoLaterThan      DeadlineKind = "no_later_than"
	DeadlineBefore           DeadlineKind = "before"
	DeadlineAfter            DeadlineKind = "after"
	DeadlineOnOrBefore       DeadlineKind = "on_or_before"
	DeadlinePromptlyFollowing DeadlineKind = "promptly_following"
)

// TimeRelation enumerates the relation a RelativeTime expression carries
// to its anchor.
type TimeRelation string

const (
	RelationUpon     TimeRelation = "upon"
	RelationFollowing TimeRelation = "following"
	RelationPriorTo  TimeRelation = "prior_to"
	RelationDuring   TimeRelation = "during"
	RelationAtTimeOf TimeRelation = "at_time_of"
)

// TemporalKind discriminates the TemporalType tagged union.
type TemporalKind string

const (
	TemporalDate        TemporalKind = "date"
	TemporalDuration     TemporalKind = "duration"
	TemporalDeadline     TemporalKind = "deadline"
	TemporalDefinedDate  TemporalKind = "defined_date"
	TemporalRelativeTime TemporalKind = "relative_time"
)

// Temporal is emitted by TemporalExpressionResolver. Only the fields
// relevant to Kind are meaningful, following the teacher's convention of
// one rich struct per tagged union rather than an interface hierarchy.
type Temporal struct {
	Kind TemporalKind
	Raw  string

	// Duration
	Value int
	Unit  DurationUnit

	// Deadline
	DeadlineKind DeadlineKind
	Reference    *Temporal

	// DefinedDate
	DefinedDateName string

	// RelativeTime
	RelationKind TimeRelation
	Anchor       string

	Confidence float64
}

// ObligationType enumerates the modal force of an ObligationPhrase.
type ObligationType string

const (
	ObligationDuty        ObligationType = "duty"
	ObligationPermission  ObligationType = "permission"
	ObligationProhibition ObligationType = "prohibition"
	ObligationDeclaration ObligationType = "declaration"
)

// ObligorReference names the party bound by an obligation.
type ObligorReference struct {
	Text       string
	Normalized string
}

// BeneficiaryRef names the party an obligation runs in favor of, when
// extractable.
type BeneficiaryRef struct {
	Text       string
	Normalized string
}

// ConditionRef is a condition attached to an obligation ("if", "provided
// that", "unless").
type ConditionRef struct {
	Text  string
	Range llline.Range
}

// Obligation is emitted by ObligationResolver.
type Obligation struct {
	Obligor     ObligorReference
	Type        ObligationType
	ActionRange llline.Range
	ActionText  string
	Conditions  []ConditionRef
	Beneficiary *BeneficiaryRef
	Confidence  float64
}

// SectionKind enumerates the named section levels a header can declare.
type SectionKind string

const (
	KindArticle    SectionKind = "article"
	KindSection    SectionKind = "section"
	KindSubsection SectionKind = "subsection"
	KindParagraph  SectionKind = "paragraph"
	KindClause     SectionKind = "clause"
	KindExhibit    SectionKind = "exhibit"
	KindSchedule   SectionKind = "schedule"
	KindAnnex      SectionKind = "annex"
	KindAppendix   SectionKind = "appendix"
	KindRecital    SectionKind = "recital"
	KindDefinition SectionKind = "definition"
)

// IdentifierForm discriminates the SectionIdentifier tagged union.
type IdentifierForm string

const (
	FormNumeric IdentifierForm = "numeric"
	FormRoman   IdentifierForm = "roman"
	FormAlpha   IdentifierForm = "alpha"
	FormNamed   IdentifierForm = "named"
)

// Identifier is the SectionIdentifier tagged union from spec.md §3: one of
// Numeric, Roman, Alpha, or Named (which nests a SectionKind plus an
// optional sub-identifier, e.g. "Section 3.1").
type Identifier struct {
	Form IdentifierForm

	// Numeric
	Parts []int

	// Roman
	RomanValue     int
	RomanUppercase bool

	// Alpha
	Letter         rune
	Parenthesized  bool
	AlphaUppercase bool

	// Named
	Kind          SectionKind
	SubIdentifier *Identifier
}

// Header is emitted by SectionHeaderResolver.
type Header struct {
	Identifier Identifier
	Title      string
	RawText    string
	Confidence float64
}

// ReferenceKind discriminates the ReferenceType tagged union.
type ReferenceKind string

const (
	RefDirect   ReferenceKind = "direct"
	RefRange    ReferenceKind = "range"
	RefList     ReferenceKind = "list"
	RefRelative ReferenceKind = "relative"
	RefExternal ReferenceKind = "external"
)

// RelativeKind enumerates RelativeReference variants.
type RelativeKind string

const (
	RelThis      RelativeKind = "this"
	RelForegoing RelativeKind = "foregoing"
	RelAbove     RelativeKind = "above"
	RelBelow     RelativeKind = "below"
	RelHereof    RelativeKind = "hereof"
	RelHerein    RelativeKind = "herein"
)

// Purpose is the optional ReferencePurpose classification.
type Purpose string

const (
	PurposeCondition  Purpose = "condition"
	PurposeDefinition Purpose = "definition"
	PurposeOverride   Purpose = "override"
	PurposeConformity Purpose = "conformity"
	PurposeException  Purpose = "exception"
	PurposeAuthority  Purpose = "authority"
	PurposeNone       Purpose = ""
)

// Reference is emitted by SectionReferenceResolver, one per detected
// reference phrase on a line.
type Reference struct {
	Target        *Identifier
	ReferenceText string
	Kind          ReferenceKind
	RangeIDs      []string // for List/Range: the canonical id strings referenced
	Relative      RelativeKind
	ExternalDoc   string
	Purpose       Purpose
	Confidence    float64
}
