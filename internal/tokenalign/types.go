// Package tokenalign implements the Token Aligner (spec.md §4.7): a
// thin, explicit wrapper over github.com/pmezard/go-difflib's
// SequenceMatcher (the LCS-based diff algorithm behind Python's
// difflib), run over token-id sequences rather than raw text so that
// WhitespaceMode and tokenization choices made upstream are honored.
package tokenalign

// WhitespaceMode controls how SPACE-tagged tokens factor into alignment.
type WhitespaceMode string

const (
	WhitespacePreserve  WhitespaceMode = "preserve"
	WhitespaceNormalize WhitespaceMode = "normalize"
	WhitespaceIgnore    WhitespaceMode = "ignore"
)

// Config tunes TokenAligner.Align.
type Config struct {
	Whitespace WhitespaceMode `json:"whitespace" yaml:"whitespace"`
}

// DefaultConfig normalizes whitespace, the common case for rendering a
// visual diff without it drowning in space-only hunks.
func DefaultConfig() Config {
	return Config{Whitespace: WhitespaceNormalize}
}

// TokenRelation discriminates one AlignedTokenPair's relationship.
type TokenRelation string

const (
	RelationMatched TokenRelation = "matched"
	RelationAdded   TokenRelation = "added"
	RelationRemoved TokenRelation = "removed"
)

// AlignedTokenPair is one element of a TokenAlignment: either a matched
// pair (both indices set) or a one-sided insertion/removal (the other
// index is -1).
type AlignedTokenPair struct {
	Relation  TokenRelation
	OrigIndex int // -1 if Relation == RelationAdded
	RevIndex  int // -1 if Relation == RelationRemoved
	OrigText  string
	RevText   string
}

// Alignment is the TokenAlignment: the full ordered sequence of pairs,
// plus the queries spec.md §4.7 names.
type Alignment struct {
	Pairs []AlignedTokenPair
}

func (a Alignment) added() []AlignedTokenPair {
	return a.filter(RelationAdded)
}

func (a Alignment) removed() []AlignedTokenPair {
	return a.filter(RelationRemoved)
}

func (a Alignment) changes() []AlignedTokenPair {
	var out []AlignedTokenPair
	for _, p := range a.Pairs {
		if p.Relation != RelationMatched {
			out = append(out, p)
		}
	}
	return out
}

func (a Alignment) unchanged() []AlignedTokenPair {
	return a.filter(RelationMatched)
}

func (a Alignment) filter(rel TokenRelation) []AlignedTokenPair {
	var out []AlignedTokenPair
	for _, p := range a.Pairs {
		if p.Relation == rel {
			out = append(out, p)
		}
	}
	return out
}

// Added returns every token present only in the revised sequence.
func (a Alignment) Added() []AlignedTokenPair { return a.added() }

// Removed returns every token present only in the original sequence.
func (a Alignment) Removed() []AlignedTokenPair { return a.removed() }

// Changes returns every non-matched pair (added or removed).
func (a Alignment) Changes() []AlignedTokenPair { return a.changes() }

// Unchanged returns every matched pair.
func (a Alignment) Unchanged() []AlignedTokenPair { return a.unchanged() }

// Filter returns every pair with the given relation.
func (a Alignment) Filter(rel TokenRelation) []AlignedTokenPair { return a.filter(rel) }

// Similarity is the ratio of matched tokens to the longer side's token
// count: 1.0 for identical sequences, 0.0 for wholly disjoint ones.
func (a Alignment) Similarity() float64 {
	matched := 0
	origN, revN := 0, 0
	for _, p := range a.Pairs {
		switch p.Relation {
		case RelationMatched:
			matched++
			origN++
			revN++
		case RelationRemoved:
			origN++
		case RelationAdded:
			revN++
		}
	}
	denom := origN
	if revN > denom {
		denom = revN
	}
	if denom == 0 {
		return 1.0
	}
	return float64(matched) / float64(denom)
}
