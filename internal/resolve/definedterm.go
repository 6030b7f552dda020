package resolve

import (
	"regexp"
	"strings"

	"github.com/latticework/contractdiff/internal/llline"
)

// quoteClass accepts ASCII, typographic, and curly quote characters
// uniformly, the same quote-agnostic approach as the teacher's
// allQuoteChars constant, so "\"Term\" means" and "“Term” means"
// parse identically.
const quoteClass = `["'\x{201C}\x{201D}\x{2018}\x{2019}]`

var definedTermPattern = regexp.MustCompile(
	quoteClass + `([A-Z][A-Za-z0-9 ,/'&-]*?)` + quoteClass +
		`\s+(?:shall\s+mean|means|shall\s+refer\s+to|refers?\s+to)\b\s*(.*)$`,
)

// DefinedTermResolver finds quoted, capitalized phrases introduced by a
// definitional verb and appends one DefinedTerm attribute per match.
// Input precondition: none. Confidence: 1.0, since the quoted-phrase plus
// definitional-verb pattern is a strong, low-ambiguity signal in contract
// drafting.
type DefinedTermResolver struct{}

func (DefinedTermResolver) Name() string { return "DefinedTermResolver" }

func (DefinedTermResolver) Run(line *llline.Line) []string {
	text := line.Text()
	m := definedTermPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return nil
	}
	termStart, termEnd := m[2], m[3]
	defStart := m[4]
	term := text[termStart:termEnd]
	definition := strings.TrimSpace(text[defStart:])
	r, ok := tokenRangeForByteSpan(line, termStart, termEnd)
	if !ok {
		return []string{"DefinedTermResolver: could not map quoted term to tokens"}
	}
	line.Add(AttrDefinedTerm, r, DefinedTerm{
		Name:           term,
		NormalizedName: NormalizeTerm(term),
		Definition:     definition,
		Confidence:     1.0,
	})
	return nil
}

// NormalizeTerm lowercases and collapses whitespace, giving a stable join
// key for matching a defined term to its later references and to its
// redefinition in a revised document.
func NormalizeTerm(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}
