package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/latticework/contractdiff/internal/llline"
)

var namedKindWords = map[string]SectionKind{
	"article":     KindArticle,
	"section":     KindSection,
	"subsection":  KindSubsection,
	"exhibit":     KindExhibit,
	"schedule":    KindSchedule,
	"annex":       KindAnnex,
	"appendix":    KindAppendix,
	"recital":     KindRecital,
	"definition":  KindDefinition,
	"definitions": KindDefinition,
}

var namedHeaderPattern = regexp.MustCompile(
	`(?i)^(Article|Section|Subsection|Exhibit|Schedule|Annex|Appendix|Recital|Definitions?)\s+([A-Za-z0-9.]+)\s*(?:[-\x{2013}\x{2014}:]\s*(.+))?$`,
)

var numericHeaderPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s*(.*)$`)
var romanHeaderPattern = regexp.MustCompile(`^([MDCLXVI]+)\b\s*(.*)$`)
var alphaHeaderPattern = regexp.MustCompile(`^\((\p{L})\)\s*(.*)$`)

// SectionHeaderResolver detects a line-level section header at the start
// of a line and appends one Header attribute. Input precondition: none.
// Patterns are tried by priority (spec.md §4.2): named form, numeric
// dotted, Roman uppercase, parenthesized alpha. A header is only admitted
// if its match starts at token index 0 or 1 (allowing one leading
// whitespace/punctuation token); later admission into the document
// structure additionally requires this, but the resolver itself also
// enforces it so the attribute's own range always satisfies it.
type SectionHeaderResolver struct{}

func (SectionHeaderResolver) Name() string { return "SectionHeaderResolver" }

func (SectionHeaderResolver) Run(line *llline.Line) []string {
	text := strings.TrimSpace(line.Text())
	if text == "" {
		return nil
	}

	if m := namedHeaderPattern.FindStringSubmatch(text); m != nil {
		kind, ok := namedKindWords[strings.ToLower(m[1])]
		if ok {
			ident := Identifier{Form: FormNamed, Kind: kind}
			if sub := parseNumericOrAlpha(m[2]); sub != nil {
				ident.SubIdentifier = sub
			}
			conf := 0.9
			if m[3] != "" {
				conf = 1.0
			}
			admitHeader(line, Header{Identifier: ident, Title: m[3], RawText: text, Confidence: conf})
			return nil
		}
	}

	if m := numericHeaderPattern.FindStringSubmatch(text); m != nil {
		parts := parseDottedNumeric(m[1])
		if parts != nil {
			ident := Identifier{Form: FormNumeric, Parts: parts}
			admitHeader(line, Header{Identifier: ident, Title: strings.TrimSpace(m[2]), RawText: text, Confidence: 0.9})
			return nil
		}
	}

	if m := romanHeaderPattern.FindStringSubmatch(text); m != nil {
		if v, upper, ok := ParseRoman(m[1]); ok {
			ident := Identifier{Form: FormRoman, RomanValue: v, RomanUppercase: upper}
			admitHeader(line, Header{Identifier: ident, Title: strings.TrimSpace(m[2]), RawText: text, Confidence: 0.85})
			return nil
		}
	}

	if m := alphaHeaderPattern.FindStringSubmatch(text); m != nil {
		letter := []rune(m[1])[0]
		ident := Identifier{Form: FormAlpha, Letter: letter, Parenthesized: true, AlphaUppercase: letter == []rune(strings.ToUpper(string(letter)))[0]}
		admitHeader(line, Header{Identifier: ident, Title: strings.TrimSpace(m[2]), RawText: text, Confidence: 0.85})
		return nil
	}

	return nil
}

func admitHeader(line *llline.Line, h Header) {
	end := firstNonLeadingSpaceTokenCount(line)
	r := llline.Range{Start: 0, End: end}
	if r.End == 0 {
		r.End = line.Len()
	}
	line.Add(AttrSectionHeader, r, h)
}

// firstNonLeadingSpaceTokenCount returns 1, or 2 if the line starts with
// a SPACE token, so the header attribute's range always starts at token
// index <= 1 regardless of leading whitespace.
func firstNonLeadingSpaceTokenCount(line *llline.Line) int {
	tokens := line.Tokens()
	if len(tokens) > 0 && tokens[0].Tag == llline.TagSpace {
		return 2
	}
	return 1
}

func parseDottedNumeric(s string) []int {
	fields := strings.Split(s, ".")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil
		}
		out = append(out, n)
	}
	return out
}

func parseNumericOrAlpha(s string) *Identifier {
	if parts := parseDottedNumeric(s); parts != nil {
		return &Identifier{Form: FormNumeric, Parts: parts}
	}
	if len(s) == 1 {
		r := []rune(s)[0]
		return &Identifier{Form: FormAlpha, Letter: r}
	}
	return nil
}

// Depth implements spec.md §3's nesting order: Article (2) > Section (3)
// > numeric subsections (4) > parenthesized alpha (5). Roman and Named
// non-Article/Section kinds are treated as Article-level (top-level);
// a SubIdentifier does not change the depth. This matches how the
// teacher treats Chapter/Article as the outermost structural levels.
func (id Identifier) Depth() int {
	switch id.Form {
	case FormNamed:
		switch id.Kind {
		case KindArticle:
			return 2
		case KindSection:
			return 3
		default:
			return 2
		}
	case FormNumeric:
		if len(id.Parts) <= 1 {
			return 3
		}
		return 3 + (len(id.Parts) - 1)
	case FormRoman:
		return 2
	case FormAlpha:
		return 5
	default:
		return 2
	}
}

// Canonical renders a stable, join-key string for the identifier, e.g.
// "SECTION:3.1" or "ARTICLE:II" or "(i)". This is the canonical
// identifier used throughout alignment and reference resolution.
func (id Identifier) Canonical() string {
	switch id.Form {
	case FormNamed:
		s := strings.ToUpper(string(id.Kind))
		if id.SubIdentifier != nil {
			s += ":" + id.SubIdentifier.Canonical()
		}
		return s
	case FormNumeric:
		parts := make([]string, len(id.Parts))
		for i, p := range id.Parts {
			parts[i] = strconv.Itoa(p)
		}
		return strings.Join(parts, ".")
	case FormRoman:
		return ToRoman(id.RomanValue)
	case FormAlpha:
		return "(" + string(id.Letter) + ")"
	default:
		return ""
	}
}

// String renders a short human-readable form for diagnostics.
func (id Identifier) String() string { return id.Canonical() }
