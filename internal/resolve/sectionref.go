package resolve

import (
	"regexp"
	"strings"

	"github.com/latticework/contractdiff/internal/llline"
)

var directRefPattern = regexp.MustCompile(
	`(?i)\b(Section|Article|Exhibit|Schedule|Paragraph|Clause)\s+([0-9][0-9.]*|[IVXLCDM]+)(\s+(?:above|below|hereof|herein))?\b`,
)

var rangeRefPattern = regexp.MustCompile(
	`(?i)\b(Sections|Articles)\s+([0-9][0-9.]*|[IVXLCDM]+)\s+through\s+([0-9][0-9.]*|[IVXLCDM]+)\b`,
)

var listRefPattern = regexp.MustCompile(
	`(?i)\b(Sections|Articles)\s+([0-9][0-9.]*)(?:\s*,\s*([0-9][0-9.]*))*(?:\s*,?\s+(?:and|or)\s+([0-9][0-9.]*))\b`,
)

var externalRefPattern = regexp.MustCompile(
	`(?i)\b(Section|Article|Exhibit|Schedule)\s+([0-9][0-9.]*|[IVXLCDM]+)\s+of\s+the\s+([A-Z][A-Za-z ]*(?:Agreement|Order|Plan|Policy|Schedule|Exhibit))\b`,
)

var relativeOnlyPhrases = []struct {
	phrase string
	kind   RelativeKind
}{
	{"as defined herein", RelHerein},
	{"this section", RelThis},
	{"this article", RelThis},
	{"the foregoing", RelForegoing},
	{"hereof", RelHereof},
	{"herein", RelHerein},
	{"above", RelAbove},
	{"below", RelBelow},
}

var kindWordToKind = map[string]SectionKind{
	"section":  KindSection,
	"sections": KindSection,
	"article":  KindArticle,
	"articles": KindArticle,
	"exhibit":  KindExhibit,
	"schedule": KindSchedule,
	"paragraph": KindParagraph,
	"clause":   KindClause,
}

// SectionReferenceResolver detects reference phrases anywhere on a line
// and appends one Reference attribute per match: External, Range, List,
// Direct, and Relative-only forms, in that priority order so a more
// specific pattern (External, Range, List) claims its span before the
// generic Direct pattern would. Input precondition: none — linking
// (resolving a reference to a target section) happens later, in
// internal/link, which needs the whole document structure.
type SectionReferenceResolver struct{}

func (SectionReferenceResolver) Name() string { return "SectionReferenceResolver" }

func (SectionReferenceResolver) Run(line *llline.Line) []string {
	text := line.Text()
	claimed := make([]bool, len(text)+1)

	for _, m := range externalRefPattern.FindAllStringSubmatchIndex(text, -1) {
		if rangeClaimed(claimed, m[0], m[1]) {
			continue
		}
		markClaimed(claimed, m[0], m[1])
		r, ok := tokenRangeForByteSpan(line, m[0], m[1])
		if !ok {
			continue
		}
		kind := kindWordToKind[strings.ToLower(text[m[2]:m[3]])]
		ident := parseIdentifierToken(text[m[4]:m[5]], kind)
		line.Add(AttrSectionRef, r, Reference{
			Target:        ident,
			ReferenceText: text[m[0]:m[1]],
			Kind:          RefExternal,
			ExternalDoc:   strings.TrimSpace(text[m[6]:m[7]]),
			Confidence:    0.85,
		})
	}

	for _, m := range rangeRefPattern.FindAllStringSubmatchIndex(text, -1) {
		if rangeClaimed(claimed, m[0], m[1]) {
			continue
		}
		markClaimed(claimed, m[0], m[1])
		r, ok := tokenRangeForByteSpan(line, m[0], m[1])
		if !ok {
			continue
		}
		kind := kindWordToKind[strings.ToLower(text[m[2]:m[3]])]
		a := text[m[4]:m[5]]
		b := text[m[6]:m[7]]
		line.Add(AttrSectionRef, r, Reference{
			ReferenceText: text[m[0]:m[1]],
			Kind:          RefRange,
			RangeIDs:      []string{canonicalOf(a, kind), canonicalOf(b, kind)},
			Confidence:    0.85,
		})
	}

	for _, m := range listRefPattern.FindAllStringSubmatchIndex(text, -1) {
		if rangeClaimed(claimed, m[0], m[1]) {
			continue
		}
		markClaimed(claimed, m[0], m[1])
		r, ok := tokenRangeForByteSpan(line, m[0], m[1])
		if !ok {
			continue
		}
		kind := kindWordToKind[strings.ToLower(text[m[2]:m[3]])]
		var ids []string
		for g := 4; g+1 < len(m); g += 2 {
			if m[g] < 0 {
				continue
			}
			ids = append(ids, canonicalOf(text[m[g]:m[g+1]], kind))
		}
		line.Add(AttrSectionRef, r, Reference{
			ReferenceText: text[m[0]:m[1]],
			Kind:          RefList,
			RangeIDs:      ids,
			Confidence:    0.8,
		})
	}

	for _, m := range directRefPattern.FindAllStringSubmatchIndex(text, -1) {
		if rangeClaimed(claimed, m[0], m[1]) {
			continue
		}
		markClaimed(claimed, m[0], m[1])
		r, ok := tokenRangeForByteSpan(line, m[0], m[1])
		if !ok {
			continue
		}
		kind := kindWordToKind[strings.ToLower(text[m[2]:m[3]])]
		ident := parseIdentifierToken(text[m[4]:m[5]], kind)
		purpose := inferPurpose(text)
		rel := RelativeKind("")
		if m[6] >= 0 {
			switch strings.ToLower(strings.TrimSpace(text[m[6]:m[7]])) {
			case "above":
				rel = RelAbove
			case "below":
				rel = RelBelow
			case "hereof":
				rel = RelHereof
			case "herein":
				rel = RelHerein
			}
		}
		line.Add(AttrSectionRef, r, Reference{
			Target:        ident,
			ReferenceText: text[m[0]:m[1]],
			Kind:          RefDirect,
			Relative:      rel,
			Purpose:       purpose,
			Confidence:    0.9,
		})
	}

	lower := strings.ToLower(text)
	for _, rq := range relativeOnlyPhrases {
		idx := strings.Index(lower, rq.phrase)
		if idx < 0 {
			continue
		}
		end := idx + len(rq.phrase)
		if rangeClaimed(claimed, idx, end) {
			continue
		}
		markClaimed(claimed, idx, end)
		r, ok := tokenRangeForByteSpan(line, idx, end)
		if !ok {
			continue
		}
		line.Add(AttrSectionRef, r, Reference{
			ReferenceText: text[idx:end],
			Kind:          RefRelative,
			Relative:      rq.kind,
			Confidence:    0.7,
		})
	}
	return nil
}

func parseIdentifierToken(s string, kind SectionKind) *Identifier {
	if parts := parseDottedNumeric(s); parts != nil {
		return &Identifier{Form: FormNamed, Kind: kind, SubIdentifier: &Identifier{Form: FormNumeric, Parts: parts}}
	}
	if v, upper, ok := ParseRoman(s); ok {
		return &Identifier{Form: FormNamed, Kind: kind, SubIdentifier: &Identifier{Form: FormRoman, RomanValue: v, RomanUppercase: upper}}
	}
	return &Identifier{Form: FormNamed, Kind: kind}
}

func canonicalOf(s string, kind SectionKind) string {
	id := parseIdentifierToken(s, kind)
	if id == nil {
		return s
	}
	return id.Canonical()
}

func inferPurpose(text string) Purpose {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "subject to"):
		return PurposeCondition
	case strings.Contains(lower, "notwithstanding"):
		return PurposeException
	case strings.Contains(lower, "as defined"):
		return PurposeDefinition
	case strings.Contains(lower, "supersede"), strings.Contains(lower, "override"):
		return PurposeOverride
	case strings.Contains(lower, "in accordance with"), strings.Contains(lower, "consistent with"):
		return PurposeConformity
	case strings.Contains(lower, "pursuant to"), strings.Contains(lower, "authorized"):
		return PurposeAuthority
	default:
		return PurposeNone
	}
}
