package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/latticework/contractdiff/internal/llline"
)

// durationPattern matches "thirty (30) days", "45 days", "10 business
// days": an optional written-out number, a parenthesized or bare digit
// count, and a unit word. The numeric value is always read from the
// digits, never the written-out form, since contract drafting always
// gives the authoritative count in numerals.
var durationPattern = regexp.MustCompile(
	`(?i)\b(?:[a-z-]+\s+)?\(?(\d+)\)?\s+(business\s+days|calendar\s+days|days|weeks|months|years)\b`,
)

var deadlineQualifiers = []struct {
	phrase string
	kind   DeadlineKind
}{
	{"no later than", DeadlineNoLaterThan},
	{"promptly following", DeadlinePromptlyFollowing},
	{"on or before", DeadlineOnOrBefore},
	{"within", DeadlineWithin},
	{"by", DeadlineBy},
	{"before", DeadlineBefore},
	{"after", DeadlineAfter},
}

var relativeQualifiers = []struct {
	phrase string
	kind   TimeRelation
}{
	{"upon", RelationUpon},
	{"following", RelationFollowing},
	{"prior to", RelationPriorTo},
	{"during", RelationDuring},
	{"at the time of", RelationAtTimeOf},
}

// TemporalExpressionResolver finds duration/deadline expressions
// ("within thirty (30) days") and simple relative-time expressions
// ("upon execution") and appends one Temporal attribute per match.
// Input precondition: none. Confidence: 0.9 for a duration with a
// recognized deadline qualifier, 0.8 for a bare duration, 0.6 for a
// relative-time phrase (these are weaker, open-ended patterns).
type TemporalExpressionResolver struct{}

func (TemporalExpressionResolver) Name() string { return "TemporalExpressionResolver" }

func (TemporalExpressionResolver) Run(line *llline.Line) []string {
	text := line.Text()
	lower := strings.ToLower(text)

	for _, m := range durationPattern.FindAllStringSubmatchIndex(text, -1) {
		valStr := text[m[2]:m[3]]
		unitStr := strings.ToLower(strings.Join(strings.Fields(text[m[4]:m[5]]), " "))
		value, err := strconv.Atoi(valStr)
		if err != nil {
			continue
		}
		unit := unitFromWord(unitStr)
		r, ok := tokenRangeForByteSpan(line, m[0], m[1])
		if !ok {
			continue
		}
		dk, dkOk := nearestQualifier(lower, m[0])
		conf := 0.8
		if dkOk {
			conf = 0.9
			r = expandRangeLeft(line, r, m[0], dk)
		}
		t := Temporal{Kind: TemporalDuration, Raw: line.TextOf(r), Value: value, Unit: unit, Confidence: conf}
		if dkOk {
			t.Kind = TemporalDeadline
			t.DeadlineKind = dk
			ref := Temporal{Kind: TemporalDuration, Value: value, Unit: unit, Confidence: conf}
			t.Reference = &ref
		}
		line.Add(AttrTemporal, r, t)
	}

	for _, rq := range relativeQualifiers {
		idx := strings.Index(lower, rq.phrase)
		if idx < 0 {
			continue
		}
		end := idx + len(rq.phrase)
		if !wordAligned(lower, idx, end) {
			continue
		}
		r, ok := tokenRangeForByteSpan(line, idx, end)
		if !ok {
			continue
		}
		line.Add(AttrTemporal, r, Temporal{
			Kind:         TemporalRelativeTime,
			Raw:          line.TextOf(r),
			RelationKind: rq.kind,
			Confidence:   0.6,
		})
	}
	return nil
}

func unitFromWord(w string) DurationUnit {
	switch w {
	case "business days":
		return UnitBusinessDays
	case "calendar days", "days":
		return UnitDays
	case "weeks":
		return UnitWeeks
	case "months":
		return UnitMonths
	case "years":
		return UnitYears
	default:
		return UnitDays
	}
}

// nearestQualifier looks immediately before the match start (within a
// short lookback window) for a deadline qualifier phrase.
func nearestQualifier(lower string, matchStart int) (DeadlineKind, bool) {
	lookback := matchStart - 24
	if lookback < 0 {
		lookback = 0
	}
	window := lower[lookback:matchStart]
	for _, q := range deadlineQualifiers {
		if strings.HasSuffix(strings.TrimRight(window, " "), q.phrase) {
			return q.kind, true
		}
	}
	return "", false
}

// expandRangeLeft widens r to also cover the qualifier phrase immediately
// preceding matchStart, when one was found.
func expandRangeLeft(line *llline.Line, r llline.Range, matchStart int, dk DeadlineKind) llline.Range {
	var phrase string
	for _, q := range deadlineQualifiers {
		if q.kind == dk {
			phrase = q.phrase
			break
		}
	}
	if phrase == "" {
		return r
	}
	lower := strings.ToLower(line.Text())
	window := lower[:matchStart]
	idx := strings.LastIndex(strings.TrimRight(window, " "), phrase)
	if idx < 0 {
		return r
	}
	if extended, ok := tokenRangeForByteSpan(line, idx, matchStart); ok {
		return llline.Range{Start: extended.Start, End: r.End}
	}
	return r
}
