package resolve

import (
	"strings"

	"github.com/latticework/contractdiff/internal/llline"
)

var conditionIntroducers = map[string]bool{
	"if": true, "unless": true, "provided": true, "except": true,
}

// ObligationResolver reads a line's modal Keyword attributes (and, where
// present, PronounChain attributes) and appends one Obligation attribute
// per modal verb found. Input precondition: AttrKeyword (and ideally
// AttrPronounChain) populated by earlier resolvers. Confidence: 0.8,
// reflecting that obligor/action-span extraction is heuristic.
type ObligationResolver struct{}

func (ObligationResolver) Name() string { return "ObligationResolver" }

func (ObligationResolver) Run(line *llline.Line) []string {
	keywords := line.Find(AttrKeyword)
	for _, kf := range keywords {
		kw := kf.Value.(Keyword)
		if kw.Kind != KeywordModal {
			continue
		}
		obligationType := obligationTypeFor(kw.Text)
		obligor := extractObligor(line, kf.Range)
		actionEnd, conditions := splitActionAndConditions(line, kf.Range.End)
		actionRange := llline.Range{Start: kf.Range.End, End: actionEnd}
		actionText := line.TextOf(actionRange)
		beneficiary := extractBeneficiary(line, actionRange)

		line.Add(AttrObligation, llline.Range{Start: kf.Range.Start, End: actionEnd}, Obligation{
			Obligor:     obligor,
			Type:        obligationType,
			ActionRange: actionRange,
			ActionText:  actionText,
			Conditions:  conditions,
			Beneficiary: beneficiary,
			Confidence:  0.8,
		})
	}
	return nil
}

func obligationTypeFor(modalText string) ObligationType {
	switch strings.ToLower(modalText) {
	case "shall", "must", "will":
		return ObligationDuty
	case "shall not", "must not", "will not", "may not":
		return ObligationProhibition
	case "may":
		return ObligationPermission
	case "should":
		return ObligationDeclaration
	default:
		return ObligationDeclaration
	}
}

// extractObligor scans backward from the modal verb's start for a
// capitalized noun phrase (optionally preceded by "the"/"The"), the
// subject of the obligation sentence.
func extractObligor(line *llline.Line, modalRange llline.Range) ObligorReference {
	tokens := line.Tokens()
	end := modalRange.Start
	start := end
	for i := end - 1; i >= 0; i-- {
		t := tokens[i]
		if t.Tag == llline.TagSpace {
			continue
		}
		if t.Tag == llline.TagWord && (isCapitalized(t.Text) || strings.EqualFold(t.Text, "the")) {
			start = i
			continue
		}
		break
	}
	if start >= end {
		return ObligorReference{}
	}
	r := llline.Range{Start: start, End: end}
	text := strings.TrimSpace(line.TextOf(r))
	return ObligorReference{Text: text, Normalized: NormalizeTerm(text)}
}

func isCapitalized(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)[0]
	return r >= 'A' && r <= 'Z'
}

// splitActionAndConditions finds where the action clause ends: at line
// end, or at the first word introducing a condition clause ("if",
// "unless", "provided", "except"); a comma alone does not end it. Everything from that point
// to line end becomes a ConditionRef.
func splitActionAndConditions(line *llline.Line, start int) (actionEnd int, conditions []ConditionRef) {
	tokens := line.Tokens()
	for i := start; i < len(tokens); i++ {
		t := tokens[i]
		if t.Tag == llline.TagWord && conditionIntroducers[strings.ToLower(t.Text)] {
			r := llline.Range{Start: i, End: len(tokens)}
			conditions = append(conditions, ConditionRef{Text: line.TextOf(r), Range: r})
			return i, conditions
		}
	}
	return len(tokens), nil
}

// extractBeneficiary looks within the action range for a trailing "to
// the <Party>" phrase, the common way a contract names who an obligation
// runs in favor of.
func extractBeneficiary(line *llline.Line, actionRange llline.Range) *BeneficiaryRef {
	text := line.TextOf(actionRange)
	idx := strings.LastIndex(strings.ToLower(text), " to the ")
	if idx < 0 {
		return nil
	}
	rest := strings.Fields(text[idx+len(" to the "):])
	if len(rest) == 0 || !isCapitalized(rest[0]) {
		return nil
	}
	name := rest[0]
	if len(rest) > 1 && isCapitalized(rest[1]) {
		name = name + " " + rest[1]
	}
	return &BeneficiaryRef{Text: name, Normalized: NormalizeTerm(name)}
}
