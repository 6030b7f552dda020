package resolve

import (
	"regexp"
	"strings"

	"github.com/latticework/contractdiff/internal/llline"
)

var pronounWords = map[string]bool{
	"it": true, "its": true, "they": true, "them": true, "their": true,
	"he": true, "him": true, "his": true, "she": true, "her": true,
}

// properNounPhrase matches a short capitalized noun phrase preceded by
// "the", the common contract idiom for a defined party reference ("the
// Company", "the Buyer", "the Disclosing Party").
var properNounPhrase = regexp.MustCompile(`\bthe\s+([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)?)\b`)

// PronounResolver flags personal and possessive pronouns. Input
// precondition: none. Confidence: 1.0 (closed word list, no ambiguity in
// whether a token is a pronoun).
type PronounResolver struct{}

func (PronounResolver) Name() string { return "PronounResolver" }

func (PronounResolver) Run(line *llline.Line) []string {
	for _, t := range line.Tokens() {
		if t.Tag != llline.TagWord {
			continue
		}
		if pronounWords[strings.ToLower(t.Text)] {
			line.Add(AttrPronoun, llline.Range{Start: t.Index, End: t.Index + 1}, t.Text)
		}
	}
	return nil
}

// PronounChainResolver links each pronoun flagged by PronounResolver to
// the nearest preceding capitalized party phrase ("the Company") on the
// same line. spec.md names this resolver but does not specify a
// multi-line antecedent-tracking algorithm (unlike the fully-specified
// header/reference/obligation resolvers); cross-line chaining is
// therefore deliberately out of scope here, consistent with the non-goal
// of being semantically correct on informal or underspecified prose.
// Input precondition: AttrPronoun is populated. Confidence: 0.6, a weak
// heuristic link.
type PronounChainResolver struct{}

func (PronounChainResolver) Name() string { return "PronounChainResolver" }

func (PronounChainResolver) Run(line *llline.Line) []string {
	pronouns := line.Find(AttrPronoun)
	if len(pronouns) == 0 {
		return nil
	}
	text := line.Text()
	matches := properNounPhrase.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	for _, p := range pronouns {
		tokens := line.Tokens()
		if p.Range.Start >= len(tokens) {
			continue
		}
		pronounByteStart := tokens[p.Range.Start].Start
		var best []int
		for _, m := range matches {
			if m[0] < pronounByteStart {
				best = m
			}
		}
		if best == nil {
			continue
		}
		antecedent := text[best[2]:best[3]]
		line.Add(AttrPronounChain, p.Range, antecedent)
	}
	return nil
}
