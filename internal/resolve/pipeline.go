package resolve

import "github.com/latticework/contractdiff/internal/llline"

// Resolver is the public contract every resolver variant implements:
// read a line, append typed attributes, and return any warnings. A
// resolver never panics and never mutates or removes a prior attribute.
type Resolver interface {
	Name() string
	Run(line *llline.Line) []string
}

// Pipeline runs the standard resolver ordering from spec.md §4.1 over
// every line of a document. Rather than a polymorphic resolver list
// alone, Standard performs the document in explicit sub-passes so that
// TermReferenceResolver can see every DefinedTerm in the document, not
// just the ones on lines before it — the only point where a resolver
// needs information beyond "attributes already on this line".
type Pipeline struct {
	Lines []*llline.Line
}

// StandardResult carries the warnings accumulated while running Standard.
type StandardResult struct {
	Warnings []string
}

// Standard runs ContractKeywordResolver, DefinedTermResolver,
// TermReferenceResolver, TemporalExpressionResolver, SectionHeaderResolver,
// SectionReferenceResolver, PronounResolver, PronounChainResolver, and
// ObligationResolver over every line, in that dependency order.
func (p *Pipeline) Standard() StandardResult {
	var res StandardResult
	collect := func(ws []string) {
		res.Warnings = append(res.Warnings, ws...)
	}

	kw := ContractKeywordResolver{}
	dt := DefinedTermResolver{}
	for _, line := range p.Lines {
		collect(kw.Run(line))
		collect(dt.Run(line))
	}

	terms := make(map[string]string)
	for _, line := range p.Lines {
		for _, f := range line.Find(AttrDefinedTerm) {
			d := f.Value.(DefinedTerm)
			if _, exists := terms[d.NormalizedName]; !exists {
				terms[d.NormalizedName] = d.Name
			}
		}
	}
	termRef := TermReferenceResolver{Terms: terms}

	temporal := TemporalExpressionResolver{}
	header := SectionHeaderResolver{}
	sectionRef := SectionReferenceResolver{}
	pronoun := PronounResolver{}
	pronounChain := PronounChainResolver{}
	obligation := ObligationResolver{}

	for _, line := range p.Lines {
		collect(termRef.Run(line))
		collect(temporal.Run(line))
		collect(header.Run(line))
		collect(sectionRef.Run(line))
		collect(pronoun.Run(line))
		collect(pronounChain.Run(line))
		collect(obligation.Run(line))
	}
	return res
}
