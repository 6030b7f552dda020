package resolve

import (
	"sort"
	"strings"

	"github.com/latticework/contractdiff/internal/llline"
)

// TermReferenceResolver finds later uses of names already established by
// a DefinedTerm. It needs corpus-wide knowledge (every term defined
// anywhere in the document) that a single line cannot provide, so the
// pipeline builds the Terms map in an earlier sub-pass over
// DefinedTermResolver's output and constructs one TermReferenceResolver
// per document with that map as plain data — it remains stateless with
// respect to any individual line, consistent with spec.md's resolver
// contract ("may consult any attribute type previously placed on the
// line"; here, the attribute was placed by an earlier *pass*, not a prior
// resolver in the same pass).
//
// Input precondition: Terms is populated. Confidence: 0.9, lower than
// DefinedTermResolver's 1.0 since an unquoted later mention is a weaker
// signal than the original quoted definition.
type TermReferenceResolver struct {
	Terms map[string]string // normalized -> canonical display name
}

func (TermReferenceResolver) Name() string { return "TermReferenceResolver" }

func (r TermReferenceResolver) Run(line *llline.Line) []string {
	if len(r.Terms) == 0 {
		return nil
	}
	defined := line.Find(AttrDefinedTerm)

	type cand struct {
		norm string
		name string
	}
	cands := make([]cand, 0, len(r.Terms))
	for norm, name := range r.Terms {
		cands = append(cands, cand{norm, name})
	}
	sort.Slice(cands, func(i, j int) bool { return len(cands[i].norm) > len(cands[j].norm) })

	lower := strings.ToLower(line.Text())
	claimed := make([]bool, len(lower)+1)

	for _, c := range cands {
		start := 0
		for {
			i := strings.Index(lower[start:], c.norm)
			if i < 0 {
				break
			}
			pos := start + i
			end := pos + len(c.norm)
			start = end
			if !wordAligned(lower, pos, end) {
				continue
			}
			if rangeClaimed(claimed, pos, end) {
				continue
			}
			rng, ok := tokenRangeForByteSpan(line, pos, end)
			if !ok {
				continue
			}
			if overlapsAny(defined, rng) {
				continue
			}
			markClaimed(claimed, pos, end)
			line.Add(AttrTermReference, rng, TermReference{
				Name:           c.name,
				NormalizedName: c.norm,
				Confidence:     0.9,
			})
		}
	}
	return nil
}

func rangeClaimed(claimed []bool, start, end int) bool {
	for k := start; k < end; k++ {
		if claimed[k] {
			return true
		}
	}
	return false
}

func markClaimed(claimed []bool, start, end int) {
	for k := start; k < end; k++ {
		claimed[k] = true
	}
}

func overlapsAny(found []llline.Found, r llline.Range) bool {
	for _, f := range found {
		if f.Range.Overlaps(r) {
			return true
		}
	}
	return false
}
