package align

import (
	"fmt"
	"sort"

	"github.com/latticework/contractdiff/internal/docbuild"
	"github.com/latticework/contractdiff/internal/docmodel"
)

// DocumentAligner implements the 5-pass matching algorithm of spec.md
// §4.5.1, grounded in the teacher's pkg/analysis/crossref.go
// (CrossRefAnalyzer.CompareDocuments drives the same original/revised,
// unmatched-tracking shape) and pkg/extract/rulesdiff.go for the
// per-pair classification idiom.
type DocumentAligner struct {
	Config SimilarityConfig
}

// NewDocumentAligner builds an aligner with the default thresholds.
func NewDocumentAligner() *DocumentAligner {
	return &DocumentAligner{Config: DefaultSimilarityConfig()}
}

func toRef(n *docbuild.Node) SectionRef {
	return SectionRef{
		CanonicalID: n.Header.Identifier.Canonical(),
		Title:       n.Header.Title,
		StartLine:   n.StartLine,
		Depth:       n.Depth,
	}
}

// ComputeCandidates runs passes 1-4 and returns proposed candidates plus
// whatever is still unmatched, without committing anything (spec.md
// §4.5.1's compute_candidates / review step).
func (a *DocumentAligner) ComputeCandidates(docA, docB *docmodel.Document, structA, structB *docbuild.Structure) Candidates {
	cfg := a.Config
	origNodes := structA.Flatten()
	revNodes := structB.Flatten()

	usedOrig := make(map[*docbuild.Node]bool)
	usedRev := make(map[*docbuild.Node]bool)
	var candidates []Candidate
	nextID := 1
	newID := func() string {
		id := fmt.Sprintf("cand_%d", nextID)
		nextID++
		return id
	}

	// Pass 1: ExactMatch by canonical id, on the remaining unused pool.
	revByCanon := make(map[string][]*docbuild.Node)
	for _, r := range revNodes {
		c := r.Header.Identifier.Canonical()
		revByCanon[c] = append(revByCanon[c], r)
	}
	for _, o := range origNodes {
		c := o.Header.Identifier.Canonical()
		matches := revByCanon[c]
		if len(matches) != 1 {
			continue
		}
		r := matches[0]
		if usedRev[r] {
			continue
		}
		sigs := signals(docA, docB, o, r, cfg, 0, 0, 1, 1)
		score := weightedScore(sigs)
		if score < cfg.ExactMatchThreshold {
			continue
		}
		usedOrig[o] = true
		usedRev[r] = true
		candidates = append(candidates, Candidate{
			ID: newID(), Original: []SectionRef{toRef(o)}, Revised: []SectionRef{toRef(r)},
			ProposedType: ExactMatch, Confidence: score, Signals: sigs,
			OriginalExcerpts: excerpt(docA, o, cfg), RevisedExcerpts: excerpt(docB, r, cfg),
		})
	}

	// Pass 2: Renumbered, by normalized title match among the rest.
	remainingOrig := filterNodes(origNodes, usedOrig)
	remainingRev := filterNodes(revNodes, usedRev)
	revByTitle := make(map[string][]*docbuild.Node)
	for _, r := range remainingRev {
		key := normalizedTitleKey(r.Header.Title)
		revByTitle[key] = append(revByTitle[key], r)
	}
	for _, o := range remainingOrig {
		key := normalizedTitleKey(o.Header.Title)
		matches := revByTitle[key]
		var pick *docbuild.Node
		for _, r := range matches {
			if !usedRev[r] && r.Depth == o.Depth {
				pick = r
				break
			}
		}
		if pick == nil || key == "" {
			continue
		}
		sigs := signals(docA, docB, o, pick, cfg, 0, 0, 1, 1)
		score := weightedScore(sigs)
		if score < cfg.ModificationThreshold {
			continue
		}
		usedOrig[o] = true
		usedRev[pick] = true
		typ := Renumbered
		if o.Header.Identifier.Canonical() == pick.Header.Identifier.Canonical() {
			typ = Modified
		}
		conf := score
		if typ == Renumbered {
			conf = 0.95 * jaccard(titleTokens(o.Header.Title), titleTokens(pick.Header.Title))
		}
		candidates = append(candidates, Candidate{
			ID: newID(), Original: []SectionRef{toRef(o)}, Revised: []SectionRef{toRef(pick)},
			ProposedType: typ, Confidence: conf, Signals: sigs,
			OriginalExcerpts: excerpt(docA, o, cfg), RevisedExcerpts: excerpt(docB, pick, cfg),
		})
	}

	// Pass 3: Hungarian assignment over everything still unmatched, by
	// weighted similarity cost, for Modified/Moved classification.
	remainingOrig = filterNodes(origNodes, usedOrig)
	remainingRev = filterNodes(revNodes, usedRev)
	if len(remainingOrig) > 0 && len(remainingRev) > 0 {
		cost := make([][]float64, len(remainingOrig))
		sigCache := make([][][]Signal, len(remainingOrig))
		for i, o := range remainingOrig {
			cost[i] = make([]float64, len(remainingRev))
			sigCache[i] = make([][]Signal, len(remainingRev))
			for j, r := range remainingRev {
				sigs := signals(docA, docB, o, r, cfg, i, j, len(remainingOrig), len(remainingRev))
				score := weightedScore(sigs)
				sigCache[i][j] = sigs
				cost[i][j] = 1.0 - score
			}
		}
		assign := kuhnMunkresMin(cost)
		for i, j := range assign {
			if j < 0 {
				continue
			}
			o, r := remainingOrig[i], remainingRev[j]
			sigs := sigCache[i][j]
			score := weightedScore(sigs)
			if score < cfg.ModificationThreshold {
				continue
			}
			usedOrig[o] = true
			usedRev[r] = true
			typ := Modified
			if score >= cfg.ModificationThreshold && o.Header.Identifier.Canonical() != r.Header.Identifier.Canonical() {
				typ = Moved
			}
			reason := ""
			if score < cfg.ReviewThreshold {
				reason = "similarity score below review threshold"
			}
			candidates = append(candidates, Candidate{
				ID: newID(), Original: []SectionRef{toRef(o)}, Revised: []SectionRef{toRef(r)},
				ProposedType: typ, Confidence: score, Signals: sigs, UncertaintyReason: reason,
				OriginalExcerpts: excerpt(docA, o, cfg), RevisedExcerpts: excerpt(docB, r, cfg),
			})
		}
	}

	// Pass 4: Split/Merge greedy detection among what's still unmatched.
	remainingOrig = filterNodes(origNodes, usedOrig)
	remainingRev = filterNodes(revNodes, usedRev)
	candidates = append(candidates, a.detectSplitMerge(docA, docB, remainingOrig, remainingRev, usedOrig, usedRev, &nextID)...)

	// Pass 5: whatever's left is Deleted (orig) or Inserted (rev).
	var unpairedOrig, unpairedRev []SectionRef
	for _, o := range origNodes {
		if !usedOrig[o] {
			unpairedOrig = append(unpairedOrig, toRef(o))
		}
	}
	for _, r := range revNodes {
		if !usedRev[r] {
			unpairedRev = append(unpairedRev, toRef(r))
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	return Candidates{
		Candidates:       candidates,
		UnpairedOriginal: unpairedOrig,
		UnpairedRevised:  unpairedRev,
		ConfigSnapshot:   cfg,
	}
}

func filterNodes(nodes []*docbuild.Node, used map[*docbuild.Node]bool) []*docbuild.Node {
	var out []*docbuild.Node
	for _, n := range nodes {
		if !used[n] {
			out = append(out, n)
		}
	}
	return out
}

func normalizedTitleKey(title string) string {
	toks := titleTokens(title)
	if len(toks) == 0 {
		return ""
	}
	var keys []string
	for k := range toks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += k + "|"
	}
	return out
}

// detectSplitMerge greedily groups remaining originals/revisions whose
// combined content is jointly similar to a counterpart on the other
// side, per spec.md §4.5.1 Pass 4. Candidates below
// SplitMergeAcceptThreshold are dropped (left unmatched for pass 5).
func (a *DocumentAligner) detectSplitMerge(docA, docB *docmodel.Document, remOrig, remRev []*docbuild.Node, usedOrig, usedRev map[*docbuild.Node]bool, nextID *int) []Candidate {
	cfg := a.Config
	var out []Candidate
	newID := func() string {
		id := fmt.Sprintf("cand_%d", *nextID)
		*nextID++
		return id
	}

	// Split: one remaining original whose bag is covered by 2+ remaining
	// revised sections combined.
	for _, o := range remOrig {
		if usedOrig[o] {
			continue
		}
		bagO := sectionBag(docA, o)
		var group []*docbuild.Node
		combined := make(map[string]bool)
		for _, r := range remRev {
			if usedRev[r] {
				continue
			}
			sig := jaccard(bagO, sectionBag(docB, r))
			if sig < cfg.SplitMergeCandidateThreshold {
				continue
			}
			group = append(group, r)
			for k := range sectionBag(docB, r) {
				combined[k] = true
			}
		}
		if len(group) < 2 {
			continue
		}
		score := jaccard(bagO, combined)
		if score < cfg.SplitMergeAcceptThreshold {
			continue
		}
		usedOrig[o] = true
		var refs []SectionRef
		var excerpts string
		for _, r := range group {
			usedRev[r] = true
			refs = append(refs, toRef(r))
			excerpts += excerpt(docB, r, cfg) + " "
		}
		out = append(out, Candidate{
			ID: newID(), Original: []SectionRef{toRef(o)}, Revised: refs,
			ProposedType: Split, Confidence: score,
			Signals:          []Signal{{Name: "semantic", Score: score, Weight: 1.0}},
			OriginalExcerpts: excerpt(docA, o, cfg), RevisedExcerpts: excerpts,
		})
	}

	// Merge: symmetric case, 2+ remaining originals covered by one
	// remaining revised section.
	for _, r := range remRev {
		if usedRev[r] {
			continue
		}
		bagR := sectionBag(docB, r)
		var group []*docbuild.Node
		combined := make(map[string]bool)
		for _, o := range remOrig {
			if usedOrig[o] {
				continue
			}
			sig := jaccard(bagR, sectionBag(docA, o))
			if sig < cfg.SplitMergeCandidateThreshold {
				continue
			}
			group = append(group, o)
			for k := range sectionBag(docA, o) {
				combined[k] = true
			}
		}
		if len(group) < 2 {
			continue
		}
		score := jaccard(bagR, combined)
		if score < cfg.SplitMergeAcceptThreshold {
			continue
		}
		usedRev[r] = true
		var refs []SectionRef
		var excerpts string
		for _, o := range group {
			usedOrig[o] = true
			refs = append(refs, toRef(o))
			excerpts += excerpt(docA, o, cfg) + " "
		}
		out = append(out, Candidate{
			ID: newID(), Original: refs, Revised: []SectionRef{toRef(r)},
			ProposedType: Merged, Confidence: score,
			Signals:          []Signal{{Name: "semantic", Score: score, Weight: 1.0}},
			OriginalExcerpts: excerpts, RevisedExcerpts: excerpt(docB, r, cfg),
		})
	}

	return out
}

func excerpt(doc *docmodel.Document, n *docbuild.Node, cfg SimilarityConfig) string {
	text := sectionText(doc, n)
	words := splitWords(text)
	budget := cfg.ExcerptTokenBudget
	if budget <= 0 || len(words) <= budget {
		return text
	}
	out := ""
	for i := 0; i < budget; i++ {
		if i > 0 {
			out += " "
		}
		out += words[i]
	}
	return out + " ..."
}

func splitWords(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// ApplyHints applies external review hints to a Candidates set,
// deterministically and independent of hint order (spec.md §4.5.3):
// hints are grouped by CandidateID and applied
// in a fixed precedence (force_no_match > force_match > override_type >
// adjust_confidence > semantic_context) regardless of input order.
func (a *DocumentAligner) ApplyHints(cand Candidates, hints []Hint) Candidates {
	byCandidate := make(map[string][]Hint)
	for _, h := range hints {
		byCandidate[h.CandidateID] = append(byCandidate[h.CandidateID], h)
	}

	precedence := map[HintType]int{
		HintForceNoMatch:    0,
		HintForceMatch:      1,
		HintOverrideType:    2,
		HintAdjustConfidence: 3,
		HintSemanticContext: 4,
	}

	var out []Candidate
	for _, c := range cand.Candidates {
		hs := byCandidate[c.ID]
		sort.SliceStable(hs, func(i, j int) bool { return precedence[hs[i].Type] < precedence[hs[j].Type] })

		dropped := false
		for _, h := range hs {
			switch h.Type {
			case HintForceNoMatch:
				dropped = true
			case HintForceMatch:
				c.ProposedType = h.ForceMatchType
				c.Confidence = clamp01(h.Confidence)
			case HintOverrideType:
				c.ProposedType = h.NewType
			case HintAdjustConfidence:
				c.Confidence = clamp01(c.Confidence + h.Delta)
			case HintSemanticContext:
				// annotation only; does not change type or confidence.
			}
		}
		if dropped {
			cand.UnpairedOriginal = append(cand.UnpairedOriginal, c.Original...)
			cand.UnpairedRevised = append(cand.UnpairedRevised, c.Revised...)
			continue
		}
		out = append(out, c)
	}
	cand.Candidates = out
	return cand
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Align is the convenience entry point: compute candidates, apply no
// hints (or the given ones), and commit every surviving candidate into
// a final Result.
func (a *DocumentAligner) Align(docA, docB *docmodel.Document, structA, structB *docbuild.Structure, hints []Hint) Result {
	cand := a.ComputeCandidates(docA, docB, structA, structB)
	if len(hints) > 0 {
		cand = a.ApplyHints(cand, hints)
	}

	var result Result
	for _, c := range cand.Candidates {
		result.Pairs = append(result.Pairs, Pair{
			Original: c.Original, Revised: c.Revised, Type: c.ProposedType,
			Confidence: c.Confidence, Signals: c.Signals,
		})
	}
	for _, o := range cand.UnpairedOriginal {
		result.Pairs = append(result.Pairs, Pair{
			Original: []SectionRef{o}, Type: Deleted, Confidence: a.Config.UnmatchedConfidence,
			Signals: []Signal{{Name: "no_match_found", Score: 0, Weight: 1}},
		})
	}
	for _, r := range cand.UnpairedRevised {
		result.Pairs = append(result.Pairs, Pair{
			Revised: []SectionRef{r}, Type: Inserted, Confidence: a.Config.UnmatchedConfidence,
			Signals: []Signal{{Name: "no_match_found", Score: 0, Weight: 1}},
		})
	}

	result.Stats.ByType = make(map[Type]int)
	for _, p := range result.Pairs {
		result.Stats.ByType[p.Type]++
		result.Stats.Total++
	}
	return result
}
