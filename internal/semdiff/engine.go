package semdiff

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/latticework/contractdiff/internal/align"
	"github.com/latticework/contractdiff/internal/docbuild"
	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/link"
	"github.com/latticework/contractdiff/internal/resolve"
)

// Config holds the thresholds the engine consults. These mirror, but
// are independent of, align.SimilarityConfig — the diff engine and the
// aligner are separate engines per spec.md §5's concurrency model, each
// with its own counters and config.
type Config struct {
	ExactMatchThreshold float64
	ReviewThreshold     float64
}

// DefaultConfig mirrors align.DefaultSimilarityConfig's relevant fields.
func DefaultConfig() Config {
	return Config{ExactMatchThreshold: 0.90, ReviewThreshold: 0.75}
}

// Engine is the SemanticDiffEngine. Each instance has its own atomic
// change-id counter, so ids are unique within one instance's output and
// a single instance is safe to reuse (spec.md §5); two separate
// instances both start at chg_1.
type Engine struct {
	nextID int64
}

// NewEngine returns a fresh engine with its counter at zero.
func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) nextChangeID() string {
	n := atomic.AddInt64(&e.nextID, 1)
	return fmt.Sprintf("chg_%d", n)
}

// Compute implements spec.md §4.6: turn an AlignmentResult plus the two
// documents' extracted attributes into a SemanticDiffResult.
// revLinked carries the revised document's resolved references, used to
// add a warning for each revised reference into a removed section.
func (e *Engine) Compute(docA, docB *docmodel.Document, structA, structB *docbuild.Structure, alignment align.Result, revLinked link.Result, cfg Config) Result {
	byStartA := indexByStart(structA)
	byStartB := indexByStart(structB)

	var structural, perPair, temporal []SemanticChange
	termChanges := e.computeTermDefinitionChanges(docA, docB, cfg)

	var warnings []string

	for _, pair := range alignment.Pairs {
		switch pair.Type {
		case align.ExactMatch:
			if pair.Confidence < cfg.ExactMatchThreshold {
				perPair = append(perPair, e.compareObligations(docA, docB, byStartA, byStartB, pair, cfg)...)
				temporal = append(temporal, e.compareTemporal(docA, docB, byStartA, byStartB, pair, cfg)...)
			}
		case align.Renumbered:
			if pair.Confidence < cfg.ExactMatchThreshold {
				perPair = append(perPair, e.compareObligations(docA, docB, byStartA, byStartB, pair, cfg)...)
				temporal = append(temporal, e.compareTemporal(docA, docB, byStartA, byStartB, pair, cfg)...)
			}
		case align.Modified, align.Moved:
			perPair = append(perPair, e.compareObligations(docA, docB, byStartA, byStartB, pair, cfg)...)
			temporal = append(temporal, e.compareTemporal(docA, docB, byStartA, byStartB, pair, cfg)...)
		case align.Inserted:
			structural = append(structural, e.insertedChange(pair))
		case align.Deleted:
			ch, w := e.deletedChange(docA, byStartA, pair, revLinked)
			structural = append(structural, ch)
			warnings = append(warnings, w...)
		case align.Split:
			structural = append(structural, e.splitMergeChange(pair, "split"))
		case align.Merged:
			structural = append(structural, e.splitMergeChange(pair, "merged"))
		}
	}

	var all []SemanticChange
	all = append(all, structural...)
	all = append(all, perPair...)
	all = append(all, termChanges...)
	all = append(all, temporal...)

	result := Result{Changes: all, Warnings: warnings}
	result.Summary = summarize(all)
	result.PartySummaries = partySummaries(all)
	return result
}

// ReviewCandidatesOf extracts DiffReviewCandidates from an already-computed
// Result (spec.md §4.6.3: changes with confidence < review_threshold).
func ReviewCandidatesOf(r Result, threshold float64) ReviewCandidates {
	var out []SemanticChange
	for _, c := range r.Changes {
		if c.Confidence < threshold {
			out = append(out, c)
		}
	}
	return ReviewCandidates{Changes: out, Threshold: threshold}
}

func indexByStart(s *docbuild.Structure) map[int]*docbuild.Node {
	out := make(map[int]*docbuild.Node)
	for _, n := range s.Flatten() {
		out[n.StartLine] = n
	}
	return out
}

func nodeFor(ref align.SectionRef, byStart map[int]*docbuild.Node) *docbuild.Node {
	return byStart[ref.StartLine]
}

func lineRange(doc *docmodel.Document, n *docbuild.Node) (int, int) {
	end := n.EndLine
	if end < 0 || end >= len(doc.Lines) {
		end = len(doc.Lines) - 1
	}
	return n.StartLine, end
}

func obligationsIn(doc *docmodel.Document, n *docbuild.Node) []resolve.Obligation {
	if n == nil {
		return nil
	}
	start, end := lineRange(doc, n)
	var out []resolve.Obligation
	for i := start; i <= end && i < len(doc.Lines); i++ {
		for _, f := range doc.Lines[i].Find(resolve.AttrObligation) {
			out = append(out, f.Value.(resolve.Obligation))
		}
	}
	return out
}

func wordSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:()\"'")
		if w != "" {
			out[w] = true
		}
	}
	return out
}

func wordJaccard(a, b string) float64 {
	sa, sb := wordSet(a), wordSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1.0
	}
	inter := 0
	for k := range sa {
		if sb[k] {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// compareObligations implements spec.md §4.6.2's ObligationModal,
// ObligationCondition, Obligor/Beneficiary change detection.
func (e *Engine) compareObligations(docA, docB *docmodel.Document, byStartA, byStartB map[int]*docbuild.Node, pair align.Pair, cfg Config) []SemanticChange {
	var out []SemanticChange
	if len(pair.Original) == 0 || len(pair.Revised) == 0 {
		return out
	}
	var origObl, revObl []resolve.Obligation
	for _, ref := range pair.Original {
		origObl = append(origObl, obligationsIn(docA, nodeFor(ref, byStartA))...)
	}
	for _, ref := range pair.Revised {
		revObl = append(revObl, obligationsIn(docB, nodeFor(ref, byStartB))...)
	}

	usedRev := make([]bool, len(revObl))
	for _, o := range origObl {
		bestJ := -1
		bestScore := 0.0
		for j, r := range revObl {
			if usedRev[j] {
				continue
			}
			if o.Obligor.Normalized != r.Obligor.Normalized {
				continue
			}
			score := wordJaccard(o.ActionText, r.ActionText)
			if score >= 0.7 && score > bestScore {
				bestScore = score
				bestJ = j
			}
		}
		if bestJ < 0 {
			continue
		}
		usedRev[bestJ] = true
		r := revObl[bestJ]
		conf := minConf(pair.Confidence, o.Confidence, r.Confidence)

		if o.Type != r.Type {
			out = append(out, e.modalChange(o, r, conf, pair))
		}

		condOut := e.conditionChange(o, r, conf, pair)
		if condOut != nil {
			out = append(out, *condOut)
		}

		if o.Obligor.Normalized != r.Obligor.Normalized {
			out = append(out, SemanticChange{
				ChangeID: e.nextChangeID(), Type: ChangeObligorChange, Risk: RiskMedium,
				PartyFrom: o.Obligor.Text, PartyTo: r.Obligor.Text, Confidence: conf,
				Explanation: fmt.Sprintf("obligor changed from %q to %q", o.Obligor.Text, r.Obligor.Text),
				SourceSection: pairLabel(pair),
			})
		}
		if (o.Beneficiary == nil) != (r.Beneficiary == nil) ||
			(o.Beneficiary != nil && r.Beneficiary != nil && o.Beneficiary.Normalized != r.Beneficiary.Normalized) {
			var from, to string
			if o.Beneficiary != nil {
				from = o.Beneficiary.Text
			}
			if r.Beneficiary != nil {
				to = r.Beneficiary.Text
			}
			out = append(out, SemanticChange{
				ChangeID: e.nextChangeID(), Type: ChangeBeneficiaryChange, Risk: RiskMedium,
				PartyFrom: from, PartyTo: to, Confidence: conf,
				Explanation:   fmt.Sprintf("beneficiary changed from %q to %q", from, to),
				SourceSection: pairLabel(pair),
			})
		}
	}
	return out
}

func minConf(vals ...float64) float64 {
	m := 1.0
	for _, v := range vals {
		if v < m {
			m = v
		}
	}
	return m
}

func pairLabel(pair align.Pair) string {
	if len(pair.Original) > 0 {
		return pair.Original[0].CanonicalID
	}
	if len(pair.Revised) > 0 {
		return pair.Revised[0].CanonicalID
	}
	return ""
}

// modalChange classifies an obligation type transition per the risk
// table in spec.md §4.6.2.
func (e *Engine) modalChange(o, r resolve.Obligation, conf float64, pair align.Pair) SemanticChange {
	risk := RiskMedium
	var impacts []PartyImpact
	obligor := o.Obligor.Text
	beneficiary := ""
	if o.Beneficiary != nil {
		beneficiary = o.Beneficiary.Text
	}

	switch {
	case o.Type == resolve.ObligationDuty && r.Type == resolve.ObligationPermission:
		risk = RiskCritical
		impacts = append(impacts, PartyImpact{Party: obligor, Direction: Favorable, Rationale: "duty relaxed to a permission"})
		if beneficiary != "" {
			impacts = append(impacts, PartyImpact{Party: beneficiary, Direction: Unfavorable, Rationale: "counterparty no longer bound"})
		}
	case o.Type == resolve.ObligationPermission && r.Type == resolve.ObligationDuty:
		risk = RiskHigh
		impacts = append(impacts, PartyImpact{Party: obligor, Direction: Unfavorable, Rationale: "permission tightened into a duty"})
		if beneficiary != "" {
			impacts = append(impacts, PartyImpact{Party: beneficiary, Direction: Favorable, Rationale: "counterparty now bound"})
		}
	case o.Type == resolve.ObligationDuty && r.Type == resolve.ObligationProhibition:
		risk = RiskCritical
		impacts = append(impacts, PartyImpact{Party: obligor, Direction: Neutral, Rationale: "duty replaced by a prohibition"})
	case o.Type == resolve.ObligationDeclaration || r.Type == resolve.ObligationDeclaration:
		risk = RiskMedium
	}

	return SemanticChange{
		ChangeID: e.nextChangeID(), Type: ChangeObligationModal, Risk: risk,
		ModalFrom: string(o.Type), ModalTo: string(r.Type), ActionSnippet: r.ActionText,
		Obligor: obligor, Beneficiary: beneficiary, PartyImpacts: impacts, Confidence: conf,
		Explanation:   fmt.Sprintf("obligation on %q changed from %s to %s", obligor, o.Type, r.Type),
		SourceSection: pairLabel(pair),
	}
}

func conditionTexts(o resolve.Obligation) []string {
	var out []string
	for _, c := range o.Conditions {
		out = append(out, normalizeCondition(c.Text))
	}
	sort.Strings(out)
	return out
}

func normalizeCondition(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func (e *Engine) conditionChange(o, r resolve.Obligation, conf float64, pair align.Pair) *SemanticChange {
	before := conditionTexts(o)
	after := conditionTexts(r)
	if strings.Join(before, "|") == strings.Join(after, "|") {
		return nil
	}
	kind := ConditionModified
	text := strings.Join(after, "; ")
	switch {
	case len(before) == 0 && len(after) > 0:
		kind = ConditionAdded
	case len(before) > 0 && len(after) == 0:
		kind = ConditionRemoved
		text = strings.Join(before, "; ")
	}
	return &SemanticChange{
		ChangeID: e.nextChangeID(), Type: ChangeObligationCondition, Risk: RiskMedium,
		ConditionKind: kind, ConditionText: text, Confidence: conf,
		Explanation:   fmt.Sprintf("condition on obligation %s", kind),
		SourceSection: pairLabel(pair),
	}
}

// compareTemporal implements spec.md §4.6.2's greedy temporal matching.
func (e *Engine) compareTemporal(docA, docB *docmodel.Document, byStartA, byStartB map[int]*docbuild.Node, pair align.Pair, cfg Config) []SemanticChange {
	var origT, revT []resolve.Temporal
	for _, ref := range pair.Original {
		origT = append(origT, temporalsIn(docA, nodeFor(ref, byStartA))...)
	}
	for _, ref := range pair.Revised {
		revT = append(revT, temporalsIn(docB, nodeFor(ref, byStartB))...)
	}

	usedOrig := make([]bool, len(origT))
	var out []SemanticChange
	for _, rt := range revT {
		bestI := -1
		bestDiff := -1
		for i, ot := range origT {
			if usedOrig[i] {
				continue
			}
			if ot.Kind != rt.Kind {
				continue
			}
			if ot.Kind == resolve.TemporalDuration && ot.Unit != rt.Unit {
				continue
			}
			if ot.Kind == resolve.TemporalDeadline && ot.DeadlineKind != rt.DeadlineKind {
				continue
			}
			diff := ot.Value - rt.Value
			if diff < 0 {
				diff = -diff
			}
			if bestI < 0 || diff < bestDiff {
				bestI = i
				bestDiff = diff
			}
		}
		if bestI < 0 {
			continue
		}
		usedOrig[bestI] = true
		ot := origT[bestI]
		if ot.Raw == rt.Raw {
			continue
		}
		conf := minConf(pair.Confidence, ot.Confidence, rt.Confidence)
		out = append(out, SemanticChange{
			ChangeID: e.nextChangeID(), Type: ChangeTemporal, Risk: RiskMedium,
			TemporalFrom: ot.Raw, TemporalTo: rt.Raw, TemporalAnchor: rt.Anchor, Confidence: conf,
			Explanation:   fmt.Sprintf("temporal value changed from %q to %q", ot.Raw, rt.Raw),
			SourceSection: pairLabel(pair),
		})
	}
	return out
}

func temporalsIn(doc *docmodel.Document, n *docbuild.Node) []resolve.Temporal {
	if n == nil {
		return nil
	}
	start, end := lineRange(doc, n)
	var out []resolve.Temporal
	for i := start; i <= end && i < len(doc.Lines); i++ {
		for _, f := range doc.Lines[i].Find(resolve.AttrTemporal) {
			out = append(out, f.Value.(resolve.Temporal))
		}
	}
	return out
}

func (e *Engine) insertedChange(pair align.Pair) SemanticChange {
	title := ""
	if len(pair.Revised) > 0 {
		title = pair.Revised[0].Title
	}
	return SemanticChange{
		ChangeID: e.nextChangeID(), Type: ChangeStructural, Risk: RiskMedium,
		StructuralKind: SectionAdded, Confidence: pair.Confidence,
		Explanation:   fmt.Sprintf("section %q added", title),
		SourceSection: pairLabel(pair),
	}
}

func (e *Engine) deletedChange(docA *docmodel.Document, byStartA map[int]*docbuild.Node, pair align.Pair, revLinked link.Result) (SemanticChange, []string) {
	var risk RiskLevel = RiskLow
	canonical := ""
	if len(pair.Original) > 0 {
		canonical = pair.Original[0].CanonicalID
		node := nodeFor(pair.Original[0], byStartA)
		for _, o := range obligationsIn(docA, node) {
			if o.Type == resolve.ObligationDuty || o.Type == resolve.ObligationProhibition {
				risk = maxRisk(risk, RiskHigh)
			} else {
				risk = maxRisk(risk, RiskMedium)
			}
		}
	}

	var warnings []string
	for _, l := range revLinked.References {
		if l.Reference.Target == nil {
			continue
		}
		if l.Reference.Target.Canonical() != canonical {
			continue
		}
		if l.Resolution.Status == link.StatusUnresolved {
			warnings = append(warnings, fmt.Sprintf("reference to removed section %s is now dangling", canonical))
		} else if l.Resolution.Status == link.StatusResolved {
			warnings = append(warnings, fmt.Sprintf("reference to removed section %s now resolves elsewhere (%s)", canonical, l.Resolution.Canonical))
		}
	}

	return SemanticChange{
		ChangeID: e.nextChangeID(), Type: ChangeStructural, Risk: risk,
		StructuralKind: SectionRemoved, Confidence: pair.Confidence,
		Explanation:   fmt.Sprintf("section %s removed", canonical),
		SourceSection: canonical,
	}, warnings
}

func (e *Engine) splitMergeChange(pair align.Pair, kind string) SemanticChange {
	return SemanticChange{
		ChangeID: e.nextChangeID(), Type: ChangeStructural, Risk: RiskMedium,
		StructuralKind: SectionMoved, Confidence: pair.Confidence,
		Explanation:   fmt.Sprintf("section content was %s across %d:%d sections", kind, len(pair.Original), len(pair.Revised)),
		SourceSection: pairLabel(pair),
	}
}

// computeTermDefinitionChanges implements spec.md §4.6.2's document-level
// TermDefinition comparison, independent of section alignment.
func (e *Engine) computeTermDefinitionChanges(docA, docB *docmodel.Document, cfg Config) []SemanticChange {
	defsA := collectDefinedTerms(docA)
	defsB := collectDefinedTerms(docB)

	var names []string
	for name := range defsA {
		if _, ok := defsB[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var out []SemanticChange
	for _, name := range names {
		a, b := defsA[name], defsB[name]
		if normalizeCondition(a.Definition) == normalizeCondition(b.Definition) {
			continue
		}
		blast := blastRadius(docB, name)
		risk := RiskMedium
		for _, pos := range blast {
			if insideDutyOrProhibition(docB, pos) {
				risk = RiskHigh
				break
			}
		}
		out = append(out, SemanticChange{
			ChangeID: e.nextChangeID(), Type: ChangeTermDefinition, Risk: risk,
			Term: name, DefBefore: a.Definition, DefAfter: b.Definition, BlastRadius: blast,
			Confidence:  minConf(a.Confidence, b.Confidence),
			Explanation: fmt.Sprintf("definition of %q changed", name),
		})
	}
	return out
}

func collectDefinedTerms(doc *docmodel.Document) map[string]resolve.DefinedTerm {
	out := make(map[string]resolve.DefinedTerm)
	for _, line := range doc.Lines {
		for _, f := range line.Find(resolve.AttrDefinedTerm) {
			dt := f.Value.(resolve.DefinedTerm)
			out[dt.NormalizedName] = dt
		}
	}
	return out
}

func blastRadius(doc *docmodel.Document, normalizedName string) []docmodel.Position {
	var out []docmodel.Position
	for i, line := range doc.Lines {
		for _, f := range line.Find(resolve.AttrTermReference) {
			tr := f.Value.(resolve.TermReference)
			if tr.NormalizedName == normalizedName {
				out = append(out, docmodel.Position{Line: i, Token: f.Range.Start})
			}
		}
	}
	return out
}

func insideDutyOrProhibition(doc *docmodel.Document, pos docmodel.Position) bool {
	if pos.Line < 0 || pos.Line >= len(doc.Lines) {
		return false
	}
	line := doc.Lines[pos.Line]
	for _, f := range line.Find(resolve.AttrObligation) {
		ob := f.Value.(resolve.Obligation)
		if ob.Type != resolve.ObligationDuty && ob.Type != resolve.ObligationProhibition {
			continue
		}
		if ob.ActionRange.Start <= pos.Token && pos.Token <= ob.ActionRange.End {
			return true
		}
	}
	return false
}

func summarize(changes []SemanticChange) DiffSummary {
	s := DiffSummary{ByRisk: make(map[RiskLevel]int), ByType: make(map[ChangeType]int)}
	for _, c := range changes {
		s.Total++
		s.ByRisk[c.Risk]++
		s.ByType[c.Type]++
	}
	return s
}

func partySummaries(changes []SemanticChange) []PartySummary {
	byParty := make(map[string]*PartySummary)
	get := func(name string) *PartySummary {
		if name == "" {
			return nil
		}
		if p, ok := byParty[name]; ok {
			return p
		}
		p := &PartySummary{Party: name}
		byParty[name] = p
		return p
	}
	for _, c := range changes {
		for _, imp := range c.PartyImpacts {
			p := get(imp.Party)
			if p == nil {
				continue
			}
			switch imp.Direction {
			case Favorable:
				p.Favorable++
			case Unfavorable:
				p.Unfavorable++
			default:
				p.Neutral++
			}
		}
		if c.Type == ChangeObligationModal {
			if p := get(c.Obligor); p != nil {
				if c.ModalTo == string(resolve.ObligationDuty) {
					p.NetDutyChange++
				} else if c.ModalFrom == string(resolve.ObligationDuty) {
					p.NetDutyChange--
				}
				if c.ModalTo == string(resolve.ObligationPermission) {
					p.NetPermissionChange++
				} else if c.ModalFrom == string(resolve.ObligationPermission) {
					p.NetPermissionChange--
				}
			}
		}
	}
	var names []string
	for n := range byParty {
		names = append(names, n)
	}
	sort.Strings(names)
	var out []PartySummary
	for _, n := range names {
		out = append(out, *byParty[n])
	}
	return out
}
