package contractdiff

import (
	"github.com/latticework/contractdiff/internal/align"
	"github.com/latticework/contractdiff/internal/docbuild"
	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/semdiff"
	"github.com/latticework/contractdiff/internal/tokenalign"
)

// SchemaVersion is the stable wire-format version number (spec.md
// §6.2). Bump it only on a breaking change to WireResult's shape.
const SchemaVersion = 1

// WireSectionRef is the JSON shape of an align.SectionRef.
type WireSectionRef struct {
	CanonicalID string `json:"canonical_id"`
	Title       string `json:"title,omitempty"`
}

// WireTokenDiffEntry is one simplified AlignedTokenPair entry embedded
// in a WirePair's token_diffs array (spec.md §6.2).
type WireTokenDiffEntry struct {
	Status string `json:"status"`
	Text   string `json:"text"`
	Tag    string `json:"tag,omitempty"`
}

// WirePair is one entry of ComparisonResult.aligned_pairs.
type WirePair struct {
	PairID        string               `json:"pair_id"`
	AlignmentType string               `json:"alignment_type"`
	Confidence    float64              `json:"confidence"`
	Original      []WireSectionRef     `json:"original,omitempty"`
	Revised       []WireSectionRef     `json:"revised,omitempty"`
	SectionIDs    []string             `json:"section_ids,omitempty"`
	OriginalTexts string               `json:"original_texts,omitempty"`
	RevisedTexts  string               `json:"revised_texts,omitempty"`
	TokenDiffs    []WireTokenDiffEntry `json:"token_diffs,omitempty"`
}

// WirePartyImpact is the JSON shape of a semdiff.PartyImpact.
type WirePartyImpact struct {
	Party     string `json:"party"`
	Direction string `json:"direction"`
	Rationale string `json:"rationale,omitempty"`
}

// WireChange is the JSON shape of a semdiff.SemanticChange.
type WireChange struct {
	ChangeID      string            `json:"change_id"`
	ChangeType    string            `json:"change_type"`
	Risk          string            `json:"risk"`
	PartyImpacts  []WirePartyImpact `json:"party_impacts,omitempty"`
	Explanation   string            `json:"explanation,omitempty"`
	Confidence    float64           `json:"confidence"`
	SourceSection string            `json:"source_section,omitempty"`
}

// WireDiffSummary is the JSON shape of a semdiff.DiffSummary.
type WireDiffSummary struct {
	Total  int            `json:"total"`
	ByRisk map[string]int `json:"by_risk,omitempty"`
	ByType map[string]int `json:"by_type,omitempty"`
}

// WirePartySummary is the JSON shape of a semdiff.PartySummary.
type WirePartySummary struct {
	Party               string `json:"party"`
	Favorable           int    `json:"favorable"`
	Unfavorable         int    `json:"unfavorable"`
	Neutral             int    `json:"neutral"`
	NetDutyChange       int    `json:"net_duty_change"`
	NetPermissionChange int    `json:"net_permission_change"`
}

// WireResult is the ComparisonResult of spec.md §6.2: the stable,
// Option::None-omitting, schema-versioned JSON serialization of a
// Result. Unknown fields are ignored on input by construction (plain
// encoding/json unmarshaling never errors on extras).
type WireResult struct {
	SchemaVersion  int                `json:"schema_version"`
	AlignedPairs   []WirePair         `json:"aligned_pairs"`
	Changes        []WireChange       `json:"changes"`
	Summary        WireDiffSummary    `json:"summary"`
	PartySummaries []WirePartySummary `json:"party_summaries,omitempty"`
	Warnings       []string           `json:"warnings,omitempty"`
}

// ToWire converts a Result into its stable JSON shape (spec.md §6.2).
func (r Result) ToWire() WireResult {
	docA, docB := r.docA, r.docB
	byStartA := indexByStart(r.structA)
	byStartB := indexByStart(r.structB)

	var pairs []WirePair
	for i, p := range r.Alignment.Pairs {
		id := pairID(i, p)
		wp := WirePair{
			PairID:        id,
			AlignmentType: string(p.Type),
			Confidence:    p.Confidence,
			Original:      wireSectionRefs(p.Original),
			Revised:       wireSectionRefs(p.Revised),
			SectionIDs:    sectionIDs(p),
			OriginalTexts: excerptText(docA, byStartA, p.Original),
			RevisedTexts:  excerptText(docB, byStartB, p.Revised),
		}
		if td, ok := r.TokenDiffs[id]; ok {
			wp.TokenDiffs = wireTokenDiff(td)
		}
		pairs = append(pairs, wp)
	}

	wr := WireResult{
		SchemaVersion: SchemaVersion,
		AlignedPairs:  pairs,
		Summary: WireDiffSummary{
			Total:  r.Diff.Summary.Total,
			ByRisk: wireRiskCounts(r.Diff.Summary.ByRisk),
			ByType: wireTypeCounts(r.Diff.Summary.ByType),
		},
		Warnings: r.Warnings,
	}
	for _, c := range r.Diff.Changes {
		wr.Changes = append(wr.Changes, wireChange(c))
	}
	for _, ps := range r.Diff.PartySummaries {
		wr.PartySummaries = append(wr.PartySummaries, WirePartySummary{
			Party: ps.Party, Favorable: ps.Favorable, Unfavorable: ps.Unfavorable,
			Neutral: ps.Neutral, NetDutyChange: ps.NetDutyChange, NetPermissionChange: ps.NetPermissionChange,
		})
	}
	return wr
}

func wireSectionRefs(refs []align.SectionRef) []WireSectionRef {
	var out []WireSectionRef
	for _, r := range refs {
		out = append(out, WireSectionRef{CanonicalID: r.CanonicalID, Title: r.Title})
	}
	return out
}

func sectionIDs(p align.Pair) []string {
	var out []string
	for _, r := range p.Original {
		out = append(out, r.CanonicalID)
	}
	for _, r := range p.Revised {
		out = append(out, r.CanonicalID)
	}
	return out
}

func excerptText(doc *docmodel.Document, byStart map[int]*docbuild.Node, refs []align.SectionRef) string {
	var out string
	for i, r := range refs {
		n := byStart[r.StartLine]
		if n == nil {
			continue
		}
		if i > 0 {
			out += " "
		}
		out += nodeText(doc, n)
	}
	return out
}

func nodeText(doc *docmodel.Document, n *docbuild.Node) string {
	end := n.EndLine
	if end < 0 || end >= len(doc.Lines) {
		end = len(doc.Lines) - 1
	}
	var out string
	for i := n.StartLine; i <= end && i < len(doc.Lines); i++ {
		if i > n.StartLine {
			out += " "
		}
		out += doc.Lines[i].Text()
	}
	return out
}

func wireTokenDiff(a tokenalign.Alignment) []WireTokenDiffEntry {
	var out []WireTokenDiffEntry
	for _, p := range a.Pairs {
		var status, text string
		switch p.Relation {
		case tokenalign.RelationMatched:
			status, text = "Matched", p.RevText
		case tokenalign.RelationAdded:
			status, text = "Added", p.RevText
		case tokenalign.RelationRemoved:
			status, text = "Removed", p.OrigText
		}
		out = append(out, WireTokenDiffEntry{Status: status, Text: text})
	}
	return out
}

func wireRiskCounts(m map[semdiff.RiskLevel]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func wireTypeCounts(m map[semdiff.ChangeType]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func wireChange(c semdiff.SemanticChange) WireChange {
	var impacts []WirePartyImpact
	for _, imp := range c.PartyImpacts {
		impacts = append(impacts, WirePartyImpact{Party: imp.Party, Direction: string(imp.Direction), Rationale: imp.Rationale})
	}
	return WireChange{
		ChangeID: c.ChangeID, ChangeType: string(c.Type), Risk: string(c.Risk),
		PartyImpacts: impacts, Explanation: c.Explanation, Confidence: c.Confidence,
		SourceSection: c.SourceSection,
	}
}
