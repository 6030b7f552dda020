// Package link implements the Section Reference Linker (spec.md §4.3): a
// multi-line DocumentProcessor that resolves resolve.Reference
// attributes against a docbuild.Structure, grounded in the teacher's
// pkg/extract/resolver.go (ReferenceResolver / ResolutionStatus).
package link

import (
	"strings"

	"github.com/latticework/contractdiff/internal/docbuild"
	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/llline"
	"github.com/latticework/contractdiff/internal/perr"
	"github.com/latticework/contractdiff/internal/resolve"
)

// Status discriminates the Resolution tagged union.
type Status string

const (
	StatusResolved        Status = "resolved"
	StatusUnresolved       Status = "unresolved"
	StatusFilteredAsHeader Status = "filtered_as_header"
	StatusAmbiguous        Status = "ambiguous"
)

// Resolution is the outcome of attempting to resolve one Reference.
type Resolution struct {
	Status Status

	// Resolved
	Canonical string
	Title     string
	Line      int

	// Unresolved
	Reason string

	// Ambiguous
	Candidates []string

	Confidence float64
}

// Linked is one resolved (or not) reference, with its source location.
type Linked struct {
	Reference  resolve.Reference
	Location   docmodel.Position
	Resolution Resolution
}

// Result carries every linked reference of one document, so callers
// (e.g. the semantic diff engine, looking for references into a deleted
// section) can re-query them.
type Result struct {
	References []Linked
}

// Linker resolves every Reference attribute in a document against its
// document structure.
type Linker struct{}

// Link implements spec.md §4.3 steps 1-6.
func (Linker) Link(doc *docmodel.Document, structure *docbuild.Structure) (Result, []*perr.ProcessError) {
	flat := structure.Flatten()
	byCanonical := make(map[string][]*docbuild.Node)
	bySubIdentifier := make(map[string][]*docbuild.Node)
	for _, n := range flat {
		c := n.Header.Identifier.Canonical()
		byCanonical[c] = append(byCanonical[c], n)
		if n.Header.Identifier.SubIdentifier != nil {
			sub := n.Header.Identifier.SubIdentifier.Canonical()
			bySubIdentifier[sub] = append(bySubIdentifier[sub], n)
		}
	}

	var out Result
	var errs []*perr.ProcessError

	for lineIdx, line := range doc.Lines {
		refs := line.Find(resolve.AttrSectionRef)
		if len(refs) == 0 {
			continue
		}
		headers := line.Find(resolve.AttrSectionHeader)

		containing := innermostContaining(flat, lineIdx)

		for _, rf := range refs {
			reference := rf.Value.(resolve.Reference)
			loc := docmodel.Position{Line: lineIdx, Token: rf.Range.Start}

			if rf.Range.Start <= 1 && overlapsHeader(headers, rf.Range) {
				out.References = append(out.References, Linked{
					Reference: reference, Location: loc,
					Resolution: Resolution{Status: StatusFilteredAsHeader, Confidence: reference.Confidence},
				})
				continue
			}

			res, err := resolveOne(reference, byCanonical, bySubIdentifier, containing, doc.SourceLine(lineIdx))
			if err != nil {
				errs = append(errs, err)
			}
			out.References = append(out.References, Linked{Reference: reference, Location: loc, Resolution: res})
		}
	}
	return out, errs
}

func overlapsHeader(headers []llline.Found, r llline.Range) bool {
	for _, h := range headers {
		if h.Range.Overlaps(r) {
			return true
		}
	}
	return false
}

// innermostContaining finds, for a given internal line index, the
// deepest node whose [StartLine, EndLine] covers it.
func innermostContaining(flat []*docbuild.Node, lineIdx int) *docbuild.Node {
	var best *docbuild.Node
	for _, n := range flat {
		if n.StartLine <= lineIdx && (n.EndLine < 0 || lineIdx <= n.EndLine) {
			if best == nil || n.Depth > best.Depth {
				best = n
			}
		}
	}
	return best
}

func resolveOne(
	reference resolve.Reference,
	byCanonical map[string][]*docbuild.Node,
	bySubIdentifier map[string][]*docbuild.Node,
	containing *docbuild.Node,
	sourceLine int,
) (Resolution, *perr.ProcessError) {
	switch reference.Kind {
	case resolve.RefRelative:
		return resolveRelative(reference, containing), nil
	case resolve.RefDirect, resolve.RefExternal:
		return resolveByIdentifier(reference, byCanonical, bySubIdentifier, containing, sourceLine)
	case resolve.RefRange, resolve.RefList:
		return resolveMulti(reference, byCanonical, bySubIdentifier, sourceLine)
	default:
		return Resolution{Status: StatusUnresolved, Reason: "unknown reference kind", Confidence: reference.Confidence},
			perr.DanglingReference(reference.ReferenceText, sourceLine)
	}
}

func resolveRelative(reference resolve.Reference, containing *docbuild.Node) Resolution {
	if containing == nil {
		return Resolution{Status: StatusUnresolved, Reason: "no containing section for relative reference", Confidence: reference.Confidence}
	}
	conf := reference.Confidence
	if conf < 1.0 {
		conf = clamp01(conf + 0.05)
	}
	return Resolution{
		Status:     StatusResolved,
		Canonical:  containing.Header.Identifier.Canonical(),
		Title:      containing.Header.Title,
		Line:       containing.StartLine,
		Confidence: conf,
	}
}

func resolveByIdentifier(
	reference resolve.Reference,
	byCanonical map[string][]*docbuild.Node,
	bySubIdentifier map[string][]*docbuild.Node,
	containing *docbuild.Node,
	sourceLine int,
) (Resolution, *perr.ProcessError) {
	if reference.Target == nil {
		return Resolution{Status: StatusUnresolved, Reason: "no target identifier", Confidence: reference.Confidence},
			perr.DanglingReference(reference.ReferenceText, sourceLine)
	}
	canon := reference.Target.Canonical()
	if nodes, ok := byCanonical[canon]; ok && len(nodes) == 1 {
		return Resolution{Status: StatusResolved, Canonical: canon, Title: nodes[0].Header.Title, Line: nodes[0].StartLine, Confidence: clamp01(reference.Confidence)}, nil
	}

	sub := canon
	if reference.Target.SubIdentifier != nil {
		sub = reference.Target.SubIdentifier.Canonical()
	}
	candidates := bySubIdentifier[sub]
	if len(candidates) == 1 {
		return Resolution{Status: StatusResolved, Canonical: candidates[0].Header.Identifier.Canonical(), Title: candidates[0].Header.Title, Line: candidates[0].StartLine, Confidence: clamp01(0.9)}, nil
	}
	if len(candidates) > 1 {
		if ambiguous, names := romanAlphaAmbiguity(candidates, containing); ambiguous {
			return Resolution{Status: StatusAmbiguous, Candidates: names, Confidence: reference.Confidence}, nil
		}
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.Header.Identifier.Canonical()
		}
		return Resolution{Status: StatusAmbiguous, Candidates: names, Confidence: reference.Confidence}, nil
	}

	return Resolution{Status: StatusUnresolved, Reason: "no section matches " + reference.ReferenceText, Confidence: reference.Confidence},
		perr.DanglingReference(reference.ReferenceText, sourceLine)
}

// romanAlphaAmbiguity implements spec.md §3's "(i)" ambiguity rule: if
// the containing section contains both a Roman-1 and an Alpha-'i'
// candidate, classify as Ambiguous.
func romanAlphaAmbiguity(candidates []*docbuild.Node, containing *docbuild.Node) (bool, []string) {
	if containing == nil {
		return false, nil
	}
	var hasRoman1, hasAlphaI bool
	var names []string
	for _, c := range containing.Children {
		if c.Header.Identifier.Form == resolve.FormRoman && c.Header.Identifier.RomanValue == 1 {
			hasRoman1 = true
			names = append(names, c.Header.Identifier.Canonical())
		}
		if c.Header.Identifier.Form == resolve.FormAlpha && c.Header.Identifier.Letter == 'i' {
			hasAlphaI = true
			names = append(names, c.Header.Identifier.Canonical())
		}
	}
	_ = candidates
	return hasRoman1 && hasAlphaI, names
}

func resolveMulti(
	reference resolve.Reference,
	byCanonical map[string][]*docbuild.Node,
	bySubIdentifier map[string][]*docbuild.Node,
	sourceLine int,
) (Resolution, *perr.ProcessError) {
	var resolvedIDs []string
	var missing []string
	for _, id := range reference.RangeIDs {
		if nodes, ok := byCanonical[id]; ok && len(nodes) > 0 {
			resolvedIDs = append(resolvedIDs, id)
			continue
		}
		if nodes, ok := bySubIdentifier[id]; ok && len(nodes) > 0 {
			resolvedIDs = append(resolvedIDs, id)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) > 0 {
		return Resolution{Status: StatusUnresolved, Reason: "unresolved members: " + strings.Join(missing, ", "), Confidence: reference.Confidence},
			perr.DanglingReference(reference.ReferenceText, sourceLine)
	}
	return Resolution{Status: StatusResolved, Canonical: strings.Join(resolvedIDs, ","), Confidence: clamp01(reference.Confidence)}, nil
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
