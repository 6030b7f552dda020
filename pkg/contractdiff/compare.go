// Package contractdiff is the public façade (spec.md §4.8, §6.1): the
// single `Compare` entry point every consumer (CLI, library caller)
// goes through, grounded in the teacher's pkg/analysis/crossref.go
// (CrossRefAnalyzer.CompareDocuments), which plays the same "run the
// whole pipeline, return one report" role for cross-jurisdiction
// comparison.
package contractdiff

import (
	"fmt"

	"github.com/latticework/contractdiff/internal/align"
	"github.com/latticework/contractdiff/internal/config"
	"github.com/latticework/contractdiff/internal/docbuild"
	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/link"
	"github.com/latticework/contractdiff/internal/llline"
	"github.com/latticework/contractdiff/internal/perr"
	"github.com/latticework/contractdiff/internal/resolve"
	"github.com/latticework/contractdiff/internal/semdiff"
	"github.com/latticework/contractdiff/internal/tokenalign"
)

// Result is the programmatic return value of Compare (spec.md §4.8):
// the alignment, the semantic diff, and a token alignment per pair id
// that needed one.
type Result struct {
	Alignment  align.Result
	Diff       semdiff.Result
	TokenDiffs map[string]tokenalign.Alignment
	Warnings   []string

	docA, docB       *docmodel.Document
	structA, structB *docbuild.Structure
}

// Compare runs the full pipeline: tokenize both texts, resolve
// attributes, build each document's structure, link references, align
// sections, classify semantic changes, and token-diff every non-trivial
// pair. It is the only call site that must exist for external
// consumers (spec.md §4.8).
func Compare(textA, textB string, profile config.Profile) (Result, []*perr.ProcessError) {
	var errs []*perr.ProcessError

	docA := docmodel.Build(textA)
	docB := docmodel.Build(textB)

	runPipeline(docA)
	runPipeline(docB)

	structBuildA := docbuild.Builder{}.Process(docA)
	errs = append(errs, structBuildA.Errors...)
	structBuildB := docbuild.Builder{}.Process(docB)
	errs = append(errs, structBuildB.Errors...)
	structA, structB := structBuildA.Value, structBuildB.Value
	for _, e := range errs {
		if e.Code == perr.CodeInternalError {
			return Result{}, errs
		}
	}

	linkedA, linkErrsA := link.Linker{}.Link(docA, structA)
	errs = append(errs, linkErrsA...)
	linkedB, linkErrsB := link.Linker{}.Link(docB, structB)
	errs = append(errs, linkErrsB...)
	_ = linkedA

	aligner := &align.DocumentAligner{Config: profile.Similarity}
	alignment := aligner.Align(docA, docB, structA, structB, nil)

	engine := semdiff.NewEngine()
	diffCfg := semdiff.Config{
		ExactMatchThreshold: profile.Similarity.ExactMatchThreshold,
		ReviewThreshold:      profile.Similarity.ReviewThreshold,
	}
	diff := engine.Compute(docA, docB, structA, structB, alignment, linkedB, diffCfg)

	byStartA := indexByStart(structA)
	byStartB := indexByStart(structB)
	tokenAligner := tokenalign.NewTokenAligner(profile.TokenAlign)

	tokenDiffs := make(map[string]tokenalign.Alignment)
	for i, pair := range alignment.Pairs {
		if pair.Type != align.Modified && pair.Type != align.Moved &&
			pair.Type != align.ExactMatch && pair.Type != align.Renumbered {
			continue
		}
		if len(pair.Original) != 1 || len(pair.Revised) != 1 {
			continue
		}
		nodeA := byStartA[pair.Original[0].StartLine]
		nodeB := byStartB[pair.Revised[0].StartLine]
		if nodeA == nil || nodeB == nil {
			continue
		}
		textA := nodeText(docA, nodeA)
		textB := nodeText(docB, nodeB)
		if textA == textB {
			continue
		}
		id := pairID(i, pair)
		tokenDiffs[id] = tokenAligner.AlignText(textA, textB)
	}

	var warnings []string
	warnings = append(warnings, structBuildA.Warnings...)
	warnings = append(warnings, structBuildB.Warnings...)
	warnings = append(warnings, diff.Warnings...)

	return Result{
		Alignment: alignment, Diff: diff, TokenDiffs: tokenDiffs, Warnings: warnings,
		docA: docA, docB: docB, structA: structA, structB: structB,
	}, errs
}

func runPipeline(doc *docmodel.Document) {
	p := resolve.Pipeline{Lines: doc.Lines}
	p.Standard()
}

func indexByStart(s *docbuild.Structure) map[int]*docbuild.Node {
	out := make(map[int]*docbuild.Node)
	for _, n := range s.Flatten() {
		out[n.StartLine] = n
	}
	return out
}

func firstLine(doc *docmodel.Document, n *docbuild.Node) *llline.Line {
	if n.StartLine < 0 || n.StartLine >= len(doc.Lines) {
		return nil
	}
	return doc.Lines[n.StartLine]
}

func pairID(i int, pair align.Pair) string {
	if len(pair.Original) > 0 {
		return fmt.Sprintf("pair_%d_%s", i, pair.Original[0].CanonicalID)
	}
	if len(pair.Revised) > 0 {
		return fmt.Sprintf("pair_%d_%s", i, pair.Revised[0].CanonicalID)
	}
	return fmt.Sprintf("pair_%d", i)
}
