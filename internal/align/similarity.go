package align

import (
	"sort"
	"strings"

	"github.com/latticework/contractdiff/internal/docbuild"
	"github.com/latticework/contractdiff/internal/docmodel"
	"github.com/latticework/contractdiff/internal/resolve"
)

// sectionText joins every line of a node's own content (excluding nested
// children's lines is not attempted here; spec.md's similarity signals
// operate over the section's full textual content, children included,
// since a contract section's "content" is everything nested under it).
func sectionText(doc *docmodel.Document, n *docbuild.Node) string {
	end := n.EndLine
	if end < 0 || end >= len(doc.Lines) {
		end = len(doc.Lines) - 1
	}
	var b strings.Builder
	for i := n.StartLine; i <= end && i < len(doc.Lines); i++ {
		if i > n.StartLine {
			b.WriteString(" ")
		}
		b.WriteString(doc.Lines[i].Text())
	}
	return b.String()
}

func sectionBag(doc *docmodel.Document, n *docbuild.Node) map[string]bool {
	bag := make(map[string]bool)
	end := n.EndLine
	if end < 0 || end >= len(doc.Lines) {
		end = len(doc.Lines) - 1
	}
	wordFreq := make(map[string]int)
	for i := n.StartLine; i <= end && i < len(doc.Lines); i++ {
		line := doc.Lines[i]
		for _, f := range line.Find(resolve.AttrDefinedTerm) {
			bag["term:"+f.Value.(resolve.DefinedTerm).NormalizedName] = true
		}
		for _, f := range line.Find(resolve.AttrTermReference) {
			bag["term:"+f.Value.(resolve.TermReference).NormalizedName] = true
		}
		for _, f := range line.Find(resolve.AttrSectionRef) {
			ref := f.Value.(resolve.Reference)
			if ref.Target != nil {
				bag["ref:"+ref.Target.Canonical()] = true
			}
		}
		for _, t := range line.Tokens() {
			w := strings.ToLower(t.Text)
			if len(w) >= 4 && isAlpha(w) {
				wordFreq[w]++
			}
		}
	}
	type wf struct {
		w string
		c int
	}
	var all []wf
	for w, c := range wordFreq {
		all = append(all, wf{w, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].c != all[j].c {
			return all[i].c > all[j].c
		}
		return all[i].w < all[j].w
	})
	top := 15
	if len(all) < top {
		top = len(all)
	}
	for _, e := range all[:top] {
		bag["word:"+e.w] = true
	}
	return bag
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return len(s) > 0
}

func titleTokens(title string) map[string]bool {
	stop := map[string]bool{"the": true, "a": true, "an": true, "of": true, "and": true, "or": true, "to": true, "for": true, "in": true}
	out := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(title)) {
		f = strings.Trim(f, ".,;:-–—")
		if f == "" || stop[f] {
			continue
		}
		out[f] = true
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// normalizedIDSimilarity returns 1 - (Levenshtein distance / max length).
func normalizedIDSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	d := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(d)/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		cur[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			cur[j] = best
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

func shingles(s string, k int) map[string]bool {
	norm := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	out := make(map[string]bool)
	if len(norm) < k {
		if norm != "" {
			out[norm] = true
		}
		return out
	}
	for i := 0; i+k <= len(norm); i++ {
		out[norm[i:i+k]] = true
	}
	return out
}

// signals computes the five weighted similarity Signals between an
// original and revised section, per spec.md §4.5.1 Pass 3.
func signals(docA, docB *docmodel.Document, a, b *docbuild.Node, cfg SimilarityConfig, posA, posB, totalA, totalB int) []Signal {
	idSim := normalizedIDSimilarity(a.Header.Identifier.Canonical(), b.Header.Identifier.Canonical())
	titleSim := jaccard(titleTokens(a.Header.Title), titleTokens(b.Header.Title))
	semSim := jaccard(sectionBag(docA, a), sectionBag(docB, b))
	posSim := 1.0
	if totalA > 1 || totalB > 1 {
		maxTotal := totalA
		if totalB > maxTotal {
			maxTotal = totalB
		}
		if maxTotal > 0 {
			posSim = 1.0 - absFloat(float64(posA)/float64(maxTotal)-float64(posB)/float64(maxTotal))
		}
	}
	textSim := jaccard(shingles(sectionText(docA, a), 3), shingles(sectionText(docB, b), 3))

	return []Signal{
		{Name: "canonical_id", Score: idSim, Weight: cfg.WeightCanonicalID},
		{Name: "title", Score: titleSim, Weight: cfg.WeightTitle},
		{Name: "semantic", Score: semSim, Weight: cfg.WeightSemantic},
		{Name: "position", Score: posSim, Weight: cfg.WeightPosition},
		{Name: "text", Score: textSim, Weight: cfg.WeightText},
	}
}

func weightedScore(sigs []Signal) float64 {
	var sum, wsum float64
	for _, s := range sigs {
		sum += s.Score * s.Weight
		wsum += s.Weight
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
