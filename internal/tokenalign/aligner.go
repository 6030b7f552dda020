package tokenalign

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/latticework/contractdiff/internal/llline"
)

// TokenAligner runs the LCS-based alignment over two token sequences.
type TokenAligner struct {
	Config Config
}

// NewTokenAligner returns an aligner using the given config.
func NewTokenAligner(cfg Config) *TokenAligner {
	return &TokenAligner{Config: cfg}
}

// prepare applies WhitespaceMode and returns the keyed sequence plus a
// parallel slice of the original token indices each key came from (for
// a normalized-whitespace key that collapses a run of space tokens, the
// index of the run's first token).
func (t *TokenAligner) prepare(line *llline.Line) (keys []string, idx []int, texts []string) {
	toks := line.Tokens()
	switch t.Config.Whitespace {
	case WhitespaceIgnore:
		for i, tok := range toks {
			if tok.Tag == llline.TagSpace {
				continue
			}
			keys = append(keys, string(tok.Tag)+":"+tok.Text)
			idx = append(idx, i)
			texts = append(texts, tok.Text)
		}
	case WhitespaceNormalize:
		inSpace := false
		for i, tok := range toks {
			if tok.Tag == llline.TagSpace {
				if inSpace {
					continue
				}
				inSpace = true
				keys = append(keys, "space:_")
				idx = append(idx, i)
				texts = append(texts, " ")
				continue
			}
			inSpace = false
			keys = append(keys, string(tok.Tag)+":"+tok.Text)
			idx = append(idx, i)
			texts = append(texts, tok.Text)
		}
	default: // WhitespacePreserve
		for i, tok := range toks {
			keys = append(keys, string(tok.Tag)+":"+tok.Text)
			idx = append(idx, i)
			texts = append(texts, tok.Text)
		}
	}
	return
}

// Align computes the TokenAlignment between one original line and one
// revised line, via go-difflib's SequenceMatcher opcodes.
func (t *TokenAligner) Align(orig, rev *llline.Line) Alignment {
	origKeys, _, origTexts := t.prepare(orig)
	revKeys, _, revTexts := t.prepare(rev)

	sm := difflib.NewMatcher(origKeys, revKeys)
	var pairs []AlignedTokenPair
	for _, op := range sm.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := 0; k < op.I2-op.I1; k++ {
				pairs = append(pairs, AlignedTokenPair{
					Relation: RelationMatched,
					OrigIndex: op.I1 + k, RevIndex: op.J1 + k,
					OrigText: origTexts[op.I1+k], RevText: revTexts[op.J1+k],
				})
			}
		case 'd':
			for i := op.I1; i < op.I2; i++ {
				pairs = append(pairs, AlignedTokenPair{Relation: RelationRemoved, OrigIndex: i, RevIndex: -1, OrigText: origTexts[i]})
			}
		case 'i':
			for j := op.J1; j < op.J2; j++ {
				pairs = append(pairs, AlignedTokenPair{Relation: RelationAdded, OrigIndex: -1, RevIndex: j, RevText: revTexts[j]})
			}
		case 'r':
			for i := op.I1; i < op.I2; i++ {
				pairs = append(pairs, AlignedTokenPair{Relation: RelationRemoved, OrigIndex: i, RevIndex: -1, OrigText: origTexts[i]})
			}
			for j := op.J1; j < op.J2; j++ {
				pairs = append(pairs, AlignedTokenPair{Relation: RelationAdded, OrigIndex: -1, RevIndex: j, RevText: revTexts[j]})
			}
		}
	}
	return Alignment{Pairs: pairs}
}

// AlignText runs the same algorithm over raw text via llline.Tokenize,
// for callers (e.g. the façade) that hold plain section excerpts rather
// than already-tokenized Lines.
func (t *TokenAligner) AlignText(origText, revText string) Alignment {
	return t.Align(llline.Tokenize(origText), llline.Tokenize(revText))
}
