package tokenizer

import (
	"maps"
	"math"
	"sync"

	"github.com/pkg/errors"
)

// Ranks maps a raw byte sequence (held as a string) to its merge rank. The
// rank doubles as the token id.
type Ranks map[string]int64

const noRank = int64(math.MaxInt64)

// BPE is a byte-level byte-pair-encoding tokenizer with a fixed vocabulary of
// ranks plus a set of special symbols. A BPE is immutable after construction
// and safe for concurrent use.
type BPE struct {
	enc        Ranks
	dec        tokenStore
	specialEnc map[string]int64
	specialDec map[int64]string
	seg        Segmenter
	unk        int64
	hasUnk     bool
	partsPool  sync.Pool
}

// NewBPE builds a tokenizer from merge ranks and special symbols. Both maps
// are copied. Special ids must not collide with rank ids. When specials contains [UNK], bytes missing
// from the vocabulary encode to it; otherwise Encode fails on them.
func NewBPE(ranks Ranks, specials map[string]int64, seg Segmenter) (*BPE, error) {
	if len(ranks) == 0 {
		return nil, errors.New("tokenizer: empty bpe vocabulary")
	}
	if seg == nil {
		seg = NewWordSegmenter()
	}
	dec, err := newTokenStore(ranks)
	if err != nil {
		return nil, err
	}
	specialEnc := make(map[string]int64, len(specials))
	specialDec := make(map[int64]string, len(specials))
	for sym, id := range specials {
		var scratch []byte
		if dec.AppendInto(&scratch, id) {
			return nil, errors.Errorf("tokenizer: special %s id %d collides with a vocabulary rank", sym, id)
		}
		if other, ok := specialDec[id]; ok {
			return nil, errors.Errorf("tokenizer: specials %s and %s share id %d", other, sym, id)
		}
		specialEnc[sym] = id
		specialDec[id] = sym
	}
	b := &BPE{
		enc:        maps.Clone(ranks),
		dec:        dec,
		specialEnc: specialEnc,
		specialDec: specialDec,
		seg:        seg,
		partsPool:  sync.Pool{New: func() any { p := make([]part, 0, 64); return &p }},
	}
	b.unk, b.hasUnk = specialEnc[SymUNK]
	return b, nil
}

// TokenToID resolves a special symbol or a vocabulary entry to its id.
func (b *BPE) TokenToID(symbol string) (int64, bool) {
	if id, ok := b.specialEnc[symbol]; ok {
		return id, true
	}
	id, ok := b.enc[symbol]
	return id, ok
}

// VocabSize counts rank ids and special ids.
func (b *BPE) VocabSize() int { return len(b.enc) + len(b.specialEnc) }

// IsSpecialToken reports whether id belongs to a special symbol.
func (b *BPE) IsSpecialToken(id int64) bool { _, ok := b.specialDec[id]; return ok }

// Encode tokenizes text without interpreting special symbols: a literal
// "[PAD]" in the input is encoded as ordinary bytes.
func (b *BPE) Encode(text string) ([]int64, error) {
	var out []int64
	if err := b.encodeInto(text, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeWithSpecialTokens tokenizes text emitting special ids wherever a
// special symbol appears literally.
func (b *BPE) EncodeWithSpecialTokens(text string) ([]int64, error) {
	var out []int64
	if err := b.encodeInto(text, b.specialEnc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BPE) encodeInto(text string, allowedSpecial map[string]int64, out *[]int64) error {
	hasSpecials := len(allowedSpecial) > 0
	for i := 0; i < len(text); {
		if hasSpecials {
			if tok, n := matchSpecialAt(text, i, allowedSpecial); n > 0 {
				*out = append(*out, tok)
				i += n
				continue
			}
		}
		end := b.seg.Next(text, i)
		if end <= i {
			end = i + 1
		}
		piece := text[i:end]
		if id, ok := b.enc[piece]; ok {
			*out = append(*out, id)
		} else if err := b.bytePairEncode(piece, out); err != nil {
			return err
		}
		i = end
	}
	return nil
}

// Decode maps ids back to text. Special ids decode to their symbol.
func (b *BPE) Decode(ids []int64) (string, error) {
	var buf []byte
	for _, id := range ids {
		if b.dec.AppendInto(&buf, id) {
			continue
		}
		if sym, ok := b.specialDec[id]; ok {
			buf = append(buf, sym...)
			continue
		}
		return "", errors.Errorf("tokenizer: invalid token %d for decoding", id)
	}
	return string(buf), nil
}

// matchSpecialAt returns the longest special symbol starting at s[i].
func matchSpecialAt(s string, i int, allowed map[string]int64) (int64, int) {
	maxLen := 0
	var id int64
	for lit, tok := range allowed {
		if len(lit) > len(s)-i || len(lit) <= maxLen {
			continue
		}
		if s[i:i+len(lit)] == lit {
			maxLen = len(lit)
			id = tok
		}
	}
	return id, maxLen
}

type part struct {
	start int
	rank  int64
}

func (b *BPE) bytePairEncode(piece string, out *[]int64) error {
	if len(piece) == 1 {
		return b.appendRank(piece, out)
	}
	parts, release := b.bytePairMerge(piece)
	defer release()
	for w := 0; w+1 < len(parts); w++ {
		if err := b.appendRank(piece[parts[w].start:parts[w+1].start], out); err != nil {
			return err
		}
	}
	return nil
}

func (b *BPE) appendRank(s string, out *[]int64) error {
	if id, ok := b.enc[s]; ok {
		*out = append(*out, id)
		return nil
	}
	if b.hasUnk {
		*out = append(*out, b.unk)
		return nil
	}
	return errors.Errorf("tokenizer: no rank for %q and no %s symbol", s, SymUNK)
}

func (b *BPE) rankOf(s string) int64 {
	if r, ok := b.enc[s]; ok {
		return r
	}
	return noRank
}

func (b *BPE) getRank(piece string, parts []part, i int) int64 {
	if i+3 < len(parts) {
		return b.rankOf(piece[parts[i].start:parts[i+3].start])
	}
	return noRank
}

// bytePairMerge repeatedly merges the adjacent pair with the lowest rank until
// no ranked pair remains. The returned parts bracket the final tokens.
func (b *BPE) bytePairMerge(piece string) ([]part, func()) {
	p := b.partsPool.Get().(*[]part)
	parts := (*p)[:0]
	minRank, minIdx := noRank, -1
	for i := 0; i < len(piece)-1; i++ {
		r := b.rankOf(piece[i : i+2])
		if r < minRank {
			minRank, minIdx = r, i
		}
		parts = append(parts, part{start: i, rank: r})
	}
	parts = append(parts, part{start: len(piece) - 1, rank: noRank})
	parts = append(parts, part{start: len(piece), rank: noRank})

	for minRank != noRank {
		i := minIdx
		if i > 0 {
			parts[i-1].rank = b.getRank(piece, parts, i-1)
		}
		parts[i].rank = b.getRank(piece, parts, i)
		parts = append(parts[:i+1], parts[i+2:]...)
		minRank, minIdx = noRank, -1
		for j := 0; j < len(parts)-1; j++ {
			if parts[j].rank < minRank {
				minRank, minIdx = parts[j].rank, j
			}
		}
	}
	release := func() {
		if cap(parts) > 1<<12 {
			return
		}
		*p = parts[:0]
		b.partsPool.Put(p)
	}
	return parts, release
}
