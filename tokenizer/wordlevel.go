package tokenizer

import (
	"encoding/json"
	"os"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// WordLevel maps whole words to ids through a fixed vocabulary. Text is NFC
// normalised and split like the Hugging Face Whitespace pre-tokenizer
// (`\w+|[^\w\s]+`); words missing from the vocabulary encode to the unknown
// symbol.
type WordLevel struct {
	vocab map[string]int64
	unk   int64
}

// NewWordLevel copies vocab with NFC-normalised keys and resolves unk in it.
// Two entries that normalise to the same word are rejected.
func NewWordLevel(vocab map[string]int64, unk string) (*WordLevel, error) {
	if len(vocab) == 0 {
		return nil, errors.New("tokenizer: empty word-level vocabulary")
	}
	id, ok := vocab[unk]
	if !ok {
		return nil, errors.Errorf("tokenizer: unknown symbol %s missing from vocabulary", unk)
	}
	cp := make(map[string]int64, len(vocab))
	src := make(map[string]string, len(vocab))
	for w, i := range vocab {
		key := norm.NFC.String(w)
		if prev, dup := src[key]; dup {
			return nil, errors.Errorf("tokenizer: vocabulary entries %q and %q normalise to %q", prev, w, key)
		}
		cp[key] = i
		src[key] = w
	}
	return &WordLevel{vocab: cp, unk: id}, nil
}

// wordLevelFile is the on-disk vocabulary layout: {"unk_token": "[UNK]",
// "vocab": {"word": id}}.
type wordLevelFile struct {
	UnkToken string           `json:"unk_token"`
	Vocab    map[string]int64 `json:"vocab"`
}

// LoadWordLevel reads a JSON vocabulary. unk_token defaults to [UNK].
func LoadWordLevel(name string) (*WordLevel, error) {
	path := VocabPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "tokenizer: read vocabulary %s", path)
	}
	var f wordLevelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "tokenizer: parse vocabulary %s", path)
	}
	if f.UnkToken == "" {
		f.UnkToken = SymUNK
	}
	return NewWordLevel(f.Vocab, f.UnkToken)
}

// Encode never fails; the error return satisfies the tokenizer capability.
func (w *WordLevel) Encode(text string) ([]int64, error) {
	words := splitWords(norm.NFC.String(text))
	out := make([]int64, 0, len(words))
	for _, word := range words {
		if id, ok := w.vocab[word]; ok {
			out = append(out, id)
			continue
		}
		out = append(out, w.unk)
	}
	return out, nil
}

// TokenToID looks symbol up verbatim.
func (w *WordLevel) TokenToID(symbol string) (int64, bool) {
	id, ok := w.vocab[norm.NFC.String(symbol)]
	return id, ok
}

// VocabSize is the number of vocabulary entries.
func (w *WordLevel) VocabSize() int { return len(w.vocab) }

func isWordRune(r rune) bool { return r == '_' || isL(r) || isN(r) }

func splitWords(s string) []string {
	var out []string
	start := -1
	word := false
	flush := func(end int) {
		if start >= 0 {
			out = append(out, s[start:end])
			start = -1
		}
	}
	for i, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case start < 0:
			start, word = i, isWordRune(r)
		case isWordRune(r) != word:
			flush(i)
			start, word = i, isWordRune(r)
		}
	}
	flush(len(s))
	return out
}
