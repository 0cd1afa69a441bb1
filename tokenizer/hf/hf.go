// Package hf adapts Hugging Face tokenizer.json files to the bilingual
// tokenizer capability. It is kept apart from package tokenizer because the
// runtime it wraps touches $HOME/.cache/tokenizer when it is initialised.
package hf

import (
	"github.com/pkg/errors"
	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	"github.com/euforicio/bilingual-go/tokenizer"
)

var errNotInitialized = errors.New("hf: tokenizer is not initialized")

// Tokenizer wraps a tokenizer.json pipeline, for example a trained WordLevel
// model with [UNK], [PAD], [SOS] and [EOS] added.
type Tokenizer struct {
	inner *tk.Tokenizer
}

// Load reads a tokenizer.json file with the pure-Go tokenizer runtime.
// Relative names resolve against BILINGUAL_VOCAB_DIR.
func Load(name string) (*Tokenizer, error) {
	if name == "" {
		return nil, errors.New("hf: tokenizer.json path is required")
	}
	path := tokenizer.VocabPath(name)
	inner, err := pretrained.FromFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "hf: load %s", path)
	}
	return &Tokenizer{inner: inner}, nil
}

// Encode runs the pipeline without post-processor specials; callers insert
// [SOS]/[EOS] themselves.
func (t *Tokenizer) Encode(text string) ([]int64, error) {
	if t == nil || t.inner == nil {
		return nil, errNotInitialized
	}
	enc, err := t.inner.EncodeSingle(text, false)
	if err != nil {
		return nil, errors.Wrap(err, "hf: encode")
	}
	ids := make([]int64, len(enc.Ids))
	for i, id := range enc.Ids {
		ids[i] = int64(id)
	}
	return ids, nil
}

// TokenToID resolves added tokens first, then the model vocabulary.
func (t *Tokenizer) TokenToID(symbol string) (int64, bool) {
	if t == nil || t.inner == nil {
		return 0, false
	}
	id, ok := t.inner.TokenToId(symbol)
	return int64(id), ok
}

// VocabSize includes added tokens.
func (t *Tokenizer) VocabSize() int {
	if t == nil || t.inner == nil {
		return 0
	}
	return t.inner.GetVocabSize(true)
}
