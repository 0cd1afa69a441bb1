package bilingual

import (
	"errors"
	"fmt"
)

// Encoder turns translation records into fixed-length Samples. It holds no
// mutable state after construction and is safe for concurrent use when both
// tokenizers are.
type Encoder struct {
	cfg Config
	src Tokenizer
	tgt Tokenizer
	// reserved ids, resolved once through the target tokenizer
	sos int64
	eos int64
	pad int64
}

// NewEncoder validates cfg and resolves [SOS], [EOS] and [PAD] through the
// target tokenizer. The same ids are used on the encoder side, so both
// tokenizers are expected to share the reserved ids.
func NewEncoder(cfg Config, src, tgt Tokenizer) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil || tgt == nil {
		return nil, fmt.Errorf("%w: source and target tokenizers are required", ErrInvalidConfig)
	}
	enc := &Encoder{cfg: cfg, src: src, tgt: tgt}
	for _, s := range []struct {
		sym string
		dst *int64
	}{
		{SymbolSOS, &enc.sos},
		{SymbolEOS, &enc.eos},
		{SymbolPAD, &enc.pad},
	} {
		id, ok := tgt.TokenToID(s.sym)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSpecial, s.sym)
		}
		*s.dst = id
	}
	return enc, nil
}

// Config returns the configuration the encoder was built with.
func (e *Encoder) Config() Config { return e.cfg }

// SeqLen is the length of every sequence the encoder produces.
func (e *Encoder) SeqLen() int { return e.cfg.SeqLen }

// Specials returns the resolved reserved ids.
func (e *Encoder) Specials() Specials { return Specials{SOS: e.sos, EOS: e.eos, PAD: e.pad} }

// Pair extracts the configured languages from rec.
func (e *Encoder) Pair(rec Record) (Pair, error) {
	src, ok := rec.Translation[e.cfg.SourceLang]
	if !ok {
		return Pair{}, fmt.Errorf("%w: %q", ErrMissingLanguage, e.cfg.SourceLang)
	}
	tgt, ok := rec.Translation[e.cfg.TargetLang]
	if !ok {
		return Pair{}, fmt.Errorf("%w: %q", ErrMissingLanguage, e.cfg.TargetLang)
	}
	return Pair{Source: src, Target: tgt}, nil
}

// Encode builds the Sample for rec. A pair that does not fit in SeqLen fails
// with a *CapacityError; it is never truncated.
func (e *Encoder) Encode(rec Record) (*Sample, error) {
	p, err := e.Pair(rec)
	if err != nil {
		return nil, err
	}
	return e.EncodePair(p)
}

// EncodePair is Encode for an already extracted pair.
func (e *Encoder) EncodePair(p Pair) (*Sample, error) {
	encTokens, decTokens, err := e.tokenize(p)
	if err != nil {
		return nil, err
	}
	encPad, decPad, err := e.budget(len(encTokens), len(decTokens))
	if err != nil {
		return nil, err
	}

	n := e.cfg.SeqLen
	encoderInput := make([]int64, 0, n)
	encoderInput = append(encoderInput, e.sos)
	encoderInput = append(encoderInput, encTokens...)
	encoderInput = append(encoderInput, e.eos)
	encoderInput = e.appendPad(encoderInput, encPad)

	decoderInput := make([]int64, 0, n)
	decoderInput = append(decoderInput, e.sos)
	decoderInput = append(decoderInput, decTokens...)
	decoderInput = e.appendPad(decoderInput, decPad)

	label := make([]int64, 0, n)
	label = append(label, decTokens...)
	label = append(label, e.eos)
	label = e.appendPad(label, decPad)

	mustSeqLen("encoder_input", encoderInput, n)
	mustSeqLen("decoder_input", decoderInput, n)
	mustSeqLen("label", label, n)

	return &Sample{
		EncoderInput: encoderInput,
		DecoderInput: decoderInput,
		Label:        label,
		EncoderMask:  PaddingMask(encoderInput, e.pad),
		DecoderMask:  DecoderMask(decoderInput, e.pad),
		SrcText:      p.Source,
		TgtText:      p.Target,
	}, nil
}

// Check tokenizes rec and reports whether it fits, without assembling a
// sample. It returns the error Encode would return, or nil.
func (e *Encoder) Check(rec Record) error {
	p, err := e.Pair(rec)
	if err != nil {
		return err
	}
	encTokens, decTokens, err := e.tokenize(p)
	if err != nil {
		return err
	}
	_, _, err = e.budget(len(encTokens), len(decTokens))
	return err
}

func (e *Encoder) tokenize(p Pair) ([]int64, []int64, error) {
	encTokens, err := e.src.Encode(p.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("bilingual: tokenize source: %w", err)
	}
	decTokens, err := e.tgt.Encode(p.Target)
	if err != nil {
		return nil, nil, fmt.Errorf("bilingual: tokenize target: %w", err)
	}
	return encTokens, decTokens, nil
}

// budget returns the padding each side needs: the encoder reserves [SOS] and
// [EOS], the decoder input and label reserve one position each.
func (e *Encoder) budget(encLen, decLen int) (int, int, error) {
	encPad := e.cfg.SeqLen - encLen - 2
	decPad := e.cfg.SeqLen - decLen - 1
	var side Side
	switch {
	case encPad < 0 && decPad < 0:
		side = SideBoth
	case encPad < 0:
		side = SideSource
	case decPad < 0:
		side = SideTarget
	default:
		return encPad, decPad, nil
	}
	return 0, 0, &CapacityError{Side: side, SourceTokens: encLen, TargetTokens: decLen, SeqLen: e.cfg.SeqLen}
}

func (e *Encoder) appendPad(dst []int64, n int) []int64 {
	for k := 0; k < n; k++ {
		dst = append(dst, e.pad)
	}
	return dst
}

func mustSeqLen(field string, seq []int64, n int) {
	if len(seq) != n {
		panic(&ShapeError{Field: field, Len: len(seq), SeqLen: n})
	}
}

// AsCapacityError unwraps err to a *CapacityError.
func AsCapacityError(err error) (*CapacityError, bool) {
	var ce *CapacityError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
