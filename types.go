package bilingual

// Reserved symbols looked up once per Encoder. They match the symbols the
// tokenizer package reserves.
const (
	SymbolSOS = "[SOS]"
	SymbolEOS = "[EOS]"
	SymbolPAD = "[PAD]"
)

// Tokenizer is the capability the encoder needs from a trained tokenizer.
// Encode returns raw ids without any special tokens; TokenToID resolves a
// symbol such as [PAD]. Implementations used from several goroutines must be
// safe for concurrent read-only use.
type Tokenizer interface {
	Encode(text string) ([]int64, error)
	TokenToID(symbol string) (int64, bool)
}

// Record is one entry of a translation corpus in the Hugging Face datasets
// layout: {"translation": {"en": "...", "it": "..."}}.
type Record struct {
	Translation map[string]string `json:"translation"`
}

// Pair is a source sentence and its reference translation.
type Pair struct {
	Source string `json:"src_text"`
	Target string `json:"tgt_text"`
}

// Corpus is an indexable collection of records.
type Corpus interface {
	Len() int
	Record(i int) (Record, error)
}

// SliceCorpus is a Corpus backed by records already held in memory.
type SliceCorpus []Record

func (c SliceCorpus) Len() int { return len(c) }

func (c SliceCorpus) Record(i int) (Record, error) {
	if i < 0 || i >= len(c) {
		return Record{}, indexError(i, len(c))
	}
	return c[i], nil
}

// Specials holds the reserved ids resolved at construction.
type Specials struct {
	SOS int64 `json:"sos"`
	EOS int64 `json:"eos"`
	PAD int64 `json:"pad"`
}

// Sample is one encoded training example. The three id sequences have exactly
// SeqLen entries. EncoderMask has logical shape (1, 1, SeqLen) and DecoderMask
// (1, SeqLen, SeqLen); the leading unit dimensions are left implicit.
type Sample struct {
	EncoderInput []int64  `json:"encoder_input" cbor:"encoder_input"`
	DecoderInput []int64  `json:"decoder_input" cbor:"decoder_input"`
	Label        []int64  `json:"label" cbor:"label"`
	EncoderMask  []bool   `json:"encoder_mask" cbor:"encoder_mask"`
	DecoderMask  [][]bool `json:"decoder_mask" cbor:"decoder_mask"`
	SrcText      string   `json:"src_text" cbor:"src_text"`
	TgtText      string   `json:"tgt_text" cbor:"tgt_text"`
}

// SeqLen is the fixed length shared by every sequence in the sample.
func (s *Sample) SeqLen() int { return len(s.EncoderInput) }

// Fields returns the sample keyed by the field names training code expects.
func (s *Sample) Fields() map[string]any {
	return map[string]any{
		"encoder_input": s.EncoderInput,
		"decoder_input": s.DecoderInput,
		"label":         s.Label,
		"encoder_mask":  s.EncoderMask,
		"decoder_mask":  s.DecoderMask,
		"src_text":      s.SrcText,
		"tgt_text":      s.TgtText,
	}
}
