package bilingual

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded matches every *CapacityError via errors.Is.
	ErrCapacityExceeded = errors.New("bilingual: sentence too long for seq_len")
	ErrInvalidConfig    = errors.New("bilingual: invalid config")
	ErrMissingSpecial   = errors.New("bilingual: reserved symbol missing from tokenizer")
	ErrMissingLanguage  = errors.New("bilingual: language missing from record")
	ErrIndexOutOfRange  = errors.New("bilingual: index out of range")
	ErrMixedSeqLen      = errors.New("bilingual: samples have different seq_len")
)

// Side names the half of a pair that overflowed.
type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
	SideBoth   Side = "both"
)

// CapacityError reports a pair whose tokens plus reserved positions do not fit
// in SeqLen. The source needs two reserved positions ([SOS], [EOS]); the
// target needs one ([SOS] in the decoder input, [EOS] in the label).
type CapacityError struct {
	Side         Side
	SourceTokens int
	TargetTokens int
	SeqLen       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("bilingual: sentence too long for seq_len %d: %s side overflows (source %d+2 tokens, target %d+1 tokens)",
		e.SeqLen, e.Side, e.SourceTokens, e.TargetTokens)
}

func (e *CapacityError) Is(target error) bool { return target == ErrCapacityExceeded }

// ShapeError reports a sequence or mask row whose length is not the expected
// one. The encoder panics with it when an assembled sequence does not have
// exactly SeqLen entries, which indicates a bug rather than bad input;
// AttentionBias returns it for ragged masks.
type ShapeError struct {
	Field  string
	Len    int
	SeqLen int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("bilingual: %s has length %d, want seq_len %d", e.Field, e.Len, e.SeqLen)
}

func indexError(i, n int) error {
	return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, n)
}
