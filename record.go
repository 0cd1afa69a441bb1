package bilingual

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var sampleEncMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// WriteSamples writes samples to w as a CBOR sequence, one map per sample
// keyed by the Sample field names (encoder_input, decoder_input, ...). The
// encoding is deterministic, so equal samples produce equal bytes.
func WriteSamples(w io.Writer, samples []*Sample) error {
	enc := sampleEncMode.NewEncoder(w)
	for i, s := range samples {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("bilingual: write sample %d: %w", i, err)
		}
	}
	return nil
}

// ReadSamples decodes a CBOR sequence written by WriteSamples.
func ReadSamples(r io.Reader) ([]*Sample, error) {
	dec := cbor.NewDecoder(r)
	var out []*Sample
	for {
		var s Sample
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("bilingual: read sample %d: %w", len(out), err)
		}
		out = append(out, &s)
	}
}
