package bilingual

import (
	"errors"
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/euforicio/bilingual-go/tokenizer"
)

func TestEncodeWorkedExample(t *testing.T) {
	enc := mustEncoder(t, 10)
	s, err := enc.Encode(record("s0 s1 s2", "t0 t1 t2 t3"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// stub ids: s0..s2 -> 3..5 and t0..t3 -> 3..6
	wantEnc := []int64{stubSOS, 3, 4, 5, stubEOS, stubPAD, stubPAD, stubPAD, stubPAD, stubPAD}
	wantDec := []int64{stubSOS, 3, 4, 5, 6, stubPAD, stubPAD, stubPAD, stubPAD, stubPAD}
	wantLabel := []int64{3, 4, 5, 6, stubEOS, stubPAD, stubPAD, stubPAD, stubPAD, stubPAD}
	if !slices.Equal(s.EncoderInput, wantEnc) {
		t.Fatalf("encoder_input = %v want %v", s.EncoderInput, wantEnc)
	}
	if !slices.Equal(s.DecoderInput, wantDec) {
		t.Fatalf("decoder_input = %v want %v", s.DecoderInput, wantDec)
	}
	if !slices.Equal(s.Label, wantLabel) {
		t.Fatalf("label = %v want %v", s.Label, wantLabel)
	}
	wantMask := []bool{true, true, true, true, true, false, false, false, false, false}
	if !slices.Equal(s.EncoderMask, wantMask) {
		t.Fatalf("encoder_mask = %v want %v", s.EncoderMask, wantMask)
	}
	if s.SrcText != "s0 s1 s2" || s.TgtText != "t0 t1 t2 t3" {
		t.Fatalf("texts = %q / %q", s.SrcText, s.TgtText)
	}
	if s.SeqLen() != 10 {
		t.Fatalf("SeqLen = %d", s.SeqLen())
	}
}

func TestEncodeInvariants(t *testing.T) {
	const seqLen = 9
	enc := mustEncoder(t, seqLen)
	for encLen := 0; encLen+2 <= seqLen; encLen++ {
		for decLen := 0; decLen+1 <= seqLen; decLen++ {
			s, err := enc.Encode(record(words("s", encLen), words("t", decLen)))
			if err != nil {
				t.Fatalf("Encode(%d, %d): %v", encLen, decLen, err)
			}
			checkSample(t, s, seqLen, encLen, decLen)
		}
	}
}

func checkSample(t *testing.T, s *Sample, seqLen, encLen, decLen int) {
	t.Helper()
	if len(s.EncoderInput) != seqLen || len(s.DecoderInput) != seqLen || len(s.Label) != seqLen {
		t.Fatalf("lengths %d/%d/%d want %d", len(s.EncoderInput), len(s.DecoderInput), len(s.Label), seqLen)
	}
	if s.EncoderInput[0] != stubSOS || s.EncoderInput[1+encLen] != stubEOS {
		t.Fatalf("encoder_input framing wrong: %v", s.EncoderInput)
	}
	for _, id := range s.EncoderInput[2+encLen:] {
		if id != stubPAD {
			t.Fatalf("encoder_input tail not padding: %v", s.EncoderInput)
		}
	}
	if s.DecoderInput[0] != stubSOS || s.Label[decLen] != stubEOS {
		t.Fatalf("decoder framing wrong: %v / %v", s.DecoderInput, s.Label)
	}
	for i := 0; i < decLen; i++ {
		if s.DecoderInput[1+i] != s.Label[i] {
			t.Fatalf("decoder_input/label misaligned at %d: %v / %v", i, s.DecoderInput, s.Label)
		}
	}
	for i, id := range s.EncoderInput {
		if s.EncoderMask[i] != (id != stubPAD) {
			t.Fatalf("encoder_mask[%d] = %v for id %d", i, s.EncoderMask[i], id)
		}
	}
	if len(s.DecoderMask) != seqLen {
		t.Fatalf("decoder_mask rows = %d", len(s.DecoderMask))
	}
	for i, row := range s.DecoderMask {
		if len(row) != seqLen {
			t.Fatalf("decoder_mask row %d has %d cols", i, len(row))
		}
		for j, v := range row {
			want := s.DecoderInput[j] != stubPAD && j <= i
			if v != want {
				t.Fatalf("decoder_mask[%d][%d] = %v want %v", i, j, v, want)
			}
		}
	}
}

func TestEncodeBoundaryFits(t *testing.T) {
	enc := mustEncoder(t, 6)
	s, err := enc.Encode(record(words("s", 4), words("t", 5)))
	if err != nil {
		t.Fatalf("Encode at capacity: %v", err)
	}
	if slices.Contains(s.EncoderInput, stubPAD) || slices.Contains(s.DecoderInput, stubPAD) {
		t.Fatalf("unexpected padding at full capacity: %v / %v", s.EncoderInput, s.DecoderInput)
	}
	if s.Label[5] != stubEOS {
		t.Fatalf("label must end with EOS at full capacity: %v", s.Label)
	}
}

func TestEncodeCapacityExceeded(t *testing.T) {
	tests := []struct {
		name     string
		seqLen   int
		src, tgt int
		side     Side
	}{
		{name: "source too long", seqLen: 8, src: 7, tgt: 2, side: SideSource},
		{name: "target too long", seqLen: 5, src: 3, tgt: 5, side: SideTarget},
		{name: "both too long", seqLen: 4, src: 3, tgt: 4, side: SideBoth},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enc := mustEncoder(t, tc.seqLen)
			s, err := enc.Encode(record(words("s", tc.src), words("t", tc.tgt)))
			if s != nil {
				t.Fatalf("expected no sample, got %v", s.EncoderInput)
			}
			if !errors.Is(err, ErrCapacityExceeded) {
				t.Fatalf("err = %v want ErrCapacityExceeded", err)
			}
			ce, ok := AsCapacityError(err)
			if !ok {
				t.Fatalf("err %T is not a *CapacityError", err)
			}
			want := CapacityError{Side: tc.side, SourceTokens: tc.src, TargetTokens: tc.tgt, SeqLen: tc.seqLen}
			if *ce != want {
				t.Fatalf("CapacityError = %+v want %+v", *ce, want)
			}
			if err := enc.Check(record(words("s", tc.src), words("t", tc.tgt))); !errors.Is(err, ErrCapacityExceeded) {
				t.Fatalf("Check err = %v", err)
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	enc := mustEncoder(t, 12)
	rec := record("s3 s1 s4 s1 s5", "t9 t2 t6")
	a, err := enc.Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := enc.Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("encoding the same record twice differs")
	}
	a.DecoderMask[3][0] = !a.DecoderMask[3][0]
	if reflect.DeepEqual(a, b) {
		t.Fatalf("samples share mask storage")
	}
}

func TestEncodeConcurrent(t *testing.T) {
	enc := mustEncoder(t, 16)
	want, err := enc.Encode(record(words("s", 7), words("t", 9)))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for k := 0; k < 16; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := enc.Encode(record(words("s", 7), words("t", 9)))
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- errors.New("concurrent encode differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestNewEncoderErrors(t *testing.T) {
	good := Config{SourceLang: "en", TargetLang: "it", SeqLen: 8}
	tok := newStubTokenizer()

	if _, err := NewEncoder(Config{SourceLang: "en", TargetLang: "it", SeqLen: 1}, tok, tok); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("short seq_len: err = %v", err)
	}
	if _, err := NewEncoder(good, nil, tok); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("nil tokenizer: err = %v", err)
	}
	noPad := &stubTokenizer{vocab: map[string]int64{SymbolSOS: 1, SymbolEOS: 2}}
	if _, err := NewEncoder(good, tok, noPad); !errors.Is(err, ErrMissingSpecial) {
		t.Fatalf("missing [PAD]: err = %v", err)
	}
	// specials come from the target tokenizer only
	if _, err := NewEncoder(good, noPad, tok); err != nil {
		t.Fatalf("source without specials: %v", err)
	}
}

func TestEncoderSpecialsFromTarget(t *testing.T) {
	src := newStubTokenizer("a")
	tgt := &stubTokenizer{vocab: map[string]int64{SymbolPAD: 7, SymbolSOS: 8, SymbolEOS: 9, "b": 10}}
	enc, err := NewEncoder(Config{SourceLang: "en", TargetLang: "it", SeqLen: 4}, src, tgt)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if got := enc.Specials(); got != (Specials{SOS: 8, EOS: 9, PAD: 7}) {
		t.Fatalf("Specials = %+v", got)
	}
	s, err := enc.Encode(record("a", "b"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := []int64{8, 3, 9, 7}; !slices.Equal(s.EncoderInput, want) {
		t.Fatalf("encoder_input = %v want %v", s.EncoderInput, want)
	}
}

func TestEncodeRecordErrors(t *testing.T) {
	enc := mustEncoder(t, 8)
	if _, err := enc.Encode(Record{Translation: map[string]string{"en": "s0"}}); !errors.Is(err, ErrMissingLanguage) {
		t.Fatalf("missing target: err = %v", err)
	}
	if _, err := enc.Encode(Record{}); !errors.Is(err, ErrMissingLanguage) {
		t.Fatalf("missing source: err = %v", err)
	}
	if _, err := enc.Encode(record("s0 zzz", "t0")); !errors.Is(err, errUnknownWord) {
		t.Fatalf("tokenizer error not propagated: %v", err)
	}
	if err := enc.Check(record("s0", "qqq")); !errors.Is(err, errUnknownWord) {
		t.Fatalf("Check did not propagate tokenizer error: %v", err)
	}
}

func TestEncodePairMatchesEncode(t *testing.T) {
	enc := mustEncoder(t, 8)
	rec := record("s1 s2", "t3")
	p, err := enc.Pair(rec)
	if err != nil {
		t.Fatalf("Pair: %v", err)
	}
	a, _ := enc.Encode(rec)
	b, err := enc.EncodePair(p)
	if err != nil {
		t.Fatalf("EncodePair: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("EncodePair differs from Encode")
	}
}

func TestMustSeqLenPanicsWithShapeError(t *testing.T) {
	defer func() {
		r := recover()
		se, ok := r.(*ShapeError)
		if !ok {
			t.Fatalf("recovered %v (%T), want *ShapeError", r, r)
		}
		if se.Field != "label" || se.Len != 3 || se.SeqLen != 4 {
			t.Fatalf("ShapeError = %+v", se)
		}
	}()
	mustSeqLen("label", []int64{1, 2, 3}, 4)
}

func TestSampleFields(t *testing.T) {
	enc := mustEncoder(t, 5)
	s, err := enc.Encode(record("s0", "t0"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	f := s.Fields()
	for _, key := range []string{"encoder_input", "decoder_input", "label", "encoder_mask", "decoder_mask", "src_text", "tgt_text"} {
		if _, ok := f[key]; !ok {
			t.Fatalf("Fields missing %q", key)
		}
	}
	if f["src_text"] != "s0" {
		t.Fatalf("src_text = %v", f["src_text"])
	}
}

func TestReservedSymbolsMatchTokenizer(t *testing.T) {
	if SymbolSOS != tokenizer.SymSOS || SymbolEOS != tokenizer.SymEOS || SymbolPAD != tokenizer.SymPAD {
		t.Fatalf("reserved symbols differ from the tokenizer package")
	}
}
