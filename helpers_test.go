package bilingual

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

const (
	stubPAD int64 = 0
	stubSOS int64 = 1
	stubEOS int64 = 2
)

// stubTokenizer splits on whitespace and maps each word through a fixed
// vocabulary. Unknown words fail, so tests notice tokenizer errors.
type stubTokenizer struct {
	vocab map[string]int64
}

var errUnknownWord = errors.New("stub: unknown word")

func newStubTokenizer(words ...string) *stubTokenizer {
	vocab := map[string]int64{SymbolPAD: stubPAD, SymbolSOS: stubSOS, SymbolEOS: stubEOS}
	for _, w := range words {
		if _, ok := vocab[w]; !ok {
			vocab[w] = int64(len(vocab))
		}
	}
	return &stubTokenizer{vocab: vocab}
}

func (s *stubTokenizer) Encode(text string) ([]int64, error) {
	fields := strings.Fields(text)
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, ok := s.vocab[f]
		if !ok {
			return nil, fmt.Errorf("%w: %q", errUnknownWord, f)
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *stubTokenizer) TokenToID(symbol string) (int64, bool) {
	id, ok := s.vocab[symbol]
	return id, ok
}

// words returns n distinct words w0..w(n-1) joined by spaces.
func words(prefix string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(parts, " ")
}

func stubVocab(prefix string, n int) []string {
	return strings.Fields(words(prefix, n))
}

func record(src, tgt string) Record {
	return Record{Translation: map[string]string{"en": src, "it": tgt}}
}

func mustEncoder(t testing.TB, seqLen int) *Encoder {
	t.Helper()
	src := newStubTokenizer(stubVocab("s", 64)...)
	tgt := newStubTokenizer(stubVocab("t", 64)...)
	enc, err := NewEncoder(Config{SourceLang: "en", TargetLang: "it", SeqLen: seqLen}, src, tgt)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	return enc
}
