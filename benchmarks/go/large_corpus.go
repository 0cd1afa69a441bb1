package benchmarks

import (
	"fmt"
	"strings"

	bilingual "github.com/euforicio/bilingual-go"
	"github.com/euforicio/bilingual-go/tokenizer"
)

const vocabWords = 512

// LargeCorpus builds n synthetic en/it records whose sentences cycle through
// a fixed word list, with lengths spread between 4 and maxWords words.
func LargeCorpus(n, maxWords int) bilingual.SliceCorpus {
	out := make(bilingual.SliceCorpus, n)
	for i := range out {
		srcLen := 4 + i%max(1, maxWords-3)
		tgtLen := 4 + (i*7)%max(1, maxWords-3)
		out[i] = bilingual.Record{Translation: map[string]string{
			"en": sentence("w", i, srcLen),
			"it": sentence("p", i*3, tgtLen),
		}}
	}
	return out
}

// CorpusVocab returns a word-level tokenizer covering every word LargeCorpus
// emits for prefix, plus the reserved symbols.
func CorpusVocab(prefix string) (*tokenizer.WordLevel, error) {
	vocab := make(map[string]int64, vocabWords+len(tokenizer.ReservedSymbols))
	for i, sym := range tokenizer.ReservedSymbols {
		vocab[sym] = int64(i)
	}
	base := int64(len(tokenizer.ReservedSymbols))
	for i := 0; i < vocabWords; i++ {
		vocab[fmt.Sprintf("%s%d", prefix, i)] = base + int64(i)
	}
	return tokenizer.NewWordLevel(vocab, tokenizer.SymUNK)
}

func sentence(prefix string, seed, words int) string {
	var sb strings.Builder
	for j := 0; j < words; j++ {
		if j > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s%d", prefix, (seed+j*13)%vocabWords)
	}
	return sb.String()
}
