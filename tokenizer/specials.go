package tokenizer

// Reserved symbols every translation tokenizer must recognise.
const (
	SymSOS = "[SOS]"
	SymEOS = "[EOS]"
	SymPAD = "[PAD]"
	SymUNK = "[UNK]"
)

// ReservedSymbols lists the reserved symbols in the order DefaultSpecials
// assigns ids to them.
var ReservedSymbols = []string{SymUNK, SymPAD, SymSOS, SymEOS}

// DefaultSpecials assigns consecutive ids starting at base to the reserved
// symbols. BPE vocabularies call this with base = max rank + 1 so specials
// never collide with merged tokens.
func DefaultSpecials(base int64) map[string]int64 {
	m := make(map[string]int64, len(ReservedSymbols))
	for i, sym := range ReservedSymbols {
		m[sym] = base + int64(i)
	}
	return m
}
