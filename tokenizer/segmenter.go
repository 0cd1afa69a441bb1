package tokenizer

import (
	"unicode"
	"unicode/utf8"
)

// Segmenter splits text into pre-tokenization pieces. Next returns the end
// index (exclusive) of the piece starting at i and must return a value > i
// whenever i < len(s).
type Segmenter interface{ Next(s string, i int) int }

type wordSegmenter struct{}

// NewWordSegmenter returns the GPT-2 style splitter used by the BPE tokenizer:
// letter runs and punctuation runs keep one leading space, digits are grouped
// in runs of at most three, and a whitespace run leaves its final space to the
// word that follows it.
func NewWordSegmenter() Segmenter { return wordSegmenter{} }

func (wordSegmenter) Next(s string, i int) int {
	if i >= len(s) {
		return i
	}
	if end := ruleLetters(s, i); end > i {
		return end
	}
	if end := ruleNumbers(s, i); end > i {
		return end
	}
	if end := rulePunctRun(s, i); end > i {
		return end
	}
	if end := ruleWhitespace(s, i); end > i {
		return end
	}
	// Fallback: single rune
	_, sz := decodeRuneAt(s, i)
	return i + sz
}

func decodeRuneAt(s string, i int) (rune, int) {
	if b := s[i]; b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRuneInString(s[i:])
}

func isL(r rune) bool     { return unicode.Is(unicode.L, r) || unicode.Is(unicode.M, r) }
func isN(r rune) bool     { return unicode.Is(unicode.N, r) }
func isSpace(r rune) bool { return unicode.IsSpace(r) }

// skipLeadingSpace consumes a single ASCII space at i when the rune after it
// satisfies accept.
func skipLeadingSpace(s string, i int, accept func(rune) bool) int {
	if i+1 >= len(s) || s[i] != ' ' {
		return i
	}
	r, _ := decodeRuneAt(s, i+1)
	if accept(r) {
		return i + 1
	}
	return i
}

func ruleLetters(s string, i int) int {
	j := skipLeadingSpace(s, i, isL)
	start := j
	for j < len(s) {
		r, sz := decodeRuneAt(s, j)
		if !isL(r) {
			break
		}
		j += sz
	}
	if j == start {
		return i
	}
	return j
}

func ruleNumbers(s string, i int) int {
	j := skipLeadingSpace(s, i, isN)
	count := 0
	for j < len(s) && count < 3 {
		r, sz := decodeRuneAt(s, j)
		if !isN(r) {
			break
		}
		j += sz
		count++
	}
	if count == 0 {
		return i
	}
	return j
}

func isPunct(r rune) bool { return !isSpace(r) && !isL(r) && !isN(r) }

func rulePunctRun(s string, i int) int {
	j := skipLeadingSpace(s, i, isPunct)
	start := j
	for j < len(s) {
		r, sz := decodeRuneAt(s, j)
		if !isPunct(r) {
			break
		}
		j += sz
	}
	if j == start {
		return i
	}
	return j
}

func ruleWhitespace(s string, i int) int {
	j := i
	last := i
	for j < len(s) {
		r, sz := decodeRuneAt(s, j)
		if !isSpace(r) {
			break
		}
		last = j
		j += sz
	}
	if j == i {
		return i
	}
	// Leave a trailing ASCII space to prefix the next word.
	if j < len(s) && last > i && s[last] == ' ' {
		return last
	}
	return j
}
