package tokenizer

import (
	"bufio"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// envVocabDir points relative vocabulary names at a local directory.
const envVocabDir = "BILINGUAL_VOCAB_DIR"

func errNegativeRank(tok string, id int64) error {
	return errors.Errorf("tokenizer: negative rank %d for %q", id, tok)
}

// VocabPath keeps absolute paths and joins relative names onto
// BILINGUAL_VOCAB_DIR when it is set.
func VocabPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if dir := os.Getenv(envVocabDir); dir != "" {
		return filepath.Join(dir, name)
	}
	return name
}

// LoadRanks reads a rank file from disk. See ReadRanks for the format.
func LoadRanks(name string) (Ranks, error) {
	path := VocabPath(name)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "tokenizer: open vocabulary %s", path)
	}
	defer func() { _ = f.Close() }()
	ranks, err := ReadRanks(f)
	if err != nil {
		return nil, errors.Wrapf(err, "tokenizer: read vocabulary %s", path)
	}
	return ranks, nil
}

// ReadRanks parses the tiktoken rank format: one entry per line, a base64
// token, a single space, and its decimal rank. Blank lines are ignored. Ranks
// must lie below the number of entries.
func ReadRanks(r io.Reader) (Ranks, error) {
	ranks := make(Ranks)
	br := bufio.NewReader(r)
	lineNo := 0
	maxRank, maxLine := int64(-1), 0
	for {
		line, e := br.ReadString('\n')
		if e != nil && !errors.Is(e, io.EOF) {
			return nil, e
		}
		if line == "" && errors.Is(e, io.EOF) {
			break
		}
		lineNo++
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			sp := strings.IndexByte(line, ' ')
			if sp <= 0 {
				return nil, errors.Errorf("invalid vocab at line %d", lineNo)
			}
			tok, de := base64.StdEncoding.DecodeString(line[:sp])
			if de != nil {
				return nil, errors.Wrapf(de, "b64 decode line %d", lineNo)
			}
			rank, se := strconv.ParseInt(line[sp+1:], 10, 64)
			if se != nil {
				return nil, errors.Wrapf(se, "rank parse line %d", lineNo)
			}
			if rank < 0 {
				return nil, errNegativeRank(string(tok), rank)
			}
			if rank > maxRank {
				maxRank, maxLine = rank, lineNo
			}
			ranks[string(tok)] = rank
		}
		if errors.Is(e, io.EOF) {
			break
		}
	}
	if len(ranks) == 0 {
		return nil, errors.New("empty vocabulary")
	}
	if maxRank >= int64(len(ranks)) {
		return nil, errors.Errorf("rank %d on line %d out of range for %d entries", maxRank, maxLine, len(ranks))
	}
	return ranks, nil
}

// LoadBPE loads a rank file and appends the reserved symbols right after the
// highest rank.
func LoadBPE(name string) (*BPE, error) {
	ranks, err := LoadRanks(name)
	if err != nil {
		return nil, err
	}
	return NewBPE(ranks, DefaultSpecials(maxRank(ranks)+1), NewWordSegmenter())
}

func maxRank(ranks Ranks) int64 {
	m := int64(-1)
	for _, r := range ranks {
		if r > m {
			m = r
		}
	}
	return m
}
