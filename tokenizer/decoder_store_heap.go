package tokenizer

import "github.com/pkg/errors"

// heapStore indexes token bytes by id in a single slice. Ids that were never
// assigned hold nil.
type heapStore struct {
	arr [][]byte
}

func newTokenStore(ranks Ranks) (tokenStore, error) {
	maxID := int64(-1)
	for _, id := range ranks {
		if id > maxID {
			maxID = id
		}
	}
	if maxID >= int64(len(ranks)) {
		return nil, errors.Errorf("tokenizer: rank %d out of range for %d entries", maxID, len(ranks))
	}
	arr := make([][]byte, maxID+1)
	for tok, id := range ranks {
		if id < 0 {
			return nil, errNegativeRank(tok, id)
		}
		if arr[id] == nil {
			arr[id] = []byte(tok)
		}
	}
	return &heapStore{arr: arr}, nil
}

func (s *heapStore) AppendInto(dst *[]byte, id int64) bool {
	if id < 0 || id >= int64(len(s.arr)) {
		return false
	}
	b := s.arr[id]
	if b == nil {
		return false
	}
	*dst = append(*dst, b...)
	return true
}

func (s *heapStore) Len() int { return len(s.arr) }
