package bilingual

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MaskedScore is the additive bias for hidden positions in AttentionBias and
// EncoderBias, the value attention layers fill masked scores with.
const MaskedScore = -1e9

// CausalMask returns a size x size matrix where entry (i, j) is true iff
// j <= i: a position sees itself and everything before it.
func CausalMask(size int) [][]bool {
	if size <= 0 {
		return [][]bool{}
	}
	cells := make([]bool, size*size)
	m := make([][]bool, size)
	for i := range m {
		row := cells[i*size : (i+1)*size : (i+1)*size]
		for j := 0; j <= i; j++ {
			row[j] = true
		}
		m[i] = row
	}
	return m
}

// PaddingMask is true at every position whose id is not pad.
func PaddingMask(ids []int64, pad int64) []bool {
	m := make([]bool, len(ids))
	for i, id := range ids {
		m[i] = id != pad
	}
	return m
}

// DecoderMask combines the padding mask of ids, broadcast across rows, with
// CausalMask(len(ids)): entry (i, j) is true iff ids[j] != pad and j <= i.
func DecoderMask(ids []int64, pad int64) [][]bool {
	keep := PaddingMask(ids, pad)
	m := CausalMask(len(ids))
	for i := range m {
		row := m[i]
		for j := 0; j <= i; j++ {
			row[j] = row[j] && keep[j]
		}
	}
	return m
}

// AttentionBias converts a rectangular boolean mask into additive attention
// scores: 0 where visible, MaskedScore where hidden. A row whose length
// differs from the first row's fails with a *ShapeError. A mask with no rows
// or no columns yields an empty matrix.
func AttentionBias(mask [][]bool) (*mat.Dense, error) {
	if len(mask) == 0 || len(mask[0]) == 0 {
		for i, row := range mask {
			if len(row) != 0 {
				return nil, &ShapeError{Field: fmt.Sprintf("mask row %d", i), Len: len(row), SeqLen: 0}
			}
		}
		return &mat.Dense{}, nil
	}
	rows, cols := len(mask), len(mask[0])
	data := make([]float64, rows*cols)
	for i, row := range mask {
		if len(row) != cols {
			return nil, &ShapeError{Field: fmt.Sprintf("mask row %d", i), Len: len(row), SeqLen: cols}
		}
		for j, ok := range row {
			if !ok {
				data[i*cols+j] = MaskedScore
			}
		}
	}
	return mat.NewDense(rows, cols, data), nil
}

// EncoderBias is the (1, len(mask)) additive view of an encoder padding mask.
func EncoderBias(mask []bool) *mat.Dense {
	if len(mask) == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, len(mask))
	for j, ok := range mask {
		if !ok {
			data[j] = MaskedScore
		}
	}
	return mat.NewDense(1, len(mask), data)
}
