package bilingual

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Dataset pairs a Corpus with an Encoder: Len is the corpus length and Get
// encodes one record on demand. Samples are built fresh on every call.
type Dataset struct {
	corpus Corpus
	enc    *Encoder
}

// NewDataset binds c to enc.
func NewDataset(c Corpus, enc *Encoder) *Dataset {
	return &Dataset{corpus: c, enc: enc}
}

// Len is the number of records in the corpus.
func (d *Dataset) Len() int { return d.corpus.Len() }

// Encoder returns the encoder samples are built with.
func (d *Dataset) Encoder() *Encoder { return d.enc }

// Get encodes record i.
func (d *Dataset) Get(i int) (*Sample, error) {
	rec, err := d.record(i)
	if err != nil {
		return nil, err
	}
	s, err := d.enc.Encode(rec)
	if err != nil {
		return nil, fmt.Errorf("bilingual: record %d: %w", i, err)
	}
	return s, nil
}

func (d *Dataset) record(i int) (Record, error) {
	if n := d.corpus.Len(); i < 0 || i >= n {
		return Record{}, indexError(i, n)
	}
	return d.corpus.Record(i)
}

// Filter returns, in order, the indices of records that fit in SeqLen.
// Records rejected with a *CapacityError are logged and left out; any other
// error stops the scan. A nil logger discards.
func (d *Dataset) Filter(ctx context.Context, logger *slog.Logger) ([]int, error) {
	logger = orDiscard(logger)
	keep := make([]int, 0, d.Len())
	for i := 0; i < d.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := d.record(i)
		if err != nil {
			return nil, err
		}
		err = d.enc.Check(rec)
		if ce, ok := AsCapacityError(err); ok {
			logCapacity(ctx, logger, "bilingual: dropping record", i, ce)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("bilingual: record %d: %w", i, err)
		}
		keep = append(keep, i)
	}
	return keep, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

func logCapacity(ctx context.Context, logger *slog.Logger, msg string, index int, ce *CapacityError) {
	logger.LogAttrs(ctx, slog.LevelWarn, msg,
		slog.Int("index", index),
		slog.String("side", string(ce.Side)),
		slog.Int("src_tokens", ce.SourceTokens),
		slog.Int("tgt_tokens", ce.TargetTokens),
		slog.Int("seq_len", ce.SeqLen),
	)
}
