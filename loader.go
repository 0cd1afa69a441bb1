package bilingual

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// OverflowPolicy decides what the loader does with records that fail with a
// *CapacityError.
type OverflowPolicy int

const (
	// PolicyAbort stops the run on the first oversized record.
	PolicyAbort OverflowPolicy = iota
	// PolicySkip logs oversized records and leaves them out.
	PolicySkip
)

func (p OverflowPolicy) String() string {
	switch p {
	case PolicyAbort:
		return "abort"
	case PolicySkip:
		return "skip"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// LoaderOptions configures EncodeAll and Batches. Zero values pick a batch
// size of 1, BILINGUAL_WORKERS (or GOMAXPROCS) workers, PolicyAbort and a
// discarding logger.
type LoaderOptions struct {
	BatchSize int
	Workers   int
	Policy    OverflowPolicy
	Logger    *slog.Logger
}

func (o LoaderOptions) withDefaults() LoaderOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 1
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers()
	}
	o.Logger = orDiscard(o.Logger)
	return o
}

// Batch stacks samples along a leading batch dimension.
type Batch struct {
	Indices      []int
	EncoderInput [][]int64
	DecoderInput [][]int64
	Label        [][]int64
	EncoderMask  [][]bool
	DecoderMask  [][][]bool
	SrcText      []string
	TgtText      []string
}

// Size is the number of samples in the batch.
func (b *Batch) Size() int { return len(b.EncoderInput) }

// EncodeAll encodes every record on a bounded worker pool and returns the
// samples in corpus order together with their corpus indices. Under
// PolicySkip oversized records are dropped from both slices; any other error
// cancels the remaining work.
func (d *Dataset) EncodeAll(ctx context.Context, opts LoaderOptions) ([]*Sample, []int, error) {
	opts = opts.withDefaults()
	n := d.Len()
	results := make([]*Sample, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < n; i++ {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := d.Get(i)
			if err == nil {
				results[i] = s
				return nil
			}
			if ce, ok := AsCapacityError(err); ok && opts.Policy == PolicySkip {
				logCapacity(gctx, opts.Logger, "bilingual: skipping record", i, ce)
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	samples := make([]*Sample, 0, n)
	indices := make([]int, 0, n)
	for i, s := range results {
		if s == nil {
			continue
		}
		samples = append(samples, s)
		indices = append(indices, i)
	}
	return samples, indices, nil
}

// Batches encodes the dataset and groups consecutive samples into batches of
// opts.BatchSize. The last batch may be shorter.
func (d *Dataset) Batches(ctx context.Context, opts LoaderOptions) ([]*Batch, error) {
	opts = opts.withDefaults()
	samples, indices, err := d.EncodeAll(ctx, opts)
	if err != nil {
		return nil, err
	}
	batches := make([]*Batch, 0, (len(samples)+opts.BatchSize-1)/opts.BatchSize)
	for lo := 0; lo < len(samples); lo += opts.BatchSize {
		hi := min(lo+opts.BatchSize, len(samples))
		b, err := Collate(samples[lo:hi])
		if err != nil {
			return nil, err
		}
		b.Indices = append([]int(nil), indices[lo:hi]...)
		batches = append(batches, b)
	}
	return batches, nil
}

// Collate stacks samples that share a seq_len. Rows alias the samples'
// slices. Indices is left nil.
func Collate(samples []*Sample) (*Batch, error) {
	b := &Batch{
		EncoderInput: make([][]int64, 0, len(samples)),
		DecoderInput: make([][]int64, 0, len(samples)),
		Label:        make([][]int64, 0, len(samples)),
		EncoderMask:  make([][]bool, 0, len(samples)),
		DecoderMask:  make([][][]bool, 0, len(samples)),
		SrcText:      make([]string, 0, len(samples)),
		TgtText:      make([]string, 0, len(samples)),
	}
	for i, s := range samples {
		if s.SeqLen() != samples[0].SeqLen() {
			return nil, fmt.Errorf("%w: sample %d has %d, sample 0 has %d", ErrMixedSeqLen, i, s.SeqLen(), samples[0].SeqLen())
		}
		b.EncoderInput = append(b.EncoderInput, s.EncoderInput)
		b.DecoderInput = append(b.DecoderInput, s.DecoderInput)
		b.Label = append(b.Label, s.Label)
		b.EncoderMask = append(b.EncoderMask, s.EncoderMask)
		b.DecoderMask = append(b.DecoderMask, s.DecoderMask)
		b.SrcText = append(b.SrcText, s.SrcText)
		b.TgtText = append(b.TgtText, s.TgtText)
	}
	return b, nil
}
