// Package bilingual turns translation pairs into fixed-length training samples
// for an attention-based encoder-decoder model.
//
// An Encoder tokenizes a source/target pair, wraps the ids with [SOS], [EOS]
// and [PAD] to exactly SeqLen positions, and builds the encoder padding mask
// and the decoder causal+padding mask. A Dataset binds an Encoder to a Corpus
// and the loader helpers encode it on a bounded worker pool and collate the
// results into batches.
package bilingual
