package tokenizer

// tokenStore maps token ids back to the bytes they were merged from.
// Implementations must not let references to internal storage escape.
type tokenStore interface {
	// AppendInto appends the bytes for token id into dst and returns true
	// if the id existed. Returns false when id is unknown.
	AppendInto(dst *[]byte, id int64) bool
	// Len reports one past the largest id held by the store.
	Len() int
}
