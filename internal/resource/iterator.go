package resource

// Iterator provides sequential access to a stream of values.
//
// Usage:
//
//	it := bucket.Collection("Objects").Resources(ctx)
//	defer it.Close()
//	for it.Next() {
//		obj := it.Value()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type Iterator[T any] interface {
	// Next advances to the next value. Returns false when exhausted or on
	// error.
	Next() bool

	// Value returns the current value. Only valid after Next returns true.
	Value() T

	// Err returns the first error encountered, if any.
	Err() error

	// Close releases resources held by the iterator.
	Close() error
}
