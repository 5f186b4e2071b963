package cache

import "errors"

// ErrNotFound is returned by ExactStore.Get and VectorStore.Search when
// no entry satisfies the lookup. It is not an error condition for the
// pipeline — it signals "advance to the next tier."
var ErrNotFound = errors.New("cache: not found")
