package registry

// Table is an order-aligned snapshot of one entity table: IDs[i] is the key
// of Values[i], in insertion order. Overwriting an existing ID keeps its
// original position.
type Table[V any] struct {
	IDs    []uint64
	Values []V
}

// Len returns the number of rows in the snapshot.
func (t Table[V]) Len() uint64 {
	return uint64(len(t.IDs))
}

// Entry is one (id, value) pair produced by Window.
type Entry[V any] struct {
	ID    uint64
	Value V
}

// Window projects the sub-sequence of (id, value) pairs whose positional
// index falls in [fromIndex, min(len, limit)). It is the single pagination
// path shared by every list operation.
//
// Note that limit is an exclusive upper index bound clamped to the table
// size, not a count of entries to return. A fromIndex at or past the upper
// bound yields an empty result, never an error. Nil fromIndex defaults to 0
// and nil limit to the table size.
func Window[V any](t Table[V], fromIndex, limit *uint64) []Entry[V] {
	from := uint64(0)
	if fromIndex != nil {
		from = *fromIndex
	}
	upper := t.Len()
	if limit != nil && *limit < upper {
		upper = *limit
	}
	if from >= upper {
		return nil
	}
	entries := make([]Entry[V], 0, upper-from)
	for i := from; i < upper; i++ {
		entries = append(entries, Entry[V]{ID: t.IDs[i], Value: t.Values[i]})
	}
	return entries
}
