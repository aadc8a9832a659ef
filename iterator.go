package chainmap

// Iterator is a position within a HashMap: the owning map, a bucket index
// and a node within that bucket's chain. Obtain one from Begin, End or
// Find; the zero Iterator is not valid.
//
// Iterators compare with ==. Two iterators are equal when they reference
// the same map, the same bucket and the same chain position, so iterators
// obtained from different maps never compare equal. An iterator stays valid
// across read-only operations only; any grow or shrink rebuild replaces the
// backing storage wholesale and invalidates every outstanding iterator.
type Iterator[K comparable, V any] struct {
	m      *HashMap[K, V]
	bucket int
	node   *node[K, V]
}

// Begin returns an iterator at the first entry in bucket order. It reads
// the first-occupied cursor, so it is O(1). On an empty map Begin equals
// End.
func (m *HashMap[K, V]) Begin() Iterator[K, V] {
	m.init()
	return Iterator[K, V]{m: m, bucket: m.first, node: m.buckets[m.first].head}
}

// End returns the past-the-end sentinel: one past the last entry of the
// final bucket. The chain end of the final bucket is a well-defined marker
// whether or not that bucket is occupied.
func (m *HashMap[K, V]) End() Iterator[K, V] {
	m.init()
	return Iterator[K, V]{m: m, bucket: len(m.buckets) - 1}
}

// Next advances to the next occupied position: the chain successor inside
// the current bucket if there is one, otherwise the first entry of the next
// non-empty bucket, otherwise End. Advancing an end iterator leaves it at
// End.
func (it *Iterator[K, V]) Next() {
	if it.node != nil && it.node.next != nil {
		it.node = it.node.next
		return
	}
	for b := it.bucket + 1; b < len(it.m.buckets); b++ {
		if head := it.m.buckets[b].head; head != nil {
			it.bucket, it.node = b, head
			return
		}
	}
	it.bucket, it.node = len(it.m.buckets)-1, nil
}

// Key returns the key at the iterator's position.
func (it Iterator[K, V]) Key() K {
	it.mustValid()
	return it.node.key
}

// Value returns a copy of the value at the iterator's position.
func (it Iterator[K, V]) Value() V {
	it.mustValid()
	return it.node.value
}

// SetValue replaces the value at the iterator's position. The key is
// immutable for the entry's lifetime and cannot be changed through an
// iterator.
func (it Iterator[K, V]) SetValue(value V) {
	it.mustValid()
	it.node.value = value
}

// Entry returns a copy of the entry at the iterator's position.
func (it Iterator[K, V]) Entry() Entry[K, V] {
	it.mustValid()
	return Entry[K, V]{Key: it.node.key, Value: it.node.value}
}

func (it Iterator[K, V]) mustValid() {
	if it.node == nil {
		panic("chainmap: dereference of end iterator")
	}
}
