// Package chainmap provides HashMap, a generic associative container backed
// by an array of hash buckets with chained collision resolution.
//
// HashMap is a drop-in style replacement for a built-in map with an explicit
// bucket model: lookups hash into a bucket and scan its chain, inserts push
// to the chain head, and a load-factor policy grows or shrinks the table by
// rebuilding it wholesale. A cached first-occupied-bucket cursor makes
// Begin() O(1) instead of an O(buckets) scan.
//
// Key properties of chainmap.HashMap:
//   - Duplicate-key Insert is a silent no-op; the stored value is never
//     overwritten by Insert (use Ref or SetValue to mutate)
//   - Pluggable hash function, defaulting to Go's built-in per-type hasher
//   - Zero-value usability for convenient initialization
//   - Forward iteration via an explicit (bucket, chain position) iterator
//     as well as range functions
//
// A HashMap is not safe for concurrent use. It assumes exclusive external
// ownership; callers needing concurrency must wrap it in their own locking.
// Any insert or erase that triggers a grow or shrink rebuild invalidates all
// previously obtained iterators and value pointers.
package chainmap

import (
	"math/rand/v2"
	"unsafe"
)

const (
	// DefaultInitialBucketCount is the bucket count of a freshly created or
	// cleared table. Starting at 128 prevents frequent resizing in the
	// beginning.
	DefaultInitialBucketCount = 128
	// DefaultLoadFactorDivisor sets the resize thresholds. The table grows
	// when occupancy reaches 1/divisor and shrinks when it falls to
	// 1/divisor². The gap between the two keeps grow and shrink from
	// ping-ponging.
	DefaultLoadFactorDivisor = 4
)

// Entry is a key-value pair, used for bulk construction and iteration
// snapshots.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// node is one link in a bucket's chain. The key is fixed for the node's
// lifetime; only the value may change.
type node[K comparable, V any] struct {
	key   K
	value V
	next  *node[K, V]
}

// bucket heads the chain of entries whose keys hash to its slot. Insertion
// is always at the head, so chain order is most-recently-inserted first.
type bucket[K comparable, V any] struct {
	head *node[K, V]
}

// HashMap maps unique keys to values using chained hash buckets.
//
// The zero value is ready to use with the default hasher and configuration.
// Use New, NewWithHasher or NewFromEntries to configure construction.
type HashMap[K comparable, V any] struct {
	//lint:ignore U1000 prevents false sharing
	pad [(CacheLineSize - unsafe.Sizeof(struct {
		buckets        []struct{}
		hasher         func(struct{}, uintptr) uintptr
		seed           uintptr
		size           int
		first          int
		initialBuckets int
		loadDivisor    int
	}{})%CacheLineSize) % CacheLineSize]byte

	buckets []bucket[K, V]
	hasher  Hasher[K]
	seed    uintptr
	size    int
	// first is the lowest-indexed non-empty bucket, or len(buckets)-1 (the
	// end-sentinel bucket) when the map is empty. Every bucket below it is
	// empty. Maintained by Insert, Erase and the rebuild path; Begin reads
	// it directly.
	first          int
	initialBuckets int // WithInitialBucketCount
	loadDivisor    int // WithLoadFactorDivisor
}

// Config defines configurable HashMap options.
type Config struct {
	initialBuckets int
	loadDivisor    int
}

// WithInitialBucketCount sets the bucket count used by a fresh or cleared
// table. Values below 1 are ignored.
func WithInitialBucketCount(n int) func(*Config) {
	return func(c *Config) {
		if n >= 1 {
			c.initialBuckets = n
		}
	}
}

// WithLoadFactorDivisor sets the load factor divisor controlling the grow
// and shrink thresholds. Values below 2 are ignored, since a divisor of 1
// would make the thresholds meet and ping-pong.
func WithLoadFactorDivisor(d int) func(*Config) {
	return func(c *Config) {
		if d >= 2 {
			c.loadDivisor = d
		}
	}
}

// New creates an empty HashMap with the default hasher.
func New[K comparable, V any](options ...func(*Config)) *HashMap[K, V] {
	return NewWithHasher[K, V](nil, options...)
}

// NewWithHasher creates an empty HashMap using the supplied hash function.
// A nil hasher falls back to the built-in one. The hasher is kept by value
// and never mutated; it must be deterministic for equal keys and free of
// side effects.
func NewWithHasher[K comparable, V any](
	hasher Hasher[K],
	options ...func(*Config),
) *HashMap[K, V] {
	m := &HashMap[K, V]{}
	m.Init(hasher, options...)
	return m
}

// NewFromEntries creates a HashMap holding the given entries. The table is
// pre-sized to exactly len(entries) buckets before inserting, with no
// load-factor headroom, so one or more grows may trigger while the entries
// are inserted; that is expected, not a bug. Duplicate keys keep the first
// occurrence.
func NewFromEntries[K comparable, V any](
	entries []Entry[K, V],
	options ...func(*Config),
) *HashMap[K, V] {
	return NewFromEntriesWithHasher[K, V](entries, nil, options...)
}

// NewFromEntriesWithHasher is NewFromEntries with an explicit hasher.
func NewFromEntriesWithHasher[K comparable, V any](
	entries []Entry[K, V],
	hasher Hasher[K],
	options ...func(*Config),
) *HashMap[K, V] {
	m := NewWithHasher[K, V](hasher, options...)
	if len(entries) > 0 {
		m.Resize(len(entries))
	}
	for _, e := range entries {
		m.Insert(e.Key, e.Value)
	}
	return m
}

// NewFromMap creates a HashMap holding a copy of src's pairs.
func NewFromMap[K comparable, V any](
	src map[K]V,
	options ...func(*Config),
) *HashMap[K, V] {
	m := New[K, V](options...)
	if len(src) > 0 {
		m.Resize(len(src))
	}
	for k, v := range src {
		m.Insert(k, v)
	}
	return m
}

// Init applies the hasher and options to an unused map. It is called
// implicitly by the constructors and by the first operation on a zero-value
// map; calling it on a populated map discards its contents.
func (m *HashMap[K, V]) Init(hasher Hasher[K], options ...func(*Config)) {
	c := &Config{
		initialBuckets: DefaultInitialBucketCount,
		loadDivisor:    DefaultLoadFactorDivisor,
	}
	for _, opt := range options {
		opt(c)
	}
	if hasher == nil {
		hasher = defaultHasher[K]()
	}
	m.hasher = hasher
	m.seed = uintptr(rand.Uint64())
	m.initialBuckets = c.initialBuckets
	m.loadDivisor = c.loadDivisor
	m.reset()
}

// init lazily initializes a zero-value map.
func (m *HashMap[K, V]) init() {
	if m.buckets == nil {
		m.Init(nil)
	}
}

// reset installs a fresh initial-size table with the end-sentinel cursor.
func (m *HashMap[K, V]) reset() {
	m.buckets = make([]bucket[K, V], m.initialBuckets)
	m.size = 0
	m.first = m.initialBuckets - 1
}

// Size returns the number of entries. O(1).
func (m *HashMap[K, V]) Size() int {
	return m.size
}

// Empty reports whether the map holds no entries.
func (m *HashMap[K, V]) Empty() bool {
	return m.size == 0
}

// BucketCount returns the current number of buckets.
func (m *HashMap[K, V]) BucketCount() int {
	m.init()
	return len(m.buckets)
}

// Hasher returns the configured hash function.
func (m *HashMap[K, V]) Hasher() Hasher[K] {
	m.init()
	return m.hasher
}

func (m *HashMap[K, V]) bucketIndex(key K) int {
	return int(m.hasher(key, m.seed) % uintptr(len(m.buckets)))
}

// lookup scans one bucket's chain by key. O(chain length).
func (m *HashMap[K, V]) lookup(idx int, key K) *node[K, V] {
	for n := m.buckets[idx].head; n != nil; n = n.next {
		if n.key == key {
			return n
		}
	}
	return nil
}

// Insert adds the pair if the key is absent. Inserting an existing key is a
// silent no-op and never overwrites the stored value. A successful insert
// may grow the table, invalidating outstanding iterators and value
// pointers.
func (m *HashMap[K, V]) Insert(key K, value V) {
	m.init()
	idx := m.bucketIndex(key)
	if m.lookup(idx, key) != nil {
		return
	}

	b := &m.buckets[idx]
	b.head = &node[K, V]{key: key, value: value, next: b.head}
	m.size++
	if idx < m.first {
		m.first = idx
	}

	if m.loadDivisor*m.size >= len(m.buckets) {
		m.Resize(len(m.buckets) * m.loadDivisor)
	}
}

// Erase removes the entry for key, if any; erasing an absent key is a
// silent no-op. Removal splices the chain by key identity alone. Erasing
// the last entry resets the table to its initial bucket count; any other
// successful erase may shrink the table. Both cases invalidate outstanding
// iterators and value pointers.
func (m *HashMap[K, V]) Erase(key K) {
	m.init()
	idx := m.bucketIndex(key)
	b := &m.buckets[idx]

	var prev *node[K, V]
	for n := b.head; n != nil; n = n.next {
		if n.key == key {
			if prev == nil {
				b.head = n.next
			} else {
				prev.next = n.next
			}
			m.size--

			if m.size == 0 {
				m.Clear()
				return
			}
			if m.first == idx && b.head == nil {
				m.advanceFirst()
			}
			if m.size*m.loadDivisor <= len(m.buckets)/m.loadDivisor {
				m.Resize(len(m.buckets) / m.loadDivisor)
			}
			return
		}
		prev = n
	}
}

// advanceFirst re-scans forward from the cursor for the next non-empty
// bucket, falling to the end sentinel if none remains.
func (m *HashMap[K, V]) advanceFirst() {
	for b := m.first; b < len(m.buckets); b++ {
		if m.buckets[b].head != nil {
			m.first = b
			return
		}
	}
	m.first = len(m.buckets) - 1
}

// Find returns an iterator at the entry for key, or End() if absent.
func (m *HashMap[K, V]) Find(key K) Iterator[K, V] {
	m.init()
	idx := m.bucketIndex(key)
	if n := m.lookup(idx, key); n != nil {
		return Iterator[K, V]{m: m, bucket: idx, node: n}
	}
	return m.End()
}

// Load returns the value stored for key.
func (m *HashMap[K, V]) Load(key K) (value V, ok bool) {
	m.init()
	if n := m.lookup(m.bucketIndex(key), key); n != nil {
		return n.value, true
	}
	return value, false
}

// At returns the value stored for key, or an error wrapping ErrKeyNotFound
// if the key is absent. At never modifies the map.
func (m *HashMap[K, V]) At(key K) (value V, err error) {
	m.init()
	if n := m.lookup(m.bucketIndex(key), key); n != nil {
		return n.value, nil
	}
	return value, keyNotFound(key)
}

// Ref returns a pointer to the value stored for key, inserting the zero
// value first when the key is absent. The pointer stays valid until the
// next grow or shrink rebuild.
func (m *HashMap[K, V]) Ref(key K) *V {
	m.init()
	if n := m.lookup(m.bucketIndex(key), key); n != nil {
		return &n.value
	}
	var zero V
	m.Insert(key, zero)
	// The insert may have rebuilt the table; fetch the node actually stored.
	return &m.lookup(m.bucketIndex(key), key).value
}

// Clear removes all entries and resets the table to its initial bucket
// count. The configured hasher is kept.
func (m *HashMap[K, V]) Clear() {
	m.init()
	m.reset()
}

// Resize rebuilds the table at exactly bucketCount buckets regardless of the
// load-factor policy, re-hashing every entry. Entries are re-inserted
// through the normal insert path, so a target too small for the current
// size is immediately corrected by the grow policy during the rebuild. The
// old table is discarded in one step; all iterators and value pointers are
// invalidated. A bucketCount below 1 panics.
func (m *HashMap[K, V]) Resize(bucketCount int) {
	m.init()
	if bucketCount < 1 {
		panic("chainmap: bucket count must be at least 1")
	}

	fresh := &HashMap[K, V]{
		buckets:        make([]bucket[K, V], bucketCount),
		hasher:         m.hasher,
		seed:           m.seed,
		first:          bucketCount - 1,
		initialBuckets: m.initialBuckets,
		loadDivisor:    m.loadDivisor,
	}
	for b := m.first; b < len(m.buckets); b++ {
		for n := m.buckets[b].head; n != nil; n = n.next {
			fresh.Insert(n.key, n.value)
		}
	}
	m.buckets, m.size, m.first = fresh.buckets, fresh.size, fresh.first
}

// Clone returns a copy with the same hasher and logical contents. The copy
// is built by range construction, so it does not preserve the source's
// exact bucket count.
func (m *HashMap[K, V]) Clone() *HashMap[K, V] {
	m.init()
	c := &HashMap[K, V]{
		hasher:         m.hasher,
		seed:           m.seed,
		initialBuckets: m.initialBuckets,
		loadDivisor:    m.loadDivisor,
	}
	c.reset()
	if m.size > 0 {
		c.Resize(m.size)
	}
	m.Range(func(k K, v V) bool {
		c.Insert(k, v)
		return true
	})
	return c
}

// CopyFrom replaces the receiver's contents with a copy of other's entries
// and hasher. Self-assignment is a no-op. The receiver keeps its own
// configuration knobs; the bucket count is rebuilt from other's size rather
// than copied.
func (m *HashMap[K, V]) CopyFrom(other *HashMap[K, V]) {
	if m == other {
		return
	}
	m.init()
	other.init()

	m.hasher = other.hasher
	m.seed = other.seed
	m.reset()
	if other.size > 0 {
		m.Resize(other.size)
	}
	other.Range(func(k K, v V) bool {
		m.Insert(k, v)
		return true
	})
}

// Range iterates over all entries, starting at the first-occupied cursor
// and walking bucket chains in index order, until yield returns false.
//
// Notes:
//   - The map must not be mutated during the iteration.
//   - Values are copied out; use iterators or Ref to mutate in place.
func (m *HashMap[K, V]) Range(yield func(key K, value V) bool) {
	if m.buckets == nil {
		return
	}
	for b := m.first; b < len(m.buckets); b++ {
		for n := m.buckets[b].head; n != nil; n = n.next {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// All is the iterator form of Range, usable with range-over-func.
func (m *HashMap[K, V]) All() func(yield func(K, V) bool) {
	return m.Range
}

// RangeKeys iterates over all keys.
func (m *HashMap[K, V]) RangeKeys(yield func(key K) bool) {
	m.Range(func(k K, _ V) bool {
		return yield(k)
	})
}

// RangeValues iterates over all values.
func (m *HashMap[K, V]) RangeValues(yield func(value V) bool) {
	m.Range(func(_ K, v V) bool {
		return yield(v)
	})
}

// Keys is the iterator form of RangeKeys.
func (m *HashMap[K, V]) Keys() func(yield func(K) bool) {
	return m.RangeKeys
}

// Values is the iterator form of RangeValues.
func (m *HashMap[K, V]) Values() func(yield func(V) bool) {
	return m.RangeValues
}

// ToMap collects all entries into a built-in map[K]V.
func (m *HashMap[K, V]) ToMap() map[K]V {
	a := make(map[K]V, m.Size())
	m.Range(func(k K, v V) bool {
		a[k] = v
		return true
	})
	return a
}
