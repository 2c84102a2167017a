package memory

import (
	"sort"

	"rara/internal/app/uow"
)

// row keeps insertion order so listings come back newest first.
type row[V any] struct {
	seq   int64
	value V
}

// table is the committed state of one aggregate collection. Callers hold the
// store lock.
type table[K comparable, V any] struct {
	rows    map[K]row[V]
	seq     int64
	clone   func(V) V
	version func(V) int64
	bump    func(V, int64)
}

func newTable[K comparable, V any](clone func(V) V, version func(V) int64, bump func(V, int64)) *table[K, V] {
	return &table[K, V]{rows: make(map[K]row[V]), clone: clone, version: version, bump: bump}
}

// overlay stages writes of one unit of work on top of a table.
type overlay[K comparable, V any] struct {
	base    *table[K, V]
	writes  map[K]row[V]
	deleted map[K]struct{}
	next    int64
}

func newOverlay[K comparable, V any](base *table[K, V]) *overlay[K, V] {
	return &overlay[K, V]{
		base:    base,
		writes:  make(map[K]row[V]),
		deleted: make(map[K]struct{}),
		next:    base.seq,
	}
}

func (o *overlay[K, V]) get(key K) (V, bool) {
	var zero V
	if _, gone := o.deleted[key]; gone {
		return zero, false
	}
	if r, ok := o.writes[key]; ok {
		return o.base.clone(r.value), true
	}
	if r, ok := o.base.rows[key]; ok {
		return o.base.clone(r.value), true
	}
	return zero, false
}

func (o *overlay[K, V]) current(key K) (row[V], bool) {
	if _, gone := o.deleted[key]; gone {
		return row[V]{}, false
	}
	if r, ok := o.writes[key]; ok {
		return r, true
	}
	r, ok := o.base.rows[key]
	return r, ok
}

func (o *overlay[K, V]) exists(key K) bool {
	_, ok := o.current(key)
	return ok
}

// put stores value under optimistic concurrency: the caller's version must
// match the stored one. The stored and caller copies advance by one.
func (o *overlay[K, V]) put(key K, value V) error {
	seq := int64(0)
	if existing, ok := o.current(key); ok {
		if o.base.version(existing.value) != o.base.version(value) {
			return uow.ErrConcurrentUpdate
		}
		seq = existing.seq
	} else {
		o.next++
		seq = o.next
	}
	next := o.base.version(value) + 1
	stored := o.base.clone(value)
	o.base.bump(stored, next)
	o.base.bump(value, next)
	delete(o.deleted, key)
	o.writes[key] = row[V]{seq: seq, value: stored}
	return nil
}

func (o *overlay[K, V]) remove(key K) bool {
	if !o.exists(key) {
		return false
	}
	delete(o.writes, key)
	o.deleted[key] = struct{}{}
	return true
}

// list returns clones matching keep, newest first.
func (o *overlay[K, V]) list(keep func(V) bool) []V {
	merged := make([]row[V], 0, len(o.base.rows)+len(o.writes))
	for key, r := range o.base.rows {
		if _, gone := o.deleted[key]; gone {
			continue
		}
		if _, staged := o.writes[key]; staged {
			continue
		}
		merged = append(merged, r)
	}
	for _, r := range o.writes {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].seq > merged[j].seq })
	out := make([]V, 0, len(merged))
	for _, r := range merged {
		if keep == nil || keep(r.value) {
			out = append(out, o.base.clone(r.value))
		}
	}
	return out
}

func (o *overlay[K, V]) apply() {
	for key := range o.deleted {
		delete(o.base.rows, key)
	}
	for key, r := range o.writes {
		o.base.rows[key] = r
	}
	if o.next > o.base.seq {
		o.base.seq = o.next
	}
}
