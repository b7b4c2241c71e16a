package di

import (
	"sync"
	"sync/atomic"
)

// bucket is an append-only, copy-on-write list of descriptors for one key.
// Readers never lock; writers publish a fresh slice with compare-and-swap.
type bucket struct {
	items atomic.Pointer[[]*Descriptor]
	// synthesized marks buckets created by lazy caching rather than by
	// population.
	synthesized bool
}

func newBucket(synthesized bool, d *Descriptor) *bucket {
	b := &bucket{synthesized: synthesized}
	items := []*Descriptor{d}
	b.items.Store(&items)
	return b
}

func (b *bucket) append(d *Descriptor) {
	for {
		old := b.items.Load()
		next := make([]*Descriptor, len(*old)+1)
		copy(next, *old)
		next[len(*old)] = d
		if b.items.CompareAndSwap(old, &next) {
			return
		}
	}
}

// last returns the most recently appended descriptor. Buckets are never
// empty.
func (b *bucket) last() *Descriptor {
	items := *b.items.Load()
	return items[len(items)-1]
}

// snapshot returns the current list. The slice is shared and must not be
// modified.
func (b *bucket) snapshot() []*Descriptor {
	return *b.items.Load()
}

// appendTo adds d under key, creating the bucket on first use. A bucket that
// only holds a cached descriptor is replaced, so d becomes the first declared
// registration for key.
func appendTo(m *sync.Map, key any, d *Descriptor) {
	if v, ok := m.Load(key); ok && !v.(*bucket).synthesized {
		v.(*bucket).append(d)
		return
	}
	for {
		v, loaded := m.LoadOrStore(key, newBucket(false, d))
		if !loaded {
			return
		}
		b := v.(*bucket)
		if !b.synthesized {
			b.append(d)
			return
		}
		if m.CompareAndSwap(key, b, newBucket(false, d)) {
			return
		}
	}
}

// cacheIfAbsent stores a synthesized descriptor under key unless something is
// already there, and returns whichever descriptor won.
func cacheIfAbsent(m *sync.Map, key Type, d *Descriptor) *Descriptor {
	if v, loaded := m.LoadOrStore(key, newBucket(true, d)); loaded {
		return v.(*bucket).last()
	}
	return d
}
