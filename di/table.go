package di

import (
	"sync"

	"go.uber.org/zap"
)

// Table is the service registry and resolution engine.
//
// It keeps two registries: closed contract types mapped to their ordered
// registrations, and open generic definitions mapped to the registrations
// declared against them. Lookups resolve plain contracts directly, specialize
// open generic registrations on demand and aggregate collection contracts,
// caching what they synthesize so the next lookup is a single map read.
//
// A Table is safe for concurrent use without external locking. Population is
// expected to finish before lookups start; interleaving them never corrupts
// the table but may leave earlier lookups unaware of later registrations.
type Table struct {
	concrete sync.Map // Type -> *bucket
	generic  sync.Map // *Generic -> *bucket

	validator Validator
	proxies   ProxyFactory
	log       *zap.Logger
	obs       Observer
}

// New creates an empty Table. It panics with ErrMissingProxyFactory when a
// Validator is configured without a ProxyFactory.
func New(opts ...Option) *Table {
	t := &Table{
		log: zap.NewNop(),
		obs: nopObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.validator != nil && t.proxies == nil {
		panic(ErrMissingProxyFactory)
	}
	return t
}

// Registrations returns a copy of every descriptor stored for the closed
// contract t, in registration order. A descriptor cached by a lookup is
// included until a declared registration for t replaces it.
func (t *Table) Registrations(st Type) []*Descriptor {
	st.must()
	v, ok := t.concrete.Load(st)
	if !ok {
		return nil
	}
	items := v.(*bucket).snapshot()
	out := make([]*Descriptor, len(items))
	copy(out, items)
	return out
}

// GenericRegistrations returns a copy of the registrations declared against
// the open definition g, in registration order.
func (t *Table) GenericRegistrations(g *Generic) []*Descriptor {
	if g == nil {
		return nil
	}
	v, ok := t.generic.Load(g)
	if !ok {
		return nil
	}
	items := v.(*bucket).snapshot()
	out := make([]*Descriptor, len(items))
	copy(out, items)
	return out
}

// Len returns the number of closed contracts currently known, including
// cached specializations and collections.
func (t *Table) Len() int {
	n := 0
	t.concrete.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Generics returns the open definitions that have registrations, in no
// particular order.
func (t *Table) Generics() []*Generic {
	var out []*Generic
	t.generic.Range(func(k, _ any) bool {
		out = append(out, k.(*Generic))
		return true
	})
	return out
}

// declared returns the bucket populated for st, ignoring buckets that only
// hold a cached specialization.
func (t *Table) declared(st Type) (*bucket, bool) {
	v, ok := t.concrete.Load(st)
	if !ok {
		return nil, false
	}
	b := v.(*bucket)
	if b.synthesized {
		return nil, false
	}
	return b, true
}
