package di

import "go.uber.org/zap"

// Contains reports whether TryGetService would find a descriptor for st.
//
// A closed contract is contained when it is registered directly. A collection
// contract is contained when at least one registration satisfies its element
// type. Any other closed generic contract is contained when its definition
// has registrations and the most recent one can be closed over st's
// arguments. Contains never caches and never consults the Validator.
//
// It panics with ErrNilType when st is the zero Type.
func (t *Table) Contains(st Type) bool {
	st.must()
	if _, ok := t.concrete.Load(st); ok {
		return true
	}
	if !st.IsGeneric() || st.IsOpen() {
		return false
	}
	if IsCollection(st) {
		return t.hasElements(st.n.args[0])
	}
	v, ok := t.generic.Load(st.Definition())
	if !ok {
		return false
	}
	_, err := v.(*bucket).last().specialize(st)
	return err == nil
}

func (t *Table) hasElements(elem Type) bool {
	if _, ok := t.declared(elem); ok {
		return true
	}
	if !elem.IsGeneric() || elem.IsOpen() {
		return false
	}
	v, ok := t.generic.Load(elem.Definition())
	if !ok {
		return false
	}
	for _, g := range v.(*bucket).snapshot() {
		if _, err := g.specialize(elem); err == nil {
			return true
		}
	}
	return false
}

// TryGetService returns the winning descriptor for st.
//
// When several descriptors are registered for the same closed contract the
// most recently registered one wins. Collection contracts yield an aggregate
// of every matching registration; closed generic contracts are specialized
// from the latest open registration of their definition. Both are cached, so
// later calls return the stored result.
//
// A missing or unspecializable contract returns ok=false and a nil error.
// Validator and ProxyFactory failures are returned as InterceptionError.
// It panics with ErrNilType when st is the zero Type.
func (t *Table) TryGetService(st Type) (*Descriptor, bool, error) {
	st.must()
	if v, ok := t.concrete.Load(st); ok {
		t.obs.ObserveLookup(st, OutcomeHit)
		return v.(*bucket).last(), true, nil
	}
	if !st.IsGeneric() || st.IsOpen() {
		t.obs.ObserveLookup(st, OutcomeMiss)
		return nil, false, nil
	}
	switch st.Definition() {
	case Enumerable, ManyEnumerable:
		return t.resolveCollection(st)
	default:
		return t.resolveGeneric(st)
	}
}

func (t *Table) resolveGeneric(st Type) (*Descriptor, bool, error) {
	v, ok := t.generic.Load(st.Definition())
	if !ok {
		t.obs.ObserveLookup(st, OutcomeMiss)
		return nil, false, nil
	}
	d, ok, err := t.specialize(v.(*bucket).last(), st)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		t.obs.ObserveLookup(st, OutcomeMiss)
		return nil, false, nil
	}
	d = cacheIfAbsent(&t.concrete, st, d)
	t.obs.ObserveLookup(st, OutcomeSpecialized)
	t.log.Debug("generic registration specialized",
		zap.Stringer("contract", st),
		zap.Stringer("descriptor", d),
	)
	return d, true, nil
}

func (t *Table) resolveCollection(st Type) (*Descriptor, bool, error) {
	elems, err := t.elements(st.n.args[0])
	if err != nil {
		return nil, false, err
	}
	if len(elems) == 0 {
		t.obs.ObserveLookup(st, OutcomeMiss)
		return nil, false, nil
	}
	d := cacheIfAbsent(&t.concrete, st, newCollection(st, elems))
	t.obs.ObserveLookup(st, OutcomeAggregated)
	t.log.Debug("collection aggregated",
		zap.Stringer("contract", st),
		zap.Int("elements", len(elems)),
	)
	return d, true, nil
}

// elements assembles the element set of a collection: the registrations of
// elem in registration order, followed by every open registration of elem's
// definition that can be specialized for it.
func (t *Table) elements(elem Type) ([]*Descriptor, error) {
	var out []*Descriptor
	if b, ok := t.declared(elem); ok {
		out = append(out, b.snapshot()...)
	}
	if !elem.IsGeneric() || elem.IsOpen() {
		return out, nil
	}
	v, ok := t.generic.Load(elem.Definition())
	if !ok {
		return out, nil
	}
	for _, g := range v.(*bucket).snapshot() {
		d, ok, err := t.specialize(g, elem)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// specialize closes g over st and intercepts the result. ok is false when g
// cannot be specialized for st; err is only set by interception.
func (t *Table) specialize(g *Descriptor, st Type) (*Descriptor, bool, error) {
	d, err := g.specialize(st)
	if err != nil {
		t.obs.ObserveSpecializationFailure(st, err)
		t.log.Debug("generic registration not specialized",
			zap.Stringer("contract", st),
			zap.Stringer("registration", g),
			zap.Error(err),
		)
		return nil, false, nil
	}
	d, err = t.intercept(d)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}
