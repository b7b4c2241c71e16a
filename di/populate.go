package di

import "go.uber.org/zap"

// Populate ingests registrations.
//
// Registrations for collection contracts are dropped: collections are only
// ever assembled by the table. Registrations for open generic contracts are
// stored unmodified under their definition. Everything else is run through
// interception and appended under its exact contract.
//
// Populate stops at the first Validator or ProxyFactory failure and returns
// it as an InterceptionError; registrations before it remain in the table.
// It panics with ErrNilDescriptor on a nil entry.
func (t *Table) Populate(descriptors []*Descriptor) error {
	for _, d := range descriptors {
		if d == nil {
			panic(ErrNilDescriptor)
		}
		st := d.serviceType
		switch {
		case IsCollection(st):
			t.log.Debug("collection registration ignored", zap.Stringer("contract", st))
		case st.IsOpen():
			appendTo(&t.generic, st.Definition(), d)
		default:
			wrapped, err := t.intercept(d)
			if err != nil {
				return err
			}
			appendTo(&t.concrete, st, wrapped)
		}
	}
	return nil
}
