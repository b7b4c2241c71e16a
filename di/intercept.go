package di

import "go.uber.org/zap"

// Validator decides whether a registration should be intercepted.
//
// TryValidate returns ok=false to leave d untouched. When ok is true, impl is
// the implementation type the proxy should wrap. Implementations must be safe
// for concurrent use and free of side effects visible to the table: the same
// descriptor may be validated more than once.
type Validator interface {
	TryValidate(d *Descriptor) (impl Type, ok bool, err error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(d *Descriptor) (Type, bool, error)

// TryValidate implements Validator.
func (f ValidatorFunc) TryValidate(d *Descriptor) (Type, bool, error) { return f(d) }

// ProxyFactory manufactures proxy types. Class proxies are used for
// non-interface contracts, interface proxies for interface contracts.
// Implementations must be safe for concurrent use; repeated calls with the
// same arguments should return the same type.
type ProxyFactory interface {
	CreateClassProxyType(contract, impl Type) (Type, error)
	CreateInterfaceProxyType(contract, impl Type) (Type, error)
}

// intercept runs d through the Validator and ProxyFactory. Collections and
// descriptors that are already proxies pass through unchanged.
func (t *Table) intercept(d *Descriptor) (*Descriptor, error) {
	if t.validator == nil || d.origin == OriginProxy || IsCollection(d.serviceType) {
		return d, nil
	}
	impl, ok, err := t.validator.TryValidate(d)
	if err != nil {
		return nil, InterceptionError{Contract: d.serviceType.String(), Err: err}
	}
	if !ok || impl.IsZero() {
		return d, nil
	}

	var proxyType Type
	if d.serviceType.IsInterface() {
		proxyType, err = t.proxies.CreateInterfaceProxyType(d.serviceType, impl)
	} else {
		proxyType, err = t.proxies.CreateClassProxyType(d.serviceType, impl)
	}
	if err != nil {
		return nil, InterceptionError{Contract: d.serviceType.String(), Err: err}
	}
	if proxyType.IsZero() {
		return d, nil
	}

	t.obs.ObserveProxy(d.serviceType, proxyType)
	t.log.Debug("registration proxied",
		zap.Stringer("contract", d.serviceType),
		zap.Stringer("implementation", impl),
		zap.Stringer("proxy", proxyType),
	)
	return NewProxy(d, proxyType), nil
}
