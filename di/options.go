package di

import "go.uber.org/zap"

// Option configures a Table.
type Option func(*Table)

// WithValidator installs the interception Validator. A table with a
// Validator also needs a ProxyFactory.
func WithValidator(v Validator) Option {
	return func(t *Table) { t.validator = v }
}

// WithProxyFactory installs the ProxyFactory used for accepted registrations.
func WithProxyFactory(f ProxyFactory) Option {
	return func(t *Table) { t.proxies = f }
}

// WithInterception is shorthand for WithValidator and WithProxyFactory.
func WithInterception(v Validator, f ProxyFactory) Option {
	return func(t *Table) {
		t.validator = v
		t.proxies = f
	}
}

// WithLogger sets the logger. Nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.log = l
		}
	}
}

// WithObserver sets the event observer. Nil keeps the no-op default.
func WithObserver(o Observer) Option {
	return func(t *Table) {
		if o != nil {
			t.obs = o
		}
	}
}
