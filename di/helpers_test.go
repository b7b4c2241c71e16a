package di_test

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sghaida/svctable/di"
)

//
// -----------------------------------------------------------------------------
// Collaborator fakes
// -----------------------------------------------------------------------------

// countingValidator counts calls and accepts descriptors matching accept.
// Accepted descriptors are proxied over their own implementation type.
type countingValidator struct {
	calls  atomic.Int32
	accept func(d *di.Descriptor) bool
	err    error
}

func (v *countingValidator) TryValidate(d *di.Descriptor) (di.Type, bool, error) {
	v.calls.Add(1)
	if v.err != nil {
		return di.Type{}, false, v.err
	}
	if v.accept == nil || !v.accept(d) {
		return di.Type{}, false, nil
	}
	return d.ImplementationType(), true, nil
}

// namingProxies derives proxy types from the names of their inputs.
type namingProxies struct {
	class atomic.Int32
	iface atomic.Int32
	err   error
}

func (p *namingProxies) CreateClassProxyType(_, impl di.Type) (di.Type, error) {
	p.class.Add(1)
	if p.err != nil {
		return di.Type{}, p.err
	}
	return di.Named("ClassProxy(" + impl.String() + ")"), nil
}

func (p *namingProxies) CreateInterfaceProxyType(contract, impl di.Type) (di.Type, error) {
	p.iface.Add(1)
	if p.err != nil {
		return di.Type{}, p.err
	}
	return di.Named("InterfaceProxy(" + contract.String() + "," + impl.String() + ")"), nil
}

// recordingObserver keeps every event it receives.
type recordingObserver struct {
	mu       sync.Mutex
	lookups  []di.Outcome
	proxies  int
	failures []error
}

func (o *recordingObserver) ObserveLookup(_ di.Type, outcome di.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups = append(o.lookups, outcome)
}

func (o *recordingObserver) ObserveProxy(_, _ di.Type) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.proxies++
}

func (o *recordingObserver) ObserveSpecializationFailure(_ di.Type, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, err)
}

func (o *recordingObserver) outcomes() []di.Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]di.Outcome, len(o.lookups))
	copy(out, o.lookups)
	return out
}

//
// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

type Logger interface{ Log(msg string) }

type consoleLogger struct{ prefix string }

func (l *consoleLogger) Log(string) {}

type User struct{ ID string }

type Order struct{ ID string }

var errBoom = errors.New("boom")

func newLogger(di.Resolver) (any, error) { return &consoleLogger{}, nil }

// repoFixture declares Repository[$0] => SqlRepository[$0] with fresh
// definitions so tests do not share interned instantiations.
type repoFixture struct {
	Repository    *di.Generic
	SqlRepository *di.Generic
}

func newRepoFixture() repoFixture {
	return repoFixture{
		Repository:    di.Define("Repository", 1, di.AsInterface()),
		SqlRepository: di.Define("SqlRepository", 1),
	}
}

func (f repoFixture) open(lifetime di.Lifetime) *di.Descriptor {
	return di.NewType(f.Repository.Open(), f.SqlRepository.Open(), lifetime)
}
