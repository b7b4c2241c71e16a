package proxy

import (
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/sghaida/svctable/di"
)

type kind uint8

const (
	classProxy kind = iota + 1
	interfaceProxy
)

type key struct {
	kind     kind
	contract di.Type
	impl     di.Type
}

// flight is the singleflight key; Type IDs are process-unique.
func (k key) flight() string {
	return strconv.Itoa(int(k.kind)) + ":" + strconv.FormatUint(k.contract.ID(), 10) + ":" +
		strconv.FormatUint(k.impl.ID(), 10)
}

// Memo is a memoizing di.ProxyFactory. Concurrent requests for the same pair
// share one call to the wrapped factory; results are kept in an LRU cache.
// Errors are not cached.
type Memo struct {
	next  di.ProxyFactory
	cache *lru.Cache[key, di.Type]
	group singleflight.Group

	calls atomic.Int64
}

var _ di.ProxyFactory = (*Memo)(nil)

// Memoize wraps next with a cache holding up to size proxy types.
func Memoize(next di.ProxyFactory, size int) (*Memo, error) {
	if next == nil {
		return nil, ErrNilFactory
	}
	cache, err := lru.New[key, di.Type](size)
	if err != nil {
		return nil, err
	}
	return &Memo{next: next, cache: cache}, nil
}

// CreateClassProxyType implements di.ProxyFactory.
func (m *Memo) CreateClassProxyType(contract, impl di.Type) (di.Type, error) {
	return m.get(key{kind: classProxy, contract: contract, impl: impl})
}

// CreateInterfaceProxyType implements di.ProxyFactory.
func (m *Memo) CreateInterfaceProxyType(contract, impl di.Type) (di.Type, error) {
	return m.get(key{kind: interfaceProxy, contract: contract, impl: impl})
}

// Calls returns how many times the wrapped factory has been invoked.
func (m *Memo) Calls() int64 { return m.calls.Load() }

// Len returns the number of cached proxy types.
func (m *Memo) Len() int { return m.cache.Len() }

func (m *Memo) get(k key) (di.Type, error) {
	if t, ok := m.cache.Get(k); ok {
		return t, nil
	}
	v, err, _ := m.group.Do(k.flight(), func() (any, error) {
		// Another flight may have filled the cache since the first check.
		if t, ok := m.cache.Get(k); ok {
			return t, nil
		}
		m.calls.Add(1)
		var (
			t   di.Type
			err error
		)
		switch k.kind {
		case classProxy:
			t, err = m.next.CreateClassProxyType(k.contract, k.impl)
		default:
			t, err = m.next.CreateInterfaceProxyType(k.contract, k.impl)
		}
		if err != nil {
			return di.Type{}, err
		}
		m.cache.Add(k, t)
		return t, nil
	})
	if err != nil {
		return di.Type{}, err
	}
	return v.(di.Type), nil
}
