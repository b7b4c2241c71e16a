// Package manifest reads service registrations from YAML.
//
// A manifest declares the types and generic definitions it refers to, then
// the services:
//
//	types:
//	  - {name: User}
//	  - {name: Logger, interface: true}
//	generics:
//	  - {name: Repository, arity: 1, interface: true}
//	  - {name: SqlRepository, arity: 1, accept: ["User", "Order"]}
//	services:
//	  - {contract: Logger, kind: delegate, lifetime: singleton, value: console}
//	  - {contract: "Repository[]", implementation: "SqlRepository[]"}
//
// Contracts and implementations are type expressions (see Catalog.Parse).
// Instance and delegate entries carry their value string: instances hold it
// directly, delegates return it from their factory.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sghaida/svctable/di"
)

// Service kinds.
const (
	KindType     = "type"
	KindInstance = "instance"
	KindDelegate = "delegate"
)

// TypeDecl declares a synthetic closed type.
type TypeDecl struct {
	Name      string `yaml:"name"`
	Interface bool   `yaml:"interface"`
}

// GenericDecl declares a generic definition. Accept, when set, is a list of
// glob patterns every type argument must match when the definition is closed
// during specialization.
type GenericDecl struct {
	Name      string   `yaml:"name"`
	Arity     int      `yaml:"arity"`
	Interface bool     `yaml:"interface"`
	Accept    []string `yaml:"accept"`
}

// ServiceDecl declares one registration.
type ServiceDecl struct {
	Contract       string      `yaml:"contract"`
	Kind           string      `yaml:"kind"`
	Implementation string      `yaml:"implementation"`
	Lifetime       di.Lifetime `yaml:"lifetime"`
	Value          string      `yaml:"value"`
}

// Manifest is a decoded and resolved manifest document.
type Manifest struct {
	Types    []TypeDecl    `yaml:"types"`
	Generics []GenericDecl `yaml:"generics"`
	Services []ServiceDecl `yaml:"services"`

	catalog     *Catalog
	descriptors []*di.Descriptor
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error loading manifest from %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest and resolves every declaration. Unknown keys are
// rejected. All declaration problems are reported together.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if err := m.resolve(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Catalog returns the names declared by the manifest.
func (m *Manifest) Catalog() *Catalog { return m.catalog }

// Descriptors returns the registrations in declaration order. The slice is a
// copy; the descriptors are shared and immutable.
func (m *Manifest) Descriptors() []*di.Descriptor {
	out := make([]*di.Descriptor, len(m.descriptors))
	copy(out, m.descriptors)
	return out
}

func (m *Manifest) resolve() error {
	m.catalog = NewCatalog()
	var errs []error
	fail := func(where string, err error) {
		errs = append(errs, fmt.Errorf("%s: %w", where, err))
	}

	for i, d := range m.Types {
		where := "types[" + strconv.Itoa(i) + "]"
		if err := m.checkName(d.Name); err != nil {
			fail(where, err)
			continue
		}
		if d.Interface {
			m.catalog.Provide(d.Name, di.NamedInterface(d.Name))
		} else {
			m.catalog.Provide(d.Name, di.Named(d.Name))
		}
	}

	for i, d := range m.Generics {
		where := "generics[" + strconv.Itoa(i) + "]"
		if err := m.checkName(d.Name); err != nil {
			fail(where, err)
			continue
		}
		if d.Arity < 1 {
			fail(where, di.ArityError{Generic: d.Name, Want: 1, Got: d.Arity})
			continue
		}
		opts, err := genericOptions(d)
		if err != nil {
			fail(where, err)
			continue
		}
		m.catalog.ProvideGeneric(di.Define(d.Name, d.Arity, opts...))
	}

	for i, s := range m.Services {
		d, err := m.descriptor(s)
		if err != nil {
			fail("services["+strconv.Itoa(i)+"] ("+s.Contract+")", err)
			continue
		}
		m.descriptors = append(m.descriptors, d)
	}

	return errors.Join(errs...)
}

func (m *Manifest) checkName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("name is required")
	case strings.ContainsAny(name, "[]$, "):
		return fmt.Errorf("invalid name %q", name)
	case m.catalog.has(name):
		return fmt.Errorf("duplicate name %q", name)
	}
	return nil
}

func genericOptions(d GenericDecl) ([]di.GenericOption, error) {
	var opts []di.GenericOption
	if d.Interface {
		opts = append(opts, di.AsInterface())
	}
	if len(d.Accept) == 0 {
		return opts, nil
	}
	for _, p := range d.Accept {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("accept pattern %q: %w", p, err)
		}
	}
	accept := append([]string(nil), d.Accept...)
	opts = append(opts, di.WithConstraint(func(args []di.Type) error {
	next:
		for _, a := range args {
			for _, p := range accept {
				if ok, _ := path.Match(p, a.String()); ok {
					continue next
				}
			}
			return fmt.Errorf("%s is not accepted by %v", a, accept)
		}
		return nil
	}))
	return opts, nil
}

func (m *Manifest) descriptor(s ServiceDecl) (*di.Descriptor, error) {
	if strings.TrimSpace(s.Contract) == "" {
		return nil, errors.New("contract is required")
	}
	contract, err := m.catalog.Parse(s.Contract)
	if err != nil {
		return nil, err
	}
	if _, ok := contract.ParamIndex(); ok {
		return nil, di.ErrParamContract
	}

	kind := s.Kind
	if kind == "" {
		kind = KindType
	}
	switch kind {
	case KindType:
		if s.Implementation == "" {
			return nil, errors.New("implementation is required for kind type")
		}
		impl, err := m.catalog.Parse(s.Implementation)
		if err != nil {
			return nil, err
		}
		if impl.IsOpen() && !contract.IsOpen() {
			return nil, fmt.Errorf("open implementation %s for closed contract %s", impl, contract)
		}
		return di.NewType(contract, impl, s.Lifetime), nil
	case KindInstance:
		if s.Implementation != "" {
			return nil, errors.New("implementation is not allowed for kind instance")
		}
		return di.NewInstance(contract, s.Value), nil
	case KindDelegate:
		if s.Implementation != "" {
			return nil, errors.New("implementation is not allowed for kind delegate")
		}
		return di.NewDelegate(contract, s.Lifetime, valueFactory(s.Value)), nil
	default:
		return nil, fmt.Errorf("unknown kind %q", s.Kind)
	}
}

// valueFactory returns a factory producing v.
func valueFactory(v string) di.Factory {
	return func(di.Resolver) (any, error) { return v, nil }
}
