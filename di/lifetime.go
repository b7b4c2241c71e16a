package di

import "strings"

// Lifetime is the declared instance-sharing policy of a registration. The
// table only carries it; instance caching belongs to the hosting container.
type Lifetime uint8

const (
	// Transient creates a new instance on every resolution.
	Transient Lifetime = iota
	// Scoped shares one instance per scope.
	Scoped
	// Singleton shares one instance for the container's lifetime.
	Singleton
)

// String returns the lowercase lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// ParseLifetime parses a lifetime name, case-insensitively.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transient":
		return Transient, nil
	case "scoped":
		return Scoped, nil
	case "singleton":
		return Singleton, nil
	default:
		return 0, LifetimeError{Value: s}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifetime) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lifetime) UnmarshalText(b []byte) error {
	v, err := ParseLifetime(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
