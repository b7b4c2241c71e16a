// Package intercept provides a rule-based di.Validator.
//
// Rules are glob patterns (path.Match syntax) evaluated against the display
// name of a registration's implementation type, for example "Sql*[*]" or
// "*.consoleLogger". A registration is intercepted when its implementation
// matches at least one include pattern and no exclude pattern.
package intercept

import (
	"path"
	"strconv"

	"github.com/sghaida/svctable/di"
)

// Rules configures a Validator.
type Rules struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// PatternError reports a malformed glob pattern.
type PatternError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e PatternError) Error() string {
	return "intercept: bad pattern " + strconv.Quote(e.Pattern) + ": " + e.Err.Error()
}

// Unwrap returns the underlying path.ErrBadPattern.
func (e PatternError) Unwrap() error { return e.Err }

// Validator selects registrations for interception by implementation name.
// It is immutable and safe for concurrent use.
type Validator struct {
	include []string
	exclude []string
}

var _ di.Validator = (*Validator)(nil)

// New compiles rules into a Validator. Every pattern is checked up front so
// TryValidate never fails.
func New(r Rules) (*Validator, error) {
	for _, list := range [][]string{r.Include, r.Exclude} {
		for _, p := range list {
			if _, err := path.Match(p, ""); err != nil {
				return nil, PatternError{Pattern: p, Err: err}
			}
		}
	}
	return &Validator{
		include: append([]string(nil), r.Include...),
		exclude: append([]string(nil), r.Exclude...),
	}, nil
}

// TryValidate implements di.Validator. Registrations without a known
// implementation type (delegates, nil instances) are never intercepted.
func (v *Validator) TryValidate(d *di.Descriptor) (di.Type, bool, error) {
	impl := d.ImplementationType()
	if impl.IsZero() || !v.Matches(impl.String()) {
		return di.Type{}, false, nil
	}
	return impl, true, nil
}

// Matches reports whether name is selected by the rules.
func (v *Validator) Matches(name string) bool {
	return matchAny(v.include, name) && !matchAny(v.exclude, name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
