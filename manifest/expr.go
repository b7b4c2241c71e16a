package manifest

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/sghaida/svctable/di"
)

// ExprError reports a malformed or unresolvable type expression.
type ExprError struct {
	Expr string
	Pos  int
	Msg  string
}

// Error implements the error interface.
func (e ExprError) Error() string {
	// Example: manifest: type expression "Repository[User" at 15: expected ']'
	return "manifest: type expression " + strconv.Quote(e.Expr) + " at " + strconv.Itoa(e.Pos) + ": " + e.Msg
}

// Parse resolves a type expression against the catalog.
//
//	User                    closed type
//	Repository[User]        instantiation
//	Pair[$0, string]        partially open instantiation
//	Repository[]            open definition, same as Repository[$0]
//	$1                      type parameter
//
// Whitespace around names and separators is ignored.
func (c *Catalog) Parse(expr string) (di.Type, error) {
	p := &exprParser{src: expr, cat: c}
	t, err := p.parse()
	if err != nil {
		return di.Type{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return di.Type{}, p.fail("unexpected " + strconv.Quote(p.src[p.pos:]))
	}
	return t, nil
}

type exprParser struct {
	src string
	pos int
	cat *Catalog
}

func (p *exprParser) fail(msg string) error {
	return ExprError{Expr: p.src, Pos: p.pos, Msg: msg}
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *exprParser) parse() (di.Type, error) {
	p.skipSpace()
	if p.peek() == '$' {
		return p.param()
	}

	start := p.pos
	name := p.ident()
	if name == "" {
		return di.Type{}, p.fail("expected type name")
	}
	p.skipSpace()
	if p.peek() != '[' {
		t, ok := p.cat.Lookup(name)
		if !ok {
			p.pos = start
			return di.Type{}, p.fail("unknown type " + strconv.Quote(name))
		}
		return t, nil
	}

	g, ok := p.cat.LookupGeneric(name)
	if !ok {
		p.pos = start
		return di.Type{}, p.fail("unknown generic " + strconv.Quote(name))
	}
	p.pos++ // '['
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return g.Open(), nil
	}

	var args []di.Type
	for {
		a, err := p.parse()
		if err != nil {
			return di.Type{}, err
		}
		args = append(args, a)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			continue
		case ']':
			p.pos++
		default:
			return di.Type{}, p.fail("expected ',' or ']'")
		}
		break
	}
	if len(args) != g.Arity() {
		return di.Type{}, p.fail(di.ArityError{Generic: g.Name(), Want: g.Arity(), Got: len(args)}.Error())
	}
	return g.Of(args...), nil
}

func (p *exprParser) param() (di.Type, error) {
	p.pos++ // '$'
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return di.Type{}, p.fail("expected parameter index")
	}
	i, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return di.Type{}, p.fail(err.Error())
	}
	return di.Param(i), nil
}

// ident accepts Go-ish qualified names: letters, digits, '_', '.' and a
// leading '*' for pointer types.
func (p *exprParser) ident() string {
	start := p.pos
	if p.peek() == '*' {
		p.pos++
	}
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return strings.TrimSpace(p.src[start:p.pos])
}
