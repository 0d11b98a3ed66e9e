package script

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/cadbridge/pkg/domain"
)

// Eval evaluates an arithmetic expression over vars. It supports + - * /,
// parentheses, unary minus, the constant pi and the functions sin, cos and
// tan (degrees), sqrt, abs, min and max.
func Eval(expr string, vars map[string]float64) (float64, error) {
	p := &parser{src: expr, vars: vars}
	v, err := p.expr()
	if err != nil {
		return 0, fmt.Errorf("%w: expression %q: %w", domain.ErrInvalidParameter, expr, err)
	}
	p.space()
	if p.pos < len(p.src) {
		return 0, fmt.Errorf("%w: expression %q: unexpected %q at %d", domain.ErrInvalidParameter, expr, p.src[p.pos:], p.pos)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: expression %q is not a finite number", domain.ErrInvalidParameter, expr)
	}
	return v, nil
}

type parser struct {
	src  string
	pos  int
	vars map[string]float64
}

func (p *parser) space() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.space()
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			r, err := p.term()
			if err != nil {
				return 0, err
			}
			v += r
		case '-':
			p.pos++
			r, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= r
		default:
			return v, nil
		}
	}
}

func (p *parser) term() (float64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			r, err := p.unary()
			if err != nil {
				return 0, err
			}
			v *= r
		case '/':
			p.pos++
			r, err := p.unary()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= r
		default:
			return v, nil
		}
	}
}

func (p *parser) unary() (float64, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary()
		return -v, err
	case '+':
		p.pos++
		return p.unary()
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing )")
		}
		p.pos++
		return v, nil
	case c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case c == '_' || unicode.IsLetter(rune(c)):
		return p.ident()
	case c == 0:
		return 0, fmt.Errorf("unexpected end")
	}
	return 0, fmt.Errorf("unexpected %q at %d", c, p.pos)
}

func (p *parser) number() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		if (c == 'e' || c == 'E') && p.pos+1 < len(p.src) {
			p.pos++
			if n := p.src[p.pos]; n == '+' || n == '-' {
				p.pos++
			}
			continue
		}
		break
	}
	return strconv.ParseFloat(p.src[start:p.pos], 64)
}

func (p *parser) ident() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		p.pos++
	}
	name := p.src[start:p.pos]

	if p.peek() == '(' {
		p.pos++
		args, err := p.args()
		if err != nil {
			return 0, err
		}
		return call(name, args)
	}
	if v, ok := p.vars[name]; ok {
		return v, nil
	}
	if strings.EqualFold(name, "pi") {
		return math.Pi, nil
	}
	return 0, fmt.Errorf("%w: variable %q", domain.ErrUnknownName, name)
}

func (p *parser) args() ([]float64, error) {
	var out []float64
	if p.peek() == ')' {
		p.pos++
		return out, nil
	}
	for {
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return out, nil
		default:
			return nil, fmt.Errorf("missing ) after arguments")
		}
	}
}

func call(name string, args []float64) (float64, error) {
	arity := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s takes %d argument(s), got %d", name, n, len(args))
		}
		return nil
	}
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	switch name {
	case "sin", "cos", "tan", "sqrt", "abs":
		if err := arity(1); err != nil {
			return 0, err
		}
	case "min", "max":
		if len(args) == 0 {
			return 0, fmt.Errorf("%s needs at least one argument", name)
		}
	default:
		return 0, fmt.Errorf("%w: function %q", domain.ErrUnknownName, name)
	}

	switch name {
	case "sin":
		return math.Sin(rad(args[0])), nil
	case "cos":
		return math.Cos(rad(args[0])), nil
	case "tan":
		return math.Tan(rad(args[0])), nil
	case "sqrt":
		if args[0] < 0 {
			return 0, fmt.Errorf("sqrt of negative number")
		}
		return math.Sqrt(args[0]), nil
	case "abs":
		return math.Abs(args[0]), nil
	case "min":
		v := args[0]
		for _, a := range args[1:] {
			v = math.Min(v, a)
		}
		return v, nil
	default:
		v := args[0]
		for _, a := range args[1:] {
			v = math.Max(v, a)
		}
		return v, nil
	}
}
