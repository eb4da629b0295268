package asm

import "strings"

// functions maps expression function names to their implementations.
var functions = map[string]func(p *parser, args []Value) (Value, error){
	"make":                fnMake,
	"is_lt":               fnIsLt,
	"is_eq":               fnIsEq,
	"is_pow_of_two":       fnIsPowOfTwo,
	"not":                 fnNot,
	"plus":                fnPlus,
	"minus":               fnMinus,
	"zero_extend_numeric": fnZeroExtend,
	"concat_ident":        fnConcatIdent,
	"read_var":            fnReadVar,
	"hi":                  fnHi,
	"mod":                 fnMod,
}

func boolNumber(p *parser, b bool) (Value, error) {
	v := 0
	if b {
		v = 1
	}
	num, err := newNumber(v, 1, p.frame())
	return num, p.wrap(err)
}

// fnMake concatenates numerics into a value of a declared total width.
func fnMake(p *parser, args []Value) (Value, error) {
	if len(args) < 1 {
		return nil, p.errorf("make expects a word count")
	}
	want, err := p.evalInt(args[0])
	if err != nil {
		return nil, err
	}

	var parts []Numeric
	total := 0
	for _, arg := range args[1:] {
		num, ok := arg.(Numeric)
		if !ok {
			return nil, p.errorf("make expects numeric parts, got %s", arg)
		}
		parts = append(parts, num)
		total += num.NumWords()
	}

	if total != want {
		return nil, p.errorf("make of %d words got parts totalling %d words",
			want, total)
	}
	return &Concat{parts: parts, frame: p.frame()}, nil
}

func fnIsLt(p *parser, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, p.errorf("is_lt expects 2 args, got %d", len(args))
	}
	a, err := p.evalInt(args[0])
	if err != nil {
		return nil, err
	}
	b, err := p.evalInt(args[1])
	if err != nil {
		return nil, err
	}
	return boolNumber(p, a < b)
}

// fnIsEq compares two numerics by value or two identifiers by name.
func fnIsEq(p *parser, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, p.errorf("is_eq expects 2 args, got %d", len(args))
	}

	identA, okA := args[0].(*Ident)
	identB, okB := args[1].(*Ident)
	switch {
	case okA && okB:
		return boolNumber(p, identA.Name == identB.Name)
	case okA != okB:
		return nil, p.errorf("is_eq cannot compare %s with %s", args[0], args[1])
	}

	a, err := p.evalInt(args[0])
	if err != nil {
		return nil, err
	}
	b, err := p.evalInt(args[1])
	if err != nil {
		return nil, err
	}
	return boolNumber(p, a == b)
}

func fnIsPowOfTwo(p *parser, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, p.errorf("is_pow_of_two expects 1 arg, got %d", len(args))
	}
	a, err := p.evalInt(args[0])
	if err != nil {
		return nil, err
	}
	return boolNumber(p, a > 1 && a&(a-1) == 0)
}

func fnNot(p *parser, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, p.errorf("not expects 1 arg, got %d", len(args))
	}
	a, err := p.evalInt(args[0])
	if err != nil {
		return nil, err
	}
	return boolNumber(p, a == 0)
}

func maxWidth(a, b *Number) int {
	if a.NumWords() > b.NumWords() {
		return a.NumWords()
	}
	return b.NumWords()
}

// fnPlus adds two numerics; the result takes the wider operand's
// width, and overflowing it is an error.
func fnPlus(p *parser, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, p.errorf("plus expects 2 args, got %d", len(args))
	}
	a, err := p.constNumber(args[0])
	if err != nil {
		return nil, err
	}
	b, err := p.constNumber(args[1])
	if err != nil {
		return nil, err
	}

	num, err := newNumber(a.Value()+b.Value(), maxWidth(a, b), p.frame())
	if err != nil {
		return nil, p.errorf("plus overflows %d words", maxWidth(a, b))
	}
	return num, nil
}

// fnMinus subtracts two numerics; a negative result is an error.
func fnMinus(p *parser, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, p.errorf("minus expects 2 args, got %d", len(args))
	}
	a, err := p.constNumber(args[0])
	if err != nil {
		return nil, err
	}
	b, err := p.constNumber(args[1])
	if err != nil {
		return nil, err
	}

	if a.Value() < b.Value() {
		return nil, p.errorf("minus result is negative")
	}
	num, err := newNumber(a.Value()-b.Value(), maxWidth(a, b), p.frame())
	return num, p.wrap(err)
}

func fnZeroExtend(p *parser, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, p.errorf("zero_extend_numeric expects 2 args, got %d", len(args))
	}
	value, err := p.evalInt(args[0])
	if err != nil {
		return nil, err
	}
	width, err := p.evalInt(args[1])
	if err != nil {
		return nil, err
	}
	if width < 1 {
		return nil, p.errorf("invalid word count %d", width)
	}

	num, err := newNumber(value, width, p.frame())
	return num, p.wrap(err)
}

func fnConcatIdent(p *parser, args []Value) (Value, error) {
	if len(args) < 2 {
		return nil, p.errorf("concat_ident expects at least 2 args, got %d", len(args))
	}
	var sb strings.Builder
	for _, arg := range args {
		ident, ok := arg.(*Ident)
		if !ok {
			return nil, p.errorf("concat_ident expects identifiers, got %s", arg)
		}
		sb.WriteString(ident.Name)
	}
	return &Ident{Name: sb.String()}, nil
}

// fnReadVar looks an identifier up as a variable in the current
// context.
func fnReadVar(p *parser, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, p.errorf("read_var expects 1 arg, got %d", len(args))
	}
	ident, ok := args[0].(*Ident)
	if !ok {
		return nil, p.errorf("read_var expects an identifier, got %s", args[0])
	}
	value, found := p.ctx.FindVariable(ident.Name)
	if !found {
		return nil, p.errorf("can't find variable %q", ident.Name)
	}
	return value, nil
}

// fnHi extracts the high word (index 0) of a multi-word numeric.
// Resolution is deferred with the inner value.
func fnHi(p *parser, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, p.errorf("hi expects 1 arg, got %d", len(args))
	}
	num, ok := args[0].(Numeric)
	if !ok {
		return nil, p.errorf("hi expects a numeric, got %s", args[0])
	}
	return &Extracted{inner: num, index: 0}, nil
}

func fnMod(p *parser, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, p.errorf("mod expects 2 args, got %d", len(args))
	}
	a, err := p.constNumber(args[0])
	if err != nil {
		return nil, err
	}
	b, err := p.constNumber(args[1])
	if err != nil {
		return nil, err
	}
	if b.Value() == 0 {
		return nil, p.errorf("mod by zero")
	}

	num, err := newNumber(a.Value()%b.Value(), maxWidth(a, b), p.frame())
	return num, p.wrap(err)
}
