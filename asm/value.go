package asm

import (
	"fmt"
	"strings"

	"github.com/sixbit/sixbit/prog"
)

// A Value is a compile-time value: an identifier, a numeric of some
// word width, a label reference, a code block, or a composition of
// numerics.
type Value interface {
	fmt.Stringer
}

// A Numeric is a value that eventually produces machine words. Label
// references produce words only once their label has been declared
// (at the latest, at link time); until then their Words method fails
// with a not-ready error carrying the reference site.
type Numeric interface {
	Value

	// NumWords returns the value's width in words.
	NumWords() int

	// Words produces the big-endian word array, each entry in [0, 64).
	Words(a *Assembler) ([]byte, error)

	// Frame returns the frame where the value was written, if any.
	Frame() *prog.Frame
}

// An Ident is a bare identifier argument.
type Ident struct {
	Name string
}

func (v *Ident) String() string {
	return v.Name
}

// A Number is a constant numeric with an explicit word width.
type Number struct {
	value int
	words int
	frame *prog.Frame
}

func newNumber(value, words int, frame *prog.Frame) (*Number, error) {
	if _, err := prog.IntToWords(value, words); err != nil {
		return nil, err
	}
	return &Number{value: value, words: words, frame: frame}, nil
}

// Value returns the numeric's integer value.
func (v *Number) Value() int {
	return v.value
}

func (v *Number) NumWords() int {
	return v.words
}

func (v *Number) Words(a *Assembler) ([]byte, error) {
	return prog.IntToWords(v.value, v.words)
}

func (v *Number) Frame() *prog.Frame {
	return v.frame
}

func (v *Number) String() string {
	if v.words == 1 {
		return fmt.Sprintf("%d", v.value)
	}
	return fmt.Sprintf("%d_%d", v.value, v.words)
}

// A LabelRef is a deferred reference to a label; it resolves during
// the link pass to a full 3-word address.
type LabelRef struct {
	name  string
	frame *prog.Frame
}

func (v *LabelRef) NumWords() int {
	return prog.AddressWords
}

func (v *LabelRef) Words(a *Assembler) ([]byte, error) {
	addr, ok := a.labels[v.name]
	if !ok {
		return nil, &notReadyError{
			msg:   fmt.Sprintf("label %q not defined", v.name),
			frame: v.frame,
		}
	}
	return prog.IntToWords(addr, prog.AddressWords)
}

func (v *LabelRef) Frame() *prog.Frame {
	return v.frame
}

func (v *LabelRef) String() string {
	return ":" + v.name
}

// An InlineLabel declares a label at the address where the value is
// ultimately placed. It evaluates to its initializer; with none it is
// zero words wide and contributes nothing to the data stream.
type InlineLabel struct {
	name  string
	init  *Number
	frame *prog.Frame
}

func (v *InlineLabel) NumWords() int {
	if v.init == nil {
		return 0
	}
	return v.init.NumWords()
}

func (v *InlineLabel) Words(a *Assembler) ([]byte, error) {
	if v.init == nil {
		return nil, nil
	}
	return v.init.Words(a)
}

func (v *InlineLabel) Frame() *prog.Frame {
	return v.frame
}

func (v *InlineLabel) place(addr int, a *Assembler) error {
	return a.defineLabel(v.name, addr, v.frame)
}

func (v *InlineLabel) String() string {
	if v.init == nil {
		return "%." + v.name
	}
	return fmt.Sprintf("%%.%s=%s", v.name, v.init)
}

// An Extracted selects a single word of a wider numeric. Resolution is
// deferred along with the inner value.
type Extracted struct {
	inner Numeric
	index int
}

func (v *Extracted) NumWords() int {
	return 1
}

func (v *Extracted) Words(a *Assembler) ([]byte, error) {
	words, err := v.inner.Words(a)
	if err != nil {
		return nil, err
	}
	if v.index < 0 || v.index >= len(words) {
		return nil, fmt.Errorf("word index %d out of range for %s", v.index, v.inner)
	}
	return []byte{words[v.index]}, nil
}

func (v *Extracted) Frame() *prog.Frame {
	return v.inner.Frame()
}

func (v *Extracted) String() string {
	return fmt.Sprintf("hi(%s)", v.inner)
}

// A Concat is the result of make(): the concatenation of numerics into
// a single wider value.
type Concat struct {
	parts []Numeric
	frame *prog.Frame
}

func (v *Concat) NumWords() int {
	n := 0
	for _, part := range v.parts {
		n += part.NumWords()
	}
	return n
}

func (v *Concat) Words(a *Assembler) ([]byte, error) {
	var words []byte
	for _, part := range v.parts {
		w, err := part.Words(a)
		if err != nil {
			return nil, err
		}
		words = append(words, w...)
	}
	return words, nil
}

func (v *Concat) Frame() *prog.Frame {
	return v.frame
}

func (v *Concat) String() string {
	parts := make([]string, len(v.parts))
	for i, part := range v.parts {
		parts[i] = part.String()
	}
	return fmt.Sprintf("make(%d, %s)", v.NumWords(), strings.Join(parts, ", "))
}

// A sourceLine is one line of code with its original line number.
type sourceLine struct {
	text string
	num  int
}

// A Code value is a brace-delimited block: its lines, their original
// line numbers, the origin they came from, and the context captured
// where the block appeared.
type Code struct {
	lines  []sourceLine
	origin string
	ctx    *Context
}

func (v *Code) String() string {
	return fmt.Sprintf("{%d lines}", len(v.lines))
}

// placeValue runs placement hooks for a value placed at addr. Inline
// label declarations enter the label table here; concatenations place
// their parts at advancing addresses.
func placeValue(v Numeric, addr int, a *Assembler) error {
	switch value := v.(type) {
	case *InlineLabel:
		return value.place(addr, a)
	case *Concat:
		offset := 0
		for _, part := range value.parts {
			if err := placeValue(part, addr+offset, a); err != nil {
				return err
			}
			offset += part.NumWords()
		}
	case *Extracted:
		return placeValue(value.inner, addr, a)
	}
	return nil
}
