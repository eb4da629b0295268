package asm

import (
	"fmt"
	"io"
	"strings"

	"github.com/sixbit/sixbit/prog"
)

// ErrorKind distinguishes the two phases an assembly error can come
// from.
type ErrorKind int

const (
	// KindParse marks errors raised while parsing statements.
	KindParse ErrorKind = iota

	// KindLink marks errors raised during the link pass.
	KindLink
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindLink:
		return "link error"
	default:
		return "assembly error"
	}
}

// An AssemblyError is the only error kind crossing the assembler
// boundary. It carries the innermost traceback frame; walking the
// frame chain reconstructs the macro-expansion stack.
type AssemblyError struct {
	Kind  ErrorKind
	Msg   string
	Frame *prog.Frame
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Render writes the framed multi-line traceback, innermost last.
func (e *AssemblyError) Render(w io.Writer) {
	const rule = 60
	fmt.Fprintln(w, strings.Repeat("=", rule))
	fmt.Fprintf(w, " %s: %s\n", e.Kind, e.Msg)
	if e.Frame != nil {
		for _, line := range e.Frame.Lines() {
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", rule))
}

// notReadyError is raised by values that cannot resolve yet (labels
// before link). It carries the value's own captured frame so link
// errors point at the reference site.
type notReadyError struct {
	msg   string
	frame *prog.Frame
}

func (e *notReadyError) Error() string {
	return e.msg
}
