// Package asm implements the xasm macro assembler. Source text is a
// free-form line-oriented language with nested code blocks, user
// defined commands, deferred label resolution, and a per-word compile
// traceback in the linked image.
package asm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sixbit/sixbit/prog"
)

// SourceExt is the file extension of assembler source files.
const SourceExt = ".xasm"

// LibDir is the bundled library directory consulted by INCLUDE after
// the primary source directory.
var LibDir = "lib"

// A placement records one DATA placement for the link pass.
type placement struct {
	start int
	value Numeric
	frame *prog.Frame
}

// The Assembler accumulates placements, labels and the instruction
// pointer while parsing, then emits a CompiledProgram during the link
// pass.
type Assembler struct {
	written    []bool // tracks words already placed
	placements []placement
	labels     map[string]int
	labelOrder []string
	ip         int

	sourceDir string
	verbose   bool
	out       io.Writer
}

// New creates an empty assembler.
func New() *Assembler {
	return &Assembler{
		written: make([]bool, prog.AddressSpace),
		labels:  make(map[string]int),
		out:     os.Stdout,
	}
}

// SetVerbose enables assembly logging.
func (a *Assembler) SetVerbose(v bool) {
	a.verbose = v
}

// SetOutput redirects assembly logging and DEBUG_OUT output.
func (a *Assembler) SetOutput(w io.Writer) {
	a.out = w
}

// IP returns the current instruction pointer.
func (a *Assembler) IP() int {
	return a.ip
}

// Labels returns the label table.
func (a *Assembler) Labels() map[string]int {
	return a.labels
}

// AssembleFile reads and assembles a source file. The file's directory
// becomes the primary INCLUDE lookup directory.
func (a *Assembler) AssembleFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	a.sourceDir = filepath.Dir(path)
	return a.AssembleSource(string(source), path)
}

// AssembleSource assembles source text under the given origin name.
func (a *Assembler) AssembleSource(source, origin string) error {
	p := newParser(a, source, origin, nil, false, NewContext(nil))
	return p.parseProgram()
}

// defineLabel enters a label at an address. Redeclaring a label is a
// parse error.
func (a *Assembler) defineLabel(name string, addr int, frame *prog.Frame) error {
	if _, ok := a.labels[name]; ok {
		return &AssemblyError{
			Kind:  KindParse,
			Msg:   fmt.Sprintf("label %q declared more than once", name),
			Frame: frame,
		}
	}
	a.labels[name] = addr
	a.labelOrder = append(a.labelOrder, name)
	a.log("label %-24s = %d", name, addr)
	return nil
}

// findInclude resolves an INCLUDE name to a file path, searching the
// primary source directory, the bundled library directory, and the
// current directory.
func (a *Assembler) findInclude(name string) (string, error) {
	dirs := []string{a.sourceDir, LibDir, "."}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, name+SourceExt)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("cannot find include %q in %v", name+SourceExt, dirs)
}

// Link resolves every recorded placement into the compiled image.
// Values that are still not ready (unresolved labels) are reported at
// their own recorded traceback if any, otherwise at the DATA site.
func (a *Assembler) Link() (*prog.Program, error) {
	data := make([]*prog.Word, prog.AddressSpace)

	for _, pl := range a.placements {
		words, err := pl.value.Words(a)
		if err != nil {
			frame := pl.frame
			var notReady *notReadyError
			if errors.As(err, &notReady) && notReady.frame != nil {
				frame = notReady.frame
			}
			return nil, &AssemblyError{
				Kind:  KindLink,
				Msg:   err.Error(),
				Frame: frame,
			}
		}

		for i, w := range words {
			data[pl.start+i] = &prog.Word{
				Value:        w,
				Traceback:    pl.frame,
				ForExecution: true,
				ForReading:   true,
				ForWriting:   true,
			}
		}
	}

	return prog.NewProgram(data, a.labels), nil
}

// DumpPlacements renders a summary of placed address ranges and
// labels, used by the assembler CLI on success.
func (a *Assembler) DumpPlacements() string {
	var sb strings.Builder

	sb.WriteString(" == Placements ==\n")
	sorted := append([]placement(nil), a.placements...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].start < sorted[j].start
	})
	for _, pl := range sorted {
		width := pl.value.NumWords()
		if width == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  %6d .. %6d  %s\n", pl.start, pl.start+width-1, pl.value)
	}

	sb.WriteString(" == Labels ==\n")
	for _, name := range a.labelOrder {
		fmt.Fprintf(&sb, "  %6d  %s\n", a.labels[name], name)
	}

	return sb.String()
}

// In verbose mode, log a string to the assembler's output.
func (a *Assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintln(a.out)
	}
}
