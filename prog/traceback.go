package prog

import (
	"fmt"
	"strings"
)

// A Frame is one entry of a compile-time call chain. Frames form a
// linked list through Prev, innermost last; walking the chain
// reconstructs the macro-expansion stack of a placed word.
type Frame struct {
	// Origin names the source of the line: a file path or macro name.
	Origin string

	// LineText is the offending source line.
	LineText string

	// LineNum is the 1-based line number within the origin.
	LineNum int

	// Internal marks frames expanded from internal macros; they are
	// skipped when selecting the user-facing frame.
	Internal bool

	// GlobalLabel is the enclosing global label at this line, used to
	// resolve local label references.
	GlobalLabel string

	// Prev is the caller's frame, nil at the outermost level.
	Prev *Frame
}

// DeepestNonInternal returns the innermost frame not marked internal.
// If every frame is internal, the innermost frame is returned.
func (f *Frame) DeepestNonInternal() *Frame {
	for frame := f; frame != nil; frame = frame.Prev {
		if !frame.Internal {
			return frame
		}
	}
	return f
}

// Chain returns the frames outermost first.
func (f *Frame) Chain() []*Frame {
	var frames []*Frame
	for frame := f; frame != nil; frame = frame.Prev {
		frames = append(frames, frame)
	}
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return frames
}

// Lines renders the chain for diagnostics, innermost last.
func (f *Frame) Lines() []string {
	var lines []string
	for _, frame := range f.Chain() {
		suffix := ""
		if frame.Internal {
			suffix = " [internal]"
		}
		lines = append(lines,
			fmt.Sprintf("%s, line %d%s:", frame.Origin, frame.LineNum, suffix),
			fmt.Sprintf("    %s", strings.TrimRight(frame.LineText, "\n")))
	}
	return lines
}

func (f *Frame) String() string {
	return strings.Join(f.Lines(), "\n")
}
