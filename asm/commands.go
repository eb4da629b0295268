package asm

import (
	"fmt"
	"os"
	"strings"

	"github.com/sixbit/sixbit/prog"
)

// unsetCond marks a LOOP condition variable that the condition block
// has not set yet.
type unsetCond struct{}

func (unsetCond) String() string {
	return "<unset>"
}

// runCommand dispatches a parsed statement: built-in commands first,
// then user-defined macros from the context chain.
func (p *parser) runCommand(name string, args []Value, frame *prog.Frame) error {
	switch strings.ToUpper(name) {
	case "DATA":
		return p.cmdData(args, frame)
	case "SKIP_DATA":
		return p.cmdSkipData(args)
	case "DEFINE":
		return p.cmdDefine(args)
	case "SET":
		return p.cmdSet(args)
	case "INCLUDE":
		return p.cmdInclude(args, frame)
	case "IF":
		return p.cmdIf(args, frame)
	case "LOOP":
		return p.cmdLoop(args, frame)
	case "UP":
		return p.cmdUp(args, frame)
	case "ASSERT":
		return p.cmdAssert(args)
	case "DEBUG_OUT":
		return p.cmdDebugOut(args)
	}

	if macro := p.ctx.FindMacro(name); macro != nil {
		return p.runMacro(macro, args, frame)
	}
	return p.errorf("unknown command %q", name)
}

// cmdData places numeric values at the instruction pointer. Each word
// must be unwritten; placement may not pass the end of memory.
func (p *parser) cmdData(args []Value, frame *prog.Frame) error {
	for _, arg := range args {
		num, ok := arg.(Numeric)
		if !ok {
			return p.errorf("DATA expects numeric arguments, got %s", arg)
		}

		width := num.NumWords()
		start := p.asm.ip
		if start+width > prog.AddressSpace {
			return p.errorf("placement of %d words at %d passes end of memory",
				width, start)
		}
		for i := 0; i < width; i++ {
			if p.asm.written[start+i] {
				return p.errorf("invalid rewrite of address %d", start+i)
			}
		}

		if err := placeValue(num, start, p.asm); err != nil {
			return p.wrap(err)
		}
		for i := 0; i < width; i++ {
			p.asm.written[start+i] = true
		}

		p.asm.placements = append(p.asm.placements,
			placement{start: start, value: num, frame: frame})
		p.asm.ip += width
	}
	return nil
}

// cmdSkipData advances the instruction pointer without placing words.
func (p *parser) cmdSkipData(args []Value) error {
	if len(args) != 1 {
		return p.errorf("SKIP_DATA expects 1 arg, got %d", len(args))
	}
	n, err := p.evalInt(args[0])
	if err != nil {
		return err
	}
	if n < 0 || p.asm.ip+n > prog.AddressSpace {
		return p.errorf("SKIP_DATA of %d words at %d is out of range", n, p.asm.ip)
	}
	p.asm.ip += n
	return nil
}

// cmdDefine handles DEFINE COMMAND, DEFINE INTERNAL_COMMAND and
// DEFINE VARIABLE.
func (p *parser) cmdDefine(args []Value) error {
	if len(args) < 1 {
		return p.errorf("DEFINE needs a definition type")
	}
	kind, ok := args[0].(*Ident)
	if !ok {
		return p.errorf("DEFINE needs a definition type identifier")
	}

	switch strings.ToUpper(kind.Name) {
	case "COMMAND":
		return p.defineMacro(args[1:], false)
	case "INTERNAL_COMMAND":
		return p.defineMacro(args[1:], true)
	case "VARIABLE":
		if len(args) != 3 {
			return p.errorf("DEFINE VARIABLE expects a name and a value")
		}
		name, ok := args[1].(*Ident)
		if !ok {
			return p.errorf("DEFINE VARIABLE needs a variable name")
		}
		return p.wrap(p.ctx.DefineVariable(name.Name, args[2]))
	default:
		return p.errorf("unknown define type %q", kind.Name)
	}
}

func (p *parser) defineMacro(args []Value, internal bool) error {
	if len(args) < 2 {
		return p.errorf("command definition needs a name and a body")
	}

	name, ok := args[0].(*Ident)
	if !ok {
		return p.errorf("command definition needs a name identifier")
	}

	body, ok := args[len(args)-1].(*Code)
	if !ok {
		return p.errorf("command definition needs a code block body")
	}

	var params []string
	for _, arg := range args[1 : len(args)-1] {
		param, ok := arg.(*Ident)
		if !ok {
			return p.errorf("expected parameter name, got %s", arg)
		}
		for _, existing := range params {
			if existing == param.Name {
				return p.errorf("duplicate parameter name %q", param.Name)
			}
		}
		params = append(params, param.Name)
	}

	return p.wrap(p.ctx.DefineMacro(&Macro{
		Name:     name.Name,
		Params:   params,
		Body:     body,
		Ctx:      p.ctx,
		Internal: internal,
	}))
}

// cmdSet rebinds an existing variable, walking up the scope chain.
func (p *parser) cmdSet(args []Value) error {
	if len(args) != 3 {
		return p.errorf("SET VARIABLE expects a name and a value")
	}
	kind, ok := args[0].(*Ident)
	if !ok || strings.ToUpper(kind.Name) != "VARIABLE" {
		return p.errorf("SET supports only SET VARIABLE")
	}
	name, ok := args[1].(*Ident)
	if !ok {
		return p.errorf("SET VARIABLE needs a variable name")
	}
	return p.wrap(p.ctx.SetVariable(name.Name, args[2]))
}

// cmdInclude parses another source file with a child traceback frame.
func (p *parser) cmdInclude(args []Value, frame *prog.Frame) error {
	if len(args) != 1 {
		return p.errorf("INCLUDE expects 1 arg, got %d", len(args))
	}
	name, ok := args[0].(*Ident)
	if !ok {
		return p.errorf("INCLUDE expects a file name identifier")
	}

	path, err := p.asm.findInclude(name.Name)
	if err != nil {
		return p.wrap(err)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return p.wrap(err)
	}

	child := newParser(p.asm, string(source), path, frame, p.internal, p.ctx)
	return child.parseProgram()
}

// cmdIf executes a block in a new scope when the condition evaluates
// to non-zero at parse time.
func (p *parser) cmdIf(args []Value, frame *prog.Frame) error {
	if len(args) != 2 {
		return p.errorf("IF expects a condition and a block")
	}
	block, ok := args[1].(*Code)
	if !ok {
		return p.errorf("IF expects a code block")
	}

	cond, err := p.evalInt(args[0])
	if err != nil {
		return err
	}
	if cond == 0 {
		return nil
	}

	return p.runCode(block, block.origin, NewContext(block.ctx), frame, p.internal)
}

// cmdLoop defines the condition variable in a fresh scope, then
// alternates the condition block and the body block while the
// condition holds.
func (p *parser) cmdLoop(args []Value, frame *prog.Frame) error {
	if len(args) != 3 {
		return p.errorf("LOOP expects a condition variable and two blocks")
	}
	condName, ok := args[0].(*Ident)
	if !ok {
		return p.errorf("LOOP needs a condition variable name")
	}
	condBlock, ok := args[1].(*Code)
	if !ok {
		return p.errorf("LOOP needs a condition block")
	}
	bodyBlock, ok := args[2].(*Code)
	if !ok {
		return p.errorf("LOOP needs a body block")
	}

	scope := NewContext(p.ctx)
	if err := scope.DefineVariable(condName.Name, unsetCond{}); err != nil {
		return p.wrap(err)
	}

	for {
		err := p.runCode(condBlock, condBlock.origin, NewContext(scope),
			frame, p.internal)
		if err != nil {
			return err
		}

		value, _ := scope.FindVariable(condName.Name)
		cont, err := p.loopCondition(condName.Name, value)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}

		err = p.runCode(bodyBlock, bodyBlock.origin, NewContext(scope),
			frame, p.internal)
		if err != nil {
			return err
		}
	}
}

// loopCondition interprets a LOOP condition value: TRUE/FALSE or a
// numeric. A condition the block never set is a parse error, as is a
// numeric that cannot resolve yet.
func (p *parser) loopCondition(name string, value Value) (bool, error) {
	switch v := value.(type) {
	case unsetCond:
		return false, p.errorf("LOOP condition %q was never set", name)
	case *Ident:
		switch strings.ToUpper(v.Name) {
		case "TRUE":
			return true, nil
		case "FALSE":
			return false, nil
		}
		return false, p.errorf("LOOP condition %q is not TRUE/FALSE", v.Name)
	case Numeric:
		n, err := p.evalInt(v)
		if err != nil {
			return false, err
		}
		return n != 0, nil
	default:
		return false, p.errorf("LOOP condition %q has non-numeric value %s",
			name, value)
	}
}

// cmdUp executes a block in the parent of the block's captured
// context, letting macro bodies affect their caller's scope.
func (p *parser) cmdUp(args []Value, frame *prog.Frame) error {
	if len(args) != 1 {
		return p.errorf("UP expects a code block")
	}
	block, ok := args[0].(*Code)
	if !ok {
		return p.errorf("UP expects a code block")
	}
	if block.ctx.parent == nil {
		return p.errorf("UP at top-level context")
	}

	// The block runs directly in the parent scope so definitions land
	// in the caller's context.
	return p.runCode(block, block.origin, block.ctx.parent, frame, p.internal)
}

// cmdAssert fails the parse when a numeric condition is zero.
func (p *parser) cmdAssert(args []Value) error {
	if len(args) != 1 {
		return p.errorf("ASSERT expects 1 arg, got %d", len(args))
	}
	cond, err := p.evalInt(args[0])
	if err != nil {
		return err
	}
	if cond == 0 {
		return p.errorf("assertion failed")
	}
	return nil
}

// cmdDebugOut prints values during assembly.
func (p *parser) cmdDebugOut(args []Value) error {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	fmt.Fprintln(p.asm.out, strings.Join(parts, " "))
	return nil
}
