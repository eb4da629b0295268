package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sixbit/sixbit/prog"
)

// A parser consumes one body of source text: a file, an included file,
// or a macro/code-block body. Nested bodies get their own parser whose
// caller frame links back to the invocation site.
type parser struct {
	asm      *Assembler
	origin   string
	lines    []sourceLine
	idx      int
	cur      fstring
	caller   *prog.Frame
	internal bool
	ctx      *Context
}

func newParser(a *Assembler, source, origin string, caller *prog.Frame,
	internal bool, ctx *Context) *parser {

	source = strings.ReplaceAll(source, "\r", "")
	raw := strings.Split(source, "\n")
	lines := make([]sourceLine, len(raw))
	for i, text := range raw {
		lines[i] = sourceLine{text: text, num: i + 1}
	}

	return &parser{
		asm:      a,
		origin:   origin,
		lines:    lines,
		caller:   caller,
		internal: internal,
		ctx:      ctx,
	}
}

func newCodeParser(a *Assembler, code *Code, origin string, caller *prog.Frame,
	internal bool, ctx *Context) *parser {

	return &parser{
		asm:      a,
		origin:   origin,
		lines:    code.lines,
		caller:   caller,
		internal: internal,
		ctx:      ctx,
	}
}

// frame captures the current line as a traceback frame.
func (p *parser) frame() *prog.Frame {
	return &prog.Frame{
		Origin:      p.origin,
		LineText:    p.cur.full,
		LineNum:     p.cur.row,
		Internal:    p.internal,
		GlobalLabel: p.ctx.GlobalLabel(),
		Prev:        p.caller,
	}
}

// errorf creates a parse error at the current position.
func (p *parser) errorf(format string, args ...any) *AssemblyError {
	return &AssemblyError{
		Kind:  KindParse,
		Msg:   fmt.Sprintf(format, args...),
		Frame: p.frame(),
	}
}

// wrap attaches the current frame to a plain error; assembly errors
// pass through untouched.
func (p *parser) wrap(err error) error {
	if err == nil {
		return nil
	}
	if asmErr, ok := err.(*AssemblyError); ok {
		return asmErr
	}
	return &AssemblyError{Kind: KindParse, Msg: err.Error(), Frame: p.frame()}
}

// parseProgram parses every statement in the body.
func (p *parser) parseProgram() error {
	for p.idx < len(p.lines) {
		line := p.lines[p.idx]
		p.cur = newFstring(line.num, line.text).consumeWhitespace()

		if p.cur.isEmpty() || p.cur.isCommentStart() {
			p.idx++
			continue
		}

		if err := p.parseStatement(); err != nil {
			return err
		}

		p.cur = p.cur.consumeWhitespace()
		if p.cur.isCommentStart() {
			p.cur = p.cur.consume(len(p.cur.str))
		}
		if !p.cur.isEmpty() {
			return p.errorf("unexpected %q after statement", p.cur.str)
		}
		p.idx++
	}
	return nil
}

// parseStatement parses one statement: a label declaration or a
// command with arguments.
func (p *parser) parseStatement() error {
	frame := p.frame()

	switch {
	case p.cur.startsWithChar(':'):
		p.cur = p.cur.consume(1)
		name, err := p.parseIdent()
		if err != nil {
			return err
		}
		if err := p.asm.defineLabel(name, p.asm.ip, frame); err != nil {
			return err
		}
		p.ctx.SetGlobalLabel(name)
		return nil

	case p.cur.startsWithChar('.'):
		p.cur = p.cur.consume(1)
		name, err := p.parseIdent()
		if err != nil {
			return err
		}
		full, err := p.localLabelName(name)
		if err != nil {
			return err
		}
		return p.asm.defineLabel(full, p.asm.ip, frame)

	default:
		name, err := p.parseIdent()
		if err != nil {
			return err
		}
		args, err := p.parseArgs()
		if err != nil {
			return err
		}
		return p.runCommand(name, args, frame)
	}
}

// localLabelName expands a local label against the enclosing global
// label.
func (p *parser) localLabelName(name string) (string, error) {
	global := p.ctx.GlobalLabel()
	if global == "" {
		return "", p.errorf("no global label declared before local label %q", name)
	}
	return global + "." + name, nil
}

// parseIdent consumes an identifier.
func (p *parser) parseIdent() (string, error) {
	if !p.cur.startsWith(identStartChar) {
		return "", p.errorf("expected identifier")
	}
	ident, remain := p.cur.consumeWhile(identChar)
	p.cur = remain
	return ident.str, nil
}

// parseArgs consumes comma-or-whitespace separated expressions until
// the end of the statement.
func (p *parser) parseArgs() ([]Value, error) {
	var args []Value
	for {
		p.cur = p.cur.consumeWhitespace()
		if p.cur.isEmpty() || p.cur.isCommentStart() {
			return args, nil
		}

		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.cur = p.cur.consumeWhitespace()
		if p.cur.startsWithChar(',') {
			p.cur = p.cur.consume(1)
		}
	}
}

// parseExpr parses one expression: a bare value or a function call.
func (p *parser) parseExpr() (Value, error) {
	switch {
	case p.cur.startsWithChar('{'):
		return p.parseCodeBlock()

	case p.cur.startsWithString("$$"):
		p.cur = p.cur.consume(2)
		num, err := newNumber(p.asm.ip, prog.AddressWords, p.frame())
		return num, p.wrap(err)

	case p.cur.startsWithChar('$'):
		p.cur = p.cur.consume(1)
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		value, ok := p.ctx.FindVariable(name)
		if !ok {
			return nil, p.errorf("can't find variable %q", name)
		}
		return value, nil

	case p.cur.startsWithChar(':'):
		p.cur = p.cur.consume(1)
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		return &LabelRef{name: name, frame: p.frame()}, nil

	case p.cur.startsWithChar('.'):
		p.cur = p.cur.consume(1)
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		full, err := p.localLabelName(name)
		if err != nil {
			return nil, err
		}
		return &LabelRef{name: full, frame: p.frame()}, nil

	case p.cur.startsWithChar('%'):
		return p.parseInlineLabel()

	case p.cur.startsWith(decimal):
		return p.parseNumber()

	case p.cur.startsWith(identStartChar):
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if p.cur.startsWithChar('(') {
			return p.parseCall(name)
		}
		return &Ident{Name: name}, nil

	default:
		return nil, p.errorf("expected argument")
	}
}

// parseInlineLabel parses %.NAME or %.NAME=initial.
func (p *parser) parseInlineLabel() (Value, error) {
	p.cur = p.cur.consume(1)
	if !p.cur.startsWithChar('.') {
		return nil, p.errorf("expected '.' after '%%'")
	}
	p.cur = p.cur.consume(1)

	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	full, err := p.localLabelName(name)
	if err != nil {
		return nil, err
	}

	label := &InlineLabel{name: full, frame: p.frame()}

	if p.cur.startsWithChar('=') {
		p.cur = p.cur.consume(1)
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		num, err := p.constNumber(init)
		if err != nil {
			return nil, err
		}
		label.init = num
	}

	return label, nil
}

// parseNumber parses a numeric literal: decimal, 0b binary or 0x hex,
// optionally suffixed with _W to set the word width.
func (p *parser) parseNumber() (Value, error) {
	base, class := 10, decimal
	switch {
	case p.cur.startsWithString("0b"):
		p.cur = p.cur.consume(2)
		base, class = 2, binarynum
	case p.cur.startsWithString("0x"):
		p.cur = p.cur.consume(2)
		base, class = 16, hexadecimal
	}

	digits, remain := p.cur.consumeWhile(class)
	p.cur = remain
	if digits.isEmpty() {
		return nil, p.errorf("invalid numeric literal")
	}

	value, err := strconv.ParseInt(digits.str, base, 64)
	if err != nil {
		return nil, p.errorf("invalid numeric literal %q", digits.str)
	}

	words := 1
	if p.cur.startsWithChar('_') {
		p.cur = p.cur.consume(1)
		widthDigits, remain := p.cur.consumeWhile(decimal)
		p.cur = remain
		if widthDigits.isEmpty() {
			return nil, p.errorf("expected word count after '_'")
		}
		words, err = strconv.Atoi(widthDigits.str)
		if err != nil || words < 1 {
			return nil, p.errorf("invalid word count %q", widthDigits.str)
		}
	}

	if p.cur.startsWith(identChar) {
		return nil, p.errorf("invalid numeric literal suffix %q", p.cur.str)
	}

	num, err := newNumber(int(value), words, p.frame())
	return num, p.wrap(err)
}

// parseCall parses the arguments of a function call and applies the
// function.
func (p *parser) parseCall(name string) (Value, error) {
	fn, ok := functions[name]
	if !ok {
		return nil, p.errorf("unknown function %q", name)
	}

	p.cur = p.cur.consume(1) // '('
	var args []Value
	for {
		p.cur = p.cur.consumeWhitespace()
		if p.cur.isEmpty() {
			return nil, p.errorf("unterminated call to %q", name)
		}
		if p.cur.startsWithChar(')') {
			p.cur = p.cur.consume(1)
			break
		}

		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.cur = p.cur.consumeWhitespace()
		if p.cur.startsWithChar(',') {
			p.cur = p.cur.consume(1)
		}
	}

	return fn(p, args)
}

// parseCodeBlock consumes a brace-delimited block, possibly spanning
// lines, tracking brace depth. The block's text is captured verbatim
// together with its line numbers.
func (p *parser) parseCodeBlock() (Value, error) {
	p.cur = p.cur.consume(1) // '{'
	code := &Code{origin: p.origin, ctx: p.ctx}

	depth := 0
	for {
		end := -1
		for i := 0; i < len(p.cur.str); i++ {
			switch p.cur.str[i] {
			case '{':
				depth++
			case '}':
				if depth == 0 {
					end = i
				} else {
					depth--
				}
			}
			if end >= 0 {
				break
			}
		}

		if end >= 0 {
			code.lines = append(code.lines,
				sourceLine{text: p.cur.str[:end], num: p.cur.row})
			p.cur = p.cur.consume(end + 1)
			return code, nil
		}

		code.lines = append(code.lines,
			sourceLine{text: p.cur.str, num: p.cur.row})
		p.idx++
		if p.idx >= len(p.lines) {
			return nil, p.errorf("unterminated code block")
		}
		line := p.lines[p.idx]
		p.cur = newFstring(line.num, line.text)
	}
}

// constNumber evaluates a value to a constant number at parse time.
// Values that are not ready yet (labels) are a parse error here.
func (p *parser) constNumber(v Value) (*Number, error) {
	num, ok := v.(Numeric)
	if !ok {
		return nil, p.errorf("expected a numeric value, got %s", v)
	}
	if n, ok := num.(*Number); ok {
		return n, nil
	}

	words, err := num.Words(p.asm)
	if err != nil {
		return nil, p.errorf("value %s is not ready: %v", v, err)
	}
	n, err := newNumber(prog.WordsToInt(words), num.NumWords(), p.frame())
	return n, p.wrap(err)
}

// evalInt evaluates a value to its integer form at parse time.
func (p *parser) evalInt(v Value) (int, error) {
	num, err := p.constNumber(v)
	if err != nil {
		return 0, err
	}
	return num.Value(), nil
}

// runCode executes a code block with the given context.
func (p *parser) runCode(code *Code, origin string, ctx *Context,
	caller *prog.Frame, internal bool) error {

	child := newCodeParser(p.asm, code, origin, caller, internal, ctx)
	return child.parseProgram()
}

// runMacro expands a user-defined command at the current statement.
func (p *parser) runMacro(macro *Macro, args []Value, frame *prog.Frame) error {
	if len(args) != len(macro.Params) {
		bodyFrame := &prog.Frame{
			Origin:   macroOrigin(macro),
			LineText: fmt.Sprintf("DEFINE COMMAND %s ...", macro.Name),
			LineNum:  macroFirstLine(macro),
			Internal: macro.Internal,
			Prev:     frame,
		}
		return &AssemblyError{
			Kind: KindParse,
			Msg: fmt.Sprintf("command %q expects %d args, got %d",
				macro.Name, len(macro.Params), len(args)),
			Frame: bodyFrame,
		}
	}

	ctx := NewContext(macro.Ctx)
	for i, param := range macro.Params {
		if err := ctx.DefineVariable(param, args[i]); err != nil {
			return p.wrap(err)
		}
	}

	return p.runCode(macro.Body, macroOrigin(macro), ctx, frame, macro.Internal)
}

func macroOrigin(macro *Macro) string {
	return fmt.Sprintf("macro %s (%s)", macro.Name, macro.Body.origin)
}

func macroFirstLine(macro *Macro) int {
	if len(macro.Body.lines) == 0 {
		return 0
	}
	return macro.Body.lines[0].num
}
