package asm

import "fmt"

// A Context is one scope of variables and user-defined commands.
// Lookup walks up the parent chain; definition shadows nothing within
// the same scope.
type Context struct {
	parent    *Context
	variables map[string]Value
	macros    map[string]*Macro

	lastGlobalLabel string
}

// NewContext creates a scope with the given parent (nil for the root).
func NewContext(parent *Context) *Context {
	return &Context{
		parent:    parent,
		variables: make(map[string]Value),
		macros:    make(map[string]*Macro),
	}
}

// FindVariable looks a variable up through the scope chain.
func (c *Context) FindVariable(name string) (Value, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if v, ok := ctx.variables[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// DefineVariable binds a new variable in this scope. Redefining a name
// already bound in the same scope is an error.
func (c *Context) DefineVariable(name string, value Value) error {
	if _, ok := c.variables[name]; ok {
		return fmt.Errorf("variable %q already defined in this scope", name)
	}
	c.variables[name] = value
	return nil
}

// SetVariable walks up to an existing binding and rebinds it.
func (c *Context) SetVariable(name string, value Value) error {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if _, ok := ctx.variables[name]; ok {
			ctx.variables[name] = value
			return nil
		}
	}
	return fmt.Errorf("variable %q not defined", name)
}

// FindMacro looks a user-defined command up through the scope chain.
func (c *Context) FindMacro(name string) *Macro {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if m, ok := ctx.macros[name]; ok {
			return m
		}
	}
	return nil
}

// DefineMacro binds a new command in this scope.
func (c *Context) DefineMacro(m *Macro) error {
	if _, ok := c.macros[m.Name]; ok {
		return fmt.Errorf("command %q already defined in this scope", m.Name)
	}
	c.macros[m.Name] = m
	return nil
}

// GlobalLabel returns the nearest enclosing global label name, walking
// up the scope chain.
func (c *Context) GlobalLabel() string {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.lastGlobalLabel != "" {
			return ctx.lastGlobalLabel
		}
	}
	return ""
}

// SetGlobalLabel records a newly declared global label in this scope.
func (c *Context) SetGlobalLabel(name string) {
	c.lastGlobalLabel = name
}

// A Macro is a user-defined command: parameter names, a code body, the
// defining context (its closure), and whether expansions are hidden
// from user-facing tracebacks.
type Macro struct {
	Name     string
	Params   []string
	Body     *Code
	Ctx      *Context
	Internal bool
}
