// Package circuit describes hierarchical digital circuits. A component
// is either a composite owning named sub-components or an atomic
// electrical device; both expose named ports (nodes). Connections wire
// a component's own ports to ports of its immediate children.
package circuit

import (
	"fmt"
	"strings"

	"github.com/sixbit/sixbit/sim"
)

// A Node is a named port on exactly one component. It records outward
// connections to ports of the component's direct sub-components.
type Node struct {
	comp  *Component
	name  string
	conns []*Node
}

// Name returns the node's port name.
func (n *Node) Name() string {
	return n.name
}

// Component returns the component owning the node.
func (n *Node) Component() *Component {
	return n.comp
}

// Path returns the node's hierarchical path for diagnostics.
func (n *Node) Path() string {
	return n.comp.Path() + ">" + n.name
}

func (n *Node) String() string {
	return fmt.Sprintf("[Node @ %s]", n.Path())
}

// A Device is the electrical behavior of an atomic component.
type Device interface {
	// SpiceLine emits the device as a single line of ngspice syntax,
	// given a device id and a mapping from port name to net name.
	SpiceLine(id string, nets map[string]string) string

	// SimDevice binds the device's ports to coalesced group ids.
	SimDevice(groups map[string]int) sim.Device
}

// A Component is one element of the circuit hierarchy.
type Component struct {
	kind   string
	role   string
	parent *Component

	subs      []*Component
	subByRole map[string]*Component

	nodeOrder []string
	nodes     map[string]*Node

	device Device // non-nil for atomic components
}

// New creates a composite component with the given port names and, if
// parent is non-nil, registers it as a sub-component.
func New(parent *Component, kind, role string, nodeNames []string) *Component {
	c := &Component{
		kind:      kind,
		role:      role,
		parent:    parent,
		subByRole: make(map[string]*Component),
		nodes:     make(map[string]*Node),
	}

	for _, name := range nodeNames {
		if _, ok := c.nodes[name]; ok {
			panic(fmt.Sprintf("circuit: duplicate port %q on %s", name, c.Path()))
		}
		c.nodes[name] = &Node{comp: c, name: name}
		c.nodeOrder = append(c.nodeOrder, name)
	}

	if parent != nil {
		parent.addComponent(c)
	}
	return c
}

// NewAtomic creates an atomic device component.
func NewAtomic(parent *Component, kind, role string, nodeNames []string, dev Device) *Component {
	c := New(parent, kind, role, nodeNames)
	c.device = dev
	return c
}

func (c *Component) addComponent(sub *Component) {
	if c.device != nil {
		panic("circuit: cannot add sub-component to atomic component " + c.Path())
	}
	if _, ok := c.subByRole[sub.role]; ok {
		panic(fmt.Sprintf("circuit: duplicate role %q in %s", sub.role, c.Path()))
	}
	c.subByRole[sub.role] = sub
	c.subs = append(c.subs, sub)
}

// Kind returns the component's kind name (e.g. "nand").
func (c *Component) Kind() string {
	return c.kind
}

// Role returns the component's instance label within its parent.
func (c *Component) Role() string {
	return c.role
}

// Device returns the atomic device behavior, or nil for composites.
func (c *Component) Device() Device {
	return c.device
}

// Node returns the named port. Asking for an unknown port is a
// programmer error.
func (c *Component) Node(name string) *Node {
	n, ok := c.nodes[name]
	if !ok {
		panic(fmt.Sprintf("circuit: no port %q on %s", name, c.Path()))
	}
	return n
}

// Nodes returns the component's ports in declaration order.
func (c *Component) Nodes() []*Node {
	nodes := make([]*Node, len(c.nodeOrder))
	for i, name := range c.nodeOrder {
		nodes[i] = c.nodes[name]
	}
	return nodes
}

// NodeNames returns the port names in declaration order.
func (c *Component) NodeNames() []string {
	return append([]string(nil), c.nodeOrder...)
}

// Subs returns the sub-components in creation order.
func (c *Component) Subs() []*Component {
	return c.subs
}

// Path returns the component's hierarchical path for diagnostics.
func (c *Component) Path() string {
	prefix := ""
	if c.parent != nil {
		prefix = c.parent.Path() + "."
	}
	return fmt.Sprintf("%s%s[%s]", prefix, c.role, c.kind)
}

func (c *Component) String() string {
	return fmt.Sprintf("<%s>", c.Path())
}

// Connect wires one of the component's own ports to a port of a direct
// sub-component. Ports whose names start with '_' are internal to the
// defining component and may not be connected to from outside.
func (c *Component) Connect(ownPort string, to *Node) {
	own, ok := c.nodes[ownPort]
	if !ok {
		panic(fmt.Sprintf("circuit: no port %q on %s", ownPort, c.Path()))
	}
	if to.comp.parent != c {
		panic(fmt.Sprintf("circuit: %s is not a direct child port of %s",
			to.Path(), c.Path()))
	}
	if strings.HasPrefix(to.name, "_") {
		panic(fmt.Sprintf("circuit: %s is internal to %s",
			to.Path(), to.comp.Path()))
	}

	own.conns = append(own.conns, to)
}
