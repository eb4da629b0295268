package circuit

import (
	"fmt"
	"strings"

	"github.com/sixbit/sixbit/sim"
)

// A Netlist is the flat view of a component tree: every reachable node,
// every connection, the atomic components in traversal order, and the
// partition of nodes into electrically coalesced groups.
type Netlist struct {
	Nodes   []*Node
	Atomics []*Component

	connections [][2]*Node
	connectedTo map[*Node][]*Node

	Groups  [][]*Node
	GroupOf map[*Node]int
}

// MakeNetlist flattens the component tree rooted at root. A node with
// no incident connection is an error.
func MakeNetlist(root *Component) (*Netlist, error) {
	nl := &Netlist{
		connectedTo: make(map[*Node][]*Node),
		GroupOf:     make(map[*Node]int),
	}
	if err := nl.resolve(root); err != nil {
		return nil, err
	}

	for _, node := range nl.Nodes {
		if len(nl.connectedTo[node]) < 1 {
			return nil, fmt.Errorf("circuit: unconnected node: %s", node.Path())
		}
	}

	nl.coalesce()
	return nl, nil
}

func (nl *Netlist) resolve(c *Component) error {
	seen := make(map[*Node]bool)
	return nl.resolveComponent(c, seen)
}

func (nl *Netlist) resolveComponent(c *Component, seen map[*Node]bool) error {
	for _, node := range c.Nodes() {
		nl.Nodes = append(nl.Nodes, node)
		seen[node] = true
	}

	if c.device != nil {
		nl.Atomics = append(nl.Atomics, c)
	} else {
		if len(c.subs) < 1 {
			return fmt.Errorf("circuit: %s needs sub-components", c.kind)
		}
		for _, sub := range c.subs {
			if err := nl.resolveComponent(sub, seen); err != nil {
				return err
			}
		}
	}

	for _, node := range c.Nodes() {
		for _, other := range node.conns {
			if !seen[other] {
				panic(fmt.Sprintf("circuit: connection to undiscovered node %s",
					other.Path()))
			}
			nl.connections = append(nl.connections, [2]*Node{node, other})
			nl.connectedTo[node] = append(nl.connectedTo[node], other)
			nl.connectedTo[other] = append(nl.connectedTo[other], node)
		}
	}
	return nil
}

// coalesce partitions the nodes into connected components of the
// connection graph via breadth-first traversal, assigning dense group
// ids in node-discovery order.
func (nl *Netlist) coalesce() {
	seen := make(map[*Node]bool)

	for _, start := range nl.Nodes {
		if seen[start] {
			continue
		}

		var group []*Node
		seen[start] = true

		queue := []*Node{start}
		for len(queue) > 0 {
			top := queue[0]
			queue = queue[1:]
			group = append(group, top)

			for _, neighbour := range nl.connectedTo[top] {
				if seen[neighbour] {
					continue
				}
				queue = append(queue, neighbour)
				seen[neighbour] = true
			}
		}

		nl.Groups = append(nl.Groups, group)
	}

	for groupNum, group := range nl.Groups {
		for _, node := range group {
			nl.GroupOf[node] = groupNum
		}
	}
}

// NumGroups returns the number of coalesced node groups.
func (nl *Netlist) NumGroups() int {
	return len(nl.Groups)
}

// Group returns the coalesced group id of a node.
func (nl *Netlist) Group(n *Node) int {
	id, ok := nl.GroupOf[n]
	if !ok {
		panic("circuit: node not in netlist: " + n.Path())
	}
	return id
}

// SimDevices binds every atomic component's ports to group ids and
// returns the resulting simulation devices in device-id order.
func (nl *Netlist) SimDevices() []sim.Device {
	devices := make([]sim.Device, len(nl.Atomics))
	for i, atomic := range nl.Atomics {
		groups := make(map[string]int)
		for _, node := range atomic.Nodes() {
			groups[node.name] = nl.Group(node)
		}
		devices[i] = atomic.device.SimDevice(groups)
	}
	return devices
}

// Dump returns a human-readable listing of nodes and coalesced groups.
func (nl *Netlist) Dump() string {
	var sb strings.Builder

	sb.WriteString(" == Nodes == \n")
	for num, node := range nl.Nodes {
		fmt.Fprintf(&sb, "   %3d: %s\n", num, node.Path())
	}

	sb.WriteString("\n == Coalesced == \n")
	for num, group := range nl.Groups {
		if len(group) == 0 {
			fmt.Fprintf(&sb, "  %3d - [empty]\n", num)
			continue
		}
		fmt.Fprintf(&sb, "  %3d - %s\n", num, group[0].Path())
		for _, node := range group[1:] {
			fmt.Fprintf(&sb, "        %s\n", node.Path())
		}
	}

	return sb.String()
}
