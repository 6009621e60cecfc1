package processing

import (
	"fmt"

	"github.com/systemstart/release-notes/pkg/api"
)

// Node is a step name plus the steps it depends on.
type Node struct {
	Name      string
	DependsOn []string
}

// Graph is a validated, acyclic dependency graph. Iteration everywhere
// follows node declaration order, so scheduling is deterministic.
type Graph struct {
	nodes      []Node
	index      map[string]int
	dependents map[string][]string
	order      []string
}

// NewGraph validates nodes and computes their topological order. Duplicate
// entries in a DependsOn list are collapsed. A node depending on an
// undeclared step, or a cycle, is reported as *api.GraphError.
func NewGraph(nodes []Node) (*Graph, error) {
	g := &Graph{
		nodes:      make([]Node, 0, len(nodes)),
		index:      make(map[string]int, len(nodes)),
		dependents: make(map[string][]string, len(nodes)),
	}

	for _, n := range nodes {
		if n.Name == "" {
			return nil, &api.GraphError{Reason: "step without a name"}
		}
		if _, dup := g.index[n.Name]; dup {
			return nil, &api.GraphError{Reason: "duplicate step", Steps: []string{n.Name}}
		}
		g.index[n.Name] = len(g.nodes)
		g.nodes = append(g.nodes, Node{Name: n.Name, DependsOn: dedupe(n.DependsOn)})
	}

	var dangling []string
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if _, ok := g.index[dep]; !ok {
				dangling = append(dangling, fmt.Sprintf("%s -> %s", n.Name, dep))
				continue
			}
			g.dependents[dep] = append(g.dependents[dep], n.Name)
		}
	}
	if len(dangling) > 0 {
		return nil, &api.GraphError{Reason: "unknown dependency", Steps: dangling}
	}

	order, blocked := g.kahn()
	if len(blocked) > 0 {
		return nil, &api.GraphError{Reason: "dependency cycle", Steps: blocked}
	}
	g.order = order
	return g, nil
}

// kahn runs Kahn's algorithm with in-degree counters and returns the
// topological order plus any nodes that never became ready.
func (g *Graph) kahn() (order []string, blocked []string) {
	inDegree := g.InDegrees()
	queue := g.Roots()
	order = make([]string, 0, len(g.nodes))

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, next := range g.dependents[name] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	for _, n := range g.nodes {
		if inDegree[n.Name] > 0 {
			blocked = append(blocked, n.Name)
		}
	}
	return order, blocked
}

// Len returns the number of steps in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Has reports whether name is a step in the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Names returns step names in declaration order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		names[i] = n.Name
	}
	return names
}

// Roots returns the steps without dependencies in declaration order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, n := range g.nodes {
		if len(n.DependsOn) == 0 {
			roots = append(roots, n.Name)
		}
	}
	return roots
}

// Dependencies returns the direct dependencies of name in declaration order.
func (g *Graph) Dependencies(name string) []string {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return append([]string(nil), g.nodes[i].DependsOn...)
}

// Dependents returns the steps that directly depend on name, in declaration order.
func (g *Graph) Dependents(name string) []string {
	return append([]string(nil), g.dependents[name]...)
}

// InDegrees returns a fresh map of unmet dependency counts per step.
func (g *Graph) InDegrees() map[string]int {
	inDegree := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		inDegree[n.Name] = len(n.DependsOn)
	}
	return inDegree
}

// Order returns one valid topological order of the steps.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
