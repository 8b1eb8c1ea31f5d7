package hierarchy

import "strings"

// Manager is an immutable forest of folders and kinds built from flat records.
// It is safe for concurrent readers once Build returns.
type Manager struct {
	roots []*Node
	index map[string]*Node
	size  int
}

// Report describes what Build did with its input.
type Report struct {
	Total       int      `json:"total"`
	Nodes       int      `json:"nodes"`
	Dropped     int      `json:"dropped"`
	Duplicates  []string `json:"duplicates,omitempty"`
	Dangling    []string `json:"dangling,omitempty"`
	CrossModule []string `json:"cross_module,omitempty"`
	Cycles      []string `json:"cycles,omitempty"`
}

// Clean reports whether every record was linked as given.
func (r Report) Clean() bool {
	return r.Dropped == 0 && len(r.Duplicates) == 0 && len(r.Dangling) == 0 &&
		len(r.CrossModule) == 0 && len(r.Cycles) == 0
}

// Empty returns a manager with no nodes.
func Empty() *Manager {
	return &Manager{index: map[string]*Node{}}
}

// Build links records into a forest.
//
// Records without an ID or Name are dropped. The first record wins when IDs
// repeat. A record becomes a root when its parent is unset, unknown, lives in
// another module, or closes a parent cycle. Sibling order follows input order.
func Build(records []Record) (*Manager, Report) {
	report := Report{Total: len(records)}
	m := &Manager{index: make(map[string]*Node, len(records))}

	order := make([]*Node, 0, len(records))
	for _, rec := range records {
		id := rec.key()
		if id == "" {
			report.Dropped++
			continue
		}
		if _, exists := m.index[id]; exists {
			report.Duplicates = append(report.Duplicates, id)
			continue
		}
		typ := rec.Type
		if typ != TypeFolder {
			typ = TypeKind
		}
		node := &Node{
			ID:       id,
			Name:     strings.TrimSpace(rec.Name),
			ParentID: strings.TrimSpace(rec.ParentID),
			Module:   strings.TrimSpace(rec.Module),
			Type:     typ,
			Icon:     rec.Icon,
			Order:    rec.Order,
			Children: []*Node{},
		}
		if node.Name == "" {
			node.Name = id
		}
		m.index[id] = node
		order = append(order, node)
	}

	parents := make(map[string]*Node, len(order))
	for _, node := range order {
		if node.ParentID == "" {
			continue
		}
		parent, ok := m.index[node.ParentID]
		switch {
		case !ok || parent == node:
			report.Dangling = append(report.Dangling, node.ID)
		case parent.Module != node.Module:
			report.CrossModule = append(report.CrossModule, node.ID)
		default:
			parents[node.ID] = parent
		}
	}

	report.Cycles = breakCycles(order, parents)

	for _, node := range order {
		parent, ok := parents[node.ID]
		if !ok {
			m.roots = append(m.roots, node)
			continue
		}
		if !containsNode(parent.Children, node) {
			parent.Children = append(parent.Children, node)
		}
	}

	m.size = len(order)
	report.Nodes = m.size
	return m, report
}

// breakCycles removes one parent edge per cycle so every chain ends at a root.
// The member that appears first in input order is cut loose. It returns the
// IDs of the promoted members.
func breakCycles(order []*Node, parents map[string]*Node) []string {
	const (
		unvisited = iota
		walking
		done
	)
	position := make(map[*Node]int, len(order))
	for i, node := range order {
		position[node] = i
	}

	state := make(map[*Node]int, len(order))
	var cut []string
	for _, start := range order {
		if state[start] != unvisited {
			continue
		}
		var path []*Node
		cur := start
		for cur != nil && state[cur] == unvisited {
			state[cur] = walking
			path = append(path, cur)
			cur = parents[cur.ID]
		}
		if cur != nil && state[cur] == walking {
			victim := cur
			for i := len(path) - 1; i >= 0 && path[i] != cur; i-- {
				if position[path[i]] < position[victim] {
					victim = path[i]
				}
			}
			delete(parents, victim.ID)
			cut = append(cut, victim.ID)
		}
		for _, node := range path {
			state[node] = done
		}
	}
	return cut
}

func containsNode(nodes []*Node, target *Node) bool {
	for _, n := range nodes {
		if n == target {
			return true
		}
	}
	return false
}

// Len returns the number of nodes in the forest.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return m.size
}

// Roots returns every top-level node across all modules.
func (m *Manager) Roots() []*Node {
	if m == nil {
		return nil
	}
	return append([]*Node(nil), m.roots...)
}

// ModuleTree returns the roots belonging to module, preserving input order.
func (m *Manager) ModuleTree(module string) []*Node {
	if m == nil {
		return []*Node{}
	}
	module = strings.TrimSpace(module)
	out := make([]*Node, 0)
	for _, root := range m.roots {
		if root.Module == module {
			out = append(out, root)
		}
	}
	return out
}

// Modules lists the distinct modules of the roots in first-seen order.
func (m *Manager) Modules() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var modules []string
	for _, root := range m.roots {
		if _, ok := seen[root.Module]; ok {
			continue
		}
		seen[root.Module] = struct{}{}
		modules = append(modules, root.Module)
	}
	return modules
}

// Find returns the node with the given ID. IDs are unique within a manager, so
// the index lookup yields the same node a pre-order search would.
func (m *Manager) Find(id string) (*Node, bool) {
	if m == nil {
		return nil, false
	}
	node, ok := m.index[strings.TrimSpace(id)]
	return node, ok
}

// Descendants returns the subtree under id in pre-order. The node itself leads
// the result when includeSelf is set. Unknown IDs yield an empty slice.
func (m *Manager) Descendants(id string, includeSelf bool) []*Node {
	node, ok := m.Find(id)
	if !ok {
		return []*Node{}
	}

	out := make([]*Node, 0)
	if includeSelf {
		out = append(out, node)
	}
	stack := make([]*Node, 0, len(node.Children))
	for i := len(node.Children) - 1; i >= 0; i-- {
		stack = append(stack, node.Children[i])
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return out
}

// LeafKinds returns the childless kinds in the subtree rooted at id, itself included.
func (m *Manager) LeafKinds(id string) []*Node {
	var leaves []*Node
	for _, node := range m.Descendants(id, true) {
		if node.IsLeafKind() {
			leaves = append(leaves, node)
		}
	}
	return leaves
}

// KindNames returns the names of every kind in the subtree rooted at id,
// itself included, deduplicated in pre-order.
func (m *Manager) KindNames(id string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, node := range m.Descendants(id, true) {
		if !node.IsKind() {
			continue
		}
		if _, ok := seen[node.Name]; ok {
			continue
		}
		seen[node.Name] = struct{}{}
		names = append(names, node.Name)
	}
	return names
}

// Walk visits every node in pre-order, roots in input order. Returning false
// from fn skips the node's children.
func (m *Manager) Walk(fn func(node *Node, depth int) bool) {
	if m == nil || fn == nil {
		return
	}
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, node := range nodes {
			if fn(node, depth) {
				visit(node.Children, depth+1)
			}
		}
	}
	visit(m.roots, 0)
}
