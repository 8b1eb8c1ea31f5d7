package hierarchy

import (
	"fmt"
	"io"

	"github.com/ddddddO/gtree"
)

const (
	displayBaseIndent = 40
	displayStepIndent = 15
)

// DisplayNode is a render-ready view of a Node for navigation trees.
type DisplayNode struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	Icon       string        `json:"icon"`
	Type       NodeType      `json:"type"`
	Depth      int           `json:"depth"`
	Indent     int           `json:"indent"`
	Expandable bool          `json:"expandable"`
	Children   []DisplayNode `json:"children,omitempty"`
}

// DisplayTree converts nodes and their subtrees into display nodes, starting at depth.
func DisplayTree(nodes []*Node, depth int) []DisplayNode {
	if depth < 0 {
		depth = 0
	}
	out := make([]DisplayNode, 0, len(nodes))
	for _, node := range nodes {
		if node == nil {
			continue
		}
		item := DisplayNode{
			ID:         node.ID,
			Label:      node.Name,
			Icon:       node.DisplayIcon(),
			Type:       node.Type,
			Depth:      depth,
			Indent:     displayBaseIndent + depth*displayStepIndent,
			Expandable: node.HasChildren(),
		}
		if item.Expandable {
			item.Children = DisplayTree(node.Children, depth+1)
		}
		out = append(out, item)
	}
	return out
}

// RenderText writes nodes as a plain-text tree under a title line.
func RenderText(w io.Writer, title string, nodes []*Node) error {
	root := gtree.NewRoot(title)
	for _, node := range nodes {
		addTextNode(root, node)
	}
	if err := gtree.OutputFromRoot(w, root); err != nil {
		return fmt.Errorf("render tree: %w", err)
	}
	return nil
}

func addTextNode(parent *gtree.Node, node *Node) {
	if node == nil {
		return
	}
	// gtree merges siblings with equal text, so the ID keeps labels distinct.
	child := parent.Add(fmt.Sprintf("%s %s [%s]", node.DisplayIcon(), node.Name, node.ID))
	for _, c := range node.Children {
		addTextNode(child, c)
	}
}
