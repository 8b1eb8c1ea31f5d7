package hierarchy

import "strings"

// NodeType distinguishes pure grouping folders from asset kinds.
type NodeType string

const (
	TypeFolder NodeType = "folder"
	TypeKind   NodeType = "kind"
)

const (
	defaultFolderIcon = "📁"
	defaultKindIcon   = "📦"
)

// Node is one folder or kind inside a built forest. Nodes are owned by the
// Manager that built them and must not be mutated by callers.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID string   `json:"parent_id,omitempty"`
	Module   string   `json:"module"`
	Type     NodeType `json:"type"`
	Icon     string   `json:"icon,omitempty"`
	Order    int      `json:"order"`
	Children []*Node  `json:"children"`
}

// IsKind reports whether the node is an asset kind.
func (n *Node) IsKind() bool {
	return n != nil && n.Type == TypeKind
}

// IsLeafKind reports whether the node is a kind without children, the unit
// real assets are matched against.
func (n *Node) IsLeafKind() bool {
	return n.IsKind() && len(n.Children) == 0
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// DisplayIcon returns the configured icon or the default glyph for the node type.
func (n *Node) DisplayIcon() string {
	if n == nil {
		return ""
	}
	if icon := strings.TrimSpace(n.Icon); icon != "" {
		return icon
	}
	if n.Type == TypeFolder {
		return defaultFolderIcon
	}
	return defaultKindIcon
}

// Record is the normalized flat shape consumed by Build.
type Record struct {
	ID       string
	Name     string
	ParentID string
	Module   string
	Type     NodeType
	Icon     string
	Order    int
}

// key returns the identifier used to index the record, falling back to its name.
func (r Record) key() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return strings.TrimSpace(r.Name)
}

// FolderRecord is a folder row as supplied by the catalog store.
type FolderRecord struct {
	ID       string
	Name     string
	ParentID string
	Module   string
	Icon     string
	Order    int
}

// KindRecord is an asset kind row. Kinds are usually keyed by name and point
// at their parent by name rather than by identifier.
type KindRecord struct {
	ID         string
	Name       string
	ParentID   string
	ParentName string
	Module     string
	Icon       string
}
