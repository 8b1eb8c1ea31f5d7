package dashboard

import "github.com/assetmgr/assetmgr/internal/hierarchy"

// Card summarises one node for the dashboard grid.
type Card struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Icon       string             `json:"icon"`
	Type       hierarchy.NodeType `json:"type"`
	Leaf       bool               `json:"leaf"`
	Expandable bool               `json:"expandable"`
	Counts     Counts             `json:"counts"`
}

// View is the dashboard for one level of a module.
type View struct {
	Module   string `json:"module"`
	ParentID string `json:"parent_id,omitempty"`
	Title    string `json:"title"`
	Leaf     bool   `json:"leaf"`
	Cards    []Card `json:"cards"`
	Totals   Counts `json:"totals"`
}

// Cards builds the view for module at parentID. An empty parentID shows the
// module roots and totals every asset of the module; otherwise the parent's
// children are shown and totals cover the parent's subtree. ok is false when
// parentID is set but unknown.
func Cards(m *hierarchy.Manager, assets []Asset, module, parentID string) (View, bool) {
	view := View{Module: module, ParentID: parentID, Title: module, Cards: []Card{}}

	var nodes []*hierarchy.Node
	if parentID == "" {
		nodes = m.ModuleTree(module)
		inModule := make([]Asset, 0, len(assets))
		for _, a := range assets {
			if a.Module == module {
				inModule = append(inModule, a)
			}
		}
		view.Totals = Tally(inModule)
	} else {
		parent, found := m.Find(parentID)
		if !found {
			return View{}, false
		}
		nodes = parent.Children
		view.Title = parent.Name
		view.Leaf = parent.IsLeafKind()
		view.Totals, _ = Rollup(m, assets, module, parentID)
	}

	for _, node := range nodes {
		counts, _ := Rollup(m, assets, module, node.ID)
		view.Cards = append(view.Cards, Card{
			ID:         node.ID,
			Name:       node.Name,
			Icon:       node.DisplayIcon(),
			Type:       node.Type,
			Leaf:       node.IsLeafKind(),
			Expandable: node.HasChildren(),
			Counts:     counts,
		})
	}
	return view, true
}
