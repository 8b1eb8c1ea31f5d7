// Package dashboard computes per-node status rollups over an asset hierarchy.
package dashboard

import (
	"strings"

	"github.com/assetmgr/assetmgr/internal/hierarchy"
)

// Status buckets counted by the dashboard.
const (
	StatusInUse    = "In Use"
	StatusInStore  = "In Store"
	StatusInRepair = "In Repair"
)

// Asset is the subset of an asset row needed to roll up counts.
type Asset struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Module        string `json:"module"`
	Status        string `json:"status"`
	IsPlaceholder bool   `json:"is_placeholder"`
}

// Counts is the status breakdown for a set of assets.
type Counts struct {
	Total    int `json:"total"`
	InUse    int `json:"in_use"`
	InStore  int `json:"in_store"`
	InRepair int `json:"in_repair"`
	Other    int `json:"other"`
}

// Add accumulates another breakdown into c.
func (c *Counts) Add(other Counts) {
	c.Total += other.Total
	c.InUse += other.InUse
	c.InStore += other.InStore
	c.InRepair += other.InRepair
	c.Other += other.Other
}

// Tally counts the statuses of assets. Placeholders are skipped and an empty
// status is treated as in store.
func Tally(assets []Asset) Counts {
	var c Counts
	for _, a := range assets {
		if a.IsPlaceholder {
			continue
		}
		c.Total++
		switch strings.TrimSpace(a.Status) {
		case StatusInUse:
			c.InUse++
		case StatusInStore, "":
			c.InStore++
		case StatusInRepair:
			c.InRepair++
		}
	}
	c.Other = c.Total - (c.InUse + c.InStore + c.InRepair)
	return c
}

// Filter returns the non-placeholder assets in module whose type is one of the
// kind names under nodeID. ok is false when nodeID is unknown.
func Filter(m *hierarchy.Manager, assets []Asset, module, nodeID string) ([]Asset, bool) {
	if _, found := m.Find(nodeID); !found {
		return nil, false
	}
	names := make(map[string]struct{})
	for _, name := range m.KindNames(nodeID) {
		names[name] = struct{}{}
	}
	var out []Asset
	for _, a := range assets {
		if a.IsPlaceholder || a.Module != module {
			continue
		}
		if _, match := names[a.Type]; match {
			out = append(out, a)
		}
	}
	return out, true
}

// Rollup counts the assets under nodeID for module.
func Rollup(m *hierarchy.Manager, assets []Asset, module, nodeID string) (Counts, bool) {
	matched, ok := Filter(m, assets, module, nodeID)
	if !ok {
		return Counts{}, false
	}
	return Tally(matched), true
}
