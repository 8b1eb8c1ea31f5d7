package hierarchy

import "strings"

// Normalize merges folder and kind rows into the single record shape used by
// Build. Folders come first, then kinds, each in input order.
//
// A kind without a parent identifier but with a parent name is resolved by
// name: a folder in the same module wins, then a kind in the same module,
// then a folder or kind from any module. A name that resolves to nothing is
// kept as the parent reference so Build treats the kind as a dangling root.
func Normalize(folders []FolderRecord, kinds []KindRecord) ([]Record, NormalizeReport) {
	records := make([]Record, 0, len(folders)+len(kinds))
	names := newNameIndex()
	var report NormalizeReport

	for _, f := range folders {
		rec := Record{
			ID:       strings.TrimSpace(f.ID),
			Name:     strings.TrimSpace(f.Name),
			ParentID: strings.TrimSpace(f.ParentID),
			Module:   strings.TrimSpace(f.Module),
			Type:     TypeFolder,
			Icon:     f.Icon,
			Order:    f.Order,
		}
		records = append(records, rec)
		names.add(rec)
	}

	kindStart := len(records)
	for _, k := range kinds {
		rec := Record{
			ID:       strings.TrimSpace(k.ID),
			Name:     strings.TrimSpace(k.Name),
			ParentID: strings.TrimSpace(k.ParentID),
			Module:   strings.TrimSpace(k.Module),
			Type:     TypeKind,
			Icon:     k.Icon,
		}
		if rec.ID == "" {
			rec.ID = rec.Name
		}
		records = append(records, rec)
		names.add(rec)
	}

	for i, k := range kinds {
		rec := &records[kindStart+i]
		if rec.ParentID != "" {
			continue
		}
		parentName := strings.TrimSpace(k.ParentName)
		if parentName == "" {
			continue
		}
		if id, ok := names.resolve(parentName, rec.Module); ok {
			rec.ParentID = id
			report.ResolvedByName++
		} else {
			rec.ParentID = parentName
			report.Unresolved = append(report.Unresolved, rec.ID)
		}
	}

	report.Folders = len(folders)
	report.Kinds = len(kinds)
	return records, report
}

// NormalizeReport summarises how parent names were resolved.
type NormalizeReport struct {
	Folders        int      `json:"folders"`
	Kinds          int      `json:"kinds"`
	ResolvedByName int      `json:"resolved_by_name"`
	Unresolved     []string `json:"unresolved,omitempty"`
}

type nameIndex struct {
	folders map[string]map[string]string
	kinds   map[string]map[string]string
	anyFold map[string]string
	anyKind map[string]string
}

func newNameIndex() *nameIndex {
	return &nameIndex{
		folders: map[string]map[string]string{},
		kinds:   map[string]map[string]string{},
		anyFold: map[string]string{},
		anyKind: map[string]string{},
	}
}

func (x *nameIndex) add(rec Record) {
	id := rec.key()
	if id == "" || rec.Name == "" {
		return
	}
	byModule, global := x.folders, x.anyFold
	if rec.Type == TypeKind {
		byModule, global = x.kinds, x.anyKind
	}
	if byModule[rec.Module] == nil {
		byModule[rec.Module] = map[string]string{}
	}
	if _, exists := byModule[rec.Module][rec.Name]; !exists {
		byModule[rec.Module][rec.Name] = id
	}
	if _, exists := global[rec.Name]; !exists {
		global[rec.Name] = id
	}
}

func (x *nameIndex) resolve(name, module string) (string, bool) {
	if id, ok := x.folders[module][name]; ok {
		return id, true
	}
	if id, ok := x.kinds[module][name]; ok {
		return id, true
	}
	if id, ok := x.anyFold[name]; ok {
		return id, true
	}
	if id, ok := x.anyKind[name]; ok {
		return id, true
	}
	return "", false
}
