package docs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/tkmfujise/redscribe-docs/internal/model"
)

// Autogenerated marks a sidebar that lists every doc.
const Autogenerated = "autogenerated"

// Sidebars maps a sidebar id to its ordered doc ids. A nil list means
// the sidebar is autogenerated.
type Sidebars map[string][]string

// LoadSidebars reads a sidebars file of the form
//
//	tutorialSidebar:
//	  - intro
//	  - guides/signals
//	otherSidebar: autogenerated
//
// A missing file yields no sidebars; every lookup is then autogenerated.
func LoadSidebars(p string) (Sidebars, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Sidebars{}, nil
		}
		return nil, fmt.Errorf("failed to read sidebars file '%s': %w", p, err)
	}

	raw := yaml.MapSlice{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshalling sidebars file %s: %w", p, err)
	}

	out := make(Sidebars, len(raw))
	for _, entry := range raw {
		id, ok := entry.Key.(string)
		if !ok {
			return nil, fmt.Errorf("sidebars file %s: sidebar id %v is not a string", p, entry.Key)
		}
		switch v := entry.Value.(type) {
		case string:
			if v != Autogenerated {
				return nil, fmt.Errorf("sidebars file %s: sidebar %q must be a list or %q", p, id, Autogenerated)
			}
			out[id] = nil
		case []interface{}:
			ids := make([]string, 0, len(v))
			for _, d := range v {
				s, ok := d.(string)
				if !ok {
					return nil, fmt.Errorf("sidebars file %s: sidebar %q has a non-string entry %v", p, id, d)
				}
				ids = append(ids, s)
			}
			out[id] = ids
		default:
			return nil, fmt.Errorf("sidebars file %s: sidebar %q has unsupported value %T", p, id, entry.Value)
		}
	}
	return out, nil
}

// Resolve returns the docs of sidebar id in display order. Ids listed in
// the sidebar but missing from docs are returned in missing.
func (s Sidebars) Resolve(id string, items []*model.ContentItem) (ordered []*model.ContentItem, missing []string) {
	list, ok := s[id]
	if !ok || list == nil {
		ordered = append(ordered, items...)
		sort.SliceStable(ordered, func(i, j int) bool {
			a, b := ordered[i], ordered[j]
			if a.SidebarPosition != b.SidebarPosition {
				// unpositioned docs go last
				if a.SidebarPosition == 0 {
					return false
				}
				if b.SidebarPosition == 0 {
					return true
				}
				return a.SidebarPosition < b.SidebarPosition
			}
			return a.ID < b.ID
		})
		return ordered, nil
	}

	byID := make(map[string]*model.ContentItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, docID := range list {
		if it, ok := byID[docID]; ok {
			ordered = append(ordered, it)
		} else {
			missing = append(missing, docID)
		}
	}
	return ordered, missing
}
