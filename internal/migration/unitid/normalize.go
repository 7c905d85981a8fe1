package unitid

import (
	"strings"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
)

type Stats struct {
	// Rewritten is the number of distinct legacy ids in the mapping.
	Rewritten int
	// Collisions counts legacy units dropped because their canonical id was
	// already present, in the unit map and in course unit lists.
	Collisions int
	// Renamed counts name overrides that changed a unit or a unit reference.
	Renamed int
}

// Normalize rewrites legacy unit ids in the unit map and in every course's unit
// list, then applies display-name overrides (keyed by unit id, either form) to
// both. It is idempotent. The returned Mapping is what was applied.
func Normalize(doc *coursedoc.Document, names map[string]string) (Mapping, Stats) {
	mapping := BuildMapping(doc)
	st := Stats{Rewritten: len(mapping)}

	overrides := make(map[string]string, len(names))
	for id, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			overrides[Canonical(id)] = name
		}
	}

	// one rewrite for both locations
	apply := func(id, name *string) {
		*id = mapping.Resolve(*id)
		if n, ok := overrides[*id]; ok && *name != n {
			*name = n
			st.Renamed++
		}
	}

	units := make(map[string]*coursedoc.Unit, len(doc.Units))
	// canonical keys first so they win over a legacy twin
	keys := coursedoc.SortedKeys(doc.Units)
	for _, pass := range []bool{false, true} {
		for _, key := range keys {
			if IsLegacy(key) != pass {
				continue
			}
			u := doc.Units[key]
			newID := mapping.Resolve(key)
			if _, taken := units[newID]; taken {
				st.Collisions++
				continue
			}
			u.ID = key
			apply(&u.ID, &u.Name)
			units[newID] = u
		}
	}
	doc.Units = units

	for _, cid := range coursedoc.SortedKeys(doc.Courses) {
		c := doc.Courses[cid]
		seen := make(map[string]bool, len(c.Units))
		refs := c.Units[:0]
		for _, ref := range c.Units {
			apply(&ref.ID, &ref.Name)
			if seen[ref.ID] {
				st.Collisions++
				continue
			}
			seen[ref.ID] = true
			refs = append(refs, ref)
		}
		c.Units = refs
	}
	return mapping, st
}
