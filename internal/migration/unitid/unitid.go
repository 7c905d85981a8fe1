// Package unitid rewrites legacy unit identifiers to the canonical scheme.
//
// Legacy ids carry the week token in the middle (unit_qlzx_week1_2728), canonical
// ids carry it at the end (unit_qlzx_2728_week1). Units live in two places in a
// snapshot, the flat unit map and the unit list embedded in each course, and both
// are rewritten from the same Mapping.
package unitid

import (
	"regexp"
	"strconv"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
)

var (
	legacyRe    = regexp.MustCompile(`^(.+)_week(\d+)_(.+)$`)
	canonicalRe = regexp.MustCompile(`_week(\d+)$`)
)

// Canonical returns the canonical form of id. Ids that are already canonical, or
// that match neither form, come back unchanged.
func Canonical(id string) string {
	if canonicalRe.MatchString(id) {
		return id
	}
	m := legacyRe.FindStringSubmatch(id)
	if m == nil {
		return id
	}
	return m[1] + "_" + m[3] + "_week" + m[2]
}

func IsLegacy(id string) bool {
	return Canonical(id) != id
}

// Week returns the week number of a canonical id.
func Week(id string) (int, bool) {
	m := canonicalRe.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Mapping is the old id → new id table for one snapshot. Only ids that change
// are present.
type Mapping map[string]string

// Resolve returns the rewritten id, or id itself when it is not mapped.
func (m Mapping) Resolve(id string) string {
	if to, ok := m[id]; ok {
		return to
	}
	return id
}

// BuildMapping collects every unit id from both locations of doc.
func BuildMapping(doc *coursedoc.Document) Mapping {
	m := Mapping{}
	add := func(id string) {
		if c := Canonical(id); c != id {
			m[id] = c
		}
	}
	for key, u := range doc.Units {
		add(key)
		add(u.ID)
	}
	for _, c := range doc.Courses {
		for _, ref := range c.Units {
			add(ref.ID)
		}
	}
	return m
}
