// Package reconcile merges freshly parsed lessons into a snapshot's lesson map.
package reconcile

import (
	"regexp"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
	"github.com/yungbote/coursekit/internal/migration/unitid"
)

type Options struct {
	// BootstrapLessonID is the day-zero lesson, retained unconditionally.
	BootstrapLessonID string
	// DailyPattern matches legacy daily lesson ids; matching snapshot lessons are
	// dropped before the CSV lessons are added.
	DailyPattern *regexp.Regexp
	// FallbackUnitID receives retained lessons whose unit no longer exists. When
	// empty, the week-0 unit of the final unit map is used.
	FallbackUnitID string
}

func (o Options) withDefaults() Options {
	if o.BootstrapLessonID == "" {
		o.BootstrapLessonID = coursedoc.DefaultBootstrapLessonID
	}
	if o.DailyPattern == nil {
		o.DailyPattern = coursedoc.DailyLessonPattern
	}
	return o
}

type Result struct {
	Lessons map[string]*coursedoc.Lesson
	// FallbackUnitID is the resolved fallback, empty when none exists.
	FallbackUnitID string

	Dropped  int
	Retained int
	Added    int
	Replaced int
	Repaired int
	// Dangling lists ids of lessons whose unit is absent from the unit map.
	Dangling []string
}

// Merge builds the reconciled lesson map. Snapshot lessons matching the daily
// pattern are dropped, the bootstrap lesson and every other lesson are kept, and
// parsed lessons are added on top, replacing kept entries with the same id
// wholesale. Any lesson pointing at a legacy unit id follows that unit to its
// canonical id. Kept lessons whose unit is still missing move to the fallback
// unit when that exists. Parsed lessons are never moved to the fallback.
func Merge(existing, parsed map[string]*coursedoc.Lesson, units map[string]*coursedoc.Unit, mapping unitid.Mapping, opts Options) *Result {
	opts = opts.withDefaults()
	fallback, hasFallback := ResolveFallback(units, opts.FallbackUnitID)

	res := &Result{Lessons: make(map[string]*coursedoc.Lesson, len(existing)+len(parsed))}
	if hasFallback {
		res.FallbackUnitID = fallback
	}

	for _, id := range coursedoc.SortedKeys(existing) {
		l := existing[id]
		if id != opts.BootstrapLessonID && opts.DailyPattern.MatchString(id) {
			res.Dropped++
			continue
		}
		l.ID = id
		if repair(l, units, mapping, fallback, hasFallback) {
			res.Repaired++
		}
		res.Lessons[id] = l
		res.Retained++
	}

	for _, id := range coursedoc.SortedKeys(parsed) {
		if _, ok := res.Lessons[id]; ok {
			res.Replaced++
		} else {
			res.Added++
		}
		l := parsed[id]
		l.ID = id
		if to, ok := canonicalUnit(l.UnitID, units, mapping); ok {
			l.UnitID = to
			res.Repaired++
		}
		res.Lessons[id] = l
	}

	for _, id := range coursedoc.SortedKeys(res.Lessons) {
		if _, ok := units[res.Lessons[id].UnitID]; !ok {
			res.Dangling = append(res.Dangling, id)
		}
	}
	return res
}

func repair(l *coursedoc.Lesson, units map[string]*coursedoc.Unit, mapping unitid.Mapping, fallback string, hasFallback bool) bool {
	if _, ok := units[l.UnitID]; ok {
		return false
	}
	if to, ok := canonicalUnit(l.UnitID, units, mapping); ok {
		l.UnitID = to
		return true
	}
	if hasFallback {
		l.UnitID = fallback
		return true
	}
	return false
}

// canonicalUnit returns the canonical id for a legacy unit id that is absent
// from units, provided the canonical unit exists. The snapshot's mapping is
// consulted first; ids it never saw resolve by their shape.
func canonicalUnit(id string, units map[string]*coursedoc.Unit, mapping unitid.Mapping) (string, bool) {
	if _, ok := units[id]; ok {
		return "", false
	}
	to := mapping.Resolve(id)
	if to == id {
		to = unitid.Canonical(id)
	}
	if to == id {
		return "", false
	}
	if _, ok := units[to]; !ok {
		return "", false
	}
	return to, true
}

// ResolveFallback returns the configured fallback unit if it exists in units, or,
// with nothing configured, the lowest canonical week-0 unit id.
func ResolveFallback(units map[string]*coursedoc.Unit, configured string) (string, bool) {
	if configured != "" {
		_, ok := units[configured]
		return configured, ok
	}
	for _, id := range coursedoc.SortedKeys(units) {
		if week, ok := unitid.Week(id); ok && week == 0 {
			return id, true
		}
	}
	return "", false
}
