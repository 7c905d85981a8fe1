// Package aggregate recomputes the denormalized lesson summaries held by units
// and the lesson counts held by course unit lists.
package aggregate

import (
	"sort"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
)

const DefaultReviewLabel = "Weekly Review & Quiz"

type Options struct {
	BootstrapLessonID string
	// ReviewLabel replaces the name of the last lesson of every unit.
	ReviewLabel string
}

func (o Options) withDefaults() Options {
	if o.BootstrapLessonID == "" {
		o.BootstrapLessonID = coursedoc.DefaultBootstrapLessonID
	}
	if o.ReviewLabel == "" {
		o.ReviewLabel = DefaultReviewLabel
	}
	return o
}

// Sort orders lessons of one unit: the bootstrap lesson first, then ascending
// day number, then lessons without a day suffix. Ties break on id.
func Sort(lessons []*coursedoc.Lesson, bootstrapID string) {
	sort.SliceStable(lessons, func(i, j int) bool {
		a, b := lessons[i], lessons[j]
		if (a.ID == bootstrapID) != (b.ID == bootstrapID) {
			return a.ID == bootstrapID
		}
		da, okA := coursedoc.DayNumber(a.ID)
		db, okB := coursedoc.DayNumber(b.ID)
		if okA != okB {
			return okA
		}
		if okA && da != db {
			return da < db
		}
		return a.ID < b.ID
	})
}

// Partition groups lessons by unit id, each group sorted with Sort.
func Partition(lessons map[string]*coursedoc.Lesson, bootstrapID string) map[string][]*coursedoc.Lesson {
	parts := map[string][]*coursedoc.Lesson{}
	for _, id := range coursedoc.SortedKeys(lessons) {
		l := lessons[id]
		parts[l.UnitID] = append(parts[l.UnitID], l)
	}
	for _, p := range parts {
		Sort(p, bootstrapID)
	}
	return parts
}

type Stats struct {
	Units      int
	EmptyUnits int
	UnitRefs   int
	Renamed    int
}

// Recompute renames the last lesson of every unit to the review label (unless
// the unit holds only the bootstrap lesson), rewrites every unit's lesson
// summary list from its partition and sets every course unit reference's
// lesson count to the partition size.
func Recompute(doc *coursedoc.Document, opts Options) Stats {
	opts = opts.withDefaults()
	parts := Partition(doc.Lessons, opts.BootstrapLessonID)
	var st Stats

	for _, p := range parts {
		if len(p) == 1 && p[0].ID == opts.BootstrapLessonID {
			continue
		}
		if last := p[len(p)-1]; last.Name != opts.ReviewLabel {
			last.Name = opts.ReviewLabel
			st.Renamed++
		}
	}

	for _, id := range coursedoc.SortedKeys(doc.Units) {
		p := parts[id]
		summaries := make([]coursedoc.LessonSummary, 0, len(p))
		for _, l := range p {
			summaries = append(summaries, l.Summary())
		}
		doc.Units[id].Lessons = summaries
		st.Units++
		if len(p) == 0 {
			st.EmptyUnits++
		}
	}

	for _, cid := range coursedoc.SortedKeys(doc.Courses) {
		c := doc.Courses[cid]
		for i := range c.Units {
			c.Units[i].LessonCount = len(parts[c.Units[i].ID])
			st.UnitRefs++
		}
	}
	return st
}
