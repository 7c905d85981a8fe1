// Package csvexport writes a snapshot's lessons in the lesson spreadsheet
// layout, the inverse of lessoncsv.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
	"github.com/yungbote/coursekit/internal/migration/aggregate"
	"github.com/yungbote/coursekit/internal/migration/lessoncsv"
	"github.com/yungbote/coursekit/internal/migration/readinglinks"
)

type Options struct {
	BootstrapLessonID string
}

// UnitOrder lists unit ids in course order (courses by id, then their unit
// lists), followed by units no course references, followed by unit ids that
// only lessons reference.
func UnitOrder(doc *coursedoc.Document) []string {
	seen := map[string]bool{}
	var order []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, cid := range coursedoc.SortedKeys(doc.Courses) {
		for _, ref := range doc.Courses[cid].Units {
			add(ref.ID)
		}
	}
	for _, id := range coursedoc.SortedKeys(doc.Units) {
		add(id)
	}
	var orphans []string
	for _, id := range coursedoc.SortedKeys(doc.Lessons) {
		if u := doc.Lessons[id].UnitID; !seen[u] {
			seen[u] = true
			orphans = append(orphans, u)
		}
	}
	sort.Strings(orphans)
	return append(order, orphans...)
}

// Write emits the header and one row per lesson and returns the row count.
func Write(w io.Writer, doc *coursedoc.Document, opts Options) (int, error) {
	bootstrap := opts.BootstrapLessonID
	if bootstrap == "" {
		bootstrap = coursedoc.DefaultBootstrapLessonID
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(lessoncsv.Columns()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	parts := aggregate.Partition(doc.Lessons, bootstrap)
	rows := 0
	for _, unitID := range UnitOrder(doc) {
		unitName := ""
		if u, ok := doc.Units[unitID]; ok {
			unitName = u.Name
		}
		for _, l := range parts[unitID] {
			if err := cw.Write(record(l, unitName)); err != nil {
				return rows, fmt.Errorf("write lesson %s: %w", l.ID, err)
			}
			rows++
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("flush csv: %w", err)
	}
	return rows, nil
}

func record(l *coursedoc.Lesson, unitName string) []string {
	links, body := readinglinks.Split(l.Content)
	rec := []string{l.ID, l.UnitID, l.Name, l.VideoTitle, l.VideoURL, l.QuizID, body, unitName}
	for i := 0; i < readinglinks.SlotCount; i++ {
		var link readinglinks.Link
		if i < len(links) {
			link = links[i]
		}
		rec = append(rec, link.Text, link.URL)
	}
	return rec
}
