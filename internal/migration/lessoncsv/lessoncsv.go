// Package lessoncsv maps the lesson spreadsheet layout onto course lessons.
package lessoncsv

import (
	"fmt"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
	"github.com/yungbote/coursekit/internal/migration/csvrows"
	"github.com/yungbote/coursekit/internal/migration/readinglinks"
)

const (
	ColID         = "id"
	ColUnitID     = "unitId"
	ColName       = "name"
	ColVideoTitle = "video-title"
	ColVideoURL   = "video-url"
	ColQuizID     = "quizId"
	ColContent    = "content"
	ColUnitName   = "unit_name"
)

func LinkTextColumn(slot int) string { return fmt.Sprintf("link_%d_text", slot) }
func LinkURLColumn(slot int) string  { return fmt.Sprintf("link_%d_url", slot) }

// Columns is the full header, in export order.
func Columns() []string {
	cols := []string{ColID, ColUnitID, ColName, ColVideoTitle, ColVideoURL, ColQuizID, ColContent, ColUnitName}
	for i := 1; i <= readinglinks.SlotCount; i++ {
		cols = append(cols, LinkTextColumn(i), LinkURLColumn(i))
	}
	return cols
}

type Result struct {
	Lessons map[string]*coursedoc.Lesson
	// Order holds lesson ids in first-seen row order.
	Order []string
	// UnitNames holds the first non-empty unit_name per unit id.
	UnitNames map[string]string
	// Skipped counts rows without an id or unitId.
	Skipped int
	// Duplicates counts rows whose id appeared earlier; the later row wins.
	Duplicates int
}

// Load parses a CSV payload and maps it.
func Load(text string) (*Result, error) {
	return Map(csvrows.NewTable(csvrows.Parse(text)))
}

func Map(tbl *csvrows.Table) (*Result, error) {
	if err := tbl.Require(Columns()...); err != nil {
		return nil, err
	}
	res := &Result{
		Lessons:   map[string]*coursedoc.Lesson{},
		UnitNames: map[string]string{},
	}
	for _, rec := range tbl.Records() {
		id, unitID := rec.Get(ColID), rec.Get(ColUnitID)
		if id == "" || unitID == "" {
			res.Skipped++
			continue
		}
		if _, dup := res.Lessons[id]; dup {
			res.Duplicates++
		} else {
			res.Order = append(res.Order, id)
		}
		res.Lessons[id] = lessonFromRecord(id, unitID, rec)

		if name := rec.Get(ColUnitName); name != "" {
			if _, ok := res.UnitNames[unitID]; !ok {
				res.UnitNames[unitID] = name
			}
		}
	}
	return res, nil
}

func lessonFromRecord(id, unitID string, rec csvrows.Record) *coursedoc.Lesson {
	links := make([]readinglinks.Link, readinglinks.SlotCount)
	for i := range links {
		links[i] = readinglinks.Link{
			Text: rec.Get(LinkTextColumn(i + 1)),
			URL:  rec.Get(LinkURLColumn(i + 1)),
		}
	}
	return &coursedoc.Lesson{
		ID:         id,
		UnitID:     unitID,
		Name:       rec.Get(ColName),
		Content:    readinglinks.Prepend(rec[ColContent], links),
		VideoTitle: rec.Get(ColVideoTitle),
		VideoURL:   rec.Get(ColVideoURL),
		QuizID:     rec.Get(ColQuizID),
	}
}
