// Package mockdata generates a legacy-shaped course snapshot together with a
// lesson spreadsheet that re-keys it to canonical ids. The pair exercises every
// reconcile stage and is deterministic for a given seed.
package mockdata

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand/v2"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
	"github.com/yungbote/coursekit/internal/migration/lessoncsv"
	"github.com/yungbote/coursekit/internal/migration/readinglinks"
)

type Options struct {
	Weeks  int
	Days   int
	Seed   uint64
	Prefix string
	Cohort string
}

func (o Options) withDefaults() Options {
	if o.Weeks <= 0 {
		o.Weeks = 2
	}
	if o.Days <= 0 {
		o.Days = 3
	}
	if o.Prefix == "" {
		o.Prefix = "qlzx"
	}
	if o.Cohort == "" {
		o.Cohort = "2728"
	}
	return o
}

type Fixture struct {
	Doc *coursedoc.Document
	// Rows is the spreadsheet including its header row.
	Rows [][]string
}

var topics = []string{"Breathing", "Posture", "Focus", "Rhythm", "Balance", "Recovery", "Stamina", "Flow"}

func LegacyUnitID(o Options, week int) string {
	return fmt.Sprintf("unit_%s_week%d_%s", o.Prefix, week, o.Cohort)
}

func CanonicalUnitID(o Options, week int) string {
	return fmt.Sprintf("unit_%s_%s_week%d", o.Prefix, o.Cohort, week)
}

func CanonicalLessonID(o Options, week, day int) string {
	return fmt.Sprintf("lesson_%s_%s_week%d_day%d", o.Prefix, o.Cohort, week, day)
}

func Generate(opts Options) *Fixture {
	o := opts.withDefaults()
	rng := rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15))
	doc := coursedoc.New()

	courseID := "course_" + o.Prefix
	course := &coursedoc.Course{ID: courseID, Name: fmt.Sprintf("Course %s (%s)", o.Prefix, o.Cohort)}
	doc.Courses[courseID] = course

	for week := 0; week <= o.Weeks; week++ {
		id := LegacyUnitID(o, week)
		name := fmt.Sprintf("Week %d", week)
		if week == 0 {
			name = "Orientation"
		}
		doc.Units[id] = &coursedoc.Unit{ID: id, Name: name, CourseID: courseID}
		course.Units = append(course.Units, coursedoc.UnitRef{ID: id, Name: name})
	}

	doc.Lessons["lesson_0"] = &coursedoc.Lesson{
		ID:      "lesson_0",
		UnitID:  LegacyUnitID(o, 0),
		Name:    "Welcome",
		Content: "Start here.",
	}
	for week := 1; week <= o.Weeks; week++ {
		for day := 1; day <= o.Days; day++ {
			id := fmt.Sprintf("lesson_%s_week%d_%s_day%d", o.Prefix, week, o.Cohort, day)
			doc.Lessons[id] = &coursedoc.Lesson{
				ID:      id,
				UnitID:  LegacyUnitID(o, week),
				Name:    fmt.Sprintf("Legacy day %d", day),
				Content: "Superseded content.",
			}
		}
	}

	rows := [][]string{lessoncsv.Columns()}
	for week := 1; week <= o.Weeks; week++ {
		topic := topics[rng.IntN(len(topics))]
		for day := 1; day <= o.Days; day++ {
			rows = append(rows, row(o, rng, week, day, topic))
		}
	}
	return &Fixture{Doc: doc, Rows: rows}
}

func row(o Options, rng *rand.Rand, week, day int, topic string) []string {
	quiz := ""
	if day == o.Days {
		quiz = fmt.Sprintf("quiz_%s_week%d", o.Prefix, week)
	}
	rec := []string{
		CanonicalLessonID(o, week, day),
		CanonicalUnitID(o, week),
		fmt.Sprintf("%s, day %d", topic, day),
		fmt.Sprintf("%s walkthrough", topic),
		fmt.Sprintf("https://video.example.com/%s/w%d/d%d", o.Prefix, week, day),
		quiz,
		fmt.Sprintf("Today we practise %s.\n\nRepeat the drill \"%s-%d\" three times.", topic, topic, day),
		fmt.Sprintf("Week %d: %s", week, topic),
	}
	for slot := 1; slot <= readinglinks.SlotCount; slot++ {
		if rng.IntN(3) == 0 {
			rec = append(rec, fmt.Sprintf("%s reading %d", topic, slot),
				fmt.Sprintf("https://read.example.com/%s/%d/%d/%d", o.Prefix, week, day, slot))
			continue
		}
		rec = append(rec, "", "")
	}
	return rec
}

// CSV renders the fixture rows.
func (f *Fixture) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(f.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
