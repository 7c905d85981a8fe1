package csvexport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
	"github.com/yungbote/coursekit/internal/migration/csvrows"
	"github.com/yungbote/coursekit/internal/migration/lessoncsv"
	"github.com/yungbote/coursekit/internal/migration/mockdata"
	"github.com/yungbote/coursekit/internal/migration/readinglinks"
)

func sampleDoc() *coursedoc.Document {
	d := coursedoc.New()
	d.Units["u0"] = &coursedoc.Unit{ID: "u0", Name: "Orientation"}
	d.Units["u1"] = &coursedoc.Unit{ID: "u1", Name: "Week 1"}
	d.Units["u9"] = &coursedoc.Unit{ID: "u9", Name: "Unreferenced"}
	d.Courses["c"] = &coursedoc.Course{ID: "c", Units: []coursedoc.UnitRef{{ID: "u1"}, {ID: "u0"}}}
	d.Lessons["lesson_0"] = &coursedoc.Lesson{ID: "lesson_0", UnitID: "u0", Name: "Welcome", Content: "Start, here."}
	d.Lessons["u1_day2"] = &coursedoc.Lesson{ID: "u1_day2", UnitID: "u1", Name: "Two", QuizID: "q"}
	d.Lessons["u1_day1"] = &coursedoc.Lesson{
		ID: "u1_day1", UnitID: "u1", Name: "One", VideoTitle: "V", VideoURL: "https://v",
		Content: readinglinks.Prepend("Body\nwith \"quotes\"", []readinglinks.Link{{Text: "A", URL: "https://a"}, {Text: "B", URL: "https://b"}}),
	}
	d.Lessons["stray"] = &coursedoc.Lesson{ID: "stray", UnitID: "u_gone", Name: "Stray"}
	return d
}

func TestUnitOrder(t *testing.T) {
	assert.Equal(t, []string{"u1", "u0", "u9", "u_gone"}, UnitOrder(sampleDoc()))
}

func TestWriteRows(t *testing.T) {
	var buf bytes.Buffer
	n, err := Write(&buf, sampleDoc(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	res, err := lessoncsv.Load(buf.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1_day1", "u1_day2", "lesson_0", "stray"}, res.Order)
	assert.Equal(t, map[string]string{"u1": "Week 1", "u0": "Orientation"}, res.UnitNames)
}

func TestWriteRoundTripsLessonBodies(t *testing.T) {
	src := sampleDoc()
	var buf bytes.Buffer
	_, err := Write(&buf, src, Options{})
	require.NoError(t, err)

	res, err := lessoncsv.Load(buf.String())
	require.NoError(t, err)
	for id, l := range src.Lessons {
		require.Contains(t, res.Lessons, id)
		got := res.Lessons[id]
		assert.Equal(t, l.Content, got.Content, id)
		assert.Equal(t, l.QuizID, got.QuizID, id)
		assert.Equal(t, l.VideoURL, got.VideoURL, id)
	}
}

func TestWriteRoundTripsGeneratedLessons(t *testing.T) {
	f := mockdata.Generate(mockdata.Options{Weeks: 2, Days: 5, Seed: 3})
	payload, err := f.CSV()
	require.NoError(t, err)
	first, err := lessoncsv.Load(string(payload))
	require.NoError(t, err)

	d := coursedoc.New()
	d.Lessons = first.Lessons
	var buf bytes.Buffer
	_, err = Write(&buf, d, Options{})
	require.NoError(t, err)

	second, err := lessoncsv.Load(buf.String())
	require.NoError(t, err)
	require.Len(t, second.Lessons, len(first.Lessons))
	for id, l := range first.Lessons {
		assert.Equal(t, l.Content, second.Lessons[id].Content, id)
	}
}

func TestWriteKeepsLinkColumns(t *testing.T) {
	links := make([]readinglinks.Link, readinglinks.SlotCount)
	links[0] = readinglinks.Link{Text: "One", URL: "https://a/1"}
	links[5] = readinglinks.Link{Text: "Six", URL: "https://a/6"}
	d := coursedoc.New()
	d.Units["u1"] = &coursedoc.Unit{ID: "u1", Name: "Week 1"}
	d.Lessons["u1_day1"] = &coursedoc.Lesson{ID: "u1_day1", UnitID: "u1", Name: "One", Content: readinglinks.Prepend("Body", links)}

	var buf bytes.Buffer
	_, err := Write(&buf, d, Options{})
	require.NoError(t, err)

	recs := csvrows.NewTable(csvrows.Parse(buf.String())).Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "One", recs[0].Get("link_1_text"))
	assert.Equal(t, "", recs[0].Get("link_2_text"))
	assert.Equal(t, "", recs[0].Get("link_2_url"))
	assert.Equal(t, "Six", recs[0].Get("link_6_text"))
	assert.Equal(t, "https://a/6", recs[0].Get("link_6_url"))
	assert.Equal(t, "Body", recs[0].Get("content"))
}
