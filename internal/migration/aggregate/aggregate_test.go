package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/coursekit/internal/domain/coursedoc"
)

func ids(ls []*coursedoc.Lesson) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func TestSortOrder(t *testing.T) {
	ls := []*coursedoc.Lesson{
		{ID: "w1_day3"}, {ID: "glossary"}, {ID: "w1_day1"}, {ID: "lesson_0"}, {ID: "w1_day2"}, {ID: "w1_day10"},
	}
	Sort(ls, "lesson_0")
	assert.Equal(t, []string{"lesson_0", "w1_day1", "w1_day2", "w1_day3", "w1_day10", "glossary"}, ids(ls))
}

func doc() *coursedoc.Document {
	d := coursedoc.New()
	d.Units["u1"] = &coursedoc.Unit{ID: "u1", Name: "Week 1"}
	d.Units["u0"] = &coursedoc.Unit{ID: "u0", Name: "Orientation"}
	d.Units["u2"] = &coursedoc.Unit{ID: "u2", Name: "Week 2"}
	d.Courses["c"] = &coursedoc.Course{ID: "c", Units: []coursedoc.UnitRef{{ID: "u0"}, {ID: "u1", LessonCount: 99}, {ID: "u2"}}}
	return d
}

func TestRecomputeSummariesAndCounts(t *testing.T) {
	d := doc()
	d.Lessons["lesson_0"] = &coursedoc.Lesson{ID: "lesson_0", UnitID: "u1", Name: "Welcome"}
	d.Lessons["u1_day3"] = &coursedoc.Lesson{ID: "u1_day3", UnitID: "u1", Name: "Three", QuizID: "q3"}
	d.Lessons["u1_day1"] = &coursedoc.Lesson{ID: "u1_day1", UnitID: "u1", Name: "One"}
	d.Lessons["u1_day2"] = &coursedoc.Lesson{ID: "u1_day2", UnitID: "u1", Name: "Two"}

	st := Recompute(d, Options{})

	assert.Equal(t, []coursedoc.LessonSummary{
		{ID: "lesson_0", Name: "Welcome"},
		{ID: "u1_day1", Name: "One"},
		{ID: "u1_day2", Name: "Two"},
		{ID: "u1_day3", Name: DefaultReviewLabel, HasQuiz: true},
	}, d.Units["u1"].Lessons)
	assert.Equal(t, DefaultReviewLabel, d.Lessons["u1_day3"].Name)

	require.NotNil(t, d.Units["u2"].Lessons)
	assert.Empty(t, d.Units["u2"].Lessons)

	refs := d.Courses["c"].Units
	assert.Equal(t, 0, refs[0].LessonCount)
	assert.Equal(t, 4, refs[1].LessonCount)
	assert.Equal(t, 0, refs[2].LessonCount)

	assert.Equal(t, Stats{Units: 3, EmptyUnits: 2, UnitRefs: 3, Renamed: 1}, st)
}

func TestRecomputeRenameRule(t *testing.T) {
	d := doc()
	d.Lessons["lesson_0"] = &coursedoc.Lesson{ID: "lesson_0", UnitID: "u1", Name: "Welcome"}
	d.Lessons["u1_day1"] = &coursedoc.Lesson{ID: "u1_day1", UnitID: "u1", Name: "One"}
	Recompute(d, Options{ReviewLabel: "Review"})

	assert.Equal(t, "Welcome", d.Lessons["lesson_0"].Name)
	assert.Equal(t, "Review", d.Lessons["u1_day1"].Name)
}

func TestRecomputeBootstrapOnlyUnitKeepsName(t *testing.T) {
	d := doc()
	d.Lessons["lesson_0"] = &coursedoc.Lesson{ID: "lesson_0", UnitID: "u0", Name: "Welcome"}
	st := Recompute(d, Options{})

	assert.Equal(t, "Welcome", d.Lessons["lesson_0"].Name)
	assert.Equal(t, 0, st.Renamed)
	assert.Equal(t, []coursedoc.LessonSummary{{ID: "lesson_0", Name: "Welcome"}}, d.Units["u0"].Lessons)
}

func TestRecomputeSingleRegularLessonIsRenamed(t *testing.T) {
	d := doc()
	d.Lessons["u2_day1"] = &coursedoc.Lesson{ID: "u2_day1", UnitID: "u2", Name: "Only"}
	Recompute(d, Options{})
	assert.Equal(t, DefaultReviewLabel, d.Lessons["u2_day1"].Name)
}
