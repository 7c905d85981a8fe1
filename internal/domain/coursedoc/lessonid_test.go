package coursedoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDayNumber(t *testing.T) {
	n, ok := DayNumber("lesson_qlzx_2728_week1_Day_12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	n, ok = DayNumber("w1_day3")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = DayNumber(DefaultBootstrapLessonID)
	assert.False(t, ok)
	_, ok = DayNumber("lesson_day_intro")
	assert.False(t, ok)
}

func TestDailyLessonPatternMatchesLegacyIDs(t *testing.T) {
	for _, id := range []string{"lesson_week1_day1", "x_Day_4", "DAY9"} {
		assert.True(t, DailyLessonPattern.MatchString(id), id)
	}
	for _, id := range []string{"lesson_0", "glossary", "day1_intro"} {
		assert.False(t, DailyLessonPattern.MatchString(id), id)
	}
}
