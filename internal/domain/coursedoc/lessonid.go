package coursedoc

import (
	"regexp"
	"strconv"
)

// DefaultBootstrapLessonID is the day-zero lesson every course opens with.
const DefaultBootstrapLessonID = "lesson_0"

// DailyLessonPattern matches the day suffix of daily lesson ids (…day3, …_day_12).
// Legacy daily lessons are recognised by it and lessons are ordered by its number.
var DailyLessonPattern = regexp.MustCompile(`(?i)day_?(\d+)$`)

// DayNumber extracts the numeric day suffix of a lesson id.
func DayNumber(id string) (int, bool) {
	m := DailyLessonPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
