package coursedoc

// Document is the persisted course snapshot: three flat maps keyed by id.
// Course.Units and Unit.Lessons are denormalized copies kept in sync by the
// migration packages.
type Document struct {
	Courses map[string]*Course
	Units   map[string]*Unit
	Lessons map[string]*Lesson
	Extra   Extra
}

type Course struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Units []UnitRef `json:"units,omitempty"`
	Extra Extra     `json:"-"`
}

// UnitRef is the unit summary embedded in a Course.
type UnitRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LessonCount int    `json:"lessonCount"`
	Extra       Extra  `json:"-"`
}

type Unit struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	CourseID string          `json:"courseId,omitempty"`
	Lessons  []LessonSummary `json:"lessons"`
	Extra    Extra           `json:"-"`
}

// LessonSummary is derived from the Lesson map; it never carries extra members.
type LessonSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	HasQuiz bool   `json:"hasQuiz"`
}

type Lesson struct {
	ID         string `json:"id"`
	UnitID     string `json:"unitId"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	VideoTitle string `json:"videoTitle,omitempty"`
	VideoURL   string `json:"videoUrl,omitempty"`
	QuizID     string `json:"quizId,omitempty"`
	Extra      Extra  `json:"-"`
}

func (l *Lesson) HasQuiz() bool {
	return l != nil && l.QuizID != ""
}

// Summary is the denormalized view stored on the owning Unit.
func (l *Lesson) Summary() LessonSummary {
	return LessonSummary{ID: l.ID, Name: l.Name, HasQuiz: l.HasQuiz()}
}

func New() *Document {
	return &Document{
		Courses: map[string]*Course{},
		Units:   map[string]*Unit{},
		Lessons: map[string]*Lesson{},
	}
}
