package coursedoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedDocument is returned for snapshots that do not parse or lack one of
// the top-level collections.
var ErrMalformedDocument = errors.New("malformed course document")

const (
	keyCourses = "courses"
	keyUnits   = "units"
	keyLessons = "lessons"
)

// Extra holds JSON members this package does not model. They are written back
// unchanged so a load/save cycle never loses data.
type Extra map[string]json.RawMessage

var (
	courseKeys  = []string{"id", "name", "units"}
	unitRefKeys = []string{"id", "name", "lessonCount"}
	unitKeys    = []string{"id", "name", "courseId", "lessons"}
	lessonKeys  = []string{"id", "unitId", "name", "content", "videoTitle", "videoUrl", "quizId"}
)

// Decode parses a snapshot. Map keys are authoritative: an entry whose id field is
// empty takes its key as id, and null entries are dropped.
func Decode(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	for _, key := range []string{keyCourses, keyUnits, keyLessons} {
		if _, ok := top[key]; !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrMalformedDocument, key)
		}
	}

	doc := New()
	if err := decodeCollection(top[keyCourses], &doc.Courses); err != nil {
		return nil, fmt.Errorf("%w: courses: %v", ErrMalformedDocument, err)
	}
	if err := decodeCollection(top[keyUnits], &doc.Units); err != nil {
		return nil, fmt.Errorf("%w: units: %v", ErrMalformedDocument, err)
	}
	if err := decodeCollection(top[keyLessons], &doc.Lessons); err != nil {
		return nil, fmt.Errorf("%w: lessons: %v", ErrMalformedDocument, err)
	}
	for id, c := range doc.Courses {
		if c.ID == "" {
			c.ID = id
		}
	}
	for id, u := range doc.Units {
		if u.ID == "" {
			u.ID = id
		}
	}
	for id, l := range doc.Lessons {
		if l.ID == "" {
			l.ID = id
		}
	}

	delete(top, keyCourses)
	delete(top, keyUnits)
	delete(top, keyLessons)
	if len(top) > 0 {
		doc.Extra = top
	}
	return doc, nil
}

func decodeCollection[T any](raw json.RawMessage, dst *map[string]*T) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var m map[string]*T
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	for k, v := range m {
		if v == nil {
			delete(m, k)
		}
	}
	*dst = m
	return nil
}

// Encode renders the document pretty-printed with two-space indentation and a
// trailing newline. HTML characters are not escaped.
func Encode(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrMalformedDocument)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	top := map[string]any{
		keyCourses: nonNilMap(d.Courses),
		keyUnits:   nonNilMap(d.Units),
		keyLessons: nonNilMap(d.Lessons),
	}
	for k, v := range d.Extra {
		if _, ok := top[k]; !ok {
			top[k] = v
		}
	}
	return marshal(top)
}

func nonNilMap[T any](m map[string]*T) map[string]*T {
	if m == nil {
		return map[string]*T{}
	}
	return m
}

func (c *Course) UnmarshalJSON(data []byte) error {
	type alias Course
	return unmarshalWithExtra(data, (*alias)(c), &c.Extra, courseKeys)
}

func (c Course) MarshalJSON() ([]byte, error) {
	type alias Course
	return marshalWithExtra(alias(c), c.Extra)
}

func (r *UnitRef) UnmarshalJSON(data []byte) error {
	type alias UnitRef
	return unmarshalWithExtra(data, (*alias)(r), &r.Extra, unitRefKeys)
}

func (r UnitRef) MarshalJSON() ([]byte, error) {
	type alias UnitRef
	return marshalWithExtra(alias(r), r.Extra)
}

func (u *Unit) UnmarshalJSON(data []byte) error {
	type alias Unit
	return unmarshalWithExtra(data, (*alias)(u), &u.Extra, unitKeys)
}

func (u Unit) MarshalJSON() ([]byte, error) {
	type alias Unit
	return marshalWithExtra(alias(u), u.Extra)
}

func (l *Lesson) UnmarshalJSON(data []byte) error {
	type alias Lesson
	return unmarshalWithExtra(data, (*alias)(l), &l.Extra, lessonKeys)
}

func (l Lesson) MarshalJSON() ([]byte, error) {
	type alias Lesson
	return marshalWithExtra(alias(l), l.Extra)
}

func unmarshalWithExtra(data []byte, v any, extra *Extra, known []string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		*extra = nil
		return nil
	}
	*extra = raw
	return nil
}

func marshalWithExtra(v any, extra Extra) ([]byte, error) {
	b, err := marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = val
		}
	}
	return marshal(merged)
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
