// Package readinglinks renders the "Reading" section that lesson bodies carry at
// their top, built from the numbered link columns of the lesson spreadsheet.
//
// Slots are grouped by GroupSize. The first slot of a group is a top-level
// bullet; the remaining slots of the group share one indented sub-bullet with
// the links separated by " | ". With SlotCount 8 that is: 1 bullet, 2-4 sub,
// 5 bullet, 6-8 sub. Each group uses its own bullet marker ("-", then "*"), so
// a rendered line always tells which group it came from.
package readinglinks

import (
	"regexp"
	"strings"
)

const (
	// SlotCount is the number of link_<i>_text / link_<i>_url column pairs.
	SlotCount = 8
	// GroupSize is the number of slots rendered under one top-level bullet.
	GroupSize = 4

	Header = "### Reading"

	separator = " | "
)

// markers holds one bullet character per group.
var markers = []string{"-", "*", "+"}

func primaryPrefix(group int) string   { return markers[group] + " " }
func secondaryPrefix(group int) string { return "  " + markers[group] + " " }

type Link struct {
	Text string
	URL  string
}

func (l Link) Empty() bool {
	return strings.TrimSpace(l.Text) == "" && strings.TrimSpace(l.URL) == ""
}

func (l Link) markdown() string {
	text, url := strings.TrimSpace(l.Text), strings.TrimSpace(l.URL)
	switch {
	case text != "" && url != "":
		return "[" + text + "](" + url + ")"
	case url != "":
		return "<" + url + ">"
	default:
		return text
	}
}

// Render returns the section lines for links, or nil when every slot is empty.
// Slots past SlotCount are ignored.
func Render(links []Link) []string {
	if len(links) > SlotCount {
		links = links[:SlotCount]
	}
	var lines []string
	for start := 0; start < len(links); start += GroupSize {
		end := start + GroupSize
		if end > len(links) {
			end = len(links)
		}
		g := start / GroupSize
		group := links[start:end]
		if !group[0].Empty() {
			lines = append(lines, primaryPrefix(g)+group[0].markdown())
		}
		var rest []string
		for _, l := range group[1:] {
			if !l.Empty() {
				rest = append(rest, l.markdown())
			}
		}
		if len(rest) > 0 {
			lines = append(lines, secondaryPrefix(g)+strings.Join(rest, separator))
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return append([]string{Header}, lines...)
}

// Prepend puts the reading section in front of body. With no populated slot the
// body is returned unchanged.
func Prepend(body string, links []Link) string {
	lines := Render(links)
	if lines == nil {
		return body
	}
	section := strings.Join(lines, "\n") + "\n"
	if body == "" {
		return section
	}
	return section + "\n" + body
}

var (
	linkRe     = regexp.MustCompile(`^\[(.*)\]\((.*)\)$`)
	autolinkRe = regexp.MustCompile(`^<(.*)>$`)
)

// Split is the inverse of Prepend. It returns SlotCount slots and the body that
// follows the section, or nil and the unchanged body when there is no leading
// reading section. Every link comes back in its own group and, for a group's
// first slot, in its own position. Sub-bullet links are packed into the first
// slots after it, so empty slots between populated ones do not survive.
func Split(body string) ([]Link, string) {
	if !strings.HasPrefix(body, Header+"\n") {
		return nil, body
	}
	lines := strings.Split(strings.TrimPrefix(body, Header+"\n"), "\n")

	slots := make([]Link, SlotCount)
	consumed := 0
	for _, line := range lines {
		g, secondary, rest, ok := classify(line)
		if !ok {
			tail := strings.Join(lines[consumed:], "\n")
			if line == "" {
				tail = strings.Join(lines[consumed+1:], "\n")
			}
			return slots, tail
		}
		if g*GroupSize >= SlotCount {
			return nil, body
		}
		if secondary {
			for i, part := range strings.Split(rest, separator) {
				if slot := g*GroupSize + 1 + i; i < GroupSize-1 && slot < SlotCount {
					slots[slot] = parseLink(part)
				}
			}
		} else {
			slots[g*GroupSize] = parseLink(rest)
		}
		consumed++
	}
	return slots, ""
}

// classify reports the group and kind of a section line and strips its prefix.
func classify(line string) (group int, secondary bool, rest string, ok bool) {
	for g := range markers {
		if p := secondaryPrefix(g); strings.HasPrefix(line, p) {
			return g, true, strings.TrimPrefix(line, p), true
		}
		if p := primaryPrefix(g); strings.HasPrefix(line, p) {
			return g, false, strings.TrimPrefix(line, p), true
		}
	}
	return 0, false, "", false
}

func parseLink(s string) Link {
	s = strings.TrimSpace(s)
	if m := linkRe.FindStringSubmatch(s); m != nil {
		return Link{Text: m[1], URL: m[2]}
	}
	if m := autolinkRe.FindStringSubmatch(s); m != nil {
		return Link{URL: m[1]}
	}
	return Link{Text: s}
}
