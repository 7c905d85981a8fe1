package readinglinks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slots(pairs map[int]Link) []Link {
	out := make([]Link, SlotCount)
	for i, l := range pairs {
		out[i-1] = l
	}
	return out
}

func TestPrependPlacement(t *testing.T) {
	links := slots(map[int]Link{
		1: {Text: "Intro", URL: "https://a.example/1"},
		2: {Text: "Deep dive", URL: "https://a.example/2"},
		4: {Text: "Extra", URL: "https://a.example/4"},
		5: {Text: "Week recap", URL: "https://a.example/5"},
		7: {URL: "https://a.example/7"},
	})
	got := Prepend("Body text", links)
	want := "### Reading\n" +
		"- [Intro](https://a.example/1)\n" +
		"  - [Deep dive](https://a.example/2) | [Extra](https://a.example/4)\n" +
		"* [Week recap](https://a.example/5)\n" +
		"  * <https://a.example/7>\n" +
		"\n" +
		"Body text"
	assert.Equal(t, want, got)
}

func TestPrependSkipsEmptyGroups(t *testing.T) {
	links := slots(map[int]Link{
		5: {Text: "Only five", URL: "https://a.example/5"},
	})
	got := Prepend("Body", links)
	assert.Equal(t, "### Reading\n* [Only five](https://a.example/5)\n\nBody", got)
}

func TestURLOnlySlotRendersAutolink(t *testing.T) {
	got := Prepend("Body", slots(map[int]Link{1: {URL: " https://a.example/1 "}}))
	assert.Equal(t, "### Reading\n- <https://a.example/1>\n\nBody", got)

	links, body := Split(got)
	assert.Equal(t, Link{URL: "https://a.example/1"}, links[0])
	assert.Equal(t, "Body", body)
}

func TestMarkersCoverEveryGroup(t *testing.T) {
	groups := (SlotCount + GroupSize - 1) / GroupSize
	require.LessOrEqual(t, groups, len(markers))
}

func TestPrependNoLinksLeavesBody(t *testing.T) {
	assert.Equal(t, "Body", Prepend("Body", make([]Link, SlotCount)))
	assert.Equal(t, "Body", Prepend("Body", nil))
	assert.Equal(t, "", Prepend("", []Link{{Text: "  ", URL: " "}}))
}

func TestPrependEmptyBody(t *testing.T) {
	got := Prepend("", []Link{{Text: "A", URL: "u"}})
	assert.Equal(t, "### Reading\n- [A](u)\n", got)
}

func TestRenderIgnoresSlotsPastCount(t *testing.T) {
	links := make([]Link, SlotCount+2)
	links[SlotCount] = Link{Text: "overflow", URL: "x"}
	assert.Nil(t, Render(links))
}

func TestSplitRoundTrip(t *testing.T) {
	links := slots(map[int]Link{
		1: {Text: "Intro", URL: "https://a.example/1"},
		2: {Text: "Two", URL: "https://a.example/2"},
		3: {Text: "Three only text"},
		6: {URL: "https://a.example/6"},
	})
	for _, body := range []string{"Body\n\nwith paragraphs", "", "\nleading newline"} {
		gotLinks, gotBody := Split(Prepend(body, links))
		require.Len(t, gotLinks, SlotCount)
		assert.Equal(t, links, gotLinks)
		assert.Equal(t, body, gotBody)
	}
}

func TestSplitSecondaryOnlyGroups(t *testing.T) {
	links := slots(map[int]Link{
		2: {Text: "Two", URL: "u2"},
		5: {Text: "Five", URL: "u5"},
		6: {Text: "Six", URL: "u6"},
	})
	gotLinks, gotBody := Split(Prepend("B", links))
	assert.Equal(t, links, gotLinks)
	assert.Equal(t, "B", gotBody)
}

func TestSplitKeepsGroupOfSecondaryLinks(t *testing.T) {
	cases := []map[int]Link{
		{1: {Text: "One", URL: "https://a/1"}, 6: {Text: "Six", URL: "https://a/6"}},
		{5: {Text: "Five", URL: "https://a/5"}},
		{6: {Text: "Six", URL: "https://a/6"}},
		{1: {Text: "One", URL: "https://a/1"}, 5: {Text: "Five", URL: "https://a/5"}},
		{2: {Text: "Two", URL: "https://a/2"}, 6: {Text: "Six", URL: "https://a/6"}, 7: {URL: "https://a/7"}},
	}
	for _, pairs := range cases {
		links := slots(pairs)
		gotLinks, gotBody := Split(Prepend("Body", links))
		assert.Equal(t, links, gotLinks)
		assert.Equal(t, "Body", gotBody)
	}
}

func TestSplitPacksSubBulletLinks(t *testing.T) {
	links := slots(map[int]Link{3: {Text: "Three", URL: "https://a/3"}, 8: {Text: "Eight"}})
	gotLinks, _ := Split(Prepend("Body", links))
	assert.Equal(t, slots(map[int]Link{2: {Text: "Three", URL: "https://a/3"}, 6: {Text: "Eight"}}), gotLinks)
	assert.Equal(t, Prepend("Body", links), Prepend("Body", gotLinks))
}

func TestSplitWithoutSection(t *testing.T) {
	links, body := Split("Plain lesson body")
	assert.Nil(t, links)
	assert.Equal(t, "Plain lesson body", body)
}
