package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChanges() []Change {
	return []Change{
		{Location: "day[0]/content[0]", Field: "titlePinyin", Before: "chūn", After: "chūn fēng", Kind: "prefix_of", Status: StatusRepaired},
		{Location: "day[0]/content[1]", Field: "pinyin", Before: "xià yǔ", After: "xià yǔ", Kind: "unresolvable", Status: StatusFlagged},
		{Location: "day[0]/content[1]", Field: "pinyin", Before: "yí gè", After: "yí gè", Kind: "tone_variant", Status: StatusNotice},
		{Location: "day[0]/content[2]", Field: "taskAnswer", Before: "我已经会背了", Kind: "non_written_answer", Status: StatusStructural},
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector("grade1/week1.txt")
	assert.False(t, c.Modified())

	for _, ch := range sampleChanges()[1:3] {
		c.Record(ch)
	}
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Modified(), "flags and notices do not rewrite the file")

	c.Record(sampleChanges()[0])
	assert.True(t, c.Modified())

	changes := c.Changes()
	require.Len(t, changes, 3)
	for _, ch := range changes {
		assert.Equal(t, "grade1/week1.txt", ch.File)
	}

	// the returned slice is a copy
	changes[0].Field = "mutated"
	assert.NotEqual(t, "mutated", c.Changes()[0].Field)
}

func TestCollectorKeepsExplicitFile(t *testing.T) {
	c := NewCollector("a.txt")
	c.Record(Change{File: "b.txt"})
	assert.Equal(t, "b.txt", c.Changes()[0].File)
}

func TestSinkFunc(t *testing.T) {
	var got []Change
	var sink Sink = SinkFunc(func(c Change) { got = append(got, c) })
	sink.Record(Change{Field: "title"})
	Discard.Record(Change{Field: "ignored"})

	require.Len(t, got, 1)
	assert.Equal(t, "title", got[0].Field)
}

func TestSummary(t *testing.T) {
	var s Summary
	s.AddFile(sampleChanges(), true)
	s.AddFile(nil, false)
	s.AddFailure(Failure{File: "broken.txt", Code: "MALFORMED_INPUT", Error: "root must be an array of day records"})

	assert.Equal(t, 2, s.FilesProcessed)
	assert.Equal(t, 1, s.FilesChanged)
	assert.Equal(t, 1, s.FilesFailed)
	assert.Equal(t, 1, s.Repaired)
	assert.Equal(t, 1, s.Flagged)
	assert.Equal(t, 1, s.Notices)
	assert.Equal(t, 1, s.Structural)
	assert.Len(t, s.Filter(StatusFlagged, StatusNotice), 2)
	assert.Empty(t, (&Summary{}).Filter(StatusRepaired))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "repaired", StatusRepaired.String())
	assert.Equal(t, "flagged", StatusFlagged.String())
	assert.Equal(t, "notice", StatusNotice.String())
	assert.Equal(t, "structural", StatusStructural.String())
	assert.Equal(t, "unknown", Status(42).String())
}

func TestParseStatus(t *testing.T) {
	for _, st := range Statuses {
		got, err := ParseStatus(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	_, err := ParseStatus("unknown")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	f, err = ParseFormat("markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("html")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	s := &Summary{DryRun: true}
	changes := sampleChanges()
	for i := range changes {
		changes[i].File = "week1.txt"
	}
	s.AddFile(changes, true)
	s.AddFailure(Failure{File: "broken.txt", Code: "MALFORMED_INPUT", Error: "bad"})

	for _, format := range []Format{FormatTable, FormatMarkdown} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, s, format))

			out := buf.String()
			assert.Contains(t, out, "fields repaired")
			assert.Contains(t, out, "titlePinyin")
			assert.Contains(t, out, "unresolvable")
			assert.Contains(t, out, "broken.txt")
			assert.Contains(t, out, "dry run")
			if format == FormatMarkdown {
				assert.Contains(t, out, "## Changes")
				assert.Contains(t, out, "|")
			}
		})
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &Summary{}, FormatTable))
	assert.Contains(t, buf.String(), "files processed")
	assert.NotContains(t, buf.String(), "Location")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "春风", truncate("春风", 5))
	assert.Equal(t, "春…", truncate("春风又绿", 1))
	assert.Equal(t, 41, len([]rune(truncate(strings.Repeat("字", 50), maxCell))))
}
