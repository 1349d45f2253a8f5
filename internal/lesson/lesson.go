// Package lesson is the typed tree of a morning-reading corpus file.
//
// A file holds a JSON array of day records. Each record carries content blocks
// whose contentObject is either a flat list of lines or, for the
// daily_accumulation type, a list of titled sections. Decoding keeps the key
// order and every unknown key of each object so that Encode reproduces the
// input apart from the fields that were actually changed.
package lesson

// TypeDailyAccumulation selects the sectioned contentObject shape.
const TypeDailyAccumulation = "daily_accumulation"

// Document is the decoded content of one corpus file.
type Document struct {
	Days []*DayRecord
}

// DayRecord is one day of reading content.
type DayRecord struct {
	Week    int
	Day     int
	Theme   string
	Content []*ContentBlock

	raw *rawObject
}

// Blocks returns the number of content blocks in the document.
func (d *Document) Blocks() int {
	n := 0
	for _, day := range d.Days {
		n += len(day.Content)
	}
	return n
}

// ContentBlock is one article, poem or exercise of a day.
type ContentBlock struct {
	Title              string
	TitlePinyin        string
	Type               string
	Author             string
	AuthorPinyin       string
	Dynasty            string
	DynastyPinyin      string
	Annotation         string
	AnnotationPinyin   string
	Translation        string
	TranslationPinyin  string
	Appreciation       string
	AppreciationPinyin string
	Task               string
	TaskPinyin         string
	TaskAnswer         string
	TaskAnswerPinyin   string

	Content ContentObject

	raw  *rawObject
	orig map[string]string
}

// Has reports whether key was present in the decoded block. Pinyin companion
// fields are only maintained when their key exists.
func (b *ContentBlock) Has(key string) bool {
	return b.raw.has(key)
}

// Sectioned reports whether the block uses the sectioned contentObject shape.
func (b *ContentBlock) Sectioned() bool {
	return b.Content.Shape == ShapeSectioned
}

// Pair is a text field and its pinyin companion.
type Pair struct {
	TextKey   string
	PinyinKey string
	Text      *string
	Pinyin    *string
}

// Pairs lists the text/pinyin companion fields of the block in the order the
// annotation pass visits them.
func (b *ContentBlock) Pairs() []Pair {
	return []Pair{
		{"title", "titlePinyin", &b.Title, &b.TitlePinyin},
		{"author", "authorPinyin", &b.Author, &b.AuthorPinyin},
		{"dynasty", "dynastyPinyin", &b.Dynasty, &b.DynastyPinyin},
		{"annotation", "annotationPinyin", &b.Annotation, &b.AnnotationPinyin},
		{"translation", "translationPinyin", &b.Translation, &b.TranslationPinyin},
		{"appreciation", "appreciationPinyin", &b.Appreciation, &b.AppreciationPinyin},
		{"task", "taskPinyin", &b.Task, &b.TaskPinyin},
		{"taskAnswer", "taskAnswerPinyin", &b.TaskAnswer, &b.TaskAnswerPinyin},
	}
}

// Shape tags the variant held by a ContentObject.
type Shape int

const (
	ShapeFlat Shape = iota
	ShapeSectioned
)

func (s Shape) String() string {
	if s == ShapeSectioned {
		return "sectioned"
	}
	return "flat"
}

// ContentObject holds Lines for the flat shape or Sections for the sectioned one.
type ContentObject struct {
	Shape    Shape
	Lines    []*Line
	Sections []*Section
}

// Section is a titled group of lines inside a daily_accumulation block.
type Section struct {
	Title       string
	TitlePinyin string
	Lines       []*Line

	raw  *rawObject
	orig map[string]string
}

// Has reports whether key was present in the decoded section.
func (s *Section) Has(key string) bool {
	return s.raw.has(key)
}

// LinesHavePinyin reports whether lines appended to the section should carry
// a pinyin key: the existing lines do, or the section is empty and withTitle
// says the surrounding block is annotated.
func (s *Section) LinesHavePinyin(withTitle bool) bool {
	if len(s.Lines) == 0 {
		return withTitle
	}
	for _, l := range s.Lines {
		if l.HasPinyin() {
			return true
		}
	}
	return false
}

// Line is one text/pinyin row.
type Line struct {
	Text   string
	Pinyin string

	raw  *rawObject
	orig map[string]string
}

// NewLine builds a line for insertion. withPinyin controls whether the encoded
// object carries a pinyin key.
func NewLine(text, pinyin string, withPinyin bool) *Line {
	l := &Line{Text: text, Pinyin: pinyin, raw: newRawObject()}
	l.raw.set("text", nil)
	if withPinyin {
		l.raw.set("pinyin", nil)
	}
	return l
}

// HasPinyin reports whether the line carries a pinyin key.
func (l *Line) HasPinyin() bool {
	return l.raw.has("pinyin")
}
