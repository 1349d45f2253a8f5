// Package normalizer applies the structural content rules and the annotation
// pass to content blocks.
package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/palemoky/morning-reading/internal/annotation"
	"github.com/palemoky/morning-reading/internal/classifier"
	"github.com/palemoky/morning-reading/internal/lesson"
	"github.com/palemoky/morning-reading/internal/report"
)

// Structural change kinds.
const (
	KindTaskSeparator         = "task_separator"
	KindPlaceholderAuthor     = "placeholder_author"
	KindOrphanDynasty         = "orphan_dynasty"
	KindPlaceholderAnnotation = "placeholder_annotation"
	KindNoTranslation         = "no_translation"
	KindTitlePrefix           = "title_prefix"
	KindTitleFormat           = "title_format"
	KindGenreTag              = "genre_tag"
	KindNonWrittenAnswer      = "non_written_answer"
	KindSectionTitleTask      = "section_title_task"
	KindRelocatedTask         = "relocated_task"
	KindExampleLine           = "example_line"
	KindDuplicateExample      = "duplicate_example"
	KindDuplicateHeading      = "duplicate_heading"
	KindPinyinRecomputed      = "pinyin_recomputed"
)

// TaskClassifier classifies task instructions.
type TaskClassifier interface {
	Classify(instruction string) classifier.TaskKind
}

// Fixer repairs one text/annotation pair.
type Fixer interface {
	Fix(text, annotation string) annotation.Result
}

// Transliterator produces canonical pinyin for recomputed fields.
type Transliterator interface {
	Transliterate(text string) string
}

// Outcome counts what a normalization call did.
type Outcome struct {
	Repaired   int
	Flagged    int
	Notices    int
	Structural int
}

// Modified reports whether the document was rewritten.
func (o Outcome) Modified() bool {
	return o.Repaired > 0 || o.Structural > 0
}

func (o *Outcome) Add(other Outcome) {
	o.Repaired += other.Repaired
	o.Flagged += other.Flagged
	o.Notices += other.Notices
	o.Structural += other.Structural
}

// Normalizer runs every content rule over a block. Apart from its
// configuration it holds no state; a single instance may serve many workers.
type Normalizer struct {
	rules     Rules
	tasks     TaskClassifier
	fixer     Fixer
	tr        Transliterator
	dropLines []*regexp.Regexp
	authors   []*regexp.Regexp
	// markers match a placeholder annotation with its leading separator
	markers []*regexp.Regexp
}

// New validates rules and wires the collaborators.
func New(rules Rules, tasks TaskClassifier, fixer Fixer, tr Transliterator) (*Normalizer, error) {
	if tasks == nil || fixer == nil || tr == nil {
		return nil, errors.New("normalizer: task classifier, fixer and transliterator are required")
	}
	if strings.TrimSpace(rules.ExamplePrefix) == "" {
		return nil, errors.New("normalizer: example prefix must not be empty")
	}

	n := &Normalizer{rules: rules, tasks: tasks, fixer: fixer, tr: tr}
	for _, p := range rules.DropLinePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("normalizer: invalid drop line pattern %q: %w", p, err)
		}
		n.dropLines = append(n.dropLines, re)
	}
	for _, p := range rules.PlaceholderAuthorPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("normalizer: invalid placeholder author pattern %q: %w", p, err)
		}
		n.authors = append(n.authors, re)
	}
	for _, m := range rules.PlaceholderAnnotations {
		if m == "" {
			continue
		}
		n.markers = append(n.markers, regexp.MustCompile(`(?:。*！！)?`+regexp.QuoteMeta(m)))
	}
	return n, nil
}

// NormalizeDocument normalizes every block of doc in order.
func (n *Normalizer) NormalizeDocument(doc *lesson.Document, sink report.Sink) Outcome {
	var total Outcome
	for i, day := range doc.Days {
		for j, b := range day.Content {
			total.Add(n.Normalize(b, lesson.BlockPath(i, j), sink))
		}
	}
	return total
}

// Normalize applies, in order: task separator cleanup, placeholder author
// and orphan dynasty cleanup, placeholder annotation and translation
// cleanup, title cleanup, non-written answer clearing, task relocation for
// sectioned blocks, duplicate heading removal and the annotation pass.
// Every change is reported to sink.
func (n *Normalizer) Normalize(b *lesson.ContentBlock, loc lesson.Path, sink report.Sink) Outcome {
	if sink == nil {
		sink = report.Discard
	}
	r := &run{n: n, b: b, loc: loc, sink: sink}

	r.cleanSeparators()
	r.clearPlaceholderAuthor()
	r.clearOrphanDynasty()
	r.clearPlaceholders()
	r.cleanTitle()
	r.enforceNonWritten()
	if b.Sectioned() {
		r.relocate()
	}
	r.dropDuplicateHeadings()
	r.annotate()

	return r.out
}

// run carries the state of one Normalize call.
type run struct {
	n    *Normalizer
	b    *lesson.ContentBlock
	loc  lesson.Path
	sink report.Sink
	out  Outcome
}

func (r *run) record(loc lesson.Path, field, before, after, kind string, status report.Status) {
	r.sink.Record(report.Change{
		Location: loc.String(),
		Field:    field,
		Before:   before,
		After:    after,
		Kind:     kind,
		Status:   status,
	})
	switch status {
	case report.StatusRepaired:
		r.out.Repaired++
	case report.StatusFlagged:
		r.out.Flagged++
	case report.StatusNotice:
		r.out.Notices++
	case report.StatusStructural:
		r.out.Structural++
	}
}

// set assigns a structural change to *dst and records it.
func (r *run) set(loc lesson.Path, field string, dst *string, value, kind string) {
	if *dst == value {
		return
	}
	r.record(loc, field, *dst, value, kind, report.StatusStructural)
	*dst = value
}

// rewrite updates a block field and, when present, its pinyin companion.
func (r *run) rewrite(field string, text, pinyin *string, value, kind string) {
	if *text == value {
		return
	}
	r.set(r.loc, field, text, value, kind)
	if r.b.Has(field + "Pinyin") {
		r.set(r.loc, field+"Pinyin", pinyin, r.n.tr.Transliterate(value), KindPinyinRecomputed)
	}
}

// retitle updates a title and, when present, its pinyin companion.
func (r *run) retitle(loc lesson.Path, title, titlePinyin *string, hasPinyin bool, value, kind string) {
	if *title == value {
		return
	}
	r.set(loc, "title", title, value, kind)
	if hasPinyin {
		r.set(loc, "titlePinyin", titlePinyin, r.n.tr.Transliterate(value), KindPinyinRecomputed)
	}
}

func (r *run) cleanSeparators() {
	if len(r.n.rules.TaskSeparators) == 0 {
		return
	}
	clean := func(s string) string {
		if !slices.ContainsFunc(r.n.rules.TaskSeparators, func(sep string) bool {
			return sep != "" && strings.Contains(s, sep)
		}) {
			return s
		}
		for _, sep := range r.n.rules.TaskSeparators {
			if sep != "" {
				s = strings.ReplaceAll(s, sep, "")
			}
		}
		return classifier.NormalizeText(s)
	}

	r.set(r.loc, "task", &r.b.Task, clean(r.b.Task), KindTaskSeparator)
}

func (r *run) clearPlaceholderAuthor() {
	author := strings.TrimSpace(r.b.Author)
	if author == "" {
		return
	}
	if !slices.Contains(r.n.rules.PlaceholderAuthors, author) &&
		!slices.ContainsFunc(r.n.authors, func(re *regexp.Regexp) bool { return re.MatchString(author) }) {
		return
	}
	r.rewrite("author", &r.b.Author, &r.b.AuthorPinyin, "", KindPlaceholderAuthor)
}

func (r *run) clearOrphanDynasty() {
	if !r.n.rules.ClearOrphanDynasty {
		return
	}
	if strings.TrimSpace(r.b.Author) != "" || strings.TrimSpace(r.b.Dynasty) == "" {
		return
	}
	r.set(r.loc, "dynasty", &r.b.Dynasty, "", KindOrphanDynasty)
	r.set(r.loc, "dynastyPinyin", &r.b.DynastyPinyin, "", KindOrphanDynasty)
}

func (r *run) clearPlaceholders() {
	if cleaned := stripMarkers(r.b.Annotation, r.n.markers); cleaned != r.b.Annotation {
		r.rewrite("annotation", &r.b.Annotation, &r.b.AnnotationPinyin, cleaned, KindPlaceholderAnnotation)
	}

	if slices.ContainsFunc(r.n.rules.NoTranslationMarkers, func(m string) bool {
		return m != "" && strings.Contains(r.b.Translation, m)
	}) {
		r.rewrite("translation", &r.b.Translation, &r.b.TranslationPinyin, "", KindNoTranslation)
	}
}

// stripMarkers removes every marker match from s, then a separator left at
// either end and a trailing full stop. Text without a marker is returned as is.
func stripMarkers(s string, markers []*regexp.Regexp) string {
	out := s
	for _, re := range markers {
		out = re.ReplaceAllString(out, "")
	}
	if out == s {
		return s
	}
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, "！！")
	out = strings.TrimSuffix(out, "！！")
	out = strings.TrimSuffix(out, "。")
	return out
}

func (r *run) cleanTitle() {
	hasPinyin := r.b.Has("titlePinyin")
	title := strings.TrimSpace(r.b.Title)
	for _, p := range r.n.rules.TitleCollapsePrefixes {
		if p != "" && strings.HasPrefix(title, p) {
			collapsed := strings.TrimRight(p, "：: ")
			r.retitle(r.loc, &r.b.Title, &r.b.TitlePinyin, hasPinyin, collapsed, KindTitlePrefix)
			break
		}
	}

	formatted := r.b.Title
	for _, rep := range r.n.rules.TitleReplacements {
		if rep.From != "" {
			formatted = strings.ReplaceAll(formatted, rep.From, rep.To)
		}
	}
	r.retitle(r.loc, &r.b.Title, &r.b.TitlePinyin, hasPinyin, formatted, KindTitleFormat)

	cleaned := classifier.RemoveParens(r.b.Title, func(inner string) bool {
		return slices.Contains(r.n.rules.GenreTags, inner)
	})
	if cleaned == strings.TrimSpace(r.b.Title) {
		return
	}
	r.retitle(r.loc, &r.b.Title, &r.b.TitlePinyin, hasPinyin, cleaned, KindGenreTag)
}

func (r *run) enforceNonWritten() {
	if r.n.tasks.Classify(r.b.Task) != classifier.TaskNonWritten {
		return
	}
	r.set(r.loc, "taskAnswer", &r.b.TaskAnswer, "", KindNonWrittenAnswer)
	r.set(r.loc, "taskAnswerPinyin", &r.b.TaskAnswerPinyin, "", KindNonWrittenAnswer)
}

func (r *run) dropDuplicateHeadings() {
	if len(r.n.dropLines) == 0 {
		return
	}
	if !r.b.Sectioned() {
		r.b.Content.Lines = r.dropLines(r.b.Content.Lines, func(k int) lesson.Path {
			return r.loc.Index("contentObject", k)
		})
		return
	}
	for k, s := range r.b.Content.Sections {
		sec := r.loc.Index("contentObject", k)
		s.Lines = r.dropLines(s.Lines, func(m int) lesson.Path {
			return sec.Index("content", m)
		})
	}
}

func (r *run) dropLines(lines []*lesson.Line, at func(i int) lesson.Path) []*lesson.Line {
	kept := make([]*lesson.Line, 0, len(lines))
	for i, l := range lines {
		text := strings.TrimSpace(l.Text)
		if slices.ContainsFunc(r.n.dropLines, func(re *regexp.Regexp) bool { return re.MatchString(text) }) {
			r.record(at(i), "text", l.Text, "", KindDuplicateHeading, report.StatusStructural)
			continue
		}
		kept = append(kept, l)
	}
	return kept
}
