package normalizer

import (
	"slices"
	"strings"

	"github.com/palemoky/morning-reading/internal/classifier"
	"github.com/palemoky/morning-reading/internal/lesson"
	"github.com/palemoky/morning-reading/internal/report"
)

// relocate moves a sentence-writing task of a daily_accumulation block into
// the first section that has no exemplar sentence: the instruction goes into
// the section title, the model answer becomes an example line and the task
// fields are cleared. Sections after it see the cleared task.
func (r *run) relocate() {
	for k, s := range r.b.Content.Sections {
		loc := r.loc.Index("contentObject", k)

		if r.isWordList(s.Title) {
			r.stripTaskParens(loc, s)
			continue
		}

		if r.n.tasks.Classify(r.b.Task) == classifier.TaskSentenceWriting {
			if r.hasExemplar(s.Lines) {
				r.stripTaskParens(loc, s)
			} else {
				r.moveTask(loc, s)
			}
		}

		r.dedupeExamples(loc, s)
	}
}

func (r *run) isWordList(title string) bool {
	return slices.Contains(r.n.rules.WordListTitles, classifier.StripAllParens(title))
}

func (r *run) isExampleLine(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), r.n.rules.ExamplePrefix)
}

// hasExemplar reports whether some line already reads as a model sentence:
// it holds terminal punctuation, is not an instruction line and is not an
// example line.
func (r *run) hasExemplar(lines []*lesson.Line) bool {
	return slices.ContainsFunc(lines, func(l *lesson.Line) bool {
		text := strings.TrimSpace(l.Text)
		if text == "" || r.isExampleLine(text) {
			return false
		}
		if !strings.ContainsAny(text, r.n.rules.TerminalPunctuation) {
			return false
		}
		return !slices.ContainsFunc(r.n.rules.NonExamplePrefixes, func(p string) bool {
			return p != "" && strings.HasPrefix(text, p)
		})
	})
}

// stripTaskParens removes sentence-writing instructions from a section title,
// e.g. "好句（照样子写（说）一句）" -> "好句".
func (r *run) stripTaskParens(loc lesson.Path, s *lesson.Section) {
	cleaned := classifier.RemoveParens(s.Title, func(inner string) bool {
		return r.n.tasks.Classify(inner) == classifier.TaskSentenceWriting
	})
	if cleaned == strings.TrimSpace(s.Title) {
		return
	}
	r.retitle(loc, &s.Title, &s.TitlePinyin, s.Has("titlePinyin"), cleaned, KindSectionTitleTask)
}

func (r *run) moveTask(loc lesson.Path, s *lesson.Section) {
	instruction := classifier.TrimTerminal(r.b.Task, r.n.rules.TerminalPunctuation)
	if suffix := "（" + instruction + "）"; !strings.Contains(s.Title, suffix) {
		r.retitle(loc, &s.Title, &s.TitlePinyin, s.Has("titlePinyin"), strings.TrimSpace(s.Title)+suffix, KindRelocatedTask)
	}

	if answer := strings.TrimSpace(r.b.TaskAnswer); answer != "" {
		r.placeExample(loc, s, r.n.rules.ExamplePrefix+answer)
	}

	r.set(r.loc, "task", &r.b.Task, "", KindRelocatedTask)
	r.set(r.loc, "taskPinyin", &r.b.TaskPinyin, "", KindRelocatedTask)
	r.set(r.loc, "taskAnswer", &r.b.TaskAnswer, "", KindRelocatedTask)
	r.set(r.loc, "taskAnswerPinyin", &r.b.TaskAnswerPinyin, "", KindRelocatedTask)
}

// placeExample leaves exactly one example line, with the given text, in s.
func (r *run) placeExample(loc lesson.Path, s *lesson.Section, text string) {
	found := false
	kept := make([]*lesson.Line, 0, len(s.Lines)+1)
	for m, l := range s.Lines {
		if !r.isExampleLine(l.Text) {
			kept = append(kept, l)
			continue
		}
		if !found && strings.TrimSpace(l.Text) == text {
			found = true
			kept = append(kept, l)
			continue
		}
		r.record(loc.Index("content", m), "text", l.Text, "", KindExampleLine, report.StatusStructural)
	}

	if !found {
		withPinyin := s.LinesHavePinyin(r.b.Has("titlePinyin"))
		pinyin := ""
		if withPinyin {
			pinyin = r.n.tr.Transliterate(text)
		}
		kept = append(kept, lesson.NewLine(text, pinyin, withPinyin))
		r.record(loc.Index("content", len(kept)-1), "text", "", text, KindExampleLine, report.StatusStructural)
	}
	s.Lines = kept
}

// dedupeExamples keeps the first example line of a section.
func (r *run) dedupeExamples(loc lesson.Path, s *lesson.Section) {
	seen := false
	kept := make([]*lesson.Line, 0, len(s.Lines))
	for m, l := range s.Lines {
		if r.isExampleLine(l.Text) {
			if seen {
				r.record(loc.Index("content", m), "text", l.Text, "", KindDuplicateExample, report.StatusStructural)
				continue
			}
			seen = true
		}
		kept = append(kept, l)
	}
	s.Lines = kept
}
