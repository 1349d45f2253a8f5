package normalizer

import (
	"github.com/palemoky/morning-reading/internal/annotation"
	"github.com/palemoky/morning-reading/internal/lesson"
	"github.com/palemoky/morning-reading/internal/report"
)

// annotate repairs every text/pinyin pair whose pinyin key exists.
func (r *run) annotate() {
	for _, p := range r.b.Pairs() {
		if r.b.Has(p.PinyinKey) {
			r.fix(r.loc, p.PinyinKey, *p.Text, p.Pinyin)
		}
	}

	if !r.b.Sectioned() {
		for k, l := range r.b.Content.Lines {
			r.fixLine(r.loc.Index("contentObject", k), l)
		}
		return
	}

	for k, s := range r.b.Content.Sections {
		loc := r.loc.Index("contentObject", k)
		if s.Has("titlePinyin") {
			r.fix(loc, "titlePinyin", s.Title, &s.TitlePinyin)
		}
		for m, l := range s.Lines {
			r.fixLine(loc.Index("content", m), l)
		}
	}
}

func (r *run) fixLine(loc lesson.Path, l *lesson.Line) {
	if l.HasPinyin() {
		r.fix(loc, "pinyin", l.Text, &l.Pinyin)
	}
}

func (r *run) fix(loc lesson.Path, field, text string, pinyin *string) {
	res := r.n.fixer.Fix(text, *pinyin)

	if res.Changed() {
		r.record(loc, field, res.Before, res.After, res.Kind.String(), report.StatusRepaired)
		*pinyin = res.After
	}

	switch res.Final {
	case annotation.Unresolvable:
		r.record(loc, field, res.After, res.After, res.Final.String(), report.StatusFlagged)
	case annotation.ToneVariant:
		r.record(loc, field, res.After, res.After, res.Final.String(), report.StatusNotice)
	}
}
