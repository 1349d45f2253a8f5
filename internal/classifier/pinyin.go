package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/mozillazg/go-pinyin"
)

var pinyinArgs = pinyin.NewArgs()

func init() {
	// Use tone marks for full pinyin
	pinyinArgs.Style = pinyin.Tone
	pinyinArgs.Heteronym = false
}

// ToPinyinNoTone converts Chinese text to pinyin without tone marks
func ToPinyinNoTone(text string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.Normal
	args.Heteronym = false

	return strings.Join(syllables(ExtractHan(text), args), " ")
}

// ToPinyinAbbr converts Chinese text to pinyin abbreviation (first letters)
func ToPinyinAbbr(text string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.FirstLetter
	args.Heteronym = false

	return strings.Join(syllables(ExtractHan(text), args), "")
}

func syllables(han string, args pinyin.Args) []string {
	if han == "" {
		return nil
	}

	result := pinyin.Pinyin(han, args)
	parts := make([]string, 0, len(result))
	for _, item := range result {
		if len(item) > 0 {
			parts = append(parts, item[0])
		}
	}
	return parts
}

// Transliterator maps text to its canonical annotation: one tone-marked
// syllable per Han character, space separated. The zero value is not usable;
// construct one with NewTransliterator.
type Transliterator struct {
	args pinyin.Args
	fold bool
}

// TransliteratorOption configures a Transliterator.
type TransliteratorOption func(*Transliterator)

// WithTraditionalFolding converts traditional characters to simplified ones
// before the reading lookup.
func WithTraditionalFolding() TransliteratorOption {
	return func(t *Transliterator) {
		t.fold = true
	}
}

// NewTransliterator creates a transliterator. It fails only when traditional
// folding is requested and the OpenCC dictionaries cannot be loaded.
func NewTransliterator(opts ...TransliteratorOption) (*Transliterator, error) {
	t := &Transliterator{args: pinyinArgs}
	for _, opt := range opts {
		opt(t)
	}
	if t.fold {
		if err := initConverters(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Transliterate returns the canonical annotation of text, or "" when text
// holds no Han characters.
func (t *Transliterator) Transliterate(text string) string {
	return strings.Join(t.Syllables(text), " ")
}

// Syllables is Transliterate without the final join.
func (t *Transliterator) Syllables(text string) []string {
	han := ExtractHan(text)
	if han == "" {
		return nil
	}
	if t.fold {
		han = foldTraditional(han)
	}
	return syllables(han, t.args)
}

// foldTraditional keeps the original characters whenever the conversion fails
// or alters the character count, since the output must stay one syllable per
// source character.
func foldTraditional(han string) string {
	simplified, err := ToSimplified(han)
	if err != nil || utf8.RuneCountInString(simplified) != utf8.RuneCountInString(han) {
		return han
	}
	return simplified
}
