package classifier

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Combining tone marks of the four pinyin tones (macron, acute, caron, grave).
// The diaeresis of ü is not a tone mark and survives stripping.
const (
	toneFirst  = '\u0304'
	toneSecond = '\u0301'
	toneThird  = '\u030C'
	toneFourth = '\u0300'
)

// symbolMarks are symbol-category characters the corpus uses as punctuation.
const symbolMarks = "～~"

// closingMarks may trail a sentence after its terminal punctuation.
const closingMarks = `”’"'」』）)》】`

// NormalizeText normalizes text by trimming whitespace and removing extra spaces
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// IsHan reports whether r is an ideographic (Han script) character.
func IsHan(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

// ExtractHan returns the Han characters of text in their original order.
func ExtractHan(text string) string {
	var b strings.Builder
	for _, r := range text {
		if IsHan(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CountHan counts the Han characters in text.
func CountHan(text string) int {
	n := 0
	for _, r := range text {
		if IsHan(r) {
			n++
		}
	}
	return n
}

// IsPunct reports whether r is punctuation, including the wave dashes.
func IsPunct(r rune) bool {
	return unicode.IsPunct(r) || strings.ContainsRune(symbolMarks, r)
}

// ContainsPunctuation reports whether s holds any punctuation character,
// full-width or ASCII.
func ContainsPunctuation(s string) bool {
	return strings.IndexFunc(s, IsPunct) >= 0
}

// StripPunctuation replaces punctuation with spaces and collapses whitespace,
// so "nǐ hǎo，shì jiè" becomes "nǐ hǎo shì jiè".
func StripPunctuation(s string) string {
	return NormalizeText(strings.Map(func(r rune) rune {
		if IsPunct(r) {
			return ' '
		}
		return r
	}, s))
}

// TrimTerminal removes trailing characters contained in set, e.g. "写一句。" -> "写一句".
func TrimTerminal(s, set string) string {
	return strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool {
		return strings.ContainsRune(set, r)
	})
}

// EndsWithAny reports whether s, ignoring trailing whitespace and closing
// quotes or brackets, ends with a character from set.
func EndsWithAny(s, set string) bool {
	s = strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool {
		return strings.ContainsRune(closingMarks, r)
	})
	if s == "" {
		return false
	}
	r := []rune(s)
	return strings.ContainsRune(set, r[len(r)-1])
}

func isToneMark(r rune) bool {
	switch r {
	case toneFirst, toneSecond, toneThird, toneFourth:
		return true
	}
	return false
}

// ContainsToneMark reports whether s carries a tone mark, precomposed or combining.
func ContainsToneMark(s string) bool {
	return strings.IndexFunc(norm.NFD.String(s), isToneMark) >= 0
}

// NFC returns s in Unicode normalization form C, so that pinyin written with
// combining marks compares equal to precomposed pinyin.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// StripTones removes tone marks from pinyin and lowercases it: "lǜ" -> "lü", "Chūn" -> "chun".
func StripTones(s string) string {
	// transform chains carry state and must not be shared between goroutines
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isToneMark)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// ParenSegment is a top-level parenthesised run inside a string.
// Start and End are byte offsets covering the brackets themselves.
type ParenSegment struct {
	Start int
	End   int
	Inner string
}

func isOpenParen(r rune) bool  { return r == '（' || r == '(' }
func isCloseParen(r rune) bool { return r == '）' || r == ')' }

// TopLevelParens finds top-level （…） or (…) segments, tolerating nesting such
// as "照样子写（说）一句". Unbalanced brackets are ignored.
func TopLevelParens(s string) []ParenSegment {
	var segs []ParenSegment
	depth := 0
	start := -1
	for i, r := range s {
		switch {
		case isOpenParen(r):
			if depth == 0 {
				start = i
			}
			depth++
		case isCloseParen(r):
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				_, size := utf8.DecodeRuneInString(s[i:])
				_, openSize := utf8.DecodeRuneInString(s[start:])
				segs = append(segs, ParenSegment{
					Start: start,
					End:   i + size,
					Inner: s[start+openSize : i],
				})
				start = -1
			}
		}
	}
	return segs
}

// RemoveParens drops every top-level segment for which drop returns true and
// trims the result.
func RemoveParens(s string, drop func(inner string) bool) string {
	segs := TopLevelParens(s)
	if len(segs) == 0 {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	last := 0
	for _, seg := range segs {
		b.WriteString(s[last:seg.Start])
		if !drop(strings.TrimSpace(seg.Inner)) {
			b.WriteString(s[seg.Start:seg.End])
		}
		last = seg.End
	}
	b.WriteString(s[last:])
	return strings.TrimSpace(b.String())
}

// StripAllParens removes every top-level parenthetical: "好句（用比喻写一句）" -> "好句".
func StripAllParens(s string) string {
	return RemoveParens(s, func(string) bool { return true })
}
