// Package annotation classifies how a pinyin annotation drifted from its
// source text and repairs it when that is safe.
package annotation

import (
	"math"
	"slices"
	"strings"

	"github.com/palemoky/morning-reading/internal/classifier"
)

// Kind is the alignment state of a (text, annotation) pair.
type Kind int

const (
	BothEmpty Kind = iota
	ShouldBeEmpty
	ContainsPunctuation
	ExactMatch
	// ToneVariant has the canonical syllables but different tone marks or
	// letter case, as produced by 一/不 sandhi or context-dependent readings.
	ToneVariant
	PrefixOf
	SuffixOf
	SubstringOf
	SeverelyMismatched
	// Unresolvable annotations are within the syllable-count band but spell
	// different syllables. They are never repaired automatically.
	Unresolvable
)

var kindNames = [...]string{
	BothEmpty:           "both_empty",
	ShouldBeEmpty:       "should_be_empty",
	ContainsPunctuation: "contains_punctuation",
	ExactMatch:          "exact_match",
	ToneVariant:         "tone_variant",
	PrefixOf:            "prefix_of",
	SuffixOf:            "suffix_of",
	SubstringOf:         "substring_of",
	SeverelyMismatched:  "severely_mismatched",
	Unresolvable:        "unresolvable",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether the pair needs no attention at all.
func (k Kind) Valid() bool {
	return k == BothEmpty || k == ExactMatch
}

// Repairable reports whether Repair changes an annotation of this kind.
func (k Kind) Repairable() bool {
	switch k {
	case ShouldBeEmpty, ContainsPunctuation, PrefixOf, SuffixOf, SubstringOf, SeverelyMismatched:
		return true
	}
	return false
}

// Default syllable-count tolerance: max(2, 20% of the character count).
const (
	DefaultMinSlack   = 2
	DefaultSlackRatio = 0.2
)

// Thresholds bound how far the syllable count may drift from the character
// count before an annotation counts as severely mismatched.
type Thresholds struct {
	MinSlack   int
	SlackRatio float64
}

// DefaultThresholds returns the stock tolerance.
func DefaultThresholds() Thresholds {
	return Thresholds{MinSlack: DefaultMinSlack, SlackRatio: DefaultSlackRatio}
}

func (t Thresholds) slack(chars int) float64 {
	return math.Max(float64(t.MinSlack), t.SlackRatio*float64(chars))
}

// Transliterator produces the canonical annotation of a text.
type Transliterator interface {
	Transliterate(text string) string
}

// Validator classifies (text, annotation) pairs. It is stateless apart from its
// configuration and safe for concurrent use.
type Validator struct {
	tr         Transliterator
	thresholds Thresholds
}

// NewValidator returns a validator comparing annotations against tr.
// Negative thresholds fall back to the defaults.
func NewValidator(tr Transliterator, th Thresholds) *Validator {
	if th.MinSlack < 0 {
		th.MinSlack = DefaultMinSlack
	}
	if th.SlackRatio < 0 {
		th.SlackRatio = DefaultSlackRatio
	}
	return &Validator{tr: tr, thresholds: th}
}

// Transliterate exposes the canonical form used for comparisons.
func (v *Validator) Transliterate(text string) string {
	return v.tr.Transliterate(text)
}

// Classify returns the first matching Kind in priority order.
func (v *Validator) Classify(text, annotation string) Kind {
	text = strings.TrimSpace(text)
	annotation = strings.TrimSpace(annotation)

	if text == "" && annotation == "" {
		return BothEmpty
	}

	chars := classifier.CountHan(text)
	if annotation != "" && chars == 0 {
		return ShouldBeEmpty
	}

	if classifier.ContainsPunctuation(annotation) {
		return ContainsPunctuation
	}

	have := strings.Fields(classifier.NFC(annotation))
	want := strings.Fields(classifier.NFC(v.tr.Transliterate(text)))
	if slices.Equal(have, want) {
		return ExactMatch
	}

	if len(have) == 0 {
		return SeverelyMismatched
	}

	haveBare := stripAll(have)
	wantBare := stripAll(want)

	if slices.Equal(haveBare, wantBare) {
		return ToneVariant
	}

	if len(haveBare) < len(wantBare) {
		switch {
		case slices.Equal(haveBare, wantBare[:len(haveBare)]):
			return PrefixOf
		case slices.Equal(haveBare, wantBare[len(wantBare)-len(haveBare):]):
			return SuffixOf
		case containsRun(wantBare, haveBare):
			return SubstringOf
		}
	}

	if math.Abs(float64(len(have)-chars)) > v.thresholds.slack(chars) {
		return SeverelyMismatched
	}

	return Unresolvable
}

func stripAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = classifier.StripTones(tok)
	}
	return out
}

// containsRun reports whether sub occurs contiguously in s.
func containsRun(s, sub []string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if slices.Equal(s[i:i+len(sub)], sub) {
			return true
		}
	}
	return false
}
