package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/morning-reading/internal/classifier"
)

func newValidator(t testing.TB) *Validator {
	t.Helper()
	tr, err := classifier.NewTransliterator()
	require.NoError(t, err)
	return NewValidator(tr, DefaultThresholds())
}

func TestValidatorClassify(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name       string
		text       string
		annotation string
		want       Kind
	}{
		{"both empty", "", "", BothEmpty},
		{"both blank", "  ", " ", BothEmpty},
		{"empty text with annotation", "", "nǐ hǎo", ShouldBeEmpty},
		{"latin text with annotation", "abc123", "abc", ShouldBeEmpty},
		{"latin text without annotation", "abc123", "", ExactMatch},
		{"exact line", "春风又绿江南岸", "chūn fēng yòu lǜ jiāng nán àn", ExactMatch},
		{"extra inner spaces", "春风", "chūn   fēng", ExactMatch},
		{"combining marks", "茶", "cha\u0301", ExactMatch},
		{"punctuation in annotation", "你好，世界", "nǐ hǎo， shì jiè", ContainsPunctuation},
		{"ascii punctuation", "你好", "nǐ, hǎo", ContainsPunctuation},
		{"wave dash", "啊～", "ā ～", ContainsPunctuation},
		{"tone sandhi", "一个", "yí gè", ToneVariant},
		{"capitalized", "春风", "Chūn fēng", ToneVariant},
		{"missing tones", "春风", "chun feng", ToneVariant},
		{"truncated annotation", "守株待兔", "shǒu zhū", PrefixOf},
		{"prefix without tones", "守株待兔", "shou zhu dai", PrefixOf},
		{"suffix", "守株待兔", "dài tù", SuffixOf},
		{"substring", "守株待兔", "zhū dài", SubstringOf},
		{"annotation missing", "守株待兔", "", SeverelyMismatched},
		{"far too long", "春风", "a b c d e f g h", SeverelyMismatched},
		{"far too short", "春风又绿江南岸春风又绿江南岸", "xià", SeverelyMismatched},
		{"different syllables", "春风", "xià yǔ", Unresolvable},
		{"one extra syllable", "春风", "chūn fēng yǔ", Unresolvable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Classify(tt.text, tt.annotation)
			assert.Equal(t, tt.want, got, "Classify(%q, %q) = %s", tt.text, tt.annotation, got)
		})
	}
}

func TestValidatorThresholds(t *testing.T) {
	tr, err := classifier.NewTransliterator()
	require.NoError(t, err)

	strict := NewValidator(tr, Thresholds{MinSlack: 0, SlackRatio: 0})
	assert.Equal(t, SeverelyMismatched, strict.Classify("春风", "chūn fēng yǔ"))

	loose := NewValidator(tr, Thresholds{MinSlack: 10, SlackRatio: 0})
	assert.Equal(t, Unresolvable, loose.Classify("春风", "a b c d e f g h"))

	// negative values fall back to the defaults
	fallback := NewValidator(tr, Thresholds{MinSlack: -1, SlackRatio: -1})
	assert.Equal(t, DefaultThresholds(), fallback.thresholds)
}

func TestKindPredicates(t *testing.T) {
	for k := BothEmpty; k <= Unresolvable; k++ {
		assert.NotEqual(t, "unknown", k.String())
		assert.False(t, k.Valid() && k.Repairable(), "%s cannot be both valid and repairable", k)
	}

	assert.True(t, ExactMatch.Valid())
	assert.True(t, BothEmpty.Valid())
	assert.False(t, ToneVariant.Valid())
	assert.False(t, ToneVariant.Repairable())
	assert.False(t, Unresolvable.Repairable())
	assert.True(t, SeverelyMismatched.Repairable())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.Equal(t, "prefix_of", PrefixOf.String())
}

// fakeTransliterator maps known texts to fixed annotations.
type fakeTransliterator map[string]string

func (f fakeTransliterator) Transliterate(text string) string { return f[text] }

func TestValidatorUsesInjectedTransliterator(t *testing.T) {
	v := NewValidator(fakeTransliterator{"甲乙": "jia yi"}, DefaultThresholds())

	assert.Equal(t, ExactMatch, v.Classify("甲乙", "jia yi"))
	assert.Equal(t, PrefixOf, v.Classify("甲乙", "jia"))
	assert.Equal(t, "jia yi", v.Transliterate("甲乙"))
}
