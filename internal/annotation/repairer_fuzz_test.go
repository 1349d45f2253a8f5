package annotation

import (
	"strings"
	"testing"
)

func FuzzRepairerFix(f *testing.F) {
	f.Add("春风又绿江南岸", "chūn fēng yòu lǜ jiāng nán àn")
	f.Add("你好，世界", "nǐ hǎo， shì jiè")
	f.Add("守株待兔", "shǒu zhū")
	f.Add("", "nǐ")
	f.Add("abc123", "")
	f.Add("春风", "xià yǔ")

	r := NewRepairer(newValidator(f))

	f.Fuzz(func(t *testing.T, text, annotation string) {
		once := r.Fix(text, annotation)
		twice := r.Fix(text, once.After)

		if twice.After != once.After {
			t.Fatalf("Fix(%q, %q) not idempotent: %q then %q", text, annotation, once.After, twice.After)
		}
		if strings.TrimSpace(text) == "" && strings.TrimSpace(once.After) != "" {
			t.Errorf("Fix(%q, %q) = %q, want empty annotation for empty text", text, annotation, once.After)
		}
		if once.Final.Repairable() {
			t.Errorf("Fix(%q, %q) stopped on repairable kind %s", text, annotation, once.Final)
		}
	})
}
