package annotation

import "github.com/palemoky/morning-reading/internal/classifier"

// maxFixPasses bounds Fix. Every repair lands on a terminal kind within three
// passes (punctuation, then sub-range, then exact).
const maxFixPasses = 4

// Repairer turns a drifted annotation into its corrected form.
type Repairer struct {
	v *Validator
}

// NewRepairer returns a repairer backed by v.
func NewRepairer(v *Validator) *Repairer {
	return &Repairer{v: v}
}

// Validator returns the validator the repairer classifies with.
func (r *Repairer) Validator() *Validator {
	return r.v
}

// Repair applies the action for kind. Valid, ToneVariant and Unresolvable
// annotations are returned unchanged.
func (r *Repairer) Repair(text, annotation string, kind Kind) string {
	switch kind {
	case ShouldBeEmpty:
		return ""
	case ContainsPunctuation:
		return classifier.StripPunctuation(annotation)
	case PrefixOf, SuffixOf, SubstringOf, SeverelyMismatched:
		return r.v.Transliterate(text)
	default:
		return annotation
	}
}

// Result describes one Fix call.
type Result struct {
	Before string
	After  string
	// Kind is the classification of the original annotation.
	Kind Kind
	// Final is the classification of After.
	Final Kind
}

// Changed reports whether Fix altered the annotation.
func (res Result) Changed() bool {
	return res.Before != res.After
}

// Fix classifies and repairs until the annotation reaches a kind Repair leaves
// alone, so Fix(text, Fix(text, a).After) never changes anything.
func (r *Repairer) Fix(text, annotation string) Result {
	res := Result{Before: annotation, After: annotation}
	res.Kind = r.v.Classify(text, annotation)
	res.Final = res.Kind

	for range maxFixPasses {
		if !res.Final.Repairable() {
			break
		}
		next := r.Repair(text, res.After, res.Final)
		if next == res.After {
			break
		}
		res.After = next
		res.Final = r.v.Classify(text, next)
	}
	return res
}
