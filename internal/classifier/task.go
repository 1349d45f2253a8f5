package classifier

import (
	"fmt"
	"regexp"
	"strings"
)

// TaskKind is the outcome of classifying a task instruction.
type TaskKind int

const (
	// TaskOther is the conservative default: the answer field is left alone.
	TaskOther TaskKind = iota
	// TaskNonWritten covers recitation, repeated or choral reading and mimicry.
	// Such a task must not carry a written answer.
	TaskNonWritten
	// TaskSentenceWriting asks the reader to produce an original sentence.
	TaskSentenceWriting
	// TaskQuestionAnswer has an answerable cue; it is handled like TaskOther.
	TaskQuestionAnswer
)

func (k TaskKind) String() string {
	switch k {
	case TaskNonWritten:
		return "non_written"
	case TaskSentenceWriting:
		return "sentence_writing"
	case TaskQuestionAnswer:
		return "question_answer"
	default:
		return "other"
	}
}

// NonWrittenRule matches one family of oral or physical tasks. A rule matches
// when any keyword is contained in the instruction, the instruction starts with
// any prefix, or any pattern matches. Overrides are extra cues, on top of the
// shared answer cues, that cancel this rule only.
type NonWrittenRule struct {
	Name      string
	Keywords  []string
	Prefixes  []string
	Patterns  []string
	Overrides []string
}

// TaskRules is the keyword configuration of a TaskClassifier.
type TaskRules struct {
	NonWritten []NonWrittenRule
	// AnswerCues mark an instruction as answerable in writing; they override
	// every NonWritten rule.
	AnswerCues       []string
	SentenceKeywords []string
	SentencePatterns []string
	QuestionMarks    string
}

// DefaultTaskRules returns the rule set used for grades 1-3.
func DefaultTaskRules() TaskRules {
	return TaskRules{
		NonWritten: []NonWrittenRule{
			{
				Name:     "recite",
				Keywords: []string{"背诵", "背给", "背一背", "背背", "背会"},
				Prefixes: []string{"背"},
			},
			{
				Name:     "choral_reading",
				Keywords: []string{"拍手读", "跟读", "齐读", "大声读", "小声读"},
			},
			{
				Name:      "repeated_reading",
				Patterns:  []string{`读[一二三四五六七八九十两0-9]+遍`},
				Overrides: []string{"哪", "什么", "多少", "几"},
			},
			{
				Name:     "mimicry",
				Keywords: []string{"做一做"},
				Patterns: []string{`动作.*(模仿|做)`, `(模仿|做).*动作`},
			},
		},
		AnswerCues: []string{"解释", "说说", "想一想", "为什么", "怎么", "写出", "找出", "写下"},
		SentenceKeywords: []string{
			"说一句", "写一句", "造句", "扩写", "改写", "润色", "照样子", "仿写",
			"比喻句", "拟人句", "拟人的话", "更生动", "更具体",
		},
		SentencePatterns: []string{`写一个.*句`, `说一个.*句`},
		QuestionMarks:    "？?",
	}
}

type compiledRule struct {
	name      string
	keywords  []string
	prefixes  []string
	patterns  []*regexp.Regexp
	overrides []string
}

// TaskClassifier classifies task instructions against a TaskRules set.
// It holds no mutable state and is safe for concurrent use.
type TaskClassifier struct {
	nonWritten       []compiledRule
	answerCues       []string
	sentenceKeywords []string
	sentencePatterns []*regexp.Regexp
	questionMarks    string
}

// NewTaskClassifier compiles rules; it fails on an invalid pattern.
func NewTaskClassifier(rules TaskRules) (*TaskClassifier, error) {
	c := &TaskClassifier{
		answerCues:       rules.AnswerCues,
		sentenceKeywords: rules.SentenceKeywords,
		questionMarks:    rules.QuestionMarks,
	}

	for _, r := range rules.NonWritten {
		patterns, err := compileAll(r.Patterns)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		c.nonWritten = append(c.nonWritten, compiledRule{
			name:      r.Name,
			keywords:  r.Keywords,
			prefixes:  r.Prefixes,
			patterns:  patterns,
			overrides: r.Overrides,
		})
	}

	patterns, err := compileAll(rules.SentencePatterns)
	if err != nil {
		return nil, fmt.Errorf("sentence patterns: %w", err)
	}
	c.sentencePatterns = patterns

	return c, nil
}

// Classify returns the kind of instruction. NonWritten is tested first, then
// SentenceWriting, then QuestionAnswer; an empty instruction is TaskOther.
func (c *TaskClassifier) Classify(instruction string) TaskKind {
	t := strings.TrimSpace(instruction)
	if t == "" {
		return TaskOther
	}

	if c.isNonWritten(t) {
		return TaskNonWritten
	}

	if containsAny(t, c.sentenceKeywords) || matchesAny(t, c.sentencePatterns) {
		return TaskSentenceWriting
	}

	if containsAny(t, c.answerCues) || EndsWithAny(t, c.questionMarks) {
		return TaskQuestionAnswer
	}

	return TaskOther
}

// IsNonWritten is shorthand for Classify(instruction) == TaskNonWritten.
func (c *TaskClassifier) IsNonWritten(instruction string) bool {
	return c.Classify(instruction) == TaskNonWritten
}

// IsSentenceWriting is shorthand for Classify(instruction) == TaskSentenceWriting.
func (c *TaskClassifier) IsSentenceWriting(instruction string) bool {
	return c.Classify(instruction) == TaskSentenceWriting
}

func (c *TaskClassifier) isNonWritten(t string) bool {
	if containsAny(t, c.answerCues) {
		return false
	}
	for _, r := range c.nonWritten {
		if !r.matches(t) {
			continue
		}
		if containsAny(t, r.overrides) {
			continue
		}
		return true
	}
	return false
}

func (r compiledRule) matches(t string) bool {
	if containsAny(t, r.keywords) || matchesAny(t, r.patterns) {
		return true
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func matchesAny(s string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
