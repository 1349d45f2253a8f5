package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultClassifier(t *testing.T) *TaskClassifier {
	t.Helper()
	c, err := NewTaskClassifier(DefaultTaskRules())
	require.NoError(t, err)
	return c
}

func TestTaskClassifierClassify(t *testing.T) {
	c := newDefaultClassifier(t)

	tests := []struct {
		name        string
		instruction string
		want        TaskKind
	}{
		{"empty", "", TaskOther},
		{"whitespace only", "   ", TaskOther},
		{"recite poem", "背诵这首诗", TaskNonWritten},
		{"recite to parents", "把这首儿歌背给爸爸妈妈听。", TaskNonWritten},
		{"starts with 背", "背一段你喜欢的句子", TaskNonWritten},
		{"recite but explain", "背诵这首诗，说说诗里写了什么季节。", TaskQuestionAnswer},
		{"clap and read", "拍手读儿歌", TaskNonWritten},
		{"follow read", "跟读三遍课文", TaskNonWritten},
		{"read N times", "读三遍", TaskNonWritten},
		{"read digits times", "读2遍，读准字音。", TaskNonWritten},
		{"read N times then find", "读两遍，找出文中的叠词。", TaskQuestionAnswer},
		{"read N times with interrogative", "读三遍，小兔子去了哪里？", TaskQuestionAnswer},
		{"act it out", "一边读一边做动作", TaskNonWritten},
		{"mimic action", "模仿小猫的动作", TaskNonWritten},
		{"do it", "做一做这个手势", TaskNonWritten},
		{"act and explain why", "做做动作，想一想为什么小鸟要飞走。", TaskQuestionAnswer},
		{"metaphor sentence", "用比喻写一句", TaskSentenceWriting},
		{"make a sentence", "用“温暖”造句。", TaskSentenceWriting},
		{"expand", "把句子扩写得更具体。", TaskSentenceWriting},
		{"imitate", "照样子，写一写。", TaskSentenceWriting},
		{"write a personification sentence", "写一个拟人的句子", TaskSentenceWriting},
		{"question mark", "小猴子最后摘到桃子了吗？", TaskQuestionAnswer},
		{"why question", "为什么春天的风是暖的", TaskQuestionAnswer},
		{"plain statement", "认识生字", TaskOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.instruction)
			assert.Equal(t, tt.want, got, "Classify(%q) = %s", tt.instruction, got)
		})
	}
}

func TestTaskClassifierShorthands(t *testing.T) {
	c := newDefaultClassifier(t)

	assert.True(t, c.IsNonWritten("背诵全文"))
	assert.False(t, c.IsNonWritten("用比喻写一句"))
	assert.True(t, c.IsSentenceWriting("用比喻写一句"))
	assert.False(t, c.IsSentenceWriting("背诵全文"))
}

func TestTaskClassifierCustomRules(t *testing.T) {
	rules := TaskRules{
		NonWritten: []NonWrittenRule{
			{Name: "sing", Keywords: []string{"唱一唱"}},
		},
		SentenceKeywords: []string{"写一句"},
	}
	c, err := NewTaskClassifier(rules)
	require.NoError(t, err)

	assert.Equal(t, TaskNonWritten, c.Classify("唱一唱这首歌"))
	// the default recite rule is not part of this rule set
	assert.Equal(t, TaskOther, c.Classify("背诵这首诗"))
	assert.Equal(t, TaskSentenceWriting, c.Classify("写一句话"))
}

func TestNewTaskClassifierInvalidPattern(t *testing.T) {
	rules := DefaultTaskRules()
	rules.NonWritten = append(rules.NonWritten, NonWrittenRule{Name: "broken", Patterns: []string{"读["}})

	_, err := NewTaskClassifier(rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	rules = DefaultTaskRules()
	rules.SentencePatterns = []string{"("}
	_, err = NewTaskClassifier(rules)
	require.Error(t, err)
}

func TestTaskKindString(t *testing.T) {
	assert.Equal(t, "other", TaskOther.String())
	assert.Equal(t, "non_written", TaskNonWritten.String())
	assert.Equal(t, "sentence_writing", TaskSentenceWriting.String())
	assert.Equal(t, "question_answer", TaskQuestionAnswer.String())
}
