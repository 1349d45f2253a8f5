package normalizer

// Rules is the content rule set of a Normalizer. Every list is matched
// literally unless noted otherwise.
type Rules struct {
	// GenreTags are parenthetical title suffixes removed from block titles,
	// e.g. "春天（短文）" -> "春天".
	GenreTags []string
	// WordListTitles are section titles (parentheticals ignored) whose
	// sections never receive a relocated task.
	WordListTitles []string
	// NonExamplePrefixes mark lines that are instructions rather than
	// exemplar sentences.
	NonExamplePrefixes []string
	// ExamplePrefix starts a line carrying a model answer.
	ExamplePrefix string
	// TerminalPunctuation ends a complete sentence.
	TerminalPunctuation string
	// TaskSeparators are removed from task. taskAnswer keeps them, they
	// separate the answers of a multi-question task.
	TaskSeparators []string
	// DropLinePatterns are regular expressions; body lines matching any of
	// them are removed.
	DropLinePatterns []string
	// ClearOrphanDynasty empties dynasty when the block has no author.
	ClearOrphanDynasty bool
	// PlaceholderAuthors are author values that name no author, e.g. 佚名.
	PlaceholderAuthors []string
	// PlaceholderAuthorPatterns are regular expressions for authors that are
	// really sources, e.g. 《山海经》.
	PlaceholderAuthorPatterns []string
	// PlaceholderAnnotations are markers removed from annotation.
	PlaceholderAnnotations []string
	// NoTranslationMarkers clear a translation containing any of them.
	NoTranslationMarkers []string
	// TitleCollapsePrefixes reduce a title to the prefix without its colon,
	// e.g. "绕口令：四是四" -> "绕口令".
	TitleCollapsePrefixes []string
	// TitleReplacements are literal rewrites applied to titles.
	TitleReplacements []Replacement
}

// Replacement rewrites every occurrence of From to To.
type Replacement struct {
	From string
	To   string
}

// DefaultRules returns the rule set used across grades 1-3. DropLinePatterns
// is empty; the corpus value `^(修辞手法|描写手法)：.+$` is opt-in.
func DefaultRules() Rules {
	return Rules{
		GenreTags:      []string{"短文", "小短文", "小故事", "小寓言", "极短"},
		WordListTitles: []string{"词语小宝库", "好词积累", "四字词语/成语", "四字词语", "成语"},
		NonExamplePrefixes: []string{
			"原句", "提示", "任务", "定义", "拟人：", "比喻：",
			"用颜色词", "用颜色", "修辞手法", "描写手法",
		},
		ExamplePrefix:             "范例：",
		TerminalPunctuation:       "。！？!?",
		TaskSeparators:            []string{"！！", "!!"},
		ClearOrphanDynasty:        true,
		PlaceholderAuthors:        []string{"佚名", "民间传说"},
		PlaceholderAuthorPatterns: []string{`^《.*》`, `^根据.*(改编|整理)`},
		PlaceholderAnnotations:    []string{"（无难点）"},
		NoTranslationMarkers:      []string{"无需翻译"},
		TitleCollapsePrefixes:     []string{"绕口令："},
		TitleReplacements: []Replacement{
			{From: "（节选，", To: "（节选·"},
			{From: "（选读，", To: "（选读·"},
		},
	}
}
