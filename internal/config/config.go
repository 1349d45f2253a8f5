package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/palemoky/morning-reading/internal/annotation"
	"github.com/palemoky/morning-reading/internal/classifier"
	"github.com/palemoky/morning-reading/internal/errors"
	"github.com/palemoky/morning-reading/internal/normalizer"
	"github.com/palemoky/morning-reading/internal/report"
)

// EnvPrefix prefixes every environment override, e.g. MR_PROCESSOR_WORKERS.
const EnvPrefix = "MR"

// Config holds all configuration for the application
type Config struct {
	Input      InputConfig      `mapstructure:"input"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
	Report     ReportConfig     `mapstructure:"report"`
	Annotation AnnotationConfig `mapstructure:"annotation"`
	Tasks      TasksConfig      `mapstructure:"tasks"`
	Normalizer NormalizerConfig `mapstructure:"normalizer"`
}

// InputConfig selects the corpus files
type InputConfig struct {
	Dir     string   `mapstructure:"dir"`
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

// ProcessorConfig holds batch driver configuration
type ProcessorConfig struct {
	Workers  int  `mapstructure:"workers"` // 0 means runtime.NumCPU()
	DryRun   bool `mapstructure:"dry_run"`
	Progress bool `mapstructure:"progress"`
}

// ReportConfig holds report configuration
type ReportConfig struct {
	Format       string `mapstructure:"format"` // table or markdown
	DatabasePath string `mapstructure:"database_path"`
	Persist      bool   `mapstructure:"persist"`
}

// AnnotationConfig holds the mismatch tolerance
type AnnotationConfig struct {
	MinSyllableSlack   int     `mapstructure:"min_syllable_slack"`
	SyllableSlackRatio float64 `mapstructure:"syllable_slack_ratio"`
	FoldTraditional    bool    `mapstructure:"fold_traditional"`
}

// NonWrittenRuleConfig mirrors classifier.NonWrittenRule
type NonWrittenRuleConfig struct {
	Name      string   `mapstructure:"name"`
	Keywords  []string `mapstructure:"keywords"`
	Prefixes  []string `mapstructure:"prefixes"`
	Patterns  []string `mapstructure:"patterns"`
	Overrides []string `mapstructure:"overrides"`
}

// TasksConfig mirrors classifier.TaskRules
type TasksConfig struct {
	NonWritten       []NonWrittenRuleConfig `mapstructure:"non_written"`
	AnswerCues       []string               `mapstructure:"answer_cues"`
	SentenceKeywords []string               `mapstructure:"sentence_keywords"`
	SentencePatterns []string               `mapstructure:"sentence_patterns"`
	QuestionMarks    string                 `mapstructure:"question_marks"`
}

// NormalizerConfig mirrors normalizer.Rules
type NormalizerConfig struct {
	GenreTags           []string `mapstructure:"genre_tags"`
	WordListTitles      []string `mapstructure:"word_list_titles"`
	NonExamplePrefixes  []string `mapstructure:"non_example_prefixes"`
	ExamplePrefix       string   `mapstructure:"example_prefix"`
	TerminalPunctuation string   `mapstructure:"terminal_punctuation"`
	TaskSeparators      []string `mapstructure:"task_separators"`
	DropLinePatterns    []string `mapstructure:"drop_line_patterns"`
	ClearOrphanDynasty  bool     `mapstructure:"clear_orphan_dynasty"`

	PlaceholderAuthors        []string            `mapstructure:"placeholder_authors"`
	PlaceholderAuthorPatterns []string            `mapstructure:"placeholder_author_patterns"`
	PlaceholderAnnotations    []string            `mapstructure:"placeholder_annotations"`
	NoTranslationMarkers      []string            `mapstructure:"no_translation_markers"`
	TitleCollapsePrefixes     []string            `mapstructure:"title_collapse_prefixes"`
	TitleReplacements         []ReplacementConfig `mapstructure:"title_replacements"`
}

// ReplacementConfig is one literal title rewrite
type ReplacementConfig struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, &errors.RunError{
				Code:    errors.CodeInvalidConfig,
				File:    configPath,
				Message: "failed to read config file",
				Err:     err,
			}
		}
	}

	// Override with environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &errors.RunError{Code: errors.CodeInvalidConfig, Message: "failed to unmarshal config", Err: err}
	}

	// structured rule lists have no viper default
	if len(cfg.Tasks.NonWritten) == 0 {
		cfg.Tasks.NonWritten = defaultNonWrittenRules()
	}
	if len(cfg.Normalizer.TitleReplacements) == 0 {
		cfg.Normalizer.TitleReplacements = defaultTitleReplacements()
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", ".")
	v.SetDefault("input.include", []string{"**/*.txt", "**/*.json"})
	v.SetDefault("input.exclude", []string{})
	v.SetDefault("processor.workers", 0)
	v.SetDefault("processor.dry_run", false)
	v.SetDefault("processor.progress", true)
	v.SetDefault("report.format", string(report.FormatTable))
	v.SetDefault("report.database_path", "morning-reading.db")
	v.SetDefault("report.persist", false)

	th := annotation.DefaultThresholds()
	v.SetDefault("annotation.min_syllable_slack", th.MinSlack)
	v.SetDefault("annotation.syllable_slack_ratio", th.SlackRatio)
	v.SetDefault("annotation.fold_traditional", false)

	tasks := classifier.DefaultTaskRules()
	v.SetDefault("tasks.answer_cues", tasks.AnswerCues)
	v.SetDefault("tasks.sentence_keywords", tasks.SentenceKeywords)
	v.SetDefault("tasks.sentence_patterns", tasks.SentencePatterns)
	v.SetDefault("tasks.question_marks", tasks.QuestionMarks)

	rules := normalizer.DefaultRules()
	v.SetDefault("normalizer.genre_tags", rules.GenreTags)
	v.SetDefault("normalizer.word_list_titles", rules.WordListTitles)
	v.SetDefault("normalizer.non_example_prefixes", rules.NonExamplePrefixes)
	v.SetDefault("normalizer.example_prefix", rules.ExamplePrefix)
	v.SetDefault("normalizer.terminal_punctuation", rules.TerminalPunctuation)
	v.SetDefault("normalizer.task_separators", rules.TaskSeparators)
	v.SetDefault("normalizer.drop_line_patterns", []string{})
	v.SetDefault("normalizer.clear_orphan_dynasty", rules.ClearOrphanDynasty)
	v.SetDefault("normalizer.placeholder_authors", rules.PlaceholderAuthors)
	v.SetDefault("normalizer.placeholder_author_patterns", rules.PlaceholderAuthorPatterns)
	v.SetDefault("normalizer.placeholder_annotations", rules.PlaceholderAnnotations)
	v.SetDefault("normalizer.no_translation_markers", rules.NoTranslationMarkers)
	v.SetDefault("normalizer.title_collapse_prefixes", rules.TitleCollapsePrefixes)
}

func bindEnvVars(v *viper.Viper) {
	// MR_SECTION_KEY for every key with a default, lists comma separated
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Shorthands
	if dir := os.Getenv("MR_INPUT"); dir != "" {
		v.Set("input.dir", dir)
	}
	if workers := os.Getenv("MR_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			v.Set("processor.workers", w)
		}
	}
	if dryRun := os.Getenv("MR_DRY_RUN"); dryRun != "" {
		v.Set("processor.dry_run", dryRun == "true" || dryRun == "1")
	}
}

func defaultNonWrittenRules() []NonWrittenRuleConfig {
	defaults := classifier.DefaultTaskRules().NonWritten
	out := make([]NonWrittenRuleConfig, len(defaults))
	for i, r := range defaults {
		out[i] = NonWrittenRuleConfig{
			Name:      r.Name,
			Keywords:  r.Keywords,
			Prefixes:  r.Prefixes,
			Patterns:  r.Patterns,
			Overrides: r.Overrides,
		}
	}
	return out
}

func defaultTitleReplacements() []ReplacementConfig {
	defaults := normalizer.DefaultRules().TitleReplacements
	out := make([]ReplacementConfig, len(defaults))
	for i, r := range defaults {
		out[i] = ReplacementConfig{From: r.From, To: r.To}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Input.Dir == "" {
		return errors.InvalidConfig("input dir cannot be empty")
	}

	if len(c.Input.Include) == 0 {
		return errors.InvalidConfig("input include patterns cannot be empty")
	}

	if c.Processor.Workers < 0 {
		return errors.InvalidConfig("invalid workers: %d (must be 0 for all CPUs or positive)", c.Processor.Workers)
	}

	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		return errors.InvalidConfig("%v", err)
	}

	if c.Report.Persist && c.Report.DatabasePath == "" {
		return errors.InvalidConfig("report database path cannot be empty when persist is enabled")
	}

	if c.Annotation.MinSyllableSlack < 0 {
		return errors.InvalidConfig("min_syllable_slack must not be negative")
	}

	if c.Annotation.SyllableSlackRatio < 0 || c.Annotation.SyllableSlackRatio > 1 {
		return errors.InvalidConfig("syllable_slack_ratio must be within [0, 1], got %g", c.Annotation.SyllableSlackRatio)
	}

	if strings.TrimSpace(c.Normalizer.ExamplePrefix) == "" {
		return errors.InvalidConfig("normalizer example_prefix cannot be empty")
	}

	patterns := append([]string{}, c.Tasks.SentencePatterns...)
	patterns = append(patterns, c.Normalizer.DropLinePatterns...)
	patterns = append(patterns, c.Normalizer.PlaceholderAuthorPatterns...)
	for _, r := range c.Tasks.NonWritten {
		patterns = append(patterns, r.Patterns...)
	}
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return errors.InvalidConfig("invalid pattern %q: %v", p, err)
		}
	}

	return nil
}

// TaskRules converts the tasks section for classifier.NewTaskClassifier
func (c *Config) TaskRules() classifier.TaskRules {
	rules := classifier.TaskRules{
		AnswerCues:       c.Tasks.AnswerCues,
		SentenceKeywords: c.Tasks.SentenceKeywords,
		SentencePatterns: c.Tasks.SentencePatterns,
		QuestionMarks:    c.Tasks.QuestionMarks,
	}
	for _, r := range c.Tasks.NonWritten {
		rules.NonWritten = append(rules.NonWritten, classifier.NonWrittenRule{
			Name:      r.Name,
			Keywords:  r.Keywords,
			Prefixes:  r.Prefixes,
			Patterns:  r.Patterns,
			Overrides: r.Overrides,
		})
	}
	return rules
}

// NormalizerRules converts the normalizer section for normalizer.New
func (c *Config) NormalizerRules() normalizer.Rules {
	n := c.Normalizer
	rules := normalizer.Rules{
		GenreTags:                 n.GenreTags,
		WordListTitles:            n.WordListTitles,
		NonExamplePrefixes:        n.NonExamplePrefixes,
		ExamplePrefix:             n.ExamplePrefix,
		TerminalPunctuation:       n.TerminalPunctuation,
		TaskSeparators:            n.TaskSeparators,
		DropLinePatterns:          n.DropLinePatterns,
		ClearOrphanDynasty:        n.ClearOrphanDynasty,
		PlaceholderAuthors:        n.PlaceholderAuthors,
		PlaceholderAuthorPatterns: n.PlaceholderAuthorPatterns,
		PlaceholderAnnotations:    n.PlaceholderAnnotations,
		NoTranslationMarkers:      n.NoTranslationMarkers,
		TitleCollapsePrefixes:     n.TitleCollapsePrefixes,
	}
	for _, r := range n.TitleReplacements {
		rules.TitleReplacements = append(rules.TitleReplacements, normalizer.Replacement{From: r.From, To: r.To})
	}
	return rules
}

// Thresholds converts the annotation section for annotation.NewValidator
func (c *Config) Thresholds() annotation.Thresholds {
	return annotation.Thresholds{
		MinSlack:   c.Annotation.MinSyllableSlack,
		SlackRatio: c.Annotation.SyllableSlackRatio,
	}
}
