package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/morning-reading/internal/annotation"
	"github.com/palemoky/morning-reading/internal/classifier"
	"github.com/palemoky/morning-reading/internal/errors"
	"github.com/palemoky/morning-reading/internal/normalizer"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Input.Dir)
	assert.Equal(t, []string{"**/*.txt", "**/*.json"}, cfg.Input.Include)
	assert.Equal(t, 0, cfg.Processor.Workers)
	assert.False(t, cfg.Processor.DryRun)
	assert.Equal(t, "table", cfg.Report.Format)
	assert.Equal(t, annotation.DefaultThresholds(), cfg.Thresholds())
	assert.Equal(t, classifier.DefaultTaskRules(), cfg.TaskRules())

	got := cfg.NormalizerRules()
	assert.Empty(t, got.DropLinePatterns)
	want := normalizer.DefaultRules()
	want.DropLinePatterns = got.DropLinePatterns
	assert.Equal(t, want, got)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
input:
  dir: 内容/有拼音_重写版
  exclude: ["**/draft/**"]
processor:
  workers: 3
report:
  format: markdown
annotation:
  min_syllable_slack: 1
  syllable_slack_ratio: 0.1
tasks:
  non_written:
    - name: sing
      keywords: [唱一唱]
normalizer:
  drop_line_patterns: ["^(修辞手法|描写手法)：.+$"]
  clear_orphan_dynasty: false
  placeholder_authors: [佚名, 无名氏]
  title_replacements:
    - from: "（节选，"
      to: "（节选·"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "内容/有拼音_重写版", cfg.Input.Dir)
	assert.Equal(t, []string{"**/draft/**"}, cfg.Input.Exclude)
	assert.Equal(t, 3, cfg.Processor.Workers)
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.Equal(t, annotation.Thresholds{MinSlack: 1, SlackRatio: 0.1}, cfg.Thresholds())

	rules := cfg.TaskRules()
	require.Len(t, rules.NonWritten, 1)
	assert.Equal(t, "sing", rules.NonWritten[0].Name)
	assert.Equal(t, classifier.DefaultTaskRules().AnswerCues, rules.AnswerCues)

	nr := cfg.NormalizerRules()
	assert.Equal(t, []string{"^(修辞手法|描写手法)：.+$"}, nr.DropLinePatterns)
	assert.False(t, nr.ClearOrphanDynasty)
	assert.Equal(t, "范例：", nr.ExamplePrefix)
	assert.Equal(t, []string{"佚名", "无名氏"}, nr.PlaceholderAuthors)
	assert.Equal(t, []normalizer.Replacement{{From: "（节选，", To: "（节选·"}}, nr.TitleReplacements)
	assert.Equal(t, normalizer.DefaultRules().NoTranslationMarkers, nr.NoTranslationMarkers)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MR_PROCESSOR_WORKERS", "7")
	t.Setenv("MR_REPORT_FORMAT", "markdown")
	t.Setenv("MR_INPUT", "/data/corpus")
	t.Setenv("MR_DRY_RUN", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Processor.Workers)
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.Equal(t, "/data/corpus", cfg.Input.Dir)
	assert.True(t, cfg.Processor.DryRun)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.CodeOf(err))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty dir", func(c *Config) { c.Input.Dir = "" }},
		{"no include", func(c *Config) { c.Input.Include = nil }},
		{"negative workers", func(c *Config) { c.Processor.Workers = -1 }},
		{"unknown format", func(c *Config) { c.Report.Format = "html" }},
		{"persist without path", func(c *Config) { c.Report.Persist = true; c.Report.DatabasePath = "" }},
		{"negative slack", func(c *Config) { c.Annotation.MinSyllableSlack = -1 }},
		{"ratio above one", func(c *Config) { c.Annotation.SyllableSlackRatio = 1.5 }},
		{"empty example prefix", func(c *Config) { c.Normalizer.ExamplePrefix = "" }},
		{"bad drop pattern", func(c *Config) { c.Normalizer.DropLinePatterns = []string{"("} }},
		{"bad author pattern", func(c *Config) { c.Normalizer.PlaceholderAuthorPatterns = []string{"《("} }},
		{"bad rule pattern", func(c *Config) {
			c.Tasks.NonWritten = append(c.Tasks.NonWritten, NonWrittenRuleConfig{Name: "x", Patterns: []string{"["}})
		}},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
		})
	}
}
