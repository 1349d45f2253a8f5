package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/morning-reading/internal/config"
	"github.com/palemoky/morning-reading/internal/database"
	"github.com/palemoky/morning-reading/internal/report"
	"github.com/palemoky/morning-reading/internal/testutil"
)

const recitationLesson = `[
	{
		"week": 1,
		"day": 1,
		"content": [
			{
				"title": "春风（短文）",
				"titlePinyin": "chūn fēng duǎn wén",
				"type": "poem",
				"contentObject": [
					{
						"text": "春风吹",
						"pinyin": "chūn fēng"
					}
				],
				"task": "背诵这篇短文",
				"taskAnswer": "我会背"
			}
		]
	}
]`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func testCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	return cmd, &out
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Input.Dir = "corpus"
	cfg.Processor.Progress = false
	return cfg
}

func TestPinyinCommand(t *testing.T) {
	out, err := execute(t, "", "pinyin", "李白", "静夜思", "abc")
	require.NoError(t, err)
	assert.Equal(t, "lǐ bái\njìng yè sī\n\n", out)
}

func TestPinyinCommandStyles(t *testing.T) {
	out, err := execute(t, "", "pinyin", "--style", "plain", "守株待兔")
	require.NoError(t, err)
	assert.Equal(t, "shou zhu dai tu\n", out)

	out, err = execute(t, "", "pinyin", "-s", "abbr", "守株待兔")
	require.NoError(t, err)
	assert.Equal(t, "szdt\n", out)

	_, err = execute(t, "", "pinyin", "--style", "ipa", "守株待兔")
	require.Error(t, err)
}

func TestPinyinCommandStdin(t *testing.T) {
	out, err := execute(t, "春风\n小桥\n", "pinyin")
	require.NoError(t, err)
	assert.Equal(t, "chūn fēng\nxiǎo qiáo\n", out)
}

func TestPinyinCommandVerify(t *testing.T) {
	out, err := execute(t, "", "pinyin", "--verify", "chūn", "春风")
	require.NoError(t, err)
	assert.Contains(t, out, "kind:      prefix_of")
	assert.Contains(t, out, "repaired:  chūn fēng")

	out, err = execute(t, "", "pinyin", "--verify", "chun feng", "春风")
	require.NoError(t, err)
	assert.Contains(t, out, "kind:      tone_variant")
	assert.Contains(t, out, "no tone marks")

	_, err = execute(t, "", "pinyin", "--verify", "chūn", "春风", "小桥")
	require.Error(t, err)
}

func TestRunNormalize(t *testing.T) {
	fs := testutil.WriteFiles(t, map[string]string{"corpus/week1.txt": recitationLesson})
	cmd, out := testCommand()

	require.NoError(t, runNormalize(cmd, fs, testConfig(t), false))

	written := testutil.ReadFile(t, fs, "corpus/week1.txt")
	assert.NotEqual(t, recitationLesson, written)
	assert.Contains(t, written, `"title": "春风"`)
	assert.Contains(t, written, `"pinyin": "chūn fēng chuī"`)
	assert.Contains(t, written, `"taskAnswer": ""`)
	assert.Contains(t, out.String(), "files changed")
}

func TestRunCheck(t *testing.T) {
	fs := testutil.WriteFiles(t, map[string]string{"corpus/week1.txt": recitationLesson})
	cmd, _ := testCommand()

	cfg := testConfig(t)
	cfg.Processor.DryRun = true
	err := runNormalize(cmd, fs, cfg, true)
	require.ErrorIs(t, err, errWouldChange)
	assert.Equal(t, recitationLesson, testutil.ReadFile(t, fs, "corpus/week1.txt"))

	// once normalized, check passes
	cmd, _ = testCommand()
	require.NoError(t, runNormalize(cmd, fs, testConfig(t), false))
	cmd, out := testCommand()
	require.NoError(t, runNormalize(cmd, fs, cfg, true))
	assert.Contains(t, out.String(), "dry run")
}

func TestRunNormalizeMarkdown(t *testing.T) {
	fs := testutil.WriteFiles(t, map[string]string{"corpus/week1.txt": recitationLesson})
	cmd, out := testCommand()

	cfg := testConfig(t)
	cfg.Report.Format = "markdown"
	require.NoError(t, runNormalize(cmd, fs, cfg, false))
	assert.Contains(t, out.String(), "## Summary")
	assert.Contains(t, out.String(), "## Changes")
}

func TestRunNormalizePersist(t *testing.T) {
	fs := testutil.WriteFiles(t, map[string]string{
		"corpus/week1.txt": recitationLesson,
		"corpus/bad.txt":   "{}",
	})
	cmd, _ := testCommand()

	cfg := testConfig(t)
	cfg.Report.Persist = true
	cfg.Report.DatabasePath = filepath.Join(t.TempDir(), "history.db")
	require.NoError(t, runNormalize(cmd, fs, cfg, false))

	db, err := database.Open(cfg.Report.DatabasePath)
	require.NoError(t, err)
	defer db.Close()
	repo := database.NewRepository(db)

	runs, err := repo.ListRuns(10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "corpus", runs[0].InputDir)
	assert.Equal(t, 1, runs[0].FilesFailed)
	assert.Contains(t, string(runs[0].Rules), "ExamplePrefix")

	summary, err := loadRunSummary(repo, runs[0].ID, nil)
	require.NoError(t, err)
	assert.Equal(t, runs[0].Repaired, summary.Repaired)
	assert.Len(t, summary.Failures, 1)
	assert.NotEmpty(t, summary.Filter(report.StatusStructural))

	structural, err := loadRunSummary(repo, runs[0].ID, []report.Status{report.StatusStructural})
	require.NoError(t, err)
	for _, c := range structural.Changes {
		assert.Equal(t, report.StatusStructural, c.Status)
	}

	var listing bytes.Buffer
	require.NoError(t, renderRuns(&listing, runs))
	assert.Contains(t, listing.String(), "corpus")
}

func TestRenderRunsEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderRuns(&out, nil))
	assert.Equal(t, "no recorded runs\n", out.String())
}

func TestParseStatuses(t *testing.T) {
	got, err := parseStatuses([]string{"repaired", "flagged"})
	require.NoError(t, err)
	assert.Equal(t, []report.Status{report.StatusRepaired, report.StatusFlagged}, got)

	_, err = parseStatuses([]string{"fixed"})
	assert.Error(t, err)
}

func TestNormalizeFlagsApply(t *testing.T) {
	cmd := newNormalizeCmd(true)
	require.NoError(t, cmd.ParseFlags([]string{"-i", "lessons", "-w", "3", "--no-progress", "-f", "markdown"}))

	cfg := testConfig(t)
	cfg.Processor.Progress = true
	flags := normalizeFlags{input: "lessons", workers: 3, noProgress: true, format: "markdown"}
	flags.apply(cmd, cfg, true)

	assert.Equal(t, "lessons", cfg.Input.Dir)
	assert.Equal(t, 3, cfg.Processor.Workers)
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.False(t, cfg.Processor.Progress)
	assert.True(t, cfg.Processor.DryRun)
	assert.False(t, cfg.Report.Persist, "unset flags keep the configured value")
}
