package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// Format selects how a summary is rendered.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatMarkdown:
		return Format(s), nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown report format %q (want table or markdown)", s)
}

// maxCell truncates long field values in the change log.
const maxCell = 40

var changeHeader = []any{"File", "Location", "Field", "Status", "Kind", "Before", "After"}

// Render writes the summary counts followed by the detailed change log and
// the list of failed files.
func Render(w io.Writer, s *Summary, format Format) error {
	newTable := func() *tablewriter.Table {
		if format == FormatMarkdown {
			return tablewriter.NewTable(w, tablewriter.WithRenderer(renderer.NewMarkdown()))
		}
		return tablewriter.NewWriter(w)
	}

	if format == FormatMarkdown {
		fmt.Fprintln(w, "## Summary")
		fmt.Fprintln(w)
	}

	counts := newTable()
	counts.Header("Metric", "Count")
	rows := [][]string{
		{"files processed", strconv.Itoa(s.FilesProcessed)},
		{"files changed", strconv.Itoa(s.FilesChanged)},
		{"files failed", strconv.Itoa(s.FilesFailed)},
		{"fields repaired", strconv.Itoa(s.Repaired)},
		{"fields flagged unresolvable", strconv.Itoa(s.Flagged)},
		{"tone-variant notices", strconv.Itoa(s.Notices)},
		{"structural changes", strconv.Itoa(s.Structural)},
	}
	for _, row := range rows {
		if err := counts.Append(row); err != nil {
			return err
		}
	}
	if err := counts.Render(); err != nil {
		return err
	}

	if s.DryRun {
		fmt.Fprintln(w, "\ndry run: no files were written")
	}

	if len(s.Changes) > 0 {
		if format == FormatMarkdown {
			fmt.Fprintln(w, "\n## Changes")
		}
		fmt.Fprintln(w)
		log := newTable()
		log.Header(changeHeader...)
		for _, c := range s.Changes {
			row := []string{
				c.File, c.Location, c.Field, c.Status.String(), c.Kind,
				truncate(c.Before, maxCell), truncate(c.After, maxCell),
			}
			if err := log.Append(row); err != nil {
				return err
			}
		}
		if err := log.Render(); err != nil {
			return err
		}
	}

	if len(s.Failures) > 0 {
		if format == FormatMarkdown {
			fmt.Fprintln(w, "\n## Failures")
		}
		fmt.Fprintln(w)
		failed := newTable()
		failed.Header("File", "Code", "Error")
		for _, f := range s.Failures {
			if err := failed.Append([]string{f.File, f.Code, f.Error}); err != nil {
				return err
			}
		}
		if err := failed.Render(); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
