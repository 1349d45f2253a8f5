// Package report collects the changes made by a normalization run and renders
// the end-of-run summary.
package report

import (
	"fmt"
	"slices"
)

// Status tells what happened to a field.
type Status int

const (
	// StatusRepaired marks an annotation field rewritten by the repairer.
	StatusRepaired Status = iota
	// StatusFlagged marks an unresolvable annotation left for manual review.
	StatusFlagged
	// StatusNotice marks a tone variant that was kept as is.
	StatusNotice
	// StatusStructural marks a content rule: title cleanup, task relocation,
	// answer clearing and similar.
	StatusStructural
)

func (s Status) String() string {
	switch s {
	case StatusRepaired:
		return "repaired"
	case StatusFlagged:
		return "flagged"
	case StatusNotice:
		return "notice"
	case StatusStructural:
		return "structural"
	default:
		return "unknown"
	}
}

// Statuses lists every status in declaration order.
var Statuses = []Status{StatusRepaired, StatusFlagged, StatusNotice, StatusStructural}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for _, st := range Statuses {
		if st.String() == name {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// Change records one field touched or flagged during normalization.
type Change struct {
	File     string
	Location string
	Field    string
	Before   string
	After    string
	Kind     string
	Status   Status
}

// Modified reports whether the change rewrote the document.
func (c Change) Modified() bool {
	return c.Status == StatusRepaired || c.Status == StatusStructural
}

// Sink receives change records.
type Sink interface {
	Record(c Change)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(c Change)

// Record calls f(c).
func (f SinkFunc) Record(c Change) { f(c) }

// Discard drops every record.
var Discard Sink = SinkFunc(func(Change) {})

// Collector keeps changes in arrival order. It is meant to be owned by a
// single worker and is not safe for concurrent use.
type Collector struct {
	file    string
	changes []Change
}

// NewCollector returns a collector that stamps file on every record lacking one.
func NewCollector(file string) *Collector {
	return &Collector{file: file}
}

// Record appends c.
func (c *Collector) Record(ch Change) {
	if ch.File == "" {
		ch.File = c.file
	}
	c.changes = append(c.changes, ch)
}

// Changes returns a copy of the collected records.
func (c *Collector) Changes() []Change {
	return slices.Clone(c.changes)
}

// Len returns the number of records.
func (c *Collector) Len() int {
	return len(c.changes)
}

// Modified reports whether any record rewrote the document.
func (c *Collector) Modified() bool {
	return slices.ContainsFunc(c.changes, Change.Modified)
}

// Failure is a file skipped because it could not be read, decoded or written.
type Failure struct {
	File  string
	Code  string
	Error string
}

// Summary aggregates a whole run.
type Summary struct {
	FilesProcessed int
	FilesChanged   int
	FilesFailed    int
	Repaired       int
	Flagged        int
	Notices        int
	Structural     int
	DryRun         bool

	Changes  []Change
	Failures []Failure
}

// AddFile accounts for one successfully processed file.
func (s *Summary) AddFile(changes []Change, modified bool) {
	s.FilesProcessed++
	if modified {
		s.FilesChanged++
	}
	for _, c := range changes {
		switch c.Status {
		case StatusRepaired:
			s.Repaired++
		case StatusFlagged:
			s.Flagged++
		case StatusNotice:
			s.Notices++
		case StatusStructural:
			s.Structural++
		}
	}
	s.Changes = append(s.Changes, changes...)
}

// AddFailure accounts for one skipped file.
func (s *Summary) AddFailure(f Failure) {
	s.FilesFailed++
	s.Failures = append(s.Failures, f)
}

// Filter returns the changes with the given statuses.
func (s *Summary) Filter(statuses ...Status) []Change {
	var out []Change
	for _, c := range s.Changes {
		if slices.Contains(statuses, c.Status) {
			out = append(out, c)
		}
	}
	return out
}
