package database

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/palemoky/morning-reading/internal/report"
)

const changeBatchSize = 500

// RepositoryInterface defines the interface for repository operations
type RepositoryInterface interface {
	SaveRun(inputDir string, startedAt time.Time, rules any, s *report.Summary) (*Run, error)
	ListRuns(limit, offset int) ([]Run, error)
	GetRun(id int64) (*Run, error)
	ListChanges(runID int64, statuses ...report.Status) ([]ChangeRecord, error)
	ListFailures(runID int64) ([]FailureRecord, error)
}

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveRun stores a finished run with all of its changes and failures in one
// transaction. rules is snapshotted as JSON; nil stores an empty object.
func (r *Repository) SaveRun(inputDir string, startedAt time.Time, rules any, s *report.Summary) (*Run, error) {
	snapshot := datatypes.JSON("{}")
	if rules != nil {
		data, err := json.Marshal(rules)
		if err != nil {
			return nil, fmt.Errorf("failed to encode rules: %w", err)
		}
		snapshot = datatypes.JSON(data)
	}

	finished := time.Now()
	run := &Run{
		InputDir:       inputDir,
		DryRun:         s.DryRun,
		FilesProcessed: s.FilesProcessed,
		FilesChanged:   s.FilesChanged,
		FilesFailed:    s.FilesFailed,
		Repaired:       s.Repaired,
		Flagged:        s.Flagged,
		Notices:        s.Notices,
		Structural:     s.Structural,
		Rules:          snapshot,
		StartedAt:      startedAt,
		FinishedAt:     &finished,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		if len(s.Changes) > 0 {
			records := make([]ChangeRecord, 0, len(s.Changes))
			for _, c := range s.Changes {
				records = append(records, ChangeRecord{
					RunID:    run.ID,
					File:     c.File,
					Location: c.Location,
					Field:    c.Field,
					Before:   c.Before,
					After:    c.After,
					Kind:     c.Kind,
					Status:   c.Status.String(),
				})
			}
			if err := tx.CreateInBatches(&records, changeBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert changes: %w", err)
			}
		}

		if len(s.Failures) > 0 {
			records := make([]FailureRecord, 0, len(s.Failures))
			for _, f := range s.Failures {
				records = append(records, FailureRecord{
					RunID: run.ID,
					File:  f.File,
					Code:  f.Code,
					Error: f.Error,
				})
			}
			if err := tx.Create(&records).Error; err != nil {
				return fmt.Errorf("failed to insert failures: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first.
func (r *Repository) ListRuns(limit, offset int) ([]Run, error) {
	var runs []Run
	err := r.db.Order("started_at DESC, id DESC").Limit(limit).Offset(offset).Find(&runs).Error
	return runs, err
}

// GetRun retrieves a run by ID
func (r *Repository) GetRun(id int64) (*Run, error) {
	var run Run
	if err := r.db.First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListChanges returns the changes of a run in recording order, optionally
// restricted to the given statuses.
func (r *Repository) ListChanges(runID int64, statuses ...report.Status) ([]ChangeRecord, error) {
	query := r.db.Where("run_id = ?", runID)
	if len(statuses) > 0 {
		names := make([]string, 0, len(statuses))
		for _, st := range statuses {
			names = append(names, st.String())
		}
		query = query.Where("status IN ?", names)
	}

	var changes []ChangeRecord
	err := query.Order("id").Find(&changes).Error
	return changes, err
}

// ListFailures returns the skipped files of a run.
func (r *Repository) ListFailures(runID int64) ([]FailureRecord, error) {
	var failures []FailureRecord
	err := r.db.Where("run_id = ?", runID).Order("id").Find(&failures).Error
	return failures, err
}
