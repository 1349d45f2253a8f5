package database

import (
	"time"

	"gorm.io/datatypes"
)

// Run is one invocation of the normalizer over a corpus directory.
type Run struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	InputDir       string         `gorm:"not null"                 json:"input_dir"`
	DryRun         bool           `gorm:"not null;default:false"   json:"dry_run"`
	FilesProcessed int            `                                json:"files_processed"`
	FilesChanged   int            `                                json:"files_changed"`
	FilesFailed    int            `                                json:"files_failed"`
	Repaired       int            `                                json:"repaired"`
	Flagged        int            `                                json:"flagged"`
	Notices        int            `                                json:"notices"`
	Structural     int            `                                json:"structural"`
	Rules          datatypes.JSON `gorm:"type:json"                json:"rules"`           // snapshot of the effective rule set
	StartedAt      time.Time      `gorm:"not null;index"           json:"started_at"`
	FinishedAt     *time.Time     `                                json:"finished_at,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"           json:"created_at"`
}

// TableName specifies the table name for Run
func (Run) TableName() string {
	return "runs"
}

// ChangeRecord is a persisted report.Change.
type ChangeRecord struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID    int64  `gorm:"not null;index"           json:"run_id"`
	Run      *Run   `gorm:"foreignKey:RunID"         json:"-"`
	File     string `gorm:"not null;index"           json:"file"`
	Location string `gorm:"not null"                 json:"location"`
	Field    string `gorm:"not null"                 json:"field"`
	Before   string `                                json:"before"`
	After    string `                                json:"after"`
	Kind     string `gorm:"not null;index"           json:"kind"`
	Status   string `gorm:"not null;index"           json:"status"`
}

// TableName specifies the table name for ChangeRecord
func (ChangeRecord) TableName() string {
	return "changes"
}

// FailureRecord is a file the run had to skip.
type FailureRecord struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID int64  `gorm:"not null;index"           json:"run_id"`
	Run   *Run   `gorm:"foreignKey:RunID"         json:"-"`
	File  string `gorm:"not null"                 json:"file"`
	Code  string `gorm:"not null"                 json:"code"`
	Error string `                                json:"error"`
}

// TableName specifies the table name for FailureRecord
func (FailureRecord) TableName() string {
	return "failures"
}
