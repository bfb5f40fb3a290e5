package models

import "time"

// RescrapeJobStatus is the lifecycle state of a scheduled rescrape.
type RescrapeJobStatus string

const (
	RescrapeJobPending RescrapeJobStatus = "pending"
	RescrapeJobRunning RescrapeJobStatus = "running"
	RescrapeJobDone    RescrapeJobStatus = "done"
	RescrapeJobFailed  RescrapeJobStatus = "failed"
)

// RescrapeJob is the supplemented background-sweep unit: one row per code
// the scheduler decided is stale enough to re-crawl. It is additive to the
// spec's data model and does not affect VideoRecord's invariants.
type RescrapeJob struct {
	ID          ULID              `gorm:"primarykey;type:varchar(26)" json:"id"`
	Code        Code              `gorm:"type:varchar(64);index" json:"code"`
	Status      RescrapeJobStatus `gorm:"type:varchar(16);index" json:"status"`
	Attempts    int               `json:"attempts"`
	LastError   string            `json:"last_error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// TableName pins the GORM table name independent of struct renames.
func (RescrapeJob) TableName() string { return "rescrape_jobs" }
