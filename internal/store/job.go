package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jmylchreest/jav-meta/internal/models"
)

// CreateJob inserts a pending RescrapeJob row for code, for the
// supplemented background sweep (§4.11). Job bookkeeping lives in its own
// table and is not covered by Store.mu: a failed job never touches
// VideoRecord, so it carries none of PS's read-modify-write hazard.
func (s *Store) CreateJob(ctx context.Context, code models.Code) (*models.RescrapeJob, error) {
	job := &models.RescrapeJob{
		ID:        models.NewULID(),
		Code:      code,
		Status:    models.RescrapeJobPending,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, &models.PersistenceError{Op: "createJob", Err: err}
	}
	return job, nil
}

// MarkJobRunning records that job has started.
func (s *Store) MarkJobRunning(ctx context.Context, id models.ULID) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&models.RescrapeJob{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{"status": models.RescrapeJobRunning, "started_at": now, "attempts": gorm.Expr("attempts + 1")}).Error
	if err != nil {
		return &models.PersistenceError{Op: "markJobRunning", Err: err}
	}
	return nil
}

// MarkJobDone records a successful completion.
func (s *Store) MarkJobDone(ctx context.Context, id models.ULID) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&models.RescrapeJob{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{"status": models.RescrapeJobDone, "completed_at": now}).Error
	if err != nil {
		return &models.PersistenceError{Op: "markJobDone", Err: err}
	}
	return nil
}

// MarkJobFailed records a failure without touching VideoRecord.
func (s *Store) MarkJobFailed(ctx context.Context, id models.ULID, cause error) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&models.RescrapeJob{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{"status": models.RescrapeJobFailed, "completed_at": now, "last_error": fmt.Sprintf("%v", cause)}).Error
	if err != nil {
		return &models.PersistenceError{Op: "markJobFailed", Err: err}
	}
	return nil
}
