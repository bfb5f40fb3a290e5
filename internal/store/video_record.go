package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmylchreest/jav-meta/internal/models"
	"gorm.io/gorm"
)

// videoInfoRecord is the GORM-mapped row for the single videos table
// described in the spec's external-interfaces section. Info is stored as a
// JSON blob rather than normalized columns: the spec treats VideoInfo as an
// opaque unit owned by the merge accumulator, and a single TEXT column keeps
// upsert/read-modify-write semantics trivial to reason about.
type videoInfoRecord struct {
	Code         string `gorm:"column:code;primaryKey;type:varchar(64)"`
	Info         []byte `gorm:"column:info;type:blob"` // JSON-encoded models.VideoInfo, nullable
	DownloadedAt *int64 `gorm:"column:downloaded_at"`
	UpdatedAt    int64  `gorm:"column:updated_at;index"` // epoch seconds of the last successful crawl write
}

func (videoInfoRecord) TableName() string { return "videos" }

// Store is the persistence layer (PS): a single-table SQLite store for
// VideoRecord, keyed by code. Per the spec, the connection sits behind a
// single mutex for the whole read-modify-write of upsert and markDownloaded,
// so concurrent callers never race on the same row.
type Store struct {
	db *DB
	mu sync.Mutex
}

// NewStore wraps db, running AutoMigrate for the videos table and the
// supplemented rescrape_jobs table.
func NewStore(db *DB) (*Store, error) {
	if err := db.AutoMigrate(&videoInfoRecord{}, &models.RescrapeJob{}); err != nil {
		return nil, fmt.Errorf("auto-migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// FindByCode runs a parameterized select for code, returning
// models.ErrNotFound if no row exists.
func (s *Store) FindByCode(ctx context.Context, code models.Code) (*models.VideoRecord, error) {
	var row videoInfoRecord
	err := s.db.WithContext(ctx).Where("code = ?", string(code)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "findByCode", Err: err}
	}
	return rowToRecord(row)
}

// Upsert writes info for its code: if a row exists, only its info and
// updated_at columns are updated (downloaded_at is preserved); otherwise a new row is inserted with
// downloaded_at left null. The whole read-modify-write is serialized behind
// Store.mu, matching the spec's single-guarded-connection rule.
func (s *Store) Upsert(ctx context.Context, info models.VideoInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(info)
	if err != nil {
		return &models.PersistenceError{Op: "upsert", Err: fmt.Errorf("marshaling info: %w", err)}
	}

	now := time.Now().Unix()

	var existing videoInfoRecord
	err = s.db.WithContext(ctx).Where("code = ?", string(info.Code)).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := videoInfoRecord{Code: string(info.Code), Info: payload, UpdatedAt: now}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return &models.PersistenceError{Op: "upsert.insert", Err: err}
		}
		return nil
	case err != nil:
		return &models.PersistenceError{Op: "upsert.lookup", Err: err}
	default:
		existing.Info = payload
		if err := s.db.WithContext(ctx).Model(&videoInfoRecord{}).
			Where("code = ?", string(info.Code)).
			Updates(map[string]any{"info": payload, "updated_at": now}).Error; err != nil {
			return &models.PersistenceError{Op: "upsert.update", Err: err}
		}
		return nil
	}
}

// ListStaleCodes returns every code whose info was last written before
// olderThanEpoch, for the supplemented scheduler's rescrape sweep (§4.11).
// Rows that have never been crawled (info still null) are excluded — there
// is nothing for the scheduler to refresh yet.
func (s *Store) ListStaleCodes(ctx context.Context, olderThanEpoch int64) ([]models.Code, error) {
	var rows []videoInfoRecord
	err := s.db.WithContext(ctx).
		Where("info IS NOT NULL AND updated_at < ?", olderThanEpoch).
		Find(&rows).Error
	if err != nil {
		return nil, &models.PersistenceError{Op: "listStaleCodes", Err: err}
	}
	codes := make([]models.Code, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, models.Code(row.Code))
	}
	return codes, nil
}

// MarkDownloaded sets downloaded_at for code following first-write-wins
// semantics: a missing row is inserted with only downloaded_at set; an
// existing row with a null downloaded_at is updated; an existing row with a
// non-null downloaded_at is left untouched.
func (s *Store) MarkDownloaded(ctx context.Context, code models.Code, whenEpoch int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing videoInfoRecord
	err := s.db.WithContext(ctx).Where("code = ?", string(code)).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := videoInfoRecord{Code: string(code), DownloadedAt: &whenEpoch}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return &models.PersistenceError{Op: "markDownloaded.insert", Err: err}
		}
		return nil
	case err != nil:
		return &models.PersistenceError{Op: "markDownloaded.lookup", Err: err}
	case existing.DownloadedAt != nil:
		return nil
	default:
		if err := s.db.WithContext(ctx).Model(&videoInfoRecord{}).
			Where("code = ?", string(code)).
			Update("downloaded_at", whenEpoch).Error; err != nil {
			return &models.PersistenceError{Op: "markDownloaded.update", Err: err}
		}
		return nil
	}
}

func rowToRecord(row videoInfoRecord) (*models.VideoRecord, error) {
	rec := &models.VideoRecord{
		Code:         models.Code(row.Code),
		DownloadedAt: row.DownloadedAt,
	}
	if len(row.Info) > 0 {
		var info models.VideoInfo
		if err := json.Unmarshal(row.Info, &info); err != nil {
			return nil, &models.PersistenceError{Op: "decodeInfo", Err: err}
		}
		rec.Info = &info
	}
	return rec, nil
}
