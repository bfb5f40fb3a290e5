package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmylchreest/jav-meta/internal/config"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	stale      []models.Code
	jobs       map[models.ULID]*models.RescrapeJob
	failedIDs  []models.ULID
	doneIDs    []models.ULID
	runningIDs []models.ULID
}

func newFakeStore(stale ...models.Code) *fakeStore {
	return &fakeStore{stale: stale, jobs: make(map[models.ULID]*models.RescrapeJob)}
}

func (f *fakeStore) ListStaleCodes(_ context.Context, _ int64) ([]models.Code, error) {
	return f.stale, nil
}

func (f *fakeStore) CreateJob(_ context.Context, code models.Code) (*models.RescrapeJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := &models.RescrapeJob{ID: models.NewULID(), Code: code, Status: models.RescrapeJobPending}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeStore) MarkJobRunning(_ context.Context, id models.ULID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runningIDs = append(f.runningIDs, id)
	return nil
}

func (f *fakeStore) MarkJobDone(_ context.Context, id models.ULID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doneIDs = append(f.doneIDs, id)
	return nil
}

func (f *fakeStore) MarkJobFailed(_ context.Context, id models.ULID, _ error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failedIDs = append(f.failedIDs, id)
	return nil
}

type fakeRescraper struct {
	mu      sync.Mutex
	calls   []models.Code
	failFor map[models.Code]bool
}

func (f *fakeRescraper) RescrapeCode(_ context.Context, code models.Code) (*models.VideoInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, code)
	if f.failFor[code] {
		return nil, errors.New("boom")
	}
	return &models.VideoInfo{Code: code}, nil
}

func TestScheduler_RunSweep_MarksJobsDone(t *testing.T) {
	store := newFakeStore("SSIS-001", "SSIS-002")
	rescraper := &fakeRescraper{}
	s := New(config.SchedulerConfig{
		Enabled:                true,
		MaxConcurrentRescrapes: 2,
		StaleAfter:             time.Hour,
	}, store, rescraper, nil)

	s.runSweep(context.Background())

	assert.Len(t, rescraper.calls, 2)
	assert.Len(t, store.doneIDs, 2)
	assert.Empty(t, store.failedIDs)
}

func TestScheduler_RunSweep_FailureDoesNotBlockOthers(t *testing.T) {
	store := newFakeStore("SSIS-001", "SSIS-002")
	rescraper := &fakeRescraper{failFor: map[models.Code]bool{"SSIS-001": true}}
	s := New(config.SchedulerConfig{
		Enabled:                true,
		MaxConcurrentRescrapes: 1,
		StaleAfter:             time.Hour,
	}, store, rescraper, nil)

	s.runSweep(context.Background())

	assert.Len(t, store.failedIDs, 1)
	assert.Len(t, store.doneIDs, 1)
}

func TestScheduler_RunSweep_NoStaleCodesIsNoop(t *testing.T) {
	store := newFakeStore()
	rescraper := &fakeRescraper{}
	s := New(config.SchedulerConfig{Enabled: true}, store, rescraper, nil)

	s.runSweep(context.Background())

	assert.Empty(t, rescraper.calls)
}

func TestScheduler_Start_DisabledIsNoop(t *testing.T) {
	store := newFakeStore("SSIS-001")
	rescraper := &fakeRescraper{}
	s := New(config.SchedulerConfig{Enabled: false}, store, rescraper, nil)

	require.NoError(t, s.Start(context.Background()))
}
