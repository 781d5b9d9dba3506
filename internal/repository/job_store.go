package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"pdf-slide-synth/internal/domain"
)

const (
	recentKeyPrefix  = "pdfslider_feed:"
	archiveKeyPrefix = "pdfslider_archive:"
)

// KVJobStore keeps each user's recent and archived jobs as two JSON lists.
type KVJobStore struct {
	kv     domain.KVStore
	logger domain.Logger

	// mu serializes read-modify-write cycles on the lists.
	mu sync.Mutex
}

func NewJobStore(kv domain.KVStore, logger domain.Logger) *KVJobStore {
	return &KVJobStore{kv: kv, logger: logger}
}

func recentKey(userID string) string  { return recentKeyPrefix + userID }
func archiveKey(userID string) string { return archiveKeyPrefix + userID }

func (s *KVJobStore) LoadRecent(ctx context.Context, userID string) ([]domain.ConversionJob, error) {
	return s.load(ctx, recentKey(userID))
}

func (s *KVJobStore) LoadArchive(ctx context.Context, userID string) ([]domain.ConversionJob, error) {
	return s.load(ctx, archiveKey(userID))
}

func (s *KVJobStore) SaveRecent(ctx context.Context, userID string, jobs []domain.ConversionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, recentKey(userID), jobs)
}

func (s *KVJobStore) SaveArchive(ctx context.Context, userID string, jobs []domain.ConversionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, archiveKey(userID), jobs)
}

// AddRecent prepends job to the recent list.
func (s *KVJobStore) AddRecent(ctx context.Context, userID string, job domain.ConversionJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load(ctx, recentKey(userID))
	if err != nil {
		return err
	}
	return s.save(ctx, recentKey(userID), append([]domain.ConversionJob{job}, jobs...))
}

// Find looks in the recent list first, then the archive.
func (s *KVJobStore) Find(ctx context.Context, userID, jobID string) (*domain.ConversionJob, error) {
	for _, key := range []string{recentKey(userID), archiveKey(userID)} {
		jobs, err := s.load(ctx, key)
		if err != nil {
			return nil, err
		}
		if i := indexOf(jobs, jobID); i >= 0 {
			job := jobs[i]
			return &job, nil
		}
	}
	return nil, domain.ErrJobNotFound
}

// Archive moves a job from the recent list to the front of the archive.
func (s *KVJobStore) Archive(ctx context.Context, userID, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent, err := s.load(ctx, recentKey(userID))
	if err != nil {
		return err
	}
	i := indexOf(recent, jobID)
	if i < 0 {
		return domain.ErrJobNotFound
	}
	job := recent[i]

	archive, err := s.load(ctx, archiveKey(userID))
	if err != nil {
		return err
	}
	if err := s.save(ctx, archiveKey(userID), append([]domain.ConversionJob{job}, archive...)); err != nil {
		return err
	}
	return s.save(ctx, recentKey(userID), removeAt(recent, i))
}

// Delete removes a job from the archive, or from the recent list when it is
// not archived.
func (s *KVJobStore) Delete(ctx context.Context, userID, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{archiveKey(userID), recentKey(userID)} {
		jobs, err := s.load(ctx, key)
		if err != nil {
			return err
		}
		if i := indexOf(jobs, jobID); i >= 0 {
			return s.save(ctx, key, removeAt(jobs, i))
		}
	}
	return domain.ErrJobNotFound
}

func (s *KVJobStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, recentKey(userID)); err != nil {
		return fmt.Errorf("clear recent jobs: %w", err)
	}
	if err := s.kv.Delete(ctx, archiveKey(userID)); err != nil {
		return fmt.Errorf("clear archived jobs: %w", err)
	}
	return nil
}

// load returns an empty list for a missing key. Corrupted data is removed
// so the next write starts clean.
func (s *KVJobStore) load(ctx context.Context, key string) ([]domain.ConversionJob, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return []domain.ConversionJob{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var jobs []domain.ConversionJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		s.logger.Error("Corrupted job list, clearing", err, "key", key)
		if delErr := s.kv.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to clear corrupted job list", "key", key, "error", delErr)
		}
		return []domain.ConversionJob{}, nil
	}
	if jobs == nil {
		jobs = []domain.ConversionJob{}
	}
	return jobs, nil
}

func (s *KVJobStore) save(ctx context.Context, key string, jobs []domain.ConversionJob) error {
	if jobs == nil {
		jobs = []domain.ConversionJob{}
	}
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func indexOf(jobs []domain.ConversionJob, id string) int {
	for i := range jobs {
		if jobs[i].ID == id {
			return i
		}
	}
	return -1
}

func removeAt(jobs []domain.ConversionJob, i int) []domain.ConversionJob {
	out := make([]domain.ConversionJob, 0, len(jobs)-1)
	out = append(out, jobs[:i]...)
	return append(out, jobs[i+1:]...)
}
