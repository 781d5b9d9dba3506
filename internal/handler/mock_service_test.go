package handler

import (
	"context"
	"time"

	"pdf-slide-synth/internal/domain"
	apperrors "pdf-slide-synth/pkg/errors"
)

// MockConversionService keeps jobs in memory and records the last request.
type MockConversionService struct {
	jobs       map[string]*domain.ConversionJob
	archived   map[string]bool
	convertErr error
	exportErr  error

	lastUserID  string
	lastDoc     domain.UploadedDocument
	lastVariant string
	lastFormat  domain.ExportFormat
}

func NewMockConversionService() *MockConversionService {
	return &MockConversionService{
		jobs:     make(map[string]*domain.ConversionJob),
		archived: make(map[string]bool),
	}
}

func (m *MockConversionService) addJob(userID, id string) {
	m.jobs[id] = &domain.ConversionJob{
		ID:     id,
		UserID: userID,
		Title:  "Deck " + id,
		Status: domain.JobStatusCompleted,
		Variants: []domain.SlideDeckVariant{
			domain.StandardVariants[0].NewVariant([]domain.SlideRecord{{Title: "Intro", Bullets: []string{"one"}}}),
			domain.StandardVariants[1].NewVariant([]domain.SlideRecord{{Title: "Intro", Bullets: []string{"one"}}}),
		},
	}
}

func (m *MockConversionService) find(userID, jobID string) (*domain.ConversionJob, error) {
	job, ok := m.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil, apperrors.NewNotFoundError("Conversion not found")
	}
	return job, nil
}

func (m *MockConversionService) Convert(ctx context.Context, userID string, doc domain.UploadedDocument, hooks domain.ConvertHooks) (*domain.ConversionJob, error) {
	m.lastUserID = userID
	m.lastDoc = doc
	if m.convertErr != nil {
		return nil, m.convertErr
	}
	m.addJob(userID, "job-new")
	return m.jobs["job-new"], nil
}

func (m *MockConversionService) Export(ctx context.Context, userID, jobID, variantID string, format domain.ExportFormat) (*domain.RenderedFile, error) {
	m.lastVariant = variantID
	m.lastFormat = format
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	if _, err := m.find(userID, jobID); err != nil {
		return nil, err
	}
	return &domain.RenderedFile{FileName: "Deck_executive." + format.Extension(), ContentType: "application/test", Data: []byte("deck-bytes")}, nil
}

func (m *MockConversionService) ExportAll(ctx context.Context, userID, jobID string, format domain.ExportFormat) ([]*domain.RenderedFile, error) {
	job, err := m.find(userID, jobID)
	if err != nil {
		return nil, err
	}
	var files []*domain.RenderedFile
	for _, v := range job.Variants {
		files = append(files, &domain.RenderedFile{FileName: "Deck_" + string(v.Theme) + "." + format.Extension(), Data: []byte(v.ID)})
	}
	return files, nil
}

func (m *MockConversionService) GetJob(ctx context.Context, userID, jobID string) (*domain.ConversionJob, error) {
	return m.find(userID, jobID)
}

func (m *MockConversionService) list(userID string, archived bool) []domain.ConversionJob {
	var out []domain.ConversionJob
	for id, job := range m.jobs {
		if job.UserID == userID && m.archived[id] == archived {
			out = append(out, *job)
		}
	}
	return out
}

func (m *MockConversionService) ListJobs(ctx context.Context, userID string) ([]domain.ConversionJob, error) {
	return m.list(userID, false), nil
}

func (m *MockConversionService) ListArchive(ctx context.Context, userID string) ([]domain.ConversionJob, error) {
	return m.list(userID, true), nil
}

func (m *MockConversionService) ArchiveJob(ctx context.Context, userID, jobID string) error {
	if _, err := m.find(userID, jobID); err != nil || m.archived[jobID] {
		return apperrors.NewNotFoundError("Conversion not found")
	}
	m.archived[jobID] = true
	return nil
}

func (m *MockConversionService) DeleteJob(ctx context.Context, userID, jobID string) error {
	if _, err := m.find(userID, jobID); err != nil {
		return err
	}
	delete(m.jobs, jobID)
	delete(m.archived, jobID)
	return nil
}

func (m *MockConversionService) Limits(ctx context.Context, userID string, action domain.ActionKind) (*domain.RateLimitStatus, error) {
	limit := domain.DefaultRateLimits[action]
	return &domain.RateLimitStatus{
		Action:    action,
		Limit:     limit.MaxRequests,
		Remaining: limit.MaxRequests - 1,
		ResetAt:   time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC),
	}, nil
}
