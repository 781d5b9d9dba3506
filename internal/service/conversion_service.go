package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"pdf-slide-synth/internal/domain"
	apperrors "pdf-slide-synth/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Conversion stages reported through ConvertHooks.OnStage.
const (
	StageValidating = "Validating file..."
	StageExtracting = "Extracting text..."
	StageConverting = "Converting pages to slides..."
	StageBuilding   = "Building presentation variants..."
	StageFinalizing = "Finalizing presentation..."
	StageComplete   = "Complete!"
)

const msgNoSlidesToExport = "No slides found to export"

var sourceExtension = regexp.MustCompile(`(?i)\.(pdf|docx)$`)

// ConversionService drives validation, extraction, synthesis, persistence
// and export for one user scope at a time.
type ConversionService struct {
	validator   domain.Validator
	extractor   domain.Extractor
	synthesizer domain.Synthesizer
	renderer    domain.Renderer
	jobs        domain.JobStore
	limiter     domain.RateLimiter
	logger      domain.Logger

	imageBaseURL string
	now          func() time.Time
}

// ConversionOption configures a ConversionService.
type ConversionOption func(*ConversionService)

// WithThumbnailBaseURL sets the image service used for job thumbnails.
func WithThumbnailBaseURL(url string) ConversionOption {
	return func(s *ConversionService) { s.imageBaseURL = url }
}

// WithConversionClock replaces the time source for job timestamps.
func WithConversionClock(now func() time.Time) ConversionOption {
	return func(s *ConversionService) { s.now = now }
}

func NewConversionService(
	validator domain.Validator,
	extractor domain.Extractor,
	synthesizer domain.Synthesizer,
	renderer domain.Renderer,
	jobs domain.JobStore,
	limiter domain.RateLimiter,
	logger domain.Logger,
	opts ...ConversionOption,
) *ConversionService {
	s := &ConversionService{
		validator:   validator,
		extractor:   extractor,
		synthesizer: synthesizer,
		renderer:    renderer,
		jobs:        jobs,
		limiter:     limiter,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ConversionService) Convert(ctx context.Context, userID string, doc domain.UploadedDocument, hooks domain.ConvertHooks) (*domain.ConversionJob, error) {
	stage := hooks.OnStage
	if stage == nil {
		stage = func(int, string) {}
	}

	if err := EnforceLimit(ctx, s.limiter, userID, domain.ActionConversion); err != nil {
		return nil, err
	}
	s.logger.Info("Starting document conversion", "user", userID, "file", doc.FileName, "size", doc.Size)

	stage(5, StageValidating)
	if err := s.validator.Validate(doc); err != nil {
		s.logger.Warn("Upload rejected", "file", doc.FileName, "error", err)
		return nil, apperrors.Classify(err, "File validation failed")
	}

	stage(15, StageExtracting)
	extraction, err := s.extractor.ExtractPages(ctx, doc, hooks.OnPage)
	if err != nil {
		s.logger.Error("Extraction failed", err, "file", doc.FileName)
		return nil, apperrors.Classify(err, "Failed to process document")
	}

	stage(35, StageConverting)
	result, err := s.synthesizer.Synthesize(ctx, extraction.Pages)
	if err != nil {
		s.logger.Error("Synthesis failed", err, "file", doc.FileName)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewSynthesisError("Conversion was cancelled", err)
		}
		return nil, apperrors.Classify(err, "Failed to generate slides")
	}

	stage(70, StageBuilding)
	job := s.buildJob(userID, doc, extraction, result)

	stage(90, StageFinalizing)
	if err := s.jobs.AddRecent(ctx, userID, job); err != nil {
		s.logger.Error("Failed to save job", err, "job", job.ID)
		return nil, apperrors.NewInternalError("Failed to save conversion", err)
	}

	stage(100, StageComplete)
	s.logger.Info("Document conversion completed",
		"job", job.ID,
		"pages", job.PageCount,
		"slides", job.SlideCount,
		"synthesis", job.Synthesis,
	)
	return &job, nil
}

func (s *ConversionService) buildJob(userID string, doc domain.UploadedDocument, extraction *domain.ExtractionResult, result *domain.SynthesisResult) domain.ConversionJob {
	fileName := SanitizeFileName(doc.FileName)
	title := sourceExtension.ReplaceAllString(fileName, "")
	if title == "" {
		title = defaultExportTitle
	}

	job := domain.ConversionJob{
		ID:               "job-" + uuid.NewString(),
		UserID:           userID,
		Title:            title,
		OriginalFileName: fileName,
		PageCount:        extraction.PageCount,
		Status:           domain.JobStatusCompleted,
		CreatedAt:        s.now().UTC(),
		Format:           domain.ExportFormatPPTX,
		FileSize:         domain.FormatFileSize(doc.Size),
		Source:           fileName,
		Synthesis:        result.Strategy,
		Variants:         result.Variants,
	}

	firstPrompt := ""
	if len(job.Variants) > 0 {
		job.SlideCount = len(job.Variants[0].Slides)
		if len(job.Variants[0].Slides) > 0 {
			firstPrompt = job.Variants[0].Slides[0].ImagePrompt
		}
	}
	job.ThumbnailURL = ThumbnailURL(s.imageBaseURL, firstPrompt)
	return job
}

// Export renders one variant of a stored job. An empty variantID picks the
// first variant.
func (s *ConversionService) Export(ctx context.Context, userID, jobID, variantID string, format domain.ExportFormat) (*domain.RenderedFile, error) {
	if err := EnforceLimit(ctx, s.limiter, userID, domain.ActionExport); err != nil {
		return nil, err
	}
	job, err := s.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	variant, ok := job.Variant(variantID)
	if !ok {
		return nil, apperrors.NewNotFoundError("Presentation variant not found")
	}
	return s.render(ctx, job, *variant, format)
}

// ExportAll renders every variant of a job concurrently. It counts as one
// export against the rate limit.
func (s *ConversionService) ExportAll(ctx context.Context, userID, jobID string, format domain.ExportFormat) ([]*domain.RenderedFile, error) {
	if err := EnforceLimit(ctx, s.limiter, userID, domain.ActionExport); err != nil {
		return nil, err
	}
	job, err := s.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	files := make([]*domain.RenderedFile, len(job.Variants))
	g, gctx := errgroup.WithContext(ctx)
	for i := range job.Variants {
		i := i
		g.Go(func() error {
			file, err := s.render(gctx, job, job.Variants[i], format)
			if err != nil {
				return err
			}
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *ConversionService) render(ctx context.Context, job *domain.ConversionJob, variant domain.SlideDeckVariant, format domain.ExportFormat) (*domain.RenderedFile, error) {
	if len(variant.Slides) == 0 {
		return nil, apperrors.NewRenderError(msgNoSlidesToExport, domain.ErrNoSlides)
	}

	file, err := s.renderer.Render(ctx, domain.RenderRequest{
		Variant:     variant,
		SourceTitle: job.Title,
		Format:      format,
	})
	if err != nil {
		s.logger.Error("Export failed", err, "job", job.ID, "variant", variant.ID, "format", format)
		return nil, apperrors.Classify(err, "Failed to export presentation")
	}
	s.logger.Info("Presentation exported", "job", job.ID, "variant", variant.ID, "file", file.FileName, "bytes", len(file.Data))
	return file, nil
}

func (s *ConversionService) GetJob(ctx context.Context, userID, jobID string) (*domain.ConversionJob, error) {
	job, err := s.jobs.Find(ctx, userID, jobID)
	if err != nil {
		return nil, storeError(err, "Failed to load conversion")
	}
	return job, nil
}

func (s *ConversionService) ListJobs(ctx context.Context, userID string) ([]domain.ConversionJob, error) {
	jobs, err := s.jobs.LoadRecent(ctx, userID)
	if err != nil {
		return nil, storeError(err, "Failed to load conversions")
	}
	return jobs, nil
}

func (s *ConversionService) ListArchive(ctx context.Context, userID string) ([]domain.ConversionJob, error) {
	jobs, err := s.jobs.LoadArchive(ctx, userID)
	if err != nil {
		return nil, storeError(err, "Failed to load archive")
	}
	return jobs, nil
}

func (s *ConversionService) ArchiveJob(ctx context.Context, userID, jobID string) error {
	if err := s.jobs.Archive(ctx, userID, jobID); err != nil {
		return storeError(err, "Failed to archive conversion")
	}
	s.logger.Info("Job archived", "user", userID, "job", jobID)
	return nil
}

func (s *ConversionService) DeleteJob(ctx context.Context, userID, jobID string) error {
	if err := s.jobs.Delete(ctx, userID, jobID); err != nil {
		return storeError(err, "Failed to delete conversion")
	}
	s.logger.Info("Job deleted", "user", userID, "job", jobID)
	return nil
}

// Limits reports the caller's quota for action. Without a limiter every
// action reports its default quota untouched.
func (s *ConversionService) Limits(ctx context.Context, userID string, action domain.ActionKind) (*domain.RateLimitStatus, error) {
	limit, ok := domain.DefaultRateLimits[action]
	if !ok {
		return nil, apperrors.NewValidationError("Unknown rate-limited action", string(action))
	}
	if s.limiter == nil {
		return &domain.RateLimitStatus{Action: action, Limit: limit.MaxRequests, Remaining: limit.MaxRequests, ResetAt: s.now()}, nil
	}
	st, err := s.limiter.Status(ctx, userID, action)
	if err != nil {
		return nil, apperrors.Classify(err, "Rate limiter unavailable")
	}
	return st, nil
}

func storeError(err error, message string) error {
	if errors.Is(err, domain.ErrJobNotFound) {
		return apperrors.NewNotFoundError("Conversion not found")
	}
	return apperrors.Classify(err, message)
}
