package domain

import (
	"context"
	"time"
)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetLogFormat() string
	GetCORSAllowedOrigins() []string

	GetMaxFileSize() int64
	GetMinFileSize() int64
	GetSniffSignatures() bool
	GetValidatePDFStructure() bool

	GetPDFDecoder() string
	GetPageTimeout() time.Duration

	GetModelProvider() string
	GetModelName() string
	GetGeminiAPIKey() string
	GetVertexProjectID() string
	GetVertexLocation() string
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetSynthesisTimeout() time.Duration
	GetSynthesisMaxRetries() int
	GetSynthesisMaxChars() int

	GetImageBaseURL() string
	GetImageTimeout() time.Duration
	GetImageConcurrency() int

	GetRateLimitingEnabled() bool
	GetRateLimitBackend() string

	GetStoreBackend() string
	GetSQLitePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetFirestoreProjectID() string
}

// Validator gates uploads before any processing.
type Validator interface {
	Validate(doc UploadedDocument) error
}

// Extractor turns an upload into per-page plain text.
type Extractor interface {
	ExtractPages(ctx context.Context, doc UploadedDocument, progress ProgressFunc) (*ExtractionResult, error)
	ExtractAll(ctx context.Context, doc UploadedDocument) (string, error)
}

// PageDecoder is a page-oriented PDF decoding backend.
type PageDecoder interface {
	Open(data []byte) (PDFDocument, error)
}

// PDFDocument is an opened PDF. PageText is zero-indexed.
type PDFDocument interface {
	NumPage() int
	PageText(index int) (string, error)
	Close() error
}

// SynthesisResult is the output of a synthesizer run.
type SynthesisResult struct {
	Variants []SlideDeckVariant
	Strategy string
}

// Synthesizer converts page text into slide deck variants.
type Synthesizer interface {
	Synthesize(ctx context.Context, pages []string) (*SynthesisResult, error)
}

// Generator is a schema-constrained text generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *Schema) (string, error)
	Name() string
}

// Renderer serializes a variant into a downloadable binary.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (*RenderedFile, error)
}

// FetchedImage is raw image data with a sniffed extension.
type FetchedImage struct {
	Data      []byte
	Extension string
}

// ImageFetcher retrieves illustrative images by URL.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedImage, error)
}

// KVStore is the storage backend contract for job lists.
// Get returns ErrKeyNotFound when the key is absent.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// JobStore persists per-user recent and archived conversion jobs.
type JobStore interface {
	LoadRecent(ctx context.Context, userID string) ([]ConversionJob, error)
	LoadArchive(ctx context.Context, userID string) ([]ConversionJob, error)
	SaveRecent(ctx context.Context, userID string, jobs []ConversionJob) error
	SaveArchive(ctx context.Context, userID string, jobs []ConversionJob) error
	AddRecent(ctx context.Context, userID string, job ConversionJob) error
	Find(ctx context.Context, userID, jobID string) (*ConversionJob, error)
	Archive(ctx context.Context, userID, jobID string) error
	Delete(ctx context.Context, userID, jobID string) error
	Clear(ctx context.Context, userID string) error
}

// WindowLog stores hit timestamps for sliding-window rate limiting.
type WindowLog interface {
	// Count drops entries older than now-window and returns the remaining
	// count together with the oldest surviving timestamp.
	Count(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error)
	Add(ctx context.Context, key string, at time.Time, window time.Duration) error
	Reset(ctx context.Context, key string) error
}

// RateLimiter caps actions per key within a rolling window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, action ActionKind) (bool, error)
	Remaining(ctx context.Context, key string, action ActionKind) (int, error)
	ResetAt(ctx context.Context, key string, action ActionKind) (time.Time, error)
	Reset(ctx context.Context, key string, action ActionKind) error
	Status(ctx context.Context, key string, action ActionKind) (*RateLimitStatus, error)
}

// ConversionService drives the full pipeline.
type ConversionService interface {
	Convert(ctx context.Context, userID string, doc UploadedDocument, hooks ConvertHooks) (*ConversionJob, error)
	Export(ctx context.Context, userID, jobID, variantID string, format ExportFormat) (*RenderedFile, error)
	ExportAll(ctx context.Context, userID, jobID string, format ExportFormat) ([]*RenderedFile, error)
	GetJob(ctx context.Context, userID, jobID string) (*ConversionJob, error)
	ListJobs(ctx context.Context, userID string) ([]ConversionJob, error)
	ListArchive(ctx context.Context, userID string) ([]ConversionJob, error)
	ArchiveJob(ctx context.Context, userID, jobID string) error
	DeleteJob(ctx context.Context, userID, jobID string) error
	Limits(ctx context.Context, userID string, action ActionKind) (*RateLimitStatus, error)
}

// StageFunc reports conversion stage changes as a percentage and label.
type StageFunc func(percent int, stage string)

// ConvertHooks carries optional progress callbacks for a conversion.
type ConvertHooks struct {
	OnStage StageFunc
	OnPage  ProgressFunc
}
