package service

import (
	"context"
	"fmt"
	"time"

	"pdf-slide-synth/internal/domain"
	apperrors "pdf-slide-synth/pkg/errors"

	"golang.org/x/sync/errgroup"
)

const (
	defaultImageConcurrency = 4
	msgNoSlides             = "No slides to export"
)

// deckAssets holds fetched images. slides is indexed like the variant's
// slide list; entries are nil where no image was requested.
type deckAssets struct {
	cover  *domain.FetchedImage
	slides []*domain.FetchedImage
}

func (a deckAssets) slideImage(i int) *domain.FetchedImage {
	if i < 0 || i >= len(a.slides) {
		return nil
	}
	return a.slides[i]
}

// DeckRenderer turns a variant into a PPTX package or a PDF handout.
// It keeps no per-render state, so one instance serves concurrent renders.
type DeckRenderer struct {
	fetcher      domain.ImageFetcher
	logger       domain.Logger
	imageBaseURL string
	concurrency  int
	now          func() time.Time
}

// RendererOption configures a DeckRenderer.
type RendererOption func(*DeckRenderer)

func WithImageBaseURL(url string) RendererOption {
	return func(r *DeckRenderer) { r.imageBaseURL = url }
}

func WithImageConcurrency(n int) RendererOption {
	return func(r *DeckRenderer) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) RendererOption {
	return func(r *DeckRenderer) { r.now = now }
}

func NewRenderer(fetcher domain.ImageFetcher, logger domain.Logger, opts ...RendererOption) *DeckRenderer {
	r := &DeckRenderer{
		fetcher:      fetcher,
		logger:       logger,
		imageBaseURL: imageServiceBase,
		concurrency:  defaultImageConcurrency,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *DeckRenderer) Render(ctx context.Context, req domain.RenderRequest) (*domain.RenderedFile, error) {
	variant := req.Variant
	if len(variant.Slides) == 0 {
		return nil, apperrors.NewRenderError(msgNoSlides, domain.ErrNoSlides)
	}
	format := req.Format
	if format == "" {
		format = domain.ExportFormatPPTX
	}

	theme := variant.Theme
	if !theme.Valid() {
		theme = domain.ThemeExecutive
	}
	preset := PresetFor(theme)

	slides := make([]domain.SlideRecord, len(variant.Slides))
	for i, s := range variant.Slides {
		slides[i] = s.Normalize()
	}

	start := time.Now()
	assets, err := r.fetchAssets(ctx, slides, preset)
	if err != nil {
		r.logger.Error("Failed to fetch slide images", err, "variant", variant.ID, "theme", theme)
		return nil, apperrors.NewRenderError("Failed to fetch slide images. Please try again.", err)
	}

	var data []byte
	switch format {
	case domain.ExportFormatPDF:
		data, err = buildHandout(handoutDeck{theme: theme, preset: preset, title: req.SourceTitle, slides: slides, assets: assets})
	default:
		data, err = buildPPTX(pptxDeck{
			theme:       theme,
			preset:      preset,
			title:       req.SourceTitle,
			sourceTitle: req.SourceTitle,
			slides:      slides,
			assets:      assets,
			created:     r.now(),
		})
	}
	if err != nil {
		r.logger.Error("Failed to write presentation", err, "variant", variant.ID, "format", format)
		return nil, apperrors.NewRenderError("Failed to generate presentation file", err)
	}

	file := &domain.RenderedFile{
		FileName:    ExportFileName(req.SourceTitle, theme, format),
		ContentType: exportContentType(format),
		Data:        data,
	}
	r.logger.Info("Rendered deck",
		"variant", variant.ID,
		"theme", theme,
		"format", format,
		"slides", len(slides),
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return file, nil
}

// ExportFileName is {title before '.'}_{theme}.{ext}.
func ExportFileName(sourceTitle string, theme domain.Theme, format domain.ExportFormat) string {
	return fmt.Sprintf("%s_%s.%s", ExportBaseName(sourceTitle), theme, format.Extension())
}

func exportContentType(format domain.ExportFormat) string {
	if format == domain.ExportFormatPDF {
		return domain.MediaTypePDF
	}
	return domain.MediaTypePPTX
}

// fetchAssets downloads every requested image concurrently. Any failure
// cancels the rest and fails the render.
func (r *DeckRenderer) fetchAssets(ctx context.Context, slides []domain.SlideRecord, preset ThemePreset) (deckAssets, error) {
	assets := deckAssets{slides: make([]*domain.FetchedImage, len(slides))}
	if r.fetcher == nil {
		return assets, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	if preset.AbstractCover {
		url := CoverBackgroundURL(r.imageBaseURL, SanitizeColor(preset.Primary, preset.Primary))
		g.Go(func() error {
			img, err := r.fetcher.Fetch(gctx, url)
			if err != nil {
				return fmt.Errorf("cover background: %w", err)
			}
			assets.cover = img
			return nil
		})
	}

	for i, slide := range slides {
		if !slide.HasImage() {
			continue
		}
		i := i
		url := SlideImageURL(r.imageBaseURL, slide.ImagePrompt, i)
		g.Go(func() error {
			img, err := r.fetcher.Fetch(gctx, url)
			if err != nil {
				return fmt.Errorf("slide %d image: %w", i+1, err)
			}
			assets.slides[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return deckAssets{}, err
	}
	return assets, nil
}
