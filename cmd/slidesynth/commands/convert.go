package commands

import (
	"context"
	"fmt"
	"sync"

	"pdf-slide-synth/cmd/slidesynth/ui"
	"pdf-slide-synth/internal/domain"

	"github.com/spf13/cobra"
)

var (
	outDir       string
	exportFormat string
	variantID    string
	skipExport   bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a PDF or DOCX document into slide decks",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var exportCmd = &cobra.Command{
	Use:   "export <job-id>",
	Short: "Export a stored job as PPTX or PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		return exportJob(ctx, c.ConversionService, args[0])
	},
}

func init() {
	for _, cmd := range []*cobra.Command{convertCmd, exportCmd} {
		cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
		cmd.Flags().StringVarP(&exportFormat, "format", "f", "pptx", "export format (pptx or pdf)")
		cmd.Flags().StringVar(&variantID, "variant", allVariants, "variant ID to export (v1, v2, v3) or all")
	}
	convertCmd.Flags().BoolVar(&skipExport, "no-export", false, "store the job without writing any files")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if _, err := parseFormat(exportFormat); err != nil {
		return err
	}
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	c, err := openContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	progress := newConvertProgress()
	job, err := c.ConversionService.Convert(ctx, userID, doc, progress.hooks())
	progress.stop()
	if err != nil {
		ui.Error("Conversion failed")
		return err
	}

	ui.Success("Converted %s into %d slides (%d pages, %s synthesis)", job.OriginalFileName, job.SlideCount, job.PageCount, job.Synthesis)
	ui.Info("Job ID: %s", job.ID)
	if skipExport {
		return nil
	}
	return exportJob(ctx, c.ConversionService, job.ID)
}

func exportJob(ctx context.Context, svc domain.ConversionService, jobID string) error {
	format, err := parseFormat(exportFormat)
	if err != nil {
		return err
	}

	var files []*domain.RenderedFile
	spin := ui.NewSpinner(fmt.Sprintf("Rendering %s...", format))
	spin.Start()
	if variantID == allVariants {
		files, err = svc.ExportAll(ctx, userID, jobID, format)
	} else {
		var file *domain.RenderedFile
		file, err = svc.Export(ctx, userID, jobID, variantID, format)
		if file != nil {
			files = append(files, file)
		}
	}
	spin.Stop()
	if err != nil {
		ui.Error("Export failed")
		return err
	}

	paths, err := writeFiles(outDir, files)
	if err != nil {
		return err
	}
	for _, p := range paths {
		ui.Success("Wrote %s", p)
	}
	return nil
}

// convertProgress renders extraction as a bar and the remaining stages as
// a spinner.
type convertProgress struct {
	mu   sync.Mutex
	bar  *ui.ProgressBar
	spin *ui.Spinner
}

func newConvertProgress() *convertProgress {
	return &convertProgress{spin: ui.NewSpinner("Starting...")}
}

func (p *convertProgress) hooks() domain.ConvertHooks {
	return domain.ConvertHooks{
		OnStage: p.onStage,
		OnPage:  p.onPage,
	}
}

func (p *convertProgress) onStage(percent int, stage string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
	p.spin.UpdateMessage(fmt.Sprintf("[%3d%%] %s", percent, stage))
	if percent >= 100 {
		p.spin.Stop()
		return
	}
	p.spin.Start()
}

func (p *convertProgress) onPage(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		p.spin.Stop()
		p.bar = ui.NewProgressBar(int64(total), "Extracting pages")
	}
	p.bar.SetTotal(int64(total))
	p.bar.Set(int64(done))
}

func (p *convertProgress) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
	p.spin.Stop()
}
