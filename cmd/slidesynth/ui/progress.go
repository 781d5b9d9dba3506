package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar tracks per-page extraction progress on stderr.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar with the given total and description.
func NewProgressBar(total int64, description string) *ProgressBar {
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressBar{bar: bar}
}

// Set moves the bar to current.
func (p *ProgressBar) Set(current int64) {
	_ = p.bar.Set64(current)
}

// SetTotal updates the bar's maximum.
func (p *ProgressBar) SetTotal(total int64) {
	p.bar.ChangeMax64(total)
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// Spinner shows indeterminate progress for steps without a page count.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a stopped spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

func (s *Spinner) Start() { s.spinner.Start() }

func (s *Spinner) Stop() { s.spinner.Stop() }

// UpdateMessage replaces the text after the spinner.
func (s *Spinner) UpdateMessage(message string) {
	s.spinner.Suffix = " " + message
}
