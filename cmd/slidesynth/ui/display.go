package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// Success prints a green check line to stdout.
func Success(format string, args ...interface{}) {
	successColor.Fprintf(os.Stdout, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints a red cross line to stderr.
func Error(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a yellow line to stderr.
func Warning(format string, args ...interface{}) {
	warnColor.Fprintf(os.Stderr, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an informational line to stderr.
func Info(format string, args ...interface{}) {
	infoColor.Fprintf(os.Stderr, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Table writes rows under a header with aligned columns.
func Table(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	separator := make([]string, len(headers))
	for i := range separator {
		separator[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(tw, strings.Join(separator, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}
