// Package commands implements the slidesynth command tree.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pdf-slide-synth/cmd/slidesynth/ui"
	"pdf-slide-synth/internal/config"
	"pdf-slide-synth/internal/handler"
	"pdf-slide-synth/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	verbose      bool
	noColor      bool
	userID       string
	storeBackend string
)

var rootCmd = &cobra.Command{
	Use:   "slidesynth",
	Short: "Turn PDF and DOCX documents into slide decks",
	Long: `slidesynth converts a PDF or Word document into three themed slide deck
variants and exports them as PowerPoint files or PDF handouts.

Job history is kept in the configured STORE_BACKEND. Use --store sqlite
to keep history between runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor, verbose)
		_ = godotenv.Load()
		if cfgFile != "" {
			return os.Setenv("CONFIG_FILE", cfgFile)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", handler.AnonymousUserID, "user scope for job history and rate limits")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "override STORE_BACKEND (memory, sqlite, redis, supabase, firestore)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(limitsCmd)
}

// Execute runs the root command. Interrupts cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// openContainer wires the application with logs on stderr so command
// output on stdout stays clean.
func openContainer(ctx context.Context) (*config.Container, error) {
	cfg, fileErr := config.Load()
	if storeBackend != "" {
		cfg.StoreBackend = storeBackend
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	appLogger := logger.New(logger.Options{Level: level, Format: cfg.GetLogFormat(), Service: "slidesynth", Output: os.Stderr})
	if fileErr != nil {
		appLogger.Warn("Ignoring unreadable config file", "error", fileErr)
	}
	return config.NewContainerWith(ctx, cfg, appLogger)
}
