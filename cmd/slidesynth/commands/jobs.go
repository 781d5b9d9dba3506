package commands

import (
	"fmt"
	"os"
	"strconv"

	"pdf-slide-synth/cmd/slidesynth/ui"
	"pdf-slide-synth/internal/domain"

	"github.com/spf13/cobra"
)

var showArchived bool

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and manage conversion history",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		var jobs []domain.ConversionJob
		if showArchived {
			jobs, err = c.ConversionService.ListArchive(ctx, userID)
		} else {
			jobs, err = c.ConversionService.ListJobs(ctx, userID)
		}
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			ui.Info("No conversions found for %s", userID)
			return nil
		}
		ui.Table(os.Stdout, []string{"ID", "TITLE", "SLIDES", "SIZE", "CREATED"}, jobRows(jobs))
		return nil
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show the variants and slides of a conversion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		job, err := c.ConversionService.GetJob(ctx, userID, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", job.Title, job.ID)
		fmt.Printf("Source: %s, %d pages, %s\n\n", job.Source, job.PageCount, job.FileSize)
		for _, v := range job.Variants {
			fmt.Printf("%s  %s [%s]\n", v.ID, v.Name, v.Theme)
			for i, s := range v.Slides {
				fmt.Printf("  %2d. %s (%d bullets)\n", i+1, s.Title, len(s.Bullets))
			}
		}
		return nil
	},
}

var jobsArchiveCmd = &cobra.Command{
	Use:   "archive <job-id>",
	Short: "Move a conversion from recent history to the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.ConversionService.ArchiveJob(ctx, userID, args[0]); err != nil {
			return err
		}
		ui.Success("Archived %s", args[0])
		return nil
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a conversion from history or archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.ConversionService.DeleteJob(ctx, userID, args[0]); err != nil {
			return err
		}
		ui.Success("Deleted %s", args[0])
		return nil
	},
}

func init() {
	jobsListCmd.Flags().BoolVar(&showArchived, "archived", false, "list archived conversions instead")
	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd, jobsArchiveCmd, jobsDeleteCmd)
}

func jobRows(jobs []domain.ConversionJob) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			j.ID,
			j.Title,
			strconv.Itoa(j.SlideCount),
			j.FileSize,
			j.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}
