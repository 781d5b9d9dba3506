package commands

import (
	"os"
	"strconv"
	"time"

	"pdf-slide-synth/cmd/slidesynth/ui"
	"pdf-slide-synth/internal/domain"
	"pdf-slide-synth/internal/service"

	"github.com/spf13/cobra"
)

var limitsCmd = &cobra.Command{
	Use:   "limits [action]",
	Short: "Show remaining rate-limit quota",
	Long: `Shows the remaining quota for conversion, export and upload actions.
Quotas are only shared between runs when RATE_LIMIT_BACKEND is redis.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actions := []domain.ActionKind{domain.ActionConversion, domain.ActionExport, domain.ActionUpload}
		if len(args) == 1 {
			action, err := domain.ParseActionKind(args[0])
			if err != nil {
				return err
			}
			actions = []domain.ActionKind{action}
		}

		ctx := cmd.Context()
		c, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		rows := make([][]string, 0, len(actions))
		for _, action := range actions {
			st, err := c.ConversionService.Limits(ctx, userID, action)
			if err != nil {
				return err
			}
			reset := "-"
			if st.Remaining < st.Limit {
				reset = service.FormatResetDuration(time.Until(st.ResetAt))
			}
			rows = append(rows, []string{
				string(st.Action),
				strconv.Itoa(st.Remaining) + "/" + strconv.Itoa(st.Limit),
				reset,
			})
		}
		ui.Table(os.Stdout, []string{"ACTION", "REMAINING", "RESETS IN"}, rows)
		return nil
	},
}
