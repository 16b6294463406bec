package entities

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/placemap/internal/appcontext"
	"github.com/agentstation/placemap/internal/cmd/output"
)

// NewCountCommand creates the entities count subcommand.
func NewCountCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count stored entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := app.Placemap()
			if err != nil {
				return err
			}

			count, err := pm.Store().Count(cmd.Context())
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			switch format {
			case output.FormatTable, output.FormatWide:
				cmd.Println(count)
				return nil
			default:
				formatter := output.NewFormatter(format)
				return formatter.Format(cmd.OutOrStdout(), map[string]int{"count": count})
			}
		},
	}
}
