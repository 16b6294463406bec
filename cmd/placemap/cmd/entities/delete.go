package entities

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/placemap/internal/appcontext"
	"github.com/agentstation/placemap/pkg/errors"
)

// NewDeleteCommand creates the entities delete subcommand.
func NewDeleteCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <slug>",
		Short:   "Delete one entity by slug",
		Args:    cobra.ExactArgs(1),
		Example: `  placemap entities delete west-park-padel`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := app.Placemap()
			if err != nil {
				return err
			}

			if err := pm.Store().Delete(cmd.Context(), args[0]); err != nil {
				if errors.IsNotFound(err) {
					cmd.SilenceUsage = true
				}
				return err
			}

			cmd.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}
