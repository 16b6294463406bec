// Package entities implements the entities command group for inspecting
// and managing stored canonical entities.
package entities

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/placemap/internal/appcontext"
)

// NewCommand creates the entities command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "entities [subcommand]",
		GroupID: "core",
		Short:   "Inspect and manage stored entities",
		Long: `Entities works with the canonical place entities in the configured store.

Available subcommands:
  list     - List stored entities page by page
  get      - Show one entity by slug
  count    - Count stored entities
  delete   - Delete one entity by slug`,
		Example: `  placemap entities list                          # First page of entities
  placemap entities list --page-size 10           # Smaller pages
  placemap entities get west-park-padel           # Show one entity
  placemap entities delete west-park-padel        # Remove one entity`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to help if no subcommand
			if len(args) == 0 {
				return cmd.Help()
			}
			return fmt.Errorf("unknown subcommand: %s", args[0])
		},
	}

	// Add subcommands using the app context
	cmd.AddCommand(NewListCommand(app))
	cmd.AddCommand(NewGetCommand(app))
	cmd.AddCommand(NewCountCommand(app))
	cmd.AddCommand(NewDeleteCommand(app))

	return cmd
}
