package entities

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/placemap/internal/appcontext"
	"github.com/agentstation/placemap/internal/cmd/output"
	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/place"
)

// NewGetCommand creates the entities get subcommand.
func NewGetCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "get <slug>",
		Short: "Show one entity by slug",
		Args:  cobra.ExactArgs(1),
		Example: `  placemap entities get west-park-padel
  placemap entities get west-park-padel -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := app.Placemap()
			if err != nil {
				return err
			}

			entity, err := pm.Store().Get(cmd.Context(), args[0])
			if err != nil {
				if errors.IsNotFound(err) {
					cmd.SilenceUsage = true
				}
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			formatter := output.NewFormatter(format)

			if format == output.FormatTable || format == output.FormatWide {
				return formatter.Format(cmd.OutOrStdout(), entityDetailData(entity))
			}
			return formatter.Format(cmd.OutOrStdout(), entity)
		},
	}
}

// entityDetailData renders one entity as a property table. Empty fields
// are omitted.
func entityDetailData(entity *place.CanonicalEntity) output.Data {
	data := output.Data{Headers: []string{"PROPERTY", "VALUE"}}
	add := func(name, value string) {
		if value != "" {
			data.Rows = append(data.Rows, []string{name, value})
		}
	}

	add("Slug", entity.Slug)
	add("Name", entity.Name)
	add("Class", string(entity.EntityClass))
	if entity.Latitude != nil && entity.Longitude != nil {
		add("Coordinates", fmt.Sprintf("%.6f, %.6f", *entity.Latitude, *entity.Longitude))
	}
	add("Summary", entity.Summary)
	add("Description", entity.Description)
	add("Phone", entity.Phone)
	add("Website", entity.Website)
	add("Email", entity.Email)
	add("Address", entity.Address)
	add("Postcode", entity.Postcode)
	add("City", entity.City)
	for _, dimension := range sortedKeys(entity.Dimensions) {
		add("Dimension "+dimension, strings.Join(entity.Dimensions[dimension], ", "))
	}
	for _, connector := range sortedKeys(entity.ExternalIDs) {
		add("External ids "+string(connector), strings.Join(entity.ExternalIDs[connector], ", "))
	}
	add("Connectors", strings.Join(entity.Connectors(), ", "))
	add("Observations", strconv.Itoa(entity.Observations))
	if !entity.CreatedAt.IsZero() {
		add("Created", entity.CreatedAt.Format(time.RFC3339))
	}
	if !entity.UpdatedAt.IsZero() {
		add("Updated", entity.UpdatedAt.Format(time.RFC3339))
	}

	return data
}

// sortedKeys returns a map's keys in lexical order.
func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
