// Package trust implements the trust command, which inspects the
// connector trust table that drives merge decisions.
package trust

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/placemap/internal/appcontext"
	"github.com/agentstation/placemap/internal/cmd/output"
	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/place"
	placetrust "github.com/agentstation/placemap/pkg/trust"
)

// NewCommand creates the trust command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trust [connector]",
		GroupID: "management",
		Short:   "Inspect the connector trust table",
		Long: `Trust shows the per-connector reliability table used to rank merge
candidates. Each connector carries a default tier and score, structural
capability flags, and optional per-field-group overrides.

Without arguments the whole table is listed. With a connector id the
full record for that connector is shown.`,
		Example: `  placemap trust                       # List all connectors
  placemap trust places_api            # Show one connector's record
  placemap trust -o yaml               # Dump the table as YAML`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := app.Placemap()
			if err != nil {
				return err
			}
			model := pm.Trust()

			if len(args) == 0 {
				return printModel(cmd, app, model)
			}
			return printConnector(cmd, app, model, args[0])
		},
	}

	return cmd
}

// modelView is the structured output shape for the full table.
type modelView struct {
	Connectors []placetrust.Record `json:"connectors" yaml:"connectors"`
}

// printModel writes the whole trust table in the configured format.
func printModel(cmd *cobra.Command, app appcontext.Interface, model *placetrust.Model) error {
	format := output.DetectFormat(app.OutputFormat())
	formatter := output.NewFormatter(format)

	switch format {
	case output.FormatTable, output.FormatWide:
		data := modelToTableData(model, format == output.FormatWide)
		return formatter.Format(cmd.OutOrStdout(), data)
	default:
		return formatter.Format(cmd.OutOrStdout(), modelView{Connectors: model.Records()})
	}
}

// printConnector writes a single connector record, or a not found error
// when the model has no entry for it.
func printConnector(cmd *cobra.Command, app appcontext.Interface, model *placetrust.Model, connector string) error {
	rec := model.Find(place.ConnectorID(connector))
	if rec == nil {
		cmd.SilenceUsage = true
		return errors.NewNotFoundError("connector", connector)
	}

	format := output.DetectFormat(app.OutputFormat())
	formatter := output.NewFormatter(format)

	switch format {
	case output.FormatTable, output.FormatWide:
		return formatter.Format(cmd.OutOrStdout(), recordDetailData(rec))
	default:
		return formatter.Format(cmd.OutOrStdout(), rec)
	}
}

// modelToTableData renders one row per connector.
func modelToTableData(model *placetrust.Model, wide bool) output.Data {
	headers := []string{"CONNECTOR", "TIER", "SCORE", "GEO", "PRIORITY", "OVERRIDES"}
	alignment := []output.Align{
		output.AlignLeft,
		output.AlignRight,
		output.AlignRight,
		output.AlignCenter,
		output.AlignRight,
		output.AlignRight,
	}
	if wide {
		headers = append(headers, "FIELD GROUPS")
		alignment = append(alignment, output.AlignLeft)
	}

	data := output.Data{
		Headers:         headers,
		ColumnAlignment: alignment,
	}

	for _, rec := range model.Records() {
		geo := "-"
		if rec.GeoCapable {
			geo = "yes"
		}
		row := []string{
			string(rec.ConnectorID),
			strconv.Itoa(int(rec.Tier)),
			formatScore(rec.Score),
			geo,
			strconv.Itoa(rec.Priority),
			strconv.Itoa(len(rec.FieldGroups)),
		}
		if wide {
			row = append(row, formatOverrides(rec.FieldGroups))
		}
		data.Rows = append(data.Rows, row)
	}

	return data
}

// recordDetailData renders one connector as property/value rows.
func recordDetailData(rec *placetrust.Record) output.Data {
	data := output.Data{
		Headers:         []string{"PROPERTY", "VALUE"},
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignLeft},
	}
	add := func(property, value string) {
		data.Rows = append(data.Rows, []string{property, value})
	}

	add("Connector", string(rec.ConnectorID))
	add("Tier", strconv.Itoa(int(rec.Tier)))
	add("Score", formatScore(rec.Score))
	if rec.GeoCapable {
		add("Geo capable", "yes")
	} else {
		add("Geo capable", "no")
	}
	add("Priority", strconv.Itoa(rec.Priority))
	for _, group := range sortedGroups(rec.FieldGroups) {
		add("Override "+group, formatRank(rec.FieldGroups[group]))
	}

	return data
}

// formatOverrides joins field-group overrides as group:tier/score pairs,
// sorted by group name.
func formatOverrides(overrides map[string]placetrust.Rank) string {
	if len(overrides) == 0 {
		return "-"
	}
	var out string
	for i, group := range sortedGroups(overrides) {
		if i > 0 {
			out += " "
		}
		out += group + ":" + formatRank(overrides[group])
	}
	return out
}

func formatRank(rank placetrust.Rank) string {
	return strconv.Itoa(int(rank.Tier)) + "/" + formatScore(rank.Score)
}

func formatScore(score placetrust.Score) string {
	return strconv.FormatFloat(float64(score), 'g', -1, 64)
}

func sortedGroups(overrides map[string]placetrust.Rank) []string {
	out := make([]string, 0, len(overrides))
	for group := range overrides {
		out = append(out, group)
	}
	sort.Strings(out)
	return out
}
