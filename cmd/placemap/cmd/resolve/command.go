// Package resolve implements the resolve command, which loads venue
// observations from files and resolves them into canonical place entities.
package resolve

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/placemap"
	"github.com/agentstation/placemap/internal/appcontext"
	"github.com/agentstation/placemap/internal/cmd/output"
	"github.com/agentstation/placemap/pkg/finalize"
	"github.com/agentstation/placemap/pkg/match"
)

// NewCommand creates the resolve command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		dryRun  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "resolve [file...]",
		GroupID: "core",
		Short:   "Resolve observations into canonical place entities",
		Long: `Resolve reads venue observations from JSON or YAML files, groups the
observations that describe the same real-world place, merges each group
into a canonical entity, and upserts the entities into the configured
store.

Files may contain either a bare observation list or a document with an
observations key. Pass "-" to read from standard input.`,
		Example: `  placemap resolve observations.yaml             # Resolve one batch
  placemap resolve north.json south.json         # Combine several files
  cat batch.yaml | placemap resolve -            # Read from stdin
  placemap resolve --dry-run observations.yaml   # Report without writing`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			observations, err := LoadObservations(args)
			if err != nil {
				return err
			}

			pm, err := app.Placemap()
			if err != nil {
				return err
			}

			var ropts []placemap.ResolveOption
			if dryRun {
				ropts = append(ropts, placemap.WithDryRun())
			}
			if timeout > 0 {
				ropts = append(ropts, placemap.WithTimeout(timeout))
			}

			result, err := pm.Resolve(cmd.Context(), observations, ropts...)
			if err != nil {
				return err
			}

			return printResult(cmd, app, result)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "merge and report outcomes without writing to the store")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "bound the whole run, 0 means no timeout")

	return cmd
}

// resultView is the structured output shape for a resolve run.
type resultView struct {
	RunID       string                  `json:"run_id" yaml:"run_id"`
	DryRun      bool                    `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Results     []*finalize.GroupResult `json:"results" yaml:"results"`
	Diagnostics []match.Diagnostic      `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Summary     string                  `json:"summary" yaml:"summary"`
}

// printResult writes the run outcome in the configured output format.
func printResult(cmd *cobra.Command, app appcontext.Interface, result *placemap.Result) error {
	format := output.DetectFormat(app.OutputFormat())
	formatter := output.NewFormatter(format)

	switch format {
	case output.FormatTable, output.FormatWide:
		data := resultToTableData(result, format == output.FormatWide)
		if err := formatter.Format(cmd.OutOrStdout(), data); err != nil {
			return err
		}
		for _, diag := range result.Diagnostics {
			cmd.Printf("excluded %s (%s): %s\n", diag.ObservationID, diag.ConnectorID, diag.Reason)
		}
		cmd.Println(result.Summary())
		return nil
	default:
		var results []*finalize.GroupResult
		if result.Report != nil {
			results = result.Report.Results
		}
		view := resultView{
			RunID:       result.RunID,
			DryRun:      result.Metadata.DryRun,
			Results:     results,
			Diagnostics: result.Diagnostics,
			Summary:     result.Summary(),
		}
		return formatter.Format(cmd.OutOrStdout(), view)
	}
}

// resultToTableData renders one row per candidate group.
func resultToTableData(result *placemap.Result, wide bool) output.Data {
	headers := []string{"SLUG", "OUTCOME", "NAME", "OBSERVATIONS"}
	alignment := []output.Align{output.AlignLeft, output.AlignLeft, output.AlignLeft, output.AlignRight}
	if wide {
		headers = append(headers, "CITY", "CONNECTORS")
		alignment = append(alignment, output.AlignLeft, output.AlignLeft)
	}

	data := output.Data{
		Headers:         headers,
		ColumnAlignment: alignment,
	}
	if result.Report == nil {
		return data
	}

	for _, group := range result.Report.Results {
		if group.Err != nil {
			row := []string{group.Slug, "failed", group.Err.Error(), "-"}
			if wide {
				row = append(row, "-", "-")
			}
			data.Rows = append(data.Rows, row)
			continue
		}

		entity := group.Entity
		row := []string{
			group.Slug,
			string(group.Outcome),
			entity.Name,
			strconv.Itoa(entity.Observations),
		}
		if wide {
			row = append(row,
				entity.City,
				strings.Join(entity.Connectors(), ","),
			)
		}
		data.Rows = append(data.Rows, row)
	}

	return data
}
