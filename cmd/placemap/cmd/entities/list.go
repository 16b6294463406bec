package entities

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/placemap/internal/appcontext"
	"github.com/agentstation/placemap/internal/cmd/output"
	"github.com/agentstation/placemap/pkg/constants"
	"github.com/agentstation/placemap/pkg/place"
)

// pageView is the structured output shape for one listing page.
type pageView struct {
	Entities      []*place.CanonicalEntity `json:"entities" yaml:"entities"`
	NextPageToken string                   `json:"next_page_token,omitempty" yaml:"next_page_token,omitempty"`
}

// NewListCommand creates the entities list subcommand.
func NewListCommand(app appcontext.Interface) *cobra.Command {
	var (
		pageSize  int
		pageToken string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored entities page by page",
		Args:  cobra.NoArgs,
		Example: `  placemap entities list                               # First page
  placemap entities list --page-size 10                # Smaller pages
  placemap entities list --page-token west-park-padel  # Continue after a slug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := app.Placemap()
			if err != nil {
				return err
			}

			page, err := pm.Store().List(cmd.Context(), pageSize, pageToken)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			formatter := output.NewFormatter(format)

			switch format {
			case output.FormatTable, output.FormatWide:
				data := entitiesToTableData(page.Entities, format == output.FormatWide)
				if err := formatter.Format(cmd.OutOrStdout(), data); err != nil {
					return err
				}
				if page.NextPageToken != "" {
					cmd.Printf("next page: --page-token %s\n", page.NextPageToken)
				}
				return nil
			default:
				view := pageView{Entities: page.Entities, NextPageToken: page.NextPageToken}
				return formatter.Format(cmd.OutOrStdout(), view)
			}
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", constants.DefaultPageSize, "entities per page")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "continue listing after this token")

	return cmd
}

// entitiesToTableData renders one row per entity.
func entitiesToTableData(list []*place.CanonicalEntity, wide bool) output.Data {
	headers := []string{"SLUG", "NAME", "CLASS", "CITY", "OBSERVATIONS"}
	alignment := []output.Align{
		output.AlignLeft, output.AlignLeft, output.AlignLeft, output.AlignLeft, output.AlignRight,
	}
	if wide {
		headers = append(headers, "CONNECTORS", "PHONE", "WEBSITE")
		alignment = append(alignment, output.AlignLeft, output.AlignLeft, output.AlignLeft)
	}

	data := output.Data{Headers: headers, ColumnAlignment: alignment}
	for _, entity := range list {
		row := []string{
			entity.Slug,
			entity.Name,
			string(entity.EntityClass),
			entity.City,
			strconv.Itoa(entity.Observations),
		}
		if wide {
			row = append(row,
				strings.Join(entity.Connectors(), ","),
				entity.Phone,
				entity.Website,
			)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}
