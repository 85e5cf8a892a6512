package taxonomy

import (
	"github.com/crucial707/blog/cmd/cli/client"
	"github.com/crucial707/blog/cmd/cli/output"
	"github.com/spf13/cobra"
)

type term struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// InitTaxonomy registers the categories and tags command groups.
func InitTaxonomy(rootCmd *cobra.Command) {
	categoriesCmd := &cobra.Command{Use: "categories", Short: "Article categories"}
	categoriesCmd.AddCommand(listCmd("/categories", true))

	tagsCmd := &cobra.Command{Use: "tags", Short: "Article tags"}
	tagsCmd.AddCommand(listCmd("/tags", false))

	rootCmd.AddCommand(categoriesCmd, tagsCmd)
}

func listCmd(path string, withIcon bool) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all, ordered by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			var terms []term
			if _, err := client.CallInto("GET", path, nil, false, &terms); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(terms)
			}

			headers := []string{"ID", "Name", "Slug", "Color"}
			if withIcon {
				headers = append(headers, "Icon", "Description")
			}
			rows := make([][]interface{}, 0, len(terms))
			for _, t := range terms {
				row := []interface{}{t.ID, t.Name, t.Slug, deref(t.Color)}
				if withIcon {
					row = append(row, deref(t.Icon), output.Truncate(deref(t.Description), 40))
				}
				rows = append(rows, row)
			}
			output.RenderTable(headers, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON instead of a table")
	return cmd
}
