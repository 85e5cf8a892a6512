// Command seed loads the demo users, taxonomy, articles and comments.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/crucial707/blog/cmd/cli/output"
	"github.com/crucial707/blog/internal/config"
	"github.com/crucial707/blog/internal/db"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var force, migrate bool

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Insert demo data into the blog database",
		Long:          "Creates demo users (password " + demoPassword + "), categories, tags, articles and comments.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx := cmd.Context()

			database, err := db.Connect(ctx, cfg.DSN(), 2, 1)
			if err != nil {
				return err
			}
			defer database.Close()

			if migrate {
				if err := db.Run(cfg.DSN()); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			sum, err := newSeeder(database).run(ctx, force)
			if err != nil {
				return err
			}
			printSummary(sum)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Wipe all existing data before seeding")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply pending migrations first")
	return cmd
}

func printSummary(s summary) {
	fmt.Println("Database seeded.")
	output.RenderTable([]string{"Table", "Rows"}, [][]interface{}{
		{"users", s.Users},
		{"categories", s.Categories},
		{"tags", s.Tags},
		{"articles", s.Articles},
		{"comments", s.Comments},
	})
}
