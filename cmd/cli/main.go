package main

import (
	"fmt"
	"os"

	"github.com/crucial707/blog/cmd/cli/articles"
	"github.com/crucial707/blog/cmd/cli/auth"
	"github.com/crucial707/blog/cmd/cli/root"
	"github.com/crucial707/blog/cmd/cli/taxonomy"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	articles.InitArticles(rootCmd)
	taxonomy.InitTaxonomy(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
