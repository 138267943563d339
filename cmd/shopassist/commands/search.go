// ABOUTME: CLI command to search the product catalog
// ABOUTME: Ranks products by cosine similarity of their description embeddings
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	searchLimit int
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search products",
		Long: `Search products by semantic similarity.

The query is embedded and compared with every product description in
the vector store. No chat model is involved.

Examples:
  shopassist search "waterproof jacket"
  shopassist search --limit 10 "gold jewelry"
  shopassist search --format json "laptop backpack"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := cmd.Context()
	if _, err := a.LoadCatalog(ctx, false); err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	query := args[0]
	results, err := a.SearchProducts(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("searching products: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No products found for query: %s\n", query)
		}
		return nil
	}

	if ok, err := writeStructured(cmd.OutOrStdout(), results); ok {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tSLOT\tPRODUCT\n")
	fmt.Fprintf(w, "-----\t----\t-------\n")
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%d\t%s\n", r.SimilarityScore, r.Slot, truncate(r.Label, 100))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
	}
	return nil
}
