// ABOUTME: Catalog commands to sync products into the local database and list them
// ABOUTME: Neither subcommand needs an OpenAI key
package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/harper/shopassist/internal/catalog"
	"github.com/harper/shopassist/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var (
	catalogCategory string
	catalogURL      string
)

// NewCatalogCmd creates the catalog command group
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the local product catalog",
		Long: `Manage the local product catalog.

Products are fetched from a fakestoreapi-compatible endpoint, validated,
and stored in a SQLite database. Chat and search embed them from there.`,
	}

	cmd.AddCommand(newCatalogSyncCmd())
	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogShowCmd())
	cmd.AddCommand(newCatalogRemoveCmd())

	return cmd
}

// openDB opens the configured product database without touching OpenAI
func openDB() (*sqlite.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return sqlite.Open(cfg.DatabasePath)
}

func newCatalogSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the remote catalog into the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := sqlite.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			url := cfg.CatalogURL
			if catalogURL != "" {
				url = catalogURL
			}
			client := catalog.NewFakeStoreClient(url, nil).WithRetry(cfg.MaxRetries, cfg.RetryDelay)

			products, err := client.Products(cmd.Context())
			if err != nil {
				return err
			}
			if err := sqlite.NewProductStore(db).InsertProducts(cmd.Context(), products); err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d products from %s into %s\n", len(products), client.URL(), db.Path())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogURL, "url", "", "Catalog endpoint (overrides CATALOG_URL)")

	return cmd
}

func newCatalogListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products in the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			products, err := sqlite.NewProductStore(db).FetchAll(cmd.Context())
			if err != nil {
				return err
			}

			filtered := products[:0]
			for _, p := range products {
				if catalogCategory == "" || p.Category == catalogCategory {
					filtered = append(filtered, p)
				}
			}

			if len(filtered) == 0 {
				if !quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "No products found. Run 'shopassist catalog sync' first.")
				}
				return nil
			}

			if ok, err := writeStructured(cmd.OutOrStdout(), filtered); ok {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tPRICE\tCATEGORY\tTITLE\n")
			fmt.Fprintf(w, "--\t-----\t--------\t-----\n")
			for _, p := range filtered {
				fmt.Fprintf(w, "%d\t%.2f\t%s\t%s\n", p.ID, p.Price, truncate(p.Category, 20), truncate(p.Title, 60))
			}
			w.Flush()

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d product(s)\n", len(filtered))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogCategory, "category", "", "Only list products in this category")

	return cmd
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, len(args))
	for i, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q", arg)
		}
		ids[i] = id
	}
	return ids, nil
}

func newCatalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>...",
		Short: "Show products by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			products, err := sqlite.NewProductStore(db).FetchProducts(cmd.Context(), ids)
			if err != nil {
				return err
			}
			if ok, err := writeStructured(cmd.OutOrStdout(), products); ok {
				return err
			}
			for _, p := range products {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", p.String())
			}
			if !quiet && len(products) < len(ids) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d product(s) found\n", len(products), len(ids))
			}
			return nil
		},
	}
}

func newCatalogRemoveCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "remove [id...]",
		Short: "Remove products from the local database",
		Long: `Remove products by id, or every product with --all.

The next chat, search or serve re-syncs the catalog when the database is empty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("give product ids or --all")
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			store := sqlite.NewProductStore(db)
			var removed int64
			if all {
				removed, err = store.DeleteAll(cmd.Context())
			} else {
				removed, err = store.DeleteProducts(cmd.Context(), ids)
			}
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d product(s)\n", removed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every product")

	return cmd
}
