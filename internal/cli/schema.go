package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/localguide/internal/control"
	"github.com/vietddude/localguide/internal/directory/catalog"
	"github.com/vietddude/localguide/internal/infra/backend"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Introspect the businesses table and show the lookup strategy it allows",
	Run:   runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	table := cfg.Backend.Tables.Businesses
	if table == "" {
		table = catalog.DefaultTables().Businesses
	}

	ctx := context.Background()
	driver, _, err := control.OpenBackend(ctx, cfg.Backend, cfg.Request.Timeout)
	if err != nil {
		slog.Error("Failed to open backend", "error", err)
		os.Exit(1)
	}
	client := backend.NewClient(driver)
	defer func() {
		_ = client.Close()
	}()

	s, err := backend.DescribeSchema(ctx, client, table)
	if err != nil {
		slog.Error("Failed to describe schema", "table", table, "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CAPABILITY\tPRESENT")
	_, _ = fmt.Fprintf(w, "category_slug column\t%t\n", s.CategorySlug)
	_, _ = fmt.Fprintf(w, "category column\t%t\n", s.Category)
	_, _ = fmt.Fprintf(w, "categories relation\t%t\n", s.CategoriesRelation)
	_ = w.Flush()

	fmt.Printf("table %s: mode %s (configured: %s)\n", table, s.Mode(), cfg.Backend.Schema)
}
