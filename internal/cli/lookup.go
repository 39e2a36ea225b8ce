package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/localguide/internal/control"
	"github.com/vietddude/localguide/internal/core/tags"
)

var (
	limit  int
	lat    float64
	lng    float64
	radius float64
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [slug]",
	Short: "List the businesses of a category",
	Args:  cobra.ExactArgs(1),
	Run:   runResolve,
}

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "List businesses around a coordinate, nearest first",
	Run:   runNearby,
}

func init() {
	resolveCmd.Flags().IntVar(&limit, "limit", 0, "maximum results (default from config)")

	nearbyCmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	nearbyCmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	nearbyCmd.Flags().Float64Var(&radius, "radius", 5, "radius in km")
	nearbyCmd.Flags().IntVar(&limit, "limit", 0, "maximum results (default from config)")
	_ = nearbyCmd.MarkFlagRequired("lat")
	_ = nearbyCmd.MarkFlagRequired("lng")

	rootCmd.AddCommand(resolveCmd, nearbyCmd)
}

// openApp builds the components without serving. It exits on failure.
func openApp(ctx context.Context) *control.App {
	cfg := loadConfig()
	if limit <= 0 {
		limit = cfg.Resolver.DefaultLimit
	}
	app, err := control.NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize localguide", "error", err)
		os.Exit(1)
	}
	return app
}

func runResolve(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app := openApp(ctx)
	defer func() {
		_ = app.Close()
	}()

	found := app.Resolver().ResolveCategory(ctx, args[0], limit)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSLUG\tNEIGHBORHOOD\tTAGS")
	for _, b := range found {
		labels := make([]string, 0, len(b.Tags))
		for _, t := range b.Tags {
			labels = append(labels, tags.FormatTag(t))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Name, b.Category, b.CategorySlug, b.Neighborhood, strings.Join(labels, ", "))
	}
	_ = w.Flush()
	fmt.Printf("%d businesses (schema %s)\n", len(found), app.Resolver().Schema().Mode())
}

func runNearby(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app := openApp(ctx)
	defer func() {
		_ = app.Close()
	}()

	found, err := app.Resolver().ResolveNearby(ctx, lat, lng, radius, limit)
	if err != nil {
		slog.Error("Nearby lookup failed", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tDISTANCE_KM")
	for _, n := range found {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", n.ID, n.Name, n.Category, n.DistanceKm)
	}
	_ = w.Flush()
}
