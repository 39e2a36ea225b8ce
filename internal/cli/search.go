package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/localguide/internal/directory/search"
)

var (
	filters     []string
	category    string
	listingType string
	sortKey     string
	asJSON      bool
	anyFilter   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search every collection by text and filters",
	Args:  cobra.MaximumNArgs(1),
	Run:   runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVar(&filters, "filter", nil, "filter label, repeatable (e.g. --filter \"aberto agora\")")
	searchCmd.Flags().StringVar(&category, "category", "", "restrict businesses to a category slug")
	searchCmd.Flags().StringVar(&listingType, "type", "", "restrict listings to a type (imoveis, carros, empregos, lugares)")
	searchCmd.Flags().StringVar(&sortKey, "sort", "", "sort key (rating, price_asc, price_desc, year_desc, recent, rent_first, free_first)")
	searchCmd.Flags().BoolVar(&anyFilter, "any", false, "match businesses and listings with at least one filter")
	searchCmd.Flags().BoolVar(&asJSON, "json", false, "print the results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app := openApp(ctx)
	defer func() {
		_ = app.Close()
	}()

	q := search.Query{Filters: filters, Category: category, ListingType: listingType, Sort: sortKey, Any: anyFilter}
	if len(args) == 1 {
		q.Text = args[0]
	}
	got := app.Engine().Search(app.Loader().Load(ctx), q)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(got)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TYPE\tID\tTITLE\tDETAIL")
	for _, b := range got.Businesses {
		_, _ = fmt.Fprintf(w, "business\t%s\t%s\t%s\n", b.ID, b.Name, b.Category)
	}
	for _, l := range got.Listings {
		_, _ = fmt.Fprintf(w, "listing\t%s\t%s\t%s\n", l.ID, l.Title, l.ListingType)
	}
	for _, d := range got.Deals {
		_, _ = fmt.Fprintf(w, "deal\t%s\t%s\t%s\n", d.ID, d.Title, d.ValidUntil)
	}
	for _, e := range got.Events {
		_, _ = fmt.Fprintf(w, "event\t%s\t%s\t%s\n", e.ID, e.Title, e.DateTime)
	}
	for _, n := range got.News {
		_, _ = fmt.Fprintf(w, "news\t%s\t%s\t%s\n", n.ID, n.Title, n.Tag)
	}
	_ = w.Flush()

	if len(q.Filters) > 0 {
		fmt.Printf("filters: %s\n", strings.Join(q.Filters, ", "))
	}
}
