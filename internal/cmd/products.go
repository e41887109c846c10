package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/matthieukhl/buildright/internal/catalog"
	"github.com/matthieukhl/buildright/internal/listing"
	"github.com/matthieukhl/buildright/internal/models"
)

var productsQuery listing.Query

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List catalog products",
	Long:  `Print the seed catalog, filtered and sorted like the storefront listing.`,
	RunE:  runProducts,
}

func init() {
	productsCmd.Flags().StringVarP(&productsQuery.Search, "q", "q", "", "search name and description")
	productsCmd.Flags().StringVar(&productsQuery.Category, "category", models.CategoryAll, "category filter")
	productsCmd.Flags().StringVar((*string)(&productsQuery.Sort), "sort", string(listing.SortDefault), "price sort: default, asc or desc")
	rootCmd.AddCommand(productsCmd)
}

func runProducts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	seed, err := catalog.LoadFixture(cfg.Catalog.Fixture)
	if err != nil {
		return err
	}

	products := listing.Filter(seed, productsQuery)
	printProducts(cmd.OutOrStdout(), products, cfg.Store.Currency)
	return nil
}

func printProducts(out io.Writer, products []models.Product, currency string) {
	if len(products) == 0 {
		fmt.Fprintln(out, "No products found.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Category, money(currency, p.Price), stars(p.Rating))
	}
	tw.Flush()
}

// money formats an amount the way the storefront shows prices
func money(currency string, d decimal.Decimal) string {
	return currency + d.StringFixed(2)
}

func stars(rating float64) string {
	full := min(max(int(rating+0.5), 0), 5)
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full) + fmt.Sprintf(" %.1f", rating)
}
