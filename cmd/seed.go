package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/storage"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add the starter catalog",
	Long: `Insert the starter products with their bulk price tiers and options.
Products whose slug already exists are left alone, so the command can be re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := connect(); err != nil {
			return err
		}
		if err := config.Migrate(config.GetDB()); err != nil {
			return err
		}

		created, err := SeedCatalog(cmd.Context(), storage.NewProductStore(config.GetDB()))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", created)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sizes(modifiers map[string]string) []models.ProductOption {
	options := make([]models.ProductOption, 0, len(modifiers))
	for _, value := range []string{"S", "M", "L", "XL", "2XL"} {
		if modifier, ok := modifiers[value]; ok {
			options = append(options, models.ProductOption{OptionType: "size", Value: value, PriceModifier: money(modifier)})
		}
	}
	return options
}

func starterCatalog() []models.Product {
	return []models.Product{
		{
			Name:        "T-Shirt",
			Slug:        "t-shirt",
			Description: "Heavyweight cotton tee, full-color front print",
			BasePrice:   money("12.50"),
			Active:      true,
			PriceTiers: []models.PriceTier{
				{MinQuantity: 25, UnitPrice: money("11.00")},
				{MinQuantity: 100, UnitPrice: money("9.50")},
			},
			Options: sizes(map[string]string{"S": "0", "M": "0", "L": "0", "XL": "1.50", "2XL": "2.50"}),
		},
		{
			Name:        "Hoodie",
			Slug:        "hoodie",
			Description: "Fleece pullover hoodie",
			BasePrice:   money("29.00"),
			Active:      true,
			PriceTiers: []models.PriceTier{
				{MinQuantity: 25, UnitPrice: money("26.00")},
			},
			Options: sizes(map[string]string{"S": "0", "M": "0", "L": "0", "XL": "2.00", "2XL": "3.00"}),
		},
		{
			Name:        "Mug",
			Slug:        "mug",
			Description: "11oz ceramic mug, wrap print",
			BasePrice:   money("8.00"),
			Active:      true,
			PriceTiers: []models.PriceTier{
				{MinQuantity: 50, UnitPrice: money("6.50")},
			},
			Options: []models.ProductOption{
				{OptionType: "color", Value: "white", PriceModifier: decimal.Zero},
				{OptionType: "color", Value: "black", PriceModifier: money("1.00")},
			},
		},
		{
			Name:        "Poster",
			Slug:        "poster",
			Description: "Matte poster print",
			BasePrice:   money("6.00"),
			Active:      true,
			Options: []models.ProductOption{
				{OptionType: "size", Value: "A3", PriceModifier: decimal.Zero},
				{OptionType: "size", Value: "A2", PriceModifier: money("4.00")},
			},
		},
	}
}

// SeedCatalog inserts the starter products that are not in the catalog yet
func SeedCatalog(ctx context.Context, products *storage.ProductStore) (int, error) {
	existing, err := products.ListProducts(ctx, true)
	if err != nil {
		return 0, err
	}
	slugs := make(map[string]bool, len(existing))
	for _, product := range existing {
		slugs[product.Slug] = true
	}

	created := 0
	for _, product := range starterCatalog() {
		if slugs[product.Slug] {
			continue
		}
		if err := products.CreateProduct(ctx, &product); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
