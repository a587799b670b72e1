package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tourbase/pricing-engine/internal/engine"
)

var graphFlags struct {
	base     string
	currency string
	org      string
	buyer    string
	product  string
	tags     []string
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Resolve a B2B resale price across the tenant hierarchy",
	Long:  "Walks the buyer's ancestor chain and applies one winning markup rule per level, printing the full audit trace.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		base, err := decimal.NewFromString(graphFlags.base)
		if err != nil {
			return eris.Wrapf(err, "parse base amount %q", graphFlags.base)
		}
		if graphFlags.org == "" {
			return eris.New("--org is required")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		e := engine.New(st, engine.Options{
			ModelVersion:  cfg.Pricing.ModelVersion,
			MaxGraphDepth: cfg.Pricing.MaxGraphDepth,
		})
		result := e.PriceWithGraph(ctx, engine.GraphRequest{
			BaseAmount:    base,
			Currency:      graphFlags.currency,
			BuyerTenantID: graphFlags.buyer,
			Scope: engine.Context{
				OrganizationID: graphFlags.org,
				ProductID:      graphFlags.product,
				Tags:           graphFlags.tags,
				Now:            time.Now().UTC(),
			},
		})
		if result == nil {
			return eris.New("graph pricing preconditions unmet: buyer, positive base, and currency are required")
		}

		return printJSON(cmd, result)
	},
}

func init() {
	graphCmd.Flags().StringVar(&graphFlags.base, "base", "", "base amount, e.g. 100.00")
	graphCmd.Flags().StringVar(&graphFlags.currency, "currency", "EUR", "currency code")
	graphCmd.Flags().StringVar(&graphFlags.org, "org", "", "organization id")
	graphCmd.Flags().StringVar(&graphFlags.buyer, "buyer", "", "buyer tenant id")
	graphCmd.Flags().StringVar(&graphFlags.product, "product", "", "product id")
	graphCmd.Flags().StringSliceVar(&graphFlags.tags, "tags", nil, "product tags")
	_ = graphCmd.MarkFlagRequired("base")
	_ = graphCmd.MarkFlagRequired("buyer")
	rootCmd.AddCommand(graphCmd)
}
