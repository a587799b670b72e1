package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tourbase/pricing-engine/internal/engine"
)

var quoteFlags struct {
	base     string
	currency string
	org      string
	tenant   string
	agency   string
	supplier string
	product  string
	tags     []string
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Resolve a single-tenant sell price for a base amount",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req, err := buildQuoteRequest()
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		e := engine.New(st, engine.Options{ModelVersion: cfg.Pricing.ModelVersion})
		result, err := e.ComputePrice(ctx, req)
		if err != nil {
			return eris.Wrap(err, "compute price")
		}

		return printJSON(cmd, result)
	},
}

func buildQuoteRequest() (engine.QuoteRequest, error) {
	base, err := decimal.NewFromString(quoteFlags.base)
	if err != nil {
		return engine.QuoteRequest{}, eris.Wrapf(err, "parse base amount %q", quoteFlags.base)
	}
	if quoteFlags.org == "" {
		return engine.QuoteRequest{}, eris.New("--org is required")
	}
	return engine.QuoteRequest{
		BaseAmount: base,
		Currency:   quoteFlags.currency,
		Scope: engine.Context{
			OrganizationID: quoteFlags.org,
			TenantID:       quoteFlags.tenant,
			AgencyID:       quoteFlags.agency,
			SupplierID:     quoteFlags.supplier,
			ProductID:      quoteFlags.product,
			Tags:           quoteFlags.tags,
			Now:            time.Now().UTC(),
		},
	}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal result")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func init() {
	quoteCmd.Flags().StringVar(&quoteFlags.base, "base", "", "base amount, e.g. 100.00")
	quoteCmd.Flags().StringVar(&quoteFlags.currency, "currency", "EUR", "currency code")
	quoteCmd.Flags().StringVar(&quoteFlags.org, "org", "", "organization id")
	quoteCmd.Flags().StringVar(&quoteFlags.tenant, "tenant", "", "tenant id")
	quoteCmd.Flags().StringVar(&quoteFlags.agency, "agency", "", "agency id")
	quoteCmd.Flags().StringVar(&quoteFlags.supplier, "supplier", "", "supplier id")
	quoteCmd.Flags().StringVar(&quoteFlags.product, "product", "", "product id")
	quoteCmd.Flags().StringSliceVar(&quoteFlags.tags, "tags", nil, "product tags")
	_ = quoteCmd.MarkFlagRequired("base")
	rootCmd.AddCommand(quoteCmd)
}
