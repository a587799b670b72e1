package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tourbase/pricing-engine/internal/engine"
)

var batchFile string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve a CSV of quote requests concurrently",
	Long:  "Reads quote requests from a CSV file and resolves them against the configured store, printing one JSON result per line in input order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reqs, err := loadBatchFile(batchFile)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		e := engine.New(st, engine.Options{ModelVersion: cfg.Pricing.ModelVersion})

		results := make([]*engine.PriceResult, len(reqs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentQuotes)
		for i, req := range reqs {
			g.Go(func() error {
				res, err := e.ComputePrice(gctx, req)
				if err != nil {
					return eris.Wrapf(err, "quote %d", i+1)
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, res := range results {
			if err := enc.Encode(res); err != nil {
				return eris.Wrap(err, "encode result")
			}
		}

		zap.L().Info("batch resolved",
			zap.String("file", batchFile),
			zap.Int("quotes", len(reqs)),
		)
		return nil
	},
}

// batchColumns is the required CSV header. Tags are separated by ';' so they
// survive the comma-delimited row.
var batchColumns = []string{"base", "currency", "org", "tenant", "agency", "supplier", "product", "tags"}

// loadBatchFile parses a CSV of quote requests. The first row must be the
// header; rows are rejected eagerly so a bad file never reaches the store.
func loadBatchFile(path string) ([]engine.QuoteRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch file %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "read header of %s", path)
	}
	if len(header) != len(batchColumns) {
		return nil, eris.Errorf("batch header must be %q", strings.Join(batchColumns, ","))
	}
	for i, col := range batchColumns {
		if strings.TrimSpace(header[i]) != col {
			return nil, eris.Errorf("batch header column %d must be %q, got %q", i+1, col, header[i])
		}
	}

	now := time.Now().UTC()
	var reqs []engine.QuoteRequest
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read %s line %d", path, line)
		}

		base, err := decimal.NewFromString(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, eris.Wrapf(err, "line %d: parse base %q", line, row[0])
		}
		if row[2] == "" {
			return nil, eris.Errorf("line %d: org is required", line)
		}

		var tags []string
		if row[7] != "" {
			tags = strings.Split(row[7], ";")
		}

		reqs = append(reqs, engine.QuoteRequest{
			BaseAmount: base,
			Currency:   row[1],
			Scope: engine.Context{
				OrganizationID: row[2],
				TenantID:       row[3],
				AgencyID:       row[4],
				SupplierID:     row[5],
				ProductID:      row[6],
				Tags:           tags,
				Now:            now,
			},
		})
	}
	if len(reqs) == 0 {
		return nil, eris.Errorf("batch file %s has no quote rows", path)
	}
	return reqs, nil
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "CSV file of quote requests")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
