// Package salesstats turns seller and product catalogs plus raw purchase
// records into a profit-ranked seller leaderboard with bonuses and each
// seller's best-selling products.
package salesstats

import (
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Analyzer runs the aggregation pipeline with a fixed set of options.
type Analyzer struct {
	Options   Options
	Logger    zerolog.Logger
	Validator *validator.Validate
}

// Analyze runs the pipeline once and returns the ranked seller reports.
func Analyze(in *Input, opts Options) ([]SellerReport, error) {
	rep, err := (&Analyzer{Options: opts}).Run(in)
	if err != nil {
		return nil, err
	}
	return rep.Sellers, nil
}

// Run validates the options and dataset, accumulates every purchase record
// and returns the ranked report. Nothing is returned when validation fails.
func (a *Analyzer) Run(in *Input) (*Report, error) {
	v := a.Validator
	if v == nil {
		v = defaultValidator
	}
	if err := validateOptions(v, a.Options); err != nil {
		return nil, err
	}
	if err := validateInput(v, in, a.Options.Strict); err != nil {
		return nil, err
	}

	idx := newIndex(in, a.Logger)
	stats := a.accumulate(in, idx)
	sellers := rank(idx.aggregates, a.Options)

	a.Logger.Info().
		Int("sellers", len(sellers)).
		Int("records", stats.Records).
		Int("skipped_records", stats.SkippedRecords).
		Int("skipped_line_items", stats.SkippedItems).
		Msg("sales statistics computed")

	return &Report{Sellers: sellers, Stats: stats}, nil
}

func (a *Analyzer) accumulate(in *Input, idx *index) Stats {
	var stats Stats
	for _, record := range in.PurchaseRecords {
		stats.Records++
		agg, ok := idx.sellers[record.SellerID]
		if !ok {
			stats.SkippedRecords++
			stats.LineItems += len(record.Items)
			stats.SkippedItems += len(record.Items)
			a.Logger.Debug().Str("seller_id", string(record.SellerID)).Msg("purchase record for unknown seller skipped")
			continue
		}
		if a.Options.SalesCount == SalesCountRecords {
			agg.salesCount++
		}
		for _, item := range record.Items {
			stats.LineItems++
			product, ok := idx.products[item.SKU]
			if !ok {
				stats.SkippedItems++
				a.Logger.Debug().Str("sku", item.SKU).Str("seller_id", string(record.SellerID)).Msg("line item for unknown product skipped")
				continue
			}
			a.addLine(agg, item, product)
		}
	}
	return stats
}

func (a *Analyzer) addLine(agg *sellerAggregate, item LineItem, product *Product) {
	revenue := a.Options.Revenue.Revenue(item, *product)
	cost := product.PurchasePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

	agg.revenue = agg.revenue.Add(revenue)
	agg.profit = agg.profit.Add(revenue.Sub(cost))
	if a.Options.SalesCount == SalesCountUnits {
		agg.salesCount += item.Quantity
	}
	agg.addQuantity(item.SKU, item.Quantity)
}
