package salesstats

import (
	"cmp"
	"slices"
)

// rank orders the aggregates by profit, assigns bonuses, derives the top
// products and projects the final reports. Money is rounded here and only here.
func rank(aggs []*sellerAggregate, opts Options) []SellerReport {
	ordered := slices.Clone(aggs)
	slices.SortStableFunc(ordered, func(a, b *sellerAggregate) int {
		return b.profit.Cmp(a.profit)
	})

	total := len(ordered)
	out := make([]SellerReport, 0, total)
	for i, agg := range ordered {
		agg.bonus = opts.Bonus.Bonus(i, total, agg.profit)
		agg.topProducts = topProducts(agg, opts.TopN)
		out = append(out, project(agg, opts.Precision))
	}
	return out
}

func topProducts(agg *sellerAggregate, n int) []TopProduct {
	items := make([]TopProduct, 0, len(agg.skuOrder))
	for _, sku := range agg.skuOrder {
		items = append(items, TopProduct{SKU: sku, Quantity: agg.quantities[sku]})
	}
	slices.SortStableFunc(items, func(a, b TopProduct) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

func project(agg *sellerAggregate, p Precision) SellerReport {
	return SellerReport{
		SellerID:    agg.id,
		Name:        agg.name,
		Revenue:     p.round(agg.revenue).InexactFloat64(),
		Profit:      p.round(agg.profit).InexactFloat64(),
		SalesCount:  agg.salesCount,
		Bonus:       p.round(agg.bonus).InexactFloat64(),
		TopProducts: agg.topProducts,
	}
}
