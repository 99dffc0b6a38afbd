package salesstats

import (
	"strings"

	"github.com/rs/zerolog"
)

// index owns the seller aggregates in catalog order. The two maps are lookups
// into that slice and the product catalog; they never hold copies.
type index struct {
	aggregates []*sellerAggregate
	sellers    map[ID]*sellerAggregate
	products   map[string]*Product
}

func newIndex(in *Input, log zerolog.Logger) *index {
	idx := &index{
		aggregates: make([]*sellerAggregate, 0, len(in.Sellers)),
		sellers:    make(map[ID]*sellerAggregate, len(in.Sellers)),
		products:   make(map[string]*Product, len(in.Products)),
	}
	for _, s := range in.Sellers {
		if strings.TrimSpace(string(s.ID)) == "" {
			log.Debug().Msg("seller without id skipped")
			continue
		}
		if _, dup := idx.sellers[s.ID]; dup {
			log.Debug().Str("seller_id", string(s.ID)).Msg("duplicate seller skipped")
			continue
		}
		agg := newSellerAggregate(s)
		idx.aggregates = append(idx.aggregates, agg)
		idx.sellers[s.ID] = agg
	}
	for i := range in.Products {
		p := &in.Products[i]
		if strings.TrimSpace(p.SKU) == "" {
			log.Debug().Msg("product without sku skipped")
			continue
		}
		if _, dup := idx.products[p.SKU]; dup {
			log.Debug().Str("sku", p.SKU).Msg("duplicate product skipped")
			continue
		}
		idx.products[p.SKU] = p
	}
	return idx
}

func displayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
