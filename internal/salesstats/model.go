package salesstats

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ID is an opaque catalog identifier. Exports carry seller ids either as JSON
// strings or as bare numbers, both decode into the same value.
type ID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Seller is a catalog entry for a salesperson.
type Seller struct {
	ID        ID     `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Product is a catalog entry keyed by SKU.
type Product struct {
	SKU           string          `json:"sku"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

// LineItem is a single product entry within a purchase record. SalePrice and
// Discount are nil when the export omits them.
type LineItem struct {
	SKU       string           `json:"sku"`
	Quantity  int              `json:"quantity" validate:"gte=0"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
	Discount  *decimal.Decimal `json:"discount,omitempty"`
}

// PurchaseRecord groups the line items sold by one seller in one receipt.
type PurchaseRecord struct {
	SellerID ID         `json:"seller_id"`
	Items    []LineItem `json:"items" validate:"dive"`
}

// Input is the full dataset fed to the pipeline. A nil collection is treated
// as missing; an empty one is present but empty.
type Input struct {
	Sellers         []Seller         `json:"sellers" validate:"required"`
	Products        []Product        `json:"products" validate:"required"`
	PurchaseRecords []PurchaseRecord `json:"purchase_records" validate:"required,dive"`
}

// TopProduct is one entry of a seller's best-selling products.
type TopProduct struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// SellerReport is the finalized, ranked statistics for one seller.
type SellerReport struct {
	SellerID    ID           `json:"seller_id"`
	Name        string       `json:"name"`
	Revenue     float64      `json:"revenue"`
	Profit      float64      `json:"profit"`
	SalesCount  int          `json:"sales_count"`
	Bonus       float64      `json:"bonus"`
	TopProducts []TopProduct `json:"top_products"`
}

// Stats summarises how much of the dataset contributed to the result.
type Stats struct {
	Records        int `json:"records"`
	LineItems      int `json:"line_items"`
	SkippedRecords int `json:"skipped_records"`
	SkippedItems   int `json:"skipped_line_items"`
}

// Report is the output of a single pipeline run.
type Report struct {
	Sellers []SellerReport `json:"sellers"`
	Stats   Stats          `json:"stats"`
}

// sellerAggregate holds the running totals for one seller.
type sellerAggregate struct {
	id         ID
	name       string
	revenue    decimal.Decimal
	profit     decimal.Decimal
	salesCount int
	quantities map[string]int
	skuOrder   []string

	bonus       decimal.Decimal
	topProducts []TopProduct
}

func newSellerAggregate(s Seller) *sellerAggregate {
	return &sellerAggregate{
		id:         s.ID,
		name:       displayName(s.FirstName, s.LastName),
		revenue:    decimal.Zero,
		profit:     decimal.Zero,
		quantities: make(map[string]int),
		bonus:      decimal.Zero,
	}
}

func (a *sellerAggregate) addQuantity(sku string, qty int) {
	if _, ok := a.quantities[sku]; !ok {
		a.skuOrder = append(a.skuOrder, sku)
	}
	a.quantities[sku] += qty
}
