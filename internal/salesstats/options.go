package salesstats

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultTopN is the number of best-selling products kept per seller.
const DefaultTopN = 10

// SalesCountMode selects what a seller's sales count measures.
type SalesCountMode string

const (
	// SalesCountUnits adds the quantity of every resolved line item.
	SalesCountUnits SalesCountMode = "units"
	// SalesCountRecords adds one per purchase record attributed to the seller.
	SalesCountRecords SalesCountMode = "records"
)

// ParseSalesCountMode parses "units" or "records".
func ParseSalesCountMode(value string) (SalesCountMode, error) {
	switch mode := SalesCountMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case SalesCountUnits, SalesCountRecords:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: unknown sales count mode %q", ErrInvalidConfig, value)
	}
}

// Precision is the number of decimal places money is rounded to.
type Precision int32

const (
	// PrecisionInteger rounds to whole currency units.
	PrecisionInteger Precision = 0
	// PrecisionCents rounds to two decimal places.
	PrecisionCents Precision = 2
)

// ParsePrecision parses "integer" or "cents".
func ParsePrecision(value string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "integer", "int", "0":
		return PrecisionInteger, nil
	case "cents", "2":
		return PrecisionCents, nil
	default:
		return 0, fmt.Errorf("%w: unknown rounding %q", ErrInvalidConfig, value)
	}
}

// String returns the configuration name of p.
func (p Precision) String() string {
	if p == PrecisionCents {
		return "cents"
	}
	return "integer"
}

func (p Precision) round(d decimal.Decimal) decimal.Decimal {
	return d.Round(int32(p))
}

// Options configures a pipeline run.
type Options struct {
	Revenue    RevenuePolicy  `validate:"required"`
	Bonus      BonusPolicy    `validate:"required"`
	TopN       int            `validate:"min=1"`
	SalesCount SalesCountMode `validate:"oneof=units records"`
	Precision  Precision      `validate:"oneof=0 2"`
	// Strict rejects empty seller, product or purchase record collections.
	Strict bool
}

// DefaultOptions returns the built-in policies with the default knobs.
func DefaultOptions() Options {
	return Options{
		Revenue:    SimpleRevenue,
		Bonus:      ProfitRankBonus,
		TopN:       DefaultTopN,
		SalesCount: SalesCountUnits,
		Precision:  PrecisionInteger,
	}
}
