package salesstats

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)

	bonusFirst  = decimal.RequireFromString("0.15")
	bonusPodium = decimal.RequireFromString("0.10")
	bonusBase   = decimal.RequireFromString("0.05")
)

// RevenuePolicy computes the revenue of one line item, net of discount.
// Implementations must not round; the reporter rounds once at finalization.
type RevenuePolicy interface {
	Revenue(item LineItem, product Product) decimal.Decimal
}

// RevenuePolicyFunc adapts a plain function to RevenuePolicy.
type RevenuePolicyFunc func(item LineItem, product Product) decimal.Decimal

// Revenue calls f(item, product).
func (f RevenuePolicyFunc) Revenue(item LineItem, product Product) decimal.Decimal {
	return f(item, product)
}

// BonusPolicy computes the bonus of the seller at the given zero-based rank
// out of total ranked sellers.
type BonusPolicy interface {
	Bonus(index, total int, profit decimal.Decimal) decimal.Decimal
}

// BonusPolicyFunc adapts a plain function to BonusPolicy.
type BonusPolicyFunc func(index, total int, profit decimal.Decimal) decimal.Decimal

// Bonus calls f(index, total, profit).
func (f BonusPolicyFunc) Bonus(index, total int, profit decimal.Decimal) decimal.Decimal {
	return f(index, total, profit)
}

var (
	// SimpleRevenue prices a line at its override sale price, falling back to
	// the catalog price, less the normalized discount.
	SimpleRevenue RevenuePolicy = RevenuePolicyFunc(simpleRevenue)
	// ProfitRankBonus pays 15% of profit to the top seller, nothing to the
	// last seller, 10% to ranks two and three and 5% to everyone else.
	ProfitRankBonus BonusPolicy = BonusPolicyFunc(profitRankBonus)
	// PodiumFirstBonus checks ranks two and three before last place, so with
	// two or three sellers the last one still earns 10%. It reproduces
	// leaderboards published before the last-place rule took priority.
	PodiumFirstBonus BonusPolicy = BonusPolicyFunc(podiumFirstBonus)
)

func simpleRevenue(item LineItem, product Product) decimal.Decimal {
	price := product.SalePrice
	if item.SalePrice != nil && !item.SalePrice.IsZero() {
		price = *item.SalePrice
	}
	gross := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	return gross.Mul(decimal.NewFromInt(1).Sub(NormalizeDiscount(item.Discount)))
}

// NormalizeDiscount converts a discount to a fraction. Values above 1 are
// percentages; nil means no discount.
func NormalizeDiscount(discount *decimal.Decimal) decimal.Decimal {
	if discount == nil {
		return decimal.Zero
	}
	if discount.GreaterThan(decimal.NewFromInt(1)) {
		return discount.Div(hundred)
	}
	return *discount
}

func profitRankBonus(index, total int, profit decimal.Decimal) decimal.Decimal {
	return profit.Mul(BonusRate(index, total))
}

func podiumFirstBonus(index, total int, profit decimal.Decimal) decimal.Decimal {
	return profit.Mul(PodiumBonusRate(index, total))
}

// BonusRate returns the rank-tier fraction. First place always wins, so a
// lone seller earns 15%; otherwise the last seller earns nothing even when it
// also sits on the podium.
func BonusRate(index, total int) decimal.Decimal {
	switch {
	case total <= 0 || index < 0 || index >= total:
		return decimal.Zero
	case index == 0:
		return bonusFirst
	case index == total-1:
		return decimal.Zero
	case index == 1 || index == 2:
		return bonusPodium
	default:
		return bonusBase
	}
}

// PodiumBonusRate is BonusRate with the podium tier evaluated before the
// last-place tier.
func PodiumBonusRate(index, total int) decimal.Decimal {
	switch {
	case total <= 0 || index < 0 || index >= total:
		return decimal.Zero
	case index == 0:
		return bonusFirst
	case index == 1 || index == 2:
		return bonusPodium
	case index == total-1:
		return decimal.Zero
	default:
		return bonusBase
	}
}
