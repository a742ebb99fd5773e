package catalog

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/asterpay/x402/types"
	"github.com/asterpay/x402/utils"
)

// PriceTable maps operations to their minimum payment. It is fixed at
// construction and never mutated afterwards. Prices are shown to clients
// exactly as configured.
type PriceTable struct {
	prices map[types.Operation]decimal.Decimal
	labels map[types.Operation]string
}

// NewPriceTable parses and validates decimal price strings.
func NewPriceTable(raw map[types.Operation]string) (*PriceTable, error) {
	if len(raw) == 0 {
		return nil, &types.X402Error{
			Code:    types.ErrConfigError,
			Message: "price table is empty",
		}
	}

	prices := make(map[types.Operation]decimal.Decimal, len(raw))
	labels := make(map[types.Operation]string, len(raw))
	for op, s := range raw {
		price, err := utils.ValidatePrice(s)
		if err != nil {
			return nil, &types.X402Error{
				Code:    types.ErrConfigError,
				Message: fmt.Sprintf("invalid price for %s: %v", op, err),
			}
		}
		prices[op] = price
		labels[op] = s
	}

	return &PriceTable{prices: prices, labels: labels}, nil
}

// Price returns the minimum amount for op.
func (p *PriceTable) Price(op types.Operation) (decimal.Decimal, bool) {
	price, ok := p.prices[op]
	return price, ok
}

// Display returns the configured price string for op, or "" if op is not
// priced.
func (p *PriceTable) Display(op types.Operation) string {
	return p.labels[op]
}

// Operations returns the priced operations in name order.
func (p *PriceTable) Operations() []types.Operation {
	ops := make([]types.Operation, 0, len(p.prices))
	for op := range p.prices {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// Strings renders the table the way clients see it, e.g. {"summarize": "0.02"}.
func (p *PriceTable) Strings() map[string]string {
	out := make(map[string]string, len(p.labels))
	for op, label := range p.labels {
		out[op.String()] = label
	}
	return out
}
