package stock

import "github.com/shopspring/decimal"

type dimension int

const (
	mass dimension = iota + 1
	length
	volume
	count
)

type factor struct {
	dim  dimension
	base decimal.Decimal // size of one unit in the dimension's base unit
}

var units = map[string]factor{
	"g":     {mass, decimal.NewFromInt(1)},
	"kg":    {mass, decimal.NewFromInt(1000)},
	"cm":    {length, decimal.NewFromInt(1)},
	"m":     {length, decimal.NewFromInt(100)},
	"mL":    {volume, decimal.NewFromInt(1)},
	"L":     {volume, decimal.NewFromInt(1000)},
	"pcs":   {count, decimal.NewFromInt(1)},
	"dozen": {count, decimal.NewFromInt(12)},
}

// Convert expresses v, measured in from, in unit to. It fails for units of
// different dimensions and for units it does not know.
func Convert(v decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	if from == to {
		return v, true
	}
	f, ok := units[from]
	if !ok {
		return decimal.Decimal{}, false
	}
	t, ok := units[to]
	if !ok || f.dim != t.dim {
		return decimal.Decimal{}, false
	}
	return v.Mul(f.base).Div(t.base), true
}
