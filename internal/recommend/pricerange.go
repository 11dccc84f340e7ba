package recommend

import "math"

// MaxPrice is the upper bound of the price window in the demo catalog's currency.
const MaxPrice = 100000

// PriceRange is an inclusive price window.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PriceRangeFor maps a 0-100 price-importance scalar to a concrete window.
// 100 means "prefer cheapest", 0 means "price-agnostic". As importance
// rises the window shrinks and shifts toward lower prices. The arithmetic
// is load-bearing: it must match the backend demo's expectations.
func PriceRangeFor(importance int) PriceRange {
	imp := clampInt(importance, 0, 100)
	f := 1 - float64(imp)/100

	center := math.Round(f*0.6*MaxPrice + 0.2*MaxPrice)
	span := math.Round(f*0.4*MaxPrice + 500)

	return PriceRange{
		Min: math.Max(0, math.Round(center-span/2)),
		Max: math.Min(MaxPrice, math.Round(center+span/2)),
	}
}

// Contains reports whether a known price falls inside the window.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
