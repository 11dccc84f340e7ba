package recommend

import "sort"

// SortKey selects the ordering applied to a normalized batch.
type SortKey string

const (
	// SortBestMatch orders by backend relevance score, descending.
	SortBestMatch SortKey = "best_match"
	// SortPriceAsc orders by known price ascending; unknown prices sort last.
	SortPriceAsc SortKey = "price"
	// SortReviewsDesc orders by review count, descending.
	SortReviewsDesc SortKey = "reviews"
)

// ParseSortKey maps a user-supplied sort name to a SortKey, defaulting to
// best match for anything unrecognized.
func ParseSortKey(s string) SortKey {
	switch s {
	case "price", "price_asc", "price-ascending":
		return SortPriceAsc
	case "reviews", "reviews_desc", "reviews-descending":
		return SortReviewsDesc
	default:
		return SortBestMatch
	}
}

// FilterByPrice keeps products whose price is unknown, or falls inside the
// window (both bounds inclusive). Unknown prices are never excluded on
// price grounds alone.
func FilterByPrice(items []Product, window PriceRange) []Product {
	out := make([]Product, 0, len(items))
	for _, p := range items {
		if p.Price == nil || window.Contains(*p.Price) {
			out = append(out, p)
		}
	}
	return out
}

// SortProducts returns a stably sorted copy of items under the given key.
// Equal-key elements preserve their original relative order.
func SortProducts(items []Product, key SortKey) []Product {
	out := make([]Product, len(items))
	copy(out, items)

	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Price, out[j].Price
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return *a < *b
		})
	case SortReviewsDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Reviews > out[j].Reviews
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Score > out[j].Score
		})
	}

	return out
}

// TotalPages reports how many pages a list of count items spans. An empty
// list still has one (empty) page.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate slices out the 1-based page of the given size. Out-of-range page
// numbers are clamped, never errors. Returns the page slice, the clamped
// page number, and the total page count.
func Paginate(items []Product, page, pageSize int) ([]Product, int, int) {
	total := TotalPages(len(items), pageSize)
	page = clampInt(page, 1, total)

	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], page, total
}
