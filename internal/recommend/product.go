// Package recommend implements the client-side query pipeline for the
// recommendation demo: response normalization, price windowing, the
// filter/sort/paginate pipeline, and the request-lifecycle orchestration
// around the backend's recommend and trust endpoints.
package recommend

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// Product is the canonical, display-ready product record. Immutable once
// built by the normalizer.
type Product struct {
	ASIN    string          `json:"asin"`
	Title   string          `json:"title"`
	Score   float64         `json:"score"`
	Reviews int             `json:"reviews"`
	Price   *float64        `json:"price"` // nil means unknown, never guessed
	Image   string          `json:"image,omitempty"`
	Raw     json.RawMessage `json:"-"` // original source object, passed through opaquely
}

// Field aliases accepted by the normalizer, in priority order.
var (
	asinFields    = []string{"asin", "ASIN", "id"}
	titleFields   = []string{"title", "name", "product_title", "product_name"}
	priceFields   = []string{"price", "actual_price", "discount_price"}
	reviewsFields = []string{"reviews", "review_count", "num_reviews"}
	imageFields   = []string{"image", "image_url", "imgLink"}
)

// NormalizeBatch coerces an arbitrary backend payload into Products.
// A payload that is not a JSON array yields an empty batch. Malformed
// elements degrade to defaults; this function never fails.
func NormalizeBatch(raw json.RawMessage) []Product {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []Product{}
	}

	out := make([]Product, 0, len(elems))
	seen := make(map[string]bool, len(elems))
	for i, elem := range elems {
		p := normalizeOne(elem, i)
		// ASINs must be unique within a batch; collisions fall back to the
		// first unused synthetic name, which itself may be taken by a real
		// ASIN earlier in the batch.
		for j := i; seen[p.ASIN]; j++ {
			p.ASIN = fallbackASIN(j)
		}
		seen[p.ASIN] = true
		out = append(out, p)
	}
	return out
}

func normalizeOne(elem json.RawMessage, index int) Product {
	var fields map[string]any
	_ = json.Unmarshal(elem, &fields) // null or non-object leaves fields nil

	p := Product{Raw: elem}

	p.ASIN = firstString(fields, asinFields)
	if p.ASIN == "" {
		p.ASIN = fallbackASIN(index)
	}

	p.Title = firstString(fields, titleFields)
	if p.Title == "" {
		p.Title = "Untitled product"
	}

	if score, ok := numericField(fields, "score"); ok && score > 0 {
		p.Score = score
	}

	if reviews, ok := firstNumeric(fields, reviewsFields); ok && reviews >= 0 {
		p.Reviews = int(reviews)
	} else {
		// Placeholder when the source has no review count. Known fidelity
		// gap carried over from the source demo: the value is fabricated.
		p.Reviews = 50 + rand.Intn(4950)
	}

	for _, key := range priceFields {
		if v, ok := fields[key]; ok {
			if price := ParsePrice(v); price != nil {
				p.Price = price
				break
			}
		}
	}

	p.Image = firstString(fields, imageFields)

	return p
}

func fallbackASIN(index int) string {
	return fmt.Sprintf("ASINFALLBACK%d", index)
}

// ParsePrice coerces a raw price value. Numbers pass through; strings are
// stripped of every rune that is not a digit or decimal point before
// parsing. Anything else, or an unparseable remainder, is an unknown price.
func ParsePrice(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		var b strings.Builder
		for _, r := range val {
			if (r >= '0' && r <= '9') || r == '.' {
				b.WriteRune(r)
			}
		}
		parsed, err := strconv.ParseFloat(b.String(), 64)
		if err != nil || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

func firstString(fields map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstNumeric(fields map[string]any, keys []string) (float64, bool) {
	for _, key := range keys {
		if n, ok := numericField(fields, key); ok {
			return n, true
		}
	}
	return 0, false
}

func numericField(fields map[string]any, key string) (float64, bool) {
	switch val := fields[key].(type) {
	case float64:
		return val, true
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
