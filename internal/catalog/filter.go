package catalog

import (
	"fmt"
	"slices"
	"strings"
)

type SortOrder string

const (
	SortFeatured  SortOrder = "featured"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
)

// Filter narrows the shop listing. Zero values mean "no constraint".
type Filter struct {
	Category Category
	MaxPrice int64
	Sort     SortOrder
}

func (f Filter) normalize() (Filter, error) {
	if strings.EqualFold(string(f.Category), "all") {
		f.Category = ""
	}
	if f.Category != "" && !f.Category.Valid() {
		return f, fmt.Errorf("unknown category %q", f.Category)
	}
	if f.MaxPrice < 0 {
		return f, fmt.Errorf("max price cannot be negative: %d", f.MaxPrice)
	}
	switch f.Sort {
	case "":
		f.Sort = SortFeatured
	case SortFeatured, SortPriceLow, SortPriceHigh:
	default:
		return f, fmt.Errorf("unknown sort order %q", f.Sort)
	}
	return f, nil
}

// apply keeps registry order for SortFeatured; price sorts are stable.
func (f Filter) apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MaxPrice > 0 && p.EffectivePrice() > f.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b Product) int {
			return compareInt64(a.EffectivePrice(), b.EffectivePrice())
		})
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b Product) int {
			return compareInt64(b.EffectivePrice(), a.EffectivePrice())
		})
	}

	return out
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
