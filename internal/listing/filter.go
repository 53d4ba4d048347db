// Package listing holds the in-memory filter applied to the fetched listing
// set before it is returned to the listings page.
package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/colocetudiant/internal/model"
)

// DefaultMaxPrice is the ceiling used when the client sends none.
const DefaultMaxPrice = 2000

// Bounds describes the price slider offered to clients.
type Bounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// PriceBounds are the slider limits of the listings page.
var PriceBounds = Bounds{Min: 300, Max: 3000, Step: 50}

// Filter selects listings by total rent ceiling (inclusive) and a
// case-insensitive city substring. An empty City matches every listing.
type Filter struct {
	MaxPrice float64 `json:"max_price"`
	City     string  `json:"ville"`
}

// Match reports whether a satisfies both criteria.
func (f Filter) Match(a model.Annonce) bool {
	if a.TotalRent() > f.MaxPrice {
		return false
	}
	if f.City == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Ville), strings.ToLower(f.City))
}

// Apply returns the listings of all that match f, in their original order.
// The input slice is not modified.
func (f Filter) Apply(all []model.Annonce) []model.Annonce {
	out := make([]model.Annonce, 0, len(all))
	for _, a := range all {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

// ParseFilter reads max_price and ville from query values. A missing or
// unparsable max_price yields DefaultMaxPrice.
func ParseFilter(q url.Values) Filter {
	f := Filter{MaxPrice: DefaultMaxPrice, City: strings.TrimSpace(q.Get("ville"))}
	if raw := strings.TrimSpace(q.Get("max_price")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			f.MaxPrice = v
		}
	}
	return f
}
