package listings

import (
	"slices"
	"strings"
)

// Option is one selectable listing in the funnel form
type Option struct {
	ListingID string `json:"listing_id"`
	Label     string `json:"label"`
	URL       string `json:"url"`
}

// BuildOptions turns upstream listings into the selectable option set.
// Records without an identifier are dropped; the rest are stably sorted
// by label in ascending lexical order.
func BuildOptions(records []Listing, baseURL string) []Option {
	options := make([]Option, 0, len(records))
	for _, rec := range records {
		id := rec.ListingID()
		if id == "" {
			continue
		}
		options = append(options, Option{
			ListingID: id,
			Label:     rec.Unit.Label(),
			URL:       ListingURL(baseURL, id),
		})
	}

	slices.SortStableFunc(options, func(a, b Option) int {
		return strings.Compare(a.Label, b.Label)
	})
	return options
}
