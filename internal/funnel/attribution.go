package funnel

import (
	"net/url"
	"time"
)

// MaxAttributionLength bounds every captured attribution value, in characters
const MaxAttributionLength = 500

// Hidden field names written by the controller
const (
	FieldListingID   = "listing_id"
	FieldListingURL  = "listing_url"
	FieldReferrer    = "referrer"
	FieldLandingPage = "landing_page"
	FieldSubmittedAt = "submitted_at"
)

// attributionParams maps hidden fields to the query parameters that feed them.
// The first non-empty alias wins.
var attributionParams = []struct {
	field string
	keys  []string
}{
	{"utm_source", []string{"utm_source"}},
	{"utm_medium", []string{"utm_medium"}},
	{"utm_campaign", []string{"utm_campaign"}},
	{"utm_term", []string{"utm_term"}},
	{"utm_content", []string{"utm_content"}},
	{"fbclid", []string{"fbclid"}},
	{"gclid", []string{"gclid"}},
	{"msclkid", []string{"msclkid"}},
	{"ttclid", []string{"ttclid"}},
	{"ad_id", []string{"ad_id", "adid", "ad"}},
	{"adset_id", []string{"adset_id", "adsetid", "adset"}},
	{"campaign_id", []string{"campaign_id", "campaignid", "campaign"}},
}

// Attribution is the marketing context captured once at page load
type Attribution map[string]string

// CaptureAttribution reads the page query string and referrer.
// Absent parameters yield empty values.
func CaptureAttribution(pageURL, referrer string, now time.Time) Attribution {
	snap := Attribution{
		FieldReferrer:    boundValue(referrer),
		FieldLandingPage: boundValue(pageURL),
		FieldSubmittedAt: formatTimestamp(now),
	}

	var query url.Values
	if u, err := url.Parse(pageURL); err == nil {
		query = u.Query()
	}

	for _, p := range attributionParams {
		snap[p.field] = ""
		for _, key := range p.keys {
			if v := query.Get(key); v != "" {
				snap[p.field] = boundValue(v)
				break
			}
		}
	}
	return snap
}

// boundValue truncates to MaxAttributionLength characters
func boundValue(s string) string {
	runes := []rune(s)
	if len(runes) > MaxAttributionLength {
		return string(runes[:MaxAttributionLength])
	}
	return s
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
