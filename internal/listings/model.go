package listings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString decodes a JSON string or number into its textual form.
// Null and non-scalar values decode to the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
	default:
		*f = ""
	}
	return nil
}

// String returns the value trimmed of surrounding whitespace
func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// Address is the structured address of a unit. Every field is optional.
type Address struct {
	AddressLine1 string     `json:"AddressLine1"`
	City         string     `json:"City"`
	State        string     `json:"State"`
	PostalCode   FlexString `json:"PostalCode"`
}

// Unit is the rentable unit carried by an upstream listing record
type Unit struct {
	ID         FlexString `json:"Id"`
	Address    *Address   `json:"Address,omitempty"`
	UnitNumber FlexString `json:"UnitNumber"`
}

// Listing is one upstream listing record. Fields beyond the unit are opaque.
type Listing struct {
	Unit *Unit `json:"Unit,omitempty"`
}

// ListingID returns the unit identifier, or "" when the record has none
func (l Listing) ListingID() string {
	if l.Unit == nil {
		return ""
	}
	id := l.Unit.ID.String()
	if id == "0" {
		return ""
	}
	return id
}

// Label builds the human-readable label for a unit:
// street line, "City, State" and postal code, skipping empty parts.
// Without an address it falls back to "Unit N", then "Unknown address".
func (u *Unit) Label() string {
	if u == nil {
		return "Unknown address"
	}
	if u.Address == nil {
		if n := u.UnitNumber.String(); n != "" {
			return normalizeText("Unit " + n)
		}
		return "Unknown address"
	}

	a := u.Address
	cityState := joinNonEmpty(", ", a.City, a.State)
	return normalizeText(joinNonEmpty(" ", a.AddressLine1, cityState, a.PostalCode.String()))
}

// ListingURL builds the canonical listing page URL for an identifier
func ListingURL(base, id string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), id)
}

// DecodeListings parses an upstream listings body.
// A valid JSON document that is not an array yields an empty set.
func DecodeListings(body []byte) ([]Listing, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("listings body is not valid JSON")
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []Listing{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	out := make([]Listing, 0, len(raw))
	for _, item := range raw {
		var l Listing
		// Records of unexpected shape are kept as empty listings and
		// dropped later for lacking an identifier.
		if err := json.Unmarshal(item, &l); err != nil {
			l = Listing{}
		}
		out = append(out, l)
	}
	return out, nil
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// normalizeText collapses whitespace runs to single spaces and trims
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
