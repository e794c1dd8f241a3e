package funnel

import "errors"

var (
	// ErrNoListingSelected is returned when the form is submitted without a listing
	ErrNoListingSelected = errors.New("no listing selected")

	// ErrNotReady is returned when an action arrives outside the Ready state
	ErrNotReady = errors.New("page is not ready")

	// ErrAlreadyLoaded is returned when Load runs twice on one page
	ErrAlreadyLoaded = errors.New("listings already loaded")

	// ErrListingsUnavailable is returned when the listings proxy cannot be read
	ErrListingsUnavailable = errors.New("listings unavailable")

	// ErrSubmitFailed is returned when the native form endpoint rejects the submission
	ErrSubmitFailed = errors.New("form submit failed")

	// ErrUnknownListing is returned when selecting an id that is not in the selector
	ErrUnknownListing = errors.New("listing not in selector")

	// ErrUnknownField is returned when setting a field the form does not declare
	ErrUnknownField = errors.New("unknown form field")
)
