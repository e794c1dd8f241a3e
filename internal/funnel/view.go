package funnel

import "maps"

// State is the controller's position in the page lifecycle
type State int

const (
	StateLoading State = iota
	StateReady
	StateSubmitting
	StateFailed
	StateRedirected
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateFailed:
		return "failed"
	case StateRedirected:
		return "redirected"
	default:
		return "unknown"
	}
}

// Page copy shown to the visitor
const (
	PlaceholderLabel   = "Select an address…"
	LoadFailedLabel    = "Unable to load listings — refresh to try again"
	LoadFailedHelp     = "We could not load the live listing dropdown."
	NoSelectionMessage = "Please select an address."
	SubmitErrorMessage = "Sorry — something went wrong submitting the form. Please try again."
	SubmittingLabel    = "Submitting…"
	DefaultSubmitLabel = "Continue to Listing"
)

// SelectOption is one entry of the listing selector
type SelectOption struct {
	Value    string
	Label    string
	URL      string
	Selected bool
	Disabled bool
}

// ViewState is everything the page shows, owned by the controller
type ViewState struct {
	Options        []SelectOption
	SelectedIndex  int
	ListingHelp    string
	FormError      string
	SubmitDisabled bool
	SubmitLabel    string
	Hidden         map[string]string
	Fields         map[string]string
}

// selected returns the currently selected option, if any
func (v *ViewState) selected() (SelectOption, bool) {
	if v.SelectedIndex < 0 || v.SelectedIndex >= len(v.Options) {
		return SelectOption{}, false
	}
	return v.Options[v.SelectedIndex], true
}

// replaceOptions swaps the selector contents and selects the flagged option
func (v *ViewState) replaceOptions(opts []SelectOption) {
	v.Options = opts
	v.SelectedIndex = 0
	for i, o := range opts {
		if o.Selected {
			v.SelectedIndex = i
			break
		}
	}
}

func (v ViewState) clone() ViewState {
	out := v
	out.Options = append([]SelectOption(nil), v.Options...)
	out.Hidden = maps.Clone(v.Hidden)
	out.Fields = maps.Clone(v.Fields)
	return out
}
