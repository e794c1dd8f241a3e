package funnel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	listingBase = "https://rentals.example.com/listings"
	feed        = `[
		{"Unit":{"Id":300,"Address":{"AddressLine1":"300 Cedar St","City":"San Diego","State":"CA","PostalCode":"92103"}}},
		{"Unit":{"Id":"","Address":{"AddressLine1":"No Id Way"}}},
		{"Unit":{"Id":100,"Address":{"AddressLine1":"100 Ash St","City":"San Diego","State":"CA","PostalCode":92101}}},
		{"Unit":{"Id":200,"UnitNumber":"7"}}
	]`
)

// fakeSite stands in for the site origin: the listings proxy, the native
// form endpoint and the lead hook function.
type fakeSite struct {
	mu            sync.Mutex
	listingStatus int
	formStatus    int
	formPosts     []url.Values
	hookBodies    [][]byte
	server        *httptest.Server
}

func newFakeSite(t *testing.T) *fakeSite {
	s := &fakeSite{listingStatus: http.StatusOK, formStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/.netlify/functions/listings", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := s.listingStatus
		s.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, feed)
	})
	mux.HandleFunc("/.netlify/functions/lead-hook", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.hookBodies = append(s.hookBodies, body)
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		s.mu.Lock()
		s.formPosts = append(s.formPosts, r.PostForm)
		status := s.formStatus
		s.mu.Unlock()
		if status >= 300 && status < 400 {
			http.Redirect(w, r, "/thanks", status)
			return
		}
		w.WriteHeader(status)
	})
	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

func (s *fakeSite) setStatuses(listing, form int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listingStatus = listing
	s.formStatus = form
}

func (s *fakeSite) forms() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.formPosts...)
}

func (s *fakeSite) hooks() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.hookBodies...)
}

type recordingNavigator struct {
	urls []string
}

func (n *recordingNavigator) Assign(u string) { n.urls = append(n.urls, u) }

type fakeBeacon struct {
	accept bool
	calls  int
	body   []byte
}

func (b *fakeBeacon) SendBeacon(_, _ string, body []byte) bool {
	b.calls++
	b.body = body
	return b.accept
}

func newTestController(t *testing.T, site *fakeSite, nav Navigator, beacon Beacon) *Controller {
	page, err := DefaultPage()
	require.NoError(t, err)

	c, err := NewController(page, Options{
		SiteURL:        site.server.URL,
		ListingBaseURL: listingBase,
		Navigator:      nav,
		Beacon:         beacon,
		Now:            func() time.Time { return time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return c
}

func fillVisitor(t *testing.T, c *Controller) {
	require.NoError(t, c.SetField("first_name", "Ada"))
	require.NoError(t, c.SetField("last_name", "Lovelace"))
	require.NoError(t, c.SetField("email", "ada@example.com"))
	require.NoError(t, c.SetField("phone", "6195550100"))
}

func TestLoadPopulatesSortedOptions(t *testing.T) {
	site := newFakeSite(t)
	c := newTestController(t, site, &recordingNavigator{}, nil)

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, StateReady, c.State())

	view := c.View()
	require.Len(t, view.Options, 4)
	assert.Equal(t, SelectOption{Label: PlaceholderLabel, Selected: true, Disabled: true}, view.Options[0])
	assert.Equal(t, "100 Ash St San Diego, CA 92101", view.Options[1].Label)
	assert.Equal(t, "300 Cedar St San Diego, CA 92103", view.Options[2].Label)
	assert.Equal(t, SelectOption{Value: "200", Label: "Unit 7", URL: listingBase + "/200"}, view.Options[3])
	assert.Equal(t, 0, view.SelectedIndex)
	assert.Equal(t, "Loaded 3 listings.", view.ListingHelp)
	assert.Empty(t, view.Hidden[FieldListingURL])

	assert.ErrorIs(t, c.Load(context.Background()), ErrAlreadyLoaded)
}

func TestLoadFailureShowsPlaceholder(t *testing.T) {
	site := newFakeSite(t)
	site.setStatuses(http.StatusBadGateway, http.StatusOK)
	c := newTestController(t, site, &recordingNavigator{}, nil)

	err := c.Load(context.Background())
	require.ErrorIs(t, err, ErrListingsUnavailable)
	assert.Equal(t, StateReady, c.State())

	view := c.View()
	require.Len(t, view.Options, 1)
	assert.Equal(t, LoadFailedLabel, view.Options[0].Label)
	assert.True(t, view.Options[0].Disabled)
	assert.Equal(t, LoadFailedHelp, view.ListingHelp)
}

func TestSelectSyncsHiddenFields(t *testing.T) {
	site := newFakeSite(t)
	c := newTestController(t, site, &recordingNavigator{}, nil)

	assert.ErrorIs(t, c.Select("100"), ErrNotReady)
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.Select("300"))
	view := c.View()
	assert.Equal(t, "300", view.Hidden[FieldListingID])
	assert.Equal(t, listingBase+"/300", view.Hidden[FieldListingURL])

	require.NoError(t, c.SelectIndex(1))
	view = c.View()
	assert.Equal(t, "100", view.Hidden[FieldListingID])
	assert.Equal(t, listingBase+"/100", view.Hidden[FieldListingURL])

	assert.ErrorIs(t, c.Select("999"), ErrUnknownListing)
	assert.ErrorIs(t, c.SelectIndex(0), ErrUnknownListing, "placeholder cannot be chosen")
	assert.ErrorIs(t, c.SetField("favorite_color", "blue"), ErrUnknownField)
}

func TestSubmitWithoutSelectionIsBlocked(t *testing.T) {
	site := newFakeSite(t)
	nav := &recordingNavigator{}
	c := newTestController(t, site, nav, nil)
	require.NoError(t, c.Load(context.Background()))
	fillVisitor(t, c)

	err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrNoListingSelected)

	c.Wait()
	view := c.View()
	assert.Equal(t, NoSelectionMessage, view.FormError)
	assert.False(t, view.SubmitDisabled)
	assert.Equal(t, StateReady, c.State())
	assert.Empty(t, site.forms())
	assert.Empty(t, site.hooks())
	assert.Empty(t, nav.urls)
}

func TestSubmitSuccessFiresHookOnceAndRedirects(t *testing.T) {
	site := newFakeSite(t)
	nav := &recordingNavigator{}
	c := newTestController(t, site, nav, nil)

	c.CaptureAttribution(site.server.URL+"/?utm_source=ads&utm_campaign=spring&fbclid=abc", "https://www.facebook.com/")
	require.NoError(t, c.Load(context.Background()))
	fillVisitor(t, c)
	require.NoError(t, c.Select("100"))

	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	assert.Equal(t, StateRedirected, c.State())
	assert.Equal(t, []string{listingBase + "/100"}, nav.urls)

	forms := site.forms()
	require.Len(t, forms, 1)
	posted := forms[0]
	assert.Equal(t, "lead", posted.Get("form-name"))
	assert.Equal(t, "Ada", posted.Get("first_name"))
	assert.Equal(t, "100", posted.Get("listing"))
	assert.Equal(t, "100", posted.Get(FieldListingID))
	assert.Equal(t, listingBase+"/100", posted.Get(FieldListingURL))
	assert.Equal(t, "ads", posted.Get("utm_source"))
	assert.Equal(t, "spring", posted.Get("utm_campaign"))
	assert.Equal(t, "abc", posted.Get("fbclid"))
	assert.Equal(t, "", posted.Get("gclid"))
	assert.Equal(t, "2026-05-01T09:30:00.000Z", posted.Get(FieldSubmittedAt))
	honeypot, ok := posted["bot-field"]
	assert.True(t, ok, "honeypot field should be posted")
	assert.Equal(t, []string{""}, honeypot)

	hooks := site.hooks()
	require.Len(t, hooks, 1)
	var hook map[string]string
	require.NoError(t, json.Unmarshal(hooks[0], &hook))
	assert.Equal(t, "ada@example.com", hook["email"])
	assert.Equal(t, listingBase+"/100", hook[FieldListingURL])

	view := c.View()
	assert.True(t, view.SubmitDisabled)
	assert.Equal(t, SubmittingLabel, view.SubmitLabel)
}

func TestSubmitTreatsRedirectAsSuccess(t *testing.T) {
	site := newFakeSite(t)
	site.setStatuses(http.StatusOK, http.StatusSeeOther)
	nav := &recordingNavigator{}
	c := newTestController(t, site, nav, nil)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Select("200"))

	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	assert.Equal(t, []string{listingBase + "/200"}, nav.urls)
	assert.Len(t, site.forms(), 1, "redirect must not be followed")
}

func TestSubmitUsesBeaconWhenAvailable(t *testing.T) {
	site := newFakeSite(t)
	nav := &recordingNavigator{}
	beacon := &fakeBeacon{accept: true}
	c := newTestController(t, site, nav, beacon)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Select("300"))

	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	assert.Equal(t, 1, beacon.calls)
	assert.Contains(t, string(beacon.body), `"listing_id":"300"`)
	assert.Empty(t, site.hooks())
	assert.Equal(t, []string{listingBase + "/300"}, nav.urls)
}

func TestSubmitFallsBackWhenBeaconRefuses(t *testing.T) {
	site := newFakeSite(t)
	beacon := &fakeBeacon{accept: false}
	c := newTestController(t, site, &recordingNavigator{}, beacon)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Select("300"))

	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	assert.Equal(t, 1, beacon.calls)
	assert.Len(t, site.hooks(), 1)
}

func TestSubmitFailureReenablesForm(t *testing.T) {
	site := newFakeSite(t)
	site.setStatuses(http.StatusOK, http.StatusInternalServerError)
	nav := &recordingNavigator{}
	c := newTestController(t, site, nav, nil)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Select("100"))

	err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmitFailed)
	c.Wait()

	view := c.View()
	assert.Equal(t, SubmitErrorMessage, view.FormError)
	assert.False(t, view.SubmitDisabled)
	assert.Equal(t, DefaultSubmitLabel, view.SubmitLabel)
	assert.Equal(t, StateReady, c.State())
	assert.Empty(t, nav.urls)
	assert.Empty(t, site.hooks())

	// the visitor retries manually once the endpoint recovers
	site.setStatuses(http.StatusOK, http.StatusOK)
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()
	assert.Empty(t, c.View().FormError)
	assert.Equal(t, []string{listingBase + "/100"}, nav.urls)
}

func TestSubmitNetworkFailure(t *testing.T) {
	site := newFakeSite(t)
	c := newTestController(t, site, &recordingNavigator{}, nil)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Select("100"))

	site.server.Close()
	err := c.Submit(context.Background())
	require.True(t, errors.Is(err, ErrSubmitFailed))
	assert.Equal(t, SubmitErrorMessage, c.View().FormError)
}

func TestCaptureAttributionOnlyOnce(t *testing.T) {
	site := newFakeSite(t)
	c := newTestController(t, site, &recordingNavigator{}, nil)

	c.CaptureAttribution("https://funnel.example.com/?utm_source=first", "")
	c.CaptureAttribution("https://funnel.example.com/?utm_source=second", "https://ref.example.com/")

	view := c.View()
	assert.Equal(t, "first", view.Hidden["utm_source"])
	assert.Empty(t, view.Hidden[FieldReferrer])
}

func TestViewIsACopy(t *testing.T) {
	site := newFakeSite(t)
	c := newTestController(t, site, &recordingNavigator{}, nil)
	require.NoError(t, c.Load(context.Background()))

	view := c.View()
	view.Hidden[FieldListingURL] = "https://evil.example.com"
	view.Options[0].Label = "changed"

	assert.Empty(t, c.View().Hidden[FieldListingURL])
	assert.Equal(t, PlaceholderLabel, c.View().Options[0].Label)
}

func TestNewControllerValidation(t *testing.T) {
	page, err := DefaultPage()
	require.NoError(t, err)

	_, err = NewController(nil, Options{SiteURL: "https://x.example.com", Navigator: &recordingNavigator{}})
	assert.Error(t, err)
	_, err = NewController(page, Options{SiteURL: "https://x.example.com"})
	assert.Error(t, err)
	_, err = NewController(page, Options{SiteURL: "/relative", Navigator: &recordingNavigator{}})
	assert.Error(t, err)
}
