// Package funnel drives the landing page lead form.
//
// A Controller owns the page's view state (selector contents, hidden fields,
// submit control, messages) and changes it only through its transitions:
// Load, Select, SetField, CaptureAttribution and Submit. It is not safe for
// concurrent use; like a browser page it expects one caller at a time. The
// only background work is the detached lead hook call started by Submit.
package funnel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"elite-rental-funnel/internal/httpclient"
	"elite-rental-funnel/internal/listings"
)

// Default same-origin endpoints of the serverless functions
const (
	DefaultListingsPath = "/.netlify/functions/listings"
	DefaultLeadHookPath = "/.netlify/functions/lead-hook"
)

// Navigator moves the visitor to another page
type Navigator interface {
	Assign(url string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(url string)

// Assign implements Navigator
func (f NavigatorFunc) Assign(url string) { f(url) }

// Beacon queues a small request that outlives the page, if the platform supports it.
// SendBeacon reports whether the request was queued.
type Beacon interface {
	SendBeacon(url, contentType string, body []byte) bool
}

// Options configures a Controller
type Options struct {
	// SiteURL is the origin the page was served from
	SiteURL        string
	ListingsPath   string
	LeadHookPath   string
	ListingBaseURL string

	// Client serves the listings and lead hook calls
	Client *resty.Client
	// FormClient posts the native form and must not follow redirects
	FormClient *resty.Client

	Navigator Navigator
	Beacon    Beacon
	Logger    *logrus.Entry
	Now       func() time.Time
}

// Controller is the funnel page state machine
type Controller struct {
	page       *Page
	opts       Options
	site       *url.URL
	state      State
	view       ViewState
	attributed bool
	logger     *logrus.Entry
	wg         sync.WaitGroup
}

// NewController binds a controller to a parsed page
func NewController(page *Page, opts Options) (*Controller, error) {
	if page == nil {
		return nil, errors.New("page is required")
	}
	if opts.Navigator == nil {
		return nil, errors.New("navigator is required")
	}

	site, err := url.Parse(opts.SiteURL)
	if err != nil || !site.IsAbs() {
		return nil, fmt.Errorf("invalid site URL %q", opts.SiteURL)
	}

	if opts.ListingsPath == "" {
		opts.ListingsPath = DefaultListingsPath
	}
	if opts.LeadHookPath == "" {
		opts.LeadHookPath = DefaultLeadHookPath
	}
	if opts.Client == nil {
		opts.Client = httpclient.New(0, "")
	}
	if opts.FormClient == nil {
		opts.FormClient = httpclient.NewNoRedirect(0, "")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.WithField("component", "funnel")
	}

	c := &Controller{
		page:   page,
		opts:   opts,
		site:   site,
		state:  StateLoading,
		logger: opts.Logger,
		view: ViewState{
			SubmitLabel: page.SubmitLabel,
			Hidden:      make(map[string]string, len(page.HiddenFields)),
			Fields:      make(map[string]string, len(page.VisitorFields)),
		},
	}
	if c.view.SubmitLabel == "" {
		c.view.SubmitLabel = DefaultSubmitLabel
	}
	for _, f := range page.HiddenFields {
		c.view.Hidden[f.Name] = f.Value
	}
	for _, name := range page.VisitorFields {
		c.view.Fields[name] = ""
	}
	c.view.replaceOptions(append([]SelectOption(nil), page.InitialOptions...))

	return c, nil
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	return c.state
}

// View returns a copy of the current view state
func (c *Controller) View() ViewState {
	return c.view.clone()
}

// Load fetches listings through the proxy and fills the selector.
// Failures leave a single disabled placeholder; the page is Ready either way.
func (c *Controller) Load(ctx context.Context) error {
	if c.state != StateLoading {
		return ErrAlreadyLoaded
	}

	options, err := c.fetchOptions(ctx)
	if err != nil {
		c.logger.WithError(err).Error("Failed to load listings")
		c.view.replaceOptions([]SelectOption{{Label: LoadFailedLabel, Selected: true, Disabled: true}})
		c.view.ListingHelp = LoadFailedHelp
		c.ready()
		return err
	}

	opts := make([]SelectOption, 0, len(options)+1)
	opts = append(opts, SelectOption{Label: PlaceholderLabel, Selected: true, Disabled: true})
	for _, o := range options {
		opts = append(opts, SelectOption{Value: o.ListingID, Label: o.Label, URL: o.URL})
	}
	c.view.replaceOptions(opts)
	c.view.ListingHelp = fmt.Sprintf("Loaded %d listings.", len(options))
	c.logger.WithField("count", len(options)).Info("Listings loaded")
	c.ready()
	return nil
}

func (c *Controller) fetchOptions(ctx context.Context) ([]listings.Option, error) {
	resp, err := c.opts.Client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(c.resolve(c.opts.ListingsPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListingsUnavailable, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: listings API error: %d", ErrListingsUnavailable, resp.StatusCode())
	}

	records, err := listings.DecodeListings(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListingsUnavailable, err)
	}
	return listings.BuildOptions(records, c.opts.ListingBaseURL), nil
}

func (c *Controller) ready() {
	c.state = StateReady
	c.syncListingFields()
}

// Select chooses a listing by identifier
func (c *Controller) Select(listingID string) error {
	if c.state != StateReady {
		return ErrNotReady
	}
	for i, o := range c.view.Options {
		if o.Value == listingID && listingID != "" && !o.Disabled {
			c.view.SelectedIndex = i
			c.syncListingFields()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownListing, listingID)
}

// SelectIndex chooses the selector option at position i
func (c *Controller) SelectIndex(i int) error {
	if c.state != StateReady {
		return ErrNotReady
	}
	if i < 0 || i >= len(c.view.Options) || c.view.Options[i].Disabled {
		return fmt.Errorf("%w: index %d", ErrUnknownListing, i)
	}
	c.view.SelectedIndex = i
	c.syncListingFields()
	return nil
}

// SetField records a visitor-filled input
func (c *Controller) SetField(name, value string) error {
	if c.state == StateSubmitting || c.state == StateRedirected {
		return ErrNotReady
	}
	if _, ok := c.view.Fields[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	c.view.Fields[name] = value
	return nil
}

// CaptureAttribution writes the attribution snapshot into the hidden fields.
// Only the first call per page has any effect.
func (c *Controller) CaptureAttribution(pageURL, referrer string) {
	if c.attributed {
		return
	}
	c.attributed = true

	for field, value := range CaptureAttribution(pageURL, referrer, c.opts.Now()) {
		if c.page.HasHidden(field) {
			c.view.Hidden[field] = value
		}
	}
}

// syncListingFields copies the selected option into the listing hidden fields
func (c *Controller) syncListingFields() {
	opt, _ := c.view.selected()
	c.view.Hidden[FieldListingID] = opt.Value
	c.view.Hidden[FieldListingURL] = opt.URL
}

// Submit posts the form, fires the lead hook and redirects to the chosen listing
func (c *Controller) Submit(ctx context.Context) error {
	if c.state != StateReady {
		return ErrNotReady
	}

	c.view.FormError = ""
	c.syncListingFields()

	listingURL := c.view.Hidden[FieldListingURL]
	if listingURL == "" {
		c.view.FormError = NoSelectionMessage
		return ErrNoListingSelected
	}

	c.state = StateSubmitting
	c.setSubmitting(true)
	if c.page.HasHidden(FieldSubmittedAt) {
		c.view.Hidden[FieldSubmittedAt] = formatTimestamp(c.opts.Now())
	}

	form := c.formValues()
	if err := c.postForm(ctx, form); err != nil {
		c.state = StateFailed
		c.logger.WithError(err).Error("Lead form submission failed")
		c.view.FormError = SubmitErrorMessage
		c.setSubmitting(false)
		c.state = StateReady
		return err
	}

	c.fireLeadHook(ctx, form)

	c.state = StateRedirected
	c.logger.WithField("listing_id", form.Get(FieldListingID)).Info("Lead submitted, redirecting")
	c.opts.Navigator.Assign(listingURL)
	return nil
}

// Wait blocks until detached lead hook calls have finished
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) setSubmitting(submitting bool) {
	c.view.SubmitDisabled = submitting
	if submitting {
		c.view.SubmitLabel = SubmittingLabel
		return
	}
	c.view.SubmitLabel = DefaultSubmitLabel
}

// formValues collects the form body the way the browser would
func (c *Controller) formValues() url.Values {
	form := url.Values{}
	for _, f := range c.page.HiddenFields {
		form.Set(f.Name, c.view.Hidden[f.Name])
	}
	for _, name := range c.page.VisitorFields {
		form.Set(name, c.view.Fields[name])
	}
	if opt, ok := c.view.selected(); ok {
		form.Set(c.page.SelectorName, opt.Value)
	}
	if c.page.Honeypot != "" {
		form.Set(c.page.Honeypot, "")
	}
	return form
}

func (c *Controller) postForm(ctx context.Context, form url.Values) error {
	resp, err := c.opts.FormClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(form.Encode()).
		Post(c.resolve(c.page.Action))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	// The form host answers with 200 or a redirect; only outright failures count.
	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusBadRequest {
		return fmt.Errorf("%w: status %d", ErrSubmitFailed, code)
	}
	return nil
}

// fireLeadHook sends the lead to the hook endpoint without waiting for it.
// The result is discarded; failures are only logged.
func (c *Controller) fireLeadHook(ctx context.Context, form url.Values) {
	payload := make(map[string]string, len(form))
	for k := range form {
		payload[k] = form.Get(k)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.WithError(err).Warn("Could not encode lead hook payload")
		return
	}

	hookURL := c.resolve(c.opts.LeadHookPath)
	if c.opts.Beacon != nil && c.opts.Beacon.SendBeacon(hookURL, "application/json", body) {
		return
	}

	detached := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		resp, err := c.opts.Client.R().
			SetContext(detached).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(hookURL)
		if err != nil {
			c.logger.WithError(err).Debug("Lead hook call failed")
			return
		}
		c.logger.WithField("status", resp.StatusCode()).Debug("Lead hook call completed")
	}()
}

func (c *Controller) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.site.String()
	}
	return c.site.ResolveReference(ref).String()
}
