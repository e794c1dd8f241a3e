package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"elite-rental-funnel/internal/config"
	"elite-rental-funnel/internal/funnel"
	"elite-rental-funnel/internal/httpclient"
)

type smokeOptions struct {
	siteURL        string
	landingURL     string
	referrer       string
	listingBaseURL string
	listingID      string
	fields         map[string]string
	submit         bool
	timeout        time.Duration
}

func main() {
	var (
		siteURL   = flag.String("site", config.GetEnv("SITE_URL", "http://localhost:8888"), "Site origin serving the funnel page")
		landing   = flag.String("landing", "", "Landing page URL to capture attribution from (defaults to the site)")
		referrer  = flag.String("referrer", "", "Referrer to record")
		baseURL   = flag.String("listing-base", config.GetEnv("LISTING_BASE_URL", "https://rentallistings.elitepropertymanagementsd.com/listings"), "Base URL of listing pages")
		listingID = flag.String("listing", "", "Listing id to select (defaults to the first option)")
		firstName = flag.String("first-name", "Smoke", "Visitor first name")
		lastName  = flag.String("last-name", "Test", "Visitor last name")
		email     = flag.String("email", "smoke@example.com", "Visitor email")
		phone     = flag.String("phone", "", "Visitor phone")
		submit    = flag.Bool("submit", false, "Submit the form; without it the run stops after selection")
		timeout   = flag.Duration("timeout", 30*time.Second, "Overall run timeout")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	opts := smokeOptions{
		siteURL:        strings.TrimRight(*siteURL, "/"),
		landingURL:     *landing,
		referrer:       *referrer,
		listingBaseURL: *baseURL,
		listingID:      *listingID,
		fields: map[string]string{
			"first_name": *firstName,
			"last_name":  *lastName,
			"email":      *email,
			"phone":      *phone,
		},
		submit:  *submit,
		timeout: *timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	target, err := run(ctx, opts, logger)
	if err != nil {
		logger.WithError(err).Fatal("Smoke run failed")
	}
	if target != "" {
		fmt.Println(target)
	}
}

// run drives one visit through the funnel and returns the redirect target, if any
func run(ctx context.Context, opts smokeOptions, logger *logrus.Logger) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	client := httpclient.New(opts.timeout, "elite-rental-funnel/smoke")

	resp, err := client.R().SetContext(ctx).Get(opts.siteURL + "/")
	if err != nil {
		return "", fmt.Errorf("failed to fetch landing page: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("landing page returned %d", resp.StatusCode())
	}

	page, err := funnel.ParsePage(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", err
	}

	var target string
	controller, err := funnel.NewController(page, funnel.Options{
		SiteURL:        opts.siteURL,
		ListingBaseURL: opts.listingBaseURL,
		Client:         client,
		FormClient:     httpclient.NewNoRedirect(opts.timeout, "elite-rental-funnel/smoke"),
		Navigator:      funnel.NavigatorFunc(func(url string) { target = url }),
		Logger:         logger.WithField("component", "funnel-smoke"),
	})
	if err != nil {
		return "", err
	}

	landing := opts.landingURL
	if landing == "" {
		landing = opts.siteURL + "/"
	}
	controller.CaptureAttribution(landing, opts.referrer)

	if err := controller.Load(ctx); err != nil {
		return "", err
	}
	view := controller.View()
	logger.WithField("help", view.ListingHelp).Info("Listings loaded")

	if err := selectListing(controller, view, opts.listingID); err != nil {
		return "", err
	}

	for name, value := range opts.fields {
		if value == "" {
			continue
		}
		if err := controller.SetField(name, value); err != nil {
			logger.WithError(err).Warn("Skipping field")
		}
	}

	if !opts.submit {
		logger.WithField("listing_url", controller.View().Hidden[funnel.FieldListingURL]).Info("Dry run complete")
		return "", nil
	}

	if err := controller.Submit(ctx); err != nil {
		return "", fmt.Errorf("%w: %s", err, controller.View().FormError)
	}
	controller.Wait()

	return target, nil
}

func selectListing(c *funnel.Controller, view funnel.ViewState, listingID string) error {
	if listingID != "" {
		return c.Select(listingID)
	}
	for i, o := range view.Options {
		if !o.Disabled && o.Value != "" {
			return c.SelectIndex(i)
		}
	}
	return funnel.ErrNoListingSelected
}
