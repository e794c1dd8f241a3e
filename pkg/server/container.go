package server

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"elite-rental-funnel/internal/config"
	"elite-rental-funnel/internal/funnel"
	"elite-rental-funnel/internal/httpclient"
	"elite-rental-funnel/internal/leadhook"
	"elite-rental-funnel/internal/listings"
	"elite-rental-funnel/internal/logging"
	"elite-rental-funnel/internal/metrics"
	"elite-rental-funnel/web"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Metrics   *metrics.Metrics
	Proxy     *listings.Proxy
	Forwarder *leadhook.Forwarder
	Page      *funnel.Page
	Markup    []byte

	// Internal dependencies
	clients []*resty.Client
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	page, err := funnel.DefaultPage()
	if err != nil {
		return nil, fmt.Errorf("failed to parse landing page: %w", err)
	}

	m := metrics.New()

	listingsClient := httpclient.New(cfg.Listings.Timeout, cfg.Listings.UserAgent)
	hookClient := httpclient.New(cfg.Hook.Timeout, cfg.Hook.UserAgent)

	container := &Container{
		Config:    cfg,
		Metrics:   m,
		Proxy:     listings.NewProxy(cfg.Listings, listingsClient, m, logging.Component("listings")),
		Forwarder: leadhook.NewForwarder(cfg.Hook, hookClient, m, logging.Component("lead-hook")),
		Page:      page,
		Markup:    web.IndexHTML,
		clients:   []*resty.Client{listingsClient, hookClient},
	}

	return container, nil
}

// Close releases idle upstream connections
func (c *Container) Close() error {
	for _, client := range c.clients {
		client.GetClient().CloseIdleConnections()
	}
	c.clients = nil
	return nil
}
