package listings

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"elite-rental-funnel/internal/config"
	"elite-rental-funnel/internal/metrics"
	"elite-rental-funnel/pkg/lambda"
)

// UpstreamError is the body returned when the upstream answers with a non-success status
type UpstreamError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// FunctionError is the body returned when the upstream call itself fails
type FunctionError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Proxy re-serves the upstream listings feed with a short shared cache lifetime
type Proxy struct {
	client  *resty.Client
	cfg     config.ListingsConfig
	metrics *metrics.Metrics
	logger  *logrus.Entry
}

// NewProxy creates a listings proxy
func NewProxy(cfg config.ListingsConfig, client *resty.Client, m *metrics.Metrics, logger *logrus.Entry) *Proxy {
	if logger == nil {
		logger = logrus.WithField("component", "listings_proxy")
	}
	return &Proxy{
		client:  client,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

// Fetch makes one upstream call and shapes the response for the browser.
// It never returns an error: every failure is encoded in the response.
func (p *Proxy) Fetch(ctx context.Context) *lambda.Response {
	start := time.Now()

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", p.cfg.UserAgent).
		Get(p.cfg.UpstreamURL)
	if err != nil {
		p.metrics.ObserveUpstream(metrics.OutcomeFailure, time.Since(start))
		p.logger.WithError(err).WithField("upstream", p.cfg.UpstreamURL).Error("Listings upstream request failed")
		return lambda.JSONResponse(http.StatusInternalServerError, FunctionError{
			Error:   "Function error",
			Message: err.Error(),
		}, noStore())
	}

	if !resp.IsSuccess() {
		p.metrics.ObserveUpstream(metrics.OutcomeUpstreamError, time.Since(start))
		p.logger.WithFields(logrus.Fields{
			"upstream": p.cfg.UpstreamURL,
			"status":   resp.StatusCode(),
		}).Warn("Listings upstream returned an error status")
		return lambda.JSONResponse(resp.StatusCode(), UpstreamError{
			Error:  "Upstream error",
			Status: resp.StatusCode(),
		}, noStore())
	}

	p.metrics.ObserveUpstream(metrics.OutcomeSuccess, time.Since(start))
	p.logger.WithFields(logrus.Fields{
		"bytes":      len(resp.Body()),
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("Listings fetched")

	return &lambda.Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":  "application/json; charset=utf-8",
			"Cache-Control": fmt.Sprintf("public, max-age=%d", p.cfg.CacheMaxAge),
		},
		Body: resp.Body(),
	}
}

func noStore() map[string]string {
	return map[string]string{"Cache-Control": "no-store"}
}
