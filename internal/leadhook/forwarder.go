// Package leadhook relays funnel lead submissions to an optional webhook.
//
// Forwarding is best-effort. Apart from method errors, every outcome is
// reported to the caller as a success so the visitor-facing redirect is
// never held up by the destination.
package leadhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"elite-rental-funnel/internal/config"
	"elite-rental-funnel/internal/metrics"
	"elite-rental-funnel/pkg/lambda"
)

// Envelope is the JSON document posted to the destination
type Envelope struct {
	Source     string      `json:"source"`
	ReceivedAt string      `json:"receivedAt"`
	Payload    interface{} `json:"payload"`
}

// Result reports the forward outcome back to the caller
type Result struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Forwarder relays posted payloads to the configured destination
type Forwarder struct {
	client  *resty.Client
	cfg     config.HookConfig
	metrics *metrics.Metrics
	logger  *logrus.Entry
	now     func() time.Time
}

// NewForwarder creates a forwarder. An empty cfg.URL makes every call a no-op.
func NewForwarder(cfg config.HookConfig, client *resty.Client, m *metrics.Metrics, logger *logrus.Entry) *Forwarder {
	if logger == nil {
		logger = logrus.WithField("component", "lead_hook")
	}
	return &Forwarder{
		client:  client,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle processes one lead hook invocation
func (f *Forwarder) Handle(ctx context.Context, req *lambda.Request) *lambda.Response {
	if req.Method != http.MethodPost {
		return &lambda.Response{
			StatusCode: http.StatusMethodNotAllowed,
			Headers:    map[string]string{"Allow": http.MethodPost},
			Body:       []byte("Method Not Allowed"),
		}
	}

	if f.cfg.URL == "" {
		f.metrics.ObserveForward(metrics.OutcomeSkipped)
		return &lambda.Response{StatusCode: http.StatusNoContent, Headers: map[string]string{}, Body: []byte{}}
	}

	result := f.Forward(ctx, req.Header("Content-Type"), req.Body)
	return lambda.JSONResponse(http.StatusOK, result, nil)
}

// Forward wraps the body in an envelope and posts it to the destination
func (f *Forwarder) Forward(ctx context.Context, contentType string, body []byte) Result {
	logger := f.logger.WithField("destination", redactURL(f.cfg.URL))

	payload, err := decodePayload(contentType, body)
	if err != nil {
		f.metrics.ObserveForward(metrics.OutcomeFailure)
		logger.WithError(err).Warn("Lead hook payload could not be parsed")
		return Result{OK: false, Error: err.Error()}
	}

	envelope := Envelope{
		Source:     f.cfg.Source,
		ReceivedAt: f.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Payload:    payload,
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetHeader("User-Agent", f.cfg.UserAgent).
		SetBody(envelope).
		Post(f.cfg.URL)
	if err != nil {
		f.metrics.ObserveForward(metrics.OutcomeFailure)
		logger.WithError(err).Warn("Lead hook forward failed")
		return Result{OK: false, Error: err.Error()}
	}

	ok := resp.IsSuccess()
	if ok {
		f.metrics.ObserveForward(metrics.OutcomeSuccess)
	} else {
		f.metrics.ObserveForward(metrics.OutcomeUpstreamError)
	}
	logger.WithFields(logrus.Fields{
		"status": resp.StatusCode(),
		"ok":     ok,
	}).Info("Lead hook forwarded")

	return Result{OK: ok, Status: resp.StatusCode()}
}

// decodePayload parses JSON bodies and wraps anything else as {"raw": body}
func decodePayload(contentType string, body []byte) (interface{}, error) {
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return map[string]string{"raw": string(body)}, nil
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return map[string]interface{}{}, nil
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	return payload, nil
}

// redactURL keeps webhook secrets embedded in query strings out of logs
func redactURL(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}
