package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"elite-rental-funnel/internal/leadhook"
	"elite-rental-funnel/pkg/lambda"
)

// LeadHookHandler serves the lead hook function
type LeadHookHandler struct {
	forwarder *leadhook.Forwarder
}

// NewLeadHookHandler creates a new lead hook handler
func NewLeadHookHandler(forwarder *leadhook.Forwarder) *LeadHookHandler {
	return &LeadHookHandler{forwarder: forwarder}
}

// @Summary Forward a lead
// @Description Relays the posted payload to the configured webhook. Forwarding failures are reported with ok=false and status 200.
// @Tags functions
// @Accept json
// @Produce json
// @Param payload body object true "Lead payload (JSON or raw text)"
// @Success 200 {object} leadhook.Result
// @Success 204 "No hook configured"
// @Failure 405 {string} string "Method Not Allowed"
// @Router /.netlify/functions/lead-hook [post]
func (h *LeadHookHandler) PostLead(c *gin.Context) {
	req, err := requestFromGin(c)
	if err != nil {
		c.Error(err)
		return
	}
	writeResponse(c, h.forwarder.Handle(c.Request.Context(), req))
}

// HandleLead serves the Lambda entry point
func (h *LeadHookHandler) HandleLead(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.forwarder.Handle(ctx, req), nil
}
