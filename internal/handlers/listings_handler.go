package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"elite-rental-funnel/internal/listings"
	"elite-rental-funnel/pkg/lambda"
)

// ListingsHandler serves the listings proxy function
type ListingsHandler struct {
	proxy *listings.Proxy
}

// NewListingsHandler creates a new listings handler
func NewListingsHandler(proxy *listings.Proxy) *ListingsHandler {
	return &ListingsHandler{proxy: proxy}
}

// @Summary Live listings
// @Description Proxies the upstream listings feed. Successful responses are cacheable for 10 minutes.
// @Tags functions
// @Produce json
// @Success 200 {array} listings.Listing
// @Failure 500 {object} listings.FunctionError
// @Failure 503 {object} listings.UpstreamError
// @Router /.netlify/functions/listings [get]
func (h *ListingsHandler) GetListings(c *gin.Context) {
	writeResponse(c, h.proxy.Fetch(c.Request.Context()))
}

// HandleGet serves the Lambda entry point
func (h *ListingsHandler) HandleGet(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.proxy.Fetch(ctx), nil
}
