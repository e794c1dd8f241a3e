package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"elite-rental-funnel/internal/middleware"
	"elite-rental-funnel/pkg/lambda"
)

// requestFromGin converts a gin request into the framework-agnostic form
// the function handlers share with the Lambda entry points
func requestFromGin(c *gin.Context) (*lambda.Request, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	query := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	return &lambda.Request{
		Method:      c.Request.Method,
		Path:        c.Request.URL.Path,
		Headers:     headers,
		QueryParams: query,
		Body:        body,
		RequestID:   c.GetString(middleware.RequestIDKey),
	}, nil
}

// writeResponse copies a function response onto the gin writer
func writeResponse(c *gin.Context, resp *lambda.Response) {
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	c.Status(resp.StatusCode)
	if len(resp.Body) > 0 {
		c.Writer.Write(resp.Body)
	}
}
