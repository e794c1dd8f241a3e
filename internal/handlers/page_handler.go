package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"elite-rental-funnel/internal/funnel"
	"elite-rental-funnel/internal/middleware"
)

// PageHandler serves the landing page and accepts its form locally.
// In production the form is captured by the hosting platform.
type PageHandler struct {
	markup []byte
	page   *funnel.Page
}

// NewPageHandler creates a new page handler
func NewPageHandler(markup []byte, page *funnel.Page) *PageHandler {
	return &PageHandler{markup: markup, page: page}
}

// GetPage serves the landing page markup
func (h *PageHandler) GetPage(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.markup)
}

// SubmitForm stands in for the native form endpoint during local development
func (h *PageHandler) SubmitForm(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid form body", Message: err.Error()})
		return
	}

	form := c.Request.PostForm
	if h.page.FormName != "" && form.Get("form-name") != h.page.FormName {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Unknown form", Message: form.Get("form-name")})
		return
	}

	logrus.WithFields(h.leadLogFields(form, c.GetString(middleware.RequestIDKey))).Info("Lead form received")

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte("Thank you"))
}

var logPolicy = bluemonday.StrictPolicy()

// leadLogFields picks the non-empty form values worth logging, stripped of markup
func (h *PageHandler) leadLogFields(form url.Values, requestID string) logrus.Fields {
	fields := logrus.Fields{
		"request_id": requestID,
		"form":       h.page.FormName,
	}
	for _, f := range h.page.HiddenFields {
		if v := form.Get(f.Name); v != "" {
			fields[f.Name] = logPolicy.Sanitize(v)
		}
	}
	for _, name := range h.page.VisitorFields {
		if v := form.Get(name); v != "" {
			fields[name] = logPolicy.Sanitize(v)
		}
	}
	return fields
}
