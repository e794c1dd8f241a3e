package funnel

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"elite-rental-funnel/web"
)

// Element ids the controller binds to
const (
	FormID         = "leadForm"
	SelectorID     = "listing"
	ListingHelpID  = "listingHelp"
	FormErrorID    = "formError"
	SubmitButtonID = "submitBtn"
)

// Page describes the lead form as declared in the landing page markup
type Page struct {
	FormName       string
	Action         string
	Method         string
	SelectorName   string
	SubmitLabel    string
	InitialOptions []SelectOption

	// HiddenFields lists hidden inputs in document order, with their markup values
	HiddenFields []Field
	// VisitorFields lists the inputs a visitor fills in
	VisitorFields []string
	// Honeypot names the spam trap input; it is posted empty
	Honeypot string
}

// Field is a named form input and its initial value
type Field struct {
	Name  string
	Value string
}

// HasHidden reports whether the form declares a hidden input with the given name
func (p *Page) HasHidden(name string) bool {
	for _, f := range p.HiddenFields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// DefaultPage parses the embedded landing page
func DefaultPage() (*Page, error) {
	return ParsePage(bytes.NewReader(web.IndexHTML))
}

// ParsePage extracts the lead form description from landing page markup
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	form := doc.Find("form#" + FormID).First()
	if form.Length() == 0 {
		return nil, fmt.Errorf("form #%s not found", FormID)
	}

	selector := form.Find("select#" + SelectorID).First()
	if selector.Length() == 0 {
		return nil, fmt.Errorf("listing selector #%s not found", SelectorID)
	}

	page := &Page{
		FormName:     form.AttrOr("name", ""),
		Action:       form.AttrOr("action", "/"),
		Method:       strings.ToUpper(form.AttrOr("method", "GET")),
		SelectorName: selector.AttrOr("name", SelectorID),
		SubmitLabel:  strings.TrimSpace(form.Find("#" + SubmitButtonID).Text()),
	}

	selector.Find("option").Each(func(_ int, opt *goquery.Selection) {
		page.InitialOptions = append(page.InitialOptions, SelectOption{
			Value:    opt.AttrOr("value", ""),
			Label:    strings.TrimSpace(opt.Text()),
			Selected: hasAttr(opt, "selected"),
			Disabled: hasAttr(opt, "disabled"),
		})
	})

	honeypot := form.AttrOr("netlify-honeypot", "")
	if honeypot != "" && form.Find(fmt.Sprintf("[name=%q]", honeypot)).Length() > 0 {
		page.Honeypot = honeypot
	}
	form.Find("input, textarea").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		if name == "" || name == honeypot {
			return
		}
		if strings.EqualFold(s.AttrOr("type", "text"), "hidden") {
			page.HiddenFields = append(page.HiddenFields, Field{Name: name, Value: s.AttrOr("value", "")})
			return
		}
		page.VisitorFields = append(page.VisitorFields, name)
	})

	for _, required := range []string{FieldListingID, FieldListingURL} {
		if !page.HasHidden(required) {
			return nil, fmt.Errorf("hidden field %q not found", required)
		}
	}

	return page, nil
}

func hasAttr(s *goquery.Selection, name string) bool {
	_, ok := s.Attr(name)
	return ok
}
