package providers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/internal/utils"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html/charset"
)

// ErrNotApplicable means a provider cannot serve a query, e.g. a manufacturer lookup without a brand hint.
// The chain skips it without fetching anything.
var ErrNotApplicable = errors.New("provider not applicable to query")

// Provider names, also used as the record source.
const (
	NameReference    = "reference"
	NameAggregator   = "aggregator"
	NameMarketplace  = "marketplace"
	NameManufacturer = "manufacturer"
)

// Candidate is one link found on a search or listing page.
type Candidate struct {
	Title string
	URL   string
	// Render asks the gateway for a script-rendered fetch of the detail page.
	Render bool
}

// ParseResult is what a provider extracted from a page. A result with neither a record
// nor candidates is a miss.
type ParseResult struct {
	Record     *models.SpecRecord
	Candidates []Candidate
}

func (r ParseResult) NoMatch() bool {
	return r.Record == nil && len(r.Candidates) == 0
}

// Provider adapts one external source. Parse is permissive: pages it cannot read are a miss, not an error.
type Provider interface {
	Name() string
	BuildQueryURL(q models.CanonicalQuery) (string, error)
	Parse(q models.CanonicalQuery, page *gateway.Page) ParseResult
}

func document(page *gateway.Page) (*goquery.Document, bool) {
	if page == nil || len(page.Body) == 0 {
		return nil, false
	}
	contentType := ""
	if page.Headers != nil {
		contentType = page.Headers.Get("Content-Type")
	}
	doc, err := goquery.NewDocumentFromReader(decode(page.Body, contentType))
	if err != nil {
		return nil, false
	}
	return doc, true
}

// decode transcodes bodies declared in a non-UTF-8 charset. Undeclared bodies are read as UTF-8.
func decode(body []byte, contentType string) io.Reader {
	r := bytes.NewReader(body)
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r
	}
	label := strings.ToLower(params["charset"])
	if label == "" || label == "utf-8" || label == "utf8" {
		return r
	}
	decoded, err := charset.NewReaderLabel(label, r)
	if err != nil {
		return r
	}
	return decoded
}

// root wraps a parsed document in a colly element so selectors read the same as collector callbacks.
func root(page *gateway.Page, doc *goquery.Document) *colly.HTMLElement {
	resp := &colly.Response{StatusCode: page.StatusCode, Body: page.Body}
	sel := doc.Selection
	if html := doc.Find("html"); html.Length() > 0 {
		sel = html.First()
	}
	return colly.NewHTMLElementFromSelectionNode(resp, sel, sel.Get(0), 0)
}

func isSearchPage(page *gateway.Page) bool {
	host := utils.ExtractHost(page.URL)
	return host == "google.com" || strings.HasSuffix(host, ".google.com")
}

// searchResultLinks returns the targets and titles of result links on a search-engine page.
func searchResultLinks(e *colly.HTMLElement) []Candidate {
	var links []Candidate
	e.ForEach("a[href]", func(_ int, a *colly.HTMLElement) {
		href := utils.UnwrapSearchRedirect(a.Attr("href"))
		if !strings.HasPrefix(href, "http") {
			return
		}
		title := a.ChildText("h3")
		if title == "" {
			title = a.Text
		}
		links = append(links, Candidate{Title: utils.CleanText(title), URL: href})
	})
	return links
}

func firstText(e *colly.HTMLElement, selectors ...string) string {
	for _, s := range selectors {
		if text := utils.CleanText(e.ChildText(s)); text != "" {
			return text
		}
	}
	return ""
}

func specKey(label string) string {
	key := strings.ToLower(utils.CleanText(label))
	key = strings.TrimSpace(strings.TrimRight(key, ":"))
	key = strings.ReplaceAll(key, "#", "num")
	key = strings.ReplaceAll(key, ":", "")
	return strings.Join(strings.Fields(key), "_")
}

func addSpec(raw map[string]string, label, value string) {
	key := specKey(label)
	value = utils.CleanText(value)
	if key == "" || value == "" || len(key) > 50 {
		return
	}
	raw[key] = value
}

// collectDefinitionLists reads dt/dd pairs.
func collectDefinitionLists(e *colly.HTMLElement, selector string, raw map[string]string) {
	e.ForEach(selector, func(_ int, dl *colly.HTMLElement) {
		dts := dl.DOM.Find("dt")
		dds := dl.DOM.Find("dd")
		for i := 0; i < dts.Length() && i < dds.Length(); i++ {
			addSpec(raw, dts.Eq(i).Text(), dds.Eq(i).Text())
		}
	})
}

// collectTableRows reads label/value rows where the label is a th or the first td.
func collectTableRows(e *colly.HTMLElement, selector string, raw map[string]string) {
	e.ForEach(selector, func(_ int, tr *colly.HTMLElement) {
		cells := tr.DOM.Find("th, td")
		if cells.Length() < 2 {
			return
		}
		addSpec(raw, cells.First().Text(), cells.Last().Text())
	})
}

// directionMarks pad the labels of marketplace detail bullets.
const directionMarks = " \u200e\u200f"

// collectLabeledItems reads "Label: value" text items.
func collectLabeledItems(e *colly.HTMLElement, selector string, raw map[string]string) {
	e.ForEach(selector, func(_ int, item *colly.HTMLElement) {
		label, value, ok := strings.Cut(utils.CleanText(item.Text), ":")
		if !ok {
			return
		}
		addSpec(raw, strings.Trim(label, directionMarks), strings.Trim(value, directionMarks))
	})
}

func pageText(e *colly.HTMLElement) string {
	return utils.CleanText(e.DOM.Find("body").Text())
}
