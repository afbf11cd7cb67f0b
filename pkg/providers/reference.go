package providers

import (
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/internal/utils"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/gocolly/colly/v2"
)

const referenceSite = "ark.intel.com"

// Reference reads the vendor's own processor reference database. It only serves Intel CPUs,
// and its product pages are script-heavy so they are always fetched rendered.
type Reference struct{}

func NewReference() *Reference {
	return &Reference{}
}

func (r *Reference) Name() string {
	return NameReference
}

func (r *Reference) BuildQueryURL(q models.CanonicalQuery) (string, error) {
	if q.Type != models.CPU || q.Vendor() != "Intel" {
		return "", ErrNotApplicable
	}
	return utils.BuildSearchURL(referenceSite, q.Text+" specifications"), nil
}

func (r *Reference) Parse(q models.CanonicalQuery, page *gateway.Page) ParseResult {
	doc, ok := document(page)
	if !ok {
		return ParseResult{}
	}
	e := root(page, doc)

	if isSearchPage(page) {
		return ParseResult{Candidates: r.candidates(e, page)}
	}
	return ParseResult{Record: r.record(e, page)}
}

func (r *Reference) candidates(e *colly.HTMLElement, page *gateway.Page) []Candidate {
	var out []Candidate
	seen := map[string]bool{}
	for _, link := range searchResultLinks(e) {
		if !utils.MatchARKProductURL(link.URL) || seen[link.URL] {
			continue
		}
		seen[link.URL] = true
		if link.Title == "" {
			link.Title = slugTitle(link.URL)
		}
		link.Render = true
		out = append(out, link)
	}
	if len(out) > 0 {
		return out
	}
	for _, u := range utils.ExtractARKProductURLs(string(page.Body)) {
		out = append(out, Candidate{Title: slugTitle(u), URL: u, Render: true})
	}
	return out
}

func (r *Reference) record(e *colly.HTMLElement, page *gateway.Page) *models.SpecRecord {
	title := firstText(e,
		"h1.product-title",
		".product-family-title-text",
		`[data-wap_ref="defined-title"]`,
		".ProductName",
		"h1.ark-headline",
		"h1",
	)
	if title == "" {
		title = slugTitle(page.URL)
	}
	if title == "" {
		return nil
	}

	raw := map[string]string{}
	collectTableRows(e, ".ark-product-specs tr, .specs-section tr, .tech-section tr, table.specs tr, .product-specs tr", raw)
	e.ForEach(".tech-section-row", func(_ int, row *colly.HTMLElement) {
		addSpec(raw, row.ChildText(".tech-label"), row.ChildText(".tech-data"))
	})
	e.ForEach("[data-key]", func(_ int, el *colly.HTMLElement) {
		value := el.Attr("data-value")
		if value == "" {
			value = el.Text
		}
		addSpec(raw, el.Attr("data-key"), value)
	})
	collectDefinitionLists(e, "dl", raw)

	manufacturer, model := splitVendor(CleanCPUModel(title))
	if manufacturer == "" {
		manufacturer = "Intel"
	}
	return &models.SpecRecord{
		Type:         models.CPU,
		Manufacturer: manufacturer,
		Model:        model,
		Title:        title,
		Attributes:   extractAttributes(models.CPU, newSpecSheet(raw, pageText(e))),
		Source:       NameReference,
		SourceURL:    page.URL,
		RawData:      raw,
	}
}

// slugTitle turns the last path segment of a product URL into words,
// e.g. ".../geforce-rtx-3080.c3621" becomes "geforce rtx 3080".
func slugTitle(u string) string {
	path := u
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "dp" && i > 0 {
			if strings.Contains(parts[i-1], ".") {
				return ""
			}
			path = parts[i-1]
			break
		}
		path = p
	}
	path = strings.TrimSuffix(path, ".html")
	if i := strings.LastIndex(path, "."); i > 0 {
		path = path[:i]
	}
	return strings.Join(strings.FieldsFunc(path, func(r rune) bool { return r == '-' || r == '_' || r == '+' }), " ")
}
