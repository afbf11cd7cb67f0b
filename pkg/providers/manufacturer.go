package providers

import (
	"sort"
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/internal/utils"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/gocolly/colly/v2"
)

var (
	gpuMakerSites = map[string]string{
		"XFX":        "xfxforce.com",
		"EVGA":       "evga.com",
		"ASUS":       "asus.com",
		"MSI":        "msi.com",
		"Gigabyte":   "gigabyte.com",
		"Sapphire":   "sapphiretech.com",
		"PowerColor": "powercolor.com",
		"ASRock":     "asrock.com",
		"Zotac":      "zotac.com",
		"PNY":        "pny.com",
		"Gainward":   "gainward.com",
		"Palit":      "palit.com",
	}
	boardMakerSites = map[string]string{
		"ASUS":     "asus.com",
		"MSI":      "msi.com",
		"Gigabyte": "gigabyte.com",
		"ASRock":   "asrock.com",
		"EVGA":     "evga.com",
	}
	productPathHints = []string{"/shop/", "/product/", "/products/", "/gpu/", "/graphics-card", "/graphics/", "/geforce/", "/radeon/", "/motherboard"}
)

// Manufacturer reads the board maker's own product pages. It needs the maker as a brand hint,
// which the normalizer only finds for partner GPUs and motherboards.
type Manufacturer struct{}

func NewManufacturer() *Manufacturer {
	return &Manufacturer{}
}

func (m *Manufacturer) Name() string {
	return NameManufacturer
}

// Site returns the maker's domain for a query, or "" when there is none.
func (m *Manufacturer) Site(q models.CanonicalQuery) string {
	switch q.Type {
	case models.GPU:
		return gpuMakerSites[q.Brand]
	case models.Motherboard:
		return boardMakerSites[q.Brand]
	}
	return ""
}

func (m *Manufacturer) BuildQueryURL(q models.CanonicalQuery) (string, error) {
	site := m.Site(q)
	if site == "" {
		return "", ErrNotApplicable
	}
	query := q.Text
	if q.Variant != "" {
		query += " " + q.Variant
	}
	return utils.BuildSearchURL(site, query), nil
}

func (m *Manufacturer) Parse(q models.CanonicalQuery, page *gateway.Page) ParseResult {
	doc, ok := document(page)
	if !ok {
		return ParseResult{}
	}
	e := root(page, doc)

	if isSearchPage(page) {
		return ParseResult{Candidates: m.candidates(q, e)}
	}
	return ParseResult{Record: m.record(q, e, page)}
}

func (m *Manufacturer) candidates(q models.CanonicalQuery, e *colly.HTMLElement) []Candidate {
	site := m.Site(q)
	var out []Candidate
	seen := map[string]bool{}
	for _, link := range searchResultLinks(e) {
		host := utils.ExtractHost(link.URL)
		if host != site && !strings.HasSuffix(host, "."+site) {
			continue
		}
		if seen[link.URL] {
			continue
		}
		seen[link.URL] = true
		if link.Title == "" {
			link.Title = slugTitle(link.URL)
		}
		out = append(out, link)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return isProductPath(out[i].URL) && !isProductPath(out[j].URL)
	})
	return out
}

func isProductPath(u string) bool {
	lower := strings.ToLower(u)
	for _, hint := range productPathHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func (m *Manufacturer) record(q models.CanonicalQuery, e *colly.HTMLElement, page *gateway.Page) *models.SpecRecord {
	title := CleanTitle(firstText(e,
		"h1.product-name",
		"h1.product-title",
		"h1.title",
		"h1",
		".product-name h1",
		".product-title",
		"#product-name",
	))
	if len(title) <= 5 {
		return nil
	}

	raw := map[string]string{}
	collectTableRows(e, "table tr", raw)
	collectDefinitionLists(e, "dl", raw)
	collectLabeledItems(e, `.spec-list li, [class*="spec"] li`, raw)

	model := title
	if q.Brand != "" && strings.HasPrefix(strings.ToLower(model), strings.ToLower(q.Brand)+" ") {
		model = model[len(q.Brand)+1:]
	}

	return &models.SpecRecord{
		Type:         q.Type,
		Manufacturer: q.Brand,
		Model:        model,
		Title:        title,
		Attributes:   extractAttributes(q.Type, newSpecSheet(raw, pageText(e))),
		Source:       NameManufacturer,
		SourceURL:    page.URL,
		RawData:      raw,
	}
}
