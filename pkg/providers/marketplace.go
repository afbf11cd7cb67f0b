package providers

import (
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/internal/utils"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/Aquilabot/KreaPC-Specs/pkg/normalizer"
	"github.com/gocolly/colly/v2"
)

const marketplaceSite = "amazon.com"

var marketplaceKeywords = map[models.ComponentType]string{
	models.CPU:         "processor",
	models.GPU:         "graphics card",
	models.RAM:         "memory",
	models.Motherboard: "motherboard",
	models.Storage:     "ssd",
	models.PSU:         "power supply",
	models.Cooler:      "cpu cooler",
	models.Case:        "pc case",
	models.Fan:         "case fan",
	models.NIC:         "network adapter",
	models.SoundCard:   "sound card",
}

// Marketplace reads retail listings. It serves every component type and is the
// last resort of most chains.
type Marketplace struct{}

func NewMarketplace() *Marketplace {
	return &Marketplace{}
}

func (m *Marketplace) Name() string {
	return NameMarketplace
}

func (m *Marketplace) BuildQueryURL(q models.CanonicalQuery) (string, error) {
	query := q.Text
	if kw := marketplaceKeywords[q.Type]; kw != "" {
		query += " " + kw
	}
	return utils.BuildSearchURL(marketplaceSite, query), nil
}

func (m *Marketplace) Parse(q models.CanonicalQuery, page *gateway.Page) ParseResult {
	doc, ok := document(page)
	if !ok {
		return ParseResult{}
	}
	e := root(page, doc)

	if isSearchPage(page) {
		return ParseResult{Candidates: m.candidates(e, page)}
	}
	return ParseResult{Record: m.record(q, e, page)}
}

func (m *Marketplace) candidates(e *colly.HTMLElement, page *gateway.Page) []Candidate {
	var out []Candidate
	seen := map[string]bool{}
	add := func(title, link string) {
		asin := utils.ExtractASIN(link)
		if asin == "" || seen[asin] {
			return
		}
		seen[asin] = true
		if title == "" {
			title = slugTitle(link)
		}
		out = append(out, Candidate{Title: title, URL: link})
	}

	for _, link := range searchResultLinks(e) {
		if utils.MatchAmazonProductURL(link.URL) {
			add(link.Title, link.URL)
		}
	}
	for _, link := range utils.ExtractAmazonProductURLs(string(page.Body)) {
		add("", link)
	}
	return out
}

func (m *Marketplace) record(q models.CanonicalQuery, e *colly.HTMLElement, page *gateway.Page) *models.SpecRecord {
	title := firstText(e, "#productTitle", "#title", "h1")
	if title == "" {
		return nil
	}

	raw := map[string]string{}
	collectTableRows(e, strings.Join([]string{
		"#productDetails_techSpec_section_1 tr",
		"#productDetails_techSpec_section_2 tr",
		"#productDetails_detailBullets_sections1 tr",
		"#technicalSpecifications_section_1 tr",
		"#productOverview_feature_div tr",
		".prodDetTable tr",
	}, ", "), raw)
	collectLabeledItems(e, "#detailBullets_feature_div li", raw)

	text := []string{title}
	e.ForEach("#feature-bullets li", func(_ int, li *colly.HTMLElement) {
		text = append(text, utils.CleanText(li.Text))
	})
	for k, v := range raw {
		text = append(text, strings.ReplaceAll(k, "_", " ")+": "+v)
	}

	manufacturer, model := marketplaceModel(q.Type, title, raw)

	return &models.SpecRecord{
		Type:         q.Type,
		Manufacturer: manufacturer,
		Model:        model,
		Title:        title,
		Attributes:   extractAttributes(q.Type, newSpecSheet(raw, strings.Join(text, " "))),
		Source:       NameMarketplace,
		SourceURL:    page.URL,
		RawData:      raw,
	}
}

// marketplaceModel derives maker and model from a listing title.
func marketplaceModel(ct models.ComponentType, title string, raw map[string]string) (string, string) {
	brand := utils.CleanText(strings.TrimPrefix(raw["brand"], "Visit the "))
	brand = strings.TrimSuffix(brand, " Store")

	switch ct {
	case models.CPU:
		vendor, model := splitVendor(CleanCPUModel(title))
		if vendor == "" {
			vendor = chipVendor(title)
		}
		return vendor, model
	case models.GPU:
		maker := normalizer.DetectGPUMaker(title)
		if maker == "" {
			maker = brand
		}
		model := CleanGPUModel(title)
		if maker != "" && strings.HasPrefix(strings.ToLower(model), strings.ToLower(maker)+" ") {
			model = model[len(maker)+1:]
		}
		_, model = splitVendor(model)
		if maker == "" {
			maker = chipVendor(title)
		}
		return maker, model
	}

	maker := brand
	if maker == "" {
		maker = normalizer.DetectBrand(title)
	}
	model := title
	if i := strings.IndexAny(model, ",|("); i > 0 {
		model = model[:i]
	}
	model = strings.TrimSpace(model)
	if maker != "" && strings.HasPrefix(strings.ToLower(model), strings.ToLower(maker)+" ") {
		model = model[len(maker)+1:]
	}
	return maker, model
}
