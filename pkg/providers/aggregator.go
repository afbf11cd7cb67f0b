package providers

import (
	"net/url"
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/internal/utils"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/gocolly/colly/v2"
)

const aggregatorBaseURL = "https://www.techpowerup.com"

// Aggregator reads a third-party database of GPU and CPU specifications.
type Aggregator struct {
	baseURL string
}

func NewAggregator() *Aggregator {
	return &Aggregator{baseURL: aggregatorBaseURL}
}

func (a *Aggregator) Name() string {
	return NameAggregator
}

func aggregatorSection(ct models.ComponentType) string {
	switch ct {
	case models.GPU:
		return "gpu-specs"
	case models.CPU:
		return "cpu-specs"
	}
	return ""
}

func (a *Aggregator) BuildQueryURL(q models.CanonicalQuery) (string, error) {
	section := aggregatorSection(q.Type)
	if section == "" {
		return "", ErrNotApplicable
	}
	return a.baseURL + "/" + section + "/?ajaxsrch=" + url.QueryEscape(q.Text), nil
}

func (a *Aggregator) Parse(q models.CanonicalQuery, page *gateway.Page) ParseResult {
	doc, ok := document(page)
	if !ok {
		return ParseResult{}
	}
	e := root(page, doc)

	title := firstText(e, "h1.gpuname", "h1.cpuname", ".content h1")
	if title == "" {
		return ParseResult{Candidates: a.candidates(q, e, page)}
	}
	return ParseResult{Record: a.record(q, e, page, title)}
}

func (a *Aggregator) candidates(q models.CanonicalQuery, e *colly.HTMLElement, page *gateway.Page) []Candidate {
	section := "/" + aggregatorSection(q.Type) + "/"
	var out []Candidate
	seen := map[string]bool{}
	add := func(title, href string) {
		if !utils.MatchSpecPageLink(href) || !strings.Contains(href, section) {
			return
		}
		link := utils.ResolveURL(page.URL, href)
		if seen[link] {
			return
		}
		seen[link] = true
		if title == "" {
			title = slugTitle(link)
		}
		out = append(out, Candidate{Title: title, URL: link})
	}

	e.ForEach("a[href]", func(_ int, el *colly.HTMLElement) {
		add(utils.CleanText(el.Text), el.Attr("href"))
	})
	if len(out) == 0 {
		for _, href := range utils.ExtractSpecPageLinks(string(page.Body)) {
			add("", href)
		}
	}
	return out
}

func (a *Aggregator) record(q models.CanonicalQuery, e *colly.HTMLElement, page *gateway.Page, title string) *models.SpecRecord {
	raw := map[string]string{}
	collectDefinitionLists(e, ".gpuspecs dl, .cpuspecs dl, .sectioncontainer dl", raw)
	collectTableRows(e, ".details tr, .specs tr", raw)

	manufacturer, model := splitVendor(title)
	if manufacturer == "" {
		manufacturer = chipVendor(title)
	}

	return &models.SpecRecord{
		Type:         q.Type,
		Manufacturer: manufacturer,
		Model:        model,
		Title:        title,
		Attributes:   extractAttributes(q.Type, newSpecSheet(raw, "")),
		Source:       NameAggregator,
		SourceURL:    page.URL,
		RawData:      raw,
	}
}

// chipVendor infers the chip vendor from a product family word.
func chipVendor(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "nvidia") || strings.Contains(lower, "geforce") || strings.Contains(lower, "quadro"):
		return "NVIDIA"
	case strings.Contains(lower, "amd") || strings.Contains(lower, "radeon") || strings.Contains(lower, "ryzen") || strings.Contains(lower, "epyc"):
		return "AMD"
	case strings.Contains(lower, "intel") || strings.Contains(lower, "xeon") || strings.Contains(lower, "core i"):
		return "Intel"
	}
	return ""
}
