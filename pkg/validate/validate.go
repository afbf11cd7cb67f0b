package validate

import (
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/normalizer"
)

// DefaultMinOverlap is the share of query tokens a candidate title must contain.
const DefaultMinOverlap = 0.5

var disambiguationMarkers = []string{
	"disambiguation",
	"may refer to",
	"did you mean",
	"search results",
	"results for",
	"no results",
	"compare products",
}

var vendorWords = map[string]string{
	"nvidia":       "NVIDIA",
	"geforce":      "NVIDIA",
	"quadro":       "NVIDIA",
	"titan":        "NVIDIA",
	"amd":          "AMD",
	"radeon":       "AMD",
	"ryzen":        "AMD",
	"epyc":         "AMD",
	"threadripper": "AMD",
	"athlon":       "AMD",
	"intel":        "Intel",
	"xeon":         "Intel",
	"pentium":      "Intel",
	"celeron":      "Intel",
	"arc":          "Intel",
}

// Verdict is the outcome of validating one candidate.
type Verdict struct {
	Accepted bool
	Reason   models.RejectReason
	// Overlap is the fraction of query tokens found in the candidate.
	Overlap float64
}

func accept(overlap float64) Verdict {
	return Verdict{Accepted: true, Overlap: overlap}
}

func reject(reason models.RejectReason, overlap float64) Verdict {
	return Verdict{Reason: reason, Overlap: overlap}
}

type Validator struct {
	minOverlap float64
}

// New returns a Validator. A minOverlap outside (0, 1] falls back to DefaultMinOverlap.
func New(minOverlap float64) *Validator {
	if minOverlap <= 0 || minOverlap > 1 {
		minOverlap = DefaultMinOverlap
	}
	return &Validator{minOverlap: minOverlap}
}

// Record validates a parsed spec record: its title must match the query and it must carry specs.
func (v *Validator) Record(q models.CanonicalQuery, rec *models.SpecRecord) Verdict {
	if rec == nil {
		return reject(models.ReasonEmptySpecTable, 0)
	}

	title := rec.Title
	if title == "" {
		title = rec.DisplayName()
	}

	verdict := v.check(q, title, rec.Manufacturer)
	if !verdict.Accepted {
		return verdict
	}
	if !rec.HasSpecs() {
		return reject(models.ReasonEmptySpecTable, verdict.Overlap)
	}
	return verdict
}

// Title validates a search-result title before its detail page is fetched.
func (v *Validator) Title(q models.CanonicalQuery, title string) Verdict {
	return v.check(q, title, "")
}

func (v *Validator) check(q models.CanonicalQuery, title, manufacturer string) Verdict {
	lower := strings.ToLower(title)
	tokens := normalizer.Tokenize(title)

	if want := q.Vendor(); want != "" {
		if got := candidateVendor(manufacturer, tokens); got != "" && got != want {
			return reject(models.ReasonVendorMismatch, 0)
		}
	}

	if want := brandOf(q); want != "" {
		if got := candidateMaker(q.Type, manufacturer, title); got != "" && !strings.EqualFold(got, want) {
			return reject(models.ReasonVendorMismatch, 0)
		}
	}

	for _, marker := range disambiguationMarkers {
		if strings.Contains(lower, marker) {
			return reject(models.ReasonDisambiguationPage, 0)
		}
	}

	queryTokens := q.Tokens
	if len(queryTokens) == 0 {
		queryTokens = normalizer.Tokenize(q.Text)
	}
	identity := q.IdentityTokens
	if identity == nil {
		identity = normalizer.IdentityTokens(queryTokens)
	}

	have := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		have[t] = true
	}

	overlap := overlapOf(queryTokens, have)

	for _, id := range identity {
		if !have[id] {
			return reject(models.ReasonIdentityTokenMissing, overlap)
		}
	}

	wanted := make(map[string]bool, len(queryTokens))
	for _, t := range queryTokens {
		wanted[t] = true
	}
	for _, t := range tokens {
		if normalizer.IsVariantToken(t) && !wanted[t] {
			return reject(models.ReasonVariantMismatch, overlap)
		}
	}

	if overlap < v.minOverlap {
		return reject(models.ReasonLowOverlap, overlap)
	}

	return accept(overlap)
}

func overlapOf(query []string, have map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	found := 0
	for _, t := range query {
		if have[t] {
			found++
		}
	}
	return float64(found) / float64(len(query))
}

// candidateVendor names the chip vendor of a candidate from its manufacturer or,
// failing that, the first vendor or family word in its title.
func candidateVendor(manufacturer string, tokens []string) string {
	if vendor, ok := vendorWords[strings.ToLower(strings.TrimSpace(manufacturer))]; ok {
		return vendor
	}
	for _, t := range tokens {
		if vendor, ok := vendorWords[t]; ok {
			return vendor
		}
	}
	return ""
}

// brandOf returns the maker a candidate must share with the query. CPUs and GPUs are checked
// by chip vendor instead: a GPU query names a board partner that reference listings omit.
func brandOf(q models.CanonicalQuery) string {
	switch q.Type {
	case models.CPU, models.GPU:
		return ""
	}
	return q.Brand
}

// candidateMaker names the maker of a candidate from its manufacturer or, failing that, its title.
// Makers are compared by the names the normalizer gives them, so unknown spellings are ignored.
func candidateMaker(ct models.ComponentType, manufacturer, title string) string {
	detect := normalizer.DetectBrand
	if ct == models.Motherboard {
		detect = normalizer.DetectMotherboardMaker
	}
	if maker := detect(manufacturer); maker != "" {
		return maker
	}
	return detect(title)
}
