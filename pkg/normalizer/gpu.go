package normalizer

import (
	"sort"
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/dlclark/regexp2"
)

// Board partners, ordered as they are checked. Chip vendors are stripped but are not partners.
var gpuPartners = []struct {
	key     string
	display string
}{
	{"evga", "EVGA"},
	{"asus", "ASUS"},
	{"msi", "MSI"},
	{"gigabyte", "Gigabyte"},
	{"zotac", "Zotac"},
	{"pny", "PNY"},
	{"palit", "Palit"},
	{"gainward", "Gainward"},
	{"xfx", "XFX"},
	{"sapphire", "Sapphire"},
	{"powercolor", "PowerColor"},
	{"asrock", "ASRock"},
	{"biostar", "Biostar"},
	{"colorful", "Colorful"},
	{"galax", "GALAX"},
	{"inno3d", "Inno3D"},
	{"kfa2", "KFA2"},
	{"leadtek", "Leadtek"},
	{"manli", "Manli"},
	{"maxsun", "Maxsun"},
}

var gpuMarketingSuffixes = []string{
	"ftw3", "ftw", "xc3", "xc", "sc ultra", "sc gaming", "sc", "black gaming",
	"rog strix", "strix", "tuf gaming", "tuf", "dual", "phoenix", "proart",
	"gaming x trio", "gaming x", "gaming z trio", "gaming z", "suprim x", "suprim",
	"ventus", "mech", "sea hawk", "aero",
	"aorus master", "aorus elite", "aorus", "eagle", "gaming oc", "windforce",
	"amp extreme", "amp holo", "amp", "twin edge",
	"xlr8", "verto", "uprising", "epic-x",
	"gamerock", "jetstream",
	"nitro+", "nitro", "pulse", "toxic", "vapor-x",
	"red devil", "red dragon", "hellhound", "fighter",
	"challenger", "phantom gaming", "taichi",
	"black edition", "black", "white", "oc edition", "oc", "gaming",
	"ultra", "edition",
}

var (
	gpuPartnerPattern  *regexp2.Regexp
	gpuSuffixPattern   *regexp2.Regexp
	gpuVendorPattern   = mustCompile(word(`founders\s+edition|nvidia|amd|intel|geforce|radeon`))
	gpuListingPattern  = mustCompile(word(`\d+\s*gb|g?ddr\d+x?|graphics\s+card|video\s+card|gpu|pci-?e(xpress)?\s*(\d(\.\d)?)?|\d+-?bit|hdmi|displayport|dp|\d{2,3}g-[a-z0-9-]+`))
	gpuFamilyPatterns  = []struct {
		series string
		re     *regexp2.Regexp
	}{
		{"Quadro", mustCompile(word(`quadro`))},
		{"Titan", mustCompile(word(`titan`))},
		{"GeForce", mustCompile(word(`geforce|gtx|rtx|gt`) + `|` + word(`[rg]tx\d{3,4}`))},
		{"Radeon", mustCompile(word(`radeon|rx|vega|r[579]`) + `|` + word(`rx\d{3,4}`))},
		{"Arc", mustCompile(word(`arc`))},
	}
	gpuVendorFamilies = []struct {
		series string
		re     *regexp2.Regexp
	}{
		{"GeForce", mustCompile(word(`nvidia`))},
		{"Radeon", mustCompile(word(`amd`))},
		{"Arc", mustCompile(word(`intel`))},
	}
)

func init() {
	keys := make([]string, 0, len(gpuPartners))
	for _, p := range gpuPartners {
		keys = append(keys, regexp2.Escape(p.key))
	}
	gpuPartnerPattern = mustCompile(word(strings.Join(keys, "|")))

	suffixes := append([]string{}, gpuMarketingSuffixes...)
	sort.SliceStable(suffixes, func(i, j int) bool { return len(suffixes[i]) > len(suffixes[j]) })
	for i, s := range suffixes {
		suffixes[i] = strings.ReplaceAll(regexp2.Escape(s), `\ `, `\s+`)
	}
	gpuSuffixPattern = mustCompile(word(strings.Join(suffixes, "|")))
}

// normalizeGPU reduces a board listing to its reference chip name, e.g.
// "evga gtx 1660 ti sc ultra gaming" becomes "gtx 1660 ti".
func normalizeGPU(text string, q *models.CanonicalQuery) string {
	q.Brand = DetectGPUMaker(text)
	q.Series = gpuSeries(text)

	text = replace(gpuListingPattern, text)
	text = replace(gpuPartnerPattern, text)
	text = replace(gpuVendorPattern, text)

	before := strings.Fields(text)
	text = tidy(replace(gpuSuffixPattern, text))
	q.Variant = strings.Join(removedTokens(before, strings.Fields(text)), " ")

	return text
}

func gpuSeries(text string) string {
	for _, f := range gpuFamilyPatterns {
		if contains(f.re, text) {
			return f.series
		}
	}
	for _, f := range gpuVendorFamilies {
		if contains(f.re, text) {
			return f.series
		}
	}
	return ""
}

// removedTokens returns the tokens of before, in order, that are missing from after.
func removedTokens(before, after []string) []string {
	left := map[string]int{}
	for _, t := range after {
		left[t]++
	}
	var removed []string
	for _, t := range before {
		if left[t] > 0 {
			left[t]--
			continue
		}
		removed = append(removed, t)
	}
	return removed
}
