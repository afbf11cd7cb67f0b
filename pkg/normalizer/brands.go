package normalizer

import (
	"strings"

	"github.com/dlclark/regexp2"
)

type keywordRule struct {
	maker string
	re    *regexp2.Regexp
}

func rule(maker string, keywords ...string) keywordRule {
	alts := make([]string, len(keywords))
	for i, k := range keywords {
		alts[i] = strings.ReplaceAll(regexp2.Escape(k), `\ `, `\s+`)
	}
	return keywordRule{maker: maker, re: mustCompile(word(strings.Join(alts, "|")))}
}

// Product lines that identify a board partner when the brand itself is absent.
var gpuLineRules = []keywordRule{
	rule("XFX", "speedster", "merc", "swft", "qick"),
	rule("EVGA", "ftw3", "ftw", "xc3", "kingpin"),
	rule("ASUS", "rog", "strix", "tuf", "dual", "proart"),
	rule("MSI", "gaming x", "ventus", "suprim", "mech"),
	rule("Gigabyte", "aorus", "eagle", "gaming oc", "windforce"),
	rule("Sapphire", "nitro+", "nitro", "pulse", "toxic"),
	rule("PowerColor", "red devil", "red dragon", "hellhound", "fighter"),
	rule("ASRock", "phantom gaming", "taichi", "challenger"),
	rule("Zotac", "amp", "twin edge", "trinity"),
	rule("PNY", "xlr8", "uprising", "verto"),
	rule("Gainward", "gamerock", "phantom"),
}

var motherboardRules = []keywordRule{
	rule("ASUS", "asus", "rog", "strix", "tuf", "prime", "proart"),
	rule("MSI", "msi", "mag", "mpg", "meg", "tomahawk", "mortar", "carbon"),
	rule("Gigabyte", "gigabyte", "aorus"),
	rule("ASRock", "asrock", "phantom gaming", "steel legend", "taichi"),
	rule("EVGA", "evga"),
	rule("Biostar", "biostar"),
	rule("Supermicro", "supermicro"),
}

// knownBrands maps listing spellings onto display names for the remaining component types.
var knownBrands = []struct {
	key     string
	display string
}{
	{"cooler master", "Cooler Master"},
	{"be quiet", "be quiet!"},
	{"fractal design", "Fractal Design"},
	{"lian li", "Lian Li"},
	{"western digital", "Western Digital"},
	{"g.skill", "G.Skill"},
	{"gskill", "G.Skill"},
	{"tp-link", "TP-Link"},
	{"corsair", "Corsair"},
	{"kingston", "Kingston"},
	{"crucial", "Crucial"},
	{"samsung", "Samsung"},
	{"seagate", "Seagate"},
	{"sabrent", "Sabrent"},
	{"teamgroup", "TeamGroup"},
	{"patriot", "Patriot"},
	{"adata", "ADATA"},
	{"sk hynix", "SK hynix"},
	{"wd", "Western Digital"},
	{"seasonic", "Seasonic"},
	{"evga", "EVGA"},
	{"thermaltake", "Thermaltake"},
	{"silverstone", "SilverStone"},
	{"super flower", "Super Flower"},
	{"enermax", "Enermax"},
	{"nzxt", "NZXT"},
	{"phanteks", "Phanteks"},
	{"noctua", "Noctua"},
	{"arctic", "Arctic"},
	{"deepcool", "DeepCool"},
	{"scythe", "Scythe"},
	{"thermalright", "Thermalright"},
	{"asus", "ASUS"},
	{"msi", "MSI"},
	{"gigabyte", "Gigabyte"},
	{"asrock", "ASRock"},
	{"intel", "Intel"},
	{"realtek", "Realtek"},
	{"broadcom", "Broadcom"},
	{"mellanox", "Mellanox"},
	{"creative", "Creative"},
	{"sound blaster", "Creative"},
	{"dell", "Dell"},
	{"hp", "HP"},
	{"lenovo", "Lenovo"},
	{"supermicro", "Supermicro"},
}

var knownBrandPatterns []keywordRule

func init() {
	for _, b := range knownBrands {
		knownBrandPatterns = append(knownBrandPatterns, rule(b.display, b.key))
	}
}

// DetectGPUMaker returns the board partner named in text, or the partner implied by a product line
// such as "Strix" or "Nitro+". It returns "" when nothing matches.
func DetectGPUMaker(text string) string {
	text = strings.ToLower(text)
	if m := firstMatch(gpuPartnerPattern, text); m != "" {
		for _, p := range gpuPartners {
			if p.key == m {
				return p.display
			}
		}
	}
	return matchRules(gpuLineRules, text)
}

// DetectMotherboardMaker returns the board maker from its name or product line, e.g. "Tomahawk" is MSI.
func DetectMotherboardMaker(text string) string {
	return matchRules(motherboardRules, strings.ToLower(text))
}

// DetectBrand returns the earliest known maker named in text, e.g. "Corsair" or "Noctua".
func DetectBrand(text string) string {
	return detectBrand(strings.ToLower(text))
}

func detectBrand(text string) string {
	best, bestAt := "", -1
	for _, r := range knownBrandPatterns {
		m, err := r.re.FindStringMatch(text)
		if err != nil || m == nil {
			continue
		}
		if bestAt < 0 || m.Index < bestAt {
			best, bestAt = r.maker, m.Index
		}
	}
	return best
}

func matchRules(rules []keywordRule, text string) string {
	for _, r := range rules {
		if contains(r.re, text) {
			return r.maker
		}
	}
	return ""
}

func firstMatch(re *regexp2.Regexp, text string) string {
	m, err := re.FindStringMatch(text)
	if err != nil || m == nil {
		return ""
	}
	return strings.ToLower(m.String())
}
