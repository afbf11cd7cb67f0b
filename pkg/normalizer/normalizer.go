package normalizer

import (
	"fmt"
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/internal/utils"
	"github.com/dlclark/regexp2"
)

// minTextLength is the shortest result accepted before falling back to the raw query.
const minTextLength = 5

var defaultDenylist = []string{
	`\([^)]*\)`,
	`\[[^\]]*\]`,
	`[,|;].*$`,
	word(`(pack|set|box)\s+of\s+\d+`),
	word(`\d+\s*-?\s*(pack|pk|pcs|pieces|count|ct)`),
	word(`(with|w/)\s+(retail\s+)?box`),
	word(`(retail\s+)?boxed|tray|oem|retail|renewed|refurbished|open\s+box`),
	word(`\d+\s*-?\s*pins?`),
	word(`(bundle|bundled)\s+with`) + `.*$`,
	`\s\+\s.*$`,
}

var colorPattern = mustCompile(word(`black|white|silver|grey|gray|red|blue|green|pink|purple`))

var typeNounPatterns = map[models.ComponentType]*regexp2.Regexp{
	models.Motherboard: mustCompile(word(`(gaming\s+)?(motherboard|mainboard)`)),
	models.PSU:         mustCompile(word(`power\s+supply(\s+unit)?|psu`)),
	models.RAM:         mustCompile(word(`(desktop\s+)?(memory|ram)(\s+kit)?`)),
	models.Storage:     mustCompile(word(`internal\s+(solid\s+state\s+drive|hard\s+drive)`)),
	models.Cooler:      mustCompile(word(`cpu\s+(air\s+)?cooler`)),
	models.Case:        mustCompile(word(`(computer|pc)\s+case`)),
	models.Fan:         mustCompile(word(`case\s+fans?`)),
	models.NIC:         mustCompile(word(`network\s+(adapter|card)`)),
	models.SoundCard:   mustCompile(word(`sound\s+card`)),
}

// Normalizer turns raw listing or user text into a CanonicalQuery. It holds no state
// beyond its compiled denylist and is safe for concurrent use.
type Normalizer struct {
	denylist []*regexp2.Regexp
}

// New compiles the default retailer denylist plus any extra patterns.
func New(extra ...string) (*Normalizer, error) {
	n := &Normalizer{}
	for _, p := range append(append([]string{}, defaultDenylist...), extra...) {
		re, err := regexp2.Compile(p, regexp2.IgnoreCase)
		if err != nil {
			return nil, fmt.Errorf("invalid denylist pattern %q: %w", p, err)
		}
		n.denylist = append(n.denylist, re)
	}
	return n, nil
}

var std, _ = New()

// Normalize uses the default denylist.
func Normalize(raw string, ct models.ComponentType) models.CanonicalQuery {
	return std.Normalize(raw, ct)
}

// Normalize never fails. When stripping leaves too little text the trimmed,
// lower-cased input becomes the canonical text.
func (n *Normalizer) Normalize(raw string, ct models.ComponentType) models.CanonicalQuery {
	fallback := strings.ToLower(utils.CleanText(raw))
	q := models.CanonicalQuery{Raw: raw, Type: ct}

	text := fallback
	for _, re := range n.denylist {
		text = replace(re, text)
	}
	if ct != models.GPU {
		text = replace(colorPattern, text)
	}
	if re, ok := typeNounPatterns[ct]; ok {
		text = replace(re, text)
	}

	switch ct {
	case models.GPU:
		text = normalizeGPU(text, &q)
	case models.CPU:
		text = normalizeCPU(text, &q)
	case models.Motherboard:
		q.Brand = DetectMotherboardMaker(text)
	default:
		q.Brand = detectBrand(text)
	}

	text = tidy(text)
	if len(text) < minTextLength {
		text = fallback
	}

	q.Text = text
	q.Tokens = Tokenize(text)
	q.IdentityTokens = IdentityTokens(q.Tokens)
	return q
}

func tidy(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -/")
}

// word anchors a pattern on alphanumeric boundaries so suffixes like "nitro+" still match.
func word(p string) string {
	return `(?<![a-z0-9])(?:` + p + `)(?![a-z0-9])`
}

func mustCompile(p string) *regexp2.Regexp {
	return regexp2.MustCompile(p, regexp2.IgnoreCase)
}

func replace(re *regexp2.Regexp, s string) string {
	out, err := re.Replace(s, " ", -1, -1)
	if err != nil {
		return s
	}
	return out
}

func contains(re *regexp2.Regexp, s string) bool {
	ok, _ := re.MatchString(s)
	return ok
}
