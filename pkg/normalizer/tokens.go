package normalizer

import (
	"strings"
	"unicode"

	"github.com/Aquilabot/KreaPC-Specs/internal/utils"
	"github.com/dlclark/regexp2"
)

var (
	modelNumber = regexp2.MustCompile(`^[a-z]*\d{3,}[a-z]*$`, 0)
	revision    = regexp2.MustCompile(`^v\d+$`, 0)
)

// VariantWords distinguish otherwise identical chips, e.g. "RTX 4070" and "RTX 4070 Ti".
var VariantWords = map[string]bool{
	"ti":    true,
	"super": true,
	"xt":    true,
	"xtx":   true,
	"xl":    true,
}

// Tokenize lower-cases s, drops trademark marks and splits on anything that is not a letter or digit.
func Tokenize(s string) []string {
	s = strings.ToLower(utils.CleanText(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// IsVariantToken reports whether t is a variant word or a revision such as "v4".
func IsVariantToken(t string) bool {
	return VariantWords[t] || contains(revision, t)
}

// IdentityTokens returns the tokens a matching candidate must contain: model numbers
// with three or more digits, revisions and variant words.
func IdentityTokens(tokens []string) []string {
	var ids []string
	seen := map[string]bool{}
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		if contains(modelNumber, t) || IsVariantToken(t) {
			seen[t] = true
			ids = append(ids, t)
		}
	}
	return ids
}
