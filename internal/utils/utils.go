package utils

import (
	"net/url"
	"strings"

	"github.com/dlclark/regexp2"
)

var (
	amazonProductURLMatcher = regexp2.MustCompile(`https?://(www\.)?amazon\.com/([^\s"'<>?]*/)?dp/[A-Z0-9]{10}`, 0)
	asinMatcher             = regexp2.MustCompile(`(?<=/dp/)[A-Z0-9]{10}`, 0)
	specPageLinkMatcher     = regexp2.MustCompile(`/(gpu|cpu)-specs/[^"'\s<>?]+\.[a-z]\d+`, 0)
	arkProductURLMatcher    = regexp2.MustCompile(`https?://ark\.intel\.com/content/www/[a-z]{2}/[a-z]{2}/ark/products/\d+/[^"'\s<>&]+\.html`, 0)
	googleRedirectMatcher   = regexp2.MustCompile(`(?<=/url\?q=)[^&]+`, 0)
	hostMatcher             = regexp2.MustCompile(`(?<=^https?://)[^/:?#]+`, regexp2.IgnoreCase)
)

// ExtractAmazonProductURLs returns every marketplace product link in text, deduplicated by ASIN.
func ExtractAmazonProductURLs(text string) []string {
	var (
		links []string
		seen  = map[string]bool{}
	)
	for _, link := range Regexp2SearchAllText(amazonProductURLMatcher, text) {
		asin := ExtractASIN(link)
		if seen[asin] {
			continue
		}
		seen[asin] = true
		links = append(links, link)
	}
	return links
}

func ExtractASIN(URL string) string {
	m, err := asinMatcher.FindStringMatch(URL)
	if err != nil || m == nil {
		return ""
	}
	return m.String()
}

func MatchAmazonProductURL(URL string) bool {
	match, _ := amazonProductURLMatcher.MatchString(URL)

	return match
}

// ExtractSpecPageLinks finds relative database links such as /gpu-specs/geforce-rtx-3080.c3621.
func ExtractSpecPageLinks(text string) []string {
	return dedupe(Regexp2SearchAllText(specPageLinkMatcher, text))
}

func MatchSpecPageLink(URL string) bool {
	match, _ := specPageLinkMatcher.MatchString(URL)

	return match
}

func MatchARKProductURL(URL string) bool {
	match, _ := arkProductURLMatcher.MatchString(URL)

	return match
}

func ExtractARKProductURLs(text string) []string {
	return dedupe(Regexp2SearchAllText(arkProductURLMatcher, text))
}

// UnwrapSearchRedirect turns a "/url?q=<target>&sa=..." search result link into its target.
// Links that are not redirects are returned unchanged.
func UnwrapSearchRedirect(href string) string {
	m, err := googleRedirectMatcher.FindStringMatch(href)
	if err != nil || m == nil {
		return href
	}
	target, err := url.QueryUnescape(m.String())
	if err != nil {
		return m.String()
	}
	return target
}

// ExtractHost returns the host of URL without a leading www.
func ExtractHost(URL string) string {
	if URL == "" {
		return ""
	}
	m, err := hostMatcher.FindStringMatch(URL)
	if err != nil || m == nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(m.String()), "www.")
}

func BuildSearchURL(site, query string) string {
	q := query
	if site != "" {
		q = "site:" + site + " " + query
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}

func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

var trademarkReplacer = strings.NewReplacer("®", " ", "™", " ", "©", " ", "(R)", " ", "(TM)", " ", " ", " ")

// CleanText strips trademark marks and collapses whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(trademarkReplacer.Replace(s)), " ")
}

func Regexp2SearchAllText(re *regexp2.Regexp, s string) []string {
	var matches []string
	m, _ := re.FindStringMatch(s)
	for m != nil {
		matches = append(matches, m.String())
		m, _ = re.FindNextMatch(m)
	}
	return matches
}

func dedupe(in []string) []string {
	var (
		out  []string
		seen = map[string]bool{}
	)
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
