package normalizer

import (
	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/dlclark/regexp2"
)

var cpuNoise = []*regexp2.Regexp{
	mustCompile(word(`intel|amd`)),
	mustCompile(word(`core`) + `(?=\s+i[3579]\b)`),
	mustCompile(word(`\d+\s*-?\s*cores?|(dual|quad|hexa|octa|six|eight)[\s-]*cores?`)),
	mustCompile(word(`\d+\s*-?\s*threads?`)),
	mustCompile(word(`(up\s+to\s+)?\d+(\.\d+)?\s*[gm]hz`)),
	mustCompile(word(`\d+(\.\d+)?\s*[mk]b(\s+(l[23]\s+)?cache)?|(l[23]\s+)?cache`)),
	mustCompile(word(`(fc)?lga\s*-?\s*\d{3,4}(-\d)?|socket(\s+(am\d\+?|\d{3,4}))?|am[45]\+?`)),
	mustCompile(word(`\d{2,3}\s*w`)),
	mustCompile(word(`(with|without)\s+(integrated\s+)?graphics|integrated\s+graphics|radeon\s+graphics`)),
	mustCompile(word(`(with\s+)?wraith\s+\w+(\s+cooler)?|with\s+cooler`)),
	mustCompile(word(`\d{3}\s+series(\s+chipset)?|chipset`)),
	mustCompile(word(`processors?|cpu|desktop|server|workstation|unlocked|turbo|boost|max|frequency`)),
}

var cpuFamilies = []struct {
	series string
	re     *regexp2.Regexp
}{
	{"Threadripper", mustCompile(word(`threadripper`))},
	{"EPYC", mustCompile(word(`epyc`))},
	{"Ryzen", mustCompile(word(`ryzen`))},
	{"Athlon", mustCompile(word(`athlon`))},
	{"Xeon", mustCompile(word(`xeon`))},
	{"Pentium", mustCompile(word(`pentium`))},
	{"Celeron", mustCompile(word(`celeron`))},
	{"Core", mustCompile(word(`core\s+(i[3579]|ultra)|i[3579]-?\d{3,5}[a-z]*`))},
}

var (
	intelCPUPattern = mustCompile(word(`intel`) + `|(?<![a-z0-9])(i[3579]-\d|core\s+i[3579]|e[357]-\d|w-\d)`)
	amdCPUPattern   = mustCompile(word(`amd|fx-\d{4}`))
	cpuRevision     = mustCompile(`\s+v(\d+)(?![a-z0-9])`)
)

// normalizeCPU keeps the full SKU including revision suffixes and drops marketing phrases,
// e.g. "intel xeon e5-2687w v4 processor 12-core 3.0 ghz" becomes "xeon e5-2687w v4".
func normalizeCPU(text string, q *models.CanonicalQuery) string {
	q.Series = cpuSeries(text)
	switch {
	case contains(intelCPUPattern, text):
		q.Brand = "Intel"
	case contains(amdCPUPattern, text):
		q.Brand = "AMD"
	default:
		q.Brand = models.VendorForSeries(q.Series)
	}

	for _, re := range cpuNoise {
		text = replace(re, text)
	}
	if out, err := cpuRevision.Replace(text, " v$1", -1, -1); err == nil {
		text = out
	}
	return text
}

func cpuSeries(text string) string {
	for _, f := range cpuFamilies {
		if contains(f.re, text) {
			return f.series
		}
	}
	return ""
}
