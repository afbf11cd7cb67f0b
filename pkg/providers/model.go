package providers

import (
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/utils"
	"github.com/dlclark/regexp2"
)

var (
	cpuModelPatterns = []*regexp2.Regexp{
		compile(`(?:Intel\s+)?Xeon\s+(?:(?:Gold|Silver|Bronze|Platinum)\s+\d{4}[a-z]*|W[\s-]*\d{4,5}[a-z]*|E[357][\s-]*\d{4}[a-z]*(?:\s*v\d+)?)`),
		compile(`(?:Intel\s+)?Core\s+(?:i[3579][\s-]*\d{3,5}[a-z]*|Ultra\s+[3579]\s+\d{3}[a-z]*)`),
		compile(`(?:Intel\s+)?(?:Pentium|Celeron)\s+(?:Gold\s+|Silver\s+)?[a-z]?\d{3,5}[a-z]*`),
		compile(`(?:AMD\s+)?Ryzen\s+(?:Threadripper\s+(?:PRO\s+)?\d{4}[a-z]*|[3579]\s+(?:PRO\s+)?\d{3,4}[a-z0-9]*)`),
		compile(`(?:AMD\s+)?EPYC\s+\d{4,5}[a-z]*`),
		compile(`(?:AMD\s+)?Athlon\s+(?:Gold\s+|Silver\s+)?\d{3,4}[a-z]*`),
	}
	gpuModelPatterns = []*regexp2.Regexp{
		compile(`(?:(?:EVGA|ASUS|MSI|Gigabyte|Zotac|PNY|NVIDIA)\s+)?GeForce\s+[RG]TX?\s+\d{3,4}(?:\s*Ti)?(?:\s*Super)?`),
		compile(`(?:(?:Sapphire|XFX|PowerColor|ASRock|AMD)\s+)?Radeon\s+(?:RX\s+)?\d{3,4}(?:\s*XTX|\s*XT)?`),
		compile(`(?:Intel\s+)?Arc\s+[AB]\d{3}`),
	}
	cpuRevisionSpacing = compile(`\s+v(\d)`)
	partNumberWord     = compile(`^\d+[a-z]-`)
	specWord           = compile(`^\d+[-.].*(core|ghz|mhz|mb)`)
	leadingVendor      = compile(`^(?:NVIDIA|AMD|Intel)\s+`)
	trailingNoise      = compile(`\s*(?:specifications?|specs|overview|product page)\s*$|\s*[|].*$`)
)

var (
	cpuStopWords = map[string]bool{
		"processor": true, "cpu": true, "desktop": true, "server": true, "workstation": true,
		"thread": true, "ghz": true, "mhz": true, "cache": true, "socket": true,
		"lga": true, "tray": true, "box": true, "oem": true,
	}
	gpuStopWords = map[string]bool{
		"graphics": true, "card": true, "video": true, "memory": true,
		"pci": true, "pcie": true, "hdmi": true, "displayport": true,
	}
)

func compile(p string) *regexp2.Regexp {
	return regexp2.MustCompile(p, regexp2.IgnoreCase)
}

func find(re *regexp2.Regexp, text string) string {
	m, err := re.FindStringMatch(text)
	if err != nil || m == nil {
		return ""
	}
	return m.String()
}

// group returns the first capture group of the first match in text.
func group(re *regexp2.Regexp, text string) string {
	m, err := re.FindStringMatch(text)
	if err != nil || m == nil {
		return ""
	}
	if g := m.GroupByNumber(1); g != nil && g.Length > 0 {
		return g.String()
	}
	return ""
}

// CleanCPUModel reduces a retail or reference title to the processor model,
// e.g. "Intel Xeon E5-2687W V4 Processor 12-Core 3.0 GHz" becomes "Intel Xeon E5-2687W v4".
func CleanCPUModel(title string) string {
	title = utils.CleanText(title)
	for _, re := range cpuModelPatterns {
		if m := find(re, title); m != "" {
			m, _ = cpuRevisionSpacing.Replace(m, " v$1", -1, -1)
			return strings.TrimSpace(m)
		}
	}
	return leadingWords(title, 6, func(w string) bool {
		return cpuStopWords[w] || w == "core" || contains(specWord, w)
	})
}

// CleanGPUModel reduces a retail title to partner and chip,
// e.g. "EVGA GeForce GTX 1660 Ti SC Ultra Gaming, 06G-P4-1667-KR" becomes "EVGA GeForce GTX 1660 Ti".
func CleanGPUModel(title string) string {
	title = utils.CleanText(title)
	for _, re := range gpuModelPatterns {
		if m := find(re, title); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return leadingWords(title, 8, func(w string) bool {
		return gpuStopWords[w] || strings.HasPrefix(w, "gddr") || contains(partNumberWord, w)
	})
}

// CleanTitle drops trailing page furniture such as "Specifications" or "| Brand site".
func CleanTitle(title string) string {
	title = utils.CleanText(title)
	cleaned, err := trailingNoise.Replace(title, "", -1, -1)
	if err != nil || strings.TrimSpace(cleaned) == "" {
		return title
	}
	return strings.TrimSpace(cleaned)
}

// splitVendor separates a leading chip vendor from a model name.
func splitVendor(model string) (string, string) {
	vendor := strings.TrimSpace(find(leadingVendor, model))
	if vendor == "" {
		return "", model
	}
	switch strings.ToLower(vendor) {
	case "nvidia":
		vendor = "NVIDIA"
	case "amd":
		vendor = "AMD"
	default:
		vendor = "Intel"
	}
	return vendor, strings.TrimSpace(model[len(find(leadingVendor, model)):])
}

func leadingWords(title string, limit int, stop func(string) bool) string {
	var out []string
	for _, w := range strings.Fields(title) {
		if stop(strings.ToLower(strings.TrimRight(w, ",-"))) {
			break
		}
		out = append(out, strings.TrimRight(w, ","))
		if len(out) >= limit {
			break
		}
	}
	if len(out) == 0 {
		if len(title) > 60 {
			return title[:60]
		}
		return title
	}
	return strings.Join(out, " ")
}

func contains(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}
