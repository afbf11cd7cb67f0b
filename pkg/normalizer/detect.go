package normalizer

import (
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
)

var (
	gpuKeywords = mustCompile(word(`rtx|gtx|radeon|rx|geforce|quadro|titan|arc|vega`) + `|` + word(`rx\d{3,4}`))

	psuKeywords  = mustCompile(word(`psu|power\s+supply|80\s*plus|80\+|platinum|gold|bronze|titanium|(semi|fully)?[\s-]*modular|(atx|sfx)\s+power`))
	psuWattage   = mustCompile(word(`\d{3,4}\s*w`))
	psuBrandHint = mustCompile(`(?<![a-z0-9])(corsair\s+(rm|hx|sf)|evga\s+supernova|seasonic|be\s+quiet|cooler\s+master|thermaltake|nzxt\s+c|fractal\s+design\s+ion|super\s*flower|enermax|silverstone|phanteks|msi\s+mpg)`)
	psuModel     = mustCompile(`(?<![a-z0-9])(rm|rmx|hx|sf|cx|tx)\d{3,4}[a-z]*(?![a-z0-9])`)

	boardChipset = mustCompile(word(`[abhxz][3-9][0-9]0[em]?|trx40|wrx80|x[234]99`))
	boardBrand   = mustCompile(word(`asus|msi|gigabyte|asrock|evga|biostar|supermicro`))
	boardKeyword = mustCompile(word(`rog|strix|tuf|prime|proart|mag|mpg|meg|tomahawk|mortar|carbon|aorus|gaming\s+x|ultra\s+durable|phantom|steel\s+legend|taichi|pro4|motherboard|mainboard`))

	cpuKeywords = mustCompile(`(?<![a-z0-9])(i[3579]-\d)|` + word(`ryzen|xeon|epyc|threadripper|pentium|celeron|athlon`))

	ramKeywords     = mustCompile(word(`ddr[345]|dimm|so-dimm|memory|ram`))
	storageKeywords = mustCompile(word(`ssd|nvme|hdd|hard\s+drive|m\.2|sata\s+ssd|solid\s+state`))
	coolerKeywords  = mustCompile(word(`cpu\s+cooler|aio|liquid\s+cooler|heatsink|tower\s+cooler`))
	fanKeywords     = mustCompile(word(`case\s+fan|\d{2,3}\s*mm\s+fan|pwm\s+fan`))
	caseKeywords    = mustCompile(word(`tower|chassis|case`))
	nicKeywords     = mustCompile(word(`nic|ethernet|network\s+adapter|\d+\s*gbe|wi-?fi\s+card`))
	soundKeywords   = mustCompile(word(`sound\s+card|sound\s+blaster|audio\s+interface`))
)

// DetectComponentType guesses the component type of a free-text query. GPU indicators win,
// then CPU families, PSUs and motherboards. Queries with no signal default to GPU.
func DetectComponentType(query string) models.ComponentType {
	q := strings.ToLower(query)

	if contains(gpuKeywords, q) {
		return models.GPU
	}

	if contains(cpuKeywords, q) {
		return models.CPU
	}

	wattage := contains(psuWattage, q)
	if contains(psuKeywords, q) || contains(psuModel, q) || (wattage && contains(psuBrandHint, q)) {
		return models.PSU
	}

	chipset := contains(boardChipset, q)
	if contains(boardKeyword, q) || (chipset && (contains(boardBrand, q) || strings.Contains(q, "-"))) {
		return models.Motherboard
	}

	switch {
	case contains(soundKeywords, q):
		return models.SoundCard
	case contains(nicKeywords, q):
		return models.NIC
	case contains(storageKeywords, q):
		return models.Storage
	case contains(ramKeywords, q):
		return models.RAM
	case contains(coolerKeywords, q):
		return models.Cooler
	case contains(fanKeywords, q):
		return models.Fan
	case contains(caseKeywords, q):
		return models.Case
	}

	return models.GPU
}
