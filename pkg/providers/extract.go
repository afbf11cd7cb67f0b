package providers

import (
	"strconv"
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/dlclark/regexp2"
	"github.com/shopspring/decimal"
)

// specSheet is the raw label/value table of a detail page plus its visible text.
type specSheet struct {
	raw  map[string]string
	text string
}

func newSpecSheet(raw map[string]string, text string) specSheet {
	return specSheet{raw: raw, text: strings.ToLower(text)}
}

func (s specSheet) value(keys ...string) string {
	for _, k := range keys {
		if v := s.raw[k]; v != "" {
			return v
		}
	}
	return ""
}

// number reads the first number from the first present key, falling back to a capture in the page text.
func (s specSheet) number(fallback *regexp2.Regexp, keys ...string) int {
	if v := s.value(keys...); v != "" {
		if n := models.MeasureInt(v); n > 0 {
			return n
		}
	}
	if fallback == nil {
		return 0
	}
	return models.MeasureInt(group(fallback, s.text))
}

func (s specSheet) decimal(fallback *regexp2.Regexp, keys ...string) *decimal.Decimal {
	if v := s.value(keys...); v != "" {
		if d := models.MeasureDecimal(v); d != nil && d.IsPositive() {
			return d
		}
	}
	if fallback == nil {
		return nil
	}
	return models.MeasureDecimal(group(fallback, s.text))
}

func (s specSheet) match(re *regexp2.Regexp, keys ...string) string {
	if v := s.value(keys...); v != "" {
		if m := find(re, v); m != "" {
			return m
		}
	}
	return find(re, s.text)
}

var (
	cpuCoresText    = compile(`(?:total\s+)?cores?[:\s]+(\d+)|(\d+)[\s-]*cores?\b`)
	cpuThreadsText  = compile(`(?:total\s+)?threads?[:\s]+(\d+)|(\d+)[\s-]*threads?\b`)
	cpuBaseText     = compile(`(?:base|processor)\s+(?:frequency|clock|speed)[:\s]+([\d.]+)\s*ghz`)
	cpuBoostText    = compile(`(?:max\s+)?(?:turbo|boost)\s+(?:frequency|clock|speed)?[:\s]*(?:up\s+to\s+)?([\d.]+)\s*ghz`)
	cpuTDPText      = compile(`(?:tdp|thermal\s+design\s+power|base\s+power)[:\s]+(\d+)\s*w`)
	cpuSocket       = compile(`(?:fc)?lga\s*-?\s*\d{3,4}(?:-\d)?|bga\s*\d{3,4}|am[345]\b|sp[356]\b|str5|s?trx4\b|sTR4`)
	memoryType      = compile(`g?ddr\d[a-z]?x?|hbm\d?e?`)
	gpuMemoryText   = compile(`(\d+)\s*gb\s*(?:gddr\d+x?|vram|memory|hbm)`)
	gpuBaseText     = compile(`(?:base|core)\s*clock[:\s]*(?:up\s*to\s*)?(\d{3,4})\s*mhz`)
	gpuBoostText    = compile(`(?:boost|game|oc)\s*clock[:\s]*(?:up\s*to\s*)?(\d{3,4})\s*mhz`)
	gpuTDPText      = compile(`(?:tdp|board\s*power|power\s*consumption)[:\s]*(\d{2,3})\s*w`)
	gpuMemoryBus    = compile(`\d{2,4}\s*-?\s*bit`)
	gpuBusInterface = compile(`pci[\s-]?e(?:xpress)?\s*\d\.\d(?:\s*x\d{1,2})?`)
	gpuShadersText  = compile(`(?:stream\s*processors?|cuda\s*cores?|shading\s*units|shaders?)[:\s]*([\d,]{3,6})`)
	ramSizeText     = compile(`(\d+)\s*gb`)
	ramSpeedText    = compile(`(\d{4,5})\s*(?:mhz|mt/s)`)
	ramCASText      = compile(`\bcl\s?(\d{2})\b`)
	boardChipset    = compile(`(?<![a-z0-9])(?:[abhxzq][3-9]\d0[em]?|trx40|wrx80|x[345]99)(?![a-z0-9])`)
	formFactor      = compile(`e-?atx|micro[\s-]?atx|m-?atx|mini[\s-]?itx|mini[\s-]?dtx|atx`)
	boardSlotsText  = compile(`(\d+)\s*(?:x\s*)?(?:dimm|memory\s*slots?)`)
	boardMaxMemText = compile(`(?:max|maximum|up\s*to)\s*(\d+)\s*gb`)
	boardM2Text     = compile(`(\d+)\s*(?:x\s*)?m\.?2`)
	boardSATAText   = compile(`(\d+)\s*(?:x\s*)?sata`)
	storageCapText  = compile(`(\d+(?:\.\d+)?)\s*(tb|gb)\b`)
	storageRead     = compile(`read[^0-9]{0,20}([\d,]{3,6})\s*mb`)
	storageWrite    = compile(`write[^0-9]{0,20}([\d,]{3,6})\s*mb`)
	storageForm     = compile(`m\.2\s*22\d0|m\.2|2\.5["\s-]*(?:inch|in)?|3\.5["\s-]*(?:inch|in)?`)
	psuWattText     = compile(`(\d{3,4})\s*(?:w|watts?)\b`)
	psuEfficiency   = compile(`80\s*\+?\s*(?:plus)?\s*(titanium|platinum|gold|silver|bronze|white)`)
	psuForm         = compile(`sfx-l|sfx|tfx|atx\s*3\.\d|atx`)
	coolerFanText   = compile(`(\d{2,3})\s*mm\s*(?:pwm\s*)?fan`)
	coolerHeight    = compile(`(?:height|tall)[:\s]*(\d{2,3})\s*mm`)
	coolerTDPText   = compile(`(\d{2,3})\s*w\s*(?:tdp|cooling)`)
	radiatorText    = compile(`(\d{3})\s*mm\s*(?:radiator|aio)`)
	caseGPUText     = compile(`(?:gpu|graphics\s*card|vga)[^0-9]{0,25}(\d{3})\s*mm`)
	caseCoolerText  = compile(`cooler[^0-9]{0,25}(\d{2,3})\s*mm`)
	caseForm        = compile(`full[\s-]*tower|mid[\s-]*tower|mini[\s-]*tower|micro[\s-]*atx|mini[\s-]*itx|e-?atx|atx|sff`)
	fanSizeText     = compile(`(\d{2,3})\s*mm`)
	fanRPMText      = compile(`(\d{3,4})\s*rpm`)
	fanAirflowText  = compile(`([\d.]+)\s*cfm`)
	fanConnector    = compile(`[34][\s-]*pin|pwm`)
	nicSpeed        = compile(`\d+(?:\.\d+)?\s*(?:gbe|gbps|gb/s|gigabit|mbps)|wi-?fi\s*\d[a-z]?|802\.11[a-z]+`)
	nicPortsText    = compile(`(\d)[\s-]*(?:x\s*)?ports?`)
	busInterface    = compile(`pci[\s-]?e(?:xpress)?(?:\s*\d\.\d)?(?:\s*x\d{1,2})?|usb[\s-]?(?:c|\d(?:\.\d)?)?|m\.2`)
	soundChannels   = compile(`(\d\.\d)\s*(?:channel|ch)\b`)
	soundRateText   = compile(`(\d{2,3})\s*khz`)
)

// extractAttributes fills the attribute group of ct from a spec sheet.
func extractAttributes(ct models.ComponentType, s specSheet) models.Attributes {
	switch ct {
	case models.CPU:
		return models.Attributes{CPU: extractCPU(s)}
	case models.GPU:
		return models.Attributes{GPU: extractGPU(s)}
	case models.RAM:
		return models.Attributes{RAM: extractRAM(s)}
	case models.Motherboard:
		return models.Attributes{Motherboard: extractMotherboard(s)}
	case models.Storage:
		return models.Attributes{Storage: extractStorage(s)}
	case models.PSU:
		return models.Attributes{PSU: extractPSU(s)}
	case models.Cooler:
		return models.Attributes{Cooler: extractCooler(s)}
	case models.Case:
		return models.Attributes{Case: extractCase(s)}
	case models.Fan:
		return models.Attributes{Fan: extractFan(s)}
	case models.NIC:
		return models.Attributes{NIC: extractNIC(s)}
	case models.SoundCard:
		return models.Attributes{SoundCard: extractSoundCard(s)}
	}
	return models.Attributes{}
}

func extractCPU(s specSheet) *models.CPUSpec {
	spec := &models.CPUSpec{
		Cores:        s.number(nil, "total_cores", "corecount", "num_of_cores", "cores", "core_count", "number_of_cores", "cpu_cores"),
		Threads:      s.number(nil, "total_threads", "threadcount", "num_of_threads", "threads", "thread_count", "number_of_threads"),
		BaseClock:    s.decimal(cpuBaseText, "processor_base_frequency", "clockspeed", "performance-core_base_frequency", "frequency", "base_clock", "base_frequency", "clock_speed", "cpu_speed"),
		BoostClock:   s.decimal(cpuBoostText, "max_turbo_frequency", "clockspeedmax", "turbo_clock", "boost_clock", "max_boost_clock", "turbo_frequency"),
		TDP:          s.number(cpuTDPText, "tdp", "maxtdp", "processor_base_power", "thermal_design_power", "default_tdp", "wattage"),
		Socket:       socketName(s.match(cpuSocket, "sockets_supported", "socketssupported", "socket", "cpu_socket", "package")),
		Architecture: s.value("architecture", "code_name", "codename", "microarchitecture"),
	}
	if spec.Cores == 0 {
		spec.Cores = firstGroupInt(cpuCoresText, s.text)
	}
	if spec.Threads == 0 {
		spec.Threads = firstGroupInt(cpuThreadsText, s.text)
	}
	return spec
}

func extractGPU(s specSheet) *models.GPUSpec {
	spec := &models.GPUSpec{
		MemoryType:   strings.ToUpper(s.match(memoryType, "memory_type", "graphics_ram_type", "video_memory_type")),
		BaseClock:    s.number(gpuBaseText, "base_clock", "gpu_clock", "core_clock", "engine_clock", "base_clock_speed"),
		BoostClock:   s.number(gpuBoostText, "boost_clock", "oc_clock", "game_clock", "boost_clock_speed", "gpu_clock_speed"),
		TDP:          s.number(gpuTDPText, "tdp", "board_power", "typical_board_power", "total_board_power", "power_consumption", "power"),
		BusInterface: s.value("bus_interface", "interface", "graphics_card_interface"),
		MemoryBus:    s.value("memory_bus", "memory_interface", "bus_width"),
		Shaders:      s.number(gpuShadersText, "shading_units", "cuda_cores", "stream_processors", "shaders"),
	}
	if size := s.value("memory_size", "memory", "video_memory", "graphics_ram_size", "graphics_coprocessor_memory", "vram"); size != "" {
		spec.MemorySize = megabytes(size)
	}
	if spec.MemorySize == 0 {
		if gb := models.MeasureInt(group(gpuMemoryText, s.text)); gb > 0 {
			spec.MemorySize = gb * 1024
		}
	}
	if spec.BusInterface == "" {
		spec.BusInterface = strings.ToUpper(find(gpuBusInterface, s.text))
	}
	if spec.MemoryBus == "" {
		spec.MemoryBus = find(gpuMemoryBus, s.text)
	}
	return spec
}

func extractRAM(s specSheet) *models.RAMSpec {
	return &models.RAMSpec{
		Size:       s.number(ramSizeText, "capacity", "memory_size", "computer_memory_size", "ram_memory_installed_size"),
		Type:       strings.ToUpper(s.match(memoryType, "memory_type", "computer_memory_type", "ram_memory_technology")),
		Speed:      s.number(ramSpeedText, "speed", "memory_speed", "memory_clock_speed"),
		CASLatency: orDefault(s.value("cas_latency", "latency"), group(ramCASText, s.text)),
	}
}

func extractMotherboard(s specSheet) *models.MotherboardSpec {
	return &models.MotherboardSpec{
		Socket:      socketName(s.match(cpuSocket, "cpu_socket", "socket")),
		Chipset:     strings.ToUpper(s.match(boardChipset, "chipset")),
		FormFactor:  canonicalFormFactor(s.match(formFactor, "form_factor")),
		MemorySlots: s.number(boardSlotsText, "memory_slots", "number_of_memory_slots", "dimm_slots"),
		MemoryType:  strings.ToUpper(s.match(memoryType, "memory_type", "memory", "ram_memory_technology")),
		MaxMemory:   s.number(boardMaxMemText, "max_memory", "maximum_memory", "maximum_memory_supported"),
		M2Slots:     s.number(boardM2Text, "m.2_slots", "m2_slots"),
		SATAPorts:   s.number(boardSATAText, "sata_ports", "sata"),
	}
}

func extractStorage(s specSheet) *models.StorageSpec {
	spec := &models.StorageSpec{
		Interface:  strings.ToUpper(s.match(busInterface, "interface", "hardware_interface", "connectivity_technology")),
		FormFactor: s.match(storageForm, "form_factor", "hard_disk_form_factor"),
		ReadSpeed:  s.number(storageRead, "read_speed", "sequential_read", "max_read_speed"),
		WriteSpeed: s.number(storageWrite, "write_speed", "sequential_write", "max_write_speed"),
	}
	capacity := s.value("capacity", "digital_storage_capacity", "hard_disk_size", "memory_storage_capacity")
	if capacity == "" {
		if m, err := storageCapText.FindStringMatch(s.text); err == nil && m != nil {
			capacity = m.String()
		}
	}
	spec.Capacity = gigabytes(capacity)
	switch {
	case strings.Contains(s.text, "nvme"):
		spec.Type = "NVMe SSD"
	case strings.Contains(s.text, "ssd") || strings.Contains(s.text, "solid state"):
		spec.Type = "SATA SSD"
	case strings.Contains(s.text, "hdd") || strings.Contains(s.text, "hard drive") || strings.Contains(s.text, "rpm"):
		spec.Type = "HDD"
	}
	return spec
}

func extractPSU(s specSheet) *models.PSUSpec {
	spec := &models.PSUSpec{
		Wattage:    s.number(psuWattText, "wattage", "output_wattage", "power", "maximum_power"),
		FormFactor: strings.ToUpper(s.match(psuForm, "form_factor")),
	}
	if rating := group(psuEfficiency, strings.ToLower(s.value("efficiency", "certification", "80_plus_certification"))+" "+s.text); rating != "" {
		spec.Efficiency = "80+ " + strings.ToUpper(rating[:1]) + rating[1:]
	}
	switch {
	case strings.Contains(s.text, "semi-modular") || strings.Contains(s.text, "semi modular"):
		spec.Modular = "Semi"
	case strings.Contains(s.text, "non-modular") || strings.Contains(s.text, "non modular"):
		spec.Modular = "No"
	case strings.Contains(s.text, "fully modular") || strings.Contains(s.text, "full modular"):
		spec.Modular = "Full"
	}
	return spec
}

func extractCooler(s specSheet) *models.CoolerSpec {
	spec := &models.CoolerSpec{
		FanSize:   s.number(coolerFanText, "fan_size"),
		Height:    s.number(coolerHeight, "height", "cooler_height"),
		TDPRating: s.number(coolerTDPText, "tdp", "tdp_rating"),
	}
	if strings.Contains(s.text, "aio") || strings.Contains(s.text, "liquid") || strings.Contains(s.text, "radiator") {
		spec.Type = "Liquid"
		if r := group(radiatorText, s.text); r != "" {
			spec.Type = "Liquid " + r + "mm"
		}
	} else if strings.Contains(s.text, "air cooler") || strings.Contains(s.text, "heatsink") || strings.Contains(s.text, "tower") {
		spec.Type = "Air"
	}
	sockets := map[string]bool{}
	var list []string
	m, _ := cpuSocket.FindStringMatch(s.value("socket", "compatible_sockets", "socket_support") + " " + s.text)
	for m != nil {
		sock := socketName(m.String())
		if !sockets[sock] {
			sockets[sock] = true
			list = append(list, sock)
		}
		m, _ = cpuSocket.FindNextMatch(m)
	}
	spec.SocketSupport = strings.Join(list, ", ")
	return spec
}

func extractCase(s specSheet) *models.CaseSpec {
	return &models.CaseSpec{
		FormFactor:      caseFormFactor(s.match(caseForm, "form_factor", "case_type")),
		MaxGPULength:    s.number(caseGPUText, "max_gpu_length", "maximum_gpu_length", "graphics_card_length"),
		MaxCoolerHeight: s.number(caseCoolerText, "max_cpu_cooler_height", "cpu_cooler_height"),
	}
}

func extractFan(s specSheet) *models.FanSpec {
	spec := &models.FanSpec{
		Size:    s.number(fanSizeText, "fan_size", "size"),
		MaxRPM:  s.number(fanRPMText, "maximum_rotational_speed", "fan_speed", "max_rpm", "speed"),
		Airflow: s.decimal(fanAirflowText, "airflow", "air_flow_capacity", "airflow_volume"),
	}
	switch c := strings.ToLower(s.match(fanConnector, "connector", "connector_type")); {
	case c == "pwm" || strings.HasPrefix(c, "4"):
		spec.Connector = "4-pin PWM"
	case strings.HasPrefix(c, "3"):
		spec.Connector = "3-pin DC"
	}
	return spec
}

func extractNIC(s specSheet) *models.NICSpec {
	return &models.NICSpec{
		Speed:     s.match(nicSpeed, "speed", "data_transfer_rate", "data_link_protocol"),
		Interface: strings.ToUpper(s.match(busInterface, "interface", "hardware_interface")),
		Ports:     s.number(nicPortsText, "ports", "number_of_ports", "total_ethernet_ports"),
	}
}

func extractSoundCard(s specSheet) *models.SoundCardSpec {
	return &models.SoundCardSpec{
		Interface:  strings.ToUpper(s.match(busInterface, "interface", "hardware_interface")),
		Channels:   s.decimal(soundChannels, "audio_output_channels", "channels"),
		SampleRate: s.number(soundRateText, "sample_rate", "sampling_rate"),
	}
}

// firstGroupInt reads the first non-empty capture of any alternative.
func firstGroupInt(re *regexp2.Regexp, text string) int {
	m, err := re.FindStringMatch(text)
	if err != nil || m == nil {
		return 0
	}
	for _, g := range m.Groups()[1:] {
		if g.Length > 0 {
			n, _ := strconv.Atoi(g.String())
			return n
		}
	}
	return 0
}

func megabytes(value string) int {
	d, unit, err := models.ParseMeasure(value)
	if err != nil {
		return 0
	}
	if strings.EqualFold(unit, "gb") {
		d = d.Mul(decimal.NewFromInt(1024))
	}
	return int(d.IntPart())
}

func gigabytes(value string) int {
	d, unit, err := models.ParseMeasure(value)
	if err != nil {
		return 0
	}
	if strings.EqualFold(unit, "tb") {
		d = d.Mul(decimal.NewFromInt(1000))
	}
	return int(d.IntPart())
}

func canonicalFormFactor(ff string) string {
	ff = strings.ToLower(ff)
	switch {
	case ff == "":
		return ""
	case strings.HasPrefix(ff, "e"):
		return "E-ATX"
	case strings.HasPrefix(ff, "micro") || strings.HasPrefix(ff, "m"):
		if strings.Contains(ff, "itx") {
			return "Mini-ITX"
		}
		if strings.Contains(ff, "dtx") {
			return "Mini-DTX"
		}
		return "Micro-ATX"
	}
	return "ATX"
}

func caseFormFactor(ff string) string {
	ff = strings.ToLower(ff)
	switch {
	case ff == "":
		return ""
	case strings.HasPrefix(ff, "full"):
		return "Full Tower"
	case strings.HasPrefix(ff, "mid"):
		return "Mid Tower"
	case strings.HasPrefix(ff, "mini") && strings.HasSuffix(ff, "tower"):
		return "Mini Tower"
	case ff == "sff":
		return "SFF"
	}
	return canonicalFormFactor(ff)
}

func socketName(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
