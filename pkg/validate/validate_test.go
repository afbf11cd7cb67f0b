package validate

import (
	"testing"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/normalizer"
	"github.com/stretchr/testify/assert"
)

func cpuRecord(title string) *models.SpecRecord {
	return &models.SpecRecord{
		Type:       models.CPU,
		Title:      title,
		Attributes: models.Attributes{CPU: &models.CPUSpec{Cores: 8, Threads: 8}},
	}
}

func gpuRecord(manufacturer, title string) *models.SpecRecord {
	return &models.SpecRecord{
		Type:         models.GPU,
		Manufacturer: manufacturer,
		Title:        title,
		Attributes:   models.Attributes{GPU: &models.GPUSpec{MemorySize: 6144}},
	}
}

func TestRecordAccepts(t *testing.T) {
	v := New(0)
	q := normalizer.Normalize("i7-9700K", models.CPU)

	verdict := v.Record(q, cpuRecord("Intel® Core™ i7-9700K Processor"))
	assert.True(t, verdict.Accepted)
	assert.Equal(t, 1.0, verdict.Overlap)

	q = normalizer.Normalize("EVGA GeForce GTX 1660 Ti SC Ultra Gaming", models.GPU)
	verdict = v.Record(q, gpuRecord("NVIDIA", "NVIDIA GeForce GTX 1660 Ti"))
	assert.True(t, verdict.Accepted)
}

func TestRecordRejectsVendorMismatchRegardlessOfOverlap(t *testing.T) {
	v := New(0.1)
	q := normalizer.Normalize("GTX 1660 Ti", models.GPU)
	assert.Equal(t, "NVIDIA", q.Vendor())

	verdict := v.Record(q, gpuRecord("", "AMD Radeon GTX 1660 Ti"))
	assert.False(t, verdict.Accepted)
	assert.Equal(t, models.ReasonVendorMismatch, verdict.Reason)

	verdict = v.Record(q, gpuRecord("AMD", "GTX 1660 Ti"))
	assert.False(t, verdict.Accepted)
	assert.Equal(t, models.ReasonVendorMismatch, verdict.Reason)

	q = normalizer.Normalize("Ryzen 7 5800X", models.CPU)
	verdict = v.Record(q, cpuRecord("Intel Core 5800X"))
	assert.Equal(t, models.ReasonVendorMismatch, verdict.Reason)
}

func TestRecordRejectsIdentityTokenMissing(t *testing.T) {
	v := New(0)

	q := normalizer.Normalize("i7-9700K", models.CPU)
	verdict := v.Record(q, cpuRecord("Intel Core i7-9700 Processor"))
	assert.Equal(t, models.ReasonIdentityTokenMissing, verdict.Reason)

	verdict = v.Record(q, cpuRecord("Intel Core i7-9700F Processor"))
	assert.Equal(t, models.ReasonIdentityTokenMissing, verdict.Reason)

	q = normalizer.Normalize("Xeon E5-2687W v4", models.CPU)
	verdict = v.Record(q, cpuRecord("Intel Xeon E5-2680 v4"))
	assert.Equal(t, models.ReasonIdentityTokenMissing, verdict.Reason)

	verdict = v.Record(q, cpuRecord("Intel Xeon E5-2687W v3"))
	assert.Equal(t, models.ReasonIdentityTokenMissing, verdict.Reason)
}

func TestRecordRejectsVariantMismatch(t *testing.T) {
	v := New(0)
	q := normalizer.Normalize("RTX 4070", models.GPU)

	verdict := v.Record(q, gpuRecord("NVIDIA", "NVIDIA GeForce RTX 4070 Ti"))
	assert.Equal(t, models.ReasonVariantMismatch, verdict.Reason)

	verdict = v.Record(q, gpuRecord("NVIDIA", "NVIDIA GeForce RTX 4070 SUPER"))
	assert.Equal(t, models.ReasonVariantMismatch, verdict.Reason)

	verdict = v.Record(q, gpuRecord("NVIDIA", "NVIDIA GeForce RTX 4070"))
	assert.True(t, verdict.Accepted)
}

func TestRecordRejectsDisambiguationPage(t *testing.T) {
	v := New(0)
	q := normalizer.Normalize("RTX 3080", models.GPU)
	verdict := v.Record(q, gpuRecord("", "Search results for RTX 3080"))
	assert.Equal(t, models.ReasonDisambiguationPage, verdict.Reason)
}

func TestRecordRejectsLowOverlap(t *testing.T) {
	v := New(0.9)
	q := normalizer.Normalize("Corsair RM850x White Edition", models.PSU)
	rec := &models.SpecRecord{
		Type:       models.PSU,
		Title:      "RM850x",
		Attributes: models.Attributes{PSU: &models.PSUSpec{Wattage: 850}},
	}
	verdict := v.Record(q, rec)
	assert.Equal(t, models.ReasonLowOverlap, verdict.Reason)
	assert.Less(t, verdict.Overlap, 0.9)
}

func TestRecordRejectsEmptySpecTable(t *testing.T) {
	v := New(0)
	q := normalizer.Normalize("i7-9700K", models.CPU)
	verdict := v.Record(q, &models.SpecRecord{Type: models.CPU, Title: "Intel Core i7-9700K"})
	assert.Equal(t, models.ReasonEmptySpecTable, verdict.Reason)

	verdict = v.Record(q, nil)
	assert.Equal(t, models.ReasonEmptySpecTable, verdict.Reason)
}

func TestTitle(t *testing.T) {
	v := New(0)
	q := normalizer.Normalize("EVGA GTX 1660 Ti SC Ultra", models.GPU)

	assert.True(t, v.Title(q, "EVGA GeForce GTX 1660 Ti SC ULTRA GAMING, 06G-P4-1667-KR, 6GB GDDR6").Accepted)
	assert.False(t, v.Title(q, "EVGA GeForce GTX 1660 SC ULTRA GAMING").Accepted)
	assert.False(t, v.Title(q, "EVGA GeForce GTX 1660 Super SC ULTRA GAMING").Accepted)
}

func ramRecord(manufacturer, title string) *models.SpecRecord {
	return &models.SpecRecord{
		Type:         models.RAM,
		Manufacturer: manufacturer,
		Title:        title,
		Attributes:   models.Attributes{RAM: &models.RAMSpec{Size: 16, Type: "DDR4", Speed: 3200}},
	}
}

func boardRecord(manufacturer, title string) *models.SpecRecord {
	return &models.SpecRecord{
		Type:         models.Motherboard,
		Manufacturer: manufacturer,
		Title:        title,
		Attributes:   models.Attributes{Motherboard: &models.MotherboardSpec{Socket: "AM4", Chipset: "B550"}},
	}
}

func TestRecordRejectsOtherBrand(t *testing.T) {
	v := New(0)

	q := normalizer.Normalize("Corsair Vengeance LPX 16GB DDR4 3200", models.RAM)
	verdict := v.Record(q, ramRecord("", "G.Skill Ripjaws V 16GB DDR4 3200"))
	assert.False(t, verdict.Accepted)
	assert.Equal(t, models.ReasonVendorMismatch, verdict.Reason)

	verdict = v.Record(q, ramRecord("G.Skill", "Ripjaws V 16GB DDR4 3200"))
	assert.Equal(t, models.ReasonVendorMismatch, verdict.Reason)

	q = normalizer.Normalize("MSI B550", models.Motherboard)
	verdict = v.Record(q, boardRecord("", "ASUS ROG Strix B550-F Gaming"))
	assert.Equal(t, models.ReasonVendorMismatch, verdict.Reason)

	assert.Equal(t, models.ReasonVendorMismatch, v.Title(q, "Gigabyte B550 AORUS Elite").Reason)
}

func TestRecordAcceptsSameBrand(t *testing.T) {
	v := New(0)

	q := normalizer.Normalize("Corsair Vengeance LPX 16GB DDR4 3200", models.RAM)
	verdict := v.Record(q, ramRecord("Corsair", "Corsair Vengeance LPX 16GB DDR4 3200 MHz"))
	assert.True(t, verdict.Accepted, verdict.Reason)

	q = normalizer.Normalize("MSI MAG B550 Tomahawk", models.Motherboard)
	verdict = v.Record(q, boardRecord("MSI", "MSI MAG B550 TOMAHAWK"))
	assert.True(t, verdict.Accepted, verdict.Reason)

	// a title without any known maker is left to the token checks
	q = normalizer.Normalize("Corsair RM850x", models.PSU)
	assert.True(t, v.Title(q, "RM850x 850W 80+ Gold").Accepted)
}
