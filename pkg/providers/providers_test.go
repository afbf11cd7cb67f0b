package providers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, name, url string) *gateway.Page {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return &gateway.Page{URL: url, StatusCode: 200, Body: body}
}

const searchURL = "https://www.google.com/search?q=test"

func TestReferenceBuildQueryURL(t *testing.T) {
	ref := NewReference()

	u, err := ref.BuildQueryURL(models.CanonicalQuery{Type: models.CPU, Text: "i7-9700k", Brand: "Intel", Series: "Core"})
	require.NoError(t, err)
	assert.Contains(t, u, "site%3Aark.intel.com")
	assert.Contains(t, u, "i7-9700k")

	_, err = ref.BuildQueryURL(models.CanonicalQuery{Type: models.CPU, Text: "ryzen 7 5800x", Brand: "AMD"})
	assert.ErrorIs(t, err, ErrNotApplicable)

	_, err = ref.BuildQueryURL(models.CanonicalQuery{Type: models.GPU, Text: "arc a770", Series: "Arc"})
	assert.ErrorIs(t, err, ErrNotApplicable)
}

func TestReferenceParseSearchResults(t *testing.T) {
	q := models.CanonicalQuery{Type: models.CPU, Text: "i7-9700k", Brand: "Intel"}
	res := NewReference().Parse(q, fixture(t, "ark_search.html", searchURL))

	require.Nil(t, res.Record)
	require.Len(t, res.Candidates, 1)
	c := res.Candidates[0]
	assert.Equal(t, "https://ark.intel.com/content/www/us/en/ark/products/186604/intel-core-i79700k-processor-12m-cache-up-to-4-90-ghz.html", c.URL)
	assert.Equal(t, "Intel Core i7-9700K Processor (12M Cache, up to 4.90 GHz)", c.Title)
	assert.True(t, c.Render)
}

func TestReferenceParseProductPage(t *testing.T) {
	q := models.CanonicalQuery{Type: models.CPU, Text: "i7-9700k", Brand: "Intel"}
	url := "https://ark.intel.com/content/www/us/en/ark/products/186604/intel-core-i79700k-processor-12m-cache-up-to-4-90-ghz.html"
	res := NewReference().Parse(q, fixture(t, "ark_i7_9700k.html", url))

	rec := res.Record
	require.NotNil(t, rec)
	assert.Equal(t, models.CPU, rec.Type)
	assert.Equal(t, "Intel", rec.Manufacturer)
	assert.Equal(t, "Core i7-9700K", rec.Model)
	assert.Equal(t, NameReference, rec.Source)
	assert.Equal(t, url, rec.SourceURL)

	cpu := rec.Attributes.CPU
	require.NotNil(t, cpu)
	assert.Equal(t, 8, cpu.Cores)
	assert.Equal(t, 8, cpu.Threads)
	assert.Equal(t, 95, cpu.TDP)
	assert.Equal(t, "FCLGA1151", cpu.Socket)
	require.NotNil(t, cpu.BaseClock)
	assert.Equal(t, "3.6", cpu.BaseClock.String())
	require.NotNil(t, cpu.BoostClock)
	assert.Equal(t, "4.9", cpu.BoostClock.String())
	assert.Equal(t, "Products formerly Coffee Lake", cpu.Architecture)
}

func TestAggregatorBuildQueryURL(t *testing.T) {
	agg := NewAggregator()

	u, err := agg.BuildQueryURL(models.CanonicalQuery{Type: models.GPU, Text: "rtx 3080"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.techpowerup.com/gpu-specs/?ajaxsrch=rtx+3080", u)

	u, err = agg.BuildQueryURL(models.CanonicalQuery{Type: models.CPU, Text: "ryzen 7 5800x"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.techpowerup.com/cpu-specs/?ajaxsrch=ryzen+7+5800x", u)

	_, err = agg.BuildQueryURL(models.CanonicalQuery{Type: models.PSU, Text: "corsair rm750x"})
	assert.ErrorIs(t, err, ErrNotApplicable)
}

func TestAggregatorParseSearchResults(t *testing.T) {
	q := models.CanonicalQuery{Type: models.GPU, Text: "rtx 3080"}
	res := NewAggregator().Parse(q, fixture(t, "aggregator_search_gpu.html", "https://www.techpowerup.com/gpu-specs/?ajaxsrch=rtx+3080"))

	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "GeForce RTX 3080 Ti", res.Candidates[0].Title)
	assert.Equal(t, "https://www.techpowerup.com/gpu-specs/geforce-rtx-3080-ti.c3735", res.Candidates[0].URL)
	assert.Equal(t, "GeForce RTX 3080", res.Candidates[1].Title)
	assert.Equal(t, "https://www.techpowerup.com/gpu-specs/geforce-rtx-3080.c3621", res.Candidates[1].URL)
	assert.False(t, res.Candidates[1].Render)
}

func TestAggregatorSearchIgnoresOtherSection(t *testing.T) {
	q := models.CanonicalQuery{Type: models.CPU, Text: "rtx 3080"}
	res := NewAggregator().Parse(q, fixture(t, "aggregator_search_gpu.html", "https://www.techpowerup.com/cpu-specs/?ajaxsrch=rtx+3080"))
	assert.True(t, res.NoMatch())
}

func TestAggregatorParseDetailPage(t *testing.T) {
	q := models.CanonicalQuery{Type: models.GPU, Text: "rtx 3080"}
	url := "https://www.techpowerup.com/gpu-specs/geforce-rtx-3080.c3621"
	rec := NewAggregator().Parse(q, fixture(t, "aggregator_rtx3080.html", url)).Record

	require.NotNil(t, rec)
	assert.Equal(t, "NVIDIA", rec.Manufacturer)
	assert.Equal(t, "GeForce RTX 3080", rec.Model)
	assert.Equal(t, "NVIDIA GeForce RTX 3080", rec.Title)
	assert.Equal(t, NameAggregator, rec.Source)
	assert.Equal(t, "GA102", rec.RawData["gpu_name"])

	gpu := rec.Attributes.GPU
	require.NotNil(t, gpu)
	assert.Equal(t, 10240, gpu.MemorySize)
	assert.Equal(t, "GDDR6X", gpu.MemoryType)
	assert.Equal(t, 1440, gpu.BaseClock)
	assert.Equal(t, 1710, gpu.BoostClock)
	assert.Equal(t, 320, gpu.TDP)
	assert.Equal(t, "PCIe 4.0 x16", gpu.BusInterface)
	assert.Equal(t, "320 bit", gpu.MemoryBus)
	assert.Equal(t, 8704, gpu.Shaders)
}

func TestMarketplaceBuildQueryURL(t *testing.T) {
	u, err := NewMarketplace().BuildQueryURL(models.CanonicalQuery{Type: models.PSU, Text: "corsair rm750x"})
	require.NoError(t, err)
	assert.Contains(t, u, "site%3Aamazon.com")
	assert.Contains(t, u, "power+supply")
}

func TestMarketplaceParseSearchResults(t *testing.T) {
	q := models.CanonicalQuery{Type: models.PSU, Text: "corsair rm750x"}
	res := NewMarketplace().Parse(q, fixture(t, "marketplace_search.html", searchURL))

	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "https://www.amazon.com/Corsair-RM750x-Modular-Power-Supply/dp/B08R5JH55Y", res.Candidates[0].URL)
	assert.Equal(t, "Corsair RM750x (2021) Fully Modular ATX Power Supply - 750 Watt", res.Candidates[0].Title)
	assert.Equal(t, "https://www.amazon.com/Corsair-RM850x-Modular-Power-Supply/dp/B08R5LGRZX", res.Candidates[1].URL)
}

func TestMarketplaceParseListing(t *testing.T) {
	q := models.CanonicalQuery{Type: models.PSU, Text: "corsair rm750x"}
	url := "https://www.amazon.com/Corsair-RM750x-Modular-Power-Supply/dp/B08R5JH55Y"
	rec := NewMarketplace().Parse(q, fixture(t, "marketplace_rm750x.html", url)).Record

	require.NotNil(t, rec)
	assert.Equal(t, models.PSU, rec.Type)
	assert.Equal(t, "Corsair", rec.Manufacturer)
	assert.Equal(t, "RM750x", rec.Model)
	assert.Equal(t, NameMarketplace, rec.Source)
	assert.Equal(t, "CP-9020199-NA", rec.RawData["item_model_number"])

	psu := rec.Attributes.PSU
	require.NotNil(t, psu)
	assert.Equal(t, 750, psu.Wattage)
	assert.Equal(t, "80+ Gold", psu.Efficiency)
	assert.Equal(t, "Full", psu.Modular)
	assert.Equal(t, "ATX", psu.FormFactor)
}

func TestManufacturerNeedsBrand(t *testing.T) {
	man := NewManufacturer()

	_, err := man.BuildQueryURL(models.CanonicalQuery{Type: models.GPU, Text: "rtx 3080", Series: "GeForce"})
	assert.ErrorIs(t, err, ErrNotApplicable)

	_, err = man.BuildQueryURL(models.CanonicalQuery{Type: models.PSU, Text: "rm750x", Brand: "Corsair"})
	assert.ErrorIs(t, err, ErrNotApplicable)

	u, err := man.BuildQueryURL(models.CanonicalQuery{Type: models.GPU, Text: "gtx 1660 ti", Brand: "EVGA", Variant: "sc ultra gaming"})
	require.NoError(t, err)
	assert.Contains(t, u, "site%3Aevga.com")
	assert.Contains(t, u, "sc+ultra+gaming")

	u, err = man.BuildQueryURL(models.CanonicalQuery{Type: models.Motherboard, Text: "b550 tomahawk", Brand: "MSI"})
	require.NoError(t, err)
	assert.Contains(t, u, "site%3Amsi.com")
}

func TestManufacturerParseSearchResultsPrefersProductPages(t *testing.T) {
	q := models.CanonicalQuery{Type: models.GPU, Text: "gtx 1660 ti", Brand: "EVGA"}
	res := NewManufacturer().Parse(q, fixture(t, "manufacturer_search.html", searchURL))

	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "https://www.evga.com/products/product.aspx?pn=06G-P4-1667-KR", res.Candidates[0].URL)
	assert.Equal(t, "https://www.evga.com/support/", res.Candidates[1].URL)
}

func TestManufacturerParseProductPage(t *testing.T) {
	q := models.CanonicalQuery{Type: models.GPU, Text: "gtx 1660 ti", Brand: "EVGA"}
	url := "https://www.evga.com/products/product.aspx?pn=06G-P4-1667-KR"
	rec := NewManufacturer().Parse(q, fixture(t, "manufacturer_1660ti.html", url)).Record

	require.NotNil(t, rec)
	assert.Equal(t, "EVGA", rec.Manufacturer)
	assert.Equal(t, "GeForce GTX 1660 Ti SC ULTRA GAMING", rec.Model)
	assert.Equal(t, "EVGA GeForce GTX 1660 Ti SC ULTRA GAMING", rec.Title)

	gpu := rec.Attributes.GPU
	require.NotNil(t, gpu)
	assert.Equal(t, 6144, gpu.MemorySize)
	assert.Equal(t, "GDDR6", gpu.MemoryType)
	assert.Equal(t, 1500, gpu.BaseClock)
	assert.Equal(t, 1860, gpu.BoostClock)
	assert.Equal(t, 1536, gpu.Shaders)
}

func TestParseEmptyPageIsNoMatch(t *testing.T) {
	q := models.CanonicalQuery{Type: models.GPU, Text: "rtx 3080"}
	page := &gateway.Page{URL: searchURL, StatusCode: 200}
	for _, p := range []Provider{NewReference(), NewAggregator(), NewMarketplace(), NewManufacturer()} {
		assert.True(t, p.Parse(q, page).NoMatch(), p.Name())
	}
}

func TestDocumentDecodesDeclaredCharset(t *testing.T) {
	page := &gateway.Page{
		URL:        "https://www.example.com/",
		StatusCode: 200,
		Body:       []byte("<html><body><h1>Ventilateur \xe9dition noire</h1></body></html>"),
		Headers:    http.Header{"Content-Type": []string{"text/html; charset=ISO-8859-1"}},
	}
	doc, ok := document(page)
	require.True(t, ok)
	assert.Equal(t, "Ventilateur édition noire", doc.Find("h1").Text())

	page.Headers = nil
	page.Body = []byte("<html><body><h1>Intel® Core™</h1></body></html>")
	doc, ok = document(page)
	require.True(t, ok)
	assert.Equal(t, "Intel® Core™", doc.Find("h1").Text())
}
