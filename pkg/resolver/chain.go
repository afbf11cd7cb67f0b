package resolver

import (
	"github.com/Aquilabot/KreaPC-Specs/internal/config"
	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/providers"
)

// Providers is the set of adapters chains are built from. A nil field is a disabled provider.
type Providers struct {
	Reference    providers.Provider
	Aggregator   providers.Provider
	Marketplace  providers.Provider
	Manufacturer providers.Provider
}

func DefaultProviders() Providers {
	return Providers{
		Reference:    providers.NewReference(),
		Aggregator:   providers.NewAggregator(),
		Marketplace:  providers.NewMarketplace(),
		Manufacturer: providers.NewManufacturer(),
	}
}

// Enabled drops the providers switched off in cfg.
func (p Providers) Enabled(cfg config.ProvidersConfig) Providers {
	if !cfg.Reference.Enabled {
		p.Reference = nil
	}
	if !cfg.Aggregator.Enabled {
		p.Aggregator = nil
	}
	if !cfg.Marketplace.Enabled {
		p.Marketplace = nil
	}
	if !cfg.Manufacturer.Enabled {
		p.Manufacturer = nil
	}
	return p
}

// Chain returns the ordered providers tried for q.
//
//	CPU (Intel):  reference, aggregator, marketplace
//	CPU (other):  aggregator, marketplace
//	GPU:          manufacturer, aggregator, marketplace
//	Motherboard:  marketplace, manufacturer
//	everything else: marketplace
//
// The GPU manufacturer step stays in the chain without a brand hint and is skipped at run time.
func (p Providers) Chain(q models.CanonicalQuery) []providers.Provider {
	var chain []providers.Provider
	switch q.Type {
	case models.CPU:
		if q.Vendor() == "Intel" {
			chain = append(chain, p.Reference)
		}
		chain = append(chain, p.Aggregator, p.Marketplace)
	case models.GPU:
		chain = append(chain, p.Manufacturer, p.Aggregator, p.Marketplace)
	case models.Motherboard:
		chain = append(chain, p.Marketplace, p.Manufacturer)
	default:
		chain = append(chain, p.Marketplace)
	}

	enabled := chain[:0]
	for _, provider := range chain {
		if provider != nil {
			enabled = append(enabled, provider)
		}
	}
	return enabled
}
