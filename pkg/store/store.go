package store

import (
	"context"
	"errors"
	"strings"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/normalizer"
)

var ErrNotFound = errors.New("spec record not found")

// Store persists resolved spec records. A stored record is permanent: Put never replaces one
// and nothing is evicted.
type Store interface {
	// Get returns the record stored under (ct, model), where model is a canonical model name
	// or one of its aliases.
	Get(ctx context.Context, ct models.ComponentType, model string) (*models.SpecRecord, error)
	// Put stores rec under its model and the given aliases. When a record already exists for the
	// model, that record is returned with created false and the aliases are attached to it.
	Put(ctx context.Context, rec *models.SpecRecord, aliases ...string) (stored *models.SpecRecord, created bool, err error)
	Close() error
}

// Key folds a model name into its lookup key. Case, spacing and punctuation never distinguish
// two models, so "i7-9700K" and "i7 9700k" share a key.
func Key(model string) string {
	return strings.Join(normalizer.Tokenize(model), " ")
}

func aliasKeys(rec *models.SpecRecord, aliases []string) []string {
	model := Key(rec.Model)
	seen := map[string]bool{model: true}
	var keys []string
	for _, a := range append([]string{rec.DisplayName()}, aliases...) {
		k := Key(a)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

func clone(rec *models.SpecRecord) *models.SpecRecord {
	if rec == nil {
		return nil
	}
	c := *rec
	if rec.RawData != nil {
		c.RawData = make(map[string]string, len(rec.RawData))
		for k, v := range rec.RawData {
			c.RawData[k] = v
		}
	}
	return &c
}
