package store

import (
	"context"
	"sync"
	"time"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
)

type memoryKey struct {
	ct  models.ComponentType
	key string
}

// Memory is an in-process Store. Records live until the process exits.
type Memory struct {
	mu      sync.RWMutex
	nextID  int64
	records map[memoryKey]*models.SpecRecord
	aliases map[memoryKey]*models.SpecRecord
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[memoryKey]*models.SpecRecord),
		aliases: make(map[memoryKey]*models.SpecRecord),
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, ct models.ComponentType, model string) (*models.SpecRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	k := memoryKey{ct, Key(model)}
	if rec, ok := m.records[k]; ok {
		return clone(rec), nil
	}
	if rec, ok := m.aliases[k]; ok {
		return clone(rec), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) Put(ctx context.Context, rec *models.SpecRecord, aliases ...string) (*models.SpecRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := memoryKey{rec.Type, Key(rec.Model)}
	stored, exists := m.records[k]
	if !exists {
		m.nextID++
		stored = clone(rec)
		stored.ID = m.nextID
		if stored.ResolvedAt.IsZero() {
			stored.ResolvedAt = m.now().UTC()
		}
		m.records[k] = stored
	}

	for _, a := range aliasKeys(stored, aliases) {
		ak := memoryKey{rec.Type, a}
		if _, taken := m.records[ak]; taken {
			continue
		}
		if _, taken := m.aliases[ak]; !taken {
			m.aliases[ak] = stored
		}
	}

	return clone(stored), !exists, nil
}

// Len returns the number of stored records, aliases excluded.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *Memory) Close() error {
	return nil
}
