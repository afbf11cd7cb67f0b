package gateway

import "sync"

// Credits is the process-wide proxy credit ledger. Every fetch reserves its cost up front and
// settles the actual charge afterwards, so concurrent resolutions cannot overspend a budget.
type Credits struct {
	mu        sync.Mutex
	budget    int
	spent     int
	reserved  int
	remaining int
	reported  bool
}

// Balance is a point-in-time view of the ledger.
type Balance struct {
	Budget   int `json:"budget"`
	Spent    int `json:"spent"`
	Reserved int `json:"reserved"`
	// Available is budget minus spent and reserved credits, or -1 without a budget.
	Available int `json:"available"`
	// Remaining is the balance last reported by the proxy, or -1 if it never reported one.
	Remaining int `json:"remaining"`
}

// NewCredits returns a ledger limited to budget credits. A budget of zero is unlimited.
func NewCredits(budget int) *Credits {
	if budget < 0 {
		budget = 0
	}
	return &Credits{budget: budget}
}

// Reserve holds n credits for a pending fetch or returns ErrQuotaExhausted.
func (c *Credits) Reserve(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.budget > 0 && c.spent+c.reserved+n > c.budget {
		return ErrQuotaExhausted
	}
	c.reserved += n
	return nil
}

// Settle releases a reservation and records what was actually charged.
func (c *Credits) Settle(reserved, charged int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reserved -= reserved
	if c.reserved < 0 {
		c.reserved = 0
	}
	c.spent += charged
}

// Report records the balance announced by the proxy.
func (c *Credits) Report(remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remaining = remaining
	c.reported = true
}

func (c *Credits) Spent() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.spent
}

func (c *Credits) Balance() Balance {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := Balance{
		Budget:    c.budget,
		Spent:     c.spent,
		Reserved:  c.reserved,
		Available: -1,
		Remaining: -1,
	}
	if c.budget > 0 {
		b.Available = c.budget - c.spent - c.reserved
	}
	if c.reported {
		b.Remaining = c.remaining
	}
	return b
}
