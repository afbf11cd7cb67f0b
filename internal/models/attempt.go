package models

import "slices"

// Outcome is the result of trying one provider in a chain.
type Outcome string

const (
	OutcomeMatched        Outcome = "matched"
	OutcomeRejected       Outcome = "rejected"
	OutcomeNoMatch        Outcome = "no-match"
	OutcomeFetchError     Outcome = "fetch-error"
	OutcomeQuotaExhausted Outcome = "quota-exhausted"
	OutcomeSkipped        Outcome = "skipped"
)

// RejectReason explains why the validator refused a candidate.
type RejectReason string

const (
	ReasonDisambiguationPage   RejectReason = "DisambiguationPage"
	ReasonVendorMismatch       RejectReason = "VendorMismatch"
	ReasonIdentityTokenMissing RejectReason = "IdentityTokenMissing"
	ReasonVariantMismatch      RejectReason = "VariantMismatch"
	ReasonLowOverlap           RejectReason = "LowOverlap"
	ReasonEmptySpecTable       RejectReason = "EmptySpecTable"
)

// AttemptStep records what happened at one chain position.
type AttemptStep struct {
	Position int          `json:"position"`
	Provider string       `json:"provider"`
	Outcome  Outcome      `json:"outcome"`
	Reason   RejectReason `json:"reason,omitempty"`
	URL      string       `json:"url,omitempty"`
	Credits  int          `json:"credits"`
	Error    string       `json:"error,omitempty"`
}

// LookupAttempt is the transient trace of one resolution run.
type LookupAttempt struct {
	Query      string        `json:"query"`
	Type       ComponentType `json:"component_type"`
	Position   int           `json:"position"`
	Provider   string        `json:"provider,omitempty"`
	Outcome    Outcome       `json:"outcome,omitempty"`
	Credits    int           `json:"credits"`
	ItemsFound int           `json:"items_found"`
	Steps      []AttemptStep `json:"steps"`
}

func NewLookupAttempt(q CanonicalQuery) *LookupAttempt {
	return &LookupAttempt{Query: q.Text, Type: q.Type}
}

// Record appends a step and advances the chain position reached.
func (a *LookupAttempt) Record(step AttemptStep) {
	a.Steps = append(a.Steps, step)
	a.Position = step.Position
	a.Provider = step.Provider
	a.Outcome = step.Outcome
	a.Credits += step.Credits
}

// Clone returns a copy that shares no steps with a.
func (a *LookupAttempt) Clone() *LookupAttempt {
	if a == nil {
		return nil
	}
	c := *a
	c.Steps = slices.Clone(a.Steps)
	return &c
}

// LookupStatus is the aggregate outcome that crosses the engine boundary.
type LookupStatus string

const (
	StatusMatched        LookupStatus = "matched"
	StatusNotFound       LookupStatus = "not_found"
	StatusQuotaExhausted LookupStatus = "quota_exhausted"
	StatusError          LookupStatus = "error"
)

// LookupResult is returned to callers of the engine.
type LookupResult struct {
	Status  LookupStatus   `json:"status"`
	Record  *SpecRecord    `json:"record,omitempty"`
	Attempt *LookupAttempt `json:"attempt,omitempty"`
	JobID   string         `json:"job_id,omitempty"`
	Cached  bool           `json:"cached"`
	Shared  bool           `json:"shared"`
	Error   string         `json:"error,omitempty"`
}
