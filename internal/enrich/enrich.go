package enrich

import (
	"sync/atomic"

	"divesurf/internal/model"
)

// Sequence issues monotonically increasing order ids, starting at 1.
// Concurrent callers never observe the same id. The counter is process-local:
// a restart of the owning process starts over at 1, so ids are unique only
// within one publisher lifetime.
type Sequence struct {
	last atomic.Uint64
}

func NewSequence() *Sequence { return &Sequence{} }

// NextID returns the next order id.
func (s *Sequence) NextID() uint64 { return s.last.Add(1) }

// Enrich assigns the next order id and the item total. OverallItems is
// computed here once; downstream stages read it, never recompute it.
func Enrich(seq *Sequence, o model.NormalizedOrder) model.EnrichedOrder {
	return model.EnrichedOrder{
		OrderID:      seq.NextID(),
		CustomerID:   o.CustomerID,
		FirstName:    o.FirstName,
		LastName:     o.LastName,
		DivingSuits:  o.DivingSuits,
		Surfboards:   o.Surfboards,
		OverallItems: o.DivingSuits + o.Surfboards,
	}
}
