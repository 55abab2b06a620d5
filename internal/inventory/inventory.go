package inventory

import (
	"divesurf/internal/ledger"
	"divesurf/internal/model"
)

// Validate runs the stock check for one enriched order against the ledger
// and builds the stock-side partial result. A granted reservation has
// already decremented and persisted the ledger; StockAfter always reflects
// the levels the order observed.
//
// A persistence failure is returned as the error (wrapping ledger.ErrPersist)
// together with a rejecting partial result: the order fails, the ledger does
// not advance, and the caller decides how loudly to report the write problem.
func Validate(lg *ledger.Ledger, o model.EnrichedOrder) (model.PartialResult, error) {
	pr := model.PartialResult{
		OrderID:      o.OrderID,
		Source:       model.SourceStock,
		OverallItems: o.OverallItems,
	}
	granted, after, err := lg.TryReserve(o.Surfboards, o.DivingSuits)
	pr.StockAfter = &after
	if err != nil {
		pr.Detail = "Stock persistence failed"
		return pr, err
	}
	if granted {
		pr.Valid = true
		pr.Detail = "Stock sufficient"
	} else {
		pr.Detail = "Insufficient stock"
	}
	return pr, nil
}
