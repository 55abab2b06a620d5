package credit

import "divesurf/internal/model"

// approvalThreshold is the minimum score that passes the credit check.
const approvalThreshold = 5

// Score derives a deterministic credit score in [1,10] from the customer id:
// the sum of its decimal digits (non-digit characters ignored), mod 10, plus 1.
func Score(customerID string) uint {
	sum := 0
	for _, r := range customerID {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}
	return uint(sum%10) + 1
}

// Validate produces the credit-side partial result for an enriched order.
// Pure; the customer fields are carried so the correlator can supply them
// to the aggregate.
func Validate(o model.EnrichedOrder) model.PartialResult {
	score := Score(o.CustomerID)
	valid := score >= approvalThreshold
	detail := "Credit score too low"
	if valid {
		detail = "Credit score is good"
	}
	return model.PartialResult{
		OrderID:      o.OrderID,
		Source:       model.SourceCredit,
		Valid:        valid,
		Detail:       detail,
		CustomerID:   o.CustomerID,
		FirstName:    o.FirstName,
		LastName:     o.LastName,
		OverallItems: o.OverallItems,
		CreditScore:  score,
	}
}
