package credit

import (
	"testing"

	"divesurf/internal/model"
)

func TestScore(t *testing.T) {
	cases := []struct {
		customerID string
		want       uint
	}{
		{"42", 7},       // 4+2=6 -> 6%10+1
		{"0", 1},        // 0 -> 1
		{"19", 1},       // 10%10+1
		{"C-42", 7},     // non-digits ignored
		{"", 1},         // no digits at all
		{"999", 8},      // 27%10+1
		{"abc", 1},      // no digits
		{"1a2b3c", 7},   // 6 -> 7
	}
	for _, tc := range cases {
		if got := Score(tc.customerID); got != tc.want {
			t.Fatalf("Score(%q) = %d, want %d", tc.customerID, got, tc.want)
		}
	}
}

func TestScore_StaysInRange(t *testing.T) {
	ids := []string{"", "0", "9", "99", "999999999", "x", "12345678901234567890"}
	for _, id := range ids {
		s := Score(id)
		if s < 1 || s > 10 {
			t.Fatalf("Score(%q) = %d, out of [1,10]", id, s)
		}
	}
}

func TestValidate_Threshold(t *testing.T) {
	order := func(customerID string) model.EnrichedOrder {
		return model.EnrichedOrder{OrderID: 7, CustomerID: customerID, FirstName: "Jane", LastName: "Doe", OverallItems: 5}
	}

	pr := Validate(order("42")) // score 7
	if !pr.Valid {
		t.Fatalf("score 7 should be approved: %+v", pr)
	}
	if pr.Source != model.SourceCredit || pr.OrderID != 7 || pr.CreditScore != 7 {
		t.Fatalf("unexpected partial result: %+v", pr)
	}
	if pr.Detail != "Credit score is good" {
		t.Fatalf("unexpected detail: %q", pr.Detail)
	}
	if pr.FirstName != "Jane" || pr.LastName != "Doe" || pr.OverallItems != 5 {
		t.Fatalf("credit side must carry customer fields: %+v", pr)
	}

	pr = Validate(order("12")) // 3 -> score 4
	if pr.Valid {
		t.Fatalf("score 4 should be rejected: %+v", pr)
	}
	if pr.Detail != "Credit score too low" {
		t.Fatalf("unexpected detail: %q", pr.Detail)
	}

	pr = Validate(order("13")) // 4 -> score 5, boundary
	if !pr.Valid {
		t.Fatalf("score 5 is the approval boundary and should pass: %+v", pr)
	}
}
