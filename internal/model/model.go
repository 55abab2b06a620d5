package model

// NormalizedOrder is the canonical order produced from either input dialect.
type NormalizedOrder struct {
	CustomerID  string `json:"customerId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DivingSuits uint   `json:"divingSuits"`
	Surfboards  uint   `json:"surfboards"`
}

// EnrichedOrder is a NormalizedOrder with an assigned order id and the
// precomputed item total. OverallItems is computed once at enrichment and
// carried through every downstream stage unchanged.
type EnrichedOrder struct {
	OrderID      uint64 `json:"orderId"`
	CustomerID   string `json:"customerId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	DivingSuits  uint   `json:"divingSuits"`
	Surfboards   uint   `json:"surfboards"`
	OverallItems uint   `json:"overallItems"`
}

// Source tags which validator produced a PartialResult.
type Source string

const (
	SourceCredit Source = "credit"
	SourceStock  Source = "stock"
)

// StockLevels is the remaining inventory per product type.
type StockLevels struct {
	Surfboards  int `json:"surfboards"`
	DivingSuits int `json:"divingSuits"`
}

// Total returns the combined remaining stock.
func (s StockLevels) Total() int { return s.Surfboards + s.DivingSuits }

// PartialResult is one validator's verdict on an order. Exactly one per
// (OrderID, Source) pair is expected. The credit side carries the customer
// fields and score; the stock side carries the post-check stock levels.
type PartialResult struct {
	OrderID      uint64       `json:"orderId"`
	Source       Source       `json:"source"`
	Valid        bool         `json:"valid"`
	Detail       string       `json:"detail"`
	CustomerID   string       `json:"customerId,omitempty"`
	FirstName    string       `json:"firstName,omitempty"`
	LastName     string       `json:"lastName,omitempty"`
	OverallItems uint         `json:"overallItems"`
	CreditScore  uint         `json:"creditScore,omitempty"`
	StockAfter   *StockLevels `json:"stockAfter,omitempty"`
}

// AggregatedResult is the final per-order record: the merge of both partial
// results, or a time-boxed partial when one side never arrived. Emitted
// exactly once per order id and never revised.
type AggregatedResult struct {
	OrderID      uint64      `json:"orderId"`
	CustomerID   string      `json:"customerId"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	OverallItems uint        `json:"overallItems"`
	Valid        bool        `json:"valid"`
	Detail       string      `json:"detail"`
	CreditScore  uint        `json:"creditScore"`
	StockAfter   StockLevels `json:"stockAfter"`
	SizeClass    string      `json:"sizeClass,omitempty"`
}
