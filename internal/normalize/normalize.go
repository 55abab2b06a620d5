package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"divesurf/internal/model"
)

// Dialect identifies which raw order grammar produced a line.
type Dialect int

const (
	// DialectWeb is <customerId,firstName,lastName,divingSuits,surfboards>
	// where customerId is numeric.
	DialectWeb Dialect = iota
	// DialectCallCenter is <fullName,surfboards,divingSuits,customerId>.
	DialectCallCenter
)

// MalformedInputError reports a raw order line that could not be parsed.
// The order is dropped; the pipeline continues.
type MalformedInputError struct {
	Line   string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed order input %q: %s", e.Line, e.Reason)
}

// Classify decides the dialect of a raw line: a fully numeric first
// comma-delimited field marks a web order, anything else a call-center order.
func Classify(line string) Dialect {
	first, _, _ := strings.Cut(line, ",")
	if isNumeric(strings.TrimSpace(first)) {
		return DialectWeb
	}
	return DialectCallCenter
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Parse converts one raw order line of either dialect into the canonical
// order. Pure; the only failure mode is *MalformedInputError.
func Parse(line string) (model.NormalizedOrder, error) {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch Classify(line) {
	case DialectWeb:
		return parseWeb(line, parts)
	default:
		return parseCallCenter(line, parts)
	}
}

func parseWeb(line string, parts []string) (model.NormalizedOrder, error) {
	if len(parts) != 5 {
		return model.NormalizedOrder{}, &MalformedInputError{Line: line, Reason: fmt.Sprintf("want 5 fields, got %d", len(parts))}
	}
	suits, err := parseQty(parts[3])
	if err != nil {
		return model.NormalizedOrder{}, &MalformedInputError{Line: line, Reason: "diving suits: " + err.Error()}
	}
	boards, err := parseQty(parts[4])
	if err != nil {
		return model.NormalizedOrder{}, &MalformedInputError{Line: line, Reason: "surfboards: " + err.Error()}
	}
	return model.NormalizedOrder{
		CustomerID:  parts[0],
		FirstName:   parts[1],
		LastName:    parts[2],
		DivingSuits: suits,
		Surfboards:  boards,
	}, nil
}

func parseCallCenter(line string, parts []string) (model.NormalizedOrder, error) {
	if len(parts) != 4 {
		return model.NormalizedOrder{}, &MalformedInputError{Line: line, Reason: fmt.Sprintf("want 4 fields, got %d", len(parts))}
	}
	first, last, ok := strings.Cut(parts[0], " ")
	if !ok || first == "" || strings.TrimSpace(last) == "" {
		return model.NormalizedOrder{}, &MalformedInputError{Line: line, Reason: "full name needs first and last name"}
	}
	boards, err := parseQty(parts[1])
	if err != nil {
		return model.NormalizedOrder{}, &MalformedInputError{Line: line, Reason: "surfboards: " + err.Error()}
	}
	suits, err := parseQty(parts[2])
	if err != nil {
		return model.NormalizedOrder{}, &MalformedInputError{Line: line, Reason: "diving suits: " + err.Error()}
	}
	return model.NormalizedOrder{
		CustomerID:  parts[3],
		FirstName:   first,
		LastName:    strings.TrimSpace(last),
		DivingSuits: suits,
		Surfboards:  boards,
	}, nil
}

func parseQty(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not a non-negative integer", s)
	}
	return uint(n), nil
}
