package models

import "fmt"

// DefaultRowLimit is the TOP value requested when a question gives no quantity.
const DefaultRowLimit = 100

// SafetyRowCap is the TOP value injected into "all rows" queries that lack one.
const SafetyRowCap = 1000

// QuantityKind says how many rows the user asked for.
type QuantityKind string

const (
	QuantityAll     QuantityKind = "ALL"
	QuantityExact   QuantityKind = "EXACT"
	QuantityDefault QuantityKind = "DEFAULT"
)

// QuantityHint is the row-count intent extracted from a question and
// embedded in the synthesis prompt.
type QuantityHint struct {
	Kind QuantityKind `json:"kind"`
	N    int          `json:"n,omitempty"`
}

// String renders the hint as ALL, EXACT(n) or DEFAULT(n).
func (h QuantityHint) String() string {
	if h.Kind == QuantityAll {
		return string(QuantityAll)
	}
	return fmt.Sprintf("%s(%d)", h.Kind, h.N)
}
