// Package decision maps extraction completeness and stock availability to
// the overall status of a material request.
package decision

import "github.com/shopspring/decimal"

// Status is the externally visible request status.
type Status string

const (
	StatusValidated            Status = "validated"
	StatusPartialStock         Status = "partial_stock"
	StatusInsufficientStock    Status = "insufficient_stock"
	StatusPendingClarification Status = "pending_clarification"
)

// Statuses lists every status in precedence order.
var Statuses = []Status{
	StatusPendingClarification,
	StatusValidated,
	StatusPartialStock,
	StatusInsufficientStock,
}

// Field names a piece of information the operator still has to supply.
type Field string

const (
	FieldMaterial   Field = "material"
	FieldQuantity   Field = "quantity"
	FieldDepartment Field = "department"
)

// Outcome is the decided status together with the data that belongs to it.
// The set of implementations is closed.
type Outcome interface {
	Status() Status
	outcome()
}

// Validated means stock covers the whole request.
type Validated struct{}

// PartialStock means some but not all of the request can be issued.
// Shortage is in the line item's unit; an outcome combined from several
// items leaves it zero and the items carry their own.
type PartialStock struct {
	Shortage decimal.Decimal
}

// InsufficientStock means nothing of the request can be issued. Shortage
// follows the same rule as for PartialStock.
type InsufficientStock struct {
	Shortage decimal.Decimal
}

// PendingClarification means the request cannot be checked yet. Missing is
// never empty.
type PendingClarification struct {
	Missing []Field
}

func (Validated) Status() Status            { return StatusValidated }
func (PartialStock) Status() Status         { return StatusPartialStock }
func (InsufficientStock) Status() Status    { return StatusInsufficientStock }
func (PendingClarification) Status() Status { return StatusPendingClarification }

func (Validated) outcome()            {}
func (PartialStock) outcome()         {}
func (InsufficientStock) outcome()    {}
func (PendingClarification) outcome() {}

// Input is what the decision needs to know about one line item.
type Input struct {
	MaterialResolved   bool
	QuantityPresent    bool // false also when the quantity is zero
	DepartmentResolved bool
	Requested          decimal.Decimal
	Shortage           decimal.Decimal
}

// Decide applies the rules in order; the first that matches wins.
//
//  1. material unresolved or quantity missing: pending clarification,
//     listing each absent field (department only alongside another gap)
//  2. no shortage: validated
//  3. shortage below the requested quantity: partial stock
//  4. otherwise: insufficient stock
func Decide(in Input) Outcome {
	quantity := in.QuantityPresent && in.Requested.IsPositive()
	if !in.MaterialResolved || !quantity {
		var missing []Field
		if !in.MaterialResolved {
			missing = append(missing, FieldMaterial)
		}
		if !quantity {
			missing = append(missing, FieldQuantity)
		}
		if !in.DepartmentResolved {
			missing = append(missing, FieldDepartment)
		}
		return PendingClarification{Missing: missing}
	}

	shortage := decimal.Max(decimal.Zero, in.Shortage)
	switch {
	case shortage.IsZero():
		return Validated{}
	case shortage.LessThan(in.Requested):
		return PartialStock{Shortage: shortage}
	default:
		return InsufficientStock{Shortage: shortage}
	}
}

// DecideAll combines the outcomes of several line items. Any pending item
// makes the request pending, with the union of missing fields in a fixed
// order. Otherwise the request is validated only if every item is, and
// insufficient only if every item is.
func DecideAll(items []Input) Outcome {
	if len(items) == 0 {
		return Decide(Input{DepartmentResolved: true})
	}
	outcomes := make([]Outcome, len(items))
	for i, in := range items {
		outcomes[i] = Decide(in)
	}
	return Combine(outcomes)
}

// Combine merges per-item outcomes as described for DecideAll.
func Combine(outcomes []Outcome) Outcome {
	if len(outcomes) == 1 {
		return outcomes[0]
	}
	seen := map[Field]bool{}
	pending := false
	validated, insufficient := 0, 0
	for _, o := range outcomes {
		switch v := o.(type) {
		case PendingClarification:
			pending = true
			for _, f := range v.Missing {
				seen[f] = true
			}
		case Validated:
			validated++
		case InsufficientStock:
			insufficient++
		}
	}
	switch {
	case pending:
		var missing []Field
		for _, f := range []Field{FieldMaterial, FieldQuantity, FieldDepartment} {
			if seen[f] {
				missing = append(missing, f)
			}
		}
		return PendingClarification{Missing: missing}
	case validated == len(outcomes):
		return Validated{}
	case insufficient == len(outcomes):
		return InsufficientStock{}
	default:
		return PartialStock{}
	}
}
