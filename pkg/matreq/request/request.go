// Package request defines the structured material request produced for
// every operator message.
package request

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/cognicore/matreq/pkg/matreq/decision"
	"github.com/cognicore/matreq/pkg/matreq/lang"
)

// Urgency of a request.
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyUrgent Urgency = "urgent"
)

// UnknownDepartment is the requesting department when none was recognised.
const UnknownDepartment = "unknown"

// Approval levels.
const (
	ApprovalManager     = "manager"
	ApprovalProcurement = "procurement"
)

// MaterialLineItem is one requested material. Quantities are in UOM.
type MaterialLineItem struct {
	Name          string          `json:"name"`
	RawPhrase     string          `json:"raw_phrase,omitempty"`
	MaterialCode  string          `json:"material_code,omitempty"`
	Resolution    string          `json:"resolution"`
	RequestedQty  decimal.Decimal `json:"requested_qty"`
	UOM           string          `json:"uom"`
	AvailableQty  decimal.Decimal `json:"available_qty"`
	StockLocation string          `json:"stock_location,omitempty"`
}

// ShortageQty is max(0, requested - available). It is always derived.
func (m MaterialLineItem) ShortageQty() decimal.Decimal {
	return decimal.Max(decimal.Zero, m.RequestedQty.Sub(m.AvailableQty))
}

type lineItemJSON struct {
	Name          string      `json:"name"`
	RawPhrase     string      `json:"raw_phrase,omitempty"`
	MaterialCode  string      `json:"material_code,omitempty"`
	Resolution    string      `json:"resolution"`
	RequestedQty  json.Number `json:"requested_qty"`
	UOM           string      `json:"uom"`
	AvailableQty  json.Number `json:"available_qty"`
	ShortageQty   json.Number `json:"shortage_qty"`
	StockLocation string      `json:"stock_location,omitempty"`
}

// MarshalJSON writes quantities as bare numbers and adds shortage_qty.
func (m MaterialLineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(lineItemJSON{
		Name:          m.Name,
		RawPhrase:     m.RawPhrase,
		MaterialCode:  m.MaterialCode,
		Resolution:    m.Resolution,
		RequestedQty:  json.Number(m.RequestedQty.String()),
		UOM:           m.UOM,
		AvailableQty:  json.Number(m.AvailableQty.String()),
		ShortageQty:   json.Number(m.ShortageQty().String()),
		StockLocation: m.StockLocation,
	})
}

// UnmarshalJSON reads a line item; shortage_qty is ignored and re-derived.
func (m *MaterialLineItem) UnmarshalJSON(data []byte) error {
	type plain MaterialLineItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = MaterialLineItem(p)
	return nil
}

// NoticeCode identifies a non-fatal observation about a request.
type NoticeCode string

const (
	NoticeFuzzyMatch         NoticeCode = "fuzzy_match"
	NoticeNotInInventory     NoticeCode = "not_in_inventory"
	NoticeUnitMismatch       NoticeCode = "unit_mismatch"
	NoticeBelowReorderLevel  NoticeCode = "below_reorder_level"
	NoticeQuantityHigh       NoticeCode = "quantity_unusually_high"
	NoticeDepartmentUnknown  NoticeCode = "department_unknown"
	NoticeUnresolvedMaterial NoticeCode = "unresolved_material"
)

// Notice is the language-independent form of a warning. Args fill the
// placeholders of the localized template in order.
type Notice struct {
	Code NoticeCode `json:"code"`
	Args []string   `json:"args,omitempty"`
}

// Shortfall records a material whose stock covers only part of the request.
// Secondary locations may hold the rest.
type Shortfall struct {
	Material  string          `json:"material"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Shortage  decimal.Decimal `json:"shortage"`
	Unit      string          `json:"unit"`
}

// MarshalJSON writes quantities as bare numbers, like line items.
func (s Shortfall) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Material  string      `json:"material"`
		Required  json.Number `json:"required"`
		Available json.Number `json:"available"`
		Shortage  json.Number `json:"shortage"`
		Unit      string      `json:"unit"`
	}{
		Material:  s.Material,
		Required:  json.Number(s.Required.String()),
		Available: json.Number(s.Available.String()),
		Shortage:  json.Number(s.Shortage.String()),
		Unit:      s.Unit,
	})
}

// ValidationResult collects what the engine noticed or could not extract.
type ValidationResult struct {
	Warnings    []string    `json:"warnings"`
	MissingInfo []string    `json:"missing_info"`
	Notices     []Notice    `json:"notices,omitempty"`
	Shortfall   []Shortfall `json:"shortfall,omitempty"`
}

// Approval says whether a request needs sign-off before issue.
type Approval struct {
	Required bool   `json:"required"`
	Level    string `json:"level,omitempty"`
}

// MaterialRequest is the engine's output for one operator message. It is
// created fresh per message and not modified afterwards.
type MaterialRequest struct {
	RequestID            string             `json:"request_id"`
	RequestingDepartment string             `json:"requesting_department"`
	Materials            []MaterialLineItem `json:"materials"`
	Urgency              Urgency            `json:"urgency"`
	OrderReference       *string            `json:"order_reference"`
	Status               decision.Status    `json:"status"`
	Validation           ValidationResult   `json:"validation"`
	NextSteps            []string           `json:"next_steps"`

	Language       lang.Code `json:"language"`
	RequestType    string    `json:"request_type"`
	SourceLocation string    `json:"source_location,omitempty"`
	Purpose        string    `json:"purpose,omitempty"`
	LinkedSKU      string    `json:"linked_sku,omitempty"`
	Approval       Approval  `json:"approval"`
	TablesVersion  string    `json:"tables_version"`

	// Outcome carries Status with its per-status data.
	Outcome decision.Outcome `json:"-"`
}

// ApprovalFor returns the approval rule: urgent requests need a manager,
// requests that cannot be met from stock need procurement.
func ApprovalFor(urgency Urgency, status decision.Status) Approval {
	switch {
	case urgency == UrgencyUrgent:
		return Approval{Required: true, Level: ApprovalManager}
	case status == decision.StatusInsufficientStock:
		return Approval{Required: true, Level: ApprovalProcurement}
	default:
		return Approval{}
	}
}

// Missing returns the missing fields of a pending request.
func (r MaterialRequest) Missing() []decision.Field {
	if p, ok := r.Outcome.(decision.PendingClarification); ok {
		return p.Missing
	}
	return nil
}
