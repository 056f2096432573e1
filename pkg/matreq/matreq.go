// Package matreq turns free-form operator messages into structured,
// stock-validated material requests.
package matreq

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cognicore/matreq/pkg/matreq/compose"
	"github.com/cognicore/matreq/pkg/matreq/decision"
	"github.com/cognicore/matreq/pkg/matreq/extract"
	"github.com/cognicore/matreq/pkg/matreq/internalerr"
	"github.com/cognicore/matreq/pkg/matreq/lang"
	"github.com/cognicore/matreq/pkg/matreq/lexicon"
	"github.com/cognicore/matreq/pkg/matreq/reqid"
	"github.com/cognicore/matreq/pkg/matreq/request"
	"github.com/cognicore/matreq/pkg/matreq/resolve"
	"github.com/cognicore/matreq/pkg/matreq/stock"
)

// DefaultReorderFraction is the share of available stock that must remain
// after an issue when the snapshot sets no reorder level.
const DefaultReorderFraction = 0.2

// transferType is the request type that moves stock between departments.
const transferType = "transfer"

// Engine is the material request engine facade. It holds only read-only
// tables and is safe for concurrent use.
type Engine struct {
	tables   *lexicon.Tables
	pipeline *extract.Pipeline
	resolver *resolve.Resolver
	composer *compose.Composer
	ids      *reqid.Generator
	inv      stock.Source
	reorder  decimal.Decimal
	log      *zap.Logger
}

// Options configures an Engine. Zero values select the built-in tables and
// templates, a fresh ID generator and a no-op logger.
type Options struct {
	Tables          *lexicon.Tables
	Composer        *compose.Composer
	IDs             *reqid.Generator
	FuzzyThreshold  float64
	ReorderFraction float64
	Inventory       stock.Source // used by ProcessRequest
	Logger          *zap.Logger
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	tables := opts.Tables
	if tables == nil {
		t, err := lexicon.Default()
		if err != nil {
			return nil, fmt.Errorf("load tables: %w", err)
		}
		tables = t
	}
	composer := opts.Composer
	if composer == nil {
		c, err := compose.Default()
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		composer = c
	}
	ids := opts.IDs
	if ids == nil {
		ids = reqid.New("")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	fraction := opts.ReorderFraction
	if fraction < 0 || fraction >= 1 {
		return nil, fmt.Errorf("%w: reorder fraction %v outside [0, 1)", internalerr.ErrInvalidConfig, fraction)
	}
	if fraction == 0 {
		fraction = DefaultReorderFraction
	}

	return &Engine{
		tables:   tables,
		pipeline: extract.NewPipeline(tables),
		resolver: resolve.New(tables.Materials, opts.FuzzyThreshold),
		composer: composer,
		ids:      ids,
		inv:      opts.Inventory,
		reorder:  decimal.NewFromFloat(fraction),
		log:      log,
	}, nil
}

// Tables returns the lookup tables in use.
func (e *Engine) Tables() *lexicon.Tables {
	return e.tables
}

// ProcessRequest reads a fresh snapshot from the configured inventory source
// and processes text against it.
func (e *Engine) ProcessRequest(ctx context.Context, text, language string) (request.MaterialRequest, error) {
	if e.inv == nil {
		return request.MaterialRequest{}, fmt.Errorf("%w: no inventory source configured", internalerr.ErrInvalidArgument)
	}
	snap, err := e.inv.Snapshot(ctx)
	if err != nil {
		return request.MaterialRequest{}, fmt.Errorf("read inventory: %w", err)
	}
	if snap == nil {
		snap = stock.Snapshot{}
	}
	return e.Process(text, language, snap)
}

// Process interprets text in the declared language and validates it against
// snapshot. Apart from the request ID the result depends only on the inputs.
// Errors are returned for invalid arguments only; anything the message
// fails to say is reported as pending clarification.
func (e *Engine) Process(text, language string, snapshot stock.Snapshot) (request.MaterialRequest, error) {
	if !utf8.ValidString(text) {
		return request.MaterialRequest{}, fmt.Errorf("%w: text is not valid UTF-8", internalerr.ErrInvalidArgument)
	}
	if snapshot == nil {
		return request.MaterialRequest{}, fmt.Errorf("%w: nil inventory snapshot", internalerr.ErrInvalidArgument)
	}
	code, err := lang.Parse(language)
	if err != nil {
		return request.MaterialRequest{}, err
	}

	ex := e.pipeline.Process(text, code)
	deptKnown := ex.Department != extract.UnknownDepartment

	urgency := request.UrgencyNormal
	if ex.Urgent() {
		urgency = request.UrgencyUrgent
	}

	var notices []request.Notice
	var shortfall []request.Shortfall
	var items []request.MaterialLineItem
	var inputs []decision.Input
	for _, p := range e.parts(ex, code) {
		l := e.lineItem(p, snapshot, deptKnown)
		items = append(items, l.item)
		inputs = append(inputs, l.in)
		notices = append(notices, l.notices...)
		if l.shortfall != nil {
			shortfall = append(shortfall, *l.shortfall)
		}
	}

	outcome := decision.DecideAll(inputs)
	status := outcome.Status()
	if !deptKnown && status != decision.StatusPendingClarification {
		notices = append(notices, request.Notice{Code: request.NoticeDepartmentUnknown})
	}

	req := request.MaterialRequest{
		RequestingDepartment: ex.Department,
		Materials:            items,
		Urgency:              urgency,
		Status:               status,
		Validation: request.ValidationResult{
			Warnings:    []string{},
			MissingInfo: []string{},
			Notices:     notices,
			Shortfall:   shortfall,
		},
		Language:      code,
		RequestType:   ex.RequestType,
		Purpose:       ex.Purpose,
		LinkedSKU:     ex.SKU,
		Approval:      request.ApprovalFor(urgency, status),
		TablesVersion: e.tables.Version,
		Outcome:       outcome,
	}
	if ex.RequestType == transferType {
		req.SourceLocation = ex.Source
	}
	if ex.Reference != nil {
		ref := ex.Reference.ID
		req.OrderReference = &ref
	}
	for _, f := range req.Missing() {
		req.Validation.MissingInfo = append(req.Validation.MissingInfo, string(f))
	}
	e.composer.Populate(&req, code)
	req.RequestID = e.ids.Next()

	e.log.Debug("request processed",
		zap.String("request_id", req.RequestID),
		zap.String("language", code.String()),
		zap.String("status", string(status)),
		zap.String("department", req.RequestingDepartment),
		zap.Int("items", len(items)),
		zap.Int("notices", len(notices)),
	)
	return req, nil
}

// GenerateResponse renders the reply for req in language. An unsupported
// language falls back to English.
func (e *Engine) GenerateResponse(req request.MaterialRequest, language string) string {
	code, err := lang.Parse(language)
	if err != nil {
		e.log.Debug("response language unsupported, using English", zap.String("language", language))
		code = lang.English
	}
	return e.composer.Summary(req, code)
}

// part is one material phrase with the quantity that belongs to it.
type part struct {
	res resolve.Resolution
	qty *extract.Quantity
}

// parts resolves the materials in ex. A message split by conjunctions into
// two or more parts that each name a material, or carry a quantity, becomes
// a multi-item request; anything else is one item.
func (e *Engine) parts(ex extract.Extraction, code lang.Code) []part {
	exact, fuzzy := ex.ExactMask(), ex.FuzzyMask()

	if len(ex.Segments) > 1 {
		var multi []part
		resolved := 0
		for _, seg := range ex.Segments {
			res := e.resolver.Resolve(ex.Tokens, code, extract.Within(exact, seg.Span), extract.Within(fuzzy, seg.Span))
			if res.Resolved() {
				resolved++
			} else if seg.Quantity == nil {
				continue
			}
			multi = append(multi, part{res: res, qty: seg.Quantity})
		}
		if resolved > 1 {
			return multi
		}
	}

	return []part{{res: e.resolver.Resolve(ex.Tokens, code, exact, fuzzy), qty: ex.Quantity}}
}

// line is one evaluated line item with what it contributes to validation.
type line struct {
	item      request.MaterialLineItem
	in        decision.Input
	notices   []request.Notice
	shortfall *request.Shortfall
}

func (e *Engine) lineItem(p part, snap stock.Snapshot, deptKnown bool) line {
	res := p.res
	item := request.MaterialLineItem{
		Name:         res.Name,
		MaterialCode: res.Code,
		Resolution:   string(res.Tier),
		RequestedQty: decimal.Zero,
		AvailableQty: decimal.Zero,
	}
	in := decision.Input{
		MaterialResolved:   res.Resolved(),
		QuantityPresent:    p.qty != nil,
		DepartmentResolved: deptKnown,
	}
	if p.qty != nil {
		item.RequestedQty = p.qty.Value
		item.UOM = p.qty.Unit
		in.Requested = p.qty.Value
	}

	var notices []request.Notice
	switch res.Tier {
	case resolve.TierFuzzy:
		item.RawPhrase = res.Phrase
		notices = append(notices, request.Notice{Code: request.NoticeFuzzyMatch, Args: []string{res.Phrase, res.Name}})
	case resolve.TierUnresolved:
		item.RawPhrase = res.Phrase
		if res.Phrase != "" {
			notices = append(notices, request.Notice{Code: request.NoticeUnresolvedMaterial, Args: []string{res.Phrase}})
		}
	}
	if p.qty != nil {
		if u, ok := e.tables.Units.Entry(p.qty.Unit); ok && u.Ceiling > 0 && p.qty.Value.GreaterThan(decimal.NewFromFloat(u.Ceiling)) {
			notices = append(notices, request.Notice{Code: request.NoticeQuantityHigh, Args: []string{p.qty.Value.String(), p.qty.Unit}})
		}
	}

	if !res.Resolved() {
		e.log.Debug("material unresolved", zap.String("phrase", res.Phrase))
		return line{item: item, in: in, notices: notices}
	}

	a := stock.Check(snap, res.Name, item.RequestedQty, item.UOM)
	item.AvailableQty = a.Available
	item.StockLocation = a.Location
	if item.MaterialCode == "" {
		item.MaterialCode = a.Code
	}
	if item.UOM == "" {
		item.UOM = a.StockUnit
	}
	in.Shortage = a.Shortage()

	switch {
	case !a.Found:
		notices = append(notices, request.Notice{Code: request.NoticeNotInInventory, Args: []string{res.Name}})
	case a.UnitMismatch:
		notices = append(notices, request.Notice{Code: request.NoticeUnitMismatch, Args: []string{res.Name, a.StockUnit, a.Unit}})
	case p.qty != nil && e.belowReorder(a):
		notices = append(notices, request.Notice{Code: request.NoticeBelowReorderLevel, Args: []string{res.Name}})
	}

	var short *request.Shortfall
	if a.Found && !a.UnitMismatch && a.Shortage().IsPositive() {
		short = &request.Shortfall{
			Material:  res.Name,
			Required:  a.Requested,
			Available: a.Available,
			Shortage:  a.Shortage(),
			Unit:      item.UOM,
		}
	}

	e.log.Debug("material resolved",
		zap.String("material", res.Name),
		zap.String("tier", string(res.Tier)),
		zap.Float64("score", res.Score),
		zap.Bool("in_stock", a.Found),
		zap.String("shortage", a.Shortage().String()),
	)
	return line{item: item, in: in, notices: notices, shortfall: short}
}

// belowReorder reports whether issuing a fully covered request leaves less
// than the reorder level in stock.
func (e *Engine) belowReorder(a stock.Availability) bool {
	if a.Available.LessThan(a.Requested) || a.Requested.IsZero() {
		return false
	}
	level := a.ReorderLevel
	if !level.IsPositive() {
		level = a.Available.Mul(e.reorder)
	}
	return a.Remaining().LessThan(level)
}

// Supported returns the languages the engine accepts, as strings.
func Supported() []string {
	codes := lang.Supported()
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.String()
	}
	return out
}

// IsSupported reports whether language is accepted by Process.
func IsSupported(language string) bool {
	_, err := lang.Parse(strings.TrimSpace(language))
	return err == nil
}
