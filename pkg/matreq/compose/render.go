package compose

import (
	"strings"

	"github.com/cognicore/matreq/pkg/matreq/decision"
	"github.com/cognicore/matreq/pkg/matreq/lang"
	"github.com/cognicore/matreq/pkg/matreq/request"
)

// Warning renders one notice.
func (c *Composer) Warning(code lang.Code, n request.Notice) string {
	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		args[i] = a
	}
	return c.Text(code, "warning."+string(n.Code), args...)
}

// NextSteps renders the follow-up actions for the request's status.
func (c *Composer) NextSteps(code lang.Code, req request.MaterialRequest) []string {
	keys := c.steps[req.Status]
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if req.Status == decision.StatusPendingClarification {
			out = append(out, c.Text(code, key, c.fieldList(code, req.Missing())))
			continue
		}
		out = append(out, c.Text(code, key))
	}
	return out
}

// Populate fills the language-dependent parts of req: the warnings rendered
// from its notices and the next steps for its status.
func (c *Composer) Populate(req *request.MaterialRequest, code lang.Code) {
	warnings := make([]string, 0, len(req.Validation.Notices))
	for _, n := range req.Validation.Notices {
		warnings = append(warnings, c.Warning(code, n))
	}
	req.Validation.Warnings = warnings
	req.NextSteps = c.NextSteps(code, *req)
}

// Summary renders the human-readable reply for req.
func (c *Composer) Summary(req request.MaterialRequest, code lang.Code) string {
	var b strings.Builder
	line := func(key string, args ...any) {
		b.WriteString(c.Text(code, key, args...))
		b.WriteByte('\n')
	}

	line("status." + string(req.Status) + ".title")
	b.WriteByte('\n')
	if req.Urgency == request.UrgencyUrgent {
		line("label.urgent")
	}
	line("label.request_id", req.RequestID)
	if key := "type." + req.RequestType; c.Has(key) {
		line("label.type", c.Text(code, key))
	}
	dept := req.RequestingDepartment
	if dept == "" || dept == request.UnknownDepartment {
		dept = c.Text(code, "value.unknown")
	}
	line("label.department", dept)
	if req.SourceLocation != "" {
		line("label.source", req.SourceLocation)
	}
	if req.OrderReference != nil {
		line("label.order", *req.OrderReference)
	}
	if req.LinkedSKU != "" {
		line("label.sku", req.LinkedSKU)
	}
	if req.Purpose != "" {
		line("label.purpose", req.Purpose)
	}

	for _, item := range req.Materials {
		b.WriteByte('\n')
		c.writeItem(&b, code, item)
	}

	switch req.Approval.Level {
	case request.ApprovalManager, request.ApprovalProcurement:
		b.WriteByte('\n')
		line("approval." + req.Approval.Level)
	}

	warnings := req.Validation.Warnings
	if len(warnings) == 0 && len(req.Validation.Notices) > 0 {
		for _, n := range req.Validation.Notices {
			warnings = append(warnings, c.Warning(code, n))
		}
	}
	if len(warnings) > 0 {
		b.WriteByte('\n')
		line("heading.warnings")
		for _, w := range warnings {
			b.WriteString("• " + w + "\n")
		}
	}

	if missing := req.Missing(); len(missing) > 0 {
		b.WriteByte('\n')
		line("heading.missing", c.fieldList(code, missing))
	}

	steps := req.NextSteps
	if len(steps) == 0 {
		steps = c.NextSteps(code, req)
	}
	if len(steps) > 0 {
		b.WriteByte('\n')
		line("heading.next_steps")
		for _, s := range steps {
			b.WriteString("• " + s + "\n")
		}
	}

	if req.Status == decision.StatusPendingClarification {
		b.WriteByte('\n')
		line("footer.pending")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Composer) writeItem(b *strings.Builder, code lang.Code, item request.MaterialLineItem) {
	line := func(key string, args ...any) {
		b.WriteString(c.Text(code, key, args...))
		b.WriteByte('\n')
	}

	resolved := item.Resolution != "unresolved" && item.Name != "unresolved"
	name := item.Name
	switch {
	case !resolved && item.RawPhrase != "":
		name = "\"" + item.RawPhrase + "\" (" + c.Text(code, "value.unresolved") + ")"
	case !resolved:
		name = c.Text(code, "value.unresolved")
	case item.MaterialCode != "":
		name += " (" + item.MaterialCode + ")"
	}
	line("label.material", name)

	if !item.RequestedQty.IsPositive() {
		return
	}
	line("label.requested", item.RequestedQty.String(), item.UOM)
	if !resolved {
		return
	}
	line("label.available", item.AvailableQty.String(), item.UOM)
	if short := item.ShortageQty(); short.IsPositive() {
		line("label.shortage", short.String(), item.UOM)
	}
	if item.StockLocation != "" {
		line("label.location", item.StockLocation)
	}
}

func (c *Composer) fieldList(code lang.Code, fields []decision.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = c.Text(code, "field."+string(f))
	}
	return strings.Join(names, c.Text(code, "list.separator"))
}
