package extract

import (
	"github.com/cognicore/matreq/pkg/matreq/lang"
	"github.com/cognicore/matreq/pkg/matreq/lexicon"
	"github.com/cognicore/matreq/pkg/matreq/normalize"
	"github.com/cognicore/matreq/pkg/matreq/request"
)

// UnknownDepartment is reported when no department keyword matched.
const UnknownDepartment = request.UnknownDepartment

// DefaultRequestType applies when no request-type keyword matched.
const DefaultRequestType = "issue"

// Segment is one conjunction-delimited part of a request, with the first
// quantity found inside it.
type Segment struct {
	Span     lexicon.Span
	Quantity *Quantity
}

// Extraction is everything the extractors found in one message. Each
// extractor runs on the same normalized tokens and does not see the
// others' results.
type Extraction struct {
	Normalized  string
	Tokens      []string
	Quantity    *Quantity
	Department  string
	DeptSpan    *lexicon.Span
	Source      string
	SourceSpan  *lexicon.Span
	Urgency     []lexicon.Match
	Reference   *Reference
	RequestType string
	Purpose     string
	SKU         string
	Segments    []Segment

	conjunctions []lexicon.Match
	skus         []lexicon.Match
	fillers      []lexicon.Match
}

// Urgent reports whether any urgency keyword was present.
func (e Extraction) Urgent() bool {
	return len(e.Urgency) > 0
}

// ExactMask flags tokens already claimed by another extractor: quantities,
// the order reference, both departments, urgency keywords, conjunctions and
// filler words. Material matching must not use them.
func (e Extraction) ExactMask() []bool {
	mask := make([]bool, len(e.Tokens))
	if e.Quantity != nil {
		fill(mask, e.Quantity.Span)
	}
	for _, seg := range e.Segments {
		if seg.Quantity != nil {
			fill(mask, seg.Quantity.Span)
		}
	}
	if e.Reference != nil {
		fill(mask, e.Reference.Span)
	}
	for _, span := range []*lexicon.Span{e.DeptSpan, e.SourceSpan} {
		if span != nil {
			fill(mask, *span)
		}
	}
	for _, group := range [][]lexicon.Match{e.Urgency, e.conjunctions, e.fillers} {
		for _, m := range group {
			fill(mask, m.Span)
		}
	}
	return mask
}

// FuzzyMask is ExactMask plus SKU phrases. Garment names are too close to
// material names for approximate matching to tell apart.
func (e Extraction) FuzzyMask() []bool {
	mask := e.ExactMask()
	for _, m := range e.skus {
		fill(mask, m.Span)
	}
	return mask
}

// Within returns a copy of mask that additionally hides every token outside
// span.
func Within(mask []bool, span lexicon.Span) []bool {
	out := make([]bool, len(mask))
	for i := range out {
		out[i] = mask[i] || i < span.Start || i >= span.End
	}
	return out
}

func fill(mask []bool, s lexicon.Span) {
	for i := s.Start; i < s.End && i < len(mask); i++ {
		if i >= 0 {
			mask[i] = true
		}
	}
}

// Pipeline runs the normalizer once and then every extractor over the
// resulting tokens.
type Pipeline struct {
	tables *lexicon.Tables
}

// NewPipeline creates a pipeline over the given lookup tables.
func NewPipeline(tables *lexicon.Tables) *Pipeline {
	return &Pipeline{tables: tables}
}

// Process extracts request attributes from raw operator text. prefer is the
// declared language and only breaks ties between equally long aliases.
func (p *Pipeline) Process(text string, prefer lang.Code) Extraction {
	normalized := normalize.Text(text)
	tokens := normalize.Tokens(normalized)
	t := p.tables

	ex := Extraction{
		Normalized:  normalized,
		Tokens:      tokens,
		Department:  UnknownDepartment,
		RequestType: DefaultRequestType,
	}

	var refMask []bool
	if ref, ok := FindReference(tokens); ok {
		ex.Reference = &ref
		refMask = make([]bool, len(tokens))
		fill(refMask, ref.Span)
	}
	if q, ok := FindQuantity(tokens, t.Units, refMask); ok {
		ex.Quantity = &q
	}

	if m, ok := p.department(tokens, prefer); ok {
		ex.Department = m.Canonical
		span := m.Span
		ex.DeptSpan = &span
	}
	if m, ok := p.source(tokens); ok && m.Canonical != ex.Department {
		ex.Source = m.Canonical
		span := m.Span
		ex.SourceSpan = &span
	}
	ex.Urgency = t.Urgency.All(tokens, nil)

	if m, ok := t.RequestTypes.First(tokens, nil); ok {
		ex.RequestType = m.Canonical
	}
	if m, ok := t.Purposes.First(tokens, nil); ok {
		ex.Purpose = m.Canonical
	}
	ex.skus = t.SKUs.All(tokens, nil)
	if m, ok := t.SKUs.First(tokens, nil); ok {
		ex.SKU = m.Canonical
	}

	ex.conjunctions = t.Conjunctions.All(tokens, nil)
	ex.fillers = t.Fillers.All(tokens, nil)
	ex.Segments = segments(tokens, ex.conjunctions, t.Units, refMask)
	return ex
}

// department picks the requesting department. A department marked as the
// destination wins; otherwise the best unmarked one. A department named
// only as a source is not the requester.
func (p *Pipeline) department(tokens []string, prefer lang.Code) (lexicon.Match, bool) {
	t := p.tables
	all := t.Departments.All(tokens, nil)
	var mask []bool
	for _, m := range all {
		if t.Destination.Marks(tokens, m.Span) {
			return m, true
		}
		if t.Source.Marks(tokens, m.Span) {
			if mask == nil {
				mask = make([]bool, len(tokens))
			}
			fill(mask, m.Span)
		}
	}
	return t.Departments.Best(tokens, prefer, mask)
}

// source returns the first department marked as the origin of the material.
func (p *Pipeline) source(tokens []string) (lexicon.Match, bool) {
	t := p.tables
	for _, m := range t.Departments.All(tokens, nil) {
		if t.Source.Marks(tokens, m.Span) && !t.Destination.Marks(tokens, m.Span) {
			return m, true
		}
	}
	return lexicon.Match{}, false
}

// segments splits tokens at conjunctions. Empty parts are dropped.
func segments(tokens []string, conj []lexicon.Match, units *lexicon.Index, refMask []bool) []Segment {
	var out []Segment
	add := func(start, end int) {
		if start >= end {
			return
		}
		span := lexicon.Span{Start: start, End: end}
		seg := Segment{Span: span}
		var mask []bool
		if refMask != nil {
			mask = Within(refMask, span)
		} else {
			mask = Within(make([]bool, len(tokens)), span)
		}
		if q, ok := FindQuantity(tokens, units, mask); ok {
			seg.Quantity = &q
		}
		out = append(out, seg)
	}
	start := 0
	for _, c := range conj {
		add(start, c.Span.Start)
		start = c.Span.End
	}
	add(start, len(tokens))
	return out
}
