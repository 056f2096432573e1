package resolve

import (
	"strings"
	"unicode/utf8"

	"github.com/cognicore/matreq/pkg/matreq/lang"
	"github.com/cognicore/matreq/pkg/matreq/lexicon"
)

// Unresolved is the material name reported when nothing matched.
const Unresolved = "unresolved"

// DefaultThreshold is the minimum similarity for an approximate match.
// At 0.8 a six-letter word may carry one typo ("cottn") while "threaded"
// stays clear of "thread". Among candidates above the threshold the longest
// catalog alias wins, then the higher score, then the earlier position.
const DefaultThreshold = 0.8

// candidates shorter than this are never matched approximately
const minFuzzyRunes = 4

// Tier records how a material was resolved.
type Tier string

const (
	TierExact      Tier = "exact"
	TierFuzzy      Tier = "fuzzy"
	TierUnresolved Tier = "unresolved"
)

// Resolution is the outcome of resolving one material phrase.
type Resolution struct {
	Name   string
	Code   string
	Tier   Tier
	Score  float64
	Phrase string // operator's own words
	Alias  string // catalog surface form that matched
	Span   lexicon.Span
}

// Resolved reports whether a catalog material was found.
func (r Resolution) Resolved() bool {
	return r.Tier != TierUnresolved
}

// Resolver maps operator phrases onto the material catalog in three tiers:
// exact alias, approximate alias, unresolved.
type Resolver struct {
	catalog   *lexicon.Index
	phrases   []lexicon.Phrase
	threshold float64
}

// New creates a resolver over catalog. A threshold outside (0, 1] selects
// DefaultThreshold.
func New(catalog *lexicon.Index, threshold float64) *Resolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Resolver{
		catalog:   catalog,
		phrases:   catalog.Phrases(),
		threshold: threshold,
	}
}

// Threshold returns the similarity threshold in use.
func (r *Resolver) Threshold() float64 {
	return r.threshold
}

// Resolve finds the best material in tokens. exactMask hides tokens from the
// exact tier, fuzzyMask from the approximate tier.
func (r *Resolver) Resolve(tokens []string, prefer lang.Code, exactMask, fuzzyMask []bool) Resolution {
	if m, ok := r.catalog.Best(tokens, prefer, exactMask); ok {
		return Resolution{
			Name:   m.Canonical,
			Code:   r.code(m.Canonical),
			Tier:   TierExact,
			Score:  1,
			Phrase: strings.Join(tokens[m.Span.Start:m.Span.End], " "),
			Alias:  m.Alias,
			Span:   m.Span,
		}
	}
	if res, ok := r.fuzzy(tokens, fuzzyMask); ok {
		return res
	}
	span := longestRun(tokens, fuzzyMask)
	return Resolution{
		Name:   Unresolved,
		Tier:   TierUnresolved,
		Phrase: strings.Join(tokens[span.Start:span.End], " "),
		Span:   span,
	}
}

type fuzzyHit struct {
	phrase lexicon.Phrase
	text   string
	span   lexicon.Span
	score  float64
}

func (r *Resolver) fuzzy(tokens []string, mask []bool) (Resolution, bool) {
	var best fuzzyHit
	found := false
	maxLen := r.catalog.MaxLen()

	for start := range tokens {
		if masked(mask, start) {
			continue
		}
		for n := 1; n <= maxLen && start+n <= len(tokens); n++ {
			if masked(mask, start+n-1) {
				break
			}
			text := strings.Join(tokens[start:start+n], " ")
			runes := utf8.RuneCountInString(text)
			if runes < minFuzzyRunes || isNumeric(text) {
				continue
			}
			for _, p := range r.phrases {
				plen := utf8.RuneCountInString(p.Text)
				if plen < minFuzzyRunes {
					continue
				}
				// the length gap alone bounds the best possible score
				if 1-float64(absDiff(runes, plen))/float64(max(runes, plen)) < r.threshold {
					continue
				}
				score := Similarity(text, p.Text)
				if score < r.threshold {
					continue
				}
				hit := fuzzyHit{phrase: p, text: text, span: lexicon.Span{Start: start, End: start + n}, score: score}
				if !found || betterHit(hit, best) {
					best = hit
					found = true
				}
			}
		}
	}
	if !found {
		return Resolution{}, false
	}
	return Resolution{
		Name:   best.phrase.Canonical,
		Code:   r.code(best.phrase.Canonical),
		Tier:   TierFuzzy,
		Score:  best.score,
		Phrase: best.text,
		Alias:  best.phrase.Text,
		Span:   best.span,
	}, true
}

func betterHit(a, b fuzzyHit) bool {
	la, lb := utf8.RuneCountInString(a.phrase.Text), utf8.RuneCountInString(b.phrase.Text)
	if la != lb {
		return la > lb
	}
	if a.score != b.score {
		return a.score > b.score
	}
	if a.span.Start != b.span.Start {
		return a.span.Start < b.span.Start
	}
	return a.phrase.Order < b.phrase.Order
}

func (r *Resolver) code(canonical string) string {
	e, _ := r.catalog.Entry(canonical)
	return e.Code
}

// longestRun returns the longest run of unmasked tokens, the operator's best
// guess at a material phrase. The earliest run wins a tie.
func longestRun(tokens []string, mask []bool) lexicon.Span {
	var best, cur lexicon.Span
	for i := range tokens {
		if masked(mask, i) || isNumeric(tokens[i]) {
			cur = lexicon.Span{Start: i + 1, End: i + 1}
			continue
		}
		cur.End = i + 1
		if cur.Len() > best.Len() {
			best = cur
		}
	}
	return best
}

func isNumeric(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' && r != ' ' && r != '-' {
			return false
		}
	}
	return s != ""
}

func masked(mask []bool, i int) bool {
	return i < len(mask) && mask[i]
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
