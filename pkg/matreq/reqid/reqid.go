// Package reqid generates material request identifiers.
package reqid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultPrefix starts every request ID.
const DefaultPrefix = "MR-"

// Generator issues IDs of the form MR-<ULID>. IDs from one generator are
// unique and strictly increasing, also under concurrent use: the timestamp
// never moves backwards even if the wall clock does, and IDs within one
// millisecond are ordered by monotonic entropy.
type Generator struct {
	mu      sync.Mutex
	prefix  string
	entropy *ulid.MonotonicEntropy
	last    uint64
	now     func() time.Time
}

// New creates a generator. An empty prefix selects DefaultPrefix.
func New(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{
		prefix:  prefix,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Next returns a new ID.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(g.now())
	if ms < g.last {
		ms = g.last
	}
	for {
		id, err := ulid.New(ms, g.entropy)
		if err == nil {
			g.last = ms
			return g.prefix + id.String()
		}
		if !errors.Is(err, ulid.ErrMonotonicOverflow) {
			panic(fmt.Errorf("reqid: %w", err))
		}
		// entropy for this millisecond is exhausted
		ms++
	}
}
