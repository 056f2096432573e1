package reqid

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestNextPrefixAndOrder(t *testing.T) {
	g := New("")
	prev := g.Next()
	if !strings.HasPrefix(prev, DefaultPrefix) {
		t.Fatalf("expected %s prefix, got %s", DefaultPrefix, prev)
	}
	for i := 0; i < 1000; i++ {
		id := g.Next()
		if id <= prev {
			t.Fatalf("IDs not strictly increasing: %s then %s", prev, id)
		}
		prev = id
	}
}

func TestCustomPrefix(t *testing.T) {
	if id := New("REQ-").Next(); !strings.HasPrefix(id, "REQ-") {
		t.Errorf("expected custom prefix, got %s", id)
	}
}

func TestConcurrentUnique(t *testing.T) {
	g := New("")
	const workers, perWorker = 16, 500

	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, g.Next())
			}
			// each goroutine observes its own IDs in increasing order
			if !sort.StringsAreSorted(local) {
				t.Error("IDs from one goroutine are out of order")
			}
			mu.Lock()
			for _, id := range local {
				if seen[id] {
					t.Errorf("duplicate ID %s", id)
				}
				seen[id] = true
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != workers*perWorker {
		t.Errorf("expected %d unique IDs, got %d", workers*perWorker, len(seen))
	}
}

func TestClockGoingBackwards(t *testing.T) {
	g := New("")
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	clock := base
	g.now = func() time.Time { return clock }

	first := g.Next()
	clock = base.Add(-time.Minute)
	second := g.Next()
	if second <= first {
		t.Fatalf("ID went backwards with the clock: %s then %s", first, second)
	}

	u, err := ulid.ParseStrict(strings.TrimPrefix(second, DefaultPrefix))
	if err != nil {
		t.Fatalf("ParseStrict: %v", err)
	}
	if ts := ulid.Time(u.Time()); !ts.Equal(base) {
		t.Errorf("timestamp should stay at %v, got %v", base, ts)
	}
}
