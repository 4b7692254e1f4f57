package crawler

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/sunnyzhifei/web-reader-ai/internal/identity"
)

// entry is a pending visit: a URL with its discovery depth and the
// admission index that fixes its position in discovery order.
type entry struct {
	url   string
	depth int
	index int
}

// frontier owns the visited-identity set and the page budget. Admission
// is the sole gate: an identity is admitted at most once, and the total
// number of admissions never exceeds the budget.
type frontier struct {
	mu       sync.Mutex
	seen     *bloom.BloomFilter
	visited  map[identity.Identity]bool
	admitted int
	maxPages int
}

func newFrontier(maxPages int) *frontier {
	return &frontier{
		seen:     bloom.NewWithEstimates(uint(maxPages*8), 0.01),
		visited:  make(map[identity.Identity]bool),
		maxPages: maxPages,
	}
}

// admit reserves a slot for the identity. Returns the admission index
// and true if the identity was new and the budget allows it. The exact
// set is authoritative; the bloom filter only short-circuits the
// common already-seen case.
func (f *frontier) admit(id identity.Identity) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.admitted >= f.maxPages {
		return 0, false
	}
	// A bloom miss is definitely new; on a hit the map decides.
	if f.seen.Test([]byte(id)) && f.visited[id] {
		return 0, false
	}

	f.seen.Add([]byte(id))
	f.visited[id] = true
	index := f.admitted
	f.admitted++
	return index, true
}

// admittedCount returns how many entries have ever been admitted.
func (f *frontier) admittedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admitted
}
