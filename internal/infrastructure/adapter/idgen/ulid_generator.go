package idgen

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

// ULIDGenerator issues monotonic ULIDs. IDs created within the same millisecond still sort in creation order.
type ULIDGenerator struct {
	mu           sync.Mutex
	entropy      *ulid.MonotonicEntropy
	timeProvider core.TimeProvider
}

var _ core.IDGenerator = (*ULIDGenerator)(nil)

// NewULIDGenerator creates a generator stamped by the given clock
func NewULIDGenerator(timeProvider core.TimeProvider) *ULIDGenerator {
	return &ULIDGenerator{
		entropy:      ulid.Monotonic(rand.Reader, 0),
		timeProvider: timeProvider,
	}
}

// NewID returns a new ULID string
func (g *ULIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.timeProvider.Now()), g.entropy).String()
}
