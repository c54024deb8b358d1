package sqlgen

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for newly inserted rows.
//
// The generator is injected rather than read from a global source so tests
// can pin ids and golden statements stay reproducible.
type IDGenerator interface {
	// Generate returns a new row identifier.
	Generate() string
}

// UUIDGenerator generates random UUIDv4 identifiers in the hyphenated
// textual form. Stateless, safe for concurrent use.
type UUIDGenerator struct{}

func (g UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// FixedGenerator hands out a preset id sequence, one per Generate call.
// Exhausting the sequence panics: a test that inserts more rows than it
// supplied ids for is misconfigured and should fail loudly, not reuse ids.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator over the given ids, returned in
// argument order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
