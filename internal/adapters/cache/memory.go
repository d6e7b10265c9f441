package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bnema/gstin-gateway/internal/domain"
	"github.com/bnema/gstin-gateway/internal/ports"
)

const memoryCleanupPeriod = time.Minute

type memoryEntry struct {
	result    domain.VerificationResult
	expiresAt time.Time
}

// Memory is a process-local result cache. Entries are checked against the injected
// clock on read so expiry is exact even between janitor sweeps.
type Memory struct {
	c     *gocache.Cache
	clock ports.Clock
}

func NewMemory(clock ports.Clock) *Memory {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Memory{
		c:     gocache.New(gocache.NoExpiration, memoryCleanupPeriod),
		clock: clock,
	}
}

func (m *Memory) Get(_ context.Context, gstin string) (domain.VerificationResult, bool) {
	value, found := m.c.Get(gstin)
	if !found {
		return domain.VerificationResult{}, false
	}

	entry, ok := value.(memoryEntry)
	if !ok || !m.clock.Now().Before(entry.expiresAt) {
		return domain.VerificationResult{}, false
	}
	return entry.result, true
}

func (m *Memory) Set(_ context.Context, gstin string, result domain.VerificationResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.c.Set(gstin, memoryEntry{result: result, expiresAt: m.clock.Now().Add(ttl)}, ttl)
}

func (m *Memory) Len() int {
	return m.c.ItemCount()
}
