package lease

import (
	"context"
	"fmt"
	"sync"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/intake"
)

// MemoryLocker is the single-instance fallback used when no Redis address is
// configured.
type MemoryLocker struct {
	mu    sync.Mutex
	taken map[string]struct{}
}

// NewMemoryLocker builds an in-process case locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{taken: make(map[string]struct{})}
}

// Acquire takes the per-case lock, failing immediately when it is held.
func (l *MemoryLocker) Acquire(ctx context.Context, caseID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.taken[caseID]; held {
		return nil, fmt.Errorf("case %s: %w", caseID, intake.ErrCaseBusy)
	}
	l.taken[caseID] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.taken, caseID)
			l.mu.Unlock()
		})
	}
	return release, nil
}
