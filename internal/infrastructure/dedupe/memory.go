package dedupe

import (
	"context"
	"sync"
	"time"
)

// MemoryMarkerStore is the single-process fallback used when no Redis
// address is configured. Expired markers are dropped lazily on access.
type MemoryMarkerStore struct {
	mu      sync.Mutex
	markers map[string]time.Time
	now     func() time.Time
}

func NewMemoryMarkerStore() *MemoryMarkerStore {
	return &MemoryMarkerStore{
		markers: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryMarkerStore) SeenOrMark(_ context.Context, orderID int64, refundID string) (bool, error) {
	key := markerKey(orderID, refundID)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.markers[key]; ok && now.Before(expiry) {
		return true, nil
	}

	for k, expiry := range s.markers {
		if !now.Before(expiry) {
			delete(s.markers, k)
		}
	}
	s.markers[key] = now.Add(refundMarkerTTL)
	return false, nil
}
