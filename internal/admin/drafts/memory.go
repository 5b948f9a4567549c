package drafts

import (
	"context"
	"sync"
	"time"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
)

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

// MemoryStore keeps drafts in process memory. Suitable for a single instance.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Key]memoryEntry
	locks   map[Key]time.Time
	ttl     time.Duration
	lockTTL time.Duration
	now     func() time.Time
}

// NewMemoryStore constructs a MemoryStore whose drafts expire after ttl of inactivity.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		entries: make(map[Key]memoryEntry),
		locks:   make(map[Key]time.Time),
		ttl:     ttl,
		lockTTL: defaultLockTTL,
		now:     time.Now,
	}
}

// Load returns a copy of the stored composer.
func (s *MemoryStore) Load(_ context.Context, key Key) (*products.Composer, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(entry.expires) {
		delete(s.entries, key)
		return nil, ErrNotFound
	}
	return decode(entry.raw)
}

// Save stores a snapshot of the composer and refreshes its expiry.
func (s *MemoryStore) Save(_ context.Context, key Key, c *products.Composer) error {
	if err := key.Validate(); err != nil {
		return err
	}
	raw, err := encode(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{raw: raw, expires: s.now().Add(s.ttl)}
	s.sweepLocked()
	return nil
}

// Delete discards a draft.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// DeleteSession discards every draft owned by session.
func (s *MemoryStore) DeleteSession(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if key.Session == session {
			delete(s.entries, key)
		}
	}
	return nil
}

// Acquire takes the submission lock for key.
func (s *MemoryStore) Acquire(_ context.Context, key Key) (func(), error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key
	if until, held := s.locks[k]; held && s.now().Before(until) {
		return nil, ErrBusy
	}
	until := s.now().Add(s.lockTTL)
	s.locks[k] = until

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.locks[k] == until {
				delete(s.locks, k)
			}
		})
	}, nil
}

func (s *MemoryStore) sweepLocked() {
	now := s.now()
	for k, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, k)
		}
	}
}

// Len reports how many drafts are held, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
