package session

import (
	"context"
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"paygate/internal/model"
)

// MemoryBackend is a process-local record backend shared by every
// MemoryStore. Suitable for single-node development and tests; records do
// not survive a restart.
type MemoryBackend struct {
	c *gocache.Cache
}

// NewMemoryBackend creates the shared in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{c: gocache.New(recordTTL, 10*recordTTL)}
}

// MemoryStore keeps one session record in the shared in-memory backend.
type MemoryStore struct {
	backend *MemoryBackend
	key     string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store scoped to one session ID.
func NewMemoryStore(b *MemoryBackend, sid string) *MemoryStore {
	return &MemoryStore{backend: b, key: sid}
}

// Save persists the token/profile pair as a single record.
func (s *MemoryStore) Save(ctx context.Context, token string, user model.User) error {
	raw, err := encodeRecord(token, user)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	s.backend.c.Set(s.key, raw, recordTTL)
	return nil
}

// Load returns the stored pair, or nothing. A corrupt record is deleted.
func (s *MemoryStore) Load(ctx context.Context) (string, *model.User, bool) {
	v, found := s.backend.c.Get(s.key)
	if !found {
		return "", nil, false
	}
	raw, isBytes := v.([]byte)
	if !isBytes {
		s.backend.c.Delete(s.key)
		return "", nil, false
	}
	token, user, ok := decodeRecord(raw)
	if !ok {
		s.backend.c.Delete(s.key)
		return "", nil, false
	}
	return token, user, true
}

// Clear removes the record; removing an absent record is fine.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.backend.c.Delete(s.key)
	return nil
}
