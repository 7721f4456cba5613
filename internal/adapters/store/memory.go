package store

import (
	"context"
	"sync"
	"time"

	"github.com/rippleeffect/charity-service/internal/domain"
	"github.com/rippleeffect/charity-service/internal/ports"
)

// MemoryStore keeps profiles and the directory in process memory. A single
// mutex serializes every mutation, which makes CommitInterest atomic.
type MemoryStore struct {
	mu        sync.RWMutex
	profiles  map[string]*domain.UserProfile
	charities map[string]domain.CharityRecord
	order     []string // directory insertion order
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:  make(map[string]*domain.UserProfile),
		charities: make(map[string]domain.CharityRecord),
		now:       time.Now,
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, userID string, fn ports.ProfileUpdate) (*domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.loadLocked(userID)
	if err := fn(p); err != nil {
		return nil, err
	}
	s.saveLocked(p)
	return p.Clone(), nil
}

func (s *MemoryStore) FindCharity(ctx context.Context, key string) (*domain.CharityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.charities[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListCharities(ctx context.Context) ([]domain.CharityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CharityRecord, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.charities[k])
	}
	return out, nil
}

func (s *MemoryStore) CommitInterest(ctx context.Context, userID, key string, fn ports.InterestCommit) (*domain.CharityRecord, *domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.loadLocked(userID)
	var existing *domain.CharityRecord
	if c, ok := s.charities[key]; ok {
		existing = &c
	}

	rec, err := fn(p, existing)
	if err != nil {
		return nil, nil, err
	}
	if existing == nil && rec != nil {
		rec.Key = key
		s.charities[key] = *rec
		s.order = append(s.order, key)
	}
	s.saveLocked(p)

	var out *domain.CharityRecord
	if rec != nil {
		c := *rec
		out = &c
	}
	return out, p.Clone(), nil
}

// loadLocked returns a working copy of the stored profile or a fresh one.
func (s *MemoryStore) loadLocked(userID string) *domain.UserProfile {
	if p, ok := s.profiles[userID]; ok {
		return p.Clone()
	}
	return domain.NewUserProfile(userID)
}

func (s *MemoryStore) saveLocked(p *domain.UserProfile) {
	p.Version++
	p.UpdatedAt = s.now().UTC()
	s.profiles[p.UserID] = p.Clone()
}
