package store

import (
	"context"
	"sync"

	"votesmart/internal/registry"
	"votesmart/pkg/platform/sentinel"
)

// orderedTable keeps keys and values in parallel slices so snapshots expose
// insertion order, with an index map for O(1) point lookups. Overwrites
// keep the row's original position.
type orderedTable[V any] struct {
	ids    []uint64
	values []V
	index  map[uint64]int
}

func newOrderedTable[V any]() *orderedTable[V] {
	return &orderedTable[V]{index: make(map[uint64]int)}
}

func (t *orderedTable[V]) put(id uint64, value V) {
	if i, ok := t.index[id]; ok {
		t.values[i] = value
		return
	}
	t.index[id] = len(t.ids)
	t.ids = append(t.ids, id)
	t.values = append(t.values, value)
}

func (t *orderedTable[V]) get(id uint64) (V, bool) {
	if i, ok := t.index[id]; ok {
		return t.values[i], true
	}
	var zero V
	return zero, false
}

func (t *orderedTable[V]) snapshot() registry.Table[V] {
	return registry.Table[V]{
		IDs:    append([]uint64(nil), t.ids...),
		Values: append([]V(nil), t.values...),
	}
}

// Memory is the in-memory registry store used by unit tests and local runs
// without a database.
type Memory struct {
	mu              sync.RWMutex
	master          string
	masterSet       bool
	campaigns       *orderedTable[string]
	parties         *orderedTable[string]
	regions         *orderedTable[registry.Region]
	districts       *orderedTable[registry.District]
	candidates      *orderedTable[registry.Candidate]
	recommendations map[registry.Key]uint64
}

var _ registry.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		campaigns:       newOrderedTable[string](),
		parties:         newOrderedTable[string](),
		regions:         newOrderedTable[registry.Region](),
		districts:       newOrderedTable[registry.District](),
		candidates:      newOrderedTable[registry.Candidate](),
		recommendations: make(map[registry.Key]uint64),
	}
}

func (s *Memory) MasterAccountID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.masterSet {
		return "", sentinel.ErrNotFound
	}
	return s.master, nil
}

func (s *Memory) SetMasterAccountID(_ context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.master = account
	s.masterSet = true
	return nil
}

func (s *Memory) EnsureMasterAccountID(_ context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.masterSet {
		return nil
	}
	s.master = account
	s.masterSet = true
	return nil
}

func (s *Memory) PutCampaign(_ context.Context, id uint64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns.put(id, title)
	return nil
}

func (s *Memory) Campaigns(_ context.Context) (registry.Table[string], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.campaigns.snapshot(), nil
}

func (s *Memory) PutParty(_ context.Context, id uint64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parties.put(id, title)
	return nil
}

func (s *Memory) Parties(_ context.Context) (registry.Table[string], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parties.snapshot(), nil
}

func (s *Memory) Party(_ context.Context, id uint64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	title, ok := s.parties.get(id)
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return title, nil
}

func (s *Memory) PutRegion(_ context.Context, id uint64, region registry.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions.put(id, region)
	return nil
}

func (s *Memory) Regions(_ context.Context) (registry.Table[registry.Region], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.regions.snapshot(), nil
}

func (s *Memory) PutDistrict(_ context.Context, id uint64, district registry.District) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.districts.put(id, district)
	return nil
}

func (s *Memory) Districts(_ context.Context) (registry.Table[registry.District], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.districts.snapshot(), nil
}

func (s *Memory) PutCandidate(_ context.Context, id uint64, candidate registry.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates.put(id, candidate)
	return nil
}

func (s *Memory) Candidates(_ context.Context) (registry.Table[registry.Candidate], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candidates.snapshot(), nil
}

func (s *Memory) Candidate(_ context.Context, id uint64) (registry.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates.get(id)
	if !ok {
		return registry.Candidate{}, sentinel.ErrNotFound
	}
	return candidate, nil
}

func (s *Memory) PutRecommendation(_ context.Context, key registry.Key, candidateID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations[key] = candidateID
	return nil
}

func (s *Memory) RecommendationCandidate(_ context.Context, key registry.Key) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidateID, ok := s.recommendations[key]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return candidateID, nil
}

func (s *Memory) Ping(_ context.Context) error {
	return nil
}
