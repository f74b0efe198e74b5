package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"rps_link/internal/domain"
)

type guestEntry struct {
	gameID string
	seq    int
}

// MemoryStore keeps everything in process. Values are cloned on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	games      map[string]*domain.Game
	guestGames map[string][]guestEntry
	seq        int
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]domain.User),
		games:      make(map[string]*domain.Game),
		guestGames: make(map[string][]guestEntry),
		now:        time.Now,
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) RenameUser(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.DisplayName = name
	s.users[id] = u
	return nil
}

func (s *MemoryStore) CreateGame(ctx context.Context, g *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *MemoryStore) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g.Clone(), nil
}

func (s *MemoryStore) AppendPlay(ctx context.Context, p *domain.Play) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[p.GameID]
	if !ok {
		return ErrNotFound
	}
	if g.Archived {
		return ErrPlayRejected
	}
	for _, existing := range g.Plays {
		if existing.GuestID == p.GuestID {
			return ErrDuplicatePlay
		}
	}
	if g.Mode == domain.GameModeSingle && len(g.Plays) > 0 {
		return ErrPlayRejected
	}

	g.Plays = append(g.Plays, *p)
	return nil
}

func (s *MemoryStore) SetArchived(ctx context.Context, gameID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return false, ErrNotFound
	}
	if g.Archived {
		return false, nil
	}
	g.Archived = true
	g.ArchivedAt = &at
	return true, nil
}

func (s *MemoryStore) ListHostGames(ctx context.Context, hostID string, limit int) ([]*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []*domain.Game
	for _, g := range s.games {
		if g.HostID == hostID {
			res = append(res, g.Clone())
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})

	if limit = normalizeLimit(limit); len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *MemoryStore) ListGuestGames(ctx context.Context, guestID string, limit int) ([]*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := append([]guestEntry(nil), s.guestGames[guestID]...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq > entries[j].seq
	})

	var res []*domain.Game
	for _, e := range entries {
		if g, ok := s.games[e.gameID]; ok {
			res = append(res, g.Clone())
		}
	}

	if limit = normalizeLimit(limit); len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *MemoryStore) AddGuestGame(ctx context.Context, guestID, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.guestGames[guestID] {
		if e.gameID == gameID {
			return nil
		}
	}
	s.seq++
	s.guestGames[guestID] = append(s.guestGames[guestID], guestEntry{
		gameID: gameID,
		seq:    s.seq,
	})
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
