package guests

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/partyinvite/backend/internal/models"
	"github.com/partyinvite/backend/pkg/database"
)

// MemoryStore is an in-process Store for local development (DATABASE=memory://) and tests.
// It enforces the same guest reference rule the song_suggestions foreign key does.
type MemoryStore struct {
	mu     sync.RWMutex
	guests map[string]models.Guest
	songs  []models.SongSuggestion
	nextID int64
	seeds  []database.SeedGuest
	now    func() time.Time
}

// NewMemoryStore creates an empty store. EnsureSchema seeds it with seeds (nil = defaults).
func NewMemoryStore(seeds []database.SeedGuest) *MemoryStore {
	if seeds == nil {
		seeds = database.DefaultSeedGuests
	}
	return &MemoryStore{
		guests: make(map[string]models.Guest),
		seeds:  seeds,
		now:    time.Now,
	}
}

// SetClock replaces the created_at time source.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// PutGuest inserts or replaces a guest row.
func (m *MemoryStore) PutGuest(g models.Guest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guests[g.ID] = cloneGuest(g)
}

// EnsureSchema seeds the starter guests when no guest exists.
func (m *MemoryStore) EnsureSchema(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.guests) > 0 {
		return nil
	}
	for _, s := range m.seeds {
		m.guests[s.ID] = models.Guest{ID: s.ID, Name: s.Name}
	}
	return nil
}

// CheckConnectivity always reports a connected store.
func (m *MemoryStore) CheckConnectivity(context.Context) database.ConnectionStatus {
	now := m.now()
	return database.ConnectionStatus{Connected: true, Timestamp: &now}
}

func (m *MemoryStore) ListGuests(context.Context) ([]models.Guest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]models.Guest, 0, len(m.guests))
	for _, g := range m.guests {
		list = append(list, cloneGuest(g))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *MemoryStore) ListSongSuggestions(context.Context) ([]models.SongSuggestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedSongs(func(models.SongSuggestion) bool { return true }), nil
}

func (m *MemoryStore) GetGuest(_ context.Context, id string) (*models.Guest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.guests[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneGuest(g)
	return &out, nil
}

func (m *MemoryStore) ListSongsByGuest(_ context.Context, guestID string) ([]models.SongSuggestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedSongs(func(s models.SongSuggestion) bool { return s.GuestID == guestID }), nil
}

func (m *MemoryStore) UpdateRSVP(_ context.Context, id string, rsvp models.RSVP) (*models.Guest, error) {
	return m.update(id, func(g *models.Guest) { g.RSVP = &rsvp })
}

func (m *MemoryStore) UpdateDrinkPreference(_ context.Context, id, drink string) (*models.Guest, error) {
	return m.update(id, func(g *models.Guest) { g.DrinkPreference = &drink })
}

func (m *MemoryStore) InsertSongSuggestion(_ context.Context, s *models.SongSuggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.guests[s.GuestID]; !ok {
		return ErrNotFound
	}
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = m.now()
	m.songs = append(m.songs, *s)
	return nil
}

func (m *MemoryStore) update(id string, apply func(*models.Guest)) (*models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guests[id]
	if !ok {
		return nil, ErrNotFound
	}
	g = cloneGuest(g)
	apply(&g)
	m.guests[id] = g
	out := cloneGuest(g)
	return &out, nil
}

// sortedSongs orders by created_at descending, then id ascending. Caller holds the lock.
func (m *MemoryStore) sortedSongs(keep func(models.SongSuggestion) bool) []models.SongSuggestion {
	list := make([]models.SongSuggestion, 0)
	for _, s := range m.songs {
		if keep(s) {
			list = append(list, s)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func cloneGuest(g models.Guest) models.Guest {
	if g.RSVP != nil {
		r := *g.RSVP
		g.RSVP = &r
	}
	if g.DrinkPreference != nil {
		d := *g.DrinkPreference
		g.DrinkPreference = &d
	}
	return g
}
