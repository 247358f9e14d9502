package guests

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/partyinvite/backend/internal/models"
	"github.com/partyinvite/backend/pkg/cache"
)

// Cache keys for read-through results.
const (
	KeyAllData = "all-data"
)

// GuestKey is the cache key of a single guest.
func GuestKey(id string) string { return "guest:" + id }

// SongsKey is the cache key of a guest's song list.
func SongsKey(id string) string { return "songs:" + id }

// Service is the data access layer: typed reads through the cache, writes straight to the Store.
// Every successful write invalidates the cached reads that can observe the changed row.
type Service struct {
	store  Store
	loader *cache.Loader
	logger *zap.Logger
}

// NewService creates the data access layer.
func NewService(store Store, loader *cache.Loader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, loader: loader, logger: logger}
}

// GetAllGuestsAndSongs returns every guest and every song suggestion.
func (s *Service) GetAllGuestsAndSongs(ctx context.Context) (*models.GuestData, error) {
	data, err := cache.Load(ctx, s.loader, KeyAllData, func(ctx context.Context) (*models.GuestData, error) {
		s.logger.Debug("fetching all data")
		guests, err := s.store.ListGuests(ctx)
		if err != nil {
			return nil, err
		}
		songs, err := s.store.ListSongSuggestions(ctx)
		if err != nil {
			return nil, err
		}
		s.logger.Info("retrieved all data", zap.Int("guests", len(guests)), zap.Int("song_suggestions", len(songs)))
		return &models.GuestData{Guests: guests, SongSuggestions: songs}, nil
	})
	if err != nil {
		s.logger.Error("fetch all data", zap.Error(err))
		return nil, err
	}
	return data, nil
}

// GetGuestByID returns a guest or ErrNotFound.
func (s *Service) GetGuestByID(ctx context.Context, id string) (*models.Guest, error) {
	g, err := cache.Load(ctx, s.loader, GuestKey(id), func(ctx context.Context) (*models.Guest, error) {
		return s.store.GetGuest(ctx, id)
	})
	if err != nil {
		s.logFailure("fetch guest", id, err)
		return nil, err
	}
	return g, nil
}

// GetSongsByGuest returns a guest's suggestions, newest first.
func (s *Service) GetSongsByGuest(ctx context.Context, guestID string) ([]models.SongSuggestion, error) {
	songs, err := cache.Load(ctx, s.loader, SongsKey(guestID), func(ctx context.Context) ([]models.SongSuggestion, error) {
		return s.store.ListSongsByGuest(ctx, guestID)
	})
	if err != nil {
		s.logFailure("fetch song suggestions", guestID, err)
		return nil, err
	}
	s.logger.Debug("fetched song suggestions", zap.String("guest_id", guestID), zap.Int("count", len(songs)))
	return songs, nil
}

// UpdateRSVP overwrites the guest's answer. Any value may replace any other.
func (s *Service) UpdateRSVP(ctx context.Context, id string, answer models.RSVP) (*models.Guest, error) {
	g, err := s.store.UpdateRSVP(ctx, id, answer)
	if err != nil {
		s.logFailure("update rsvp", id, err)
		return nil, err
	}
	s.loader.Invalidate(ctx, KeyAllData, GuestKey(id))
	s.logger.Info("updated rsvp", zap.String("guest_id", id), zap.String("rsvp", string(answer)))
	return g, nil
}

// UpdateDrinkPreference overwrites the guest's drink preference.
func (s *Service) UpdateDrinkPreference(ctx context.Context, id, drink string) (*models.Guest, error) {
	g, err := s.store.UpdateDrinkPreference(ctx, id, drink)
	if err != nil {
		s.logFailure("update drink preference", id, err)
		return nil, err
	}
	s.loader.Invalidate(ctx, KeyAllData, GuestKey(id))
	s.logger.Info("updated drink preference", zap.String("guest_id", id), zap.String("drink_preference", drink))
	return g, nil
}

// AddSongSuggestion inserts a suggestion; the store assigns ID and CreatedAt.
func (s *Service) AddSongSuggestion(ctx context.Context, suggestion models.SongSuggestion) (*models.SongSuggestion, error) {
	if err := s.store.InsertSongSuggestion(ctx, &suggestion); err != nil {
		s.logFailure("add song suggestion", suggestion.GuestID, err)
		return nil, err
	}
	s.loader.Invalidate(ctx, KeyAllData, SongsKey(suggestion.GuestID))
	s.logger.Info("added song suggestion",
		zap.String("guest_id", suggestion.GuestID),
		zap.String("title", suggestion.Title),
		zap.Int64("id", suggestion.ID),
	)
	return &suggestion, nil
}

// ListGuestsUncached reads guest rows straight from the store, for diagnostics.
func (s *Service) ListGuestsUncached(ctx context.Context) ([]models.Guest, error) {
	return s.store.ListGuests(ctx)
}

func (s *Service) logFailure(op, guestID string, err error) {
	if errors.Is(err, ErrNotFound) {
		s.logger.Info(op+": no guest", zap.String("guest_id", guestID))
		return
	}
	s.logger.Error(op, zap.String("guest_id", guestID), zap.Error(err))
}
