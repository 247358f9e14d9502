// Package actions is the only entry point for client-initiated mutations.
// Actions run with full server trust: there is no authentication, so anyone who
// knows a guest ID can act for that guest.
package actions

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/partyinvite/backend/internal/guests"
	"github.com/partyinvite/backend/internal/models"
	"github.com/partyinvite/backend/internal/views"
	"github.com/partyinvite/backend/pkg/database"
)

// DataAccess is the subset of guests.Service the actions forward to.
type DataAccess interface {
	UpdateRSVP(ctx context.Context, id string, answer models.RSVP) (*models.Guest, error)
	UpdateDrinkPreference(ctx context.Context, id, drink string) (*models.Guest, error)
	AddSongSuggestion(ctx context.Context, s models.SongSuggestion) (*models.SongSuggestion, error)
	GetSongsByGuest(ctx context.Context, guestID string) ([]models.SongSuggestion, error)
}

// ViewInvalidator drops cached page responses.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// Diagnostics creates the schema and reports store reachability.
type Diagnostics interface {
	EnsureSchema(ctx context.Context) error
	CheckConnectivity(ctx context.Context) database.ConnectionStatus
}

// ValidationError reports a rejected client submission.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// SongInput is a song suggestion as submitted by the song form.
type SongInput struct {
	GuestID string `json:"guestId" form:"guestId"`
	Title   string `json:"title" form:"title"`
	Artist  string `json:"artist" form:"artist"`
	Message string `json:"message" form:"message"`
}

// SongResult is the outcome of SubmitSongSuggestion.
type SongResult struct {
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	Suggestion *models.SongSuggestion `json:"suggestion,omitempty"`

	reason failure
}

type failure int

const (
	failNone failure = iota
	failInvalid
	failUnknownGuest
	failStore
)

// SetupResult is the outcome of SetupDatabase.
type SetupResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Service validates and forwards mutations, then invalidates the views they affect.
type Service struct {
	data   DataAccess
	views  ViewInvalidator
	diag   Diagnostics
	logger *zap.Logger
}

// NewService creates the action layer. views may be nil when page caching is off.
func NewService(data DataAccess, views ViewInvalidator, diag Diagnostics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{data: data, views: views, diag: diag, logger: logger}
}

// invalidateGuestPages drops every page that renders the guest row.
func (s *Service) invalidateGuestPages(ctx context.Context, guestID string) {
	s.invalidate(ctx, views.InvitePath(guestID), views.SongPagePath(guestID))
}

func (s *Service) invalidate(ctx context.Context, paths ...string) {
	if s.views != nil {
		s.views.Invalidate(ctx, paths...)
	}
}

// SubmitRSVP records a yes/no answer.
func (s *Service) SubmitRSVP(ctx context.Context, guestID string, answer models.RSVP) (*models.Guest, error) {
	if !answer.Valid() {
		return nil, &ValidationError{Msg: `response must be "yes" or "no"`}
	}
	g, err := s.data.UpdateRSVP(ctx, guestID, answer)
	if err != nil {
		return nil, err
	}
	s.invalidateGuestPages(ctx, guestID)
	return g, nil
}

// SubmitDrinkPreference stores any drink string; the client restricts the choice to the menu.
func (s *Service) SubmitDrinkPreference(ctx context.Context, guestID, drink string) (*models.Guest, error) {
	g, err := s.data.UpdateDrinkPreference(ctx, guestID, drink)
	if err != nil {
		return nil, err
	}
	s.invalidateGuestPages(ctx, guestID)
	return g, nil
}

// SubmitSongSuggestion requires a guest ID and a title. It never returns an error;
// every failure is reported as Success=false.
func (s *Service) SubmitSongSuggestion(ctx context.Context, in SongInput) SongResult {
	guestID := strings.TrimSpace(in.GuestID)
	title := strings.TrimSpace(in.Title)
	if guestID == "" || title == "" {
		return SongResult{Success: false, Error: "Missing required fields", reason: failInvalid}
	}

	created, err := s.data.AddSongSuggestion(ctx, models.SongSuggestion{
		GuestID: guestID,
		Title:   title,
		Artist:  optional(in.Artist),
		Message: optional(in.Message),
	})
	if err != nil {
		if errors.Is(err, guests.ErrNotFound) {
			return SongResult{Success: false, Error: "guest not found", reason: failUnknownGuest}
		}
		s.logger.Error("submit song suggestion", zap.String("guest_id", guestID), zap.Error(err))
		return SongResult{Success: false, Error: "failed to save song suggestion", reason: failStore}
	}
	s.invalidate(ctx, views.SongPagePath(guestID))
	return SongResult{Success: true, Suggestion: created}
}

// FetchGuestSongs returns the guest's suggestions, newest first.
func (s *Service) FetchGuestSongs(ctx context.Context, guestID string) ([]models.SongSuggestion, error) {
	return s.data.GetSongsByGuest(ctx, guestID)
}

// SetupDatabase initializes the schema when the store is unreachable.
func (s *Service) SetupDatabase(ctx context.Context) SetupResult {
	status := s.diag.CheckConnectivity(ctx)
	if status.Connected {
		return SetupResult{Success: true, Message: "Database already connected"}
	}
	s.logger.Warn("database not connected, attempting to initialize", zap.String("error", status.Error))
	if err := s.diag.EnsureSchema(ctx); err != nil {
		return SetupResult{Success: false, Error: err.Error()}
	}
	return SetupResult{Success: true, Message: "Database initialized successfully"}
}

// InitializeDatabase always runs schema creation and seeding.
func (s *Service) InitializeDatabase(ctx context.Context) SetupResult {
	if err := s.diag.EnsureSchema(ctx); err != nil {
		return SetupResult{Success: false, Error: err.Error()}
	}
	return SetupResult{Success: true, Message: "Database initialized successfully"}
}

// CheckConnection reports store reachability and pool statistics.
func (s *Service) CheckConnection(ctx context.Context) database.ConnectionStatus {
	return s.diag.CheckConnectivity(ctx)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
