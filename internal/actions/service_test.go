package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyinvite/backend/internal/guests"
	"github.com/partyinvite/backend/internal/models"
	"github.com/partyinvite/backend/pkg/cache"
	"github.com/partyinvite/backend/pkg/database"
)

type recordingViews struct {
	paths []string
}

func (r *recordingViews) Invalidate(_ context.Context, paths ...string) {
	r.paths = append(r.paths, paths...)
}

type fakeDiag struct {
	connected   bool
	ensureErr   error
	ensureCalls int
}

func (f *fakeDiag) EnsureSchema(context.Context) error {
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeDiag) CheckConnectivity(context.Context) database.ConnectionStatus {
	if !f.connected {
		return database.ConnectionStatus{Connected: false, Error: "dial tcp: connection refused"}
	}
	return database.ConnectionStatus{Connected: true, MaxConns: 5}
}

// failingData fails every call with a store error.
type failingData struct{}

func (failingData) UpdateRSVP(context.Context, string, models.RSVP) (*models.Guest, error) {
	return nil, &guests.StoreError{Op: "update rsvp", Err: errors.New("down")}
}

func (failingData) UpdateDrinkPreference(context.Context, string, string) (*models.Guest, error) {
	return nil, &guests.StoreError{Op: "update drink preference", Err: errors.New("down")}
}

func (failingData) AddSongSuggestion(context.Context, models.SongSuggestion) (*models.SongSuggestion, error) {
	return nil, &guests.StoreError{Op: "insert song suggestion", Err: errors.New("down")}
}

func (failingData) GetSongsByGuest(context.Context, string) ([]models.SongSuggestion, error) {
	return nil, &guests.StoreError{Op: "list songs by guest", Err: errors.New("down")}
}

func newTestService(t *testing.T) (*Service, *recordingViews, *fakeDiag) {
	t.Helper()
	store := guests.NewMemoryStore([]database.SeedGuest{{ID: "alex-42", Name: "Alex"}})
	require.NoError(t, store.EnsureSchema(context.Background()))
	data := guests.NewService(store, cache.NewLoader(cache.NewMemory(), time.Minute, nil), nil)
	v := &recordingViews{}
	d := &fakeDiag{connected: true}
	return NewService(data, v, d, nil), v, d
}

func TestEndToEndGuestFlow(t *testing.T) {
	svc, v, _ := newTestService(t)
	ctx := context.Background()

	g, err := svc.SubmitRSVP(ctx, "alex-42", models.RSVPYes)
	require.NoError(t, err)
	require.NotNil(t, g.RSVP)
	assert.Equal(t, models.RSVPYes, *g.RSVP)

	g, err = svc.SubmitDrinkPreference(ctx, "alex-42", "wine")
	require.NoError(t, err)
	require.NotNil(t, g.DrinkPreference)
	assert.Equal(t, "wine", *g.DrinkPreference)

	res := svc.SubmitSongSuggestion(ctx, SongInput{GuestID: "alex-42", Title: "Song A"})
	assert.True(t, res.Success)
	require.NotNil(t, res.Suggestion)
	assert.Nil(t, res.Suggestion.Artist)
	assert.Nil(t, res.Suggestion.Message)

	songs, err := svc.FetchGuestSongs(ctx, "alex-42")
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "Song A", songs[0].Title)

	assert.Equal(t, []string{
		"/invite/alex-42", "/suggest-a-song/alex-42", // rsvp
		"/invite/alex-42", "/suggest-a-song/alex-42", // drink
		"/suggest-a-song/alex-42",                    // song
	}, v.paths)
}

func TestSubmitRSVPUnknownGuest(t *testing.T) {
	svc, v, _ := newTestService(t)
	g, err := svc.SubmitRSVP(context.Background(), "nonexistent-id", models.RSVPYes)
	assert.ErrorIs(t, err, guests.ErrNotFound)
	assert.Nil(t, g)
	assert.Empty(t, v.paths)
}

func TestSubmitRSVPRejectsOtherAnswers(t *testing.T) {
	svc, _, _ := newTestService(t)
	for _, answer := range []models.RSVP{"", "maybe", "YES"} {
		_, err := svc.SubmitRSVP(context.Background(), "alex-42", answer)
		assert.True(t, IsValidation(err), string(answer))
	}
}

func TestSubmitDrinkPreferenceAcceptsAnyString(t *testing.T) {
	svc, _, _ := newTestService(t)
	g, err := svc.SubmitDrinkPreference(context.Background(), "alex-42", "mead")
	require.NoError(t, err)
	assert.Equal(t, "mead", *g.DrinkPreference)
}

func TestSubmitSongSuggestionValidation(t *testing.T) {
	svc, v, _ := newTestService(t)
	for _, in := range []SongInput{
		{Title: "No guest"},
		{GuestID: "alex-42"},
		{GuestID: "alex-42", Title: "   "},
	} {
		res := svc.SubmitSongSuggestion(context.Background(), in)
		assert.False(t, res.Success)
		assert.Equal(t, "Missing required fields", res.Error)
		assert.Equal(t, failInvalid, res.reason)
	}
	assert.Empty(t, v.paths)
}

func TestSubmitSongSuggestionUnknownGuest(t *testing.T) {
	svc, _, _ := newTestService(t)
	res := svc.SubmitSongSuggestion(context.Background(), SongInput{GuestID: "ghost", Title: "Song"})
	assert.False(t, res.Success)
	assert.Equal(t, failUnknownGuest, res.reason)
	assert.Nil(t, res.Suggestion)
}

func TestSubmitSongSuggestionStoreFailure(t *testing.T) {
	svc := NewService(failingData{}, nil, &fakeDiag{connected: true}, nil)
	res := svc.SubmitSongSuggestion(context.Background(), SongInput{GuestID: "alex-42", Title: "Song"})
	assert.False(t, res.Success)
	assert.Equal(t, failStore, res.reason)

	_, err := svc.SubmitRSVP(context.Background(), "alex-42", models.RSVPNo)
	assert.True(t, guests.IsStoreError(err))
}

func TestSubmitSongSuggestionKeepsOptionalFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	res := svc.SubmitSongSuggestion(context.Background(), SongInput{
		GuestID: " alex-42 ", Title: " Song B ", Artist: "Band", Message: "for the dance floor",
	})
	require.True(t, res.Success)
	assert.Equal(t, "alex-42", res.Suggestion.GuestID)
	assert.Equal(t, "Song B", res.Suggestion.Title)
	assert.Equal(t, "Band", *res.Suggestion.Artist)
	assert.Equal(t, "for the dance floor", *res.Suggestion.Message)
}

func TestSetupDatabase(t *testing.T) {
	svc, _, d := newTestService(t)
	ctx := context.Background()

	res := svc.SetupDatabase(ctx)
	assert.True(t, res.Success)
	assert.Equal(t, "Database already connected", res.Message)
	assert.Equal(t, 0, d.ensureCalls)

	d.connected = false
	res = svc.SetupDatabase(ctx)
	assert.True(t, res.Success)
	assert.Equal(t, 1, d.ensureCalls)

	d.ensureErr = errors.New("permission denied")
	res = svc.SetupDatabase(ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "permission denied", res.Error)
}
