package guests

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyinvite/backend/internal/models"
)

// Store is the persistence contract the cached Service sits on.
// Implementations return ErrNotFound for unknown guests and *StoreError for everything else.
type Store interface {
	ListGuests(ctx context.Context) ([]models.Guest, error)
	ListSongSuggestions(ctx context.Context) ([]models.SongSuggestion, error)
	GetGuest(ctx context.Context, id string) (*models.Guest, error)
	ListSongsByGuest(ctx context.Context, guestID string) ([]models.SongSuggestion, error)
	UpdateRSVP(ctx context.Context, id string, rsvp models.RSVP) (*models.Guest, error)
	UpdateDrinkPreference(ctx context.Context, id, drink string) (*models.Guest, error)
	InsertSongSuggestion(ctx context.Context, s *models.SongSuggestion) error
}

const foreignKeyViolation = "23503"

const guestColumns = `id, name, rsvp, drink_preference`

const songColumns = `id, guest_id, title, artist, message, created_at`

// Repository handles guest and song suggestion persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a guests repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanGuest(row pgx.Row) (*models.Guest, error) {
	var g models.Guest
	if err := row.Scan(&g.ID, &g.Name, &g.RSVP, &g.DrinkPreference); err != nil {
		return nil, err
	}
	return &g, nil
}

func scanSong(row pgx.Row) (models.SongSuggestion, error) {
	var s models.SongSuggestion
	err := row.Scan(&s.ID, &s.GuestID, &s.Title, &s.Artist, &s.Message, &s.CreatedAt)
	return s, err
}

func storeErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrNotFound
	}
	return &StoreError{Op: op, Err: err}
}

// ListGuests returns every guest row.
func (r *Repository) ListGuests(ctx context.Context) ([]models.Guest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+guestColumns+` FROM guests ORDER BY id`)
	if err != nil {
		return nil, storeErr("list guests", err)
	}
	defer rows.Close()
	list := make([]models.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, storeErr("scan guest", err)
		}
		list = append(list, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list guests", err)
	}
	return list, nil
}

// ListSongSuggestions returns every suggestion, newest first.
func (r *Repository) ListSongSuggestions(ctx context.Context) ([]models.SongSuggestion, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+songColumns+` FROM song_suggestions ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, storeErr("list song suggestions", err)
	}
	return collectSongs(rows)
}

// GetGuest returns a guest by ID.
func (r *Repository) GetGuest(ctx context.Context, id string) (*models.Guest, error) {
	g, err := scanGuest(r.pool.QueryRow(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = $1`, id))
	if err != nil {
		return nil, storeErr("get guest", err)
	}
	return g, nil
}

// ListSongsByGuest returns a guest's suggestions ordered by created_at descending; ties keep insertion order.
func (r *Repository) ListSongsByGuest(ctx context.Context, guestID string) ([]models.SongSuggestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+songColumns+` FROM song_suggestions WHERE guest_id = $1 ORDER BY created_at DESC, id ASC`,
		guestID)
	if err != nil {
		return nil, storeErr("list songs by guest", err)
	}
	return collectSongs(rows)
}

func collectSongs(rows pgx.Rows) ([]models.SongSuggestion, error) {
	defer rows.Close()
	list := make([]models.SongSuggestion, 0)
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, storeErr("scan song suggestion", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list song suggestions", err)
	}
	return list, nil
}

// UpdateRSVP overwrites the guest's rsvp column.
func (r *Repository) UpdateRSVP(ctx context.Context, id string, rsvp models.RSVP) (*models.Guest, error) {
	g, err := scanGuest(r.pool.QueryRow(ctx,
		`UPDATE guests SET rsvp = $1 WHERE id = $2 RETURNING `+guestColumns, string(rsvp), id))
	if err != nil {
		return nil, storeErr("update rsvp", err)
	}
	return g, nil
}

// UpdateDrinkPreference overwrites the guest's drink_preference column.
func (r *Repository) UpdateDrinkPreference(ctx context.Context, id, drink string) (*models.Guest, error) {
	g, err := scanGuest(r.pool.QueryRow(ctx,
		`UPDATE guests SET drink_preference = $1 WHERE id = $2 RETURNING `+guestColumns, drink, id))
	if err != nil {
		return nil, storeErr("update drink preference", err)
	}
	return g, nil
}

// InsertSongSuggestion inserts s and fills in its ID and CreatedAt.
// An unknown guest_id is rejected by the foreign key and reported as ErrNotFound.
func (r *Repository) InsertSongSuggestion(ctx context.Context, s *models.SongSuggestion) error {
	const q = `INSERT INTO song_suggestions (guest_id, title, artist, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, q, s.GuestID, s.Title, s.Artist, s.Message).Scan(&s.ID, &s.CreatedAt); err != nil {
		return storeErr("insert song suggestion", err)
	}
	return nil
}
