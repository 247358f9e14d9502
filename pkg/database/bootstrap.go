package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SeedGuest is a starter guest inserted into an empty guest table.
type SeedGuest struct {
	ID   string
	Name string
}

// DefaultSeedGuests is the starter guest list.
var DefaultSeedGuests = []SeedGuest{
	{ID: "alex-42", Name: "Alex"},
	{ID: "jamie-77", Name: "Jamie"},
	{ID: "sam-23", Name: "Sam"},
	{ID: "taylor-55", Name: "Taylor"},
}

// ConnectionStatus reports store reachability and pool usage.
type ConnectionStatus struct {
	Connected     bool       `json:"connected"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	TotalConns    int32      `json:"pool_size"`
	IdleConns     int32      `json:"idle_connections"`
	AcquiredConns int32      `json:"acquired_connections"`
	MaxConns      int32      `json:"max_connections"`
	Error         string     `json:"error,omitempty"`
}

// Bootstrapper creates the schema and seeds starter data.
type Bootstrapper struct {
	pool   *pgxpool.Pool
	seeds  []SeedGuest
	logger *zap.Logger
}

// NewBootstrapper creates a bootstrapper. A nil seeds slice uses DefaultSeedGuests.
func NewBootstrapper(pool *pgxpool.Pool, seeds []SeedGuest, logger *zap.Logger) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if seeds == nil {
		seeds = DefaultSeedGuests
	}
	return &Bootstrapper{pool: pool, seeds: seeds, logger: logger}
}

// EnsureSchema runs migrations and seeds the guest table when it is empty.
func (b *Bootstrapper) EnsureSchema(ctx context.Context) error {
	b.logger.Info("starting database initialization")
	if err := Migrate(ctx, b.pool); err != nil {
		b.logger.Error("database initialization", zap.Error(err))
		return err
	}
	inserted, err := b.seed(ctx)
	if err != nil {
		b.logger.Error("seed guests", zap.Error(err))
		return err
	}
	b.logger.Info("database initialized", zap.Int("seeded_guests", inserted))
	return nil
}

// seed holds a table lock across count and insert so concurrent first runs
// cannot both observe an empty table.
func (b *Bootstrapper) seed(ctx context.Context) (int, error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `LOCK TABLE guests IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("lock guests: %w", err)
	}
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM guests`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count guests: %w", err)
	}
	b.logger.Info("current guest count", zap.Int("count", count))
	if count > 0 {
		return 0, tx.Commit(ctx)
	}

	batch := &pgx.Batch{}
	for _, g := range b.seeds {
		batch.Queue(`INSERT INTO guests (id, name, rsvp) VALUES ($1, $2, NULL) ON CONFLICT (id) DO NOTHING`, g.ID, g.Name)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert seed guests: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit seed tx: %w", err)
	}
	return len(b.seeds), nil
}

// CheckConnectivity runs SELECT NOW() and reports pool statistics. It never returns an error;
// failures are reported in the status.
func (b *Bootstrapper) CheckConnectivity(ctx context.Context) ConnectionStatus {
	var now time.Time
	if err := b.pool.QueryRow(ctx, `SELECT NOW()`).Scan(&now); err != nil {
		b.logger.Error("database connection error", zap.Error(err))
		return ConnectionStatus{Connected: false, Error: err.Error()}
	}
	stat := b.pool.Stat()
	return ConnectionStatus{
		Connected:     true,
		Timestamp:     &now,
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
	}
}
