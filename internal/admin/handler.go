// Package admin serves the guest overview and the database diagnostics endpoints.
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/partyinvite/backend/internal/actions"
	"github.com/partyinvite/backend/internal/models"
	"github.com/partyinvite/backend/pkg/database"
	"github.com/partyinvite/backend/pkg/response"
)

// Data is the read side the admin pages need.
type Data interface {
	GetAllGuestsAndSongs(ctx context.Context) (*models.GuestData, error)
	ListGuestsUncached(ctx context.Context) ([]models.Guest, error)
}

// GuestRow is one guest in the admin listing.
type GuestRow struct {
	models.Guest
	SongCount int `json:"song_count"`
}

// Summary counts RSVP answers and drink choices.
type Summary struct {
	Total     int            `json:"total"`
	Attending int            `json:"attending"`
	Declined  int            `json:"declined"`
	Pending   int            `json:"pending"`
	Drinks    map[string]int `json:"drinks"`
	Songs     int            `json:"songs"`
}

// Overview is the body of GET /admin.
type Overview struct {
	Connection      database.ConnectionStatus `json:"connection"`
	Setup           actions.SetupResult       `json:"setup"`
	Degraded        bool                      `json:"degraded"`
	Guests          []GuestRow                `json:"guests"`
	SongSuggestions []models.SongSuggestion   `json:"song_suggestions"`
	Summary         Summary                   `json:"summary"`
}

// Handler serves admin and diagnostics endpoints.
type Handler struct {
	data      Data
	actions   *actions.Service
	maskedDSN string
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates an admin handler.
func NewHandler(data Data, svc *actions.Service, maskedDSN string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{data: data, actions: svc, maskedDSN: maskedDSN, logger: logger, now: time.Now}
}

// Register mounts the admin routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/admin", h.Overview)
	r.GET("/setup", h.Setup)
	r.GET("/api/debug", h.Debug)
	r.GET("/api/init-db", h.InitDB)
}

// Overview handles GET /admin. A store failure yields empty lists with degraded=true.
func (h *Handler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	out := Overview{
		Setup:           h.actions.SetupDatabase(ctx),
		Connection:      h.actions.CheckConnection(ctx),
		Guests:          []GuestRow{},
		SongSuggestions: []models.SongSuggestion{},
	}

	data, err := h.data.GetAllGuestsAndSongs(ctx)
	if err != nil {
		h.logger.Warn("admin overview without data", zap.Error(err))
		out.Degraded = true
		data = &models.GuestData{}
	}
	out.Guests, out.Summary = summarize(data)
	if data.SongSuggestions != nil {
		out.SongSuggestions = data.SongSuggestions
	}
	response.OK(c, out)
}

func summarize(data *models.GuestData) ([]GuestRow, Summary) {
	counts := make(map[string]int, len(data.Guests))
	for _, s := range data.SongSuggestions {
		counts[s.GuestID]++
	}
	sum := Summary{Drinks: map[string]int{}, Songs: len(data.SongSuggestions)}
	rows := make([]GuestRow, 0, len(data.Guests))
	for _, g := range data.Guests {
		rows = append(rows, GuestRow{Guest: g, SongCount: counts[g.ID]})
		sum.Total++
		switch {
		case g.RSVP == nil:
			sum.Pending++
		case *g.RSVP == models.RSVPYes:
			sum.Attending++
		default:
			sum.Declined++
		}
		if g.DrinkPreference != nil && *g.DrinkPreference != "" {
			sum.Drinks[*g.DrinkPreference]++
		}
	}
	return rows, sum
}

// Setup handles GET /setup[?initialize=true].
func (h *Handler) Setup(c *gin.Context) {
	ctx := c.Request.Context()
	body := gin.H{"connection": h.actions.CheckConnection(ctx)}
	if c.Query("initialize") == "true" {
		body["initialization"] = h.actions.InitializeDatabase(ctx)
	}
	c.JSON(http.StatusOK, body)
}

// Debug handles GET /api/debug: connection status plus raw uncached guest rows.
func (h *Handler) Debug(c *gin.Context) {
	ctx := c.Request.Context()
	body := gin.H{
		"connectionStatus": h.actions.CheckConnection(ctx),
		"databaseUrl":      h.maskedDSN,
		"guests":           []models.Guest{},
		"error":            nil,
		"timestamp":        h.now().UTC().Format(time.RFC3339),
	}
	list, err := h.data.ListGuestsUncached(ctx)
	if err != nil {
		body["error"] = err.Error()
	} else {
		body["guests"] = list
	}
	c.JSON(http.StatusOK, body)
}

// InitDB handles GET /api/init-db.
func (h *Handler) InitDB(c *gin.Context) {
	res := h.actions.InitializeDatabase(c.Request.Context())
	if !res.Success {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize database", "details": res.Error})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Database initialized successfully"})
}
