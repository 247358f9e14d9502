// Package views serves the data behind the invitation and song suggestion pages.
package views

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/partyinvite/backend/config"
	"github.com/partyinvite/backend/internal/guests"
	"github.com/partyinvite/backend/internal/models"
	"github.com/partyinvite/backend/pkg/response"
)

// InvitePath is the invitation page of a guest.
func InvitePath(guestID string) string { return "/invite/" + guestID }

// SongPagePath is the song suggestion page of a guest.
func SongPagePath(guestID string) string { return "/suggest-a-song/" + guestID }

// Reader is the read side of guests.Service.
type Reader interface {
	GetGuestByID(ctx context.Context, id string) (*models.Guest, error)
	GetSongsByGuest(ctx context.Context, guestID string) ([]models.SongSuggestion, error)
}

// InvitePage is the body of GET /invite/:guestId.
type InvitePage struct {
	Guest        *models.Guest        `json:"guest"`
	Event        config.EventConfig   `json:"event"`
	DrinkOptions []models.DrinkOption `json:"drink_options"`
	SongPageURL  string               `json:"song_page_url"`
}

// SongPage is the body of GET /suggest-a-song/:guestId.
type SongPage struct {
	Guest *models.Guest           `json:"guest"`
	Songs []models.SongSuggestion `json:"songs"`
}

// Handler serves page views.
type Handler struct {
	reader Reader
	event  config.EventConfig
	cache  *PageCache
}

// NewHandler creates a views handler. A nil cache disables response caching.
func NewHandler(reader Reader, event config.EventConfig, cache *PageCache) *Handler {
	return &Handler{reader: reader, event: event, cache: cache}
}

// Register mounts the page routes on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("")
	if h.cache != nil {
		g.Use(h.cache.Middleware())
	}
	g.GET("/invite/:guestId", h.Invite)
	g.GET("/suggest-a-song/:guestId", h.SuggestSong)
}

func (h *Handler) guest(c *gin.Context) (*models.Guest, bool) {
	g, err := h.reader.GetGuestByID(c.Request.Context(), c.Param("guestId"))
	if errors.Is(err, guests.ErrNotFound) {
		response.NotFound(c, "guest not found")
		return nil, false
	}
	if err != nil {
		response.Internal(c, "something went wrong, please try again")
		return nil, false
	}
	return g, true
}

// Invite handles GET /invite/:guestId.
func (h *Handler) Invite(c *gin.Context) {
	g, ok := h.guest(c)
	if !ok {
		return
	}
	response.OK(c, InvitePage{
		Guest:        g,
		Event:        h.event,
		DrinkOptions: models.DrinkOptions,
		SongPageURL:  SongPagePath(g.ID),
	})
}

// SuggestSong handles GET /suggest-a-song/:guestId.
func (h *Handler) SuggestSong(c *gin.Context) {
	g, ok := h.guest(c)
	if !ok {
		return
	}
	songs, err := h.reader.GetSongsByGuest(c.Request.Context(), g.ID)
	if err != nil {
		response.Internal(c, "something went wrong, please try again")
		return
	}
	response.OK(c, SongPage{Guest: g, Songs: songs})
}
