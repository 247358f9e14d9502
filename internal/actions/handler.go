package actions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/partyinvite/backend/internal/guests"
	"github.com/partyinvite/backend/internal/models"
	"github.com/partyinvite/backend/pkg/response"
)

// RSVPRequest is the body for POST /actions/submit-rsvp.
type RSVPRequest struct {
	GuestID  string      `json:"guestId" binding:"required"`
	Response models.RSVP `json:"response" binding:"required"`
}

// DrinkRequest is the body for POST /actions/submit-drink-preference.
type DrinkRequest struct {
	GuestID         string `json:"guestId" binding:"required"`
	DrinkPreference string `json:"drinkPreference"`
}

// Handler exposes the actions as RPC-style HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an actions handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the action routes on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/actions")
	g.POST("/submit-rsvp", h.SubmitRSVP)
	g.POST("/submit-drink-preference", h.SubmitDrinkPreference)
	g.POST("/submit-song-suggestion", h.SubmitSongSuggestion)
	g.GET("/guest-songs/:guestId", h.FetchGuestSongs)
	g.POST("/setup-database", h.SetupDatabase)
	g.GET("/check-connection", h.CheckConnection)
}

func writeGuestError(c *gin.Context, err error) {
	switch {
	case IsValidation(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, guests.ErrNotFound):
		response.NotFound(c, "guest not found")
	default:
		response.Internal(c, "store unavailable")
	}
}

// SubmitRSVP handles POST /actions/submit-rsvp.
func (h *Handler) SubmitRSVP(c *gin.Context) {
	var req RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	g, err := h.svc.SubmitRSVP(c.Request.Context(), req.GuestID, req.Response)
	if err != nil {
		writeGuestError(c, err)
		return
	}
	response.OK(c, g)
}

// SubmitDrinkPreference handles POST /actions/submit-drink-preference.
func (h *Handler) SubmitDrinkPreference(c *gin.Context) {
	var req DrinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	g, err := h.svc.SubmitDrinkPreference(c.Request.Context(), req.GuestID, req.DrinkPreference)
	if err != nil {
		writeGuestError(c, err)
		return
	}
	response.OK(c, g)
}

// SubmitSongSuggestion handles POST /actions/submit-song-suggestion (form or JSON body).
// The body is always a SongResult.
func (h *Handler) SubmitSongSuggestion(c *gin.Context) {
	var in SongInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, SongResult{Success: false, Error: "invalid request: " + err.Error()})
		return
	}
	res := h.svc.SubmitSongSuggestion(c.Request.Context(), in)
	c.JSON(songStatus(res), res)
}

func songStatus(res SongResult) int {
	switch res.reason {
	case failNone:
		return http.StatusCreated
	case failInvalid:
		return http.StatusBadRequest
	case failUnknownGuest:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FetchGuestSongs handles GET /actions/guest-songs/:guestId.
func (h *Handler) FetchGuestSongs(c *gin.Context) {
	songs, err := h.svc.FetchGuestSongs(c.Request.Context(), c.Param("guestId"))
	if err != nil {
		writeGuestError(c, err)
		return
	}
	response.OK(c, gin.H{"songs": songs})
}

// SetupDatabase handles POST /actions/setup-database.
func (h *Handler) SetupDatabase(c *gin.Context) {
	res := h.svc.SetupDatabase(c.Request.Context())
	if !res.Success {
		c.JSON(http.StatusInternalServerError, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CheckConnection handles GET /actions/check-connection.
func (h *Handler) CheckConnection(c *gin.Context) {
	status := h.svc.CheckConnection(c.Request.Context())
	code := http.StatusOK
	if !status.Connected {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
