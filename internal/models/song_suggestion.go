package models

import "time"

// SongSuggestion is a playlist entry proposed by a guest. Rows are never edited.
type SongSuggestion struct {
	ID        int64     `json:"id"`
	GuestID   string    `json:"guest_id"`
	Title     string    `json:"title"`
	Artist    *string   `json:"artist,omitempty"`
	Message   *string   `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GuestData is every guest and every song suggestion.
type GuestData struct {
	Guests          []Guest          `json:"guests"`
	SongSuggestions []SongSuggestion `json:"song_suggestions"`
}
