package model

import "time"

// Favorite is one user's bookmark of one character.
//
// UserID is opaque: nobody validates it against an identity provider.
// CharacterName is copied at bookmark time and never refreshed from the catalog.
// ID and AddedAt are assigned by the store on insert and never change; a
// favorite is created and deleted, never updated.
type Favorite struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CharacterID   int       `json:"character_id"`
	CharacterName string    `json:"character_name"`
	AddedAt       time.Time `json:"added_at"`
}
