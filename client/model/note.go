// Package model holds the note shapes as the mobile client sees them. The
// server representation (description/image_url) is mapped into these at the
// API boundary.
package model

import "time"

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Photo     string    `json:"photo,omitempty"` // local file path or absolute server URL
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Synced    bool      `json:"synced"`
	UserID    string    `json:"userId"`
}

// NoteForm carries the fields a user fills in when creating a note.
type NoteForm struct {
	Title   string
	Content string
	Photo   string
}

// NotePatch carries a partial update; nil fields stay untouched.
type NotePatch struct {
	Title   *string
	Content *string
	Photo   *string
}
