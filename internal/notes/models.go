package notes

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("note not found")
	ErrSlugTaken = errors.New("slug already exists")
)

type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Slug      string    `json:"slug"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Fields is the user-editable part of a note.
type Fields struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
}
