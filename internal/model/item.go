package model

import (
	"strings"
	"time"
)

// Item is a server-owned record. Every Item the client holds came from a
// server response.
type Item struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
}

// Created returns the creation time, or the zero time when the server sent none.
func (it Item) Created() time.Time {
	if it.CreatedAt == nil {
		return time.Time{}
	}
	return it.CreatedAt.Time
}

// Draft is an uncommitted title/description pair, used both for new items
// and for in-place edits. It is also the request body for create and update.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DraftOf seeds an edit draft from an existing item.
func DraftOf(it Item) Draft {
	return Draft{Title: it.Title, Description: it.Description}
}

// Blank reports whether the title is empty once whitespace is trimmed.
func (d Draft) Blank() bool { return strings.TrimSpace(d.Title) == "" }

// IsZero reports whether both fields are empty.
func (d Draft) IsZero() bool { return d.Title == "" && d.Description == "" }

// IndexOf returns the position of the item with the given id, or -1.
func IndexOf(items []Item, id int) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
