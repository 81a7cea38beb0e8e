package banner

import (
	"time"

	"github.com/gofrs/uuid"
)

type Position string

const (
	PositionMain       Position = "main"
	PositionSideTop    Position = "side_top"
	PositionSideBottom Position = "side_bottom"
)

func (p Position) Valid() bool {
	switch p {
	case PositionMain, PositionSideTop, PositionSideBottom:
		return true
	}
	return false
}

const (
	DefaultBgColor   = "#6366f1"
	DefaultTextColor = "#ffffff"
)

type Banner struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	Link         string    `json:"link" db:"link"`
	BgColor      string    `json:"bg_color" db:"bg_color"`
	TextColor    string    `json:"text_color" db:"text_color"`
	Position     Position  `json:"position" db:"position"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Update holds a partial admin edit; nil fields are left as they are.
type Update struct {
	Title        *string
	Description  *string
	ImageURL     *string
	Link         *string
	BgColor      *string
	TextColor    *string
	Position     *Position
	DisplayOrder *int
	IsActive     *bool
}

func (u Update) Apply(b *Banner) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	if u.ImageURL != nil {
		b.ImageURL = *u.ImageURL
	}
	if u.Link != nil {
		b.Link = *u.Link
	}
	if u.BgColor != nil {
		b.BgColor = *u.BgColor
	}
	if u.TextColor != nil {
		b.TextColor = *u.TextColor
	}
	if u.Position != nil {
		b.Position = *u.Position
	}
	if u.DisplayOrder != nil {
		b.DisplayOrder = *u.DisplayOrder
	}
	if u.IsActive != nil {
		b.IsActive = *u.IsActive
	}
}

type Page struct {
	Banners []Banner `json:"banners"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
	Pages   int      `json:"pages"`
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)
