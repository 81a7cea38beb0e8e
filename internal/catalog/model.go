package catalog

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Book struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	Title       string              `json:"title" db:"title"`
	Author      string              `json:"author" db:"author"`
	Category    string              `json:"category" db:"category"`
	Price       decimal.Decimal     `json:"price" db:"price"`
	Stock       int                 `json:"stock" db:"stock"`
	Description string              `json:"description" db:"description"`
	ImageURL    string              `json:"image_url" db:"image_url"`
	Publisher   string              `json:"publisher" db:"publisher"`
	PublishDate *time.Time          `json:"publish_date,omitempty" db:"publish_date"`
	Distributor string              `json:"distributor" db:"distributor"`
	Dimensions  string              `json:"dimensions" db:"dimensions"`
	Pages       *int                `json:"pages,omitempty" db:"pages"`
	Weight      decimal.NullDecimal `json:"weight" db:"weight"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" db:"updated_at"`
}

// BookUpdate carries a partial update: nil fields are left unchanged.
type BookUpdate struct {
	Title       *string
	Author      *string
	Category    *string
	Price       *decimal.Decimal
	Stock       *int
	Description *string
	ImageURL    *string
	Publisher   *string
	PublishDate *time.Time
	Distributor *string
	Dimensions  *string
	Pages       *int
	Weight      *decimal.Decimal
}

func (u BookUpdate) Apply(b *Book) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.Category != nil {
		b.Category = *u.Category
	}
	if u.Price != nil {
		b.Price = *u.Price
	}
	if u.Stock != nil {
		b.Stock = *u.Stock
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	if u.ImageURL != nil {
		b.ImageURL = *u.ImageURL
	}
	if u.Publisher != nil {
		b.Publisher = *u.Publisher
	}
	if u.PublishDate != nil {
		b.PublishDate = u.PublishDate
	}
	if u.Distributor != nil {
		b.Distributor = *u.Distributor
	}
	if u.Dimensions != nil {
		b.Dimensions = *u.Dimensions
	}
	if u.Pages != nil {
		b.Pages = u.Pages
	}
	if u.Weight != nil {
		b.Weight = decimal.NewNullDecimal(*u.Weight)
	}
}

const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

type SearchParams struct {
	Search   string
	Category string
	Author   string
	Page     int
	PerPage  int
}

// Normalize clamps paging to sane bounds.
func (p *SearchParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

func (p SearchParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

type Page struct {
	Books   []Book `json:"books"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Pages   int    `json:"pages"`
}

func NewPage(books []Book, total int, params SearchParams) *Page {
	pages := 0
	if params.PerPage > 0 {
		pages = (total + params.PerPage - 1) / params.PerPage
	}
	return &Page{
		Books:   books,
		Total:   total,
		Page:    params.Page,
		PerPage: params.PerPage,
		Pages:   pages,
	}
}
